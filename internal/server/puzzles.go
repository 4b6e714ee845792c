package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bodul/crosswordmaster/internal/crossword"
	"github.com/bodul/crosswordmaster/internal/format"
	"github.com/bodul/crosswordmaster/internal/puzzle"
	"github.com/bodul/crosswordmaster/internal/store"
)

// POST /api/puzzles: lay out a draft and save it.
func (s *Server) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var d puzzle.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return
	}

	p, err := puzzle.New(d, s.gen)
	if err != nil {
		jsonError(w, draftErrorMessage(err), http.StatusBadRequest)
		return
	}

	p, err = s.puzzles.SavePuzzle(r.Context(), p)
	if errors.Is(err, store.ErrConflict) {
		s.log.Warn("save puzzle", "error", err)
		jsonError(w, "Ce puzzle existe déjà", http.StatusConflict)
		return
	}
	if err != nil {
		s.log.Error("save puzzle", "error", err)
		jsonError(w, "Erreur lors de l'enregistrement du puzzle", http.StatusInternalServerError)
		return
	}

	unplaced := p.Unplaced()
	if len(unplaced) > 0 {
		s.log.Warn("puzzle saved with unplaced words", "puzzle", p.ID, "unplaced", len(unplaced))
	} else {
		s.log.Info("puzzle created", "puzzle", p.ID, "words", len(p.Words))
	}

	writeJSON(w, http.StatusCreated, struct {
		Puzzle   *puzzle.Puzzle        `json:"puzzle"`
		Unplaced []crossword.WordEntry `json:"unplaced"`
		ShareURL string                `json:"share_url"`
	}{p, nonNil(unplaced), s.shareURL(p.ID)})
}

// POST /api/puzzles/import: read a word list from a worksheet photo. The
// result is a draft for the author to review, nothing is saved.
func (s *Server) handleImportWords(w http.ResponseWriter, r *http.Request) {
	if !s.uploadRL.allow(clientIP(r)) {
		jsonError(w, msgTooManyRequests, http.StatusTooManyRequests)
		return
	}

	if s.importer == nil {
		jsonError(w, "Analyse d'image non configurée", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, "Image trop volumineuse (max 10 Mo)", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, "Champ 'image' requis", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !allowedMIME[mimeType] {
		jsonError(w, "Format accepté : JPEG ou PNG", http.StatusBadRequest)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "Erreur de lecture de l'image", http.StatusInternalServerError)
		return
	}

	d, err := s.importer.ExtractWords(r.Context(), imageData, mimeType)
	if err != nil {
		s.log.Error("extract words", "error", err)
		jsonError(w, "Erreur lors de l'analyse de la fiche", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// GET /api/puzzles
func (s *Server) handleListPuzzles(w http.ResponseWriter, r *http.Request) {
	list, err := s.puzzles.ListPuzzles(r.Context())
	if err != nil {
		s.log.Error("list puzzles", "error", err)
		jsonError(w, "Erreur interne", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// loadPuzzle fetches the puzzle named by the path, writing the error
// response itself when it cannot.
func (s *Server) loadPuzzle(w http.ResponseWriter, r *http.Request, id string) (*puzzle.Puzzle, bool) {
	p, err := s.puzzles.GetPuzzle(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, "Puzzle introuvable", http.StatusNotFound)
		return nil, false
	case err != nil:
		s.log.Error("get puzzle", "puzzle", id, "error", err)
		jsonError(w, "Erreur interne", http.StatusInternalServerError)
		return nil, false
	}
	return p, true
}

// GET /api/puzzles/{id}: author view, answers included.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPuzzle(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /api/puzzles/{id}/view: solver view, answers hidden.
func (s *Server) handleSolverView(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPuzzle(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.SolverView())
}

// GET /api/puzzles/{id}/export: XPF download.
func (s *Server) handleExportPuzzle(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPuzzle(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	data, err := format.XPF(p)
	if err != nil {
		s.log.Error("export puzzle", "puzzle", p.ID, "error", err)
		jsonError(w, "Erreur lors de l'export", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="puzzle-%s.xpf"`, p.ID))
	w.Write(data)
}

// GET /api/puzzles/{id}/share
func (s *Server) handleSharePuzzle(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPuzzle(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": s.shareURL(p.ID)})
}

// GET /api/completions
func (s *Server) handleListCompletions(w http.ResponseWriter, r *http.Request) {
	list, err := s.puzzles.ListCompletions(r.Context())
	if err != nil {
		s.log.Error("list completions", "error", err)
		jsonError(w, "Erreur interne", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
