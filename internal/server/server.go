package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bodul/crosswordmaster/internal/crossword"
	"github.com/bodul/crosswordmaster/internal/puzzle"
	"github.com/bodul/crosswordmaster/internal/store"
)

const (
	maxUploadSize = 10 << 20 // 10 Mo
	maxBodySize   = 1 << 20

	msgTooManyRequests = "Trop de requêtes, réessayez plus tard"
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// WordImporter reads word/definition pairs from a worksheet photo.
type WordImporter interface {
	ExtractWords(ctx context.Context, imageData []byte, mimeType string) (*puzzle.Draft, error)
}

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Puzzles   store.PuzzleStore
	Sessions  *store.Sessions
	Generator *crossword.Generator
	Importer  WordImporter // nil disables image import
	Logger    *slog.Logger
	BaseURL   string
}

// Server is the main HTTP server.
type Server struct {
	mux      *http.ServeMux
	puzzles  store.PuzzleStore
	sessions *store.Sessions
	gen      *crossword.Generator
	importer WordImporter
	events   *Broadcaster
	log      *slog.Logger
	baseURL  string
	uploadRL *rateLimiter
	moveRL   *rateLimiter
}

// NewServer creates a configured HTTP server. Call Close when done with it.
func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Sessions == nil {
		d.Sessions = store.NewSessions()
	}
	if d.Generator == nil {
		d.Generator = crossword.New(crossword.Options{Logger: d.Logger})
	}
	s := &Server{
		mux:      http.NewServeMux(),
		puzzles:  d.Puzzles,
		sessions: d.Sessions,
		gen:      d.Generator,
		importer: d.Importer,
		events:   NewBroadcaster(d.Logger),
		log:      d.Logger,
		baseURL:  strings.TrimRight(d.BaseURL, "/"),
		uploadRL: newRateLimiter(5, time.Minute), // 5 uploads/min per IP
		moveRL:   newRateLimiter(60, time.Second), // 60 moves/sec per IP
	}
	s.routes()
	return s
}

// Close stops the server's background goroutines. It does not close the
// stores passed in Deps.
func (s *Server) Close() {
	s.uploadRL.Close()
	s.moveRL.Close()
}

func (s *Server) routes() {
	// Puzzle API
	s.mux.HandleFunc("POST /api/puzzles", s.handleCreatePuzzle)
	s.mux.HandleFunc("POST /api/puzzles/import", s.handleImportWords)
	s.mux.HandleFunc("GET /api/puzzles", s.handleListPuzzles)
	s.mux.HandleFunc("GET /api/puzzles/{id}", s.handleGetPuzzle)
	s.mux.HandleFunc("GET /api/puzzles/{id}/view", s.handleSolverView)
	s.mux.HandleFunc("GET /api/puzzles/{id}/export", s.handleExportPuzzle)
	s.mux.HandleFunc("GET /api/puzzles/{id}/share", s.handleSharePuzzle)

	// Session API
	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("POST /api/sessions/{id}/join", s.handleJoinSession)
	s.mux.HandleFunc("POST /api/sessions/{id}/move", s.handleMove)
	s.mux.HandleFunc("POST /api/sessions/{id}/check", s.handleCheck)
	s.mux.HandleFunc("GET /api/sessions/{id}/events", s.handleSessionEvents)
	s.mux.HandleFunc("GET /api/sessions/{id}/ws", s.handleSessionWS)

	s.mux.HandleFunc("GET /api/completions", s.handleListCompletions)

	// Share links land here.
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
	s.mux.ServeHTTP(w, r)
}

// GET /: resolve a share link (?puzzleId=...) to the solver view.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("puzzleId")
	if id == "" {
		writeJSON(w, http.StatusOK, map[string]string{"service": "crossword-master"})
		return
	}
	http.Redirect(w, r, "/api/puzzles/"+url.PathEscape(id)+"/view", http.StatusSeeOther)
}

// shareURL is the link a teacher hands out to students.
func (s *Server) shareURL(id string) string {
	return s.baseURL + "/?puzzleId=" + url.QueryEscape(id)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// draftErrorMessage maps validation errors to messages for authors.
func draftErrorMessage(err error) string {
	switch {
	case errors.Is(err, puzzle.ErrTitleRequired):
		return "Le titre et la thématique sont obligatoires."
	case errors.Is(err, puzzle.ErrNoWords):
		return "Le puzzle doit contenir au moins un mot."
	case errors.Is(err, puzzle.ErrTooManyWords):
		return "Trop de mots pour un seul puzzle."
	case errors.Is(err, puzzle.ErrDefinitionRequired):
		return "Tous les mots et définitions doivent être renseignés."
	case errors.Is(err, puzzle.ErrInvalidWord):
		return "Chaque mot doit contenir de 1 à 15 lettres."
	default:
		return "Erreur lors de la création du puzzle."
	}
}

// moveErrorMessage maps move errors to messages for solvers.
func moveErrorMessage(err error) string {
	switch {
	case errors.Is(err, puzzle.ErrOutOfBounds):
		return "Position hors limites"
	case errors.Is(err, puzzle.ErrBlockedCell):
		return "Case noire"
	case errors.Is(err, puzzle.ErrInvalidLetter):
		return "Valeur invalide : une lettre ou vide"
	default:
		return "Requête invalide"
	}
}

func sanitizePseudo(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 20 {
		s = string([]rune(s)[:20])
	}
	return s
}
