package server

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/bodul/crosswordmaster/internal/puzzle"
)

type moveRequest struct {
	Pseudo string `json:"pseudo"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Value  string `json:"value"`
}

// POST /api/sessions: start solving a puzzle.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PuzzleID string `json:"puzzle_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PuzzleID == "" {
		jsonError(w, "Champ 'puzzle_id' requis", http.StatusBadRequest)
		return
	}

	p, ok := s.loadPuzzle(w, r, req.PuzzleID)
	if !ok {
		return
	}

	sess := s.sessions.Create(p)
	s.log.Info("session started", "session", sess.ID, "puzzle", p.ID)

	writeJSON(w, http.StatusCreated, sessionResponse{sess.Snapshot(), p.SolverView()})
}

type sessionResponse struct {
	Session puzzle.Snapshot   `json:"session"`
	Puzzle  puzzle.SolverView `json:"puzzle"`
}

// sessionFromPath returns the live session named by the path.
func (s *Server) sessionFromPath(w http.ResponseWriter, r *http.Request) (*puzzle.Session, bool) {
	sess := s.sessions.Get(r.PathValue("id"))
	if sess == nil {
		jsonError(w, "Session introuvable", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// GET /api/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	p, ok := s.loadPuzzle(w, r, sess.PuzzleID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{sess.Snapshot(), p.SolverView()})
}

// POST /api/sessions/{id}/join
func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		Pseudo string `json:"pseudo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pseudo == "" {
		jsonError(w, "Champ 'pseudo' requis", http.StatusBadRequest)
		return
	}

	pseudo := sanitizePseudo(req.Pseudo)
	if pseudo == "" {
		jsonError(w, "Pseudo invalide", http.StatusBadRequest)
		return
	}

	player := sess.AddPlayer(pseudo)
	s.events.Publish(sess.ID, PlayerJoined{Pseudo: player.Pseudo, Color: player.Color})

	writeJSON(w, http.StatusOK, player)
}

// POST /api/sessions/{id}/move
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if !s.moveRL.allow(clientIP(r)) {
		jsonError(w, msgTooManyRequests, http.StatusTooManyRequests)
		return
	}

	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return
	}

	if err := s.applyMove(sess, req); err != nil {
		jsonError(w, moveErrorMessage(err), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// applyMove writes a solver's letter and tells every subscriber.
func (s *Server) applyMove(sess *puzzle.Session, m moveRequest) error {
	letter, err := sess.SetCell(m.Row, m.Col, m.Value)
	if err != nil {
		return err
	}
	s.events.Publish(sess.ID, CellUpdate{
		Row:    m.Row,
		Col:    m.Col,
		Value:  letter,
		Pseudo: sanitizePseudo(m.Pseudo),
	})
	return nil
}

// POST /api/sessions/{id}/check: grade the session. The first fully correct
// check records a completion and announces it; later checks only grade.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	p, ok := s.loadPuzzle(w, r, sess.PuzzleID)
	if !ok {
		return
	}

	now := time.Now()
	res := sess.Check(p, now)
	if res.FirstSolve {
		c := puzzle.Completion{
			PuzzleID:    p.ID,
			SessionID:   sess.ID,
			Score:       res.Score,
			CompletedAt: now,
		}
		if err := s.puzzles.SaveCompletion(r.Context(), c); err != nil {
			s.log.Error("save completion", "session", sess.ID, "error", err)
		} else {
			s.log.Info("puzzle solved", "session", sess.ID, "puzzle", p.ID, "score", res.Score)
		}
		s.events.Publish(sess.ID, Solved{Score: res.Score})
	}

	writeJSON(w, http.StatusOK, res)
}

// GET /api/sessions/{id}/events: SSE stream.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	playerPseudo := sanitizePseudo(r.URL.Query().Get("pseudo"))

	s.events.ServeSSE(w, r, sess.ID, sessionStateOf(sess), func() {
		s.playerLeft(sess, playerPseudo)
	})
}

func (s *Server) playerLeft(sess *puzzle.Session, pseudo string) {
	if pseudo == "" {
		return
	}
	sess.RemovePlayer(pseudo)
	s.events.Publish(sess.ID, PlayerLeft{Pseudo: pseudo})
}

// clientIP strips the port from the remote address for rate limiting.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
