package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/websocket"

	"github.com/bodul/crosswordmaster/internal/puzzle"
)

var errForeignOrigin = errors.New("websocket origin not allowed")

// GET /api/sessions/{id}/ws: bidirectional move stream. Clients send
// moveRequest frames and receive the same events as SSE subscribers.
func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	pseudo := sanitizePseudo(r.URL.Query().Get("pseudo"))
	ip := clientIP(r)

	websocket.Server{
		Handshake: s.checkOrigin,
		Handler: func(conn *websocket.Conn) {
			s.serveMoves(conn, sess, pseudo, ip)
		},
	}.ServeHTTP(w, r)
}

// checkOrigin accepts browsers on the configured base URL or on the host
// that served the request. Anything else gets 403 from the handshake.
func (s *Server) checkOrigin(cfg *websocket.Config, r *http.Request) error {
	origin, err := websocket.Origin(cfg, r)
	if err != nil {
		return err
	}
	if origin == nil {
		return fmt.Errorf("%w: missing Origin header", errForeignOrigin)
	}
	cfg.Origin = origin

	if strings.EqualFold(origin.Host, r.Host) {
		return nil
	}
	if base, err := url.Parse(s.baseURL); err == nil && base.Host != "" &&
		strings.EqualFold(origin.Scheme, base.Scheme) && strings.EqualFold(origin.Host, base.Host) {
		return nil
	}
	s.log.Warn("websocket origin rejected", "origin", origin.String())
	return fmt.Errorf("%w: %s", errForeignOrigin, origin)
}

func (s *Server) serveMoves(conn *websocket.Conn, sess *puzzle.Session, pseudo, ip string) {
	defer conn.Close()

	sub := s.events.subscribe(sess.ID, transportWebsocket)
	defer func() {
		s.events.unsubscribe(sub)
		s.playerLeft(sess, pseudo)
	}()
	s.events.send(sub, sessionStateOf(sess))
	go s.events.pumpWebsocket(conn, sub)

	for {
		var m moveRequest
		err := websocket.JSON.Receive(conn, &m)
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
			s.events.send(sub, ErrorEvent{Error: "Requête invalide"})
			continue
		case err != nil:
			return
		}

		if !s.moveRL.allow(ip) {
			s.events.send(sub, ErrorEvent{Error: msgTooManyRequests})
			continue
		}
		if m.Pseudo == "" {
			m.Pseudo = pseudo
		}
		if err := s.applyMove(sess, m); err != nil {
			s.events.send(sub, ErrorEvent{Error: moveErrorMessage(err)})
		}
	}
}
