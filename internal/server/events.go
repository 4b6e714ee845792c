package server

import (
	"bytes"
	"encoding/json"

	"github.com/bodul/crosswordmaster/internal/puzzle"
)

// EventType names a session event on the wire. It is the SSE event name
// and the "type" field of the JSON body.
type EventType string

const (
	EventSessionState EventType = "session_state"
	EventCellUpdate   EventType = "cell_update"
	EventPlayerJoined EventType = "player_joined"
	EventPlayerLeft   EventType = "player_left"
	EventSolved       EventType = "solved"
	EventError        EventType = "error"
)

// Event is something that happened in a solving session.
type Event interface {
	Kind() EventType
}

// SessionState is sent to every new subscriber.
type SessionState struct {
	State   [][]string                `json:"state"`
	Players map[string]*puzzle.Player `json:"players"`
}

// CellUpdate reports a letter written or erased by a solver.
type CellUpdate struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Value  string `json:"value"`
	Pseudo string `json:"pseudo"`
}

type PlayerJoined struct {
	Pseudo string `json:"pseudo"`
	Color  string `json:"color"`
}

type PlayerLeft struct {
	Pseudo string `json:"pseudo"`
}

// Solved is published once, when a session is first fully correct.
type Solved struct {
	Score int `json:"score"`
}

// ErrorEvent is only ever sent to the websocket client that caused it.
type ErrorEvent struct {
	Error string `json:"error"`
}

func (SessionState) Kind() EventType { return EventSessionState }
func (CellUpdate) Kind() EventType   { return EventCellUpdate }
func (PlayerJoined) Kind() EventType { return EventPlayerJoined }
func (PlayerLeft) Kind() EventType   { return EventPlayerLeft }
func (Solved) Kind() EventType       { return EventSolved }
func (ErrorEvent) Kind() EventType   { return EventError }

// sessionStateOf snapshots a session for a new subscriber.
func sessionStateOf(sess *puzzle.Session) SessionState {
	snap := sess.Snapshot()
	return SessionState{State: snap.State, Players: snap.Players}
}

// encodeEvent writes e as a JSON object whose first field is "type".
func encodeEvent(e Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	kind, err := json.Marshal(e.Kind())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(kind)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}
