package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vthunder/ainotes/internal/interpret"
	"github.com/vthunder/ainotes/internal/logging"
	"github.com/vthunder/ainotes/internal/task"
)

var upgrader = websocket.Upgrader{
	// The console is same-origin in deployment; CORS is enforced at the
	// HTTP layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type consoleRequest struct {
	Utterance string `json:"utterance"`
	ChooseID  string `json:"choose_id"`
	Context   struct {
		NowTZ string `json:"now_tz"`
	} `json:"context"`
}

type consoleEvent struct {
	Phase   string                  `json:"phase"`
	Message string                  `json:"message,omitempty"`
	JSON    *interpret.ParsedAction `json:"json,omitempty"`
	Options []clarifyOption         `json:"options,omitempty"`
	TaskID  string                  `json:"task_id,omitempty"`
	Task    *task.Task              `json:"task,omitempty"`
}

type clarifyOption struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// handleConsole runs the interactive utterance loop over a websocket.
// Fragments of one utterance are processed strictly in sequence; an
// ambiguous target suspends the current fragment until the client sends a
// follow-up with choose_id set.
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Info("ws", "upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req consoleRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debug("ws", "read failed: %v", err)
			}
			return
		}

		tz := req.Context.NowTZ
		if tz == "" {
			tz = defaultTimezone
		}

		s.processUtterance(conn, r, req, tz)
	}
}

func (s *Server) processUtterance(conn *websocket.Conn, r *http.Request, req consoleRequest, tz string) {
	send := func(ev consoleEvent) bool {
		return conn.WriteJSON(ev) == nil
	}

	if req.Utterance == "" {
		send(consoleEvent{Phase: "error", Message: "empty_utterance"})
		return
	}
	if !send(consoleEvent{Phase: "thinking"}) {
		return
	}

	for _, frag := range splitFragments(req.Utterance) {
		parsed, err := s.builder.Build(r.Context(), frag, tz, deriveTitle(frag))
		if err != nil {
			send(consoleEvent{Phase: "error", Message: "empty_utterance"})
			continue
		}
		if req.ChooseID != "" {
			// Follow-up after clarification: pin the chosen task.
			parsed.Target = interpret.ByID(req.ChooseID)
		}

		logging.Info("ws", "parsed %q -> %s", logging.RedactPII(frag), parsed.Operation)
		if !send(consoleEvent{Phase: "parsed", JSON: parsed}) {
			return
		}

		// Title targets matching more than one task need the user to pick
		// before anything is mutated.
		if matches, err := s.applier.Matches(parsed.Target); err == nil && len(matches) > 1 {
			options := make([]clarifyOption, len(matches))
			for i, t := range matches {
				options[i] = clarifyOption{ID: t.ID, Title: t.Title}
			}
			send(consoleEvent{Phase: "need_clarification", Options: options})
			continue
		}

		result, err := s.applier.Apply(parsed)
		if err != nil {
			send(consoleEvent{Phase: "error", Message: err.Error()})
			continue
		}
		if !send(consoleEvent{Phase: "applied", TaskID: result.ID, Task: result}) {
			return
		}
	}
}
