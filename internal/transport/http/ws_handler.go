package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"quizboard-service/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const closeGrace = time.Second

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Category int `json:"category"`
	Question int `json:"question"`
}

type teamPayload struct {
	TeamID int    `json:"teamId"`
	Name   string `json:"name"`
	Delta  int    `json:"delta"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades to a websocket that streams session snapshots and accepts board actions.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("id")
	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	// Single writer goroutine; gorilla connections do not allow concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
			if msg.Type == "ended" {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(time.Second))
				// Unblock the read loop if the peer never answers the close.
				_ = conn.SetReadDeadline(time.Now().Add(closeGrace))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					push(outboundMessage[any]{Type: "ended", Payload: errorPayload{Message: "session ended"}})
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: snap}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(r.Context(), sessionID, inbound); err != nil {
			push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

type protocolError string

func (e protocolError) Error() string { return string(e) }

// dispatch applies one client action. Resulting state reaches the client through its subscription.
func (h *Handler) dispatch(ctx context.Context, sessionID string, msg inboundMessage) error {
	switch msg.Type {
	case "select":
		var p selectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return protocolError("invalid select payload")
		}
		_, err := h.service.SelectQuestion(ctx, sessionID, domain.QuestionKey{Category: p.Category, Question: p.Question})
		return err
	case "reveal":
		return h.service.RevealAnswer(ctx, sessionID)
	case "close":
		_, err := h.service.CloseQuestion(ctx, sessionID)
		return err
	case "addTeam":
		_, err := h.service.AddTeam(ctx, sessionID)
		return err
	case "removeTeam", "renameTeam", "adjustScore":
		var p teamPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return protocolError("invalid " + msg.Type + " payload")
		}
		var err error
		switch msg.Type {
		case "removeTeam":
			_, err = h.service.RemoveTeam(ctx, sessionID, p.TeamID)
		case "renameTeam":
			_, err = h.service.RenameTeam(ctx, sessionID, p.TeamID, p.Name)
		default:
			_, _, err = h.service.AdjustScore(ctx, sessionID, p.TeamID, p.Delta)
		}
		return err
	case "end":
		return h.service.EndSession(ctx, sessionID)
	default:
		return protocolError("unsupported message type")
	}
}
