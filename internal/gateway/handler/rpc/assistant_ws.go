package rpc

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"nexus/internal/assistant"
)

const (
	assistantWSWriteWait = 10 * time.Second
	assistantWSPongWait  = 60 * time.Second
	assistantWSPingEvery = (assistantWSPongWait * 9) / 10
)

var assistantWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type assistantWSInbound struct {
	Type  string `json:"type"`
	Input string `json:"input,omitempty"`
}

type assistantWSOutbound struct {
	Type      string             `json:"type"`
	SessionID string             `json:"sessionId,omitempty"`
	Seq       int                `json:"seq,omitempty"`
	Message   *assistant.Message `json:"message,omitempty"`
	Awaiting  bool               `json:"awaiting,omitempty"`
	Accepted  bool               `json:"accepted,omitempty"`
	Code      string             `json:"code,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// HandleAssistantWS streams a chat session: the transcript is replayed on
// connect, then every new message is pushed as it is appended.
func (h *AssistantHandler) HandleAssistantWS(w http.ResponseWriter, r *http.Request) {
	sess := h.store.GetOrCreate(strings.TrimSpace(r.URL.Query().Get("session_id")))

	conn, err := assistantWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(assistantWSPongWait)); err != nil {
		h.log.Warn("assistant ws set read deadline failed", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(assistantWSPongWait))
	})

	writeCh := make(chan assistantWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(assistantWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(assistantWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(assistantWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	pushAssistantWS(ctx, writeCh, assistantWSOutbound{Type: "session", SessionID: sess.ID()})

	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					cancel()
					_ = conn.Close()
					return
				}
				pushAssistantWS(ctx, writeCh, assistantWSOutbound{
					Type:     "message",
					Seq:      evt.Seq,
					Message:  evt.Message,
					Awaiting: evt.Awaiting,
				})
			}
		}
	}()

	for {
		var in assistantWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushAssistantWS(ctx, writeCh, assistantWSOutbound{Type: "pong"})
		case "send":
			_, accepted := sess.Send(in.Input)
			pushAssistantWS(ctx, writeCh, assistantWSOutbound{Type: "ack", Accepted: accepted, Awaiting: sess.Awaiting()})
		case "":
			pushAssistantWS(ctx, writeCh, assistantWSOutbound{Type: "error", Code: "invalid_argument", Error: "type is required"})
		default:
			pushAssistantWS(ctx, writeCh, assistantWSOutbound{Type: "error", Code: "invalid_argument", Error: "unsupported type"})
		}
	}
}

func pushAssistantWS(ctx context.Context, ch chan<- assistantWSOutbound, msg assistantWSOutbound) {
	select {
	case ch <- msg:
	case <-ctx.Done():
	}
}
