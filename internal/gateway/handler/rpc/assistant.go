package rpc

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"nexus/internal/assistant"
)

const assistantService = "/nexus.v1.AssistantService/"

type StartSessionRequest struct{}

type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

type SendRequest struct {
	SessionID string `json:"sessionId"`
	Input     string `json:"input"`
}

type TranscriptResponse struct {
	SessionID string              `json:"sessionId"`
	Accepted  bool                `json:"accepted,omitempty"`
	Awaiting  bool                `json:"awaiting"`
	Messages  []assistant.Message `json:"messages"`
}

type AssistantHandler struct {
	store *assistant.Store
	log   *zap.Logger
}

func NewAssistantHandler(store *assistant.Store, log *zap.Logger) *AssistantHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssistantHandler{store: store, log: log}
}

func (h *AssistantHandler) Routes() []Route {
	opts := handlerOptions()
	return []Route{
		{assistantService + "StartSession", connect.NewUnaryHandler(assistantService+"StartSession", h.StartSession, opts...)},
		{assistantService + "Send", connect.NewUnaryHandler(assistantService+"Send", h.Send, opts...)},
		{assistantService + "Transcript", connect.NewUnaryHandler(assistantService+"Transcript", h.Transcript, opts...)},
	}
}

func (h *AssistantHandler) StartSession(_ context.Context, _ *connect.Request[StartSessionRequest]) (*connect.Response[TranscriptResponse], error) {
	sess := h.store.Create()
	return connect.NewResponse(transcriptOf(sess, false)), nil
}

// Send does not wait for the reply; it lands in the transcript later.
func (h *AssistantHandler) Send(_ context.Context, req *connect.Request[SendRequest]) (*connect.Response[TranscriptResponse], error) {
	sess, err := h.session(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	_, accepted := sess.Send(req.Msg.Input)
	return connect.NewResponse(transcriptOf(sess, accepted)), nil
}

func (h *AssistantHandler) Transcript(_ context.Context, req *connect.Request[SessionRequest]) (*connect.Response[TranscriptResponse], error) {
	sess, err := h.session(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(transcriptOf(sess, false)), nil
}

func (h *AssistantHandler) session(id string) (*assistant.Session, error) {
	sess, err := h.store.Get(id)
	if errors.Is(err, assistant.ErrSessionNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return sess, nil
}

func transcriptOf(sess *assistant.Session, accepted bool) *TranscriptResponse {
	return &TranscriptResponse{
		SessionID: sess.ID(),
		Accepted:  accepted,
		Awaiting:  sess.Awaiting(),
		Messages:  sess.Transcript(),
	}
}
