package rpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"nexus/internal/contact"
)

const contactService = "/nexus.v1.ContactService/"

type ValidateRequest struct {
	Fields contact.FormState `json:"fields"`
}

type ValidateResponse struct {
	Valid  bool                `json:"valid"`
	Errors contact.FieldErrors `json:"errors"`
}

type SubmitRequest struct {
	FormID string            `json:"formId,omitempty"`
	Fields contact.FormState `json:"fields"`
}

type FormResponse struct {
	FormID   string           `json:"formId"`
	Accepted bool             `json:"accepted"`
	Form     contact.Snapshot `json:"form"`
}

type SendAnotherRequest struct {
	FormID string `json:"formId"`
}

// ContactHandler keeps one contact.Form per browser form id so the
// submission lifecycle survives between calls.
type ContactHandler struct {
	sub   contact.Submitter
	log   *zap.Logger
	forms *expirable.LRU[string, *contact.Form]
}

func NewContactHandler(sub contact.Submitter, log *zap.Logger) *ContactHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactHandler{
		sub:   sub,
		log:   log,
		forms: expirable.NewLRU[string, *contact.Form](4096, nil, time.Hour),
	}
}

func (h *ContactHandler) Routes() []Route {
	opts := handlerOptions()
	return []Route{
		{contactService + "Validate", connect.NewUnaryHandler(contactService+"Validate", h.Validate, opts...)},
		{contactService + "Submit", connect.NewUnaryHandler(contactService+"Submit", h.Submit, opts...)},
		{contactService + "SendAnother", connect.NewUnaryHandler(contactService+"SendAnother", h.SendAnother, opts...)},
	}
}

func (h *ContactHandler) Validate(_ context.Context, req *connect.Request[ValidateRequest]) (*connect.Response[ValidateResponse], error) {
	errs := contact.Validate(req.Msg.Fields)
	return connect.NewResponse(&ValidateResponse{Valid: errs.Empty(), Errors: errs}), nil
}

// Submit fills the form and runs it through validation and delivery. Field
// errors and delivery failures come back in the snapshot, not as RPC errors.
func (h *ContactHandler) Submit(ctx context.Context, req *connect.Request[SubmitRequest]) (*connect.Response[FormResponse], error) {
	id, form := h.form(req.Msg.FormID)
	if !form.Fill(req.Msg.Fields) {
		h.log.Debug("contact fields ignored: form already settled", zap.String("form", id))
	}
	snap, err := form.Submit(ctx)
	if err != nil && !errors.Is(err, contact.ErrInvalid) && !errors.Is(err, contact.ErrAlreadySubmitted) {
		h.log.Warn("contact delivery failed", zap.String("form", id), zap.Error(err))
	}
	return connect.NewResponse(&FormResponse{FormID: id, Accepted: err == nil, Form: snap}), nil
}

func (h *ContactHandler) SendAnother(_ context.Context, req *connect.Request[SendAnotherRequest]) (*connect.Response[FormResponse], error) {
	id := strings.TrimSpace(req.Msg.FormID)
	form, ok := h.forms.Get(id)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("form not found"))
	}
	snap := form.SendAnother()
	return connect.NewResponse(&FormResponse{FormID: id, Accepted: snap.Status == contact.StatusIdle, Form: snap}), nil
}

func (h *ContactHandler) form(id string) (string, *contact.Form) {
	id = strings.TrimSpace(id)
	if id != "" {
		if f, ok := h.forms.Get(id); ok {
			return id, f
		}
	} else {
		id = uuid.NewString()
	}
	f := contact.NewForm(h.sub, h.log.With(zap.String("form", id)))
	h.forms.Add(id, f)
	return id, f
}
