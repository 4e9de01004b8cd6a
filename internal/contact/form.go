package contact

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrInvalid          = errors.New("contact: form has field errors")
	ErrAlreadySubmitted = errors.New("contact: submission in progress or done")
	ErrUnknownField     = errors.New("contact: unknown field")
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

// Submitter delivers a validated form. It is the only external call in the
// contact workflow.
type Submitter interface {
	Submit(ctx context.Context, f FormState) error
}

type Snapshot struct {
	Status      Status      `json:"status"`
	Fields      FormState   `json:"fields"`
	Errors      FieldErrors `json:"errors,omitempty"`
	SubmitError string      `json:"submitError,omitempty"`
}

// Form is one visitor's contact form and its submission lifecycle.
type Form struct {
	sub Submitter
	log *zap.Logger

	mu        sync.Mutex
	status    Status
	fields    FormState
	errs      FieldErrors
	submitErr error
}

func NewForm(sub Submitter, log *zap.Logger) *Form {
	if log == nil {
		log = zap.NewNop()
	}
	return &Form{
		sub:    sub,
		log:    log,
		status: StatusIdle,
		fields: DefaultFormState(),
		errs:   FieldErrors{},
	}
}

// Edit sets one field and clears that field's error only.
func (f *Form) Edit(field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, ok := f.fields.with(field, value)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	f.fields = next
	delete(f.errs, field)
	return nil
}

// Fill replaces all fields, clearing the errors of fields whose value changed.
// It reports false and leaves the form untouched while a submission is in
// flight or has succeeded.
func (f *Form) Fill(in FormState) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == StatusSubmitting || f.status == StatusSuccess {
		return false
	}
	for _, field := range []Field{FieldName, FieldEmail, FieldInterest, FieldMessage} {
		if in.value(field) != f.fields.value(field) {
			delete(f.errs, field)
		}
	}
	f.fields = in
	return true
}

// Submit validates and, when clean, hands the form to the Submitter.
// Success resets the fields to their defaults; a failed delivery keeps them
// so the visitor can retry.
func (f *Form) Submit(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	if f.status == StatusSubmitting || f.status == StatusSuccess {
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, ErrAlreadySubmitted
	}
	f.errs = Validate(f.fields)
	if !f.errs.Empty() {
		snap := f.snapshotLocked()
		f.mu.Unlock()
		return snap, ErrInvalid
	}
	f.status = StatusSubmitting
	f.submitErr = nil
	fields := f.fields
	f.mu.Unlock()

	err := f.deliver(ctx, fields)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.status = StatusFailed
		f.submitErr = err
		f.log.Warn("contact submission failed", zap.String("email", fields.Email), zap.Error(err))
		return f.snapshotLocked(), err
	}
	f.status = StatusSuccess
	f.fields = DefaultFormState()
	f.errs = FieldErrors{}
	f.log.Info("contact submission delivered", zap.String("interest", fields.Interest))
	return f.snapshotLocked(), nil
}

// SendAnother returns a successful form to Idle with default fields.
func (f *Form) SendAnother() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == StatusSuccess {
		f.status = StatusIdle
		f.fields = DefaultFormState()
		f.errs = FieldErrors{}
	}
	return f.snapshotLocked()
}

func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Form) deliver(ctx context.Context, fields FormState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submitter panicked: %v", r)
		}
	}()
	if f.sub == nil {
		return errors.New("submitter is nil")
	}
	return f.sub.Submit(ctx, fields)
}

func (f *Form) snapshotLocked() Snapshot {
	errs := make(FieldErrors, len(f.errs))
	for k, v := range f.errs {
		errs[k] = v
	}
	snap := Snapshot{Status: f.status, Fields: f.fields, Errors: errs}
	if f.submitErr != nil {
		snap.SubmitError = f.submitErr.Error()
	}
	return snap
}

func (s FormState) value(field Field) string {
	switch field {
	case FieldName:
		return s.Name
	case FieldEmail:
		return s.Email
	case FieldInterest:
		return s.Interest
	case FieldMessage:
		return s.Message
	}
	return ""
}
