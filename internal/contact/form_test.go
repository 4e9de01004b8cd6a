package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillValid(t *testing.T, f *Form) {
	t.Helper()
	require.NoError(t, f.Edit(FieldName, "Ada"))
	require.NoError(t, f.Edit(FieldEmail, "ada@example.com"))
	require.NoError(t, f.Edit(FieldInterest, "web"))
	require.NoError(t, f.Edit(FieldMessage, "We need a new brand."))
}

func TestSubmitInvalidStaysIdle(t *testing.T) {
	called := false
	f := NewForm(SubmitterFunc(func(context.Context, FormState) error {
		called = true
		return nil
	}), nil)

	snap, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalid)
	assert.False(t, called)
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Len(t, snap.Errors, 3)
}

func TestEditClearsOnlyThatFieldError(t *testing.T) {
	f := NewForm(DelaySubmitter{}, nil)
	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalid)

	require.NoError(t, f.Edit(FieldEmail, "x"))
	snap := f.Snapshot()
	assert.NotContains(t, snap.Errors, FieldEmail)
	assert.Contains(t, snap.Errors, FieldName)
	assert.Contains(t, snap.Errors, FieldMessage)

	assert.ErrorIs(t, f.Edit(Field("phone"), "1"), ErrUnknownField)
}

func TestFillClearsChangedFieldErrors(t *testing.T) {
	f := NewForm(DelaySubmitter{}, nil)
	_, _ = f.Submit(context.Background())

	assert.True(t, f.Fill(FormState{Name: "Ada", Interest: DefaultInterest}))
	snap := f.Snapshot()
	assert.NotContains(t, snap.Errors, FieldName)
	assert.Contains(t, snap.Errors, FieldEmail)
}

func TestSubmitSuccessResetsAndSendAnother(t *testing.T) {
	var got FormState
	f := NewForm(SubmitterFunc(func(_ context.Context, in FormState) error {
		got = in
		return nil
	}), nil)
	fillValid(t, f)

	snap, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, snap.Status)
	assert.Equal(t, DefaultFormState(), snap.Fields)
	assert.Equal(t, "web", got.Interest)

	_, err = f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	assert.False(t, f.Fill(FormState{Name: "Grace", Email: "g@b.co", Message: "overwrite attempt"}))
	assert.Equal(t, DefaultFormState(), f.Snapshot().Fields)

	snap = f.SendAnother()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Equal(t, DefaultInterest, snap.Fields.Interest)
}

func TestSubmitFailureKeepsFields(t *testing.T) {
	f := NewForm(SubmitterFunc(func(context.Context, FormState) error {
		return errors.New("inbox unavailable")
	}), nil)
	fillValid(t, f)

	snap, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "Ada", snap.Fields.Name)
	assert.Equal(t, "inbox unavailable", snap.SubmitError)

	// SendAnother only leaves Success.
	assert.Equal(t, StatusFailed, f.SendAnother().Status)
}

func TestSubmitRejectedWhileSubmitting(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	f := NewForm(SubmitterFunc(func(context.Context, FormState) error {
		close(entered)
		<-release
		return nil
	}), nil)
	fillValid(t, f)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-entered
	assert.Equal(t, StatusSubmitting, f.Snapshot().Status)
	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.False(t, f.Fill(FormState{Name: "Grace"}))
	assert.Equal(t, "Ada", f.Snapshot().Fields.Name)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("submit did not finish")
	}
}

func TestDelaySubmitterHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := DelaySubmitter{Delay: time.Hour}.Submit(ctx, FormState{})
	assert.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, DelaySubmitter{Delay: time.Millisecond}.Submit(context.Background(), FormState{}))
}
