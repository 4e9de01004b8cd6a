package llmclient

import (
	"context"
	"errors"
)

var (
	ErrEmptyResponse = errors.New("llmclient: empty response from model")
	ErrNoImage       = errors.New("llmclient: response carried no image")
)

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// Image is raw generated image data.
type Image struct {
	MIMEType string
	Data     []byte
}

// Client is what the site needs from a content-generation backend.
type Client interface {
	Name() string
	GenerateText(ctx context.Context, system, prompt string, temperature float32) (string, error)
	GenerateImage(ctx context.Context, prompt string) (Image, error)
	Close() error
}
