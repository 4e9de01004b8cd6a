package assistant

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	FallbackQuiet = "Our creative circuits are momentarily quiet. Please try again soon."
	FallbackBusy  = "The digital ether is busy right now. Let's talk strategy in a moment."
)

const strategistInstruction = "You are the Lead Strategist at Nexus Creative, a premium marketing agency. " +
	"You provide concise, brilliant, and sophisticated marketing advice. " +
	"Your tone is professional, futuristic, and encouraging. Keep responses under 100 words."

const strategistTemperature = 0.8

// TextModel is the slice of an LLM client the advisor needs.
type TextModel interface {
	GenerateText(ctx context.Context, system, prompt string, temperature float32) (string, error)
}

// ModelAdvisor answers as the agency strategist and never returns an error.
type ModelAdvisor struct {
	model TextModel
	log   *zap.Logger
}

func NewModelAdvisor(model TextModel, log *zap.Logger) *ModelAdvisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &ModelAdvisor{model: model, log: log}
}

func (a *ModelAdvisor) Advise(ctx context.Context, prompt string) Reply {
	if a == nil || a.model == nil {
		return Reply{Text: FallbackBusy, Fallback: true}
	}
	text, err := a.model.GenerateText(ctx, strategistInstruction, prompt, strategistTemperature)
	if err != nil {
		a.log.Warn("advice generation failed", zap.Error(err))
		return Reply{Text: FallbackBusy, Fallback: true}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{Text: FallbackQuiet, Fallback: true}
	}
	return Reply{Text: text}
}
