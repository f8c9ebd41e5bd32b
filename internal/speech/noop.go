package speech

import (
	"context"

	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
)

// Compile-time interface check.
var _ domain.Synthesizer = (*NoOp)(nil)

// NoOp is a synthesizer that does nothing. Used when speech is
// disabled or no engine is configured.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a no-op synthesizer.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Voices returns an empty voice list.
func (n *NoOp) Voices(ctx context.Context) ([]domain.Voice, error) {
	return nil, nil
}

// Speak reports that no synthesis engine is available. Callers treat
// the sentinel as a degraded path, not a failure.
func (n *NoOp) Speak(ctx context.Context, text string, params domain.VoiceParams) error {
	n.log.Debug("speech no-op: would say %q", text)
	return domain.ErrSpeechUnavailable
}
