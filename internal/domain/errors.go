package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrAudioUnavailable  = errors.New("audio device unavailable")
	ErrSpeechUnavailable = errors.New("speech synthesis unavailable")
	ErrVoicesNotReady    = errors.New("voice list not ready")
)
