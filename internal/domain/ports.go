package domain

import "context"

// CommandParser converts raw input-field text into structured commands.
// Implementations can be keyword-based, regex, or anything richer.
type CommandParser interface {
	Parse(ctx context.Context, input string) (*Command, error)
}

// Notifier delivers messages to the operator. Implementations can write
// to the terminal scrollback, push notifications, or speak.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// Voice describes one synthesis voice offered by a Synthesizer.
type Voice struct {
	Name   string
	Locale string // BCP-47 tag, e.g. "pt-BR"
}

// VoiceParams carries per-utterance synthesis parameters.
type VoiceParams struct {
	Voice  string  // resolved voice name, empty = engine default
	Rate   float64 // 1.0 = normal
	Pitch  float64 // 1.0 = normal
	Volume float64 // 0..1
	Locale string
}

// Synthesizer is the speech-synthesis capability. The voice list is
// loaded asynchronously: Voices returns ErrVoicesNotReady until the
// engine has finished enumerating, and callers must tolerate that.
type Synthesizer interface {
	Voices(ctx context.Context) ([]Voice, error)
	Speak(ctx context.Context, text string, params VoiceParams) error
}

// SoundPlayer plays a WAV buffer to the audio output. Construction of
// an implementation may fail with ErrAudioUnavailable; Play blocks
// until playback finishes or the player is stopped.
type SoundPlayer interface {
	Play(wav []byte) error
	Stop()
}
