// Package speech provides the order-ready announcement pipeline:
// notification sound, settling delay, synthesized speech, repeats.
package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
)

// Env var names for the TTS engine credentials.
const (
	EnvSpeechKey    = "EXPEDE_SPEECH_KEY"
	EnvSpeechRegion = "EXPEDE_SPEECH_REGION"
)

// Audio format requested from the engine; matches the player.
const defaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Compile-time interface check.
var _ domain.Synthesizer = (*HTTPSynthesizer)(nil)

// SynthOption configures the HTTP synthesizer.
type SynthOption func(*HTTPSynthesizer)

// WithHTTPTimeout sets the HTTP client timeout for TTS requests.
func WithHTTPTimeout(d time.Duration) SynthOption {
	return func(s *HTTPSynthesizer) {
		s.httpClient.Timeout = d
	}
}

// HTTPSynthesizer speaks through a cloud TTS REST endpoint. The voice
// list is fetched asynchronously after Start; Voices reports
// domain.ErrVoicesNotReady until the fetch completes so callers can
// retry instead of losing an announcement.
type HTTPSynthesizer struct {
	subscriptionKey string
	region          string
	format          string
	httpClient      *http.Client
	player          domain.SoundPlayer
	log             *logger.Logger

	mu          sync.RWMutex
	voices      []domain.Voice
	voicesReady bool
	voicesErr   error
}

// NewHTTPSynthesizer creates a TTS client. Synthesized audio is played
// through the given player.
func NewHTTPSynthesizer(key, region string, player domain.SoundPlayer, log *logger.Logger, opts ...SynthOption) *HTTPSynthesizer {
	s := &HTTPSynthesizer{
		subscriptionKey: key,
		region:          region,
		format:          defaultAudioFormat,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		player:          player,
		log:             log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background voice-list fetch. Non-blocking.
func (s *HTTPSynthesizer) Start(ctx context.Context) {
	go s.fetchVoices(ctx)
}

func (s *HTTPSynthesizer) fetchVoices(ctx context.Context) {
	url := fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/voices/list", s.region)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		s.setVoices(nil, err)
		return
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.subscriptionKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.setVoices(nil, fmt.Errorf("voice list request failed: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		s.setVoices(nil, fmt.Errorf("voice list error %d: %s", resp.StatusCode, string(body)))
		return
	}

	var raw []struct {
		ShortName string `json:"ShortName"`
		Locale    string `json:"Locale"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		s.setVoices(nil, fmt.Errorf("decoding voice list: %w", err))
		return
	}

	voices := make([]domain.Voice, len(raw))
	for i, v := range raw {
		voices[i] = domain.Voice{Name: v.ShortName, Locale: v.Locale}
	}
	s.setVoices(voices, nil)
	s.log.Info("voice list loaded (%d voices)", len(voices))
}

func (s *HTTPSynthesizer) setVoices(voices []domain.Voice, err error) {
	s.mu.Lock()
	s.voices = voices
	s.voicesErr = err
	s.voicesReady = true
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("voice list unavailable: %v", err)
	}
}

// Voices returns the engine's voice list, or ErrVoicesNotReady while
// the background fetch is still in flight.
func (s *HTTPSynthesizer) Voices(ctx context.Context) ([]domain.Voice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.voicesReady {
		return nil, domain.ErrVoicesNotReady
	}
	if s.voicesErr != nil {
		return nil, s.voicesErr
	}
	return s.voices, nil
}

// Speak synthesizes text and plays the resulting audio. Blocks until
// playback finishes.
func (s *HTTPSynthesizer) Speak(ctx context.Context, text string, params domain.VoiceParams) error {
	audio, err := s.synthesize(ctx, text, params)
	if err != nil {
		return err
	}
	return s.player.Play(audio)
}

// synthesize converts text to WAV bytes through the REST endpoint.
func (s *HTTPSynthesizer) synthesize(ctx context.Context, text string, params domain.VoiceParams) ([]byte, error) {
	url := fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", s.region)

	ssml := buildSSML(text, params)
	s.log.Debug("tts: synthesizing %d chars with voice %q", len(text), params.Voice)

	req, err := http.NewRequestWithContext(ctx, "POST", url, strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", s.subscriptionKey)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", s.format)
	req.Header.Set("User-Agent", "Expede/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts error %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio data: %w", err)
	}

	s.log.Debug("tts: got %d bytes of audio", len(audio))
	return audio, nil
}

// buildSSML creates SSML markup with prosody from the voice params.
func buildSSML(text string, params domain.VoiceParams) string {
	locale := params.Locale
	if locale == "" {
		locale = "en-US"
	}

	inner := escapeXML(text)
	rate := prosodyPercent(params.Rate)
	pitch := prosodyPercent(params.Pitch)
	volume := prosodyPercent(params.Volume)
	if rate != "" || pitch != "" || volume != "" {
		inner = fmt.Sprintf(`<prosody rate='%s' pitch='%s' volume='%s'>%s</prosody>`,
			orDefault(rate), orDefault(pitch), orDefault(volume), inner)
	}

	voiceAttr := ""
	if params.Voice != "" {
		voiceAttr = fmt.Sprintf(" name='%s'", params.Voice)
	}

	return fmt.Sprintf(
		`<speak version='1.0' xml:lang='%s'><voice xml:lang='%s'%s>%s</voice></speak>`,
		locale, locale, voiceAttr, inner,
	)
}

// prosodyPercent turns a 1.0-relative multiplier into an SSML
// percentage ("+20%" / "-10%"). Zero or 1.0 means no adjustment.
func prosodyPercent(v float64) string {
	if v == 0 || v == 1.0 {
		return ""
	}
	return fmt.Sprintf("%+.0f%%", (v-1.0)*100)
}

func orDefault(s string) string {
	if s == "" {
		return "+0%"
	}
	return s
}

func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
