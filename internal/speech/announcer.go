package speech

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
	"github.com/lfmorais/expede/internal/sound"
)

// AnnouncerOption configures the Announcer.
type AnnouncerOption func(*Announcer)

// WithQueueSize sets the pending-announcement channel capacity.
func WithQueueSize(n int) AnnouncerOption {
	return func(a *Announcer) {
		a.tasks = make(chan domain.Order, n)
	}
}

// WithVoiceWait sets how long the announcer waits for the voice list
// before falling back to the engine default voice.
func WithVoiceWait(timeout, retry time.Duration) AnnouncerOption {
	return func(a *Announcer) {
		a.voiceWait = timeout
		a.voiceRetry = retry
	}
}

// withSleep replaces the sequencing sleep. Test hook.
func withSleep(fn func(ctx context.Context, d time.Duration) bool) AnnouncerOption {
	return func(a *Announcer) {
		a.sleep = fn
	}
}

// Announcer runs the order-ready announcement pipeline. All
// announcements are serialized through a single goroutine: sound,
// settling delay, speech, optional repeats, one order at a time.
// Announce is fire-and-forget; every failure inside a sequence is
// logged and never propagated back to the caller.
type Announcer struct {
	synth  domain.Synthesizer
	player domain.SoundPlayer // nil when the audio device is unavailable
	cfg    Config
	log    *logger.Logger

	tasks      chan domain.Order
	sleep      func(ctx context.Context, d time.Duration) bool
	voiceWait  time.Duration
	voiceRetry time.Duration

	resolved *domain.VoiceParams // memoized after first successful resolution
}

// NewAnnouncer creates an announcer. player may be nil: the sound
// stage is skipped with a warning and speech still runs.
func NewAnnouncer(synth domain.Synthesizer, player domain.SoundPlayer, cfg Config, log *logger.Logger, opts ...AnnouncerOption) *Announcer {
	a := &Announcer{
		synth:      synth,
		player:     player,
		cfg:        cfg,
		log:        log,
		tasks:      make(chan domain.Order, 32),
		sleep:      sleepCtx,
		voiceWait:  3 * time.Second,
		voiceRetry: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start begins the announcement processing goroutine. Non-blocking.
func (a *Announcer) Start(ctx context.Context) {
	go a.processLoop(ctx)
	a.log.Info("announcer started")
}

// Announce queues an order-ready announcement. Non-blocking; when the
// queue is full the announcement is dropped with a warning rather than
// blocking the lifecycle path.
func (a *Announcer) Announce(order domain.Order) {
	if !a.cfg.Enabled {
		return
	}
	select {
	case a.tasks <- order:
	default:
		a.log.Warn("announcer: queue full, dropping announcement for order %s", order.Number)
	}
}

func (a *Announcer) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			a.log.Info("announcer stopped")
			return
		case order := <-a.tasks:
			a.runSequence(ctx, order)
		}
	}
}

// runSequence executes the full notification contract for one order:
// sound, then sound duration plus the settling delay, then speech,
// repeated per the repeat policy.
func (a *Announcer) runSequence(ctx context.Context, order domain.Order) {
	text := BuildAnnouncement(order, a.cfg)
	params := a.resolveVoice(ctx)

	repeats := a.cfg.Repeats()
	for rep := 0; rep < repeats; rep++ {
		if rep > 0 {
			if !a.sleep(ctx, a.cfg.RepeatInterval) {
				return
			}
		}

		start := time.Now()
		dur := a.playSound()

		// Speech must not start before sound start + duration + settle,
		// regardless of how quickly playback returned.
		wait := dur + settleDelay - time.Since(start)
		if wait > 0 {
			if !a.sleep(ctx, wait) {
				return
			}
		}

		if err := a.synth.Speak(ctx, text, params); err != nil {
			if errors.Is(err, domain.ErrSpeechUnavailable) {
				a.log.Debug("announcer: no synthesis engine, sound only for order %s", order.Number)
			} else {
				a.log.Error("announcer: speech failed for order %s: %v", order.Number, err)
			}
		}
	}
}

// playSound plays the configured sound source and returns its
// duration. A file source that fails to load or play falls back to
// the generated sound; a missing player skips the stage entirely.
func (a *Announcer) playSound() time.Duration {
	if a.player == nil {
		a.log.Warn("announcer: audio unavailable, skipping sound stage")
		return 0
	}

	if a.cfg.Sound == SoundFile && a.cfg.SoundFilePath != "" {
		if dur, ok := a.playFile(a.cfg.SoundFilePath); ok {
			return dur
		}
		a.log.Warn("announcer: sound file failed, falling back to generated sound")
	}

	wav, dur := a.generated()
	if err := a.player.Play(wav); err != nil {
		a.log.Error("announcer: sound playback failed: %v", err)
	}
	return dur
}

func (a *Announcer) playFile(path string) (time.Duration, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		a.log.Debug("announcer: reading sound file %s: %v", path, err)
		return 0, false
	}
	dur, err := wavDuration(data)
	if err != nil {
		a.log.Debug("announcer: bad sound file %s: %v", path, err)
		return 0, false
	}
	if err := a.player.Play(data); err != nil {
		a.log.Debug("announcer: playing sound file %s: %v", path, err)
		return 0, false
	}
	return dur, true
}

// generated returns the procedural fallback buffer and its duration.
func (a *Announcer) generated() ([]byte, time.Duration) {
	switch a.cfg.Sound {
	case SoundDoubleBell:
		return sound.EncodeWAV(sound.DoubleBell()), sound.DoubleBellDuration()
	case SoundChimeTwo:
		return sound.EncodeWAV(sound.Chime(2)), sound.ChimeDuration(2)
	default:
		return sound.EncodeWAV(sound.Chime(1)), sound.ChimeDuration(1)
	}
}

// resolveVoice picks the voice for announcements: exact or fuzzy name
// match, then locale match, then the engine default. The voice list
// loads asynchronously, so a not-ready list is polled until voiceWait
// elapses; an announcement is never lost just because voices are late.
func (a *Announcer) resolveVoice(ctx context.Context) domain.VoiceParams {
	params := domain.VoiceParams{
		Rate:   a.cfg.Rate,
		Pitch:  a.cfg.Pitch,
		Volume: a.cfg.Volume,
		Locale: a.cfg.Locale,
	}

	if a.resolved != nil {
		params.Voice = a.resolved.Voice
		return params
	}

	voices, err := a.waitVoices(ctx)
	if err != nil {
		a.log.Warn("announcer: voice list unavailable, using engine default: %v", err)
		return params
	}

	params.Voice = selectVoice(voices, a.cfg.VoiceName, a.cfg.Locale)
	a.resolved = &domain.VoiceParams{Voice: params.Voice}
	return params
}

func (a *Announcer) waitVoices(ctx context.Context) ([]domain.Voice, error) {
	deadline := time.Now().Add(a.voiceWait)
	for {
		voices, err := a.synth.Voices(ctx)
		if err == nil {
			return voices, nil
		}
		if err != domain.ErrVoicesNotReady || time.Now().After(deadline) {
			return nil, err
		}
		if !a.sleep(ctx, a.voiceRetry) {
			return nil, ctx.Err()
		}
	}
}

// selectVoice implements the fallback chain over an available voice
// list: exact name, fuzzy name, locale, then empty (engine default).
func selectVoice(voices []domain.Voice, wantName, wantLocale string) string {
	if wantName != "" {
		for _, v := range voices {
			if strings.EqualFold(v.Name, wantName) {
				return v.Name
			}
		}
		lower := strings.ToLower(wantName)
		for _, v := range voices {
			if strings.Contains(strings.ToLower(v.Name), lower) {
				return v.Name
			}
		}
	}
	if wantLocale != "" {
		for _, v := range voices {
			if strings.EqualFold(v.Locale, wantLocale) {
				return v.Name
			}
		}
	}
	return ""
}

// sleepCtx sleeps for d unless the context is cancelled first.
// Returns false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
