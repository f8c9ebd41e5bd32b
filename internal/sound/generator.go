// Package sound synthesizes the panel's notification audio. No asset
// files: every buffer is generated from fixed musical frequencies at
// the player's native sample rate.
package sound

import (
	"math"
	"time"
)

// Audio parameters shared with the player.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Chime tone frequencies (E6, G6).
var chimeFreqs = [2]float64{1318.51, 1567.98}

// Bell partial ratios over the fundamental, with their relative
// amplitudes. Loosely bell-like: inharmonic upper partials.
var bellPartials = [3]struct{ ratio, amp float64 }{
	{1.0, 1.0},
	{2.76, 0.55},
	{5.40, 0.28},
}

const (
	chimeToneDur  = 550 * time.Millisecond
	bellBurstDur  = 350 * time.Millisecond
	bellGapDur    = 250 * time.Millisecond
	bellFreq      = 880.0 // A5 fundamental
	attackDur     = 12 * time.Millisecond
	softClipDrive = 1.6
)

// Chime synthesizes a one- or two-tone chime. Each tone gets its own
// attack/release envelope and a light second-harmonic enrichment,
// then the whole buffer is soft-clipped. tones outside 1..2 clamp.
func Chime(tones int) []int16 {
	if tones < 1 {
		tones = 1
	}
	if tones > 2 {
		tones = 2
	}

	toneSamples := durToSamples(chimeToneDur)
	buf := make([]float64, toneSamples*tones)

	for tone := 0; tone < tones; tone++ {
		freq := chimeFreqs[tone]
		base := tone * toneSamples
		for i := 0; i < toneSamples; i++ {
			t := float64(i) / SampleRate
			s := math.Sin(2*math.Pi*freq*t) + 0.30*math.Sin(2*math.Pi*2*freq*t)
			buf[base+i] = s * envelope(i, toneSamples)
		}
	}

	return quantize(buf)
}

// ChimeDuration returns the playback duration of Chime(tones).
func ChimeDuration(tones int) time.Duration {
	if tones < 1 {
		tones = 1
	}
	if tones > 2 {
		tones = 2
	}
	return time.Duration(tones) * chimeToneDur
}

// DoubleBell synthesizes two identical three-partial bell bursts
// separated by a silent gap.
func DoubleBell() []int16 {
	burstSamples := durToSamples(bellBurstDur)
	gapSamples := durToSamples(bellGapDur)

	burst := make([]float64, burstSamples)
	for i := range burst {
		t := float64(i) / SampleRate
		var s float64
		for _, p := range bellPartials {
			s += p.amp * math.Sin(2*math.Pi*bellFreq*p.ratio*t)
		}
		burst[i] = s * envelope(i, burstSamples)
	}

	buf := make([]float64, burstSamples*2+gapSamples)
	copy(buf, burst)
	copy(buf[burstSamples+gapSamples:], burst)

	return quantize(buf)
}

// DoubleBellDuration returns the playback duration of DoubleBell().
func DoubleBellDuration() time.Duration {
	return 2*bellBurstDur + bellGapDur
}

// envelope shapes one tone: linear attack, exponential release.
func envelope(i, total int) float64 {
	attack := durToSamples(attackDur)
	if i < attack {
		return float64(i) / float64(attack)
	}
	rel := float64(i-attack) / float64(total-attack)
	return math.Exp(-4 * rel)
}

// quantize soft-clips (tanh compression) and converts to 16-bit PCM.
// tanh keeps every sample strictly inside full scale no matter how the
// partials stack up, trading a little loudness for zero hard clipping.
func quantize(buf []float64) []int16 {
	out := make([]int16, len(buf))
	for i, s := range buf {
		out[i] = int16(math.Tanh(s*softClipDrive) * 32767)
	}
	return out
}

func durToSamples(d time.Duration) int {
	return int(int64(SampleRate) * d.Milliseconds() / 1000)
}
