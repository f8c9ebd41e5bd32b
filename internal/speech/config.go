package speech

import "time"

// TemplateKind selects how an announcement phrase is built.
type TemplateKind string

const (
	TemplateNumberOnly     TemplateKind = "number_only"
	TemplateNameReady      TemplateKind = "name_ready"
	TemplateOrderReady     TemplateKind = "order_ready"
	TemplateNameOrderReady TemplateKind = "name_order_ready"
	TemplateCustom         TemplateKind = "custom"
)

// SoundKind selects the notification sound preceding speech.
type SoundKind string

const (
	SoundChime      SoundKind = "chime"
	SoundChimeTwo   SoundKind = "chime2"
	SoundDoubleBell SoundKind = "bell"
	SoundFile       SoundKind = "file"
)

// settleDelay is the fixed gap between sound completion and speech
// onset, so speech never overlaps the tail of the chime.
const settleDelay = 1 * time.Second

// Config is the announcement policy consumed by the Announcer.
type Config struct {
	Enabled        bool
	Template       TemplateKind
	CustomTemplate string // verbatim text for TemplateCustom
	VoiceName      string // preferred voice, empty = engine default
	Locale         string // BCP-47 tag used for voice fallback
	Rate           float64
	Pitch          float64
	Volume         float64
	RepeatCount    int           // <=1 disables repetition
	RepeatInterval time.Duration // <=0 disables repetition
	Sound          SoundKind
	SoundFilePath  string // used when Sound == SoundFile
}

// Repeats returns how many times the full sound+speech sequence runs.
// A count of exactly 1 or a missing interval disables repetition.
func (c Config) Repeats() int {
	if c.RepeatCount <= 1 || c.RepeatInterval <= 0 {
		return 1
	}
	return c.RepeatCount
}
