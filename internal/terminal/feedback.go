package terminal

import (
	"time"
	"unicode/utf8"
)

// Display is a two-line character display.
type Display interface {
	Show(line1, line2 string)
	SetClock(hhmm string)
}

// Tone is one beep.  FreqHz 0 is a rest.
type Tone struct {
	FreqHz int
	Dur    time.Duration
}

type Buzzer interface {
	Play(tones []Tone)
}

type cue struct {
	title string
	tones []Tone
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Every kind has its own title and tone sequence so a user can tell them
// apart without looking.
var cues = map[OutcomeKind]cue{
	CheckIn:           {"Checked in", []Tone{{1047, ms(90)}, {1568, ms(140)}}},
	CheckOut:          {"Checked out", []Tone{{1568, ms(90)}, {1047, ms(140)}}},
	AlreadyCheckedOut: {"Already out", []Tone{{880, ms(90)}, {0, ms(60)}, {880, ms(90)}}},
	Unregistered:      {"Not registered", []Tone{{440, ms(400)}}},
	Acknowledged:      {"Recorded", []Tone{{1319, ms(120)}}},
	Failed:            {"Error", []Tone{{262, ms(120)}, {0, ms(60)}, {262, ms(120)}, {0, ms(60)}, {262, ms(120)}}},
}

var scanningTone = []Tone{{2093, ms(40)}}

// Presenter turns terminal state into display text and tones.
type Presenter struct {
	display Display
	buzzer  Buzzer
	width   int
	now     func() time.Time
	clock   string
}

func NewPresenter(d Display, b Buzzer, width int) *Presenter {
	if width <= 0 {
		width = 16
	}
	return &Presenter{display: d, buzzer: b, width: width, now: time.Now}
}

// Present shows the fixed message for o with detail on the second line
// and plays its cue.
func (p *Presenter) Present(o Outcome, detail string) {
	c, ok := cues[o.Kind]
	if !ok {
		c = cues[Failed]
	}
	p.show(c.title, detail)
	p.play(c.tones)
}

// Scanning acknowledges a tap before the submission starts.
func (p *Presenter) Scanning(name string) {
	if name == "" {
		p.show("Scanning...", "")
	} else {
		p.show("Scanning...", "Hi "+name)
	}
	p.play(scanningTone)
}

// Status shows an informational message with no tone.
func (p *Presenter) Status(line1, line2 string) {
	p.show(line1, line2)
}

// Idle shows the resting screen.
func (p *Presenter) Idle() {
	p.show("Tap your card", "")
	p.Tick()
}

// Tick refreshes the clock corner.  It is cheap enough to call from every
// wait checkpoint.
func (p *Presenter) Tick() {
	if p == nil || p.display == nil {
		return
	}
	hhmm := p.now().Format("15:04")
	if hhmm == p.clock {
		return
	}
	p.clock = hhmm
	p.display.SetClock(hhmm)
}

func (p *Presenter) show(line1, line2 string) {
	if p == nil || p.display == nil {
		return
	}
	p.display.Show(fit(line1, p.width), fit(line2, p.width))
}

func (p *Presenter) play(t []Tone) {
	if p == nil || p.buzzer == nil {
		return
	}
	p.buzzer.Play(t)
}

// fit truncates s to width runes.
func fit(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width])
}
