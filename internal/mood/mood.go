// Package mood computes mood analytics and logging streaks over journal
// entries that were already loaded for a single user.
package mood

import (
	"fmt"
	"time"
)

type Mood string

const (
	Happy   Mood = "happy"
	Sad     Mood = "sad"
	Angry   Mood = "angry"
	Anxious Mood = "anxious"
	Neutral Mood = "neutral"
	Excited Mood = "excited"
	Calm    Mood = "calm"
	Other   Mood = "other"
)

// All is the canonical iteration order. Tie breaks follow it.
var All = []Mood{Happy, Sad, Angry, Anxious, Neutral, Excited, Calm, Other}

func (m Mood) Valid() bool {
	for _, v := range All {
		if m == v {
			return true
		}
	}
	return false
}

// Entry is the slice of a journal entry the engine looks at.
type Entry struct {
	Mood      Mood
	CreatedAt time.Time
}

// Weights maps a mood to its numeric score. Moods without a weight are
// counted in distributions but skipped when averaging.
type Weights struct {
	m map[Mood]int
}

func NewWeights(src map[Mood]int) Weights {
	m := make(map[Mood]int, len(src))
	for k, v := range src {
		m[k] = v
	}
	return Weights{m: m}
}

func DefaultWeights() Weights {
	return NewWeights(map[Mood]int{
		Sad:     1,
		Anxious: 2,
		Neutral: 3,
		Calm:    4,
		Happy:   5,
		Excited: 5,
	})
}

func (w Weights) Lookup(m Mood) (int, bool) {
	v, ok := w.m[m]
	return v, ok
}

// Window is the look-back period of an analytics request.
type Window string

const (
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// DefaultWindow is used when the caller does not pick one.
const DefaultWindow = WindowMonth

func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case "":
		return DefaultWindow, nil
	case WindowWeek, WindowMonth, WindowAll:
		return Window(s), nil
	}
	return "", fmt.Errorf("unknown time filter %q", s)
}

// Since returns the inclusive lower bound of the window, or false when the
// window is unbounded.
func (w Window) Since(now time.Time) (time.Time, bool) {
	switch w {
	case WindowWeek:
		return now.AddDate(0, 0, -7), true
	case WindowMonth:
		return now.AddDate(0, 0, -30), true
	}
	return time.Time{}, false
}
