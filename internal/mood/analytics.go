package mood

import (
	"math"
	"time"
)

const (
	chartPoints  = 10
	neutralValue = 3
)

// Point is one sample of the mood chart.
type Point struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
	Mood  Mood   `json:"mood"`
}

// Result is recomputed on every request and never stored.
type Result struct {
	TotalEntries     int          `json:"total_entries"`
	AverageMoodScore float64      `json:"average_mood_score"`
	MostFrequentMood *Mood        `json:"most_frequent_mood"`
	CurrentStreak    int          `json:"current_streak"`
	LongestStreak    int          `json:"longest_streak"`
	MoodDistribution map[Mood]int `json:"mood_distribution"`
	ChartData        []Point      `json:"chart_data"`
	TimeFilter       Window       `json:"time_filter"`
}

// Frequencies tallies entries per mood. Moods that never occur are absent.
func Frequencies(entries []Entry) map[Mood]int {
	freq := make(map[Mood]int)
	for _, e := range entries {
		freq[e.Mood]++
	}
	return freq
}

// Average is the mean weight of the weighted entries rounded to one
// decimal, or 0 when no entry carries a weight.
func Average(entries []Entry, w Weights) float64 {
	var sum, n int
	for _, e := range entries {
		if v, ok := w.Lookup(e.Mood); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*10) / 10
}

// MostFrequent returns the mood with the highest count. Ties go to the mood
// that comes first in All.
func MostFrequent(freq map[Mood]int) (Mood, bool) {
	var (
		best  Mood
		count int
	)
	for _, m := range All {
		if c := freq[m]; c > count {
			best, count = m, c
		}
	}
	return best, count > 0
}

// Chart maps the last ten entries to chart points. Entries without a
// weight plot at the neutral value.
func Chart(entries []Entry, w Weights, loc *time.Location) []Point {
	if len(entries) > chartPoints {
		entries = entries[len(entries)-chartPoints:]
	}
	out := make([]Point, 0, len(entries))
	for _, e := range entries {
		v, ok := w.Lookup(e.Mood)
		if !ok {
			v = neutralValue
		}
		out = append(out, Point{
			Date:  e.CreatedAt.In(loc).Format(time.DateOnly),
			Value: v,
			Mood:  e.Mood,
		})
	}
	return out
}

// Analyze builds the full analytics result. Entries must be sorted by
// CreatedAt ascending; calendar days are taken in now's location.
func Analyze(entries []Entry, w Weights, window Window, now time.Time) Result {
	freq := Frequencies(entries)
	current, longest := Streaks(entries, now)

	res := Result{
		TotalEntries:     len(entries),
		AverageMoodScore: Average(entries, w),
		CurrentStreak:    current,
		LongestStreak:    longest,
		MoodDistribution: freq,
		ChartData:        Chart(entries, w, now.Location()),
		TimeFilter:       window,
	}
	if m, ok := MostFrequent(freq); ok {
		res.MostFrequentMood = &m
	}
	return res
}
