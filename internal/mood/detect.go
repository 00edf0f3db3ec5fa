package mood

import (
	"regexp"
	"strings"
)

// Lexicon lists trigger words per mood. Order decides ties in Detect.
type Lexicon struct {
	order []Mood
	words map[Mood]map[string]struct{}
}

type LexiconEntry struct {
	Mood  Mood
	Words []string
}

func NewLexicon(entries ...LexiconEntry) Lexicon {
	lx := Lexicon{words: make(map[Mood]map[string]struct{}, len(entries))}
	for _, e := range entries {
		set, ok := lx.words[e.Mood]
		if !ok {
			set = make(map[string]struct{}, len(e.Words))
			lx.words[e.Mood] = set
			lx.order = append(lx.order, e.Mood)
		}
		for _, w := range e.Words {
			set[strings.ToLower(w)] = struct{}{}
		}
	}
	return lx
}

func DefaultLexicon() Lexicon {
	return NewLexicon(
		LexiconEntry{Happy, []string{"happy", "joy", "excited", "great", "wonderful", "amazing", "good", "love", "smile", "laugh"}},
		LexiconEntry{Sad, []string{"sad", "unhappy", "depressed", "down", "miserable", "upset", "cry", "tears", "heartbroken"}},
		LexiconEntry{Angry, []string{"angry", "mad", "furious", "annoyed", "irritated", "frustrated", "rage", "hate"}},
		LexiconEntry{Anxious, []string{"anxious", "worried", "nervous", "stress", "tense", "fear", "scared", "panic"}},
		LexiconEntry{Calm, []string{"calm", "peaceful", "relaxed", "serene", "tranquil", "content", "quiet", "still"}},
		LexiconEntry{Excited, []string{"excited", "thrilled", "eager", "enthusiastic", "energetic", "pumped", "psyched"}},
	)
}

var wordRE = regexp.MustCompile(`\w+`)

// Detect guesses the mood of free text by counting lexicon words. It falls
// back to Neutral when nothing matches.
func Detect(text string, lx Lexicon) Mood {
	if text == "" {
		return Neutral
	}
	scores := make(map[Mood]int, len(lx.order))
	for _, word := range wordRE.FindAllString(strings.ToLower(text), -1) {
		for m, set := range lx.words {
			if _, ok := set[word]; ok {
				scores[m]++
			}
		}
	}
	best, top := Neutral, 0
	for _, m := range lx.order {
		if scores[m] > top {
			best, top = m, scores[m]
		}
	}
	return best
}
