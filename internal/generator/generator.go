// Package generator builds typing passages from technical word banks.
package generator

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/typeref/internal/model"
)

const (
	numberPct = 0.2
	punctPct  = 0.2

	defaultTimedWords = 50
)

const (
	digitSet = "0123456789"
	punctSet = ".,;:!?-_/()[]{}"
)

// timedWords maps a countdown length to a passage that outlasts it.
var timedWords = map[int]int{
	15:  30,
	30:  45,
	60:  60,
	120: 75,
}

// Generator produces randomized passages. It is safe for concurrent use;
// the banks can be swapped while sessions are generated.
type Generator struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	banks Banks
}

// New returns a Generator seeded with the current time.
func New(banks Banks) *Generator {
	return NewWithSeed(banks, time.Now().UnixNano())
}

// NewWithSeed returns a Generator with a fixed seed.
func NewWithSeed(banks Banks, seed int64) *Generator {
	if len(banks) == 0 {
		banks = DefaultBanks()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed)), banks: banks}
}

// Banks returns the word banks the generator draws from.
func (g *Generator) Banks() Banks {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.banks
}

// SetBanks replaces the word banks used for later passages.
func (g *Generator) SetBanks(banks Banks) {
	if len(banks) == 0 {
		banks = DefaultBanks()
	}
	g.mu.Lock()
	g.banks = banks
	g.mu.Unlock()
}

// WordCount returns the number of words a passage for cfg contains.
func WordCount(cfg model.SessionConfig) int {
	if cfg.Mode == model.ModeWords {
		if cfg.WordTarget < 1 {
			return 1
		}
		return cfg.WordTarget
	}
	if n, ok := timedWords[cfg.Duration]; ok {
		return n
	}
	return defaultTimedWords
}

// Generate draws words uniformly from the category bank and applies the
// number and punctuation modifiers.
func (g *Generator) Generate(cfg model.SessionConfig) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	words := g.banks.Lookup(cfg.Category)
	count := WordCount(cfg)
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := words[g.rnd.Intn(len(words))]
		if cfg.Numbers {
			word = appendFrom(g.rnd, word, numberPct, digitSet)
		}
		if cfg.Punctuation {
			word = appendFrom(g.rnd, word, punctPct, punctSet)
		}
		result = append(result, word)
	}
	return strings.Join(result, " ")
}

func appendFrom(rnd *rand.Rand, word string, pct float64, set string) string {
	if rnd.Float64() >= pct {
		return word
	}
	return word + string(set[rnd.Intn(len(set))])
}
