package generator

import (
	"strings"
	"testing"

	"github.com/verte-zerg/typeref/internal/model"
)

func TestWordCountPolicy(t *testing.T) {
	cases := []struct {
		cfg  model.SessionConfig
		want int
	}{
		{model.SessionConfig{Mode: model.ModeTime, Duration: 15}, 30},
		{model.SessionConfig{Mode: model.ModeTime, Duration: 30}, 45},
		{model.SessionConfig{Mode: model.ModeTime, Duration: 60}, 60},
		{model.SessionConfig{Mode: model.ModeTime, Duration: 120}, 75},
		{model.SessionConfig{Mode: model.ModeTime, Duration: 45}, 50},
		{model.SessionConfig{Mode: model.ModeWords, WordTarget: 25}, 25},
		{model.SessionConfig{Mode: model.ModeWords, WordTarget: 100}, 100},
	}
	gen := NewWithSeed(DefaultBanks(), 1)
	for _, tc := range cases {
		if got := WordCount(tc.cfg); got != tc.want {
			t.Fatalf("WordCount(%+v) = %d, want %d", tc.cfg, got, tc.want)
		}
		text := gen.Generate(tc.cfg)
		if text == "" {
			t.Fatalf("expected non-empty passage for %+v", tc.cfg)
		}
		if got := len(strings.Split(text, " ")); got != tc.want {
			t.Fatalf("expected %d words for %+v, got %d", tc.want, tc.cfg, got)
		}
	}
}

func TestGenerateUsesCategoryBank(t *testing.T) {
	gen := NewWithSeed(DefaultBanks(), 7)
	text := gen.Generate(model.SessionConfig{Mode: model.ModeWords, WordTarget: 40, Category: "orbital"})
	bank := map[string]struct{}{}
	for _, w := range builtinBanks["orbital"] {
		bank[w] = struct{}{}
	}
	for _, word := range strings.Split(text, " ") {
		if _, ok := bank[word]; !ok {
			t.Fatalf("word %q not in orbital bank", word)
		}
	}
}

func TestGenerateUnknownCategoryFallsBack(t *testing.T) {
	gen := NewWithSeed(DefaultBanks(), 3)
	text := gen.Generate(model.SessionConfig{Mode: model.ModeWords, WordTarget: 20, Category: "basket-weaving"})
	bank := map[string]struct{}{}
	for _, w := range builtinBanks[DefaultCategory] {
		bank[w] = struct{}{}
	}
	for _, word := range strings.Split(text, " ") {
		if _, ok := bank[word]; !ok {
			t.Fatalf("word %q not in default bank", word)
		}
	}
}

func TestGenerateModifiers(t *testing.T) {
	gen := NewWithSeed(Banks{"x": {"word"}}, 11)
	text := gen.Generate(model.SessionConfig{Mode: model.ModeWords, WordTarget: 500, Category: "x", Numbers: true, Punctuation: true})
	digits, puncts := 0, 0
	for _, word := range strings.Split(text, " ") {
		rest := strings.TrimPrefix(word, "word")
		if len(rest) > 2 {
			t.Fatalf("unexpected suffix on %q", word)
		}
		if rest != "" && strings.ContainsRune(digitSet, rune(rest[0])) {
			digits++
			rest = rest[1:]
		}
		if rest != "" {
			if !strings.ContainsRune(punctSet, rune(rest[0])) {
				t.Fatalf("unexpected suffix on %q", word)
			}
			puncts++
		}
	}
	// 20% of 500 words, with generous bounds.
	if digits < 50 || digits > 150 {
		t.Fatalf("digit count %d outside expected range", digits)
	}
	if puncts < 50 || puncts > 150 {
		t.Fatalf("punctuation count %d outside expected range", puncts)
	}
}

func TestGenerateWithoutModifiersIsPlain(t *testing.T) {
	gen := NewWithSeed(Banks{"x": {"alpha"}}, 5)
	text := gen.Generate(model.SessionConfig{Mode: model.ModeWords, WordTarget: 3, Category: "x"})
	if text != "alpha alpha alpha" {
		t.Fatalf("unexpected passage %q", text)
	}
}

func TestBanksWithOverrides(t *testing.T) {
	banks := DefaultBanks().With(map[string][]string{"Custom": {"a", "b"}, "empty": nil})
	if !banks.Has("custom") {
		t.Fatalf("expected custom bank to be added")
	}
	if banks.Has("empty") {
		t.Fatalf("expected empty bank to be skipped")
	}
	if len(DefaultBanks()) != len(builtinBanks) {
		t.Fatalf("With must not modify the receiver")
	}
	names := banks.Names()
	if names[0] != "avionics" {
		t.Fatalf("expected sorted names, got %v", names)
	}
}

func TestSetBanksAffectsLaterPassages(t *testing.T) {
	g := NewWithSeed(DefaultBanks(), 1)
	cfg := model.SessionConfig{Mode: model.ModeWords, WordTarget: 3, Category: "rovers"}
	if g.Banks().Has("rovers") {
		t.Fatalf("unexpected rovers bank")
	}
	g.SetBanks(DefaultBanks().With(map[string][]string{"rovers": {"wheel"}}))
	if got := g.Generate(cfg); got != "wheel wheel wheel" {
		t.Fatalf("expected passage from the new bank, got %q", got)
	}
	g.SetBanks(nil)
	if !g.Banks().Has(DefaultCategory) {
		t.Fatalf("empty banks must fall back to the defaults")
	}
}
