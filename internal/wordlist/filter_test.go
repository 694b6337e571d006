package wordlist

import "testing"

func TestSingleToken(t *testing.T) {
	for _, word := range []string{"telemetry", "delta-v", "boil-off", "résumé"} {
		if !SingleToken(word) {
			t.Fatalf("expected %q to pass", word)
		}
	}
	for _, word := range []string{"", "two words", "tab\there", "bell\a"} {
		if SingleToken(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}
