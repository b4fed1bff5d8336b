package advice

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRespondScenarios(t *testing.T) {
	r := NewResponder()

	tests := []struct {
		input string
		want  string
	}{
		{"no", "Alright. If anything changes, come back and describe your symptoms again."},
		{"bye", Farewell},
		{"BYE for now", Farewell},
		{"xyz", Fallback},
		{"", Fallback},
		{"Thank you so much", "You're welcome! Wishing you a quick recovery."},
	}
	for _, tt := range tests {
		if got := r.Respond(tt.input); got != tt.want {
			t.Errorf("Respond(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMatchUsesDeclarationOrder(t *testing.T) {
	r := NewResponder()

	tests := []struct {
		input string
		want  Intent
	}{
		{"hello, I have a fever", Fever},
		{"I have a fever and a cough", Fever},
		{"my stomach hurts", Stomach},
		{"yes but also no", Affirm},
		{"no thanks", Thanks},
		{"Goodbye", End},
		{"bad migraine today", Headache},
		{"hello there", Greet},
	}
	for _, tt := range tests {
		got, ok := r.Match(tt.input)
		if !ok || got != tt.want {
			t.Errorf("Match(%q) = %v, %v; want %v", tt.input, got, ok, tt.want)
		}
	}
}

func TestMatchPrefersSymptomsInNaturalSentences(t *testing.T) {
	r := NewResponder()

	tests := []struct {
		input string
		want  Intent
	}{
		{"I think I have a fever", Fever},
		{"which medicine for stomach pain", Stomach},
		{"nothing helps my headache", Headache},
		{"my nose is blocked and I cough", Cough},
		{"I know it's a migraine", Headache},
		{"I have chills tonight", Fever},
		{"this nausea will not stop", Stomach},
	}
	for _, tt := range tests {
		got, ok := r.Match(tt.input)
		if !ok || got != tt.want {
			t.Errorf("Match(%q) = %v, %v; want %v", tt.input, got, ok, tt.want)
		}
	}
}

func TestRespondPicksFromResponseList(t *testing.T) {
	var asked int
	r := NewResponder(
		WithResponses(map[Intent][]string{Fever: {"first", "second", "third"}}),
		WithPicker(func(n int) int {
			asked = n
			return n - 1
		}),
	)

	if got := r.Respond("fever again"); got != "third" {
		t.Fatalf("expected picked response, got %q", got)
	}
	if asked != 3 {
		t.Fatalf("picker should see 3 options, saw %d", asked)
	}
}

func TestRespondIsStateless(t *testing.T) {
	r := NewResponder()
	first := r.Respond("hello")
	r.Respond("bye")
	if again := r.Respond("hello"); again != first {
		t.Fatalf("expected identical replies, got %q then %q", first, again)
	}
}

func TestIntentString(t *testing.T) {
	if Naffirm.String() != "naffirm" || End.String() != "end" {
		t.Fatalf("unexpected intent names %s %s", Naffirm, End)
	}
	if !strings.HasPrefix(Intent(99).String(), "intent(") {
		t.Fatalf("unexpected name for unknown intent: %s", Intent(99))
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advice.yml")
	content := "Fever:\n  - \"Take paracetamol and rest.\"\ncough:\n  - \"Try a humidifier.\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	overrides, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	r := NewResponder(WithResponses(overrides))
	if got := r.Respond("bad fever"); got != "Take paracetamol and rest." {
		t.Fatalf("override not applied, got %q", got)
	}
	if got := r.Respond("headache"); !strings.Contains(got, "quiet, dark room") {
		t.Fatalf("non-overridden intent changed, got %q", got)
	}
}

func TestLoadOverridesErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{"unknown intent", "sneeze:\n  - \"bless you\"\n", "unknown intent"},
		{"end intent", "end:\n  - \"later\"\n", "fixed farewell"},
		{"bad yaml", "fever: [unterminated\n", "decode advice file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadOverrides(path)
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("expected error containing %q, got %v", tt.msg, err)
			}
		})
	}

	if _, err := LoadOverrides(filepath.Join(dir, "missing.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
