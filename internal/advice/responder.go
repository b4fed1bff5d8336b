package advice

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Intent is one of the fixed conversational intents the responder knows.
type Intent int

// Intents in match order. Symptom intents precede the short conversational
// triggers, which also occur inside ordinary words ("hi" in "think").
const (
	Fever Intent = iota
	Cough
	Headache
	Stomach
	End
	Thanks
	Affirm
	Naffirm
	Greet
)

// Fallback is returned when no trigger matches.
const Fallback = "Sorry, I didn't get that. Tell me how you feel (for example \"I have a fever\"), or type 'bye' to end the chat."

// Farewell is the fixed reply for the End intent.
const Farewell = "Goodbye! Take care of yourself and see a doctor if your symptoms get worse."

var intentNames = map[Intent]string{
	Fever:    "fever",
	Cough:    "cough",
	Headache: "headache",
	Stomach:  "stomach",
	End:      "end",
	Thanks:   "thanks",
	Affirm:   "affirm",
	Naffirm:  "naffirm",
	Greet:    "greet",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return fmt.Sprintf("intent(%d)", int(i))
}

// rule binds an intent to its triggers and replies. Rules are checked in slice order.
type rule struct {
	intent    Intent
	triggers  []string
	responses []string
}

func defaultRules() []rule {
	return []rule{
		{Fever, []string{"fever", "temperature", "chills"},
			[]string{"For a fever, rest and stay hydrated. Seek care if it stays above 39°C or lasts more than three days."}},
		{Cough, []string{"cough", "sore throat", "congestion"},
			[]string{"Warm drinks and honey can soothe a cough. See a doctor if you have trouble breathing or it lasts over two weeks."}},
		{Headache, []string{"headache", "migraine", "dizzy"},
			[]string{"Rest in a quiet, dark room and drink water. Sudden or severe headaches need urgent medical attention."}},
		{Stomach, []string{"stomach", "nausea", "vomit", "diarrhea"},
			[]string{"Sip clear fluids and eat bland food. Get help if you cannot keep fluids down or notice blood."}},
		{End, []string{"bye", "goodbye", "see you", "quit", "exit"},
			nil},
		{Thanks, []string{"thank", "thx", "appreciate"},
			[]string{"You're welcome! Wishing you a quick recovery."}},
		{Affirm, []string{"yes", "yeah", "yep", "of course", "okay"},
			[]string{"Good. Keep resting, drink plenty of fluids and keep an eye on your symptoms."}},
		{Naffirm, []string{"no", "nope", "nah", "not really"},
			[]string{"Alright. If anything changes, come back and describe your symptoms again."}},
		{Greet, []string{"hello", "hi", "hey", "good morning", "good evening"},
			[]string{"Hello! Describe your symptoms in the prediction tab, or tell me how you are feeling."}},
	}
}

// Responder answers single utterances with canned advice. It keeps no
// conversation state between calls.
type Responder struct {
	rules []rule
	pick  func(n int) int
}

// Option configures a Responder.
type Option func(*Responder)

// WithPicker replaces the uniform random choice between responses.
func WithPicker(pick func(n int) int) Option {
	return func(r *Responder) {
		r.pick = pick
	}
}

// WithResponses replaces the reply list of the given intents. End always
// answers with Farewell.
func WithResponses(overrides map[Intent][]string) Option {
	return func(r *Responder) {
		for i := range r.rules {
			if replies, ok := overrides[r.rules[i].intent]; ok && len(replies) > 0 {
				r.rules[i].responses = replies
			}
		}
	}
}

// NewResponder builds a responder with the built-in intent table.
func NewResponder(opts ...Option) *Responder {
	r := &Responder{rules: defaultRules(), pick: rand.Intn}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Match returns the first intent with a trigger contained in the utterance.
func (r *Responder) Match(utterance string) (Intent, bool) {
	text := strings.ToLower(utterance)
	for _, ru := range r.rules {
		for _, trigger := range ru.triggers {
			if strings.Contains(text, trigger) {
				return ru.intent, true
			}
		}
	}
	return 0, false
}

// Respond returns the reply for a single utterance.
func (r *Responder) Respond(utterance string) string {
	intent, ok := r.Match(utterance)
	if !ok {
		return Fallback
	}
	if intent == End {
		return Farewell
	}

	for _, ru := range r.rules {
		if ru.intent == intent {
			return ru.responses[r.pick(len(ru.responses))]
		}
	}
	return Fallback
}

// LoadOverrides reads a YAML file mapping intent names to reply lists:
//
//	fever:
//	  - "Rest and drink fluids."
func LoadOverrides(path string) (map[Intent][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read advice file: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode advice file: %w", err)
	}

	byName := make(map[string]Intent, len(intentNames))
	for intent, name := range intentNames {
		byName[name] = intent
	}

	overrides := make(map[Intent][]string, len(raw))
	for name, replies := range raw {
		intent, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown intent %q in advice file", name)
		}
		if intent == End {
			return nil, fmt.Errorf("the end intent has a fixed farewell and cannot be overridden")
		}
		overrides[intent] = replies
	}
	return overrides, nil
}
