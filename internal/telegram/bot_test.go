package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Skufu/sickness-predictor/internal/audit"
	"github.com/Skufu/sickness-predictor/internal/symptom"
)

type stubPredictor struct {
	got    string
	result *symptom.Result
	err    error
}

func (s *stubPredictor) Predict(symptoms string) (*symptom.Result, error) {
	s.got = symptoms
	if strings.TrimSpace(symptoms) == "" {
		return nil, symptom.ErrEmptyInput
	}
	return s.result, s.err
}

type echoResponder struct{}

func (echoResponder) Respond(utterance string) string {
	return "advice: " + utterance
}

func newTestBot(p Predictor) *Bot {
	return &Bot{
		predictor: p,
		responder: echoResponder{},
		trail:     audit.NewTrail(nil, zap.NewNop()),
		logger:    zap.NewNop(),
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		in, command, args string
	}{
		{"/predict fever and cough", "predict", "fever and cough"},
		{"/Predict@SicknessBot   rash  ", "predict", "rash"},
		{"/start", "start", ""},
		{"/predict\nfever and cough", "predict", "fever and cough"},
		{"/predict\tthroat pain\nand chills", "predict", "throat pain\nand chills"},
		{"hello there", "", "hello there"},
	}
	for _, tt := range tests {
		command, args := splitCommand(tt.in)
		if command != tt.command || args != tt.args {
			t.Errorf("splitCommand(%q) = %q, %q; want %q, %q", tt.in, command, args, tt.command, tt.args)
		}
	}
}

func TestReplyPredict(t *testing.T) {
	p := &stubPredictor{result: &symptom.Result{
		Primary:    "flu",
		Confidence: 70,
		Top:        []symptom.Candidate{{Label: "flu", Probability: 70}, {Label: "cold", Probability: 20}},
	}}
	bot := newTestBot(p)

	got := bot.reply(context.Background(), "/predict fever and cough")
	if p.got != "fever and cough" {
		t.Fatalf("predictor received %q", p.got)
	}
	for _, want := range []string{"Primary Prediction: flu", "Confidence: 70.0%", "2. cold: 20.0%", "Disclaimer"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in reply:\n%s", want, got)
		}
	}
}

func TestReplyPredictOnNewLine(t *testing.T) {
	p := &stubPredictor{result: &symptom.Result{Primary: "flu", Confidence: 70, Top: []symptom.Candidate{{Label: "flu", Probability: 70}}}}
	bot := newTestBot(p)

	got := bot.reply(context.Background(), "/predict\nfever and cough")
	if p.got != "fever and cough" || !strings.Contains(got, "Primary Prediction: flu") {
		t.Fatalf("expected prediction for newline-separated command, got %q (predictor saw %q)", got, p.got)
	}
}

func TestReplyPredictWithoutSymptoms(t *testing.T) {
	bot := newTestBot(&stubPredictor{})
	if got := bot.reply(context.Background(), "/predict   "); got != emptySymptomsText {
		t.Fatalf("expected empty symptoms warning, got %q", got)
	}
}

func TestReplyPredictFailure(t *testing.T) {
	bot := newTestBot(&stubPredictor{err: &symptom.InferenceError{Err: errors.New("dimension mismatch")}})
	got := bot.reply(context.Background(), "/predict rash")
	if !strings.Contains(got, "dimension mismatch") {
		t.Fatalf("expected error message in reply, got %q", got)
	}
}

func TestReplyRoutesChatToResponder(t *testing.T) {
	bot := newTestBot(&stubPredictor{})
	if got := bot.reply(context.Background(), "no"); got != "advice: no" {
		t.Fatalf("expected responder reply, got %q", got)
	}
	if got := bot.reply(context.Background(), "/start"); got != welcomeText {
		t.Fatalf("expected welcome text, got %q", got)
	}
}

func TestNewBotDisabledWithoutToken(t *testing.T) {
	bot, err := NewBot("", &stubPredictor{}, echoResponder{}, nil, zap.NewNop())
	if err != nil || bot != nil {
		t.Fatalf("expected disabled bot, got %v, %v", bot, err)
	}
	if err := bot.Start(context.Background()); err != nil {
		t.Fatalf("nil bot start should be a no-op, got %v", err)
	}
}
