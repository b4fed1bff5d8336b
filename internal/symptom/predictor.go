package symptom

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultTopK is the number of ranked candidates returned when no option overrides it.
const DefaultTopK = 3

// ErrEmptyInput is returned when the symptom text has no non-whitespace characters.
var ErrEmptyInput = errors.New("please enter some symptoms")

// InferenceError wraps any failure raised while vectorizing or classifying.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return e.Err.Error()
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// Vectorizer turns raw text into a feature vector using a learned vocabulary.
type Vectorizer interface {
	Transform(text string) ([]float64, error)
}

// Classifier produces a probability distribution over a fixed set of labels.
// PredictProba must return one probability per entry of Classes, in the same order.
type Classifier interface {
	Classes() []string
	PredictProba(features []float64) ([]float64, error)
}

// Candidate is one ranked label with its probability as a percentage.
type Candidate struct {
	Label       string  `json:"sickness"`
	Probability float64 `json:"probability"`
}

// Result is the outcome of a single prediction.
type Result struct {
	Primary    string      `json:"primary_prediction"`
	Confidence float64     `json:"confidence"`
	Top        []Candidate `json:"top_3_predictions"`
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithTopK sets how many ranked candidates are returned. Values below 1 keep the default.
func WithTopK(k int) Option {
	return func(p *Predictor) {
		if k >= 1 {
			p.topK = k
		}
	}
}

// Predictor ranks sicknesses for free-text symptoms. It holds no mutable state
// and may be shared between goroutines as long as its capabilities can.
type Predictor struct {
	vec  Vectorizer
	clf  Classifier
	topK int
}

// New builds a Predictor over the given capabilities.
func New(vec Vectorizer, clf Classifier, opts ...Option) *Predictor {
	p := &Predictor{vec: vec, clf: clf, topK: DefaultTopK}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TopK reports the ranking cutoff.
func (p *Predictor) TopK() int {
	return p.topK
}

// Classes reports the labels known to the classifier.
func (p *Predictor) Classes() []string {
	return p.clf.Classes()
}

// Predict scores symptoms against every known class and returns the arg-max
// label, its confidence and the top-k ranking.
func (p *Predictor) Predict(symptoms string) (result *Result, err error) {
	if strings.TrimSpace(symptoms) == "" {
		return nil, ErrEmptyInput
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &InferenceError{Err: fmt.Errorf("%v", r)}
		}
	}()

	features, err := p.vec.Transform(symptoms)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}

	probs, err := p.clf.PredictProba(features)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}

	classes := p.clf.Classes()
	if len(probs) != len(classes) {
		return nil, &InferenceError{Err: fmt.Errorf("classifier returned %d probabilities for %d classes", len(probs), len(classes))}
	}
	if len(classes) == 0 {
		return nil, &InferenceError{Err: errors.New("classifier has no classes")}
	}

	best := argmax(probs)
	return &Result{
		Primary:    classes[best],
		Confidence: probs[best] * 100,
		Top:        rank(classes, probs, p.topK),
	}, nil
}

// argmax returns the index of the largest probability; the first index wins ties.
func argmax(probs []float64) int {
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return best
}

// rank sorts classes by probability, descending, keeping native class order among equals.
func rank(classes []string, probs []float64, k int) []Candidate {
	ranked := make([]Candidate, len(classes))
	for i, label := range classes {
		ranked[i] = Candidate{Label: label, Probability: probs[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	top := ranked[:k]
	for i := range top {
		top[i].Probability *= 100
	}
	return top
}
