package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegression holds the fitted parameters of a linear probabilistic classifier.
type LogisticRegression struct {
	Labels     []string    `json:"classes"`
	Coef       [][]float64 `json:"coef"`
	Intercept  []float64   `json:"intercept"`
	MultiClass string      `json:"multi_class"`

	weights *mat.Dense
	bias    *mat.VecDense
}

// Classes returns the class labels in the order probabilities are reported.
func (m *LogisticRegression) Classes() []string {
	return m.Labels
}

// NumFeatures returns the expected input width.
func (m *LogisticRegression) NumFeatures() int {
	if len(m.Coef) == 0 {
		return 0
	}
	return len(m.Coef[0])
}

// Validate checks the parameter shapes agree with each other and packs the
// coefficients into the matrices PredictProba works on.
func (m *LogisticRegression) Validate() error {
	if len(m.Labels) < 2 {
		return fmt.Errorf("classifier needs at least 2 classes, got %d", len(m.Labels))
	}

	rows := len(m.Labels)
	if rows == 2 {
		rows = 1
	}
	if len(m.Coef) != rows {
		return fmt.Errorf("expected %d coefficient rows for %d classes, got %d", rows, len(m.Labels), len(m.Coef))
	}
	if len(m.Intercept) != rows {
		return fmt.Errorf("expected %d intercepts, got %d", rows, len(m.Intercept))
	}

	width := len(m.Coef[0])
	if width == 0 {
		return fmt.Errorf("coefficient rows are empty")
	}
	for i, row := range m.Coef {
		if len(row) != width {
			return fmt.Errorf("coefficient row %d has %d features, expected %d", i, len(row), width)
		}
	}

	switch m.MultiClass {
	case "", "ovr", "multinomial":
	case "auto":
		// "auto" resolves to ovr or multinomial depending on the solver, which
		// the exported artifact does not carry.
		if rows > 1 {
			return fmt.Errorf("multi_class \"auto\" is ambiguous for %d classes, export \"ovr\" or \"multinomial\"", len(m.Labels))
		}
	default:
		return fmt.Errorf("unsupported multi_class %q", m.MultiClass)
	}

	data := make([]float64, 0, rows*width)
	for _, row := range m.Coef {
		data = append(data, row...)
	}
	m.weights = mat.NewDense(rows, width, data)
	m.bias = mat.NewVecDense(rows, append([]float64(nil), m.Intercept...))
	return nil
}

// PredictProba returns one probability per class for a single feature vector.
// It only reads the fitted matrices and is safe for concurrent use.
func (m *LogisticRegression) PredictProba(features []float64) ([]float64, error) {
	if m.weights == nil {
		return nil, fmt.Errorf("classifier is not fitted")
	}
	_, width := m.weights.Dims()
	if len(features) != width {
		return nil, fmt.Errorf("X has %d features, but the classifier is expecting %d features as input", len(features), width)
	}

	scores := m.decision(features)

	if len(scores) == 1 {
		z := scores[0]
		if m.MultiClass == "multinomial" {
			return softmax([]float64{-z, z}), nil
		}
		p := sigmoid(z)
		return []float64{1 - p, p}, nil
	}

	if m.MultiClass == "ovr" {
		probs := make([]float64, len(scores))
		for i, z := range scores {
			probs[i] = sigmoid(z)
		}
		floats.Scale(1/floats.Sum(probs), probs)
		return probs, nil
	}

	return softmax(scores), nil
}

// decision computes coef·x + intercept for every row.
func (m *LogisticRegression) decision(features []float64) []float64 {
	rows, width := m.weights.Dims()
	x := mat.NewVecDense(width, features)

	z := mat.NewVecDense(rows, nil)
	z.MulVec(m.weights, x)
	z.AddVec(z, m.bias)
	return z.RawVector().Data
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func softmax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	copy(out, scores)
	floats.AddConst(-floats.Max(out), out)
	for i, s := range out {
		out[i] = math.Exp(s)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
