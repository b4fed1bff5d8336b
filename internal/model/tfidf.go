package model

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// tokenPattern matches runs of two or more word characters, the default
// scikit-learn token pattern. Combining marks are not word characters there.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TFIDF is a fitted term-frequency / inverse-document-frequency vectorizer.
type TFIDF struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Lowercase   *bool          `json:"lowercase,omitempty"`
	NgramRange  [2]int         `json:"ngram_range"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
	StopWords   []string       `json:"stop_words,omitempty"`

	stop map[string]struct{}
}

// NumFeatures returns the width of vectors produced by Transform.
func (v *TFIDF) NumFeatures() int {
	return len(v.IDF)
}

// Validate checks the vectorizer is internally consistent and prepares lookup tables.
func (v *TFIDF) Validate() error {
	if len(v.Vocabulary) == 0 {
		return fmt.Errorf("vectorizer has an empty vocabulary")
	}
	if len(v.IDF) == 0 {
		return fmt.Errorf("vectorizer has no idf weights")
	}
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("term %q maps to feature %d outside [0,%d)", term, idx, len(v.IDF))
		}
	}

	if v.NgramRange == [2]int{} {
		v.NgramRange = [2]int{1, 1}
	}
	if v.NgramRange[0] < 1 || v.NgramRange[1] < v.NgramRange[0] {
		return fmt.Errorf("invalid ngram range %v", v.NgramRange)
	}

	switch v.Norm {
	case "", "l1", "l2":
	default:
		return fmt.Errorf("unsupported norm %q", v.Norm)
	}

	v.stop = make(map[string]struct{}, len(v.StopWords))
	for _, w := range v.StopWords {
		v.stop[w] = struct{}{}
	}
	return nil
}

// Transform maps text onto the learned vocabulary. Terms outside the
// vocabulary are dropped.
func (v *TFIDF) Transform(text string) ([]float64, error) {
	if len(v.IDF) == 0 {
		return nil, fmt.Errorf("vectorizer is not fitted")
	}

	features := make([]float64, len(v.IDF))
	for _, term := range v.terms(text) {
		if idx, ok := v.Vocabulary[term]; ok {
			features[idx]++
		}
	}

	if v.SublinearTF {
		for i, tf := range features {
			if tf > 0 {
				features[i] = 1 + math.Log(tf)
			}
		}
	}
	floats.Mul(features, v.IDF)

	normalize(features, v.Norm)
	return features, nil
}

func (v *TFIDF) terms(text string) []string {
	if v.Lowercase == nil || *v.Lowercase {
		text = strings.ToLower(text)
	}

	tokens := tokenPattern.FindAllString(text, -1)
	if len(v.stop) > 0 {
		kept := tokens[:0]
		for _, t := range tokens {
			if _, skip := v.stop[t]; !skip {
				kept = append(kept, t)
			}
		}
		tokens = kept
	}

	lo, hi := v.NgramRange[0], v.NgramRange[1]
	if lo == 0 {
		lo, hi = 1, 1
	}
	if lo == 1 && hi == 1 {
		return tokens
	}

	var terms []string
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

func normalize(features []float64, norm string) {
	var total float64
	switch norm {
	case "l2":
		total = floats.Norm(features, 2)
	case "l1":
		total = floats.Norm(features, 1)
	default:
		return
	}
	if total == 0 {
		return
	}
	floats.Scale(1/total, features)
}
