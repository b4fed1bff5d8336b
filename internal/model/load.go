package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// StartupError reports an artifact that could not be loaded. The process
// should not serve traffic when one is returned.
type StartupError struct {
	Path string
	Err  error
}

func (e *StartupError) Error() string {
	if errors.Is(e.Err, os.ErrNotExist) {
		return fmt.Sprintf("model or vectorizer file not found: %s", e.Path)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// Artifacts bundles the fitted vectorizer and classifier.
type Artifacts struct {
	Vectorizer *TFIDF
	Classifier *LogisticRegression
}

// Load reads the classifier and vectorizer exported as JSON and checks they
// fit together.
func Load(modelPath, vectorizerPath string) (*Artifacts, error) {
	var clf LogisticRegression
	if err := readJSON(modelPath, &clf); err != nil {
		return nil, err
	}
	if err := clf.Validate(); err != nil {
		return nil, &StartupError{Path: modelPath, Err: err}
	}

	var vec TFIDF
	if err := readJSON(vectorizerPath, &vec); err != nil {
		return nil, err
	}
	if err := vec.Validate(); err != nil {
		return nil, &StartupError{Path: vectorizerPath, Err: err}
	}

	if vec.NumFeatures() != clf.NumFeatures() {
		return nil, &StartupError{
			Path: modelPath,
			Err:  fmt.Errorf("classifier expects %d features, vectorizer produces %d", clf.NumFeatures(), vec.NumFeatures()),
		}
	}

	return &Artifacts{Vectorizer: &vec, Classifier: &clf}, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return &StartupError{Path: path, Err: err}
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return &StartupError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
