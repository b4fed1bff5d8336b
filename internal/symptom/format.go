package symptom

import (
	"fmt"
	"strings"
)

// Disclaimer accompanies every human-readable prediction.
const Disclaimer = "Important Disclaimer: This is an AI-based prediction tool for educational purposes only. " +
	"Please consult with a qualified healthcare professional for proper medical diagnosis and treatment."

// Text renders the result for chat-style front ends.
func (r *Result) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Primary Prediction: %s\n", r.Primary)
	fmt.Fprintf(&sb, "Confidence: %.1f%%\n\n", r.Confidence)
	fmt.Fprintf(&sb, "Top %d Predictions:\n", len(r.Top))
	for i, c := range r.Top {
		fmt.Fprintf(&sb, "%d. %s: %.1f%%\n", i+1, c.Label, c.Probability)
	}
	sb.WriteString("\n")
	sb.WriteString(Disclaimer)
	return sb.String()
}
