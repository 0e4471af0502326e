// File: internal/form/question.go
package form

import (
	"github.com/chromedp/cdproto/cdp"
)

// Variant identifies the shape of one question container.
type Variant int

const (
	// Unknown means no recognizable control was found; the question is
	// skipped with a warning, never treated as a session failure.
	Unknown Variant = iota
	SingleChoice
	MultiChoice
	FreeText
)

func (v Variant) String() string {
	switch v {
	case SingleChoice:
		return "single_choice"
	case MultiChoice:
		return "multi_choice"
	case FreeText:
		return "free_text"
	default:
		return "unknown"
	}
}

// Option is one selectable element inside a choice group. Sentinel marks the
// reserved "other / write-in" entry, which random selection avoids whenever a
// real choice exists in the same group.
type Option struct {
	Node     *cdp.Node
	Sentinel bool
}

// Snapshot is the classifier's read-only view of one question container,
// captured once per page load and never mutated afterwards.
type Snapshot struct {
	// Heading is the lowercased question text; empty when the container has
	// no heading element.
	Heading string
	// RadioGroups is the number of radio group elements in the container.
	RadioGroups int
	// RadioOptions are the selectable entries of the first radio group.
	RadioOptions []Option
	// Checkboxes are the checkbox entries of the container.
	Checkboxes []Option
	// Inputs is the number of text input fields in the container.
	Inputs int
}

// Classify determines the variant of a question container using first-match
// priority: radio group, then checkboxes, then text input. It is
// side-effect-free and deterministic for a given snapshot.
func Classify(s Snapshot) Variant {
	switch {
	case s.RadioGroups > 0:
		return SingleChoice
	case len(s.Checkboxes) > 0:
		return MultiChoice
	case s.Inputs > 0:
		return FreeText
	default:
		return Unknown
	}
}
