// Package linediff computes unified diffs for dry-run previews.
package linediff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// previewContext is the number of unchanged lines shown around each
// hunk. Bump previews diff single version lines, so a narrow window
// keeps the output readable.
const previewContext = 2

// Adapter implements ports.DiffPort with a line-based unified diff.
type Adapter struct {
	context int
}

// New creates a diff adapter sized for Chart.yaml previews.
func New() *Adapter {
	return &Adapter{context: previewContext}
}

// ComputeDiff returns the unified diff between two documents, or the
// empty string when they match.
func (a *Adapter) ComputeDiff(fromName, toName string, from, to []byte) string {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(from)),
		B:        difflib.SplitLines(string(to)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  a.context,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return fmt.Sprintf("error computing diff: %s", err)
	}
	return strings.TrimSpace(text)
}
