package models

import "fmt"

// Label is a colour tag on a task.
type Label string

const (
	LabelRed    Label = "red"
	LabelOrange Label = "orange"
	LabelYellow Label = "yellow"
	LabelGreen  Label = "green"
	LabelBlue   Label = "blue"
	LabelPurple Label = "purple"
)

// AllLabels lists the closed label set in display order.
var AllLabels = []Label{LabelRed, LabelOrange, LabelYellow, LabelGreen, LabelBlue, LabelPurple}

func (l Label) Valid() bool {
	switch l {
	case LabelRed, LabelOrange, LabelYellow, LabelGreen, LabelBlue, LabelPurple:
		return true
	}
	return false
}

// NormalizeLabels rejects unknown labels and collapses duplicates, keeping the
// first occurrence. The result is never nil.
func NormalizeLabels(labels []Label) ([]Label, error) {
	out := make([]Label, 0, len(labels))
	seen := make(map[Label]bool, len(labels))
	for _, l := range labels {
		if !l.Valid() {
			return nil, NewError(ErrValidation, fmt.Sprintf("unknown label %q", string(l)))
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out, nil
}
