// Package classification assigns discipline, severity and clash-group labels
// to clashes using ordered keyword rule tables.
//
// Every table is evaluated first-match-wins in slice order, so the order of
// the rules is part of the behavior: a text matching several rules takes the
// result of the earliest one.
package classification

import (
	"strings"

	"github.com/blopez6567/Clashsense/internal/model"
)

// DisciplineRule maps keywords found in the clash and element types to a
// discipline.
type DisciplineRule struct {
	Discipline model.Discipline
	Keywords   []string
}

// SeverityField selects which part of a clash a SeverityRule inspects.
type SeverityField string

// Severity rule fields.
const (
	FieldPriority    SeverityField = "priority"
	FieldDescription SeverityField = "description"
	FieldStatus      SeverityField = "status"
)

// SeverityRule matches when Field contains any of Keywords. Status rules
// compare the whole status value instead of searching within it.
type SeverityRule struct {
	Field    SeverityField
	Severity model.Severity
	Keywords []string
}

// GroupRule maps location keywords to a clash-group label.
type GroupRule struct {
	Group    string
	Keywords []string
}

// containsAny reports whether text contains any keyword. Keywords are
// compared lower-cased.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// equalsAny reports whether text equals any keyword, ignoring case.
func equalsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.EqualFold(text, kw) {
			return true
		}
	}
	return false
}

func (r SeverityRule) matches(in SeverityInput) bool {
	switch r.Field {
	case FieldPriority:
		return containsAny(strings.ToLower(in.Priority), r.Keywords)
	case FieldDescription:
		return containsAny(strings.ToLower(in.Description), r.Keywords)
	case FieldStatus:
		return equalsAny(strings.TrimSpace(in.Status), r.Keywords)
	default:
		return false
	}
}
