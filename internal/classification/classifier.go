package classification

import (
	"fmt"
	"strings"

	"github.com/blopez6567/Clashsense/internal/common"
	"github.com/blopez6567/Clashsense/internal/model"
)

// Policy is the full set of rule tables and fallbacks used by a Classifier.
type Policy struct {
	DefaultDiscipline model.Discipline
	DefaultSeverity   model.Severity
	DefaultGroup      string
	DisciplineRules   []DisciplineRule
	SeverityRules     []SeverityRule
	GroupRules        []GroupRule
}

// Validate checks that every result and fallback is a known label.
func (p Policy) Validate() error {
	if !p.DefaultDiscipline.Valid() {
		return fmt.Errorf("%w: default discipline %q", common.ErrInvalidConfig, p.DefaultDiscipline)
	}
	if !p.DefaultSeverity.Valid() {
		return fmt.Errorf("%w: default severity %q", common.ErrInvalidConfig, p.DefaultSeverity)
	}
	if strings.TrimSpace(p.DefaultGroup) == "" {
		return fmt.Errorf("%w: default clash group is empty", common.ErrInvalidConfig)
	}
	for i, r := range p.DisciplineRules {
		if !r.Discipline.Valid() {
			return fmt.Errorf("%w: discipline rule %d: unknown discipline %q", common.ErrInvalidConfig, i, r.Discipline)
		}
	}
	for i, r := range p.SeverityRules {
		if !r.Severity.Valid() {
			return fmt.Errorf("%w: severity rule %d: unknown severity %q", common.ErrInvalidConfig, i, r.Severity)
		}
		switch r.Field {
		case FieldPriority, FieldDescription, FieldStatus:
		default:
			return fmt.Errorf("%w: severity rule %d: unknown field %q", common.ErrInvalidConfig, i, r.Field)
		}
	}
	for i, r := range p.GroupRules {
		if strings.TrimSpace(r.Group) == "" {
			return fmt.Errorf("%w: group rule %d: empty group", common.ErrInvalidConfig, i)
		}
	}
	return nil
}

// SeverityInput is the part of a clash the severity rules look at.
type SeverityInput struct {
	Priority    string
	Status      string
	Description string
}

// Classifier applies a Policy. It holds no mutable state and is safe for
// concurrent use.
type Classifier struct {
	policy Policy
}

// New returns a Classifier for policy.
func New(policy Policy) (*Classifier, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{policy: policy}, nil
}

// NewDefault returns a Classifier using DefaultPolicy.
func NewDefault() *Classifier {
	return &Classifier{policy: DefaultPolicy()}
}

// Policy returns the classifier's policy.
func (c *Classifier) Policy() Policy {
	return c.policy
}

// Discipline classifies a clash from its declared type and the types of the
// elements involved. The second result is false when the fallback was used.
func (c *Classifier) Discipline(clashType string, elementTypes []string) (model.Discipline, bool) {
	text := strings.ToLower(clashType + " " + strings.Join(elementTypes, " "))
	for _, rule := range c.policy.DisciplineRules {
		if containsAny(text, rule.Keywords) {
			return rule.Discipline, true
		}
	}
	return c.policy.DefaultDiscipline, false
}

// Severity classifies a clash from its priority, status and description.
func (c *Classifier) Severity(in SeverityInput) (model.Severity, bool) {
	for _, rule := range c.policy.SeverityRules {
		if rule.matches(in) {
			return rule.Severity, true
		}
	}
	return c.policy.DefaultSeverity, false
}

// Group assigns a clash-group label from location text.
func (c *Classifier) Group(location string) (string, bool) {
	text := strings.ToLower(location)
	for _, rule := range c.policy.GroupRules {
		if containsAny(text, rule.Keywords) {
			return rule.Group, true
		}
	}
	return c.policy.DefaultGroup, false
}
