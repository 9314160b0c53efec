package classification

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/blopez6567/Clashsense/internal/common"
	"github.com/blopez6567/Clashsense/internal/model"
	"gopkg.in/yaml.v3"
)

// RulesFile is the on-disk form of a Policy override. A table present in the
// file replaces the built-in table of the same kind wholesale, keeping the
// file's order; absent tables and blank defaults keep the built-in values.
type RulesFile struct {
	Defaults struct {
		Discipline string `yaml:"discipline"`
		Severity   string `yaml:"severity"`
		ClashGroup string `yaml:"clash_group"`
	} `yaml:"defaults"`
	Discipline []struct {
		Result   string   `yaml:"result"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"discipline"`
	Severity []struct {
		Field    string   `yaml:"field"`
		Result   string   `yaml:"result"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"severity"`
	ClashGroup []struct {
		Result   string   `yaml:"result"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"clash_group"`
}

// LoadRulesFile reads a YAML rules file and overlays it on base.
func LoadRulesFile(path string, base Policy) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data, base)
}

// ParseRules overlays YAML rule data on base and validates the result.
func ParseRules(data []byte, base Policy) (Policy, error) {
	var file RulesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Policy{}, fmt.Errorf("%w: rules file: %v", common.ErrInvalidConfig, err)
	}

	policy := base
	if file.Defaults.Discipline != "" {
		policy.DefaultDiscipline = model.Discipline(file.Defaults.Discipline)
	}
	if file.Defaults.Severity != "" {
		policy.DefaultSeverity = model.Severity(file.Defaults.Severity)
	}
	if file.Defaults.ClashGroup != "" {
		policy.DefaultGroup = file.Defaults.ClashGroup
	}

	if file.Discipline != nil {
		policy.DisciplineRules = make([]DisciplineRule, 0, len(file.Discipline))
		for _, r := range file.Discipline {
			policy.DisciplineRules = append(policy.DisciplineRules, DisciplineRule{
				Discipline: model.Discipline(r.Result),
				Keywords:   r.Keywords,
			})
		}
	}
	if file.Severity != nil {
		policy.SeverityRules = make([]SeverityRule, 0, len(file.Severity))
		for _, r := range file.Severity {
			policy.SeverityRules = append(policy.SeverityRules, SeverityRule{
				Field:    SeverityField(r.Field),
				Severity: model.Severity(r.Result),
				Keywords: r.Keywords,
			})
		}
	}
	if file.ClashGroup != nil {
		policy.GroupRules = make([]GroupRule, 0, len(file.ClashGroup))
		for _, r := range file.ClashGroup {
			policy.GroupRules = append(policy.GroupRules, GroupRule{
				Group:    r.Result,
				Keywords: r.Keywords,
			})
		}
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}
