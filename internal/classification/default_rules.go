package classification

import "github.com/blopez6567/Clashsense/internal/model"

// DefaultDisciplineRules returns the built-in discipline keyword table.
func DefaultDisciplineRules() []DisciplineRule {
	return []DisciplineRule{
		{Discipline: model.DisciplineMechanical, Keywords: []string{"mechanical", "duct", "pipe", "hvac"}},
		{Discipline: model.DisciplinePlumbing, Keywords: []string{"plumbing", "water", "sanitary"}},
		{Discipline: model.DisciplineElectrical, Keywords: []string{"electrical", "conduit", "cable"}},
		{Discipline: model.DisciplineFireProtection, Keywords: []string{"fire", "sprinkler"}},
	}
}

// DefaultSeverityRules returns the built-in severity table. Resolved and
// approved clashes rank low ahead of the medium keywords, but never ahead of
// an explicit high signal.
func DefaultSeverityRules() []SeverityRule {
	return []SeverityRule{
		{Field: FieldPriority, Severity: model.SeverityHigh, Keywords: []string{"high"}},
		{Field: FieldDescription, Severity: model.SeverityHigh, Keywords: []string{"critical", "severe", "major", "urgent", "safety"}},
		{Field: FieldStatus, Severity: model.SeverityLow, Keywords: []string{"approved", "resolved"}},
		{Field: FieldPriority, Severity: model.SeverityMedium, Keywords: []string{"medium"}},
		{Field: FieldDescription, Severity: model.SeverityMedium, Keywords: []string{"moderate", "medium", "minor"}},
	}
}

// DefaultGroupRules returns the built-in clash-group table.
func DefaultGroupRules() []GroupRule {
	return []GroupRule{
		{Group: model.GroupHallway, Keywords: []string{"hallway", "corridor"}},
		{Group: model.GroupRiserShaft, Keywords: []string{"shaft", "riser"}},
		{Group: model.GroupMechanical, Keywords: []string{"mechanical", "equipment"}},
		{Group: model.GroupOffice, Keywords: []string{"office", "workspace"}},
	}
}

// DefaultPolicy returns the built-in rule tables and fallbacks. Unmatched
// disciplines fall back to MECH because MEP clashes dominate typical
// reports; deployments that prefer another fallback override it in config.
func DefaultPolicy() Policy {
	return Policy{
		DisciplineRules:   DefaultDisciplineRules(),
		SeverityRules:     DefaultSeverityRules(),
		GroupRules:        DefaultGroupRules(),
		DefaultDiscipline: model.DisciplineMechanical,
		DefaultSeverity:   model.SeverityMedium,
		DefaultGroup:      model.GroupGeneral,
	}
}
