// Package model defines the core domain models used throughout the application.
package model

// Discipline is the building trade a clash is attributed to.
type Discipline string

// Discipline constants.
const (
	DisciplineMechanical     Discipline = "MECH"
	DisciplinePlumbing       Discipline = "PL"
	DisciplineElectrical     Discipline = "EL"
	DisciplineFireProtection Discipline = "FP"
)

// Disciplines lists every discipline in display order.
var Disciplines = []Discipline{
	DisciplineMechanical,
	DisciplinePlumbing,
	DisciplineElectrical,
	DisciplineFireProtection,
}

// Name returns the human-readable trade name.
func (d Discipline) Name() string {
	switch d {
	case DisciplineMechanical:
		return "Mechanical"
	case DisciplinePlumbing:
		return "Plumbing"
	case DisciplineElectrical:
		return "Electrical"
	case DisciplineFireProtection:
		return "Fire Protection"
	default:
		return string(d)
	}
}

// Valid reports whether d is one of the known disciplines.
func (d Discipline) Valid() bool {
	for _, known := range Disciplines {
		if d == known {
			return true
		}
	}
	return false
}

// Severity ranks how urgently a clash needs attention.
type Severity string

// Severity constants.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

// Status is the review state of a clash as exported by the clash report.
// Values outside the constants below are carried through lower-cased.
type Status string

// Status constants.
const (
	StatusNew        Status = "new"
	StatusActive     Status = "active"
	StatusApproved   Status = "approved"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
	StatusNotAnIssue Status = "not-an-issue"
)

// Clash group labels.
const (
	GroupHallway    = "Hallway Clashes"
	GroupRiserShaft = "Riser Shaft"
	GroupMechanical = "Mechanical Room"
	GroupOffice     = "Office Area"
	GroupGeneral    = "General Area"
)

// UnspecifiedLevel is used when a location carries no level indicator.
const UnspecifiedLevel = "Unspecified Level"

// ClashRecord is one normalized clash from a clash-detection report.
// Records are immutable once produced by an ingest.
type ClashRecord struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Discipline  Discipline `json:"discipline"`
	Severity    Severity   `json:"severity"`
	Status      Status     `json:"status"`
	Location    string     `json:"location"`
	Level       string     `json:"level"`
	Date        string     `json:"date"`
	ModelSource string     `json:"modelSource"`
	ElementType string     `json:"elementType"`
	ClashGroup  string     `json:"clashGroup"`
	AssignedTo  string     `json:"assignedTo"`
	Coordinates string     `json:"coordinates"`
}

// IsResolved reports whether the clash has been marked resolved.
func (c ClashRecord) IsResolved() bool {
	return c.Status == StatusResolved
}
