package model

import (
	"bytes"
	"encoding/json"
)

// Counts maps labels to occurrence counts and remembers the order in which
// labels were first added.
type Counts struct {
	counts map[string]int
	labels []string
}

// NewCounts returns an empty Counts.
func NewCounts() *Counts {
	return &Counts{counts: make(map[string]int)}
}

// Add increments label by one.
func (c *Counts) Add(label string) {
	if _, ok := c.counts[label]; !ok {
		c.labels = append(c.labels, label)
	}
	c.counts[label]++
}

// Get returns the count for label, zero when absent.
func (c *Counts) Get(label string) int {
	if c == nil {
		return 0
	}
	return c.counts[label]
}

// Labels returns labels in first-seen order.
func (c *Counts) Labels() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Len returns the number of distinct labels.
func (c *Counts) Len() int {
	if c == nil {
		return 0
	}
	return len(c.labels)
}

// Sum returns the total of all counts.
func (c *Counts) Sum() int {
	if c == nil {
		return 0
	}
	sum := 0
	for _, n := range c.counts {
		sum += n
	}
	return sum
}

// MarshalJSON encodes the counts as a JSON object in first-seen order.
func (c *Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if c != nil {
		for i, label := range c.labels {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(label)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := json.Marshal(c.counts[label])
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// LocationCount is one entry of the top-locations ranking.
type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// DisciplineCount summarizes resolution progress for one discipline.
type DisciplineCount struct {
	Discipline Discipline `json:"discipline"`
	Count      int        `json:"count"`
	Resolved   int        `json:"resolvedCount"`
}

// Percentage returns the resolved share rounded to a whole percent.
func (d DisciplineCount) Percentage() int {
	if d.Count == 0 {
		return 0
	}
	return (d.Resolved*100 + d.Count/2) / d.Count
}

// Remaining returns the number of unresolved clashes.
func (d DisciplineCount) Remaining() int {
	return d.Count - d.Resolved
}

// ClashStatistics aggregates a batch of clash records.
type ClashStatistics struct {
	ByType                 *Counts           `json:"byType"`
	ByStatus               *Counts           `json:"byStatus"`
	ByLocation             *Counts           `json:"byLocation"`
	ByElement              *Counts           `json:"byElement"`
	ByDiscipline           *Counts           `json:"byDiscipline"`
	BySeverity             *Counts           `json:"bySeverity"`
	ByLevel                *Counts           `json:"byLevel"`
	ByGroup                *Counts           `json:"byGroup"`
	TopLocations           []LocationCount   `json:"topLocations"`
	DisciplineBreakdown    []DisciplineCount `json:"disciplineBreakdown"`
	Total                  int               `json:"total"`
	CriticalIssues         int               `json:"criticalIssues"`
	ResolutionRate         float64           `json:"resolutionRate"`
	AverageClashesPerLevel float64           `json:"averageClashesPerLevel"`
}
