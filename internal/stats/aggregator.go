// Package stats derives dashboard statistics from normalized clash records.
package stats

import (
	"sort"

	"github.com/blopez6567/Clashsense/internal/model"
)

// TopLocationLimit caps the length of ClashStatistics.TopLocations.
const TopLocationLimit = 5

// unspecified labels records whose grouping field is blank, so every grouped
// mapping still sums to the total.
const unspecified = "Unspecified"

// Compute aggregates records in a single pass. An empty input yields zero
// totals and empty, non-nil groupings.
func Compute(records []model.ClashRecord) model.ClashStatistics {
	s := model.ClashStatistics{
		ByType:              model.NewCounts(),
		ByStatus:            model.NewCounts(),
		ByLocation:          model.NewCounts(),
		ByElement:           model.NewCounts(),
		ByDiscipline:        model.NewCounts(),
		BySeverity:          model.NewCounts(),
		ByLevel:             model.NewCounts(),
		ByGroup:             model.NewCounts(),
		TopLocations:        []model.LocationCount{},
		DisciplineBreakdown: []model.DisciplineCount{},
		Total:               len(records),
	}
	if len(records) == 0 {
		return s
	}

	resolved := 0
	for _, r := range records {
		s.ByType.Add(label(r.Type))
		s.ByStatus.Add(label(string(r.Status)))
		s.ByLocation.Add(label(r.Location))
		s.ByElement.Add(label(r.ElementType))
		s.ByDiscipline.Add(label(string(r.Discipline)))
		s.BySeverity.Add(label(string(r.Severity)))
		s.ByLevel.Add(label(r.Level))
		s.ByGroup.Add(label(r.ClashGroup))

		if r.IsResolved() {
			resolved++
		}
		if r.Severity == model.SeverityHigh {
			s.CriticalIssues++
		}
	}

	s.ResolutionRate = float64(resolved) / float64(s.Total)
	s.AverageClashesPerLevel = float64(s.Total) / float64(s.ByLevel.Len())
	s.TopLocations = topLocations(s.ByLocation, TopLocationLimit)
	s.DisciplineBreakdown = disciplineBreakdown(records, s.ByDiscipline)

	return s
}

func label(s string) string {
	if s == "" {
		return unspecified
	}
	return s
}

// topLocations ranks locations by count, keeping first-seen order for ties.
func topLocations(byLocation *model.Counts, limit int) []model.LocationCount {
	labels := byLocation.Labels()
	out := make([]model.LocationCount, 0, len(labels))
	for _, l := range labels {
		out = append(out, model.LocationCount{Location: l, Count: byLocation.Get(l)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// disciplineBreakdown reports count and resolved count per discipline present,
// in first-seen order.
func disciplineBreakdown(records []model.ClashRecord, byDiscipline *model.Counts) []model.DisciplineCount {
	labels := byDiscipline.Labels()
	out := make([]model.DisciplineCount, 0, len(labels))
	for _, l := range labels {
		d := model.Discipline(l)
		resolved := 0
		for _, r := range records {
			if label(string(r.Discipline)) == l && r.IsResolved() {
				resolved++
			}
		}
		out = append(out, model.DisciplineCount{
			Discipline: d,
			Count:      byDiscipline.Get(l),
			Resolved:   resolved,
		})
	}
	return out
}
