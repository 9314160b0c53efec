package cli

import (
	"fmt"
	"strings"

	"github.com/blopez6567/Clashsense/internal/ingest"
	"github.com/blopez6567/Clashsense/internal/model"
)

// RenderSummary formats the statistics of one ingested report.
func RenderSummary(source string, res *ingest.Result) string {
	s := res.Statistics

	var sb strings.Builder
	sb.WriteString(FormatTitle(res.ProjectName))
	sb.WriteString("\n")
	if source != "" {
		sb.WriteString(SubtleStyle.Render(source) + "\n\n")
	}

	if s.Total == 0 {
		sb.WriteString(FormatWarning("No clashes found in report") + "\n")
		return sb.String()
	}

	sb.WriteString(row("Total clashes", BoldStyle.Render(fmt.Sprintf("%d", s.Total))))
	sb.WriteString(row("Resolution rate", fmt.Sprintf("%.1f%%", s.ResolutionRate*100)))
	critical := fmt.Sprintf("%d", s.CriticalIssues)
	if s.CriticalIssues > 0 {
		critical = ErrorStyle.Render(critical)
	}
	sb.WriteString(row("Critical issues", critical))
	sb.WriteString(row("Avg clashes per level", fmt.Sprintf("%.2f", s.AverageClashesPerLevel)))

	if len(s.TopLocations) > 0 {
		sb.WriteString("\n" + SubtitleStyle.Render("Top locations") + "\n")
		for i, loc := range s.TopLocations {
			sb.WriteString(fmt.Sprintf("  %d. %s %s\n", i+1, loc.Location, SubtleStyle.Render(fmt.Sprintf("(%d)", loc.Count))))
		}
	}

	if len(s.DisciplineBreakdown) > 0 {
		sb.WriteString("\n" + SubtitleStyle.Render("Disciplines") + "\n")
		for _, d := range s.DisciplineBreakdown {
			sb.WriteString(disciplineRow(d))
		}
	}

	if s.BySeverity.Len() > 0 {
		sb.WriteString("\n" + SubtitleStyle.Render("Severity") + "\n")
		for _, sev := range []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
			if n := s.BySeverity.Get(string(sev)); n > 0 {
				sb.WriteString(row("  "+string(sev), severityStyle(sev)(fmt.Sprintf("%d", n))))
			}
		}
	}

	return sb.String()
}

func row(label, value string) string {
	return LabelStyle.Render(label) + value + "\n"
}

func disciplineRow(d model.DisciplineCount) string {
	pct := d.Percentage()
	style := WarningStyle
	switch {
	case pct == 100:
		style = SuccessStyle
	case pct == 0:
		style = ErrorStyle
	}
	return row("  "+d.Discipline.Name(),
		fmt.Sprintf("%d resolved / %d %s, %d open", d.Resolved, d.Count, style.Render(fmt.Sprintf("(%d%%)", pct)), d.Remaining()))
}

func severityStyle(sev model.Severity) func(...string) string {
	switch sev {
	case model.SeverityHigh:
		return ErrorStyle.Render
	case model.SeverityMedium:
		return WarningStyle.Render
	default:
		return SuccessStyle.Render
	}
}
