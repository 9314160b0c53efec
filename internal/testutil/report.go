// Package testutil provides test fixtures for clash reports.
//
// Example usage:
//
//	xml := testutil.NewReportBuilder().
//		WithProject("Harbor Tower").
//		WithClash(testutil.Clash{Name: "C-1", Type: "MECH", Location: "Level 2 - Corridor"}).
//		Build()
package testutil

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Element is one <element> inside a clash.
type Element struct {
	Type        string
	Model       string
	Coordinates string
}

// Clash describes one <clashtest>. Empty fields are omitted from the XML.
type Clash struct {
	Name        string
	Type        string
	Status      string
	Priority    string
	Date        string
	Assigned    string
	Description string
	Location    string
	Elements    []Element
}

// ReportBuilder assembles a clashdetective batch-test document.
type ReportBuilder struct {
	project string
	clashes []Clash
	noBatch bool
}

// NewReportBuilder returns a builder for an empty report.
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{}
}

// WithProject sets the project name.
func (b *ReportBuilder) WithProject(name string) *ReportBuilder {
	b.project = name
	return b
}

// WithClash appends a clash.
func (b *ReportBuilder) WithClash(c Clash) *ReportBuilder {
	b.clashes = append(b.clashes, c)
	return b
}

// WithClashes appends several clashes.
func (b *ReportBuilder) WithClashes(cs ...Clash) *ReportBuilder {
	b.clashes = append(b.clashes, cs...)
	return b
}

// WithoutBatch omits the batchtest container entirely.
func (b *ReportBuilder) WithoutBatch() *ReportBuilder {
	b.noBatch = true
	return b
}

// Build renders the document.
func (b *ReportBuilder) Build() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<clashdetective>\n")
	if b.project != "" {
		fmt.Fprintf(&sb, "  <projectname>%s</projectname>\n", escape(b.project))
	}
	if !b.noBatch {
		sb.WriteString("  <batchtest>\n    <clashtests>\n")
		for _, c := range b.clashes {
			writeClash(&sb, c)
		}
		sb.WriteString("    </clashtests>\n  </batchtest>\n")
	}
	sb.WriteString("</clashdetective>\n")
	return sb.String()
}

func writeClash(sb *strings.Builder, c Clash) {
	sb.WriteString("      <clashtest")
	attr(sb, "name", c.Name)
	attr(sb, "type", c.Type)
	attr(sb, "status", c.Status)
	attr(sb, "priority", c.Priority)
	attr(sb, "date", c.Date)
	attr(sb, "assigned", c.Assigned)
	sb.WriteString(">\n")
	if c.Description != "" {
		fmt.Fprintf(sb, "        <description>%s</description>\n", escape(c.Description))
	}
	if c.Location != "" {
		fmt.Fprintf(sb, "        <location>%s</location>\n", escape(c.Location))
	}
	if len(c.Elements) > 0 {
		sb.WriteString("        <elements>\n")
		for _, el := range c.Elements {
			sb.WriteString("          <element")
			attr(sb, "type", el.Type)
			attr(sb, "model", el.Model)
			attr(sb, "coordinates", el.Coordinates)
			sb.WriteString("/>\n")
		}
		sb.WriteString("        </elements>\n")
	}
	sb.WriteString("      </clashtest>\n")
}

func attr(sb *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, ` %s="%s"`, name, escape(value))
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// SampleClashes is a small realistic batch covering every discipline.
func SampleClashes() []Clash {
	return []Clash{
		{
			Name: "Clash1", Type: "Hard", Status: "active", Priority: "high",
			Date: "2024-03-01T10:00:00Z", Assigned: "J. Ortiz",
			Description: "Ductwork interference with structural beam",
			Location:    "Level 3 - Grid A-5",
			Elements: []Element{
				{Type: "Rectangular Duct", Model: "MEP_Mech.nwc", Coordinates: "12.5,4.0,9.1"},
				{Type: "Steel Beam", Model: "Structure.nwc", Coordinates: "12.5,4.0,9.3"},
			},
		},
		{
			Name: "Clash2", Type: "Hard", Status: "new",
			Date:        "2024-03-01T10:05:00Z",
			Description: "Sprinkler main conflicts with ceiling beam",
			Location:    "Level 2 - Corridor",
			Elements: []Element{
				{Type: "Sprinkler Main", Model: "FP.nwc", Coordinates: "3,8,6"},
				{Type: "Steel Beam", Model: "Structure.nwc", Coordinates: "3,8,6.1"},
			},
		},
		{
			Name: "Clash3", Type: "Clearance", Status: "resolved",
			Date:        "2024-03-02",
			Description: "Sanitary line minor clearance",
			Location:    "Level 1 - Riser 2",
			Elements: []Element{
				{Type: "Sanitary Line", Model: "Plumbing.nwc", Coordinates: "1,1,1"},
			},
		},
		{
			Name: "Clash4", Type: "Hard", Status: "Approved",
			Date:        "2024-03-02",
			Description: "Conduit through equipment pad",
			Location:    "Mechanical Room",
			Elements: []Element{
				{Type: "Conduit", Model: "Elec.nwc", Coordinates: "9,9,0"},
			},
		},
		{
			Name: "Clash5", Type: "Hard", Status: "resolved",
			Date:        "2024-03-03",
			Description: "Duct vs ceiling grid",
			Location:    "Level 3 - Corridor",
			Elements: []Element{
				{Type: "Round Duct", Model: "MEP_Mech.nwc", Coordinates: "2,2,2"},
			},
		},
	}
}

// SampleReport renders SampleClashes under a project name.
func SampleReport() string {
	return NewReportBuilder().
		WithProject("Harbor Tower").
		WithClashes(SampleClashes()...).
		Build()
}
