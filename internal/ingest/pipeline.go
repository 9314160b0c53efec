// Package ingest runs the clash-report pipeline: decode the XML, normalize
// every clash-test node and aggregate the resulting records.
package ingest

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/blopez6567/Clashsense/internal/model"
	"github.com/blopez6567/Clashsense/internal/normalize"
	"github.com/blopez6567/Clashsense/internal/stats"
	"github.com/blopez6567/Clashsense/internal/xmltree"
)

// ClashPath is where clash-test nodes live in a clash detective report.
var ClashPath = []string{"clashdetective", "batchtest", "clashtests", "clashtest"}

// ProjectNamePath locates the report's project name.
var ProjectNamePath = []string{"clashdetective", "projectname"}

// UnknownProject names reports without a project name.
const UnknownProject = "Unknown Project"

// Result is the output of one ingest. Records and Statistics always describe
// the same batch.
type Result struct {
	ProjectName string                `json:"projectName"`
	Records     []model.ClashRecord   `json:"records"`
	Statistics  model.ClashStatistics `json:"statistics"`
}

// Pipeline ingests clash reports. It holds no per-call state, so one
// Pipeline may serve concurrent Ingest calls.
type Pipeline struct {
	normalizer *normalize.Normalizer
}

// NewPipeline creates a Pipeline. A nil normalizer uses the defaults.
func NewPipeline(normalizer *normalize.Normalizer) *Pipeline {
	if normalizer == nil {
		normalizer = normalize.New(nil)
	}
	return &Pipeline{normalizer: normalizer}
}

// Ingest processes one XML document. Malformed XML yields the decoder's
// *xmltree.ParseError unchanged and no partial result. A well-formed document
// without clashes at ClashPath yields an empty result.
func (p *Pipeline) Ingest(ctx context.Context, xmlText string) (*Result, error) {
	doc, err := xmltree.DecodeString(xmlText)
	if err != nil {
		return nil, err
	}
	return p.process(ctx, doc)
}

// IngestReader reads the whole document from r and ingests it.
func (p *Pipeline) IngestReader(ctx context.Context, r io.Reader) (*Result, error) {
	doc, err := xmltree.DecodeReader(r)
	if err != nil {
		return nil, err
	}
	return p.process(ctx, doc)
}

func (p *Pipeline) process(ctx context.Context, doc *xmltree.Node) (*Result, error) {
	nodes := doc.Path(ClashPath...)
	if nodes == nil {
		slog.Debug("No clash tests found", "path", strings.Join(ClashPath, "/"))
	}

	records, err := p.normalizer.NormalizeAll(ctx, nodes)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ProjectName: projectName(doc),
		Records:     records,
		Statistics:  stats.Compute(records),
	}

	slog.Info("Ingested clash report",
		"project", result.ProjectName,
		"clashes", result.Statistics.Total,
		"critical", result.Statistics.CriticalIssues,
		"resolution_rate", result.Statistics.ResolutionRate)

	return result, nil
}

func projectName(doc *xmltree.Node) string {
	nodes := doc.Path(ProjectNamePath...)
	if len(nodes) == 0 {
		return UnknownProject
	}
	name := strings.TrimSpace(nodes[0].Text())
	if name == "" {
		return UnknownProject
	}
	return name
}
