package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blopez6567/Clashsense/internal/model"
	"github.com/blopez6567/Clashsense/internal/normalize"
	"github.com/blopez6567/Clashsense/internal/testutil"
	"github.com/blopez6567/Clashsense/internal/xmltree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deterministicPipeline() *Pipeline {
	return NewPipeline(normalize.New(nil,
		normalize.WithIDGenerator(normalize.SequenceIDs{}),
		normalize.WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) })))
}

func TestIngestSampleReport(t *testing.T) {
	result, err := deterministicPipeline().Ingest(context.Background(), testutil.SampleReport())
	require.NoError(t, err)

	assert.Equal(t, "Harbor Tower", result.ProjectName)
	require.Len(t, result.Records, 5)

	ids := []string{}
	for _, r := range result.Records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"Clash1", "Clash2", "Clash3", "Clash4", "Clash5"}, ids)

	byID := map[string]model.ClashRecord{}
	for _, r := range result.Records {
		byID[r.ID] = r
	}
	assert.Equal(t, model.DisciplineFireProtection, byID["Clash2"].Discipline)
	assert.Equal(t, model.GroupHallway, byID["Clash2"].ClashGroup)
	assert.Equal(t, model.DisciplinePlumbing, byID["Clash3"].Discipline)
	assert.Equal(t, model.SeverityLow, byID["Clash3"].Severity)
	assert.Equal(t, model.GroupRiserShaft, byID["Clash3"].ClashGroup)
	assert.Equal(t, model.DisciplineElectrical, byID["Clash4"].Discipline)
	assert.Equal(t, model.StatusApproved, byID["Clash4"].Status)
	assert.Equal(t, model.GroupMechanical, byID["Clash4"].ClashGroup)

	s := result.Statistics
	assert.Equal(t, 5, s.Total)
	assert.InDelta(t, 0.4, s.ResolutionRate, 1e-9)
	assert.Equal(t, 1, s.CriticalIssues)
	assert.InDelta(t, 5.0/4.0, s.AverageClashesPerLevel, 1e-9)
	assert.Equal(t, model.LocationCount{Location: "Corridor", Count: 2}, s.TopLocations[0])
}

func TestIngestScenarioSingleResolvedClash(t *testing.T) {
	doc := testutil.NewReportBuilder().WithClash(testutil.Clash{
		Name:        "C-1",
		Type:        "MECH",
		Status:      "resolved",
		Description: "minor clearance",
		Location:    "Level 2 - Corridor",
	}).Build()

	result, err := deterministicPipeline().Ingest(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	r := result.Records[0]
	assert.Equal(t, model.DisciplineMechanical, r.Discipline)
	assert.Equal(t, model.SeverityLow, r.Severity)
	assert.Equal(t, model.StatusResolved, r.Status)
	assert.Equal(t, "Level 2", r.Level)
	assert.Equal(t, "Corridor", r.Location)
	assert.Equal(t, model.GroupHallway, r.ClashGroup)

	assert.Equal(t, 1, result.Statistics.Total)
	assert.InDelta(t, 1.0, result.Statistics.ResolutionRate, 1e-9)
	assert.Equal(t, 0, result.Statistics.CriticalIssues)
	assert.Equal(t, UnknownProject, result.ProjectName)
}

func TestIngestEmptyBatches(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "no clash tests", doc: testutil.NewReportBuilder().WithProject("Empty").Build()},
		{name: "no batch container", doc: testutil.NewReportBuilder().WithoutBatch().Build()},
		{name: "different root", doc: `<report><clash name="x"/></report>`},
		{name: "clashtests is text", doc: `<clashdetective><batchtest><clashtests>none</clashtests></batchtest></clashdetective>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := deterministicPipeline().Ingest(context.Background(), tt.doc)
			require.NoError(t, err)

			assert.NotNil(t, result.Records)
			assert.Empty(t, result.Records)
			assert.Equal(t, 0, result.Statistics.Total)
			assert.Zero(t, result.Statistics.ResolutionRate)
			assert.Zero(t, result.Statistics.AverageClashesPerLevel)
			assert.Empty(t, result.Statistics.TopLocations)
			assert.Equal(t, 0, result.Statistics.ByDiscipline.Len())
		})
	}
}

func TestIngestMalformedXML(t *testing.T) {
	result, err := deterministicPipeline().Ingest(context.Background(), "<unclosed>")
	require.Error(t, err)
	assert.Nil(t, result)

	var parseErr *xmltree.ParseError
	require.True(t, errors.As(err, &parseErr))
	_, decodeErr := xmltree.DecodeString("<unclosed>")
	assert.Equal(t, decodeErr.Error(), err.Error())
}

func TestIngestIsRepeatable(t *testing.T) {
	doc := testutil.NewReportBuilder().WithClashes(
		testutil.Clash{Type: "Hard", Description: "critical but minor issue", Location: "Level 4 - Shaft"},
		testutil.Clash{Name: "B", Status: "Resolved", Location: "Office 12"},
	).Build()

	p := NewPipeline(normalize.New(nil,
		normalize.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })))

	first, err := p.Ingest(context.Background(), doc)
	require.NoError(t, err)
	second, err := p.Ingest(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, second.Records, len(first.Records))
	assert.NotEqual(t, first.Records[0].ID, second.Records[0].ID, "generated ids are random")
	for i := range first.Records {
		a, b := first.Records[i], second.Records[i]
		if i == 0 {
			a.ID, b.ID = "", ""
		}
		assert.Equal(t, a, b)
	}
	assert.Equal(t, first.Statistics, second.Statistics)
	assert.Equal(t, model.SeverityHigh, first.Records[0].Severity)
}

func TestIngestReader(t *testing.T) {
	result, err := deterministicPipeline().IngestReader(context.Background(), strings.NewReader(testutil.SampleReport()))
	require.NoError(t, err)
	assert.Len(t, result.Records, 5)
}

func TestIngestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := deterministicPipeline().Ingest(ctx, testutil.SampleReport())
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestIngestConcurrentCalls(t *testing.T) {
	p := deterministicPipeline()
	want, err := p.Ingest(context.Background(), testutil.SampleReport())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = p.Ingest(context.Background(), testutil.SampleReport())
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, want.Records, results[i].Records)
		assert.Equal(t, want.Statistics, results[i].Statistics)
	}
}

func TestIngestRejectsContentAfterRoot(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "trailing text", input: testutil.SampleReport() + "junk"},
		{name: "second report", input: testutil.SampleReport() + testutil.SampleReport()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := deterministicPipeline().Ingest(context.Background(), tt.input)
			assert.Nil(t, result)

			var parseErr *xmltree.ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}
