// Package normalize turns decoded clash-test nodes into ClashRecords.
//
// Normalization never fails: clash exports are often incomplete, so every
// missing or unreadable field gets a documented default instead of aborting
// the batch.
package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/blopez6567/Clashsense/internal/classification"
	"github.com/blopez6567/Clashsense/internal/common"
	"github.com/blopez6567/Clashsense/internal/location"
	"github.com/blopez6567/Clashsense/internal/model"
	"github.com/blopez6567/Clashsense/internal/xmltree"
)

// Field defaults.
const (
	DefaultAssignee    = "Unassigned"
	unknownElementType = "unknown element"
)

// Normalizer converts raw clash nodes into ClashRecords.
type Normalizer struct {
	classifier *classification.Classifier
	ids        IDGenerator
	now        func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithIDGenerator sets the strategy for fallback ids.
func WithIDGenerator(ids IDGenerator) Option {
	return func(n *Normalizer) {
		n.ids = ids
	}
}

// WithClock sets the time source used for clashes without a date.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// New creates a Normalizer. A nil classifier uses the default policy.
func New(classifier *classification.Classifier, opts ...Option) *Normalizer {
	if classifier == nil {
		classifier = classification.NewDefault()
	}
	n := &Normalizer{
		classifier: classifier,
		ids:        RandomIDs{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts one clash-test node at position index in its batch.
func (n *Normalizer) Normalize(node *xmltree.Node, index int) model.ClashRecord {
	return n.normalize(node, index, n.now())
}

// NormalizeAll converts nodes in order. Ids are made unique within the batch
// by suffixing repeats with -2, -3 and so on. The context is checked between
// records; on cancellation no records are returned.
func (n *Normalizer) NormalizeAll(ctx context.Context, nodes []*xmltree.Node) ([]model.ClashRecord, error) {
	records := make([]model.ClashRecord, 0, len(nodes))
	seen := make(map[string]int, len(nodes))
	processedAt := n.now()

	for i, node := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := n.normalize(node, i, processedAt)
		rec.ID = uniqueID(rec.ID, seen)
		records = append(records, rec)
	}
	return records, nil
}

func uniqueID(id string, seen map[string]int) string {
	if _, taken := seen[id]; !taken {
		seen[id] = 1
		return id
	}
	for {
		seen[id]++
		candidate := fmt.Sprintf("%s-%d", id, seen[id])
		if _, taken := seen[candidate]; !taken {
			seen[candidate] = 1
			return candidate
		}
	}
}

func (n *Normalizer) normalize(node *xmltree.Node, index int, processedAt time.Time) model.ClashRecord {
	var defaults []string
	fallback := func(field string) {
		defaults = append(defaults, field)
	}

	elements := elementList(node)
	elementTypes := make([]string, 0, len(elements))
	for _, el := range elements {
		if t := strings.TrimSpace(el.AttrOr("type", "")); t != "" {
			elementTypes = append(elementTypes, t)
		}
	}

	id := strings.TrimSpace(node.AttrOr("name", ""))
	if id == "" {
		id = n.ids.NextID(index)
		fallback("id")
	}

	description := strings.TrimSpace(node.ChildText("description"))
	if description == "" {
		description = fmt.Sprintf("Clash between %s and %s", nth(elementTypes, 0), nth(elementTypes, 1))
		fallback("description")
	}

	clashType := strings.TrimSpace(node.AttrOr("type", ""))
	priority := node.AttrOr("priority", "")

	rawStatus := strings.TrimSpace(node.AttrOr("status", ""))
	status := model.StatusNew
	if rawStatus != "" {
		status = model.Status(strings.Join(strings.Fields(strings.ToLower(rawStatus)), "-"))
	} else {
		fallback("status")
	}

	loc := location.Parse(node.ChildText("location"))
	if !loc.Found {
		fallback("level")
	}

	discipline, ok := n.classifier.Discipline(clashType, elementTypes)
	if !ok {
		fallback("discipline")
	}
	severity, ok := n.classifier.Severity(classification.SeverityInput{
		Priority:    priority,
		Status:      string(status),
		Description: description,
	})
	if !ok {
		fallback("severity")
	}
	group, ok := n.classifier.Group(loc.Location)
	if !ok {
		fallback("clashGroup")
	}

	date, ok := clashDate(node)
	if !ok {
		date = processedAt.UTC().Format(time.RFC3339)
		fallback("date")
	}

	assigned := strings.TrimSpace(node.AttrOr("assigned", ""))
	if assigned == "" {
		assigned = DefaultAssignee
		fallback("assignedTo")
	}

	rec := model.ClashRecord{
		ID:          id,
		Type:        clashType,
		Description: description,
		Discipline:  discipline,
		Severity:    severity,
		Status:      status,
		Location:    loc.Location,
		Level:       loc.Level,
		Date:        date,
		ClashGroup:  group,
		AssignedTo:  assigned,
	}
	if len(elements) > 0 {
		first := elements[0]
		rec.ModelSource = first.AttrOr("model", "")
		rec.ElementType = first.AttrOr("type", "")
		rec.Coordinates = first.AttrOr("coordinates", "")
	}

	if len(defaults) > 0 {
		common.LogDebug("Applied defaults to clash", common.Fields{
			"index":  index,
			"id":     rec.ID,
			"fields": defaults,
		})
	}

	return rec
}

// elementList flattens every <elements><element/></elements> container so a
// single element and a sequence are handled the same way.
func elementList(node *xmltree.Node) []*xmltree.Node {
	var out []*xmltree.Node
	for _, container := range node.Children("elements") {
		out = append(out, container.Children("element")...)
	}
	return out
}

func nth(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return unknownElementType
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// clashDate reads the date attribute, or a <createddate><date .../></createddate>
// child with year/month/day attributes as written by Navisworks, and formats
// it as RFC 3339 in UTC.
func clashDate(node *xmltree.Node) (string, bool) {
	if raw := strings.TrimSpace(node.AttrOr("date", "")); raw != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC().Format(time.RFC3339), true
			}
		}
		slog.Debug("Unreadable clash date", "date", raw)
	}

	for _, key := range []string{"createddate", "date"} {
		if t, ok := dateFromParts(node.Child(key)); ok {
			return t.UTC().Format(time.RFC3339), true
		}
	}
	return "", false
}

func dateFromParts(container *xmltree.Node) (time.Time, bool) {
	if container == nil {
		return time.Time{}, false
	}
	parts := container
	if inner := container.Child("date"); inner != nil {
		parts = inner
	}

	year, okY := intAttr(parts, "year")
	month, okM := intAttr(parts, "month")
	day, okD := intAttr(parts, "day")
	if !okY || !okM || !okD || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	hour, _ := intAttr(parts, "hour")
	minute, _ := intAttr(parts, "minute")
	second, _ := intAttr(parts, "second")
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), true
}

func intAttr(node *xmltree.Node, name string) (int, bool) {
	raw, ok := node.Attr(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return v, true
}
