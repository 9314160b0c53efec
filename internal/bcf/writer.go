// Package bcf exports normalized clashes as a BIM Collaboration Format
// archive so they can be opened in other coordination tools.
package bcf

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/blopez6567/Clashsense/internal/model"
)

// Archive entry names.
const (
	ProjectFile   = "project.bcfp"
	MarkupFile    = "markup.bcf"
	ViewpointFile = "viewpoint.bcfv"
)

var whitespace = regexp.MustCompile(`\s+`)

// FileName returns the conventional archive name for a project.
func FileName(projectName string) string {
	return whitespace.ReplaceAllString(projectName, "_") + "_bcf_export.bcf"
}

type projectInfo struct {
	XMLName xml.Name `xml:"ProjectInfo"`
	Project string   `xml:"Project"`
	Name    string   `xml:"Name"`
}

type markup struct {
	XMLName xml.Name `xml:"Markup"`
	Topic   topic    `xml:"Topic"`
}

type topic struct {
	GUID           string     `xml:"Guid,attr"`
	TopicType      string     `xml:"TopicType,attr"`
	TopicStatus    string     `xml:"TopicStatus,attr"`
	Title          string     `xml:"Title"`
	Priority       string     `xml:"Priority"`
	Index          string     `xml:"Index"`
	Labels         string     `xml:"Labels"`
	CreationDate   string     `xml:"CreationDate"`
	CreationAuthor string     `xml:"CreationAuthor"`
	Description    string     `xml:"Description"`
	BimSnippet     bimSnippet `xml:"BimSnippet"`
}

type bimSnippet struct {
	SnippetType string `xml:"SnippetType,attr"`
	IsExternal  bool   `xml:"isExternal,attr"`
	Reference   string `xml:"Reference"`
}

type visualizationInfo struct {
	XMLName    xml.Name    `xml:"VisualizationInfo"`
	ViewSetup  viewSetup   `xml:"Components>ViewSetup"`
	Orthogonal orthoCamera `xml:"OrthogonalCamera"`
}

type viewSetup struct {
	SpacesVisible          bool `xml:"SpacesVisible"`
	SpaceBoundariesVisible bool `xml:"SpaceBoundariesVisible"`
	OpeningsVisible        bool `xml:"OpeningsVisible"`
}

type orthoCamera struct {
	CameraViewPoint  string  `xml:"CameraViewPoint"`
	CameraDirection  string  `xml:"CameraDirection"`
	CameraUpVector   string  `xml:"CameraUpVector"`
	ViewToWorldScale float64 `xml:"ViewToWorldScale"`
}

// Option customizes a Writer.
type Option func(*Writer)

// WithGUIDs sets the topic GUID source.
func WithGUIDs(next func() string) Option {
	return func(w *Writer) { w.guid = next }
}

// WithClock sets the clock used for CreationDate.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// Writer serializes clashes into BCF archives.
type Writer struct {
	guid func() string
	now  func() time.Time
}

// NewWriter returns a Writer using random GUIDs and the wall clock.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		guid: uuid.NewString,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write writes a BCF archive for records to out.
func (w *Writer) Write(out io.Writer, projectName string, records []model.ClashRecord) error {
	zw := zip.NewWriter(out)

	if err := writeXML(zw, ProjectFile, projectInfo{Project: projectName, Name: projectName}); err != nil {
		return err
	}

	created := w.now().UTC().Format(time.RFC3339)
	for _, r := range records {
		guid := w.guid()
		if err := writeXML(zw, guid+"/"+ViewpointFile, viewpointFor(r)); err != nil {
			return err
		}
		if err := writeXML(zw, guid+"/"+MarkupFile, markupFor(guid, created, r)); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize BCF archive: %w", err)
	}
	return nil
}

// Write writes a BCF archive with default options.
func Write(out io.Writer, projectName string, records []model.ClashRecord) error {
	return NewWriter().Write(out, projectName, records)
}

func markupFor(guid, created string, r model.ClashRecord) markup {
	return markup{Topic: topic{
		GUID:           guid,
		TopicType:      "Issue",
		TopicStatus:    string(r.Status),
		Title:          r.Description,
		Priority:       string(r.Severity),
		Index:          r.ID,
		Labels:         string(r.Discipline),
		CreationDate:   created,
		CreationAuthor: r.AssignedTo,
		Description:    r.Description,
		BimSnippet: bimSnippet{
			SnippetType: "BCF",
			Reference:   r.Location,
		},
	}}
}

func viewpointFor(r model.ClashRecord) visualizationInfo {
	return visualizationInfo{
		ViewSetup: viewSetup{
			SpacesVisible:          true,
			SpaceBoundariesVisible: true,
			OpeningsVisible:        true,
		},
		Orthogonal: orthoCamera{
			CameraViewPoint:  r.Coordinates,
			CameraDirection:  "0.0,0.0,1.0",
			CameraUpVector:   "0.0,1.0,0.0",
			ViewToWorldScale: 1.0,
		},
	}
}

func writeXML(zw *zip.Writer, name string, v any) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.WriteString(f, xml.Header); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return nil
}
