package xmltree

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/blopez6567/Clashsense/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `<?xml version="1.0" encoding="UTF-8"?>
<clashdetective>
  <projectname>Harbor Tower</projectname>
  <batchtest name="Coordination Run">
    <clashtests>
      <clashtest name="C-001" type="MECH" status="active">
        <description>Duct vs beam</description>
        <location>Level 3 - Grid A-5</location>
        <elements>
          <element type="Duct" model="mech.nwc" coordinates="1,2,3"/>
          <element type="Beam" model="struct.nwc" coordinates="1,2,3"/>
        </elements>
      </clashtest>
      <clashtest name="C-002" type="PL" status="new">
        <description>Pipe vs wall</description>
        <elements>
          <element type="Pipe" model="plumb.nwc"/>
        </elements>
      </clashtest>
    </clashtests>
  </batchtest>
</clashdetective>`

func TestDecodeBuildsTree(t *testing.T) {
	doc, err := DecodeString(sampleReport)
	require.NoError(t, err)

	root := doc.Child("clashdetective")
	require.NotNil(t, root)
	assert.Equal(t, "Harbor Tower", root.ChildText("projectname"))
	assert.True(t, root.Child("projectname").IsLeaf())

	batch := root.Child("batchtest")
	name, ok := batch.Attr("name")
	assert.True(t, ok)
	assert.Equal(t, "Coordination Run", name)

	clashes := doc.Path("clashdetective", "batchtest", "clashtests", "clashtest")
	require.Len(t, clashes, 2)
	assert.Equal(t, "C-001", clashes[0].AttrOr("name", ""))
	assert.Equal(t, "C-002", clashes[1].AttrOr("name", ""))
	assert.Equal(t, "Level 3 - Grid A-5", clashes[0].ChildText("location"))

	elements := clashes[0].Child("elements").Children("element")
	require.Len(t, elements, 2)
	assert.Equal(t, "Beam", elements[1].AttrOr("type", ""))
}

func TestSingleChildMatchesOneElementSequence(t *testing.T) {
	doc, err := DecodeString(sampleReport)
	require.NoError(t, err)

	clashes := doc.Path("clashdetective", "batchtest", "clashtests", "clashtest")
	require.Len(t, clashes, 2)

	single := clashes[1].Child("elements").Children("element")
	require.Len(t, single, 1)
	assert.Equal(t, "Pipe", single[0].AttrOr("type", ""))
}

func TestAttributeAndChildWithSameName(t *testing.T) {
	doc, err := DecodeString(`<clash status="new"><status>resolved</status></clash>`)
	require.NoError(t, err)

	clash := doc.Child("clash")
	attr, ok := clash.Attr("status")
	require.True(t, ok)
	assert.Equal(t, "new", attr)
	assert.Equal(t, "resolved", clash.ChildText("status"))
	assert.Equal(t, []string{"@_status", "status"}, clash.Keys())
}

func TestMixedTextIsStoredUnderTextKey(t *testing.T) {
	doc, err := DecodeString(`<location code="L3">Level 3 - Corridor</location>`)
	require.NoError(t, err)

	loc := doc.Child("location")
	assert.False(t, loc.IsLeaf())
	assert.Equal(t, "Level 3 - Corridor", loc.Text())
	assert.Equal(t, "L3", loc.AttrOr("code", ""))
}

func TestNilSafeAccessors(t *testing.T) {
	var n *Node
	assert.Nil(t, n.Child("x"))
	assert.Nil(t, n.Children("x"))
	assert.Nil(t, n.Path("a", "b"))
	assert.Empty(t, n.Text())
	assert.Empty(t, n.Keys())
	assert.Equal(t, "fallback", n.AttrOr("name", "fallback"))

	doc, err := DecodeString(sampleReport)
	require.NoError(t, err)
	assert.Nil(t, doc.Path("clashdetective", "missing", "clashtest"))
}

func TestAttrOrTreatsBlankAsMissing(t *testing.T) {
	doc, err := DecodeString(`<clash name="  " type="MECH"/>`)
	require.NoError(t, err)

	clash := doc.Child("clash")
	assert.Equal(t, "generated", clash.AttrOr("name", "generated"))
	assert.Equal(t, "MECH", clash.AttrOr("type", ""))
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{name: "unclosed element", input: "<unclosed>", line: 1},
		{name: "mismatched tags", input: "<a>\n<b></a>", line: 2},
		{name: "not xml", input: "<<<", line: 1},
		{name: "empty input", input: ""},
		{name: "whitespace only", input: "  \n "},
		{name: "text after root", input: "<a/>junk", line: 1},
		{name: "second root element", input: "<a/>\n<b/>", line: 2},
		{name: "text before root", input: "junk<a/>", line: 1},
		{name: "unsupported charset", input: `<?xml version="1.0" encoding="EBCDIC"?><a/>`, line: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeString(tt.input)
			require.Error(t, err)
			assert.Nil(t, doc)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.NotEmpty(t, parseErr.Error())
			assert.Equal(t, tt.line, parseErr.Line)
		})
	}
}

func TestParseErrorKeepsParserMessage(t *testing.T) {
	_, err := DecodeString("<unclosed>")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, parseErr.Err.Error(), err.Error())
	assert.True(t, strings.Contains(err.Error(), "unexpected EOF"))

	_, err = DecodeString("")
	assert.ErrorIs(t, err, common.ErrEmptyDocument)
}

func TestDecodeAcceptsTrailingWhitespaceAndComments(t *testing.T) {
	doc, err := DecodeString("\xef\xbb\xbf<?xml version=\"1.0\"?>\n<!-- export -->\n<a name=\"x\"/>\n<!-- end -->\n")
	require.NoError(t, err)
	assert.Equal(t, "x", doc.Child("a").AttrOr("name", ""))
}

func TestDecodeTextAndEntities(t *testing.T) {
	doc, err := DecodeString(`<r><d>Duct &amp; beam</d><c><![CDATA[a < b]]></c><n>A&nbsp;B</n></r>`)
	require.NoError(t, err)

	root := doc.Child("r")
	assert.Equal(t, "Duct & beam", root.ChildText("d"))
	assert.Equal(t, "a < b", root.ChildText("c"))
	assert.Equal(t, "A\u00a0B", root.ChildText("n"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestDecodeReader(t *testing.T) {
	doc, err := DecodeReader(strings.NewReader(sampleReport))
	require.NoError(t, err)
	assert.Len(t, doc.Path("clashdetective", "batchtest", "clashtests", "clashtest"), 2)

	_, err = DecodeReader(failingReader{})
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	var parseErr *ParseError
	assert.False(t, errors.As(err, &parseErr))
}
