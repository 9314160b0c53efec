package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/blopez6567/Clashsense/internal/common"
)

// ParseError reports a document that is not well-formed XML. Error returns
// the parser's message unchanged so it can be shown to the user verbatim.
type ParseError struct {
	Err     error
	Message string
	Line    int
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(err error) *ParseError {
	pe := &ParseError{Err: err, Message: err.Error()}
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		pe.Line = syntaxErr.Line
	}
	return pe
}

var utf8BOM = []byte("\xef\xbb\xbf")

func emptyDocument() *ParseError {
	return &ParseError{Err: common.ErrEmptyDocument, Message: common.ErrEmptyDocument.Error()}
}

// Decode parses data into a document node whose single field is the root
// element. It returns a *ParseError for malformed input.
func Decode(data []byte) (*Node, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if err := checkWellFormed(data); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = passthroughCharset
	doc.ReadSettings.Entity = xml.HTMLEntity
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, newParseError(err)
	}

	root := doc.Root()
	if root == nil {
		return nil, emptyDocument()
	}
	out := NewElement()
	out.Add(qualified(root.Space, root.Tag), convert(root))
	return out, nil
}

// DecodeString is Decode for string input.
func DecodeString(text string) (*Node, error) {
	return Decode([]byte(text))
}

// DecodeReader reads all of r and decodes it. Read failures are returned
// as-is, not as a *ParseError.
func DecodeReader(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read XML: %w", err)
	}
	return Decode(data)
}

// checkWellFormed scans the token stream strictly. etree reads raw tokens,
// which reports unclosed and mismatched tags without a line and allows
// content after the root element.
func checkWellFormed(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = passthroughCharset

	depth := 0
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return newParseError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 && sawRoot {
				return outsideRoot(dec, "multiple root elements")
			}
			depth++
			sawRoot = true
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return outsideRoot(dec, "text outside the root element")
			}
		}
	}

	if !sawRoot {
		return emptyDocument()
	}
	return nil
}

func outsideRoot(dec *xml.Decoder, msg string) *ParseError {
	line, _ := dec.InputPos()
	return newParseError(&xml.SyntaxError{Msg: msg, Line: line})
}

// convert copies an etree element into a Node. An element with neither
// attributes nor child elements becomes a leaf holding its trimmed text.
func convert(el *etree.Element) *Node {
	n := NewElement()
	for _, attr := range el.Attr {
		n.Add(AttrPrefix+qualified(attr.Space, attr.Key), NewLeaf(attr.Value))
	}

	var text strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			n.Add(qualified(t.Space, t.Tag), convert(t))
		case *etree.CharData:
			text.WriteString(t.Data)
		}
	}

	trimmed := strings.TrimSpace(text.String())
	if len(n.keys) == 0 {
		return NewLeaf(trimmed)
	}
	if trimmed != "" {
		n.Add(TextKey, NewLeaf(trimmed))
	}
	return n
}

// qualified drops namespace prefixes; clash exports do not rely on them and
// the tree is addressed by local names.
func qualified(space, local string) string {
	if space == "xmlns" {
		return "xmlns:" + local
	}
	return local
}

// passthroughCharset accepts declared single-byte and UTF encodings as-is.
// Clash exports are UTF-8 in practice even when the prolog says otherwise.
func passthroughCharset(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "us-ascii", "ascii", "iso-8859-1", "latin1", "windows-1252":
		return input, nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}
