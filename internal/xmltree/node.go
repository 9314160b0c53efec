// Package xmltree decodes arbitrary XML into a generic tree of nodes.
//
// Every element becomes a key in its parent's field map. Attributes are stored
// under AttrPrefix+name so they never collide with a child element of the
// same name, and text content of an element that also has attributes or
// children is stored under TextKey. An element repeated under one parent
// keeps every occurrence in document order.
//
// All accessors are safe on a nil *Node and return zero values, so lookups
// through missing paths never panic.
package xmltree

// AttrPrefix marks attribute keys in a node's field map.
const AttrPrefix = "@_"

// TextKey holds the character data of an element that is not a leaf.
const TextKey = "#text"

// Node is either a leaf carrying text, or an element carrying named fields.
// A field holds one or more nodes; callers do not need to know which.
type Node struct {
	fields map[string][]*Node
	text   string
	keys   []string
	leaf   bool
}

// NewLeaf returns a leaf node holding text.
func NewLeaf(text string) *Node {
	return &Node{text: text, leaf: true}
}

// NewElement returns an element node with no fields.
func NewElement() *Node {
	return &Node{fields: make(map[string][]*Node)}
}

// Add appends child under key, turning a single field into a sequence when
// key is already present.
func (n *Node) Add(key string, child *Node) {
	if n.fields == nil {
		n.fields = make(map[string][]*Node)
	}
	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = append(n.fields[key], child)
	n.leaf = false
}

// IsLeaf reports whether n is a text leaf.
func (n *Node) IsLeaf() bool {
	return n != nil && n.leaf
}

// Keys returns field keys in first-seen order.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Children returns every node stored under key. A single occurrence and a
// one-element sequence are indistinguishable here.
func (n *Node) Children(key string) []*Node {
	if n == nil || n.fields == nil {
		return nil
	}
	return n.fields[key]
}

// Child returns the first node stored under key, or nil.
func (n *Node) Child(key string) *Node {
	children := n.Children(key)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// Text returns the character data of n: the leaf text, or the TextKey field
// of an element.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	if n.leaf {
		return n.text
	}
	return n.Child(TextKey).Text()
}

// Attr returns the value of attribute name and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	attr := n.Child(AttrPrefix + name)
	if attr == nil {
		return "", false
	}
	return attr.Text(), true
}

// AttrOr returns attribute name, or fallback when it is absent or blank.
func (n *Node) AttrOr(name, fallback string) string {
	value, ok := n.Attr(name)
	if !ok || isBlank(value) {
		return fallback
	}
	return value
}

// ChildText returns the text of the first child under key.
func (n *Node) ChildText(key string) string {
	return n.Child(key).Text()
}

// Path follows keys from n, taking the first node at every intermediate
// step, and returns all nodes stored under the final key. It returns nil
// when any step is missing.
func (n *Node) Path(keys ...string) []*Node {
	if len(keys) == 0 {
		if n == nil {
			return nil
		}
		return []*Node{n}
	}
	cur := n
	for _, key := range keys[:len(keys)-1] {
		cur = cur.Child(key)
		if cur == nil {
			return nil
		}
	}
	return cur.Children(keys[len(keys)-1])
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
