// Package doctree builds a hierarchical, addressable document tree from
// the flat content-record stream and exposes outline generation, keyword
// search, and section retrieval over it. The tree is built once per
// document and is read-only afterwards; concurrent readers need no
// synchronization.
package doctree

// Kind identifies the type of a tree node. The names double as element
// names in the rendered markup.
type Kind string

const (
	KindDocument  Kind = "Document"
	KindOutline   Kind = "Outline"
	KindSection   Kind = "Section"
	KindHeading   Kind = "Heading"
	KindParagraph Kind = "Paragraph"
	KindImage     Kind = "Image"
	KindAltText   Kind = "Alt_Text"
	KindCaption   Kind = "Caption"
	KindTable     Kind = "CSV_Table"
	KindTitle     Kind = "Title"
)

// Node is a node in the document tree. Which fields are meaningful
// depends on Kind: sections carry an identifier and a page range,
// leaf content carries a page number and text.
type Node struct {
	Kind Kind

	// Section fields
	SectionID string
	StartPage int
	EndPage   int

	// Leaf fields
	Page          int
	ImageID       int // Image nodes, assignment order = document order
	TableID       int // CSV_Table nodes
	Text          string
	FirstSentence string // set on outline paragraphs in place of Text

	Children []*Node
}

// Clone creates a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{
		Kind:          n.Kind,
		SectionID:     n.SectionID,
		StartPage:     n.StartPage,
		EndPage:       n.EndPage,
		Page:          n.Page,
		ImageID:       n.ImageID,
		TableID:       n.TableID,
		Text:          n.Text,
		FirstSentence: n.FirstSentence,
	}
	if n.Children != nil {
		clone.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

// Walk traverses the tree in document order, calling fn for each node.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Heading returns the node's heading child, or nil. Sections created
// for leading non-heading content have no heading.
func (n *Node) Heading() *Node {
	if len(n.Children) > 0 && n.Children[0].Kind == KindHeading {
		return n.Children[0]
	}
	return nil
}

// Tree is the canonical document model plus its lookup indexes.
type Tree struct {
	Root *Node

	// Sections maps dotted identifiers to their nodes; SectionIDs keeps
	// creation order for self-correcting "valid identifiers" replies.
	Sections   map[string]*Node
	SectionIDs []string

	// Asset back-references. Images map every image; tables appear only
	// when the extraction produced a rendered screenshot.
	ImagePaths      map[string]string
	ImageIDs        []string
	TableImagePaths map[string]string
	TableImageIDs   []string

	ImageCount int
	TableCount int
	ParaCount  int

	// NumPages is stamped by the caller from the page-image store.
	NumPages int
}

// Section looks up a section subtree by its dotted identifier.
func (t *Tree) Section(id string) (*Node, bool) {
	n, ok := t.Sections[id]
	return n, ok
}
