package doctree

import "strings"

// Field is a child text field carried on an image match, e.g. its
// alt-text or caption.
type Field struct {
	Kind Kind
	Text string
}

// Match is one search hit, stamped with its nearest enclosing section.
type Match struct {
	Kind      Kind
	SectionID string
	Page      int
	Text      string
	ImageID   int
	Fields    []Field // image matches only
}

// Search scans the whole tree in document order for a case-insensitive
// substring match. Sections match on their heading text, paragraphs and
// tables on their content, and images on any child text field. The
// caller truncates the result list.
func (t *Tree) Search(keyword string) []Match {
	keyword = strings.ToLower(keyword)

	var matches []Match
	currSectionID := ""

	t.Root.Walk(func(n *Node) {
		switch n.Kind {
		case KindSection:
			currSectionID = n.SectionID
			if h := n.Heading(); h != nil && strings.Contains(strings.ToLower(h.Text), keyword) {
				matches = append(matches, Match{
					Kind:      KindSection,
					SectionID: n.SectionID,
					Page:      n.StartPage,
					Text:      h.Text,
				})
			}

		case KindParagraph, KindTable:
			if strings.Contains(strings.ToLower(n.Text), keyword) {
				matches = append(matches, Match{
					Kind:      n.Kind,
					SectionID: currSectionID,
					Page:      n.Page,
					Text:      n.Text,
				})
			}

		case KindImage:
			found := false
			for _, child := range n.Children {
				if strings.Contains(strings.ToLower(child.Text), keyword) {
					found = true
					break
				}
			}
			if found {
				m := Match{
					Kind:      KindImage,
					SectionID: currSectionID,
					Page:      n.Page,
					ImageID:   n.ImageID,
				}
				for _, child := range n.Children {
					m.Fields = append(m.Fields, Field{Kind: child.Kind, Text: child.Text})
				}
				matches = append(matches, m)
			}
		}
	})

	return matches
}
