package doctree

import (
	"strings"
	"unicode/utf8"
)

// captionPrefixLen bounds caption text kept in late-document outline
// images.
const captionPrefixLen = 20

// Outline produces a pruned projection of the tree sized for a model
// prompt. Paragraphs past skipParaAfterPage are dropped; earlier ones
// keep only their first sentence. Tables past the threshold keep their
// identifier but lose their content. When disableCaptionAfterPage is
// positive, captions on images past that page are truncated.
//
// The projection operates on a deep copy; the canonical tree is never
// mutated.
func (t *Tree) Outline(skipParaAfterPage, disableCaptionAfterPage int) *Node {
	root := t.Root.Clone()
	root.Kind = KindOutline
	pruneOutline(root, skipParaAfterPage, disableCaptionAfterPage)
	return root
}

// truncateAtRune shortens s to at most max bytes, backing off so a
// multi-byte rune is never split.
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// pruneOutline walks children in reverse so removal is safe while
// iterating.
func pruneOutline(parent *Node, skipPage, captionPage int) {
	for i := len(parent.Children) - 1; i >= 0; i-- {
		child := parent.Children[i]

		if child.Kind == KindSection && len(child.Children) > 0 {
			pruneOutline(child, skipPage, captionPage)
		}

		switch child.Kind {
		case KindParagraph:
			if child.Page > skipPage {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
				continue
			}
			child.FirstSentence, _, _ = strings.Cut(child.Text, ". ")
			child.Text = ""

		case KindTable:
			if child.Page > skipPage {
				child.Text = ""
			}

		case KindImage:
			if captionPage > 0 && child.Page > captionPage {
				for _, sub := range child.Children {
					if sub.Kind == KindCaption {
						sub.Text = truncateAtRune(sub.Text, captionPrefixLen)
					}
				}
			}
		}
	}
}
