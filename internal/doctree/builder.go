package doctree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lisun-ai/DocAgent/internal/record"
)

// frame is one open section on the builder stack: the section node and
// the heading depth it was opened at.
type frame struct {
	node  *Node
	level int
}

// Build converts the content-record stream into a document tree.
// maxDepth caps section nesting; headings that would nest deeper are
// demoted to paragraphs merged with the body rows that follow them.
func Build(records []record.Record, maxDepth int) (*Tree, error) {
	t := &Tree{
		Root:            &Node{Kind: KindDocument},
		Sections:        make(map[string]*Node),
		ImagePaths:      make(map[string]string),
		TableImagePaths: make(map[string]string),
	}

	stack := []frame{{node: t.Root, level: 0}}
	prevNode := t.Root
	prevSectionID := "" // root
	currPage := 1

	addSection := func(parent *Node, id string) *Node {
		node := &Node{Kind: KindSection, SectionID: id, StartPage: currPage}
		parent.Children = append(parent.Children, node)
		t.Sections[id] = node
		t.SectionIDs = append(t.SectionIDs, id)
		return node
	}

	// A document that opens with body content still needs an addressable
	// section; synthesize "1" so a later depth-1 heading becomes "2".
	if len(records) > 0 {
		if _, isHeading := records[0].HeadingLevel(); !isHeading {
			node := addSection(t.Root, "1")
			stack = append(stack, frame{node: node, level: 1})
			prevSectionID = "1"
			prevNode = node
		}
	}

	var lastImage *Node

	for index := 0; index < len(records); index++ {
		rec := records[index]

		switch {
		case isHeading(rec):
			level, _ := rec.HeadingLevel()

			// Close sections deeper than the incoming heading.
			for level < stack[len(stack)-1].level {
				stack[len(stack)-1].node.EndPage = currPage
				stack = stack[:len(stack)-1]
				prevSectionID = parentID(prevSectionID)
			}

			var currNode *Node
			var currSectionID string

			if level == stack[len(stack)-1].level {
				// Sibling: close the open section and increment the last
				// identifier segment under the same parent.
				stack[len(stack)-1].node.EndPage = currPage
				currSectionID = siblingID(prevSectionID)
				parent := stack[len(stack)-2].node

				currNode = addSection(parent, currSectionID)
				currNode.Children = append(currNode.Children,
					&Node{Kind: KindHeading, Text: strings.TrimSpace(rec.Text)})
				stack[len(stack)-1].node = currNode
			} else if len(stack) <= maxDepth {
				// Child: number after the parent's existing child
				// sections and push a new frame.
				currSectionID = nextChildID(prevSectionID, stack[len(stack)-1].node)
				currNode = addSection(stack[len(stack)-1].node, currSectionID)
				currNode.Children = append(currNode.Children,
					&Node{Kind: KindHeading, Text: strings.TrimSpace(rec.Text)})
				stack = append(stack, frame{node: currNode, level: level})
			} else {
				// Nesting is capped: demote the heading and the body rows
				// that follow it to one merged paragraph.
				content := rec.Text
				for index+1 < len(records) && records[index+1].IsBody() {
					index++
					content = content + " " + records[index].Text
				}
				prevNode.Children = append(prevNode.Children,
					&Node{Kind: KindParagraph, Page: currPage, Text: content})
				t.ParaCount++
				lastImage = nil
				continue // section context unchanged
			}

			prevSectionID = currSectionID
			prevNode = currNode
			lastImage = nil

		case rec.IsBody():
			style := rec.Style
			content := rec.Text
			for index+1 < len(records) && records[index+1].Style == style {
				index++
				content = content + " " + records[index].Text
			}
			prevNode.Children = append(prevNode.Children,
				&Node{Kind: KindParagraph, Page: currPage, Text: content})
			t.ParaCount++
			lastImage = nil

		case rec.Style == record.StyleImage:
			if rec.Image == nil {
				return nil, fmt.Errorf("image record at row %d has no payload", index)
			}
			img := &Node{Kind: KindImage, ImageID: t.ImageCount, Page: currPage}
			prevNode.Children = append(prevNode.Children, img)
			id := strconv.Itoa(t.ImageCount)
			t.ImagePaths[id] = baseName(rec.Image.Path)
			t.ImageIDs = append(t.ImageIDs, id)
			if rec.Image.AltText != "" {
				img.Children = append(img.Children,
					&Node{Kind: KindAltText, Text: rec.Image.AltText})
			}
			t.ImageCount++
			lastImage = img

		case rec.Style == record.StyleCaption:
			caption := &Node{Kind: KindCaption, Text: rec.Text}
			if index > 0 && records[index-1].Style == record.StyleImage && lastImage != nil {
				lastImage.Children = append(lastImage.Children, caption)
			} else {
				prevNode.Children = append(prevNode.Children, caption)
			}
			lastImage = nil

		case rec.Style == record.StyleTable:
			if rec.Table == nil || rec.Table.Content == "" {
				lastImage = nil
				continue
			}
			table := &Node{Kind: KindTable, TableID: t.TableCount, Page: currPage, Text: rec.Table.Content}
			prevNode.Children = append(prevNode.Children, table)
			if rec.Table.ImagePath != "" {
				id := strconv.Itoa(t.TableCount)
				t.TableImagePaths[id] = rec.Table.ImagePath
				t.TableImageIDs = append(t.TableImageIDs, id)
			}
			t.TableCount++
			lastImage = nil

		case rec.Style == record.StylePageStart:
			currPage = rec.Page
			lastImage = nil

		case rec.Style == record.StyleTitle:
			prevNode.Children = append(prevNode.Children,
				&Node{Kind: KindTitle, Page: currPage, Text: rec.Text})
			lastImage = nil

		default:
			return nil, fmt.Errorf("unrecognized record style %q at row %d", rec.Style, index)
		}
	}

	// Close every still-open section at the final page.
	for _, f := range stack {
		if f.node.Kind == KindSection {
			f.node.EndPage = currPage
		}
	}

	return t, nil
}

func isHeading(rec record.Record) bool {
	_, ok := rec.HeadingLevel()
	return ok
}

// parentID drops the last identifier segment: "1.2.3" -> "1.2".
func parentID(id string) string {
	if i := strings.LastIndex(id, "."); i >= 0 {
		return id[:i]
	}
	return ""
}

// siblingID increments the last identifier segment: "1.2.3" -> "1.2.4".
func siblingID(id string) string {
	parts := strings.Split(id, ".")
	last, _ := strconv.Atoi(parts[len(parts)-1])
	parts[len(parts)-1] = strconv.Itoa(last + 1)
	return strings.Join(parts, ".")
}

// nextChildID numbers a new child section after the parent's existing
// child sections, so a parent re-entered after pops never reuses an
// identifier: a root holding "1" hands out "2", a section "1" already
// holding "1.1" hands out "1.2".
func nextChildID(parentID string, parent *Node) string {
	count := 0
	for _, child := range parent.Children {
		if child.Kind == KindSection {
			count++
		}
	}
	seg := strconv.Itoa(count + 1)
	if parentID == "" {
		return seg
	}
	return parentID + "." + seg
}

func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
