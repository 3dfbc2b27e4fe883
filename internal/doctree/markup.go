package doctree

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Render serializes a node subtree to an indented XML-style markup
// string for inclusion in prompts and tool replies. Non-printable
// characters picked up by OCR are stripped.
func Render(n *Node) string {
	var b strings.Builder
	renderNode(&b, n, 0)
	return b.String()
}

func renderNode(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(string(n.Kind))
	for _, attr := range nodeAttrs(n) {
		fmt.Fprintf(b, " %s=%q", attr.name, attr.value)
	}

	text := cleanText(n.Text)
	if text == "" && len(n.Children) == 0 {
		b.WriteString("/>\n")
		return
	}
	b.WriteString(">")

	if len(n.Children) == 0 {
		b.WriteString(escapeText(text))
	} else {
		b.WriteByte('\n')
		if text != "" {
			b.WriteString(strings.Repeat("  ", depth+1))
			b.WriteString(escapeText(text))
			b.WriteByte('\n')
		}
		for _, child := range n.Children {
			renderNode(b, child, depth+1)
		}
		b.WriteString(indent)
	}
	b.WriteString("</")
	b.WriteString(string(n.Kind))
	b.WriteString(">\n")
}

type attr struct {
	name  string
	value string
}

func nodeAttrs(n *Node) []attr {
	switch n.Kind {
	case KindSection:
		return []attr{
			{"section_id", n.SectionID},
			{"start_page_num", strconv.Itoa(n.StartPage)},
			{"end_page_num", strconv.Itoa(n.EndPage)},
		}
	case KindParagraph:
		attrs := []attr{{"page_num", strconv.Itoa(n.Page)}}
		if n.FirstSentence != "" {
			attrs = append(attrs, attr{"first_sentence", cleanText(n.FirstSentence)})
		}
		return attrs
	case KindImage:
		return []attr{
			{"image_id", strconv.Itoa(n.ImageID)},
			{"page_num", strconv.Itoa(n.Page)},
		}
	case KindTable:
		return []attr{
			{"table_id", strconv.Itoa(n.TableID)},
			{"page_num", strconv.Itoa(n.Page)},
		}
	case KindTitle:
		return []attr{{"page_num", strconv.Itoa(n.Page)}}
	}
	return nil
}

// RenderMatches serializes search hits as a flat result list.
func RenderMatches(matches []Match) string {
	var b strings.Builder
	b.WriteString("<Search_Result>\n")
	for _, m := range matches {
		if m.Kind == KindImage {
			fmt.Fprintf(&b, "  <Image image_id=%q section_id=%q page_num=%q>\n",
				strconv.Itoa(m.ImageID), m.SectionID, strconv.Itoa(m.Page))
			for _, f := range m.Fields {
				fmt.Fprintf(&b, "    <%s>%s</%s>\n", f.Kind, escapeText(cleanText(f.Text)), f.Kind)
			}
			b.WriteString("  </Image>\n")
			continue
		}
		fmt.Fprintf(&b, "  <Item type=%q section_id=%q page_num=%q>%s</Item>\n",
			string(m.Kind), m.SectionID, strconv.Itoa(m.Page), escapeText(cleanText(m.Text)))
	}
	b.WriteString("</Search_Result>\n")
	return b.String()
}

// cleanText drops characters that are neither printable nor whitespace.
func cleanText(s string) string {
	clean := true
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
