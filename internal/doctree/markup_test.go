package doctree

import (
	"strings"
	"testing"
)

func TestRenderSection(t *testing.T) {
	section := &Node{
		Kind:      KindSection,
		SectionID: "1.2",
		StartPage: 3,
		EndPage:   5,
		Children: []*Node{
			{Kind: KindHeading, Text: "Results"},
			{Kind: KindParagraph, Page: 3, Text: "Profit & loss <unaudited>."},
		},
	}

	got := Render(section)
	for _, want := range []string{
		`<Section section_id="1.2" start_page_num="3" end_page_num="5">`,
		`<Heading>Results</Heading>`,
		`<Paragraph page_num="3">Profit &amp; loss &lt;unaudited&gt;.</Paragraph>`,
		"</Section>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderSelfClosing(t *testing.T) {
	got := Render(&Node{Kind: KindTable, TableID: 4, Page: 7})
	if want := `<CSV_Table table_id="4" page_num="7"/>` + "\n"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderFirstSentenceAttr(t *testing.T) {
	got := Render(&Node{Kind: KindParagraph, Page: 2, FirstSentence: "Growth accelerated"})
	if want := `<Paragraph page_num="2" first_sentence="Growth accelerated"/>` + "\n"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderIndentation(t *testing.T) {
	root := &Node{
		Kind: KindOutline,
		Children: []*Node{
			{
				Kind: KindSection, SectionID: "1", StartPage: 1, EndPage: 1,
				Children: []*Node{{Kind: KindHeading, Text: "A"}},
			},
		},
	}
	got := Render(root)
	if !strings.Contains(got, "\n  <Section") {
		t.Errorf("section not indented under root:\n%s", got)
	}
	if !strings.Contains(got, "\n    <Heading") {
		t.Errorf("heading not indented under section:\n%s", got)
	}
}

func TestRenderStripsNonPrintable(t *testing.T) {
	got := Render(&Node{Kind: KindParagraph, Page: 1, Text: "before\x00after"})
	if strings.Contains(got, "\x00") {
		t.Errorf("non-printable byte survived: %q", got)
	}
	if !strings.Contains(got, "beforeafter") {
		t.Errorf("printable text mangled: %q", got)
	}
}

func TestRenderMatches(t *testing.T) {
	matches := []Match{
		{Kind: KindParagraph, SectionID: "2.1", Page: 4, Text: "The term appears here."},
		{Kind: KindImage, SectionID: "3", Page: 9, ImageID: 2, Fields: []Field{
			{Kind: KindAltText, Text: "A map"},
			{Kind: KindCaption, Text: "Figure 7"},
		}},
	}

	got := RenderMatches(matches)
	for _, want := range []string{
		"<Search_Result>",
		`<Item type="Paragraph" section_id="2.1" page_num="4">The term appears here.</Item>`,
		`<Image image_id="2" section_id="3" page_num="9">`,
		`<Alt_Text>A map</Alt_Text>`,
		`<Caption>Figure 7</Caption>`,
		"</Search_Result>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderMatches() missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderMatchesEmpty(t *testing.T) {
	got := RenderMatches(nil)
	if want := "<Search_Result>\n</Search_Result>\n"; got != want {
		t.Errorf("RenderMatches(nil) = %q, want %q", got, want)
	}
}
