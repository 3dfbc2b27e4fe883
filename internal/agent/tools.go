package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"

	"github.com/lisun-ai/DocAgent/internal/assets"
	"github.com/lisun-ai/DocAgent/internal/doctree"
)

// Tool names exposed to the model.
const (
	toolSearch            = "search"
	toolGetSectionContent = "get_section_content"
	toolGetPageImages     = "get_page_images"
	toolGetImage          = "get_image"
	toolGetTableImage     = "get_table_image"
)

// toolSchemas declares the five retrieval operations for the chat API.
func toolSchemas() []openai.ChatCompletionToolUnionParam {
	return []openai.ChatCompletionToolUnionParam{
		openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        toolSearch,
			Description: openai.String("Find and extract all paragraphs and sections where the exact search term appears"),
			Parameters: shared.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"keyword": map[string]any{
						"type":        "string",
						"description": "The query keyword for searching",
					},
				},
				"required": []string{"keyword"},
			},
		}),
		openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        toolGetSectionContent,
			Description: openai.String("Get the full-text content of a section in XML format"),
			Parameters: shared.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"section_id": map[string]any{
						"type":        "string",
						"description": "The ID of the section from which to fetch the complete content",
					},
				},
				"required": []string{"section_id"},
			},
		}),
		openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        toolGetPageImages,
			Description: openai.String("Extract full-page images from a specified range of pages. Both the starting page and ending page are included. Page numbers are 1-indexed"),
			Parameters: shared.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"start_page_num": map[string]any{
						"type":        "integer",
						"description": "The first page number for page image extraction",
					},
					"end_page_num": map[string]any{
						"type":        "integer",
						"description": "The last page number for page image extraction",
					},
				},
				"required": []string{"start_page_num", "end_page_num"},
			},
		}),
		openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        toolGetImage,
			Description: openai.String("Get the visual content of an image"),
			Parameters: shared.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"image_id": map[string]any{
						"type":        "string",
						"description": "The ID of the image from which to fetch the visual content",
					},
				},
				"required": []string{"image_id"},
			},
		}),
		openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        toolGetTableImage,
			Description: openai.String("Get the screenshot of a table. Use this tool to double-check the content of the table"),
			Parameters: shared.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"table_id": map[string]any{
						"type":        "string",
						"description": "The ID of the table from which to fetch the screenshot",
					},
				},
				"required": []string{"table_id"},
			},
		}),
	}
}

// Reply is a normalized tool result: text, plus image payloads when the
// tool returned visual content.
type Reply struct {
	Text   string
	Images []assets.Image
}

// DispatcherConfig carries the retrieval caps and outline thresholds.
type DispatcherConfig struct {
	MaxSearchResults   int
	MaxPageImages      int
	MaxSectionChars    int
	OutlineSkipPage    int
	OutlineCaptionPage int
}

// Dispatcher maps tool-call requests onto the document model and the
// asset store. Bad arguments (unknown identifiers, out-of-range pages,
// unknown tool names) become descriptive reply text the model can act
// on; only asset read failures and malformed argument JSON are errors.
type Dispatcher struct {
	tree  *doctree.Tree
	store *assets.Store
	cfg   DispatcherConfig
}

func NewDispatcher(tree *doctree.Tree, store *assets.Store, cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{tree: tree, store: store, cfg: cfg}
}

// Outline renders the pruned outline projection for the actor prompt.
func (d *Dispatcher) Outline() string {
	return doctree.Render(d.tree.Outline(d.cfg.OutlineSkipPage, d.cfg.OutlineCaptionPage))
}

// Dispatch executes one tool call.
func (d *Dispatcher) Dispatch(name, arguments string) (Reply, error) {
	args := make(map[string]any)
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return Reply{}, fmt.Errorf("malformed arguments for tool %s: %w", name, err)
		}
	}

	switch name {
	case toolSearch:
		return d.search(stringArg(args, "keyword")), nil
	case toolGetSectionContent:
		return d.sectionContent(stringArg(args, "section_id")), nil
	case toolGetPageImages:
		return d.pageImages(intArg(args, "start_page_num"), intArg(args, "end_page_num"))
	case toolGetImage:
		return d.image(stringArg(args, "image_id"))
	case toolGetTableImage:
		return d.tableImage(stringArg(args, "table_id"))
	}

	return Reply{
		Text: fmt.Sprintf("Tool %s is not valid, here is the list of available tools: [%s]. Please try again.",
			name, strings.Join([]string{toolSearch, toolGetSectionContent, toolGetPageImages, toolGetImage, toolGetTableImage}, ", ")),
	}, nil
}

func (d *Dispatcher) search(keyword string) Reply {
	matches := d.tree.Search(keyword)
	if len(matches) == 0 {
		return Reply{Text: fmt.Sprintf("We didn't find any section or paragraph that contains the keyword %s", keyword)}
	}

	total := len(matches)
	var header string
	if total > d.cfg.MaxSearchResults {
		matches = matches[:d.cfg.MaxSearchResults]
		header = fmt.Sprintf("We found %d results that contain the keyword %s. To shorten response, the first %d results are listed below:\n",
			total, keyword, d.cfg.MaxSearchResults)
	} else {
		header = fmt.Sprintf("We found %d results that contain the keyword %s, listed below:\n", total, keyword)
	}
	return Reply{Text: header + doctree.RenderMatches(matches)}
}

func (d *Dispatcher) sectionContent(id string) Reply {
	section, ok := d.tree.Section(id)
	if !ok {
		return Reply{Text: fmt.Sprintf("The section_id %s is not presented in the document, here is the full list of available section_id: [%s]. Please try again.",
			id, strings.Join(d.tree.SectionIDs, ", "))}
	}

	markup := doctree.Render(section)
	if len(markup) > d.cfg.MaxSectionChars {
		markup = truncateAtRune(markup, d.cfg.MaxSectionChars) + "\n...The content is too long. Try to get the content in sub sections."
		return Reply{Text: fmt.Sprintf("Here is the text content of Section %s:\n%s", id, markup)}
	}
	return Reply{Text: fmt.Sprintf("Here is the full text content of Section %s:\n%s", id, markup)}
}

func (d *Dispatcher) pageImages(start, end int) (Reply, error) {
	numPages := d.tree.NumPages

	var problems []string
	if start < 1 {
		problems = append(problems, "The start_page_num cannot be smaller than 1.")
	} else if start > numPages {
		problems = append(problems, fmt.Sprintf("The start_page_num cannot be greater than max_page_num %d.", numPages))
	}
	if end < 1 {
		problems = append(problems, "The end_page_num cannot be smaller than 1.")
	} else if end > numPages {
		problems = append(problems, fmt.Sprintf("The end_page_num cannot be greater than max_page_num %d.", numPages))
	}
	if len(problems) == 0 && end < start {
		problems = append(problems, "The end_page_num cannot be smaller than the start_page_num.")
	}
	if len(problems) > 0 {
		return Reply{Text: strings.Join(problems, " ") + " Please try again"}, nil
	}

	last := end
	capped := false
	if last-start+1 > d.cfg.MaxPageImages {
		last = start + d.cfg.MaxPageImages - 1
		capped = true
	}

	var images []assets.Image
	for page := start; page <= last; page++ {
		img, err := d.store.PageImage(page)
		if err != nil {
			return Reply{}, fmt.Errorf("extract page image %d: %w", page, err)
		}
		images = append(images, img)
	}

	var text string
	if capped {
		text = fmt.Sprintf("Here are the page images for page %d to page %d, as the number of page images exceeds the maximum limit of %d",
			start, last, d.cfg.MaxPageImages)
	} else {
		text = fmt.Sprintf("Here are the page images for page %d to page %d", start, end)
	}
	return Reply{Text: text, Images: images}, nil
}

func (d *Dispatcher) image(id string) (Reply, error) {
	path, ok := d.tree.ImagePaths[id]
	if !ok {
		return Reply{Text: fmt.Sprintf("The image_id %s is not presented in the document, here is the full list of available image_id: [%s]. Please try again",
			id, strings.Join(d.tree.ImageIDs, ", "))}, nil
	}
	img, err := d.store.Figure(path)
	if err != nil {
		return Reply{}, fmt.Errorf("extract image %s: %w", id, err)
	}
	return Reply{
		Text:   fmt.Sprintf("Here is the image content for image_id %s", id),
		Images: []assets.Image{img},
	}, nil
}

func (d *Dispatcher) tableImage(id string) (Reply, error) {
	path, ok := d.tree.TableImagePaths[id]
	if !ok {
		return Reply{Text: fmt.Sprintf("The table %s doesn't have a corresponding image, here is the full list of table_id that companies an image: [%s]. Please try again.",
			id, strings.Join(d.tree.TableImageIDs, ", "))}, nil
	}
	img, err := d.store.TableImage(path)
	if err != nil {
		return Reply{}, fmt.Errorf("extract image for table %s: %w", id, err)
	}
	return Reply{
		Text:   fmt.Sprintf("Here is the image content for table_id %s", id),
		Images: []assets.Image{img},
	}, nil
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

// stringArg coerces an argument to a string; models occasionally pass
// numeric identifiers without quotes.
func stringArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// intArg coerces an argument to an int, accepting quoted numbers.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}
