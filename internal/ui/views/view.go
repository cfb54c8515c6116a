package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"gopherview/internal/content"
	"gopherview/internal/suggest"
)

// StatusState contains everything the status line shows
type StatusState struct {
	Width    int
	Loading  bool
	Spinner  string
	Status   string
	Err      string
	Notice   string
	Hint     string
	Size     int
	Elapsed  time.Duration
	HasStats bool
}

// Renderer turns content into terminal text
type Renderer struct {
	styles        *Styles
	markdownStyle string
	wordWrap      int
}

// NewRenderer creates a new renderer. wordWrap <= 0 wraps at the
// terminal width.
func NewRenderer(styles *Styles, markdownStyle string, wordWrap int) *Renderer {
	if markdownStyle == "" {
		markdownStyle = "auto"
	}
	return &Renderer{styles: styles, markdownStyle: markdownStyle, wordWrap: wordWrap}
}

// Styles returns the style set in use
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// RenderContent renders the page body. For menus each entry occupies
// exactly one line, so line i is entry i.
func (r *Renderer) RenderContent(c content.Content, cursor, width int) string {
	switch c := c.(type) {
	case content.Menu:
		return r.RenderMenu(c.Entries, cursor, width)
	case content.Text:
		if c.Markup {
			return r.renderMarkup(c.Body, width)
		}
		return r.renderText(c.Body, width)
	case content.Image:
		return r.styles.Info.Render(fmt.Sprintf("Image (%s, %s). Press s to save.",
			c.MIME, humanize.Bytes(uint64(len(c.Data)))))
	case content.Download:
		return r.styles.Info.Render(fmt.Sprintf("Binary file %s (%s). Press s to save.",
			c.Filename, humanize.Bytes(uint64(len(c.Data)))))
	case content.Unsupported:
		return r.styles.Notice.Render(fmt.Sprintf("Cannot display item of type %q: %s", c.Type.String(), c.Reason))
	default:
		return ""
	}
}

// RenderMenu renders menu entries with the cursor row highlighted
func (r *Renderer) RenderMenu(entries []content.MenuEntry, cursor, width int) string {
	if len(entries) == 0 {
		return r.styles.Dim.Render("(empty menu)")
	}

	lines := make([]string, len(entries))
	for i, e := range entries {
		var line string
		switch e.Kind {
		case content.EntryInfo:
			line = "      " + r.styles.Info.Render(e.Name)
		case content.EntryExternal:
			line = r.label(e) + " " + r.styles.External.Render(e.Name)
		default:
			line = r.label(e) + " " + r.styles.Link.Render(e.Name)
		}
		if width > 0 {
			line = truncate.StringWithTail(line, uint(width-2), "…")
		}
		if i == cursor {
			line = r.styles.Cursor.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) label(e content.MenuEntry) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(GetTypeColor(e.Type))).
		Render("[" + TypeLabel(e.Type) + "]")
}

func (r *Renderer) wrapWidth(width int) int {
	if r.wordWrap > 0 && (width <= 0 || r.wordWrap < width) {
		return r.wordWrap
	}
	return width
}

func (r *Renderer) renderText(body string, width int) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	if w := r.wrapWidth(width); w > 0 {
		return wordwrap.String(body, w)
	}
	return body
}

func (r *Renderer) renderMarkup(body string, width int) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(r.wrapWidth(width))}
	if r.markdownStyle == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(r.markdownStyle))
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return r.renderText(body, width)
	}
	out, err := tr.Render(body)
	if err != nil {
		return r.renderText(body, width)
	}
	return out
}

// RenderSuggestions renders the address bar dropdown
func (r *Renderer) RenderSuggestions(items []suggest.Suggestion, selected, width int) string {
	lines := make([]string, len(items))
	for i, s := range items {
		var tag string
		switch s.Kind {
		case suggest.KindHistory:
			tag = "history"
		case suggest.KindSearch:
			tag = "search "
		default:
			tag = "go to  "
		}
		text := fmt.Sprintf(" %s  %s ", tag, s.String())
		if width > 0 {
			text = truncate.StringWithTail(text, uint(width), "…")
		}
		style := r.styles.Suggestion
		if i == selected {
			style = r.styles.SuggestionSelected
		}
		lines[i] = style.Render(text)
	}
	return strings.Join(lines, "\n")
}

// RenderStatus renders the status line: state on the left, load stats
// on the right
func (r *Renderer) RenderStatus(s StatusState) string {
	var left string
	switch {
	case s.Loading:
		left = r.styles.StatusLoading.Render(s.Spinner + " " + s.Status)
	case s.Err != "":
		left = r.styles.StatusError.Render("Error: " + s.Err)
	case s.Notice != "":
		left = r.styles.Notice.Render(s.Notice)
	default:
		left = r.styles.Status.Render(s.Hint)
	}

	right := ""
	if s.HasStats && !s.Loading {
		right = r.styles.StatusSuccess.Render(fmt.Sprintf("%s in %s",
			humanize.Bytes(uint64(s.Size)), s.Elapsed.Round(time.Millisecond)))
	}

	if s.Width <= 0 {
		return strings.TrimSpace(left + "  " + right)
	}

	room := s.Width - lipgloss.Width(right) - 1
	if room < 0 {
		room = 0
	}
	left = truncate.StringWithTail(left, uint(room), "…")
	pad := s.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}
