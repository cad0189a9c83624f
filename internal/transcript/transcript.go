// Package transcript renders a conversation as a standalone HTML page.
package transcript

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/cchalm/relaychat/internal/ai"
	"github.com/cchalm/relaychat/internal/format"
)

//go:embed transcript.html.tmpl
var transcriptTemplate string

var pageTemplate = template.Must(template.New("transcript").Parse(transcriptTemplate))

// transcriptData is what the page template sees
type transcriptData struct {
	Title     string
	CreatedAt string
	Turns     []transcriptTurn
}

type transcriptTurn struct {
	Role  string
	Label string
	Body  template.HTML
}

// Renderer turns conversations into HTML pages. The zero value is not usable; use New
type Renderer struct {
	policy *bluemonday.Policy
	now    func() time.Time
}

func New() *Renderer {
	return &Renderer{
		policy: markupPolicy(),
		now:    time.Now,
	}
}

// markupPolicy admits exactly the elements the message formatter produces
func markupPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("strong", "br", "div", "span")
	p.AllowStyles("margin-bottom", "margin-left", "margin-right", "font-weight").OnElements("div", "span")
	return p
}

// Render writes the page for conv to w
func (r *Renderer) Render(w io.Writer, conv ai.Conversation) error {
	data := transcriptData{
		Title:     "Chat transcript",
		CreatedAt: r.now().Format("2006-01-02 15:04:05 MST"),
	}
	for _, turn := range conv {
		data.Turns = append(data.Turns, transcriptTurn{
			Role:  string(turn.Role),
			Label: label(turn.Role),
			Body:  r.body(turn),
		})
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute transcript template: %w", err)
	}
	return nil
}

// body returns the HTML for a turn. Assistant text goes through the formatter and the sanitizer; anything else is
// escaped
func (r *Renderer) body(turn ai.Turn) template.HTML {
	if turn.Role == ai.RoleAssistant {
		return template.HTML(r.policy.Sanitize(format.Message(turn.Content)))
	}
	escaped := template.HTMLEscapeString(turn.Content)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br/>"))
}

func label(role ai.Role) string {
	switch role {
	case ai.RoleAssistant:
		return "Assistant"
	case ai.RoleSystem:
		return "System"
	default:
		return "You"
	}
}
