// Package format renders assistant replies written with lightweight markdown-like conventions as display markup.
//
// Rendering is an ordered pipeline of rules. Each rule rewrites the output of the one before it, so the order of
// Default is part of the output format: emphasis, then numbered items, then bullets, then line breaks. This is a
// best-effort renderer, not a markdown parser; nested emphasis, escaped asterisks and lists mixed with emphasis may
// render imperfectly.
package format

import (
	"regexp"
	"strings"
)

// Rule is one named rewrite step
type Rule struct {
	Name  string
	Apply func(text string) string
}

// Pipeline applies its rules in order
type Pipeline []Rule

// Apply runs text through every rule of the pipeline
func (p Pipeline) Apply(text string) string {
	for _, rule := range p {
		text = rule.Apply(text)
	}
	return text
}

var (
	doubleEmphasisPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)
	singleEmphasisPattern = regexp.MustCompile(`\*(.+?)\*`)
	bulletPattern         = regexp.MustCompile(`(?m)^[•-]\s+(.+)$`)
)

const (
	numberedItemTemplate = `<div style="margin-bottom: 0.5rem;"><span style="font-weight: 600; margin-right: 0.5rem;">%s.</span>%s</div>`
	bulletItemMarkup     = `<div style="margin-left: 1rem; margin-bottom: 0.5rem;">• $1</div>`
	lineBreakMarkup      = "<br/>"
)

// Default is the pipeline used for assistant replies
var Default = Pipeline{
	{Name: "emphasis-double", Apply: func(text string) string {
		return doubleEmphasisPattern.ReplaceAllString(text, "<strong>$1</strong>")
	}},
	{Name: "emphasis-single", Apply: func(text string) string {
		return singleEmphasisPattern.ReplaceAllString(text, "<strong>$1</strong>")
	}},
	{Name: "numbered-list", Apply: numberedList},
	{Name: "bullet", Apply: func(text string) string {
		return bulletPattern.ReplaceAllString(text, bulletItemMarkup)
	}},
	{Name: "line-breaks", Apply: func(text string) string {
		return strings.ReplaceAll(text, "\n", lineBreakMarkup)
	}},
}

// Message renders one reply with the Default pipeline
func Message(text string) string {
	return Default.Apply(text)
}

// Rules returns a copy of the Default pipeline's rules
func Rules() []Rule {
	rules := make([]Rule, len(Default))
	copy(rules, Default)
	return rules
}
