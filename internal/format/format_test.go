package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	itemOpen    = `<div style="margin-bottom: 0.5rem;"><span style="font-weight: 600; margin-right: 0.5rem;">`
	bulletOpen  = `<div style="margin-left: 1rem; margin-bottom: 0.5rem;">• `
	closeDiv    = `</div>`
	closeNumber = `</span>`
)

func item(number, content string) string {
	return itemOpen + number + "." + closeNumber + content + closeDiv
}

func bullet(content string) string {
	return bulletOpen + content + closeDiv
}

func rule(t *testing.T, name string) Rule {
	t.Helper()
	for _, r := range Rules() {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no rule named %q", name)
	return Rule{}
}

func TestRules_Order(t *testing.T) {
	names := []string{}
	for _, r := range Rules() {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{"emphasis-double", "emphasis-single", "numbered-list", "bullet", "line-breaks"}, names)
}

func TestMessage_PlainTextOnlyGetsLineBreaks(t *testing.T) {
	inputs := []string{
		"",
		"Hello there",
		"Hello there\nHow are you?",
		"Line one\n\nLine three after a blank line",
		"Prices rise, then fall; nobody knows why!",
	}

	for _, input := range inputs {
		assert.Equal(t, strings.ReplaceAll(input, "\n", "<br/>"), Message(input), "input: %q", input)
	}
}

func TestMessage_Emphasis(t *testing.T) {
	out := Message("**Hello** *world*")

	assert.Equal(t, "<strong>Hello</strong> <strong>world</strong>", out)
	assert.Equal(t, 1, strings.Count(out, "<strong>Hello</strong>"))
	assert.Equal(t, 1, strings.Count(out, "<strong>world</strong>"))
	assert.NotContains(t, out, "*")
}

func TestEmphasis_NonGreedy(t *testing.T) {
	double := rule(t, "emphasis-double")
	single := rule(t, "emphasis-single")

	assert.Equal(t, "<strong>a</strong> and <strong>b</strong>", double.Apply("**a** and **b**"))
	assert.Equal(t, "<strong>a</strong> and <strong>b</strong>", single.Apply("*a* and *b*"))
}

func TestEmphasis_UnclosedMarkerStaysLiteral(t *testing.T) {
	assert.Equal(t, "5 * 3 = 15", Message("5 * 3 = 15"))
	assert.Equal(t, "**not closed", rule(t, "emphasis-double").Apply("**not closed"))
}

func TestEmphasis_DoesNotCrossLines(t *testing.T) {
	single := rule(t, "emphasis-single")

	assert.Equal(t, "*start\nend*", single.Apply("*start\nend*"))
}

func TestMessage_NumberedList(t *testing.T) {
	out := Message("1. First item\n2. Second item")

	assert.Equal(t, item("1", "First item")+item("2", "Second item"), out)
}

func TestNumberedList_ContentSpansSingleLineBreaks(t *testing.T) {
	numbered := rule(t, "numbered-list")

	out := numbered.Apply("1. First line\ncontinued here\n2. Second")

	assert.Equal(t, item("1", "First line\ncontinued here")+item("2", "Second"), out)
}

func TestNumberedList_BlankLineEndsItem(t *testing.T) {
	numbered := rule(t, "numbered-list")

	out := numbered.Apply("Steps:\n1. Mix\n\nThen serve.")

	assert.Equal(t, "Steps:\n"+item("1", "Mix")+"\n\nThen serve.", out)
}

func TestNumberedList_MultiDigitNumbers(t *testing.T) {
	numbered := rule(t, "numbered-list")

	out := numbered.Apply("10. Ten\n11. Eleven")

	assert.Equal(t, item("10", "Ten")+item("11", "Eleven"), out)
}

func TestNumberedList_RequiresWhitespaceAfterPeriod(t *testing.T) {
	numbered := rule(t, "numbered-list")

	assert.Equal(t, "Version 1.2 is out", numbered.Apply("Version 1.2 is out"))
}

func TestNumberedList_WithEmphasis(t *testing.T) {
	out := Message("1. **Speed**: fast\n2. *Cost*: low")

	assert.Equal(t, item("1", "<strong>Speed</strong>: fast")+item("2", "<strong>Cost</strong>: low"), out)
}

func TestNumberedList_MarkerAtEnd(t *testing.T) {
	numbered := rule(t, "numbered-list")

	assert.Equal(t, "Count: 1. ", numbered.Apply("Count: 1. "))
	assert.Equal(t, "Count: "+item("1", ""), numbered.Apply("Count: 1.  "))
}

func TestNumberedList_NonASCIIContent(t *testing.T) {
	numbered := rule(t, "numbered-list")

	assert.Equal(t, item("1", "Xin chào")+item("2", "Tạm biệt"), numbered.Apply("1. Xin chào\n2. Tạm biệt"))
}

func TestMessage_Bullets(t *testing.T) {
	out := Message("Options:\n- Tea\n• Coffee")

	assert.Equal(t, "Options:<br/>"+bullet("Tea")+"<br/>"+bullet("Coffee"), out)
}

func TestBullet_OnlyAtLineStart(t *testing.T) {
	b := rule(t, "bullet")

	assert.Equal(t, "well - maybe", b.Apply("well - maybe"))
	assert.Equal(t, "-dash without space", b.Apply("-dash without space"))
}

func TestLineBreaks(t *testing.T) {
	assert.Equal(t, "a<br/><br/>b", rule(t, "line-breaks").Apply("a\n\nb"))
}

func TestMessage_Mixed(t *testing.T) {
	input := "Here is **the plan**:\n\n1. Plan\n2. Build\n\nNotes:\n- keep it *simple*"

	out := Message(input)

	assert.Equal(t,
		"Here is <strong>the plan</strong>:<br/><br/>"+
			item("1", "Plan")+item("2", "Build")+
			"<br/><br/>Notes:<br/>"+bullet("keep it <strong>simple</strong>"),
		out)
}

func TestPipeline_Apply(t *testing.T) {
	p := Pipeline{
		{Name: "upper", Apply: strings.ToUpper},
		{Name: "exclaim", Apply: func(s string) string { return s + "!" }},
	}

	assert.Equal(t, "HI!", p.Apply("hi"))
	assert.Equal(t, "hi", Pipeline{}.Apply("hi"))
}

func TestRules_ReturnsCopy(t *testing.T) {
	rules := Rules()
	rules[0] = Rule{Name: "replaced", Apply: func(string) string { return "" }}

	assert.Equal(t, "emphasis-double", Default[0].Name)
}
