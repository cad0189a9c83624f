package format

import (
	"fmt"
	"strings"
)

// numberedList turns "N. content" items into labeled blocks. An item's content runs until the next "N." marker, a
// blank line, or the end of the text, whichever comes first, and may span single line breaks
func numberedList(text string) string {
	var out strings.Builder
	copied := 0
	for i := 0; i < len(text); {
		number, contentStart, ok := matchItemMarker(text, i)
		if !ok {
			i++
			continue
		}
		end := itemEnd(text, contentStart)

		out.WriteString(text[copied:i])
		fmt.Fprintf(&out, numberedItemTemplate, number, strings.TrimSpace(text[contentStart:end]))
		copied = end
		i = end
	}
	out.WriteString(text[copied:])
	return out.String()
}

// matchItemMarker matches digits, a period and at least one whitespace character at text[i:]. It returns the digits
// and the offset where the item's content starts. The content must be at least one character long; when only
// whitespace remains, the last whitespace character becomes the content
func matchItemMarker(text string, i int) (number string, contentStart int, ok bool) {
	j := i
	for j < len(text) && isDigit(text[j]) {
		j++
	}
	if j == i || j >= len(text) || text[j] != '.' {
		return "", 0, false
	}

	wsStart := j + 1
	k := wsStart
	for k < len(text) && isSpace(text[k]) {
		k++
	}
	if k == wsStart {
		return "", 0, false
	}
	if k == len(text) {
		if k-wsStart < 2 {
			return "", 0, false
		}
		k--
	}
	return text[i:j], k, true
}

// itemEnd returns the end of the shortest non-empty content starting at contentStart that is followed by another
// marker, a blank line, or the end of the text
func itemEnd(text string, contentStart int) int {
	for e := contentStart + 1; e < len(text); e++ {
		if strings.HasPrefix(text[e:], "\n\n") || startsWithNumberAndPeriod(text[e:]) {
			return e
		}
	}
	return len(text)
}

func startsWithNumberAndPeriod(s string) bool {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i > 0 && i < len(s) && s[i] == '.'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
