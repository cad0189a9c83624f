package ai

import (
	"bytes"
	"encoding/json"
)

// SanitizeHistory extracts the structurally valid turns from a client-submitted history.
//
// Anything that is not a JSON array yields an empty history rather than an error. Within an array, entries are kept
// only if they are objects whose role is exactly "user" or "assistant" and whose content is a string; every other
// entry is dropped and counted. Kept entries preserve their original order.
func SanitizeHistory(raw json.RawMessage) (turns []Turn, dropped int) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []Turn{}, 0
	}

	turns = make([]Turn, 0, len(entries))
	for _, entry := range entries {
		turn, ok := parseTurn(entry)
		if !ok {
			dropped++
			continue
		}
		turns = append(turns, turn)
	}
	return turns, dropped
}

func parseTurn(entry json.RawMessage) (Turn, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return Turn{}, false
	}

	role, ok := jsonString(fields["role"])
	if !ok {
		return Turn{}, false
	}
	if Role(role) != RoleUser && Role(role) != RoleAssistant {
		return Turn{}, false
	}

	content, ok := jsonString(fields["content"])
	if !ok {
		return Turn{}, false
	}

	return Turn{Role: Role(role), Content: content}, true
}

// jsonString decodes raw as a JSON string. null, numbers, objects and missing values are rejected
func jsonString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
