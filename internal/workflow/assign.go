package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAssignments reads `key=value` pairs separated by commas into a State.
// Values are typed: true/false, integers, floats, and quoted or bare strings.
func ParseAssignments(raw string) (State, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	out := make(State, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, val, err := ParseAssignment(part)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}

	return out, nil
}

// ParseAssignment reads a single `key=value` pair. Commas in the value are
// kept, which lets command line flags carry arbitrary text.
func ParseAssignment(part string) (string, any, error) {
	kv := strings.SplitN(part, "=", 2)
	if len(kv) != 2 {
		return "", nil, fmt.Errorf("invalid assignment %q (expected key=value)", part)
	}

	key := strings.TrimSpace(kv[0])
	if key == "" {
		return "", nil, fmt.Errorf("empty key in assignment %q", part)
	}

	return key, parseLiteral(kv[1]), nil
}

func parseLiteral(s string) any {
	s = strings.TrimSpace(s)

	if s == "true" {
		return true
	}
	if s == "false" {
		return false
	}

	if i, err := strconv.Atoi(s); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		if s[0] == '\'' {
			s = `"` + s[1:len(s)-1] + `"`
		}
		if unq, err := strconv.Unquote(s); err == nil {
			return unq
		}
	}

	return s
}
