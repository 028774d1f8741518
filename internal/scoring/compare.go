package scoring

import (
	"math"
	"strings"
)

// Match decides whether a submitted answer equals the correct one.
//
// Both sides may be an option index or option text:
//   - number vs number compares exactly
//   - text vs text compares case-insensitively after trimming
//   - index vs text resolves the index into options first, in either direction
//
// A missing side is never a match.
func Match(user, correct any, options []string) bool {
	if absent(user) || absent(correct) {
		return false
	}

	userNum, userIsNum := number(user)
	correctNum, correctIsNum := number(correct)
	userText, userIsText := user.(string)
	correctText, correctIsText := correct.(string)

	switch {
	case userIsNum && correctIsNum:
		return userNum == correctNum
	case userIsText && correctIsText:
		return normalizeText(userText) == normalizeText(correctText)
	case userIsNum && correctIsText:
		text, ok := optionAt(options, userNum)
		return ok && normalizeText(text) == normalizeText(correctText)
	case userIsText && correctIsNum:
		text, ok := optionAt(options, correctNum)
		return ok && normalizeText(userText) == normalizeText(text)
	}
	return false
}

func absent(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func optionAt(options []string, idx float64) (string, bool) {
	if idx != math.Trunc(idx) || idx < 0 || int(idx) >= len(options) {
		return "", false
	}
	return options[int(idx)], true
}

// optionTexts flattens a loosely typed options array into display strings.
// Object options contribute their "text", "label" or "value" field.
func optionTexts(v any) []string {
	if ss, ok := v.([]string); ok {
		return ss
	}
	items, ok := list(v)
	if !ok {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		switch t := item.(type) {
		case string:
			out[i] = t
		default:
			if obj, ok := object(item); ok {
				for _, k := range []string{"text", "label", "value"} {
					if s, ok := obj[k].(string); ok {
						out[i] = s
						break
					}
				}
			} else if s, ok := key(item); ok {
				out[i] = s
			}
		}
	}
	return out
}
