package roster

import (
	"strings"
	"unicode"
)

const (
	keywordDirector = "院長" // director, also used on its own as a name
	keywordDoctor   = "医師" // doctor suffix, closes a name
	keywordAsterisk = "＊"  // full-width asterisk suffix, closes a name
)

// TokenizeDoctors splits one shift's text into doctor identifiers.
//
// Rules, first match wins:
//  1. "、" or "," present: split on it (full-width wins) and trim pieces.
//  2. whitespace plus one of 院長/医師/＊ present: reassemble names from
//     whitespace tokens, using the keywords as name boundaries.
//  3. otherwise the whole text is one identifier.
//
// The result is ordered and free of duplicates and empty strings.
func TokenizeDoctors(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var names []string
	switch {
	case strings.Contains(text, "、"):
		names = splitTrim(text, "、")
	case strings.Contains(text, ","):
		names = splitTrim(text, ",")
	case strings.IndexFunc(text, unicode.IsSpace) >= 0 && hasNameKeyword(text):
		names = reassembleNames(strings.Fields(text))
	default:
		names = []string{text}
	}

	return NewDoctors(names...)
}

func splitTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func hasNameKeyword(s string) bool {
	return strings.Contains(s, keywordDirector) ||
		strings.Contains(s, keywordDoctor) ||
		strings.Contains(s, keywordAsterisk)
}

func closesName(token string) bool {
	return strings.Contains(token, keywordDoctor) || strings.Contains(token, keywordAsterisk)
}

// reassembleNames scans whitespace tokens left to right, accumulating a
// name until a keyword marks its boundary.
func reassembleNames(tokens []string) []string {
	var (
		names   []string
		current []string
	)
	flush := func() {
		if name := strings.TrimSpace(strings.Join(current, " ")); name != "" {
			names = append(names, name)
		}
		current = current[:0]
	}

	for _, tok := range tokens {
		switch {
		case tok == keywordDirector:
			flush()
			current = append(current, tok)
		case closesName(tok):
			// A bare 院長 is a complete name; it only absorbs plain tokens.
			if len(current) == 1 && current[0] == keywordDirector {
				flush()
			}
			current = append(current, tok)
			flush()
		default:
			current = append(current, tok)
		}
	}
	flush()

	return names
}
