package command

import "strings"

const quote = '"'

// SplitTokens splits an input line on runs of whitespace.
//
// A token wrapped in double quotes has the quotes removed (values pasted
// from JSON output arrive quoted). A quoted value spanning several tokens,
// from a token opening with a quote up to the next token closing with one,
// is rejoined with single spaces. An opening quote that is never closed is
// kept literally.
func SplitTokens(line string) []string {
	parts := strings.Fields(line)
	out := make([]string, 0, len(parts))

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if len(part) > 2 && part[0] == quote && part[len(part)-1] == quote {
			out = append(out, part[1:len(part)-1])
			continue
		}

		if part[0] == quote && !closesQuote(part, true) {
			if end := findClosing(parts, i+1); end >= 0 {
				joined := strings.Join(parts[i:end+1], " ")
				out = append(out, joined[1:len(joined)-1])
				i = end
				continue
			}
		}

		out = append(out, part)
	}

	return out
}

// closesQuote reports whether tok ends a quoted run. An opening token needs
// a second quote character to also close itself.
func closesQuote(tok string, opening bool) bool {
	if tok[len(tok)-1] != quote {
		return false
	}
	if opening {
		return len(tok) > 1
	}
	return true
}

func findClosing(parts []string, from int) int {
	for j := from; j < len(parts); j++ {
		if closesQuote(parts[j], false) {
			return j
		}
	}
	return -1
}
