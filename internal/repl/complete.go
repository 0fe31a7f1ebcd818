package repl

import (
	"sort"
	"strings"

	"github.com/Klingon-tech/avash/internal/command"
)

// Candidates returns the completions for the last token of line, given the
// active context ("" for global mode).
func Candidates(r *command.Registry, active, line string) []string {
	fields := strings.Fields(line)
	trailingSpace := line == "" || strings.HasSuffix(line, " ")

	var done []string
	partial := ""
	if trailingSpace {
		done = fields
	} else {
		done = fields[:len(fields)-1]
		partial = fields[len(fields)-1]
	}

	var pool []string
	switch len(done) {
	case 0:
		pool = append(pool, "help", "exit")
		pool = append(pool, r.Contexts()...)
		if active != "" {
			pool = append(pool, r.CommandNames(active)...)
		}
	case 1:
		switch {
		case done[0] == "help":
			pool = r.Contexts()
		case r.HasContext(done[0]):
			pool = r.CommandNames(done[0])
		}
	}

	seen := make(map[string]bool, len(pool))
	var out []string
	for _, c := range pool {
		if seen[c] || !strings.HasPrefix(c, partial) {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// commonPrefix returns the longest prefix shared by every string in s.
func commonPrefix(s []string) string {
	if len(s) == 0 {
		return ""
	}
	p := s[0]
	for _, c := range s[1:] {
		for !strings.HasPrefix(c, p) {
			p = p[:len(p)-1]
		}
	}
	return p
}

// complete extends the token under the cursor as far as the candidates
// agree. A unique match also gets a trailing space.
func complete(r *command.Registry, active, line string, pos int) (string, int, bool) {
	head, tail := line[:pos], line[pos:]
	cands := Candidates(r, active, head)
	if len(cands) == 0 {
		return "", 0, false
	}

	start := strings.LastIndex(head, " ") + 1
	partial := head[start:]
	ext := commonPrefix(cands)
	if len(cands) == 1 {
		ext += " "
	}
	if ext == partial {
		return "", 0, false
	}

	newHead := head[:start] + ext
	return newHead + tail, len(newHead), true
}
