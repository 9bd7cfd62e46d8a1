package workflow

import (
	"strings"

	"go.trai.ch/drake/internal/core/domain"
)

// splitFragments lexes a single command line into literal and variable-
// reference fragments: a variable reference is spelled "$[name]";
// everything else is literal text.
func splitFragments(line string) domain.CmdLine {
	var frags domain.CmdLine
	var lit []byte

	flushLiteral := func() {
		if len(lit) > 0 {
			frags = append(frags, domain.NewLiteral(string(lit)))
			lit = lit[:0]
		}
	}

	for i := 0; i < len(line); i++ {
		if line[i] == '$' && i+1 < len(line) && line[i+1] == '[' {
			rel := strings.IndexByte(line[i+2:], ']')
			if rel < 0 {
				lit = append(lit, line[i])
				continue
			}
			end := i + 2 + rel
			flushLiteral()
			frags = append(frags, domain.NewVarRef(line[i+2:end]))
			i = end
			continue
		}
		lit = append(lit, line[i])
	}
	flushLiteral()

	return frags
}
