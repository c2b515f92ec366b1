package database

import "strings"

// SplitStatements splits a DDL script, such as mdb-schema output, into
// individual statements without their trailing semicolons.
//
// Semicolons inside quoted strings and identifiers ('…', "…", `…`) do not
// split. "--" comments running to the end of a line are dropped, as are
// blank statements.
func SplitStatements(script string) []string {
	var (
		stmts []string
		cur   strings.Builder
		quote rune
	)

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if quote != 0 {
			cur.WriteRune(c)
			if c == quote {
				// A doubled quote is an escaped quote, not the end.
				if i+1 < len(runes) && runes[i+1] == quote {
					cur.WriteRune(runes[i+1])
					i++
					continue
				}
				quote = 0
			}
			continue
		}

		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
			cur.WriteRune(c)
		case c == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			cur.WriteRune('\n')
		case c == ';':
			flush()
		default:
			cur.WriteRune(c)
		}
	}
	flush()

	return stmts
}
