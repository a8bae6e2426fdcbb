package catalog

import "strings"

// parseCreateTableColumns extracts column names, in declaration order,
// from a CREATE TABLE statement's SQL text. It is deliberately tolerant:
// it does not validate types or constraints, it only needs the name that
// leads each top-level column definition.
func parseCreateTableColumns(sql string) []string {
	body, ok := parenBody(sql)
	if !ok {
		return nil
	}

	var columns []string
	for _, def := range splitTopLevelCommas(body) {
		def = strings.TrimSpace(def)
		if def == "" {
			continue
		}
		upper := strings.ToUpper(def)
		if strings.HasPrefix(upper, "PRIMARY KEY") ||
			strings.HasPrefix(upper, "UNIQUE") ||
			strings.HasPrefix(upper, "FOREIGN KEY") ||
			strings.HasPrefix(upper, "CHECK") ||
			strings.HasPrefix(upper, "CONSTRAINT") {
			// Table-level constraint, not a column definition.
			continue
		}
		name, _, _ := strings.Cut(def, " ")
		if q := def[0]; q == '"' || q == '`' || q == '[' {
			// A quoted name may itself contain spaces: it runs up to the
			// matching closing quote.
			if end := strings.IndexByte(def[1:], closingQuote(q)); end >= 0 {
				name = def[:end+2]
			}
		}
		columns = append(columns, unquoteIdentifier(name))
	}
	return columns
}

// parseCreateIndexColumns extracts the column list from a CREATE INDEX
// statement, e.g. "CREATE INDEX idx ON t(a, b)" -> ["a", "b"].
func parseCreateIndexColumns(sql string) []string {
	body, ok := parenBody(sql)
	if !ok {
		return nil
	}

	var columns []string
	for _, col := range splitTopLevelCommas(body) {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		// Indexed columns may carry a COLLATE clause or ASC/DESC suffix;
		// the bare name is always the first token.
		name, _, _ := strings.Cut(col, " ")
		columns = append(columns, unquoteIdentifier(name))
	}
	return columns
}

// parseCreateIndexTableName extracts the table name after ON from a
// CREATE INDEX statement.
func parseCreateIndexTableName(sql string) string {
	upper := strings.ToUpper(sql)
	onIdx := strings.Index(upper, " ON ")
	if onIdx == -1 {
		return ""
	}

	rest := strings.TrimSpace(sql[onIdx+4:])
	end := strings.IndexAny(rest, " \t\n(")
	if end == -1 {
		return unquoteIdentifier(rest)
	}
	return unquoteIdentifier(rest[:end])
}

// parenBody returns the text between the first '(' and the last ')' in
// sql. Quotes are not taken into account: a parenthesis inside a quoted
// name is treated like any other.
func parenBody(sql string) (string, bool) {
	start := strings.IndexByte(sql, '(')
	end := strings.LastIndexByte(sql, ')')
	if start == -1 || end == -1 || start >= end {
		return "", false
	}
	return sql[start+1 : end], true
}

// splitTopLevelCommas splits s on commas that are not nested inside
// parentheses or quotes, so "a INTEGER, b TEXT CHECK(b IN ('x', 'y'))"
// splits into two definitions rather than three.
func splitTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	var quote byte
	last := 0

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`' || c == '[':
			quote = closingQuote(c)
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	parts = append(parts, s[last:])
	return parts
}

func closingQuote(open byte) byte {
	if open == '[' {
		return ']'
	}
	return open
}

// unquoteIdentifier strips the quoting SQLite accepts around identifiers:
// "name", `name`, [name], or plain name.
func unquoteIdentifier(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	pairs := map[byte]byte{'"': '"', '`': '`', '[': ']'}
	if closing, ok := pairs[s[0]]; ok && s[len(s)-1] == closing {
		return s[1 : len(s)-1]
	}
	return s
}
