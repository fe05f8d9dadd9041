package parsers

import "strings"

// SplitLine splits one line of a brokerage export into fields. Commas inside
// double quotes do not split; the quote characters themselves are dropped.
// Every field is trimmed of surrounding whitespace. The result always has at
// least one entry, even for an empty line.
//
// Doubled-quote escaping ("") is not interpreted; malformed quoting degrades
// to odd field boundaries rather than an error, which matches how loosely
// these exports are produced in the first place.
func SplitLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}

// SplitLines breaks a raw file blob into lines, tolerating both \n and \r\n
// endings.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
