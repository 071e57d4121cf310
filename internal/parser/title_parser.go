package parser

import (
	"regexp"
	"strings"

	"github.com/folio-site/folio/internal/models"
)

// ParsedTicket represents a ticket parsed from quick-add text
type ParsedTicket struct {
	Title    string
	Priority string // normalized; empty when not given
	Column   string // column name as typed; empty when not given
	Errors   []string
}

var (
	// @"In Progress" or @Done, only at the start of a word so emails stay in the title
	columnRegex   = regexp.MustCompile(`(?:^|\s)@(?:"([^"]*)"|([^\s"]+))`)
	priorityRegex = regexp.MustCompile(`(?:^|\s)\+([a-zA-Z0-9]+)\b`)
)

// ParseQuickAdd extracts metadata from a one-line ticket description
// Syntax: `Ticket title +priority @column` or `@"Column with spaces"`
func ParseQuickAdd(input string) ParsedTicket {
	result := ParsedTicket{Errors: []string{}}

	// Column (first one wins)
	if m := columnRegex.FindStringSubmatch(input); m != nil {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		name = strings.TrimSpace(name)
		if name == "" {
			result.Errors = append(result.Errors, "Empty column name after '@'")
		} else {
			result.Column = name
		}
		input = columnRegex.ReplaceAllString(input, " ")
	}

	// Priority (+high, +3, +med)
	if m := priorityRegex.FindStringSubmatch(input); m != nil {
		if p, ok := models.ParsePriority(m[1]); ok {
			result.Priority = string(p)
		} else {
			result.Errors = append(result.Errors, "Invalid priority '"+m[1]+"'. Use: low, medium, high, 1, 2, or 3")
		}
		input = priorityRegex.ReplaceAllString(input, " ")
	}

	// Clean up the title (remove extra spaces)
	result.Title = strings.Join(strings.Fields(input), " ")
	if result.Title == "" {
		result.Errors = append(result.Errors, "Title is required")
	}

	return result
}

// MatchColumn finds a column by name, case-insensitively. A numeric name also
// matches by id.
func MatchColumn(columns []models.Column, name string) (*models.Column, bool) {
	name = strings.TrimSpace(name)
	for i := range columns {
		if strings.EqualFold(columns[i].Name, name) {
			return &columns[i], true
		}
	}
	if id, err := ParseTicketRef(name); err == nil {
		for i := range columns {
			if columns[i].ID == id {
				return &columns[i], true
			}
		}
	}
	return nil, false
}
