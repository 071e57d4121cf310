package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-site/folio/internal/models"
)

func TestParseQuickAdd(t *testing.T) {
	tests := []struct {
		input string
		want  ParsedTicket
	}{
		{
			input: "Fix login",
			want:  ParsedTicket{Title: "Fix login", Errors: []string{}},
		},
		{
			input: "Fix login +high @Done",
			want:  ParsedTicket{Title: "Fix login", Priority: "high", Column: "Done", Errors: []string{}},
		},
		{
			input: `@"In Progress" Write tests +2`,
			want:  ParsedTicket{Title: "Write tests", Priority: "medium", Column: "In Progress", Errors: []string{}},
		},
		{
			input: "Deploy +urgent",
			want: ParsedTicket{
				Title:  "Deploy",
				Errors: []string{"Invalid priority 'urgent'. Use: low, medium, high, 1, 2, or 3"},
			},
		},
		{
			input: "C++ refactor",
			want:  ParsedTicket{Title: "C++ refactor", Errors: []string{}},
		},
		{
			input: "+low @Done",
			want:  ParsedTicket{Priority: "low", Column: "Done", Errors: []string{"Title is required"}},
		},
		{
			input: "Reply to bob@corp.com about invoice",
			want:  ParsedTicket{Title: "Reply to bob@corp.com about invoice", Errors: []string{}},
		},
		{
			input: "Email ops@corp.com @Done +low",
			want:  ParsedTicket{Title: "Email ops@corp.com", Priority: "low", Column: "Done", Errors: []string{}},
		},
		{
			input: `Tidy @""`,
			want:  ParsedTicket{Title: "Tidy", Errors: []string{"Empty column name after '@'"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseQuickAdd(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseQuickAdd(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseTicketRef(t *testing.T) {
	id, err := ParseTicketRef("#12")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	id, err = ParseTicketRef(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, uint(3), id)

	for _, bad := range []string{"", "#", "0", "-1", "abc"} {
		_, err := ParseTicketRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestMatchColumn(t *testing.T) {
	columns := []models.Column{
		{ID: 1, Name: "To Do"},
		{ID: 2, Name: "In Progress"},
		{ID: 3, Name: "Done"},
	}

	c, ok := MatchColumn(columns, "in progress")
	require.True(t, ok)
	assert.Equal(t, uint(2), c.ID)

	c, ok = MatchColumn(columns, "#3")
	require.True(t, ok)
	assert.Equal(t, "Done", c.Name)

	_, ok = MatchColumn(columns, "Review")
	assert.False(t, ok)
}
