package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTicketRef accepts "7" or "#7" and returns the id
func ParseTicketRef(ref string) (uint, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q. Use a positive number like 7 or #7", ref)
	}
	return uint(id), nil
}
