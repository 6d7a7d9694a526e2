package reference

import "strings"

// Counted is a reference annotated with per-kind count strings such as
// "2 subjects".
type Counted struct {
	Reference
	Count []string `json:"count,omitempty"`
}

// CountLabel joins the count strings for display.
func (c Counted) CountLabel() string {
	return strings.Join(c.Count, ", ")
}
