package domain

// DiffResult is the delta between two filtered text blocks.
//
// IsEmpty holds iff the filtered inputs were byte-identical (or, for table
// diffs, when either side was empty and no meaningful diff exists); it takes
// priority over the line-level fields, which are only populated when a diff
// was actually computed.
type DiffResult struct {
	Added       []string `json:"added,omitempty"`
	Removed     []string `json:"removed,omitempty"`
	UnifiedText string   `json:"unified_text,omitempty"`
	IsEmpty     bool     `json:"is_empty"`
}
