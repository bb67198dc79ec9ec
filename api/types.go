package api

import "encoding/json"

// Entry is the payload stored under a dictionary key. The core never
// interprets its shape; it is carried verbatim from the dataset to the
// caller.
type Entry = json.RawMessage

// PrefixResult is the answer to a prefix search: matching keys in the
// order the dataset yields them, and whether the result hit its limit.
type PrefixResult struct {
	Matches   []string `json:"matches"`
	Truncated bool     `json:"truncated"`
}

// Health reports process liveness and the lookup mode fixed at startup.
type Health struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
}
