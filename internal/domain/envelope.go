package domain

// Pagination contains the pagination metadata attached to a response.
// The raw path fills cursors from the translator; the structured path
// only reports the applied limit.
type Pagination struct {
	NextCursor string `json:"next_cursor,omitempty"`
	PrevCursor string `json:"prev_cursor,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// Envelope is the per-request response contract shared by both execution
// paths. Results holds row maps, or bare scalars when the projection has a
// single column. Envelopes are built per request and never shared.
type Envelope struct {
	Results     []any          `json:"results"`
	Pagination  Pagination     `json:"pagination"`
	Viz         map[string]any `json:"viz"`
	Diagnostics map[string]any `json:"diagnostics,omitempty"`
	Error       string         `json:"error,omitempty"`
}
