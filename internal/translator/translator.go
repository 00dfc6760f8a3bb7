package translator

import (
	"context"
	"encoding/json"
)

// Request carries a raw query string and its pagination options to the
// external translator.
type Request struct {
	Query     string `json:"query"`
	Limit     *int   `json:"limit,omitempty"`
	Cursor    string `json:"cursor,omitempty"`
	Direction string `json:"direction,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

// Pagination is the translator's pagination metadata.
type Pagination struct {
	Limit      *int   `json:"limit"`
	NextCursor string `json:"next_cursor"`
	PrevCursor string `json:"prev_cursor"`
}

// Param is one typed SQL bind parameter: a tag naming the wire type and the
// still-encoded value. Decoding is strict; see DecodeParams.
type Param struct {
	Tag   string          `json:"t"`
	Value json.RawMessage `json:"v"`
}

// Translation is the translator's validated output contract: parameterized
// SQL plus pagination and optional visualization metadata. The engine treats
// everything beyond this shape as opaque.
type Translation struct {
	SQL        string          `json:"sql"`
	Params     []Param         `json:"params"`
	Pagination Pagination      `json:"pagination"`
	Viz        json.RawMessage `json:"viz,omitempty"`
}

// Translator converts a raw query string into an executable Translation.
// Implementations must be safe for concurrent use.
type Translator interface {
	Translate(ctx context.Context, req Request) (Translation, error)
}

// VizMap returns the translation's viz metadata when it is a JSON object,
// and nil otherwise. The content is passed through unexamined.
func (t Translation) VizMap() map[string]any {
	if len(t.Viz) == 0 {
		return nil
	}

	var viz map[string]any
	if err := json.Unmarshal(t.Viz, &viz); err != nil {
		return nil
	}
	return viz
}
