package translator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/carverauto/srql/internal/domain"
)

// Typed parameter tags understood by DecodeParams. They mirror the
// translator's bind-parameter envelope.
const (
	TagText        = "text"
	TagBool        = "bool"
	TagInt         = "int"
	TagFloat       = "float"
	TagIntArray    = "int_array"
	TagTextArray   = "text_array"
	TagTimestamptz = "timestamptz"
)

// DecodeParams converts the translator's typed parameter envelope into
// positional bind values. Decoding fails closed: an unrecognized tag or a
// value that does not match its tag aborts the whole request, never a
// silent coercion and never a partial binding.
func DecodeParams(params []Param) ([]any, error) {
	args := make([]any, 0, len(params))

	for i, param := range params {
		value, err := decodeParam(param)
		if err != nil {
			return nil, fmt.Errorf("%w: param %d: %v", domain.ErrParamDecodeFailure, i, err)
		}
		args = append(args, value)
	}

	return args, nil
}

func decodeParam(param Param) (any, error) {
	switch param.Tag {
	case TagText:
		var v string
		if err := json.Unmarshal(param.Value, &v); err != nil {
			return nil, fmt.Errorf("tag %q: %v", param.Tag, err)
		}
		return v, nil
	case TagBool:
		var v bool
		if err := json.Unmarshal(param.Value, &v); err != nil {
			return nil, fmt.Errorf("tag %q: %v", param.Tag, err)
		}
		return v, nil
	case TagInt:
		var v int64
		if err := json.Unmarshal(param.Value, &v); err != nil {
			return nil, fmt.Errorf("tag %q: %v", param.Tag, err)
		}
		return v, nil
	case TagFloat:
		var v float64
		if err := json.Unmarshal(param.Value, &v); err != nil {
			return nil, fmt.Errorf("tag %q: %v", param.Tag, err)
		}
		return v, nil
	case TagIntArray:
		var v []int64
		if err := json.Unmarshal(param.Value, &v); err != nil {
			return nil, fmt.Errorf("tag %q: %v", param.Tag, err)
		}
		return v, nil
	case TagTextArray:
		var v []string
		if err := json.Unmarshal(param.Value, &v); err != nil {
			return nil, fmt.Errorf("tag %q: %v", param.Tag, err)
		}
		return v, nil
	case TagTimestamptz:
		var v string
		if err := json.Unmarshal(param.Value, &v); err != nil {
			return nil, fmt.Errorf("tag %q: %v", param.Tag, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %v", param.Tag, err)
		}
		return ts, nil
	default:
		return nil, fmt.Errorf("unrecognized tag %q", param.Tag)
	}
}
