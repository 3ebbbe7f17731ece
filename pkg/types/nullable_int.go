package types

import (
	"bytes"
	"encoding/json"
)

// NullableInt tracks whether an int field was explicitly present in JSON.
// A PATCH payload that omits the field leaves Valid false; an explicit null
// sets Valid true with a nil Value so the column can be cleared.
type NullableInt struct {
	Valid bool
	Value *int
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		n.Valid = true
		n.Value = nil
		return nil
	}

	var parsed int
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Valid = true
	n.Value = &parsed
	return nil
}
