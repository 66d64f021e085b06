package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is an open-schema attribute bag stored as JSONB.
type JSONMap map[string]any

// Value serializes the map to JSON.
func (j *JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan decodes JSONB into the map.
func (j *JSONMap) Scan(src any) error {
	if src == nil {
		*j = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("JSONMap: unsupported Scan type %T", src)
	}
}

// Merge copies every key from other into a copy of j, other winning on
// collisions. Neither input is mutated.
func (j JSONMap) Merge(other JSONMap) JSONMap {
	if len(j) == 0 && len(other) == 0 {
		return nil
	}
	out := make(JSONMap, len(j)+len(other))
	for k, v := range j {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
