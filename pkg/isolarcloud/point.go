package isolarcloud

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/jameshartig/sungrowmon/pkg/types"
)

// normalizePoint flattens a device_point object into string values. Numbers
// keep the exact text the API sent. Nulls are dropped.
func normalizePoint(raw map[string]json.RawMessage) types.DevicePoint {
	p := make(types.DevicePoint, len(raw))
	for k, v := range raw {
		if s, ok := parseString(v); ok {
			p[k] = s
		}
	}
	return p
}

func parseString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "", false
		}
		return strconv.FormatBool(b), true
	default:
		// numbers, and nested values as their json text
		return string(raw), true
	}
}
