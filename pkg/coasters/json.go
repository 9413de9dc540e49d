package coasters

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// encodeObject writes an ordered map as a compact JSON object without HTML
// escaping.
func encodeObject[V any](om *orderedmap.OrderedMap[string, V]) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		if pair != om.Oldest() {
			buf.WriteByte(',')
		}
		if err := enc.Encode(pair.Key); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(':')
		if err := enc.Encode(pair.Value); err != nil {
			return nil, fmt.Errorf("field %q: %w", pair.Key, err)
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeObject splits a JSON object into its raw members, in order.
func decodeObject(data []byte) (*orderedmap.OrderedMap[string, json.RawMessage], error) {
	raw := orderedmap.New[string, json.RawMessage]()
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return raw, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %q", truncate(trimmed, 16))
	}
	if err := json.Unmarshal(trimmed, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// marshalIndent renders a value as two-space indented JSON with a trailing
// newline.
func marshalIndent(v json.Marshaler) ([]byte, error) {
	compact, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
