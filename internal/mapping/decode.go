package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field names accepted for each channel. The code channels are keyed the same
// way for both generated-code variants.
var channelFields = map[string]func(m *NameMapping) *NameTable{
	"preToPost":     func(m *NameMapping) *NameTable { return &m.PreToPost },
	"postToPre":     func(m *NameMapping) *NameTable { return &m.PostToPre },
	"cppCodeToPost": func(m *NameMapping) *NameTable { return &m.CodeToPost },
	"codeToPost":    func(m *NameMapping) *NameTable { return &m.CodeToPost },
	"postToCppCode": func(m *NameMapping) *NameTable { return &m.PostToCode },
	"postToCode":    func(m *NameMapping) *NameTable { return &m.PostToCode },
}

// Decode parses the node-mapping document leniently. Empty input yields an
// empty mapping. Invalid JSON yields an empty mapping together with the parse
// error; callers are expected to log it and carry on. Fields and entries with
// unexpected shapes are dropped individually.
func Decode(data []byte) (*NameMapping, error) {
	m := Empty()
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Empty(), fmt.Errorf("failed to parse node mappings: %w", err)
	}

	if raw, ok := fields["version"]; ok {
		var v float64
		if err := json.Unmarshal(raw, &v); err == nil && v >= 1 {
			m.Version = int(v)
		}
	}

	// Decode in document order so that a later alias overrides an earlier one,
	// the same way a repeated JSON key would.
	for _, key := range objectKeys(data) {
		table, ok := channelFields[key]
		if !ok {
			continue
		}
		*table(m) = decodeTable(fields[key])
	}
	return m, nil
}

// decodeTable reads one channel preserving key order. Anything that is not an
// object of string arrays degrades to what could be salvaged.
func decodeTable(raw json.RawMessage) NameTable {
	var t NameTable
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return t
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return t
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return t
		}
		source, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return t
		}
		targets, ok := stringItems(value)
		if !ok || strings.TrimSpace(source) == "" {
			continue
		}
		t.Set(source, targets...)
	}
	return t
}

func stringItems(raw json.RawMessage) ([]string, bool) {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out, true
}

// objectKeys lists the top-level keys of a JSON object in document order.
func objectKeys(data []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, _ := tok.(string)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
		keys = append(keys, key)
	}
	return keys
}
