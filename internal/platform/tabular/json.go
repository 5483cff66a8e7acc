package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// fromJSON flattens a JSON document. An array yields one record per
// element. An object whose only member is an array is treated as that
// array; any other object is a single record. Nested objects flatten to
// dotted keys and nested arrays render as compact JSON.
func fromJSON(data []byte) (*table, error) {
	t := newTable()
	items, err := topLevelItems(data)
	if err != nil {
		return nil, err
	}
	for _, raw := range items {
		r := newRecord()
		if err := flattenJSON(raw, "", r); err != nil {
			return nil, err
		}
		t.add(r)
	}
	return t, nil
}

func topLevelItems(data []byte) ([]json.RawMessage, error) {
	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return items, nil
	case '{':
		keys, values, err := objectMembers(data)
		if err != nil {
			return nil, err
		}
		if len(keys) == 1 {
			if inner := bytes.TrimSpace(values[0]); len(inner) > 0 && inner[0] == '[' {
				return topLevelItems(inner)
			}
		}
		return []json.RawMessage{data}, nil
	}
	return []json.RawMessage{data}, nil
}

// objectMembers returns an object's keys in document order with their raw
// values.
func objectMembers(data []byte) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var (
		keys   []string
		values []json.RawMessage
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		keys = append(keys, key)
		values = append(values, raw)
	}
	return keys, values, nil
}

func flattenJSON(raw json.RawMessage, prefix string, r *record) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '{':
		keys, values, err := objectMembers(raw)
		if err != nil {
			return err
		}
		for i, k := range keys {
			if prefix != "" {
				k = prefix + "." + k
			}
			if err := flattenJSON(values[i], k, r); err != nil {
				return err
			}
		}
		return nil
	case '[':
		r.set(keyOr(prefix), compact(raw))
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if v == nil {
		v = ""
	}
	r.set(keyOr(prefix), scalar(v))
	return nil
}

// keyOr names a bare scalar or array element "value".
func keyOr(prefix string) string {
	if prefix == "" {
		return "value"
	}
	return prefix
}
