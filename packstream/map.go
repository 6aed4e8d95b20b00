package packstream

import "github.com/pkg/errors"

// MapEntry is one key/value pair of a Map, preserved in insertion order.
type MapEntry struct {
	Key   string
	Value Value
}

// Map is a PackStream map from String to Value. Keys are unique; iteration
// order follows insertion order but is not semantically significant (two
// Maps with the same pairs in different orders are equal, see Equal).
type Map struct {
	entries []MapEntry
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{}
}

// MapOf builds a Map from a plain Go map, for callers that don't care about
// field order (e.g. request metadata).
func MapOf(m map[string]Value) *Map {
	out := NewMap()
	for k, v := range m {
		out.Set(k, v)
	}
	return out
}

// Set inserts or replaces the value for key, preserving the position of an
// existing key.
func (v *Map) Set(key string, value Value) {
	for i, e := range v.entries {
		if e.Key == key {
			v.entries[i].Value = value
			return
		}
	}
	v.entries = append(v.entries, MapEntry{Key: key, Value: value})
}

// Get returns the value for key, if present.
func (v *Map) Get(key string) (Value, bool) {
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Delete removes key, returning the removed value if it was present.
func (v *Map) Delete(key string) (Value, bool) {
	for i, e := range v.entries {
		if e.Key == key {
			v.entries = append(v.entries[:i], v.entries[i+1:]...)
			return e.Value, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (v *Map) Len() int {
	return len(v.entries)
}

// Entries returns the entries in insertion order. The slice must not be
// mutated by the caller.
func (v *Map) Entries() []MapEntry {
	return v.entries
}

// Equal reports whether v and other hold the same key/value pairs,
// regardless of order (the codec makes no order guarantee on decode).
func (v *Map) Equal(other *Map) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Len() != other.Len() {
		return false
	}
	for _, e := range v.entries {
		ov, ok := other.Get(e.Key)
		if !ok || !valuesEqual(e.Value, ov) {
			return false
		}
	}
	return true
}

// Size and MarshalPS treat a nil *Map as the empty map.
func (v *Map) Size() int {
	if v == nil {
		return 1
	}
	n := 1 + fitLen(v.Len()).headerExtra()
	for _, e := range v.entries {
		n += String(e.Key).Size() + e.Value.Size()
	}
	return n
}

func (v *Map) MarshalPS(buf []byte) ([]byte, error) {
	if v == nil {
		return append(buf, tinyMapBase), nil
	}
	buf = appendLen(buf, tinyMapBase, markerMap8, markerMap16, markerMap32, v.Len())
	for _, e := range v.entries {
		var err error
		if buf, err = String(e.Key).MarshalPS(buf); err != nil {
			return nil, err
		}
		if buf, err = e.Value.MarshalPS(buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func decodeMap(p []byte, reg *Registry) (Value, int, error) {
	n, hdr, err := readLen(p, tinyMapBase, markerMap8, markerMap16, markerMap32)
	if err != nil {
		return nil, 0, err
	}

	out := NewMap()
	off := hdr
	for i := 0; i < n; i++ {
		if off >= len(p) {
			return nil, 0, truncated(off+1, len(p))
		}
		if classify(p[off]) != kindString {
			return nil, 0, errors.WithStack(&InvalidStructureError{Reason: "map key is not a String"})
		}
		kv, consumed, err := decodeOne(p[off:], reg)
		if err != nil {
			return nil, 0, err
		}
		off += consumed

		vv, consumed, err := decodeOne(p[off:], reg)
		if err != nil {
			return nil, 0, err
		}
		off += consumed

		out.Set(string(kv.(String)), vv)
	}
	return out, off, nil
}
