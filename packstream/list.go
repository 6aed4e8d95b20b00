package packstream

// List is an ordered PackStream sequence of Values.
type List []Value

func (v List) Size() int {
	n := 1 + fitLen(len(v)).headerExtra()
	for _, e := range v {
		n += e.Size()
	}
	return n
}

func (v List) MarshalPS(buf []byte) ([]byte, error) {
	buf = appendLen(buf, tinyListBase, markerList8, markerList16, markerList32, len(v))
	for _, e := range v {
		var err error
		if buf, err = e.MarshalPS(buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func decodeList(p []byte, reg *Registry) (Value, int, error) {
	n, hdr, err := readLen(p, tinyListBase, markerList8, markerList16, markerList32)
	if err != nil {
		return nil, 0, err
	}

	out := make(List, 0, n)
	off := hdr
	for i := 0; i < n; i++ {
		v, consumed, err := decodeOne(p[off:], reg)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
		off += consumed
	}
	return out, off, nil
}

// decodeOne dispatches a single value at the front of p using the same
// marker classification as UnmarshalWithRegistry, returning bytes consumed.
func decodeOne(p []byte, reg *Registry) (Value, int, error) {
	v, rest, err := UnmarshalWithRegistry(p, reg)
	if err != nil {
		return nil, 0, err
	}
	return v, len(p) - len(rest), nil
}
