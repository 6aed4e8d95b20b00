package packstream

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Value is any PackStream-encodable value: the scalars, the two containers,
// and the domain structures of §3. Values are immutable once constructed.
type Value interface {
	// MarshalPS appends this value's minimal-form encoding to buf and
	// returns the result.
	MarshalPS(buf []byte) ([]byte, error)

	// Size returns the exact number of bytes MarshalPS will append, so
	// callers that build nested containers can size buffers up front.
	Size() int
}

// decodeFunc reads one value (of a known kind) from p, returning the value
// and the number of bytes consumed.
type decodeFunc func(p []byte, reg *Registry) (Value, int, error)

// Unmarshal decodes exactly one value from the front of p, using the
// default domain-structure registry, and returns it along with the
// unconsumed remainder.
func Unmarshal(p []byte) (Value, []byte, error) {
	return UnmarshalWithRegistry(p, DefaultRegistry)
}

// UnmarshalWithRegistry is like Unmarshal but resolves a structure's
// signature against reg instead of the package-default domain registry; the
// fields of that structure are still decoded against DefaultRegistry. The
// message package uses this to decode top-level request/response envelopes,
// whose signatures live in a different namespace than Node/Relationship/etc.
func UnmarshalWithRegistry(p []byte, reg *Registry) (Value, []byte, error) {
	if len(p) < 1 {
		return nil, nil, truncated(1, 0)
	}

	k := classify(p[0])
	var fn decodeFunc
	switch k {
	case kindInt:
		fn = decodeInt
	case kindNull:
		fn = decodeNull
	case kindBool:
		fn = decodeBool
	case kindFloat:
		fn = decodeFloat
	case kindBytes:
		fn = decodeBytes
	case kindString:
		fn = decodeString
	case kindList:
		fn = decodeList
	case kindMap:
		fn = decodeMap
	case kindStruct:
		fn = decodeStructure
	default:
		return nil, nil, errors.WithStack(&InvalidMarkerError{Marker: p[0]})
	}

	v, n, err := fn(p, reg)
	if err != nil {
		return nil, nil, err
	}
	return v, p[n:], nil
}

// Marshal is a convenience wrapper around Value.MarshalPS for a nil start
// buffer.
func Marshal(v Value) ([]byte, error) {
	return v.MarshalPS(nil)
}

// ---- Null ----

// Null is the PackStream null value.
type Null struct{}

func (Null) Size() int { return 1 }

func (Null) MarshalPS(buf []byte) ([]byte, error) {
	return append(buf, byte(markerNull)), nil
}

func decodeNull(p []byte, _ *Registry) (Value, int, error) {
	if len(p) < 1 {
		return nil, 0, truncated(1, len(p))
	}
	if p[0] != byte(markerNull) {
		return nil, 0, errors.WithStack(&InvalidMarkerError{Marker: p[0]})
	}
	return Null{}, 1, nil
}

// ---- Boolean ----

// Bool is the PackStream boolean value.
type Bool bool

func (Bool) Size() int { return 1 }

func (v Bool) MarshalPS(buf []byte) ([]byte, error) {
	if v {
		return append(buf, byte(markerTrue)), nil
	}
	return append(buf, byte(markerFalse)), nil
}

func decodeBool(p []byte, _ *Registry) (Value, int, error) {
	if len(p) < 1 {
		return nil, 0, truncated(1, len(p))
	}
	switch marker(p[0]) {
	case markerTrue:
		return Bool(true), 1, nil
	case markerFalse:
		return Bool(false), 1, nil
	default:
		return nil, 0, errors.WithStack(&InvalidMarkerError{Marker: p[0]})
	}
}

// ---- Integer ----

// Int is a signed 64-bit PackStream integer, always encoded in the smallest
// of the five size classes that contains it.
type Int int64

func (v Int) Size() int {
	return len(fitInt(int64(v)))
}

func (v Int) MarshalPS(buf []byte) ([]byte, error) {
	return append(buf, fitInt(int64(v))...), nil
}

// fitInt returns the minimal-form encoding of n: tiny form if -16 <= n <= 127,
// else the smallest of i8/i16/i32/i64 that contains it.
func fitInt(n int64) []byte {
	switch {
	case n >= -16 && n <= 127:
		return []byte{byte(int8(n))}
	case n >= math.MinInt8 && n <= math.MaxInt8:
		return []byte{byte(markerInt8), byte(int8(n))}
	case n >= math.MinInt16 && n <= math.MaxInt16:
		b := make([]byte, 3)
		b[0] = byte(markerInt16)
		binary.BigEndian.PutUint16(b[1:], uint16(int16(n)))
		return b
	case n >= math.MinInt32 && n <= math.MaxInt32:
		b := make([]byte, 5)
		b[0] = byte(markerInt32)
		binary.BigEndian.PutUint32(b[1:], uint32(int32(n)))
		return b
	default:
		b := make([]byte, 9)
		b[0] = byte(markerInt64)
		binary.BigEndian.PutUint64(b[1:], uint64(n))
		return b
	}
}

func decodeInt(p []byte, _ *Registry) (Value, int, error) {
	if len(p) < 1 {
		return nil, 0, truncated(1, len(p))
	}
	b0 := p[0]
	if b0 <= 0x7F || b0 >= 0xF0 {
		return Int(int8(b0)), 1, nil
	}
	switch marker(b0) {
	case markerInt8:
		if len(p) < 2 {
			return nil, 0, truncated(2, len(p))
		}
		return Int(int8(p[1])), 2, nil
	case markerInt16:
		if len(p) < 3 {
			return nil, 0, truncated(3, len(p))
		}
		return Int(int16(binary.BigEndian.Uint16(p[1:3]))), 3, nil
	case markerInt32:
		if len(p) < 5 {
			return nil, 0, truncated(5, len(p))
		}
		return Int(int32(binary.BigEndian.Uint32(p[1:5]))), 5, nil
	case markerInt64:
		if len(p) < 9 {
			return nil, 0, truncated(9, len(p))
		}
		return Int(int64(binary.BigEndian.Uint64(p[1:9]))), 9, nil
	default:
		return nil, 0, errors.WithStack(&InvalidMarkerError{Marker: b0})
	}
}

// Int32 narrows an Int to int32, failing with IntegerOverflowError if it
// does not fit.
func (v Int) Int32() (int32, error) {
	if int64(v) < math.MinInt32 || int64(v) > math.MaxInt32 {
		return 0, errors.WithStack(&IntegerOverflowError{Value: int64(v), Bits: 32})
	}
	return int32(v), nil
}

// ---- Float ----

// Float is an IEEE 754 binary64 PackStream value.
type Float float64

func (Float) Size() int { return 9 }

func (v Float) MarshalPS(buf []byte) ([]byte, error) {
	b := make([]byte, 9)
	b[0] = byte(markerFloat)
	binary.BigEndian.PutUint64(b[1:], math.Float64bits(float64(v)))
	return append(buf, b...), nil
}

func decodeFloat(p []byte, _ *Registry) (Value, int, error) {
	if len(p) < 9 {
		return nil, 0, truncated(9, len(p))
	}
	if p[0] != byte(markerFloat) {
		return nil, 0, errors.WithStack(&InvalidMarkerError{Marker: p[0]})
	}
	bits := binary.BigEndian.Uint64(p[1:9])
	return Float(math.Float64frombits(bits)), 9, nil
}

// ---- length-prefixed helper ----

// lenForm picks the minimal length-prefix form for n: tiny (returns
// width==0) if n <= 15, else the smallest of u8/u16/u32.
type lenForm struct {
	width int // 0 (tiny), 1, 2, or 4
}

func fitLen(n int) lenForm {
	switch {
	case n <= 15:
		return lenForm{0}
	case n <= math.MaxUint8:
		return lenForm{1}
	case n <= math.MaxUint16:
		return lenForm{2}
	default:
		return lenForm{4}
	}
}

func appendLen(buf []byte, tinyBase byte, m8, m16, m32 marker, n int) []byte {
	f := fitLen(n)
	switch f.width {
	case 0:
		return append(buf, tinyBase|byte(n))
	case 1:
		return append(buf, byte(m8), byte(n))
	case 2:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(n))
		return append(append(buf, byte(m16)), b...)
	default:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(n))
		return append(append(buf, byte(m32)), b...)
	}
}

// readLen reads a length encoded at p[0] with the given tiny base and wide
// markers, returning the length and the number of header bytes consumed.
func readLen(p []byte, tinyBase byte, m8, m16, m32 marker) (n int, hdr int, err error) {
	if len(p) < 1 {
		return 0, 0, truncated(1, len(p))
	}
	b0 := p[0]
	switch {
	case b0 >= tinyBase && b0 <= tinyBase+0x0F:
		return int(b0 - tinyBase), 1, nil
	case b0 == byte(m8):
		if len(p) < 2 {
			return 0, 0, truncated(2, len(p))
		}
		return int(p[1]), 2, nil
	case b0 == byte(m16):
		if len(p) < 3 {
			return 0, 0, truncated(3, len(p))
		}
		return int(binary.BigEndian.Uint16(p[1:3])), 3, nil
	case b0 == byte(m32):
		if len(p) < 5 {
			return 0, 0, truncated(5, len(p))
		}
		return int(binary.BigEndian.Uint32(p[1:5])), 5, nil
	default:
		return 0, 0, errors.WithStack(&InvalidMarkerError{Marker: b0})
	}
}

// ---- Bytes ----

// Bytes is a raw byte-string PackStream value. Unlike String/List/Map,
// Bytes has no tiny form: its minimal header is always at least 0xCC+u8.
type Bytes []byte

func bytesHeaderLen(n int) int {
	switch {
	case n <= math.MaxUint8:
		return 2
	case n <= math.MaxUint16:
		return 3
	default:
		return 5
	}
}

func (v Bytes) Size() int {
	return bytesHeaderLen(len(v)) + len(v)
}

func (f lenForm) headerExtra() int {
	switch f.width {
	case 0:
		return 0
	case 1:
		return 1
	case 2:
		return 2
	default:
		return 4
	}
}

func (v Bytes) MarshalPS(buf []byte) ([]byte, error) {
	n := len(v)
	switch {
	case n <= math.MaxUint8:
		buf = append(buf, byte(markerBytes8), byte(n))
	case n <= math.MaxUint16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(n))
		buf = append(append(buf, byte(markerBytes16)), b...)
	default:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(n))
		buf = append(append(buf, byte(markerBytes32)), b...)
	}
	return append(buf, v...), nil
}

func decodeBytes(p []byte, _ *Registry) (Value, int, error) {
	if len(p) < 1 {
		return nil, 0, truncated(1, len(p))
	}
	var hdr, n int
	var err error
	switch marker(p[0]) {
	case markerBytes8:
		if len(p) < 2 {
			return nil, 0, truncated(2, len(p))
		}
		n, hdr = int(p[1]), 2
	case markerBytes16:
		if len(p) < 3 {
			return nil, 0, truncated(3, len(p))
		}
		n, hdr = int(binary.BigEndian.Uint16(p[1:3])), 3
	case markerBytes32:
		if len(p) < 5 {
			return nil, 0, truncated(5, len(p))
		}
		n, hdr = int(binary.BigEndian.Uint32(p[1:5])), 5
	default:
		return nil, 0, errors.WithStack(&InvalidMarkerError{Marker: p[0]})
	}
	if err != nil {
		return nil, 0, err
	}
	if len(p) < hdr+n {
		return nil, 0, truncated(hdr+n, len(p))
	}
	out := make([]byte, n)
	copy(out, p[hdr:hdr+n])
	return Bytes(out), hdr + n, nil
}

// ---- String ----

// String is a UTF-8 PackStream string value.
type String string

func (v String) Size() int {
	n := len(v)
	return 1 + fitLen(n).headerExtra() + n
}

func (v String) MarshalPS(buf []byte) ([]byte, error) {
	buf = appendLen(buf, tinyStringBase, markerStr8, markerStr16, markerStr32, len(v))
	return append(buf, v...), nil
}

func decodeString(p []byte, _ *Registry) (Value, int, error) {
	n, hdr, err := readLen(p, tinyStringBase, markerStr8, markerStr16, markerStr32)
	if err != nil {
		return nil, 0, err
	}
	if len(p) < hdr+n {
		return nil, 0, truncated(hdr+n, len(p))
	}
	raw := p[hdr : hdr+n]
	if !utf8.Valid(raw) {
		return nil, 0, errors.WithStack(&InvalidUTF8Error{})
	}
	out := make([]byte, n)
	copy(out, raw)
	return String(out), hdr + n, nil
}
