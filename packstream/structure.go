package packstream

import "github.com/pkg/errors"

// Structure is a PackStream composite value: a one-byte signature plus a
// fixed-arity field list. Nodes, Relationships, Paths, temporal and spatial
// values (§3), and every Bolt request/response message (owned by the
// message package) are Structures.
//
// No cyclic references are possible: structures carry identities and index
// sequences, never pointers to one another (§9 "No cyclic references").
type Structure interface {
	Value

	// Signature is this structure's one-byte signature.
	Signature() byte

	// Fields returns the field values in declaration order.
	Fields() []Value
}

// StructDef describes one registered structure: its fixed arity and how to
// build a concrete Structure from decoded fields.
type StructDef struct {
	Arity int
	New   func(fields []Value) (Structure, error)
}

// Registry maps structure signatures to their definitions. packstream
// values (Node, Relationship, ...) live in DefaultRegistry; the message
// package keeps a separate Registry for request/response envelopes, since
// the two signature spaces are only ever decoded in different contexts
// (top-level message vs. nested field value) and never collide in practice.
type Registry struct {
	defs map[byte]StructDef
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: map[byte]StructDef{}}
}

// Register adds or replaces the definition for signature sig.
func (r *Registry) Register(sig byte, def StructDef) {
	r.defs[sig] = def
}

// Lookup returns the definition for sig, if registered.
func (r *Registry) Lookup(sig byte) (StructDef, bool) {
	d, ok := r.defs[sig]
	return d, ok
}

// DefaultRegistry holds the thirteen domain structures of §3.
var DefaultRegistry = NewRegistry()

// There is no generic fallback Structure: a signature that is not
// registered fails decode with InvalidSignatureError (§4.1).

// EncodeStructure appends s's structure header, signature, and fields to
// buf. Exported so packages outside packstream (notably message, whose
// request/response envelopes are Structures in their own right) can
// implement MarshalPS without reimplementing the header/arity logic.
func EncodeStructure(s Structure, buf []byte) ([]byte, error) {
	return encodeStructure(s, buf)
}

// StructureSize returns the exact byte length EncodeStructure would
// produce for s.
func StructureSize(s Structure) int {
	return structureSize(s)
}

func encodeStructure(s Structure, buf []byte) ([]byte, error) {
	fields := s.Fields()
	buf = appendStructHeader(buf, len(fields))
	buf = append(buf, s.Signature())
	for _, f := range fields {
		var err error
		if buf, err = f.MarshalPS(buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func structureSize(s Structure) int {
	n := structHeaderSize(len(s.Fields())) + 1
	for _, f := range s.Fields() {
		n += f.Size()
	}
	return n
}

func appendStructHeader(buf []byte, count int) []byte {
	if count <= maxTinyStructFields {
		return append(buf, tinyStructureBase|byte(count))
	}
	if count <= 0xFF {
		return append(buf, byte(markerStruct8), byte(count))
	}
	b := []byte{byte(markerStruct9), byte(count >> 8), byte(count)}
	return append(buf, b...)
}

func structHeaderSize(count int) int {
	switch {
	case count <= maxTinyStructFields:
		return 1
	case count <= 0xFF:
		return 2
	default:
		return 3
	}
}

// decodeStructure reads a structure header, resolves its signature against
// reg, and decodes exactly Arity fields.
func decodeStructure(p []byte, reg *Registry) (Value, int, error) {
	if len(p) < 1 {
		return nil, 0, truncated(1, len(p))
	}

	var count, hdr int
	b0 := p[0]
	switch {
	case b0 >= tinyStructureBase && b0 <= tinyStructureBase+0x0F:
		count, hdr = int(b0-tinyStructureBase), 1
	case b0 == byte(markerStruct8):
		if len(p) < 2 {
			return nil, 0, truncated(2, len(p))
		}
		count, hdr = int(p[1]), 2
	case b0 == byte(markerStruct9):
		if len(p) < 3 {
			return nil, 0, truncated(3, len(p))
		}
		count, hdr = int(p[1])<<8|int(p[2]), 3
	default:
		return nil, 0, errors.WithStack(&InvalidMarkerError{Marker: b0})
	}

	if len(p) < hdr+1 {
		return nil, 0, truncated(hdr+1, len(p))
	}
	sig := p[hdr]
	off := hdr + 1

	def, ok := reg.Lookup(sig)
	if !ok {
		return nil, 0, errors.WithStack(&InvalidSignatureError{Signature: sig})
	}
	if def.Arity != count {
		return nil, 0, errors.WithStack(&InvalidStructureError{
			Reason: errors.Errorf("signature 0x%02x wants %d fields, got %d", sig, def.Arity, count).Error(),
		})
	}

	// Field values are nested values, so they always resolve against the
	// domain registry, whichever registry resolved the envelope itself.
	fields := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		v, consumed, err := decodeOne(p[off:], DefaultRegistry)
		if err != nil {
			return nil, 0, err
		}
		fields = append(fields, v)
		off += consumed
	}

	s, err := def.New(fields)
	if err != nil {
		return nil, 0, err
	}
	return s, off, nil
}
