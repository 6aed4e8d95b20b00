package packstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fixedArityStruct is a minimal Structure used only to exercise the tiny
// struct field-count boundaries (0 and 15, the §3 cap) without needing a
// registered domain type of that exact arity.
type fixedArityStruct struct {
	sig    byte
	fields []Value
}

func (s fixedArityStruct) Signature() byte { return s.sig }
func (s fixedArityStruct) Fields() []Value { return s.fields }
func (s fixedArityStruct) Size() int       { return structureSize(s) }
func (s fixedArityStruct) MarshalPS(buf []byte) ([]byte, error) {
	return encodeStructure(s, buf)
}

func TestStructureFieldCountBoundaries(t *testing.T) {
	zero := fixedArityStruct{sig: 0x01, fields: nil}
	DefaultRegistry.Register(0x01, StructDef{
		Arity: 0,
		New:   func(f []Value) (Structure, error) { return fixedArityStruct{sig: 0x01, fields: f}, nil },
	})
	enc, err := Marshal(zero)
	require.NoError(t, err)
	require.Equal(t, []byte{0xB0, 0x01}, enc)

	fields := make([]Value, maxTinyStructFields)
	for i := range fields {
		fields[i] = Int(i)
	}
	full := fixedArityStruct{sig: 0x02, fields: fields}
	DefaultRegistry.Register(0x02, StructDef{
		Arity: maxTinyStructFields,
		New:   func(f []Value) (Structure, error) { return fixedArityStruct{sig: 0x02, fields: f}, nil },
	})
	enc, err = Marshal(full)
	require.NoError(t, err)
	require.Equal(t, byte(0xBF), enc[0])

	got, rest, err := Unmarshal(enc)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, Equal(full, got))
}
