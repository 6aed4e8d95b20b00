package packstream_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	ps "github.com/bolt-go/bolt/packstream"
)

func roundTrip(t *testing.T, v ps.Value) ps.Value {
	t.Helper()
	enc, err := ps.Marshal(v)
	require.NoError(t, err)

	got, rest, err := ps.Unmarshal(enc)
	require.NoError(t, err)
	require.Empty(t, rest)
	return got
}

func TestIntegerBoundaries(t *testing.T) {
	cases := []struct {
		name string
		in   int64
		want []byte
	}{
		{"tiny-7", 7, []byte{0x07}},
		{"tiny-neg16", -16, []byte{0xF0}},
		{"neg17", -17, []byte{0xC8, 0xEF}},
		{"127", 127, []byte{0x7F}},
		{"128", 128, []byte{0xC9, 0x00, 0x80}},
		{"neg129", -129, []byte{0xC9, 0xFF, 0x7F}},
		{"200", 200, []byte{0xC9, 0x00, 0xC8}},
		{"32767", 32767, []byte{0xC9, 0x7F, 0xFF}},
		{"32768", 32768, []byte{0xCA, 0x00, 0x00, 0x80, 0x00}},
		{"minint32-1", -2147483649, []byte{0xCB, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F, 0xFF, 0xFF, 0xFF}},
		{"maxint32+1", 2147483648, []byte{0xCB, 0x00, 0x00, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00}},
		{"maxint64", 9223372036854775807, []byte{0xCB, 0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{"minint64", -9223372036854775808, []byte{0xCB, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			enc, err := ps.Marshal(ps.Int(c.in))
			require.NoError(t, err)
			require.Equal(t, c.want, enc)

			got := roundTrip(t, ps.Int(c.in))
			require.Equal(t, ps.Int(c.in), got)
		})
	}
}

func TestStringLengthBoundaries(t *testing.T) {
	lens := []int{0, 1, 15, 16, 255, 256, 65535, 65536}
	for _, n := range lens {
		s := ps.String(make([]byte, n))
		got := roundTrip(t, s)
		require.True(t, ps.Equal(s, got))
	}
}

func TestBytesLengthBoundaries(t *testing.T) {
	lens := []int{0, 1, 15, 16, 255, 256, 65535, 65536}
	for _, n := range lens {
		b := ps.Bytes(make([]byte, n))
		got := roundTrip(t, b)
		require.True(t, ps.Equal(b, got))
	}
}

func TestListLengthBoundaries(t *testing.T) {
	lens := []int{0, 1, 15, 16, 255, 256}
	for _, n := range lens {
		l := make(ps.List, n)
		for i := range l {
			l[i] = ps.Int(i)
		}
		got := roundTrip(t, l)
		require.True(t, ps.Equal(l, got))
	}
}

func TestMapEncodingAndOrderInsensitiveEquality(t *testing.T) {
	m := ps.NewMap()
	m.Set("n", ps.Int(1))

	enc, err := ps.Marshal(m)
	require.NoError(t, err)
	require.Equal(t, []byte{0xA1, 0x81, 0x6E, 0x01}, enc)

	other := ps.NewMap()
	other.Set("n", ps.Int(1))
	require.True(t, m.Equal(other))

	m2 := ps.NewMap()
	m2.Set("a", ps.Int(1))
	m2.Set("b", ps.Int(2))
	m3 := ps.NewMap()
	m3.Set("b", ps.Int(2))
	m3.Set("a", ps.Int(1))
	require.True(t, m2.Equal(m3))
}

func TestNullBooleanFloat(t *testing.T) {
	require.True(t, ps.Equal(ps.Null{}, roundTrip(t, ps.Null{})))
	require.True(t, ps.Equal(ps.Bool(true), roundTrip(t, ps.Bool(true))))
	require.True(t, ps.Equal(ps.Bool(false), roundTrip(t, ps.Bool(false))))
	require.True(t, ps.Equal(ps.Float(3.14159), roundTrip(t, ps.Float(3.14159))))
}

func TestInvalidMarker(t *testing.T) {
	_, _, err := ps.Unmarshal([]byte{0xC7})
	require.Error(t, err)
	var me *ps.InvalidMarkerError
	require.ErrorAs(t, err, &me)
}

func TestTruncatedInput(t *testing.T) {
	_, _, err := ps.Unmarshal([]byte{0xC9, 0x00})
	require.Error(t, err)
	var te *ps.TruncatedError
	require.ErrorAs(t, err, &te)
}

func TestInvalidUTF8(t *testing.T) {
	_, _, err := ps.Unmarshal([]byte{0x81, 0xFF})
	require.Error(t, err)
	var ue *ps.InvalidUTF8Error
	require.ErrorAs(t, err, &ue)
}
