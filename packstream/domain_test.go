package packstream_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	ps "github.com/bolt-go/bolt/packstream"
)

func TestEncodeNodeLiteral(t *testing.T) {
	props := ps.NewMap()
	props.Set("k", ps.String("v"))
	n := &ps.Node{
		Identity:   42,
		Labels:     []ps.String{"L"},
		Properties: props,
	}

	enc, err := ps.Marshal(n)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0xB3, 0x4E, 0x2A,
		0x91, 0x81, 0x4C,
		0xA1, 0x81, 0x6B, 0x81, 0x76,
	}, enc)
}

func TestStructureRoundTrips(t *testing.T) {
	props := ps.NewMap()
	props.Set("name", ps.String("rust"))

	node := &ps.Node{Identity: 1, Labels: []ps.String{"Language"}, Properties: props}
	rel := &ps.Relationship{Identity: 2, StartID: 1, EndID: 3, Type: "WRITTEN_IN", Properties: ps.NewMap()}
	unbound := &ps.UnboundRelationship{Identity: 2, Type: "WRITTEN_IN", Properties: ps.NewMap()}
	path := &ps.Path{Nodes: []*ps.Node{node}, Relationships: []*ps.UnboundRelationship{unbound}, Sequence: []ps.Int{1, 1}}

	values := []ps.Value{
		node,
		rel,
		unbound,
		path,
		&ps.Date{DaysSinceEpoch: 18000},
		&ps.Time{NanosSinceMidnight: 1000, TZOffsetSeconds: 3600},
		&ps.LocalTime{NanosSinceMidnight: 500},
		&ps.DateTimeOffset{Seconds: 1000, Nanos: 1, TZOffsetSeconds: -3600},
		&ps.DateTimeZoneId{Seconds: 1000, Nanos: 1, TZName: "Europe/Stockholm"},
		&ps.LocalDateTime{Seconds: 1000, Nanos: 1},
		&ps.Duration{Months: 1, Days: 2, Seconds: 3, Nanos: 4},
		&ps.Point2D{SRID: 7203, X: 1.0, Y: 2.0},
		&ps.Point3D{SRID: 9157, X: 1.0, Y: 2.0, Z: 3.0},
	}

	for _, v := range values {
		enc, err := ps.Marshal(v)
		require.NoError(t, err)

		got, rest, err := ps.Unmarshal(enc)
		require.NoError(t, err)
		require.Empty(t, rest)
		require.True(t, ps.Equal(v, got))
	}
}

func TestInvalidSignatureFails(t *testing.T) {
	_, _, err := ps.Unmarshal([]byte{0xB0, 0xEE})
	require.Error(t, err)
	var se *ps.InvalidSignatureError
	require.ErrorAs(t, err, &se)
}

func TestArityMismatchFails(t *testing.T) {
	// Node expects 3 fields; encode with only 2.
	raw := []byte{0xB2, ps.SigNode, 0x01, 0x02}
	_, _, err := ps.Unmarshal(raw)
	require.Error(t, err)
	var se *ps.InvalidStructureError
	require.ErrorAs(t, err, &se)
}
