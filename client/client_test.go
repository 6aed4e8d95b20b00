package client_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bolt-go/bolt/client"
	"github.com/bolt-go/bolt/frame"
	"github.com/bolt-go/bolt/message"
	ps "github.com/bolt-go/bolt/packstream"
	"github.com/bolt-go/bolt/state"
)

// fakeConn is a bytes.Buffer-backed io.ReadWriteCloser. Preload the entire
// expected server response script before exercising the client; writes
// from the client under test append to the tail and are never read back,
// so they don't perturb the preloaded read sequence (mirrors
// handshake_test.go's fakeConn).
type fakeConn struct {
	bytes.Buffer
}

func (c *fakeConn) Close() error { return nil }

func writeFramedMessage(t *testing.T, buf *bytes.Buffer, msg ps.Value) {
	t.Helper()
	w := frame.NewWriter(buf)
	enc, err := ps.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, w.WriteMessage(enc))
}

func TestDialNegotiatesAndInitsV3(t *testing.T) {
	var conn fakeConn
	conn.Write([]byte{0x00, 0x00, 0x00, 0x03}) // handshake: server picks v3
	writeFramedMessage(t, &conn.Buffer, message.NewSuccess(ps.NewMap()))

	meta := ps.NewMap()
	meta.Set("user_agent", ps.String("bolt-go/test"))
	c, err := client.Dial(&conn, client.Config{
		Address:           "localhost:7687",
		PreferredVersions: [4]uint32{3, 0, 0, 0},
		Metadata:          meta,
	})
	require.NoError(t, err)
	require.Equal(t, state.Ready, c.State())
	require.Equal(t, message.V3_0, c.Version())
}

func TestDialV3InitFailure(t *testing.T) {
	var conn fakeConn
	conn.Write([]byte{0x00, 0x00, 0x00, 0x03})
	failMeta := ps.NewMap()
	failMeta.Set("code", ps.String("Neo.ClientError.Security.Unauthorized"))
	writeFramedMessage(t, &conn.Buffer, &message.Failure{Metadata: failMeta})

	_, err := client.Dial(&conn, client.Config{
		Address:           "localhost:7687",
		PreferredVersions: [4]uint32{3, 0, 0, 0},
		Metadata:          ps.NewMap(),
	})
	require.Error(t, err)
	var initErr *client.ClientInitFailedError
	require.ErrorAs(t, err, &initErr)
}

func TestDialRejectsEmptyAddress(t *testing.T) {
	var conn fakeConn
	_, err := client.Dial(&conn, client.Config{})
	require.Error(t, err)
	var addrErr *client.InvalidAddressError
	require.ErrorAs(t, err, &addrErr)
}

func TestRunPullAllCycleV1(t *testing.T) {
	var conn fakeConn
	conn.Write([]byte{0x00, 0x00, 0x00, 0x01}) // handshake: server picks v1
	writeFramedMessage(t, &conn.Buffer, message.NewSuccess(ps.NewMap()))        // Init
	writeFramedMessage(t, &conn.Buffer, message.NewSuccess(ps.NewMap()))        // Run
	writeFramedMessage(t, &conn.Buffer, &message.Record{RowFields: ps.List{ps.Int(1)}}) // record
	writeFramedMessage(t, &conn.Buffer, message.NewSuccess(ps.NewMap()))        // PullAll terminal

	meta := ps.NewMap()
	meta.Set("user_agent", ps.String("bolt-go/test"))
	c, err := client.Dial(&conn, client.Config{
		Address:           "localhost:7687",
		PreferredVersions: [4]uint32{1, 0, 0, 0},
		Metadata:          meta,
	})
	require.NoError(t, err)

	resp, err := c.Run("RETURN 1", ps.NewMap(), nil)
	require.NoError(t, err)
	require.Equal(t, message.KindSuccess, resp.Kind())
	require.Equal(t, state.Streaming, c.State())

	records, terminal, err := c.Pull(-1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, message.KindSuccess, terminal.Kind())
	require.Equal(t, state.Ready, c.State())
}

func TestFailureThenResetRecoversV3(t *testing.T) {
	var conn fakeConn
	conn.Write([]byte{0x00, 0x00, 0x00, 0x03})
	writeFramedMessage(t, &conn.Buffer, message.NewSuccess(ps.NewMap())) // Hello
	writeFramedMessage(t, &conn.Buffer, &message.Failure{Metadata: ps.NewMap()}) // Run fails
	writeFramedMessage(t, &conn.Buffer, message.NewSuccess(ps.NewMap())) // Reset

	c, err := client.Dial(&conn, client.Config{
		Address:           "localhost:7687",
		PreferredVersions: [4]uint32{3, 0, 0, 0},
		Metadata:          ps.NewMap(),
	})
	require.NoError(t, err)

	_, err = c.Run("INVALID", ps.NewMap(), nil)
	require.NoError(t, err)
	require.Equal(t, state.Failed, c.State())

	_, err = c.Reset()
	require.NoError(t, err)
	require.Equal(t, state.Ready, c.State())
}

func TestRunPipelinedAppliesProjectedStateInRequestOrder(t *testing.T) {
	var conn fakeConn
	conn.Write([]byte{0x00, 0x00, 0x00, 0x01}) // handshake: server picks v1
	writeFramedMessage(t, &conn.Buffer, message.NewSuccess(ps.NewMap())) // Init
	writeFramedMessage(t, &conn.Buffer, message.NewSuccess(ps.NewMap())) // Run 1
	writeFramedMessage(t, &conn.Buffer, message.NewSuccess(ps.NewMap())) // PullAll 1
	writeFramedMessage(t, &conn.Buffer, message.NewSuccess(ps.NewMap())) // Run 2
	writeFramedMessage(t, &conn.Buffer, message.NewSuccess(ps.NewMap())) // PullAll 2

	meta := ps.NewMap()
	meta.Set("user_agent", ps.String("bolt-go/test"))
	c, err := client.Dial(&conn, client.Config{
		Address:           "localhost:7687",
		PreferredVersions: [4]uint32{1, 0, 0, 0},
		Metadata:          meta,
	})
	require.NoError(t, err)
	require.Equal(t, state.Ready, c.State())

	// The machine never leaves Ready during the write phase (each request's
	// response is read only afterward), so gating writes against the
	// un-advanced current state would reject the first PullAll.
	responses, err := c.RunPipelined([]message.Message{
		&message.Run{Statement: ps.String("RETURN 1")},
		message.PullAll{},
		&message.Run{Statement: ps.String("RETURN 2")},
		message.PullAll{},
	})
	require.NoError(t, err)
	require.Len(t, responses, 4)
	for _, resp := range responses {
		require.Equal(t, message.KindSuccess, resp.Kind())
	}
	require.Equal(t, state.Ready, c.State())
}

func TestInvalidStateRejectsRequestWithoutTouchingStream(t *testing.T) {
	var conn fakeConn
	conn.Write([]byte{0x00, 0x00, 0x00, 0x03})
	writeFramedMessage(t, &conn.Buffer, message.NewSuccess(ps.NewMap())) // Hello

	c, err := client.Dial(&conn, client.Config{
		Address:           "localhost:7687",
		PreferredVersions: [4]uint32{3, 0, 0, 0},
		Metadata:          ps.NewMap(),
	})
	require.NoError(t, err)
	require.Equal(t, state.Ready, c.State())

	// Commit is only legal from TxReady, not Ready.
	_, err = c.Commit()
	require.Error(t, err)
	var invalidState *client.InvalidStateError
	require.ErrorAs(t, err, &invalidState)
	require.Equal(t, state.Ready, c.State()) // stream untouched, state unchanged
}
