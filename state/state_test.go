package state_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bolt-go/bolt/message"
	"github.com/bolt-go/bolt/state"
)

func TestConnectedInitSuccessMovesToReady(t *testing.T) {
	m := state.New(message.V3_0)
	m.Opened()
	require.Equal(t, state.Connected, m.State())

	got := m.Advance(message.KindHello, message.KindSuccess, false)
	require.Equal(t, state.Ready, got)
}

func TestConnectedInitFailureIsDefunct(t *testing.T) {
	m := state.New(message.V3_0)
	m.Opened()
	got := m.Advance(message.KindHello, message.KindFailure, false)
	require.Equal(t, state.Defunct, got)
}

func TestRunPullAllCycle(t *testing.T) {
	m := state.New(message.V1_0)
	m.Opened()
	m.Advance(message.KindInit, message.KindSuccess, false)
	require.Equal(t, state.Ready, m.State())

	m.Advance(message.KindRun, message.KindSuccess, false)
	require.Equal(t, state.Streaming, m.State())

	got := m.Advance(message.KindPullAll, message.KindSuccess, false)
	require.Equal(t, state.Ready, got)
}

func TestExplicitTransactionCycle(t *testing.T) {
	m := state.New(message.V3_0)
	m.Opened()
	m.Advance(message.KindHello, message.KindSuccess, false)
	m.Advance(message.KindBegin, message.KindSuccess, false)
	require.Equal(t, state.TxReady, m.State())

	m.Advance(message.KindRunWithMetadata, message.KindSuccess, false)
	require.Equal(t, state.TxStreaming, m.State())

	m.Advance(message.KindPull, message.KindSuccess, false)
	require.Equal(t, state.TxReady, m.State())

	got := m.Advance(message.KindCommit, message.KindSuccess, false)
	require.Equal(t, state.Ready, got)
}

func TestPullWithHasMoreStaysStreaming(t *testing.T) {
	m := state.New(message.V4_0)
	m.Opened()
	m.Advance(message.KindHello, message.KindSuccess, false)
	m.Advance(message.KindRunWithMetadata, message.KindSuccess, false)
	require.Equal(t, state.Streaming, m.State())

	got := m.Advance(message.KindPull, message.KindSuccess, true)
	require.Equal(t, state.Streaming, got)
}

func TestFailureThenResetRecoversInV3(t *testing.T) {
	m := state.New(message.V3_0)
	m.Opened()
	m.Advance(message.KindHello, message.KindSuccess, false)
	m.Advance(message.KindRunWithMetadata, message.KindSuccess, false)
	m.Advance(message.KindPull, message.KindFailure, false)
	require.Equal(t, state.Failed, m.State())

	// Normal requests are still legal to emit while Failed; the server
	// replies Ignored and the state stays put (see TestIgnoredLeavesStateUnchanged).
	// AckFailure is V1/V2-only, so it stays illegal here.
	require.True(t, m.CanSend(message.KindRunWithMetadata))
	require.False(t, m.CanSend(message.KindAckFailure))
	require.True(t, m.CanSend(message.KindReset))

	got := m.Advance(message.KindReset, message.KindSuccess, false)
	require.Equal(t, state.Ready, got)
}

func TestFailureThenAckFailureRecoversInV1(t *testing.T) {
	m := state.New(message.V1_0)
	m.Opened()
	m.Advance(message.KindInit, message.KindSuccess, false)
	m.Advance(message.KindRun, message.KindFailure, false)
	require.Equal(t, state.Failed, m.State())
	require.True(t, m.CanSend(message.KindAckFailure))
	require.True(t, m.CanSend(message.KindRun))

	got := m.Advance(message.KindAckFailure, message.KindSuccess, false)
	require.Equal(t, state.Ready, got)
}

func TestIgnoredLeavesStateUnchanged(t *testing.T) {
	m := state.New(message.V3_0)
	m.Opened()
	m.Advance(message.KindHello, message.KindSuccess, false)
	m.Advance(message.KindRunWithMetadata, message.KindSuccess, false)
	m.Advance(message.KindPull, message.KindFailure, false)
	require.Equal(t, state.Failed, m.State())

	got := m.Advance(message.KindRunWithMetadata, message.KindIgnored, false)
	require.Equal(t, state.Failed, got)
}

func TestRunWhileFailedIsLegalAndYieldsIgnored(t *testing.T) {
	m := state.New(message.V3_0)
	m.Opened()
	m.Advance(message.KindHello, message.KindSuccess, false)
	m.Advance(message.KindRunWithMetadata, message.KindSuccess, false)
	m.Advance(message.KindPull, message.KindFailure, false)
	require.Equal(t, state.Failed, m.State())

	require.True(t, m.CanSend(message.KindRunWithMetadata))
	got := m.Advance(message.KindRunWithMetadata, message.KindIgnored, false)
	require.Equal(t, state.Failed, got)
}

func TestFailForcesDefunctRegardlessOfState(t *testing.T) {
	m := state.New(message.V3_0)
	m.Opened()
	m.Advance(message.KindHello, message.KindSuccess, false)
	m.Fail()
	require.Equal(t, state.Defunct, m.State())
	require.False(t, m.CanSend(message.KindReset))
}
