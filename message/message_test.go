package message_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bolt-go/bolt/message"
	ps "github.com/bolt-go/bolt/packstream"
)

func TestRunEncodesWithSignature0x10(t *testing.T) {
	req := &message.Run{Statement: ps.String("RETURN 1"), Params: ps.NewMap()}
	enc, err := ps.Marshal(req)
	require.NoError(t, err)
	require.Equal(t, byte(0xB2), enc[0]) // tiny struct, 2 fields
	require.Equal(t, byte(0x10), enc[1])
}

func TestHelloEncodesWithSignature0x01(t *testing.T) {
	extra := ps.NewMap()
	extra.Set("user_agent", ps.String("bolt-go/1.0"))
	req := &message.Hello{Extra: extra}
	enc, err := ps.Marshal(req)
	require.NoError(t, err)
	require.Equal(t, byte(0xB1), enc[0])
	require.Equal(t, byte(0x01), enc[1])
}

func TestDecodeResponseRoundTripsSuccess(t *testing.T) {
	meta := ps.NewMap()
	meta.Set("fields", ps.List{ps.String("n")})
	original := message.NewSuccess(meta)

	enc, err := ps.Marshal(original)
	require.NoError(t, err)

	decoded, rest, err := message.DecodeResponse(enc)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, message.KindSuccess, decoded.Kind())

	got, ok := decoded.(*message.Success)
	require.True(t, ok)
	require.True(t, got.Metadata.Equal(meta))
}

func TestDecodeResponseRoundTripsRecord(t *testing.T) {
	original := &message.Record{RowFields: ps.List{ps.Int(1), ps.String("x")}}
	enc, err := ps.Marshal(original)
	require.NoError(t, err)

	decoded, _, err := message.DecodeResponse(enc)
	require.NoError(t, err)
	rec, ok := decoded.(*message.Record)
	require.True(t, ok)
	require.Equal(t, ps.List{ps.Int(1), ps.String("x")}, rec.RowFields)
}

func TestDecodeResponseRoundTripsIgnoredAndFailure(t *testing.T) {
	enc, err := ps.Marshal(message.Ignored{})
	require.NoError(t, err)
	decoded, _, err := message.DecodeResponse(enc)
	require.NoError(t, err)
	require.Equal(t, message.KindIgnored, decoded.Kind())

	failMeta := ps.NewMap()
	failMeta.Set("code", ps.String("Neo.ClientError.Statement.SyntaxError"))
	enc, err = ps.Marshal(&message.Failure{Metadata: failMeta})
	require.NoError(t, err)
	decoded, _, err = message.DecodeResponse(enc)
	require.NoError(t, err)
	f, ok := decoded.(*message.Failure)
	require.True(t, ok)
	require.Equal(t, "Neo.ClientError.Statement.SyntaxError", f.Code())
}

func TestDecodeResponseRejectsRequestSignature(t *testing.T) {
	enc, err := ps.Marshal(&message.Run{Statement: ps.String("x"), Params: ps.NewMap()})
	require.NoError(t, err)
	_, _, err = message.DecodeResponse(enc)
	require.Error(t, err)
}

func TestCatalogV1UsesInitRunPullAllAckFailure(t *testing.T) {
	c := message.NewCatalog(message.V1_0)
	require.Equal(t, message.KindInit, c.InitKind())
	require.Equal(t, message.KindRun, c.RunKind())
	require.Equal(t, message.KindPullAll, c.PullKind())
	require.Equal(t, message.KindDiscardAll, c.DiscardKind())
	require.Equal(t, message.KindAckFailure, c.FailureRecoveryKind())
}

func TestCatalogV4UsesHelloRunWithMetadataPullDiscard(t *testing.T) {
	c := message.NewCatalog(message.V4_1)
	require.Equal(t, message.KindHello, c.InitKind())
	require.Equal(t, message.KindRunWithMetadata, c.RunKind())
	require.Equal(t, message.KindPull, c.PullKind())
	require.Equal(t, message.KindDiscard, c.DiscardKind())
	require.Equal(t, message.KindReset, c.FailureRecoveryKind())
}

func TestExpectedResponsesIncludesRecordForStreamingKinds(t *testing.T) {
	c := message.NewCatalog(message.V4_0)
	resp := c.ExpectedResponses(message.KindPull)
	require.Contains(t, resp, message.KindRecord)
	require.Contains(t, resp, message.KindSuccess)
	require.Contains(t, resp, message.KindFailure)

	resp = c.ExpectedResponses(message.KindBegin)
	require.NotContains(t, resp, message.KindRecord)
}
