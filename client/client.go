// Package client implements the Bolt client session driver: the
// request/response loop, pipelining, and failure/recovery semantics
// layered on top of the handshake, frame, message, and state packages
// (§4.5).
package client

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bolt-go/bolt/frame"
	"github.com/bolt-go/bolt/handshake"
	"github.com/bolt-go/bolt/internal/logger"
	"github.com/bolt-go/bolt/message"
	"github.com/bolt-go/bolt/metrics"
	ps "github.com/bolt-go/bolt/packstream"
	"github.com/bolt-go/bolt/state"
)

// Config carries the recognized connection options of §6.
type Config struct {
	// Address is the already-resolved host:port; required.
	Address string
	// Domain, if set, is the server hostname used for TLS SNI/validation;
	// callers that want TLS wrap the conn themselves and still set Domain
	// so it is recorded in logs.
	Domain string
	// PreferredVersions is offered to the server in preference order,
	// 0 = padding (§4.4).
	PreferredVersions [4]uint32
	// Metadata is forwarded to the server during session init. For V1/V2
	// it must contain a String "user_agent" key, which is extracted and
	// removed before the remainder is sent as Init's auth map (§9
	// "Metadata extraction"). For V3+ it is forwarded whole as Hello's
	// extra map.
	Metadata *ps.Map
}

// Client drives one Bolt session over one byte stream. It is a
// single-threaded cooperative actor (§5): callers must serialize
// requests; the Pool supplies this via exclusive checkout.
type Client struct {
	id      string
	cid     int
	conn    io.ReadWriteCloser
	fw      *frame.Writer
	fr      *frame.Reader
	version message.Version
	machine *state.Machine
	catalog *message.Catalog
	rate    *RequestRate

	mu         sync.Mutex
	nbRequests uint64
}

var nextCid int32

// Cid implements logger.Context.
func (c *Client) Cid() int {
	return c.cid
}

// Dial performs the full connection-creation sequence of §4.6: open
// stream (already done by the caller, who hands in conn), negotiate the
// version, then send the version-appropriate init message.
func Dial(conn io.ReadWriteCloser, cfg Config) (*Client, error) {
	if cfg.Address == "" {
		return nil, errors.WithStack(&InvalidAddressError{Address: cfg.Address})
	}

	id := uuid.New().String()

	chosen, err := handshake.Negotiate(conn, cfg.PreferredVersions)
	if err != nil {
		metrics.ConnectionsDefunct.WithLabelValues("handshake").Inc()
		return nil, err
	}

	version := message.Version(chosen)
	switch version {
	case message.V1_0, message.V2_0, message.V3_0, message.V4_0, message.V4_1:
	default:
		metrics.ConnectionsDefunct.WithLabelValues("handshake").Inc()
		return nil, errors.WithStack(&InvalidClientVersionError{Version: version})
	}

	c := &Client{
		id:      id,
		cid:     int(atomic.AddInt32(&nextCid, 1)),
		conn:    conn,
		fw:      frame.NewWriter(conn),
		fr:      frame.NewReader(conn),
		version: version,
		machine: state.New(version),
		catalog: message.NewCatalog(version),
		rate:    newRequestRate(),
	}
	c.machine.Opened()

	logger.Info(c, "connected", zap.String("addr", cfg.Address), zap.String("version", version.String()))

	if err := c.init(cfg); err != nil {
		return nil, err
	}

	metrics.ConnectionsOpened.Inc()
	return c, nil
}

func (c *Client) init(cfg Config) error {
	var req message.Message
	if c.catalog.InitKind() == message.KindHello {
		req = &message.Hello{Extra: cfg.Metadata}
	} else {
		meta := cfg.Metadata
		if meta == nil {
			return errors.WithStack(&InvalidMetadataError{Key: "user_agent", Reason: "metadata is nil"})
		}
		uaVal, ok := meta.Get("user_agent")
		if !ok {
			return errors.WithStack(&InvalidMetadataError{Key: "user_agent", Reason: "missing"})
		}
		ua, ok := uaVal.(ps.String)
		if !ok {
			return errors.WithStack(&InvalidMetadataError{Key: "user_agent", Reason: "not a String"})
		}
		auth := ps.NewMap()
		for _, e := range meta.Entries() {
			if e.Key == "user_agent" {
				continue
			}
			auth.Set(e.Key, e.Value)
		}
		req = &message.Init{UserAgent: ua, Auth: auth}
	}

	resp, err := c.roundTrip(req)
	if err != nil {
		return err
	}
	if resp.Kind() != message.KindSuccess {
		c.machine.Fail()
		metrics.ConnectionsDefunct.WithLabelValues("init_failed").Inc()
		return errors.WithStack(&ClientInitFailedError{Response: resp})
	}
	return nil
}

// State returns the driver's current view of server state.
func (c *Client) State() state.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// Version returns the negotiated protocol version.
func (c *Client) Version() message.Version {
	return c.version
}

// ID returns the connection's unique id, assigned at Dial, used by the
// pool as an idle-cache key.
func (c *Client) ID() string {
	return c.id
}

// HasBroken reports whether the connection is Defunct (§4.6).
func (c *Client) HasBroken() bool {
	return c.State() == state.Defunct
}

// Close sends Goodbye (V3+ only; a no-op request otherwise) and closes the
// underlying stream.
func (c *Client) Close() error {
	if c.version.AtLeastV3() && c.State() != state.Defunct {
		_, _ = c.roundTrip(message.Goodbye{})
	}
	c.machine.Fail()
	c.rate.Close()
	return c.conn.Close()
}

// Reset discards any outstanding result stream and returns to Ready. Per
// open question (c): illegal while Defunct, fails immediately without
// touching the stream.
func (c *Client) Reset() (*message.Success, error) {
	if c.State() == state.Defunct {
		return nil, errors.New("client: reset on defunct connection")
	}
	resp, err := c.roundTrip(message.Reset{})
	if err != nil {
		return nil, err
	}
	s, ok := resp.(*message.Success)
	if !ok {
		return nil, errors.WithStack(&InvalidResponseError{
			State: c.State(), Request: message.KindReset, Response: resp.Kind(),
		})
	}
	return s, nil
}

// AckFailure acknowledges a Failure in V1/V2 (§4.5); illegal in V3+, where
// Reset is the only recovery path.
func (c *Client) AckFailure() (*message.Success, error) {
	resp, err := c.roundTrip(message.AckFailure{})
	if err != nil {
		return nil, err
	}
	s, ok := resp.(*message.Success)
	if !ok {
		return nil, errors.WithStack(&InvalidResponseError{
			State: c.State(), Request: message.KindAckFailure, Response: resp.Kind(),
		})
	}
	return s, nil
}

// Recover issues the version-appropriate failure-recovery request: Reset
// for V3+, AckFailure otherwise (§4.5).
func (c *Client) Recover() (*message.Success, error) {
	if c.catalog.FailureRecoveryKind() == message.KindReset {
		return c.Reset()
	}
	return c.AckFailure()
}

// Run sends the version-appropriate Run/RunWithMetadata request and
// returns the terminal response. It does not collect records; follow with
// Pull or PullAll.
func (c *Client) Run(statement string, params *ps.Map, txMeta *ps.Map) (message.Message, error) {
	var req message.Message
	if c.catalog.RunKind() == message.KindRunWithMetadata {
		req = &message.RunWithMetadata{Statement: ps.String(statement), Params: params, Metadata: txMeta}
	} else {
		req = &message.Run{Statement: ps.String(statement), Params: params}
	}
	return c.roundTrip(req)
}

// Begin opens an explicit transaction (V3+ only).
func (c *Client) Begin(extra *ps.Map) (message.Message, error) {
	return c.roundTrip(&message.Begin{Extra: extra})
}

// Commit commits the current explicit transaction (V3+ only).
func (c *Client) Commit() (message.Message, error) {
	return c.roundTrip(message.Commit{})
}

// Rollback rolls back the current explicit transaction (V3+ only).
func (c *Client) Rollback() (message.Message, error) {
	return c.roundTrip(message.Rollback{})
}

// Pull streams up to n records (-1 = all), following the version-dispatched
// shape: PullAll (no args) pre-V4, or a parameterized Pull after. It
// collects Records until the terminal Success/Failure/Ignored arrives.
func (c *Client) Pull(n int64) ([]*message.Record, message.Message, error) {
	var req message.Message
	if c.catalog.PullKind() == message.KindPull {
		meta := ps.NewMap()
		meta.Set("n", ps.Int(n))
		req = &message.Pull{Meta: meta}
	} else {
		req = message.PullAll{}
	}
	return c.streamingRoundTrip(req)
}

// Discard discards up to n records (-1 = all), mirroring Pull's
// version dispatch.
func (c *Client) Discard(n int64) ([]*message.Record, message.Message, error) {
	var req message.Message
	if c.catalog.DiscardKind() == message.KindDiscard {
		meta := ps.NewMap()
		meta.Set("n", ps.Int(n))
		req = &message.Discard{Meta: meta}
	} else {
		req = message.DiscardAll{}
	}
	return c.streamingRoundTrip(req)
}

// RunPipelined writes every request back-to-back before reading any
// response, then reads exactly len(requests) terminal responses (plus
// any Record streams interleaved), applying state transitions in request
// order (§4.5 "Pipelining").
func (c *Client) RunPipelined(requests []message.Message) ([]message.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Gate each write against a projected state that optimistically assumes
	// Success for everything queued ahead of it, per §4.5 "state
	// transitions are applied in request order" — not against c.machine,
	// which stays un-advanced until responses are actually read below.
	proj := c.machine.Clone()
	for _, req := range requests {
		if !proj.CanSend(req.Kind()) {
			return nil, errors.WithStack(&InvalidStateError{State: proj.State(), Kind: req.Kind()})
		}
		if err := c.write(req); err != nil {
			c.machine.Fail()
			return nil, err
		}
		proj.Advance(req.Kind(), message.KindSuccess, false)
	}

	responses := make([]message.Message, 0, len(requests))
	for _, req := range requests {
		resp, records, err := c.readCycleLocked(req)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			responses = append(responses, recordsAsMessages(records)...)
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func recordsAsMessages(rs []*message.Record) []message.Message {
	out := make([]message.Message, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}

// roundTrip sends req and reads back a single non-Record terminal
// response, applying the state transition.
func (c *Client) roundTrip(req message.Message) (message.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.machine.CanSend(req.Kind()) {
		return nil, errors.WithStack(&InvalidStateError{State: c.machine.State(), Kind: req.Kind()})
	}
	if err := c.write(req); err != nil {
		c.machine.Fail()
		return nil, err
	}
	resp, _, err := c.readCycleLocked(req)
	return resp, err
}

// streamingRoundTrip sends req, collects any Records, and returns them
// alongside the terminal response.
func (c *Client) streamingRoundTrip(req message.Message) ([]*message.Record, message.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.machine.CanSend(req.Kind()) {
		return nil, nil, errors.WithStack(&InvalidStateError{State: c.machine.State(), Kind: req.Kind()})
	}
	if err := c.write(req); err != nil {
		c.machine.Fail()
		return nil, nil, err
	}
	resp, records, err := c.readCycleLocked(req)
	return records, resp, err
}

// readCycleLocked reads framed messages until a terminal
// Success/Failure/Ignored arrives, collecting any Records seen along the
// way, and advances the state machine. Caller must hold c.mu.
func (c *Client) readCycleLocked(req message.Message) (message.Message, []*message.Record, error) {
	var records []*message.Record
	hasMore := false

	for {
		raw, err := c.fr.ReadMessage()
		if err != nil {
			c.machine.Fail()
			metrics.ConnectionsDefunct.WithLabelValues("io").Inc()
			return nil, nil, errors.Wrap(err, "client: read response")
		}
		msg, _, err := message.DecodeResponse(raw)
		if err != nil {
			c.machine.Fail()
			metrics.ConnectionsDefunct.WithLabelValues("protocol").Inc()
			return nil, nil, err
		}

		if rec, ok := msg.(*message.Record); ok {
			records = append(records, rec)
			metrics.RecordsStreamed.WithLabelValues(c.version.String()).Inc()
			continue
		}

		if hm, ok := hasMoreFlag(msg); ok {
			hasMore = hm
		}
		c.machine.Advance(req.Kind(), msg.Kind(), hasMore)
		atomic.AddUint64(&c.nbRequests, 1)
		return msg, records, nil
	}
}

func hasMoreFlag(msg message.Message) (bool, bool) {
	s, ok := msg.(*message.Success)
	if !ok || s.Metadata == nil {
		return false, false
	}
	v, ok := s.Metadata.Get("has_more")
	if !ok {
		return false, false
	}
	b, ok := v.(ps.Bool)
	return bool(b), ok
}

func (c *Client) write(req message.Message) error {
	encoded, err := ps.Marshal(req)
	if err != nil {
		return err
	}
	if err := c.fw.WriteMessage(encoded); err != nil {
		return errors.Wrap(err, "client: write request")
	}
	logger.Trace(c, "sent request", zap.String("kind", req.Kind().String()))
	return nil
}

// NbRequests returns the total number of completed request/response
// cycles, used by RequestRate.
func (c *Client) NbRequests() uint64 {
	return atomic.LoadUint64(&c.nbRequests)
}
