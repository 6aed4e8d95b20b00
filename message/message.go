package message

import ps "github.com/bolt-go/bolt/packstream"

// Wire signatures (§3's Message variant), shared across versions; legality
// of a given signature in a given (version, state) pair is governed by the
// Catalog, not by the signature itself.
const (
	SigInit       byte = 0x01
	SigHello      byte = 0x01
	SigAckFailure byte = 0x0E
	SigReset      byte = 0x0F
	SigRun        byte = 0x10
	SigBegin      byte = 0x11
	SigCommit     byte = 0x12
	SigRollback   byte = 0x13
	SigGoodbye    byte = 0x02
	SigDiscardAll byte = 0x2F
	SigDiscard    byte = 0x2F
	SigPullAll    byte = 0x3F
	SigPull       byte = 0x3F
	SigSuccess    byte = 0x70
	SigRecord     byte = 0x71
	SigIgnored    byte = 0x7E
	SigFailure    byte = 0x7F
)

// Kind identifies a message's logical role independent of its wire
// signature, since several request kinds share a signature across versions
// (Init/Hello, PullAll/Pull, DiscardAll/Discard).
type Kind int

const (
	KindInit Kind = iota
	KindHello
	KindRun
	KindRunWithMetadata
	KindPullAll
	KindPull
	KindDiscardAll
	KindDiscard
	KindAckFailure
	KindReset
	KindGoodbye
	KindBegin
	KindCommit
	KindRollback
	KindSuccess
	KindFailure
	KindIgnored
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindInit:
		return "INIT"
	case KindHello:
		return "HELLO"
	case KindRun, KindRunWithMetadata:
		return "RUN"
	case KindPullAll:
		return "PULL_ALL"
	case KindPull:
		return "PULL"
	case KindDiscardAll:
		return "DISCARD_ALL"
	case KindDiscard:
		return "DISCARD"
	case KindAckFailure:
		return "ACK_FAILURE"
	case KindReset:
		return "RESET"
	case KindGoodbye:
		return "GOODBYE"
	case KindBegin:
		return "BEGIN"
	case KindCommit:
		return "COMMIT"
	case KindRollback:
		return "ROLLBACK"
	case KindSuccess:
		return "SUCCESS"
	case KindFailure:
		return "FAILURE"
	case KindIgnored:
		return "IGNORED"
	case KindRecord:
		return "RECORD"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether k ends a streamed-record response cycle.
func (k Kind) IsTerminal() bool {
	return k == KindSuccess || k == KindFailure || k == KindIgnored
}

// Message is any Bolt request or response. It rides the same PackStream
// structure envelope as domain values (§3, §9 "closed-variant dispatch").
type Message interface {
	ps.Structure
	Kind() Kind
}

// ---- Requests: V1/V2 ----

// Init is the V1/V2 session-initialization request.
type Init struct {
	UserAgent ps.String
	Auth      *ps.Map
}

func NewInit(userAgent string, auth *ps.Map) *Init {
	return &Init{UserAgent: ps.String(userAgent), Auth: auth}
}

func (v *Init) Kind() Kind      { return KindInit }
func (v *Init) Signature() byte { return SigInit }
func (v *Init) Fields() []ps.Value {
	return []ps.Value{v.UserAgent, v.Auth}
}
func (v *Init) Size() int                           { return ps.StructureSize(v) }
func (v *Init) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// Run is the V1/V2 statement-execution request.
type Run struct {
	Statement ps.String
	Params    *ps.Map
}

func (v *Run) Kind() Kind      { return KindRun }
func (v *Run) Signature() byte { return SigRun }
func (v *Run) Fields() []ps.Value {
	return []ps.Value{v.Statement, v.Params}
}
func (v *Run) Size() int                           { return ps.StructureSize(v) }
func (v *Run) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// PullAll streams all remaining records (V1-V3).
type PullAll struct{}

func (PullAll) Kind() Kind                            { return KindPullAll }
func (PullAll) Signature() byte                       { return SigPullAll }
func (PullAll) Fields() []ps.Value                    { return nil }
func (v PullAll) Size() int                           { return ps.StructureSize(v) }
func (v PullAll) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// DiscardAll discards all remaining records (V1-V3).
type DiscardAll struct{}

func (DiscardAll) Kind() Kind                            { return KindDiscardAll }
func (DiscardAll) Signature() byte                       { return SigDiscardAll }
func (DiscardAll) Fields() []ps.Value                    { return nil }
func (v DiscardAll) Size() int                           { return ps.StructureSize(v) }
func (v DiscardAll) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// AckFailure acknowledges a Failure and returns the session to Ready
// (V1/V2 only; folded into Reset from V3 onward).
type AckFailure struct{}

func (AckFailure) Kind() Kind                            { return KindAckFailure }
func (AckFailure) Signature() byte                       { return SigAckFailure }
func (AckFailure) Fields() []ps.Value                    { return nil }
func (v AckFailure) Size() int                           { return ps.StructureSize(v) }
func (v AckFailure) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// ---- Requests: V3+ ----

// Hello is the V3+ session-initialization request; user_agent lives inside
// Extra rather than as a separate field (§4.3).
type Hello struct {
	Extra *ps.Map
}

func (v *Hello) Kind() Kind      { return KindHello }
func (v *Hello) Signature() byte { return SigHello }
func (v *Hello) Fields() []ps.Value {
	return []ps.Value{v.Extra}
}
func (v *Hello) Size() int                           { return ps.StructureSize(v) }
func (v *Hello) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// RunWithMetadata is the V3+ statement-execution request.
type RunWithMetadata struct {
	Statement ps.String
	Params    *ps.Map
	Metadata  *ps.Map
}

func (v *RunWithMetadata) Kind() Kind      { return KindRunWithMetadata }
func (v *RunWithMetadata) Signature() byte { return SigRun }
func (v *RunWithMetadata) Fields() []ps.Value {
	return []ps.Value{v.Statement, v.Params, v.Metadata}
}
func (v *RunWithMetadata) Size() int                           { return ps.StructureSize(v) }
func (v *RunWithMetadata) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// Goodbye politely closes a session (V3+).
type Goodbye struct{}

func (Goodbye) Kind() Kind                            { return KindGoodbye }
func (Goodbye) Signature() byte                       { return SigGoodbye }
func (Goodbye) Fields() []ps.Value                    { return nil }
func (v Goodbye) Size() int                           { return ps.StructureSize(v) }
func (v Goodbye) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// Begin opens an explicit transaction (V3+).
type Begin struct {
	Extra *ps.Map
}

func (v *Begin) Kind() Kind      { return KindBegin }
func (v *Begin) Signature() byte { return SigBegin }
func (v *Begin) Fields() []ps.Value {
	return []ps.Value{v.Extra}
}
func (v *Begin) Size() int                           { return ps.StructureSize(v) }
func (v *Begin) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// Commit commits the current explicit transaction (V3+).
type Commit struct{}

func (Commit) Kind() Kind                            { return KindCommit }
func (Commit) Signature() byte                       { return SigCommit }
func (Commit) Fields() []ps.Value                    { return nil }
func (v Commit) Size() int                           { return ps.StructureSize(v) }
func (v Commit) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// Rollback rolls back the current explicit transaction (V3+).
type Rollback struct{}

func (Rollback) Kind() Kind                            { return KindRollback }
func (Rollback) Signature() byte                       { return SigRollback }
func (Rollback) Fields() []ps.Value                    { return nil }
func (v Rollback) Size() int                           { return ps.StructureSize(v) }
func (v Rollback) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// Reset discards any outstanding result stream and returns to Ready. Legal
// in any non-Defunct state, across all versions (§4.5).
type Reset struct{}

func (Reset) Kind() Kind                            { return KindReset }
func (Reset) Signature() byte                       { return SigReset }
func (Reset) Fields() []ps.Value                    { return nil }
func (v Reset) Size() int                           { return ps.StructureSize(v) }
func (v Reset) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// ---- Requests: V4+ ----

// Pull streams up to Meta["n"] records (-1 = all), optionally against a
// specific query id (V4+).
type Pull struct {
	Meta *ps.Map
}

func (v *Pull) Kind() Kind      { return KindPull }
func (v *Pull) Signature() byte { return SigPull }
func (v *Pull) Fields() []ps.Value {
	return []ps.Value{v.Meta}
}
func (v *Pull) Size() int                           { return ps.StructureSize(v) }
func (v *Pull) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// Discard discards up to Meta["n"] records (V4+).
type Discard struct {
	Meta *ps.Map
}

func (v *Discard) Kind() Kind      { return KindDiscard }
func (v *Discard) Signature() byte { return SigDiscard }
func (v *Discard) Fields() []ps.Value {
	return []ps.Value{v.Meta}
}
func (v *Discard) Size() int                           { return ps.StructureSize(v) }
func (v *Discard) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// ---- Responses ----

// Success carries server-reported metadata for a successful request.
type Success struct {
	Metadata *ps.Map
}

func NewSuccess(meta *ps.Map) *Success { return &Success{Metadata: meta} }

func (v *Success) Kind() Kind      { return KindSuccess }
func (v *Success) Signature() byte { return SigSuccess }
func (v *Success) Fields() []ps.Value {
	return []ps.Value{v.Metadata}
}
func (v *Success) Size() int                           { return ps.StructureSize(v) }
func (v *Success) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// Failure carries server-reported metadata describing why a request
// failed. A Failure is delivered to the caller as data, not as a Go error
// (§7 category 5).
type Failure struct {
	Metadata *ps.Map
}

func (v *Failure) Kind() Kind      { return KindFailure }
func (v *Failure) Signature() byte { return SigFailure }
func (v *Failure) Fields() []ps.Value {
	return []ps.Value{v.Metadata}
}
func (v *Failure) Size() int                           { return ps.StructureSize(v) }
func (v *Failure) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// Code returns the Neo.*.*.* status code from metadata, if present.
func (v *Failure) Code() string {
	if v.Metadata == nil {
		return ""
	}
	c, ok := v.Metadata.Get("code")
	if !ok {
		return ""
	}
	if s, ok := c.(ps.String); ok {
		return string(s)
	}
	return ""
}

// Ignored means the request was skipped because the session was Failed.
type Ignored struct{}

func (Ignored) Kind() Kind                            { return KindIgnored }
func (Ignored) Signature() byte                       { return SigIgnored }
func (Ignored) Fields() []ps.Value                    { return nil }
func (v Ignored) Size() int                           { return ps.StructureSize(v) }
func (v Ignored) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }

// Record carries one result row.
type Record struct {
	RowFields ps.List
}

func (v *Record) Kind() Kind      { return KindRecord }
func (v *Record) Signature() byte { return SigRecord }
func (v *Record) Fields() []ps.Value {
	return []ps.Value{v.RowFields}
}
func (v *Record) Size() int                           { return ps.StructureSize(v) }
func (v *Record) MarshalPS(buf []byte) ([]byte, error) { return ps.EncodeStructure(v, buf) }
