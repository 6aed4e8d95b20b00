package message

import ps "github.com/bolt-go/bolt/packstream"

// responseSignatures is the namespace of signatures the client ever
// decodes: Success, Failure, Ignored, Record. Requests are never decoded
// by the client that sent them, so they live outside this registry — each
// request type only needs Fields/Signature/Size/MarshalPS to be encoded.
var responseSignatures = ps.NewRegistry()

func init() {
	responseSignatures.Register(SigSuccess, ps.StructDef{
		Arity: 1,
		New: func(f []ps.Value) (ps.Structure, error) {
			return &Success{Metadata: asMap(f[0])}, nil
		},
	})
	responseSignatures.Register(SigFailure, ps.StructDef{
		Arity: 1,
		New: func(f []ps.Value) (ps.Structure, error) {
			return &Failure{Metadata: asMap(f[0])}, nil
		},
	})
	responseSignatures.Register(SigIgnored, ps.StructDef{
		Arity: 0,
		New: func(f []ps.Value) (ps.Structure, error) {
			return Ignored{}, nil
		},
	})
	responseSignatures.Register(SigRecord, ps.StructDef{
		Arity: 1,
		New: func(f []ps.Value) (ps.Structure, error) {
			row, _ := f[0].(ps.List)
			return &Record{RowFields: row}, nil
		},
	})
}

func asMap(v ps.Value) *ps.Map {
	if m, ok := v.(*ps.Map); ok {
		return m
	}
	return ps.NewMap()
}

// DecodeResponse reads exactly one response envelope (Success, Failure,
// Ignored, or Record) from the front of p.
func DecodeResponse(p []byte) (Message, []byte, error) {
	v, rest, err := ps.UnmarshalWithRegistry(p, responseSignatures)
	if err != nil {
		return nil, nil, err
	}
	msg, ok := v.(Message)
	if !ok {
		return nil, nil, &UnexpectedValueError{Value: v}
	}
	return msg, rest, nil
}

// UnexpectedValueError means a decoded value was not one of the four
// response message kinds, which should be unreachable given
// responseSignatures only registers those four.
type UnexpectedValueError struct {
	Value ps.Value
}

func (e *UnexpectedValueError) Error() string {
	return "message: decoded value is not a response message"
}

// Catalog is the per-version table of which request kind the client session
// driver (§4.5) uses for each operation (Init vs Hello, Run vs
// RunWithMetadata, ...) and of (request kind → legal response kinds).
// Which requests are legal in which state is decided by state.Machine, not
// by the Catalog.
type Catalog struct {
	version Version
}

// NewCatalog returns the Catalog governing version v.
func NewCatalog(v Version) *Catalog {
	return &Catalog{version: v}
}

// ExpectedResponses returns the set of response kinds a sent request kind
// may produce: the success-path kinds (Record and Success for streaming
// kinds, Success otherwise) followed by Failure (any request can fail) and
// Ignored (the session may already be Failed), which every kind includes.
func (c *Catalog) ExpectedResponses(kind Kind) []Kind {
	base := []Kind{KindFailure, KindIgnored}
	switch kind {
	case KindPullAll, KindPull, KindDiscardAll, KindDiscard:
		return append([]Kind{KindRecord, KindSuccess}, base...)
	default:
		return append([]Kind{KindSuccess}, base...)
	}
}

// InitKind returns the version-appropriate session-initialization kind:
// Hello for V3+, Init otherwise (§4.3).
func (c *Catalog) InitKind() Kind {
	if c.version.AtLeastV3() {
		return KindHello
	}
	return KindInit
}

// RunKind returns the version-appropriate statement-execution kind:
// RunWithMetadata for V3+, Run otherwise.
func (c *Catalog) RunKind() Kind {
	if c.version.AtLeastV3() {
		return KindRunWithMetadata
	}
	return KindRun
}

// PullKind returns the version-appropriate stream-continuation kind: the
// parameterized Pull for V4+, PullAll otherwise.
func (c *Catalog) PullKind() Kind {
	if c.version.AtLeastV4() {
		return KindPull
	}
	return KindPullAll
}

// DiscardKind returns the version-appropriate stream-discard kind: the
// parameterized Discard for V4+, DiscardAll otherwise.
func (c *Catalog) DiscardKind() Kind {
	if c.version.AtLeastV4() {
		return KindDiscard
	}
	return KindDiscardAll
}

// FailureRecoveryKind returns the request kind that recovers a Failed
// session: Reset for V3+, AckFailure otherwise.
func (c *Catalog) FailureRecoveryKind() Kind {
	if c.version.AtLeastV3() {
		return KindReset
	}
	return KindAckFailure
}
