package client

import (
	"fmt"

	"github.com/bolt-go/bolt/message"
	"github.com/bolt-go/bolt/state"
)

// InvalidAddressError means the configured address could not be resolved
// to a usable endpoint.
type InvalidAddressError struct {
	Address string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("client: invalid address %q", e.Address)
}

// InvalidMetadataError means required session metadata was missing or the
// wrong type (e.g. V1/V2 user_agent not a String).
type InvalidMetadataError struct {
	Key    string
	Reason string
}

func (e *InvalidMetadataError) Error() string {
	return fmt.Sprintf("client: invalid metadata %q: %s", e.Key, e.Reason)
}

// ClientInitFailedError wraps a non-Success response to the session
// initialization request (Init/Hello).
type ClientInitFailedError struct {
	Response message.Message
}

func (e *ClientInitFailedError) Error() string {
	return fmt.Sprintf("client: init failed: %s", e.Response.Kind())
}

// InvalidClientVersionError means the negotiated version is not one this
// client understands. A server that accepts none of the offered versions
// fails the handshake with handshake.HandshakeFailedError instead.
type InvalidClientVersionError struct {
	Version message.Version
}

func (e *InvalidClientVersionError) Error() string {
	return fmt.Sprintf("client: unsupported negotiated version %s", e.Version)
}

// InvalidStateError means the caller attempted a request that is not
// legal in the Client's current state, independent of any response.
type InvalidStateError struct {
	State state.State
	Kind  message.Kind
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("client: %s is not legal in state %s", e.Kind, e.State)
}

// InvalidResponseError means the server replied with a message kind that
// is not one of the kinds the driver expects back for the request it
// sent.
type InvalidResponseError struct {
	State    state.State
	Request  message.Kind
	Response message.Kind
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("client: unexpected response %s to %s in state %s",
		e.Response, e.Request, e.State)
}
