// Package message implements the Bolt request/response catalog: tagged
// messages with one-byte signatures, and per-version lookup tables for
// which requests are legal and which responses they may produce (§4.3).
package message

// Version identifies a negotiated Bolt protocol version. Only the five
// versions named in §4.3 are modeled; the encoding matches the 4-byte
// big-endian value exchanged during the handshake (§4.4).
type Version uint32

const (
	V1_0 Version = 1
	V2_0 Version = 2
	V3_0 Version = 3
	V4_0 Version = 4
	V4_1 Version = 0x00000104
)

// String names the version for logs and error messages.
func (v Version) String() string {
	switch v {
	case V1_0:
		return "1.0"
	case V2_0:
		return "2.0"
	case V3_0:
		return "3.0"
	case V4_0:
		return "4.0"
	case V4_1:
		return "4.1"
	default:
		return "unknown"
	}
}

// AtLeastV3 reports whether v uses the V3+ message set (Hello/RunWithMetadata/
// Begin/Commit/Rollback/Goodbye, Reset-only failure recovery).
func (v Version) AtLeastV3() bool {
	return v == V3_0 || v == V4_0 || v == V4_1
}

// AtLeastV4 reports whether v uses the V4+ parameterized Pull/Discard.
func (v Version) AtLeastV4() bool {
	return v == V4_0 || v == V4_1
}
