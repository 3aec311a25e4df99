package session

import "encoding/binary"

// FrameHeaderSize is the size in bytes of the header prefixing every
// message in both directions.
const FrameHeaderSize = 16

// PreambleSize is the size in bytes of the reply preamble every inbound
// payload starts with.
const PreambleSize = 6

// EncodeFrameHeader returns the 16-byte frame header for a payload of the
// given length: 8 opaque/zero bytes, a 4-byte big-endian length, and a
// 4-byte opaque/zero timestamp. The remote quota tag and timestamp are
// always transmitted as zero.
func EncodeFrameHeader(payloadLen uint32) []byte {
	buf := make([]byte, FrameHeaderSize)
	binary.BigEndian.PutUint32(buf[8:12], payloadLen)
	return buf
}

// DecodeFrameHeader extracts the payload length from a 16-byte frame
// header. buf must be exactly FrameHeaderSize bytes.
func DecodeFrameHeader(buf []byte) (payloadLen uint32) {
	return binary.BigEndian.Uint32(buf[8:12])
}

// Preamble is the common 6-byte prefix of every inbound payload: the
// remote's message id and the context id it is replying to.
type Preamble struct {
	MsgID   uint16
	Context uint32
}

// DecodePreamble reads the 6-byte reply preamble from the start of buf. The
// session only decodes this; the remainder of the payload is decoded by the
// caller against its expected message type.
func DecodePreamble(buf []byte) Preamble {
	return Preamble{
		MsgID:   binary.BigEndian.Uint16(buf[0:2]),
		Context: binary.BigEndian.Uint32(buf[2:6]),
	}
}
