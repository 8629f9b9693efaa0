// Package frame implements the 16-byte bespoke header that wraps every
// packet sent or received on the GlobalProtect SSL tunnel byte stream.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderLen is the fixed size of the frame header in bytes.
const HeaderLen = 16

// Magic is the 4-byte sentinel that must open every frame.
const Magic uint32 = 0x1A2B3C4D

// EtherType identifies what a frame's payload carries.
type EtherType uint16

const (
	// EtherTypeDPD marks a zero-payload dead-peer-detection/keepalive frame.
	EtherTypeDPD EtherType = 0x0000
	// EtherTypeIPv4 marks a frame carrying an IPv4 datagram.
	EtherTypeIPv4 EtherType = 0x0800
)

var (
	// ErrShortFrame is returned when fewer than HeaderLen bytes were read.
	ErrShortFrame = errors.New("frame: short frame")
	// ErrMalformedFrame is returned when the magic does not match.
	ErrMalformedFrame = errors.New("frame: bad magic")
	// ErrLengthMismatch is returned when bytes read != HeaderLen+payload_len.
	ErrLengthMismatch = errors.New("frame: length mismatch")
)

// Header is the decoded form of the 16-byte frame prefix.
type Header struct {
	EtherType  EtherType
	PayloadLen uint16
	Flag32     uint32
	Zero32     uint32
}

// Anomaly describes a frame whose flag/zero words didn't match the
// pattern expected for its ethertype. It is informational only: the
// frame is still usable, see spec.md §4.1.
type Anomaly struct {
	Header Header
}

func (a *Anomaly) Error() string {
	return fmt.Sprintf("frame: unexpected flag/zero words for ethertype %#04x: flag=%#x zero=%#x",
		uint16(a.Header.EtherType), a.Header.Flag32, a.Header.Zero32)
}

// Encode writes the 16-byte header for a data or DPD frame of the given
// payload length into dst, which must be at least HeaderLen bytes.
func Encode(dst []byte, et EtherType, payloadLen int) {
	_ = dst[HeaderLen-1]
	binary.BigEndian.PutUint32(dst[0:4], Magic)
	binary.BigEndian.PutUint16(dst[4:6], uint16(et))
	binary.BigEndian.PutUint16(dst[6:8], uint16(payloadLen))

	var flag uint32
	if et == EtherTypeIPv4 {
		flag = 1
	}
	binary.LittleEndian.PutUint32(dst[8:12], flag)
	binary.LittleEndian.PutUint32(dst[12:16], 0)
}

// Decode parses the first HeaderLen bytes of buf as a frame header.
// bytesRead is the total number of bytes that were read from the wire for
// this frame, used to validate the length invariant in spec.md §3.
//
// A non-nil *Anomaly may be returned alongside a valid Header: the caller
// should log it and continue, per spec.md §4.1 ("observed anomalies ...
// are logged but not fatal").
func Decode(buf []byte, bytesRead int) (Header, *Anomaly, error) {
	if len(buf) < HeaderLen || bytesRead < HeaderLen {
		return Header{}, nil, ErrShortFrame
	}

	magic := binary.BigEndian.Uint32(buf[0:4])
	if magic != Magic {
		return Header{}, nil, ErrMalformedFrame
	}

	h := Header{
		EtherType:  EtherType(binary.BigEndian.Uint16(buf[4:6])),
		PayloadLen: binary.BigEndian.Uint16(buf[6:8]),
		Flag32:     binary.LittleEndian.Uint32(buf[8:12]),
		Zero32:     binary.LittleEndian.Uint32(buf[12:16]),
	}

	if bytesRead != HeaderLen+int(h.PayloadLen) {
		return h, nil, ErrLengthMismatch
	}

	var anomaly *Anomaly
	switch h.EtherType {
	case EtherTypeDPD:
		if h.Flag32 != 0 || h.Zero32 != 0 {
			anomaly = &Anomaly{Header: h}
		}
	case EtherTypeIPv4:
		if h.Flag32 != 1 || h.Zero32 != 0 {
			anomaly = &Anomaly{Header: h}
		}
	}

	return h, anomaly, nil
}
