package tunnel

import "github.com/gpstvpn/gpst-client/internal/frame"

// packetHeadroom is the extra slack beyond the negotiated MTU each
// packet buffer carries, per spec.md §3 Packet ("up to mtu+256 payload
// bytes").
const packetHeadroom = 256

// Packet is a single framed datagram buffer: a 16-byte header prefix
// followed by up to mtu+256 payload bytes. The main loop allocates a
// fresh Packet for each inbound frame; only the loop's own read buffer
// is reused across reads.
type Packet struct {
	buf     []byte
	payload int
}

// NewPacket allocates a Packet sized for the given negotiated MTU.
func NewPacket(mtu int) *Packet {
	return &Packet{buf: make([]byte, frame.HeaderLen+mtu+packetHeadroom)}
}

// Bytes returns the full header+payload slice currently in use.
func (p *Packet) Bytes() []byte {
	return p.buf[:frame.HeaderLen+p.payload]
}

// Header returns the 16-byte header slice.
func (p *Packet) Header() []byte {
	return p.buf[:frame.HeaderLen]
}

// Payload returns the payload slice currently in use.
func (p *Packet) Payload() []byte {
	return p.buf[frame.HeaderLen : frame.HeaderLen+p.payload]
}

// PayloadCap returns the full capacity available for payload bytes,
// for reads that don't yet know the final length.
func (p *Packet) PayloadCap() []byte {
	return p.buf[frame.HeaderLen:]
}

// SetPayloadLen records how many payload bytes are valid after a read
// into PayloadCap.
func (p *Packet) SetPayloadLen(n int) {
	p.payload = n
}

// StampHeader writes the header in place, for an outbound data packet
// (spec.md §4.7: "pop, stamp header (magic/0x0800/len/1/0)").
func (p *Packet) StampHeader() {
	frame.Encode(p.Header(), frame.EtherTypeIPv4, p.payload)
}

// dpdSentinel is the statically allocated, zero-payload DPD frame
// (spec.md §4.7: "a statically allocated frame containing exactly the
// 16-byte header ... and zero payload. It must never be freed.").
var dpdSentinel = buildDPDSentinel()

func buildDPDSentinel() *Packet {
	p := &Packet{buf: make([]byte, frame.HeaderLen)}
	frame.Encode(p.Header(), frame.EtherTypeDPD, 0)
	return p
}

// DPDSentinel returns the shared, never-freed DPD packet.
func DPDSentinel() *Packet {
	return dpdSentinel
}
