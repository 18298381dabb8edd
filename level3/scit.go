package level3

import (
	"errors"
	"fmt"

	"github.com/jddeal/go-wsr88d/wire"
)

// SCITDataPacket carries the past (23) or forecast (24) track of a storm as
// nested special symbol, linked vector and circle packets. (Class 1 User
// Figure 3-15)
type SCITDataPacket struct {
	packetCode    uint16
	lengthOfBlock uint16
	packets       []Packet
}

// PacketCode is 23 or 24
func (p *SCITDataPacket) PacketCode() uint16 { return p.packetCode }

// LengthOfBlock in bytes, not counting the code and length fields
func (p *SCITDataPacket) LengthOfBlock() uint16 { return p.lengthOfBlock }

// Packets returns the nested packets
func (p *SCITDataPacket) Packets() []Packet { return p.packets }

// DataSize is LengthOfBlock plus the 4 byte code and length fields
func (p *SCITDataPacket) DataSize() int { return int(p.lengthOfBlock) + 4 }

// Parse decodes the packet from c.
func (p *SCITDataPacket) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("packet", "scit")
	mark := c.Mark()

	p.packetCode = c.ReadUint16()
	p.lengthOfBlock = c.ReadUint16()
	if c.EOF() {
		log.Debug("Reached end of file")
		return fmt.Errorf("%w: SCIT header", wire.ErrTruncated)
	}

	var errs []error
	if p.packetCode != PacketCodeSCITPastData && p.packetCode != PacketCodeSCITForecastData {
		errs = append(errs, wire.Violation("invalid SCIT packet code: %d", p.packetCode))
	}

	for len(errs) == 0 && c.Since(mark) < p.DataSize() && !c.EOF() {
		code, ok := c.Peek16()
		if !ok {
			break
		}
		switch code {
		case PacketCodeSpecialSymbol, PacketCodeLinkedVectorNoValue, PacketCodeSTICircle:
		default:
			errs = append(errs, wire.Violation("packet 0x%04X not allowed in SCIT data", code))
			continue
		}

		nested, err := NewPacket(c)
		if err != nil {
			// the nested packet was still consumed to its own length
			if errors.Is(err, wire.ErrTruncated) {
				break
			}
			errs = append(errs, err)
			continue
		}
		p.packets = append(p.packets, nested)
	}

	return finish(c, mark, p.DataSize(), errs, log)
}
