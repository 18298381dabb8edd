package level3

import (
	"fmt"

	"github.com/jddeal/go-wsr88d/wire"
)

// LinkedVectorPacket is a polyline with (code 9) or without (code 6) a color
// value. (Class 1 User Figure 3-8)
type LinkedVectorPacket struct {
	polyline

	packetCode    uint16
	lengthOfBlock uint16
	valueOfVector uint16
}

// PacketCode is 6 or 9
func (p *LinkedVectorPacket) PacketCode() uint16 { return p.packetCode }

// LengthOfBlock in bytes, not counting the code and length fields
func (p *LinkedVectorPacket) LengthOfBlock() uint16 { return p.lengthOfBlock }

// ValueOfVector is only present on packet code 9.
func (p *LinkedVectorPacket) ValueOfVector() (uint16, bool) {
	return p.valueOfVector, p.packetCode == PacketCodeLinkedVectorWithValue
}

// DataSize is LengthOfBlock plus the 4 byte code and length fields
func (p *LinkedVectorPacket) DataSize() int { return int(p.lengthOfBlock) + 4 }

// Parse decodes the packet from c.
func (p *LinkedVectorPacket) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("packet", "linked_vector")
	mark := c.Mark()

	p.packetCode = c.ReadUint16()
	p.lengthOfBlock = c.ReadUint16()
	if c.EOF() {
		log.Debug("Reached end of file")
		return fmt.Errorf("%w: linked vector header", wire.ErrTruncated)
	}

	var errs []error
	vectorBytes := int(p.lengthOfBlock)

	switch p.packetCode {
	case PacketCodeLinkedVectorWithValue:
		p.valueOfVector = c.ReadUint16()
		vectorBytes -= 2
	case PacketCodeLinkedVectorNoValue:
	default:
		errs = append(errs, wire.Violation("invalid linked vector packet code: %d", p.packetCode))
	}

	if len(errs) == 0 {
		p.startI = c.ReadInt16()
		p.startJ = c.ReadInt16()
		if err := p.readVectors(c, vectorBytes-4); err != nil {
			errs = append(errs, err)
		}
	}

	return finish(c, mark, p.DataSize(), errs, log)
}
