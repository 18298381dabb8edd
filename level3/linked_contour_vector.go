package level3

import (
	"fmt"

	"github.com/jddeal/go-wsr88d/wire"
)

// initialPointIndicator flags the start point of a contour
const initialPointIndicator = 0x8000

// LinkedContourVectorPacket is a contour line whose color comes from the
// preceding SetColorLevelPacket. (Class 1 User Figure 3-11 sheet 2)
type LinkedContourVectorPacket struct {
	polyline

	packetCode            uint16
	initialPointIndicator uint16
	lengthOfVectors       uint16
}

// PacketCode is always 0x0E03
func (p *LinkedContourVectorPacket) PacketCode() uint16 { return p.packetCode }

// InitialPointIndicator is always 0x8000
func (p *LinkedContourVectorPacket) InitialPointIndicator() uint16 { return p.initialPointIndicator }

// LengthOfVectors in bytes
func (p *LinkedContourVectorPacket) LengthOfVectors() uint16 { return p.lengthOfVectors }

// DataSize is LengthOfVectors plus the 10 byte header
func (p *LinkedContourVectorPacket) DataSize() int { return int(p.lengthOfVectors) + 10 }

// Parse decodes the packet from c.
func (p *LinkedContourVectorPacket) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("packet", "linked_contour_vector")
	mark := c.Mark()

	p.packetCode = c.ReadUint16()
	p.initialPointIndicator = c.ReadUint16()
	p.startI = c.ReadInt16()
	p.startJ = c.ReadInt16()
	p.lengthOfVectors = c.ReadUint16()
	if c.EOF() {
		log.Debug("Reached end of file")
		return fmt.Errorf("%w: linked contour vector header", wire.ErrTruncated)
	}

	var errs []error
	if p.packetCode != PacketCodeLinkedContourVector {
		errs = append(errs, wire.Violation("invalid packet code: 0x%04X", p.packetCode))
	}
	if p.initialPointIndicator != initialPointIndicator {
		errs = append(errs, wire.Violation("invalid initial point indicator: 0x%04X", p.initialPointIndicator))
	}

	if len(errs) == 0 {
		if err := p.readVectors(c, int(p.lengthOfVectors)); err != nil {
			errs = append(errs, err)
		}
	}

	return finish(c, mark, p.DataSize(), errs, log)
}
