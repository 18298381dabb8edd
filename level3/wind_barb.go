package level3

import (
	"fmt"

	"github.com/jddeal/go-wsr88d/wire"
)

const vectorRecordSize = 10

// WindBarb is one barb from packet 4
type WindBarb struct {
	Value     int16
	PositionX int16
	PositionY int16
	Direction int16 // degrees
	Speed     int16 // knots
}

// WindBarbPacket (Class 1 User Figure 3-9a)
type WindBarbPacket struct {
	packetCode    uint16
	lengthOfBlock uint16
	barbs         []WindBarb
}

// PacketCode is always 4
func (p *WindBarbPacket) PacketCode() uint16 { return p.packetCode }

// Barbs returns the decoded barbs
func (p *WindBarbPacket) Barbs() []WindBarb { return p.barbs }

// DataSize is LengthOfBlock plus the 4 byte code and length fields
func (p *WindBarbPacket) DataSize() int { return int(p.lengthOfBlock) + 4 }

// Parse decodes the packet from c.
func (p *WindBarbPacket) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("packet", "wind_barb")
	mark := c.Mark()

	p.packetCode = c.ReadUint16()
	p.lengthOfBlock = c.ReadUint16()
	if c.EOF() {
		log.Debug("Reached end of file")
		return fmt.Errorf("%w: wind barb header", wire.ErrTruncated)
	}

	errs := checkRecordPacket(p.packetCode, PacketCodeWindBarb, p.lengthOfBlock)
	if len(errs) == 0 {
		count := int(p.lengthOfBlock) / vectorRecordSize
		p.barbs = make([]WindBarb, 0, count)
		for i := 0; i < count; i++ {
			var b WindBarb
			if !c.ReadStruct(&b) {
				break
			}
			p.barbs = append(p.barbs, b)
		}
	}

	return finish(c, mark, p.DataSize(), errs, log)
}

// VectorArrow is one arrow from packet 5
type VectorArrow struct {
	PositionI       int16
	PositionJ       int16
	Direction       int16 // degrees
	ArrowLength     int16 // pixels
	ArrowHeadLength int16 // pixels
}

// VectorArrowPacket (Class 1 User Figure 3-9b)
type VectorArrowPacket struct {
	packetCode    uint16
	lengthOfBlock uint16
	arrows        []VectorArrow
}

// PacketCode is always 5
func (p *VectorArrowPacket) PacketCode() uint16 { return p.packetCode }

// Arrows returns the decoded arrows
func (p *VectorArrowPacket) Arrows() []VectorArrow { return p.arrows }

// DataSize is LengthOfBlock plus the 4 byte code and length fields
func (p *VectorArrowPacket) DataSize() int { return int(p.lengthOfBlock) + 4 }

// Parse decodes the packet from c.
func (p *VectorArrowPacket) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("packet", "vector_arrow")
	mark := c.Mark()

	p.packetCode = c.ReadUint16()
	p.lengthOfBlock = c.ReadUint16()
	if c.EOF() {
		log.Debug("Reached end of file")
		return fmt.Errorf("%w: vector arrow header", wire.ErrTruncated)
	}

	errs := checkRecordPacket(p.packetCode, PacketCodeVectorArrow, p.lengthOfBlock)
	if len(errs) == 0 {
		count := int(p.lengthOfBlock) / vectorRecordSize
		p.arrows = make([]VectorArrow, 0, count)
		for i := 0; i < count; i++ {
			var a VectorArrow
			if !c.ReadStruct(&a) {
				break
			}
			p.arrows = append(p.arrows, a)
		}
	}

	return finish(c, mark, p.DataSize(), errs, log)
}

func checkRecordPacket(code, want, length uint16) []error {
	var errs []error
	if code != want {
		errs = append(errs, wire.Violation("invalid packet code: %d", code))
	}
	if length%vectorRecordSize != 0 {
		errs = append(errs, wire.Violation("length of block %d is not a multiple of %d", length, vectorRecordSize))
	}
	return errs
}
