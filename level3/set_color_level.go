package level3

import (
	"fmt"

	"github.com/jddeal/go-wsr88d/wire"
)

const (
	colorValueIndicator = 0x0002
	setColorLevelSize   = 6
)

// SetColorLevelPacket sets the color of the contour vectors that follow it.
// (Class 1 User Figure 3-11 sheet 1)
type SetColorLevelPacket struct {
	packetCode          uint16
	colorValueIndicator uint16
	valueOfContour      uint16
}

// PacketCode is always 0x0802
func (p *SetColorLevelPacket) PacketCode() uint16 { return p.packetCode }

// ColorValueIndicator is always 0x0002
func (p *SetColorLevelPacket) ColorValueIndicator() uint16 { return p.colorValueIndicator }

// ValueOfContour is the color level for the following contours
func (p *SetColorLevelPacket) ValueOfContour() uint16 { return p.valueOfContour }

// DataSize is always 6
func (p *SetColorLevelPacket) DataSize() int { return setColorLevelSize }

// Parse decodes the packet from c.
func (p *SetColorLevelPacket) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("packet", "set_color_level")
	mark := c.Mark()

	p.packetCode = c.ReadUint16()
	p.colorValueIndicator = c.ReadUint16()
	p.valueOfContour = c.ReadUint16()
	if c.EOF() {
		log.Debug("Reached end of file")
		return fmt.Errorf("%w: set color level", wire.ErrTruncated)
	}

	var errs []error
	if p.packetCode != PacketCodeSetColorLevel {
		errs = append(errs, wire.Violation("invalid packet code: 0x%04X", p.packetCode))
	}
	if p.colorValueIndicator != colorValueIndicator {
		errs = append(errs, wire.Violation("invalid color value indicator: 0x%04X", p.colorValueIndicator))
	}

	return finish(c, mark, p.DataSize(), errs, log)
}
