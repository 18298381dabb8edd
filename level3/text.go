package level3

import (
	"fmt"

	"github.com/jddeal/go-wsr88d/wire"
)

// TextPacket places a string (codes 1 and 8) or a run of special symbol
// characters (code 2) at a screen position. (Class 1 User Figures 3-8a, 3-9)
type TextPacket struct {
	packetCode    uint16
	lengthOfBlock uint16
	valueOfText   uint16
	positionI     int16
	positionJ     int16
	characters    []byte
}

// PacketCode is 1, 2 or 8
func (p *TextPacket) PacketCode() uint16 { return p.packetCode }

// LengthOfBlock in bytes, not counting the code and length fields
func (p *TextPacket) LengthOfBlock() uint16 { return p.lengthOfBlock }

// ValueOfText is the color level, only present on packet code 8.
func (p *TextPacket) ValueOfText() (uint16, bool) {
	return p.valueOfText, p.packetCode == PacketCodeTextWithValue
}

// PositionI in 1/4 km grid units
func (p *TextPacket) PositionI() int16 { return p.positionI }

// PositionJ in 1/4 km grid units
func (p *TextPacket) PositionJ() int16 { return p.positionJ }

// PositionIKm in km
func (p *TextPacket) PositionIKm() float64 { return gridKm(p.positionI) }

// PositionJKm in km
func (p *TextPacket) PositionJKm() float64 { return gridKm(p.positionJ) }

// Text returns the characters as a string
func (p *TextPacket) Text() string { return string(p.characters) }

// DataSize is LengthOfBlock plus the 4 byte code and length fields
func (p *TextPacket) DataSize() int { return int(p.lengthOfBlock) + 4 }

// Parse decodes the packet from c.
func (p *TextPacket) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("packet", "text")
	mark := c.Mark()

	p.packetCode = c.ReadUint16()
	p.lengthOfBlock = c.ReadUint16()
	if c.EOF() {
		log.Debug("Reached end of file")
		return fmt.Errorf("%w: text header", wire.ErrTruncated)
	}

	var errs []error
	textLength := int(p.lengthOfBlock) - 4

	switch p.packetCode {
	case PacketCodeTextWithValue:
		p.valueOfText = c.ReadUint16()
		textLength -= 2
	case PacketCodeTextNoValue, PacketCodeSpecialSymbol:
	default:
		errs = append(errs, wire.Violation("invalid text packet code: %d", p.packetCode))
	}
	if textLength < 0 {
		errs = append(errs, wire.Violation("text length of block too short: %d", p.lengthOfBlock))
	}

	if len(errs) == 0 {
		p.positionI = c.ReadInt16()
		p.positionJ = c.ReadInt16()
		p.characters = c.ReadBytes(textLength)
	}

	return finish(c, mark, p.DataSize(), errs, log)
}
