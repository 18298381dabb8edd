package level3

import (
	"fmt"

	"github.com/jddeal/go-wsr88d/wire"
)

const radialHeaderSize = 14

// limits on the radial packet header (Class 1 User Figures 3-10, 3-11c)
var radialLimits = map[uint16]struct{ bins, radials uint16 }{
	PacketCodeRadialData:        {460, 400},
	PacketCodeDigitalRadialData: {1840, 720},
}

// Radial is one ray of a radial data packet
type Radial struct {
	StartAngle uint16 // tenths of a degree
	AngleDelta uint16 // tenths of a degree
	Data       []byte // run length encoded for 0xAF1F, one level per bin for 16
}

// RadialDataPacket holds run length encoded (0xAF1F) or digital (16) radials.
type RadialDataPacket struct {
	packetCode           uint16
	indexOfFirstRangeBin uint16
	numberOfRangeBins    uint16
	iCenterOfSweep       int16
	jCenterOfSweep       int16
	scaleFactor          uint16
	numberOfRadials      uint16
	radials              []Radial
	dataSize             int
}

// PacketCode is 0xAF1F or 16
func (p *RadialDataPacket) PacketCode() uint16 { return p.packetCode }

// IndexOfFirstRangeBin is the distance in bins to the first bin
func (p *RadialDataPacket) IndexOfFirstRangeBin() uint16 { return p.indexOfFirstRangeBin }

// NumberOfRangeBins in every radial
func (p *RadialDataPacket) NumberOfRangeBins() uint16 { return p.numberOfRangeBins }

// ICenterOfSweep in 1/4 km grid units
func (p *RadialDataPacket) ICenterOfSweep() int16 { return p.iCenterOfSweep }

// JCenterOfSweep in 1/4 km grid units
func (p *RadialDataPacket) JCenterOfSweep() int16 { return p.jCenterOfSweep }

// ScaleFactor is the number of pixels per range bin, in thousandths
func (p *RadialDataPacket) ScaleFactor() uint16 { return p.scaleFactor }

// NumberOfRadials declared
func (p *RadialDataPacket) NumberOfRadials() uint16 { return p.numberOfRadials }

// Radials returns the decoded radials
func (p *RadialDataPacket) Radials() []Radial { return p.radials }

// DataSize is the header plus every radial read
func (p *RadialDataPacket) DataSize() int { return p.dataSize }

// Levels expands radial r into one data level per range bin.
func (p *RadialDataPacket) Levels(r int) []uint8 {
	if r < 0 || r >= len(p.radials) {
		return nil
	}
	data := p.radials[r].Data
	if p.packetCode == PacketCodeDigitalRadialData {
		if len(data) > int(p.numberOfRangeBins) {
			data = data[:p.numberOfRangeBins]
		}
		return append([]uint8(nil), data...)
	}
	return expandRuns(data, int(p.numberOfRangeBins))
}

// Parse decodes the packet from c.
func (p *RadialDataPacket) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("packet", "radial_data")
	mark := c.Mark()

	p.packetCode = c.ReadUint16()
	p.indexOfFirstRangeBin = c.ReadUint16()
	p.numberOfRangeBins = c.ReadUint16()
	p.iCenterOfSweep = c.ReadInt16()
	p.jCenterOfSweep = c.ReadInt16()
	p.scaleFactor = c.ReadUint16()
	p.numberOfRadials = c.ReadUint16()
	p.dataSize = radialHeaderSize
	if c.EOF() {
		log.Debug("Reached end of file")
		return fmt.Errorf("%w: radial header", wire.ErrTruncated)
	}

	// without a declared length nothing past a bad header can be consumed
	limits, ok := radialLimits[p.packetCode]
	switch {
	case !ok:
		return wire.Violation("invalid radial packet code: 0x%04X", p.packetCode)
	case p.numberOfRangeBins < 1 || p.numberOfRangeBins > limits.bins:
		return wire.Violation("invalid number of range bins: %d", p.numberOfRangeBins)
	case p.numberOfRadials < 1 || p.numberOfRadials > limits.radials:
		return wire.Violation("invalid number of radials: %d", p.numberOfRadials)
	}

	p.radials = make([]Radial, 0, p.numberOfRadials)
	for i := 0; i < int(p.numberOfRadials); i++ {
		size := int(c.ReadUint16())
		r := Radial{
			StartAngle: c.ReadUint16(),
			AngleDelta: c.ReadUint16(),
		}
		if c.EOF() {
			break
		}

		if p.packetCode == PacketCodeRadialData {
			// size is in halfwords of run length encoded data
			size *= 2
		} else if size%2 != 0 {
			// digital radials are padded out to a halfword
			size++
		}
		p.dataSize += 6 + size

		if r.AngleDelta > 3600 || r.StartAngle > 3600 {
			return wire.Violation("radial %d: invalid angle %d delta %d", i, r.StartAngle, r.AngleDelta)
		}

		r.Data = c.ReadBytes(size)
		if r.Data == nil {
			break
		}
		p.radials = append(p.radials, r)
	}

	return wire.Validate(c, mark, p.dataSize, log)
}

// expandRuns decodes bytes of 4 bit run length and 4 bit color level into
// at most bins levels.
func expandRuns(data []byte, bins int) []uint8 {
	levels := make([]uint8, 0, bins)
	for _, b := range data {
		run, level := int(b>>4), b&0x0F
		for k := 0; k < run && len(levels) < bins; k++ {
			levels = append(levels, level)
		}
	}
	return levels
}
