package level3

import (
	"fmt"

	"github.com/jddeal/go-wsr88d/wire"
)

const (
	rasterHeaderSize   = 22
	rasterOpFlag1      = 0x8000
	rasterOpFlag2      = 0x00C0
	rasterPackaging    = 2
	rasterMaxRows      = 464
	rasterMaxRowLength = 920
)

// RasterDataPacket is a grid of run length encoded rows. (Class 1 User
// Figure 3-12)
type RasterDataPacket struct {
	packetCode          uint16
	opFlag              [2]uint16
	iCoordinateStart    int16
	jCoordinateStart    int16
	xScaleInt           uint16
	xScaleFractional    uint16
	yScaleInt           uint16
	yScaleFractional    uint16
	numberOfRows        uint16
	packagingDescriptor uint16
	rows                [][]byte
	dataSize            int
}

// PacketCode is 0xBA0F or 0xBA07
func (p *RasterDataPacket) PacketCode() uint16 { return p.packetCode }

// ICoordinateStart in 1/4 km grid units
func (p *RasterDataPacket) ICoordinateStart() int16 { return p.iCoordinateStart }

// JCoordinateStart in 1/4 km grid units
func (p *RasterDataPacket) JCoordinateStart() int16 { return p.jCoordinateStart }

// XScale is the number of screen pixels per grid cell across
func (p *RasterDataPacket) XScale() float64 {
	return float64(p.xScaleInt) + float64(p.xScaleFractional)/65536
}

// YScale is the number of screen pixels per grid cell down
func (p *RasterDataPacket) YScale() float64 {
	return float64(p.yScaleInt) + float64(p.yScaleFractional)/65536
}

// NumberOfRows declared
func (p *RasterDataPacket) NumberOfRows() uint16 { return p.numberOfRows }

// Rows returns the run length encoded rows
func (p *RasterDataPacket) Rows() [][]byte { return p.rows }

// Levels expands row r into data levels.
func (p *RasterDataPacket) Levels(r int) []uint8 {
	if r < 0 || r >= len(p.rows) {
		return nil
	}
	return expandRuns(p.rows[r], rasterMaxRowLength)
}

// DataSize is the header plus every row read
func (p *RasterDataPacket) DataSize() int { return p.dataSize }

// Parse decodes the packet from c.
func (p *RasterDataPacket) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("packet", "raster_data")
	mark := c.Mark()

	p.packetCode = c.ReadUint16()
	p.opFlag[0] = c.ReadUint16()
	p.opFlag[1] = c.ReadUint16()
	p.iCoordinateStart = c.ReadInt16()
	p.jCoordinateStart = c.ReadInt16()
	p.xScaleInt = c.ReadUint16()
	p.xScaleFractional = c.ReadUint16()
	p.yScaleInt = c.ReadUint16()
	p.yScaleFractional = c.ReadUint16()
	p.numberOfRows = c.ReadUint16()
	p.packagingDescriptor = c.ReadUint16()
	p.dataSize = rasterHeaderSize
	if c.EOF() {
		log.Debug("Reached end of file")
		return fmt.Errorf("%w: raster header", wire.ErrTruncated)
	}

	switch {
	case p.packetCode != PacketCodeRasterData && p.packetCode != PacketCodeRasterDataAlternate:
		return wire.Violation("invalid raster packet code: 0x%04X", p.packetCode)
	case p.opFlag[0] != rasterOpFlag1 || p.opFlag[1] != rasterOpFlag2:
		return wire.Violation("invalid raster op flags: 0x%04X 0x%04X", p.opFlag[0], p.opFlag[1])
	case p.packagingDescriptor != rasterPackaging:
		return wire.Violation("invalid raster packaging descriptor: %d", p.packagingDescriptor)
	case p.numberOfRows < 1 || p.numberOfRows > rasterMaxRows:
		return wire.Violation("invalid number of rows: %d", p.numberOfRows)
	}

	p.rows = make([][]byte, 0, p.numberOfRows)
	for i := 0; i < int(p.numberOfRows); i++ {
		size := int(c.ReadUint16())
		if c.EOF() {
			break
		}
		p.dataSize += 2 + size

		row := c.ReadBytes(size)
		if row == nil {
			break
		}
		p.rows = append(p.rows, row)
	}

	return wire.Validate(c, mark, p.dataSize, log)
}
