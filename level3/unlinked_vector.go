package level3

import (
	"fmt"

	"github.com/jddeal/go-wsr88d/wire"
)

// UnlinkedVectorPacket is a list of independent line segments, with (code 10)
// or without (codes 7 and 0x3501) a color value. (Class 1 User Figures 3-8,
// 3-11 sheet 3)
type UnlinkedVectorPacket struct {
	packetCode    uint16
	lengthOfBlock uint16
	valueOfVector uint16
	beginI        []int16
	beginJ        []int16
	endI          []int16
	endJ          []int16
}

// PacketCode is 7, 10 or 0x3501
func (p *UnlinkedVectorPacket) PacketCode() uint16 { return p.packetCode }

// LengthOfBlock in bytes, not counting the code and length fields
func (p *UnlinkedVectorPacket) LengthOfBlock() uint16 { return p.lengthOfBlock }

// ValueOfVector is only present on packet code 10.
func (p *UnlinkedVectorPacket) ValueOfVector() (uint16, bool) {
	return p.valueOfVector, p.packetCode == PacketCodeUnlinkedVectorWithValue
}

// NumberOfVectors decoded
func (p *UnlinkedVectorPacket) NumberOfVectors() int { return len(p.endI) }

// BeginI returns a copy of the segment start points
func (p *UnlinkedVectorPacket) BeginI() []int16 { return append([]int16(nil), p.beginI...) }

// BeginJ returns a copy of the segment start points
func (p *UnlinkedVectorPacket) BeginJ() []int16 { return append([]int16(nil), p.beginJ...) }

// EndI returns a copy of the segment end points
func (p *UnlinkedVectorPacket) EndI() []int16 { return append([]int16(nil), p.endI...) }

// EndJ returns a copy of the segment end points
func (p *UnlinkedVectorPacket) EndJ() []int16 { return append([]int16(nil), p.endJ...) }

// BeginIKm is BeginI in km
func (p *UnlinkedVectorPacket) BeginIKm() []float64 { return gridKmSlice(p.beginI) }

// BeginJKm is BeginJ in km
func (p *UnlinkedVectorPacket) BeginJKm() []float64 { return gridKmSlice(p.beginJ) }

// EndIKm is EndI in km
func (p *UnlinkedVectorPacket) EndIKm() []float64 { return gridKmSlice(p.endI) }

// EndJKm is EndJ in km
func (p *UnlinkedVectorPacket) EndJKm() []float64 { return gridKmSlice(p.endJ) }

// DataSize is LengthOfBlock plus the 4 byte code and length fields
func (p *UnlinkedVectorPacket) DataSize() int { return int(p.lengthOfBlock) + 4 }

// Parse decodes the packet from c.
func (p *UnlinkedVectorPacket) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("packet", "unlinked_vector")
	mark := c.Mark()

	p.packetCode = c.ReadUint16()
	p.lengthOfBlock = c.ReadUint16()
	if c.EOF() {
		log.Debug("Reached end of file")
		return fmt.Errorf("%w: unlinked vector header", wire.ErrTruncated)
	}

	var errs []error
	vectorBytes := int(p.lengthOfBlock)

	switch p.packetCode {
	case PacketCodeUnlinkedVectorWithValue:
		p.valueOfVector = c.ReadUint16()
		vectorBytes -= 2
	case PacketCodeUnlinkedVectorNoValue, PacketCodeUnlinkedContourVector:
	default:
		errs = append(errs, wire.Violation("invalid unlinked vector packet code: 0x%04X", p.packetCode))
	}
	if vectorBytes < 0 || vectorBytes%8 != 0 {
		errs = append(errs, wire.Violation("vector length %d is not a whole number of vectors", vectorBytes))
	}

	if len(errs) == 0 {
		// each vector is a begin pair followed by an end pair
		is, js := c.ReadCoordinatePairs(vectorBytes / 4)
		n := len(is) / 2
		p.beginI, p.beginJ = make([]int16, n), make([]int16, n)
		p.endI, p.endJ = make([]int16, n), make([]int16, n)
		for k := 0; k < n; k++ {
			p.beginI[k], p.beginJ[k] = is[2*k], js[2*k]
			p.endI[k], p.endJ[k] = is[2*k+1], js[2*k+1]
		}
	}

	return finish(c, mark, p.DataSize(), errs, log)
}
