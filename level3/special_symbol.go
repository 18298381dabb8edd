package level3

import (
	"fmt"

	"github.com/jddeal/go-wsr88d/wire"
)

// symbolRecordSize is the bytes per record for each special graphic symbol
// packet, including the position. (Class 1 User Figures 3-10, 3-12, 3-13)
var symbolRecordSize = map[uint16]int{
	PacketCodeMesocyclone:     6,
	PacketCodeCorrelatedShear: 6,
	PacketCodeTVS:             4,
	PacketCodeHailPositive:    4,
	PacketCodeHailProbable:    4,
	PacketCodeStormID:         6,
	PacketCodeHDAHail:         10,
	PacketCodePointFeature:    8,
	PacketCodeSTICircle:       6,
	PacketCodeETVS:            4,
}

// SymbolRecord is one symbol placed at a screen position. Attributes holds
// the packet specific halfwords that follow the position, eg the radius of a
// mesocyclone or the probability of hail.
type SymbolRecord struct {
	PositionI  int16
	PositionJ  int16
	Attributes []uint16
}

// StormID decodes the two character identifier carried by packet 15.
func (r SymbolRecord) StormID() string {
	if len(r.Attributes) == 0 {
		return ""
	}
	return string([]byte{byte(r.Attributes[0] >> 8), byte(r.Attributes[0])})
}

// SpecialGraphicSymbolPacket is a list of fixed size symbol records.
type SpecialGraphicSymbolPacket struct {
	packetCode    uint16
	lengthOfBlock uint16
	records       []SymbolRecord
}

// PacketCode identifies the symbol type
func (p *SpecialGraphicSymbolPacket) PacketCode() uint16 { return p.packetCode }

// LengthOfBlock in bytes, not counting the code and length fields
func (p *SpecialGraphicSymbolPacket) LengthOfBlock() uint16 { return p.lengthOfBlock }

// Records returns the decoded symbols
func (p *SpecialGraphicSymbolPacket) Records() []SymbolRecord { return p.records }

// DataSize is LengthOfBlock plus the 4 byte code and length fields
func (p *SpecialGraphicSymbolPacket) DataSize() int { return int(p.lengthOfBlock) + 4 }

// Parse decodes the packet from c.
func (p *SpecialGraphicSymbolPacket) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("packet", "special_symbol")
	mark := c.Mark()

	p.packetCode = c.ReadUint16()
	p.lengthOfBlock = c.ReadUint16()
	if c.EOF() {
		log.Debug("Reached end of file")
		return fmt.Errorf("%w: special symbol header", wire.ErrTruncated)
	}

	var errs []error
	size, ok := symbolRecordSize[p.packetCode]
	switch {
	case !ok:
		errs = append(errs, wire.Violation("invalid special symbol packet code: %d", p.packetCode))
	case int(p.lengthOfBlock)%size != 0:
		errs = append(errs, wire.Violation("length of block %d is not a multiple of %d", p.lengthOfBlock, size))
	}

	if len(errs) == 0 {
		count := int(p.lengthOfBlock) / size
		p.records = make([]SymbolRecord, 0, count)
		for i := 0; i < count && !c.EOF(); i++ {
			r := SymbolRecord{
				PositionI:  c.ReadInt16(),
				PositionJ:  c.ReadInt16(),
				Attributes: make([]uint16, (size-4)/2),
			}
			for k := range r.Attributes {
				r.Attributes[k] = c.ReadUint16()
			}
			p.records = append(p.records, r)
		}
	}

	return finish(c, mark, p.DataSize(), errs, log)
}
