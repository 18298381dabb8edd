package level3

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wsr88d/wire"
)

// Packet codes (Class 1 User 3.3.1, Figures 3-7 through 3-15)
const (
	PacketCodeTextNoValue                     = 1
	PacketCodeSpecialSymbol                   = 2
	PacketCodeMesocyclone                     = 3
	PacketCodeWindBarb                        = 4
	PacketCodeVectorArrow                     = 5
	PacketCodeLinkedVectorNoValue             = 6
	PacketCodeUnlinkedVectorNoValue           = 7
	PacketCodeTextWithValue                   = 8
	PacketCodeLinkedVectorWithValue           = 9
	PacketCodeUnlinkedVectorWithValue         = 10
	PacketCodeCorrelatedShear                 = 11
	PacketCodeTVS                             = 12
	PacketCodeHailPositive                    = 13
	PacketCodeHailProbable                    = 14
	PacketCodeStormID                         = 15
	PacketCodeDigitalRadialData               = 16
	PacketCodeHDAHail                         = 19
	PacketCodePointFeature                    = 20
	PacketCodeSCITPastData                    = 23
	PacketCodeSCITForecastData                = 24
	PacketCodeSTICircle                       = 25
	PacketCodeETVS                            = 26
	PacketCodeSetColorLevel                   = 0x0802
	PacketCodeLinkedContourVector             = 0x0E03
	PacketCodeUnlinkedContourVector           = 0x3501
	PacketCodeRadialData                      = 0xAF1F
	PacketCodeRasterData                      = 0xBA0F
	PacketCodeRasterDataAlternate             = 0xBA07
	kmPerGridUnit                     float64 = 0.25
)

// ErrMalformedPacket wraps the failure of a packet whose code was recognized.
var ErrMalformedPacket = errors.New("malformed packet")

// Packet is any decoded symbology, graphic or SCIT packet.
type Packet interface {
	PacketCode() uint16

	// DataSize is the number of bytes the packet occupied, including its code.
	DataSize() int
}

type parser interface {
	Packet
	Parse(c *wire.Cursor) error
}

// NewPacket decodes the packet at the cursor, choosing the decoder from the
// packet code. An unrecognized code consumes nothing and returns
// wire.ErrUnknownPacketCode; a recognized code that fails to decode returns
// ErrMalformedPacket. Either way the bytes that follow can not be assumed to
// start on a packet boundary.
func NewPacket(c *wire.Cursor) (Packet, error) {
	code, ok := c.Peek16()
	if !ok {
		c.Logger().Debug("Reached end of file")
		return nil, fmt.Errorf("%w: packet code", wire.ErrTruncated)
	}

	p := newPacketFor(code)
	if p == nil {
		c.Logger().Warnf("Unknown packet code: 0x%04X", code)
		return nil, fmt.Errorf("%w: 0x%04X", wire.ErrUnknownPacketCode, code)
	}

	if err := p.Parse(c); err != nil {
		return nil, fmt.Errorf("%w 0x%04X: %w", ErrMalformedPacket, code, err)
	}
	return p, nil
}

func newPacketFor(code uint16) parser {
	switch code {
	case PacketCodeTextNoValue, PacketCodeSpecialSymbol, PacketCodeTextWithValue:
		return &TextPacket{}
	case PacketCodeMesocyclone, PacketCodeCorrelatedShear, PacketCodeTVS, PacketCodeHailPositive,
		PacketCodeHailProbable, PacketCodeStormID, PacketCodeHDAHail, PacketCodePointFeature,
		PacketCodeSTICircle, PacketCodeETVS:
		return &SpecialGraphicSymbolPacket{}
	case PacketCodeWindBarb:
		return &WindBarbPacket{}
	case PacketCodeVectorArrow:
		return &VectorArrowPacket{}
	case PacketCodeLinkedVectorNoValue, PacketCodeLinkedVectorWithValue:
		return &LinkedVectorPacket{}
	case PacketCodeUnlinkedVectorNoValue, PacketCodeUnlinkedVectorWithValue, PacketCodeUnlinkedContourVector:
		return &UnlinkedVectorPacket{}
	case PacketCodeDigitalRadialData, PacketCodeRadialData:
		return &RadialDataPacket{}
	case PacketCodeSCITPastData, PacketCodeSCITForecastData:
		return &SCITDataPacket{}
	case PacketCodeSetColorLevel:
		return &SetColorLevelPacket{}
	case PacketCodeLinkedContourVector:
		return &LinkedContourVectorPacket{}
	case PacketCodeRasterData, PacketCodeRasterDataAlternate:
		return &RasterDataPacket{}
	}
	return nil
}

// gridKm converts screen coordinates in 1/4 km grid units to km.
func gridKm(v int16) float64 {
	return float64(v) * kmPerGridUnit
}

func gridKmSlice(vs []int16) []float64 {
	km := make([]float64, len(vs))
	for i, v := range vs {
		km[i] = gridKm(v)
	}
	return km
}

// polyline holds the geometry shared by the linked vector packets. Segment k
// runs from the previous end point (or the start point) to (endI[k], endJ[k]).
type polyline struct {
	startI int16
	startJ int16
	endI   []int16
	endJ   []int16
}

// StartI of the first segment in 1/4 km grid units
func (l *polyline) StartI() int16 { return l.startI }

// StartJ of the first segment in 1/4 km grid units
func (l *polyline) StartJ() int16 { return l.startJ }

// EndI returns a copy of the segment end points
func (l *polyline) EndI() []int16 { return append([]int16(nil), l.endI...) }

// EndJ returns a copy of the segment end points
func (l *polyline) EndJ() []int16 { return append([]int16(nil), l.endJ...) }

// StartIKm is StartI in km
func (l *polyline) StartIKm() float64 { return gridKm(l.startI) }

// StartJKm is StartJ in km
func (l *polyline) StartJKm() float64 { return gridKm(l.startJ) }

// EndIKm is EndI in km
func (l *polyline) EndIKm() []float64 { return gridKmSlice(l.endI) }

// EndJKm is EndJ in km
func (l *polyline) EndJKm() []float64 { return gridKmSlice(l.endJ) }

// readVectors reads the coordinate tail of a vector packet. vectorBytes must
// hold whole coordinate pairs.
func (l *polyline) readVectors(c *wire.Cursor, vectorBytes int) error {
	if vectorBytes < 0 || vectorBytes%4 != 0 {
		return wire.Violation("vector length %d is not a whole number of vectors", vectorBytes)
	}
	l.endI, l.endJ = c.ReadCoordinatePairs(vectorBytes / 4)
	return nil
}

// finish validates the byte count of a packet of dataSize bytes and folds that
// result in with errs. A packet already rejected by errs is drained first so
// the stream stays on the next packet boundary.
func finish(c *wire.Cursor, mark wire.Mark, dataSize int, errs []error, log logrus.FieldLogger) error {
	for _, err := range errs {
		log.Warn(err)
	}
	if len(errs) > 0 {
		wire.Drain(c, mark, dataSize)
	}
	if err := wire.Validate(c, mark, dataSize, log); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
