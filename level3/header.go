package level3

import (
	"errors"
	"fmt"
	"time"

	"github.com/jddeal/go-wsr88d/wire"
)

const (
	// MessageHeaderLength is the size of MessageHeader on the wire
	MessageHeaderLength = 18

	// ProductDescriptionLength is the size of ProductDescription on the wire
	ProductDescriptionLength = 102

	// productHeaderLength is where the first block may start
	productHeaderLength = MessageHeaderLength + ProductDescriptionLength

	// minimumProductCode is the lowest message code that carries a product
	minimumProductCode = 16

	secondsPerDay = 86400
)

var (
	// ErrUnsupportedMessage is returned for messages that are not products,
	// eg general status or alert messages.
	ErrUnsupportedMessage = errors.New("unsupported message")

	// ErrCompressedProduct is returned when the bzip2 data of a compressed
	// product can not be read.
	ErrCompressedProduct = errors.New("compressed product")
)

// compressedProducts may be bzip2 compressed after the product description
var compressedProducts = map[int16]bool{
	32: true, 94: true, 99: true, 134: true, 135: true, 138: true, 149: true,
	152: true, 153: true, 154: true, 155: true, 159: true, 161: true, 163: true,
	165: true, 167: true, 168: true, 170: true, 172: true, 173: true, 174: true,
	175: true, 176: true, 177: true, 178: true, 179: true, 180: true, 182: true,
	186: true, 193: true, 195: true, 202: true,
}

// MessageHeader starts every product. (Class 1 User Figure 3-3)
type MessageHeader struct {
	MessageCode     int16
	DateOfMessage   uint16 // modified julian, 1 = 1 January 1970
	TimeOfMessage   uint32 // seconds after midnight
	LengthOfMessage uint32 // bytes, including this header
	SourceID        uint16
	DestinationID   uint16
	NumberOfBlocks  uint16
}

// Date the message was generated
func (h MessageHeader) Date() time.Time {
	return julianDate(h.DateOfMessage, time.Duration(h.TimeOfMessage)*time.Second)
}

func (h MessageHeader) String() string {
	return fmt.Sprintf("Message Code %d from %d (%d bytes, %d blocks)",
		h.MessageCode, h.SourceID, h.LengthOfMessage, h.NumberOfBlocks)
}

func (h MessageHeader) validate() []error {
	var errs []error
	if h.MessageCode < minimumProductCode {
		errs = append(errs, fmt.Errorf("%w: message code %d", ErrUnsupportedMessage, h.MessageCode))
	}
	if h.DateOfMessage < 1 {
		errs = append(errs, wire.Violation("invalid date of message: %d", h.DateOfMessage))
	}
	if h.TimeOfMessage > secondsPerDay {
		errs = append(errs, wire.Violation("invalid time of message: %d", h.TimeOfMessage))
	}
	if h.LengthOfMessage < productHeaderLength {
		errs = append(errs, wire.Violation("invalid length of message: %d", h.LengthOfMessage))
	}
	return errs
}

// ProductDescription follows the message header. Offsets are in halfwords
// from the start of the message header. (Class 1 User Figure 3-6)
type ProductDescription struct {
	BlockDivider          int16
	Latitude              int32 // thousandths of a degree
	Longitude             int32 // thousandths of a degree
	Height                int16 // feet above sea level
	ProductCode           int16
	OperationalMode       uint16
	VolumeCoveragePattern uint16
	SequenceNumber        int16
	VolumeScanNumber      uint16
	VolumeScanDate        uint16
	VolumeScanStartTime   uint32
	GenerationDate        uint16
	GenerationTime        uint32
	Parameter1            uint16
	Parameter2            uint16
	ElevationNumber       uint16
	Parameter3            uint16
	DataLevelThresholds   [16]uint16
	Parameter4            uint16
	Parameter5            uint16
	Parameter6            uint16
	Parameter7            uint16
	Parameter8            uint16
	Parameter9            uint16
	Parameter10           uint16
	Version               uint8
	SpotBlank             uint8
	OffsetToSymbology     uint32
	OffsetToGraphic       uint32
	OffsetToTabular       uint32
}

// LatitudeDegrees of the radar
func (d ProductDescription) LatitudeDegrees() float64 { return float64(d.Latitude) * 0.001 }

// LongitudeDegrees of the radar
func (d ProductDescription) LongitudeDegrees() float64 { return float64(d.Longitude) * 0.001 }

// VolumeScanStart is when the volume scan this product came from began
func (d ProductDescription) VolumeScanStart() time.Time {
	return julianDate(d.VolumeScanDate, time.Duration(d.VolumeScanStartTime)*time.Second)
}

// GeneratedAt is when the RPG generated the product
func (d ProductDescription) GeneratedAt() time.Time {
	return julianDate(d.GenerationDate, time.Duration(d.GenerationTime)*time.Second)
}

// Compressed reports whether the blocks after this description are bzip2
// compressed.
func (d ProductDescription) Compressed() bool {
	return compressedProducts[d.ProductCode] && d.Parameter8 == 1
}

// UncompressedSize of the blocks when Compressed
func (d ProductDescription) UncompressedSize() int {
	return int(uint32(d.Parameter9)<<16 | uint32(d.Parameter10))
}

func (d ProductDescription) validate(messageCode int16) []error {
	var errs []error
	if d.BlockDivider != -1 {
		errs = append(errs, wire.Violation("invalid product description divider: %d", d.BlockDivider))
	}
	if d.Latitude < -90000 || d.Latitude > 90000 {
		errs = append(errs, wire.Violation("invalid latitude: %d", d.Latitude))
	}
	if d.Longitude < -180000 || d.Longitude > 180000 {
		errs = append(errs, wire.Violation("invalid longitude: %d", d.Longitude))
	}
	if d.ProductCode != messageCode {
		errs = append(errs, wire.Violation("product code %d does not match message code %d", d.ProductCode, messageCode))
	}
	if d.VolumeScanStartTime > secondsPerDay || d.GenerationTime > secondsPerDay {
		errs = append(errs, wire.Violation("invalid volume scan %d or generation %d time", d.VolumeScanStartTime, d.GenerationTime))
	}
	return errs
}

// julianDate converts a modified julian date, where day 1 is 1 January 1970,
// into a time.
func julianDate(days uint16, sinceMidnight time.Duration) time.Time {
	return time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(int64(days)-1) * time.Hour * 24).
		Add(sinceMidnight)
}
