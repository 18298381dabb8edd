package archive2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/jddeal/go-wsr88d/wire"
)

var (
	pointersPerBuild = map[float32]int{
		18: 9,
		19: 10,
	}
)

// Message31Header is the non-data portions of Message31 (User 3.2.4.17)
type Message31Header struct {
	RadarIdentifier              [4]byte // ICAO (eg KMPX for Minneapolis)
	CollectionTime               uint32  // CollectionTime Radial data collection time in milliseconds past midnight GMT
	CollectionDate               uint16  // CollectionDate Current Julian date - 2440586.5
	AzimuthNumber                uint16  // AzimuthNumber Radial number within elevation scan
	AzimuthAngle                 float32 // AzimuthAngle Azimuth angle at which radial data was collected
	CompressionIndicator         uint8   // CompressionIndicator Indicates if message type 31 is compressed and what method of compression is used. The Data Header Block is not compressed.
	Spare                        uint8   // unused
	RadialLength                 uint16  // RadialLength Uncompressed length of the radial in bytes including the Data Header block length
	AzimuthResolutionSpacingCode uint8   // AzimuthResolutionSpacing Code for the Azimuthal spacing between adjacent radials. 1 = .5 degrees, 2 = 1degree
	RadialStatus                 uint8   // RadialStatus Radial Status
	ElevationNumber              uint8   // ElevationNumber Elevation number within volume scan
	CutSectorNumber              uint8   // CutSectorNumber Sector Number within cut
	ElevationAngle               float32 // ElevationAngle Elevation angle at which radial radar data was collected
	RadialSpotBlankingStatus     uint8   // RadialSpotBlankingStatus Spot blanking status for current radial, elevation scan and volume scan
	AzimuthIndexingMode          uint8   // AzimuthIndexingMode Azimuth indexing value (Set if azimuth angle is keyed to constant angles)
	DataBlockCount               uint16  // Number of data blocks used
	// the data block pointers follow, see pointersPerBuild
}

func (h Message31Header) String() string {
	return fmt.Sprintf("Message 31 - %s @ %v deg=%.2f tilt=%.2f",
		string(h.RadarIdentifier[:]),
		h.Date(),
		h.AzimuthAngle,
		h.ElevationAngle,
	)
}

// Date and time this data is valid for
func (h Message31Header) Date() time.Time {
	return julianDate(int64(h.CollectionDate), time.Duration(h.CollectionTime)*time.Millisecond)
}

// Message31 - Digital Radar Data Generic Format (User 3.2.4.17)
type Message31 struct {
	MessageHeaderRecord MessageHeader

	Header        Message31Header
	VolumeData    VolumeData
	ElevationData ElevationData
	RadialData    RadialData
	REFData       DataMoment
	VELData       DataMoment
	SWData        DataMoment
	ZDRData       DataMoment
	PHIData       DataMoment
	RHOData       DataMoment
	CFPData       DataMoment
}

// NewMessage31 decodes a digital radar data message body.
func NewMessage31(header MessageHeader, c *wire.Cursor, build float32) (*Message31, error) {
	m31 := Message31{
		MessageHeaderRecord: header,
	}
	if err := m31.Parse(c, build); err != nil {
		return nil, err
	}
	return &m31, nil
}

// MessageHeader of this message
func (m31 *Message31) MessageHeader() MessageHeader {
	return m31.MessageHeaderRecord
}

// Parse walks the data blocks through their pointers, which are relative to
// the start of the data header block. Pointers may only move forward and must
// land inside the message.
func (m31 *Message31) Parse(c *wire.Cursor, build float32) error {
	log := c.Logger().WithField("message", MessageTypeDigitalRadarData)

	mark := c.Mark()
	size := m31.MessageHeaderRecord.BodySize()

	fail := func(err error) error {
		log.Warn(err)
		wire.Drain(c, mark, size)
		if verr := wire.Validate(c, mark, size, log); verr != nil {
			return errors.Join(err, verr)
		}
		return err
	}

	if !c.ReadStruct(&m31.Header) {
		return wire.Validate(c, mark, size, log)
	}

	// the number of data block pointers is build dependent
	pointerCount, ok := pointersPerBuild[build]
	if !ok {
		pointerCount = pointersPerBuild[19]
		if build < 19 {
			pointerCount = pointersPerBuild[18]
		}
	}
	if m31.Header.DataBlockCount > uint16(pointerCount) {
		return fail(wire.Violation("data block count %d exceeds %d pointers", m31.Header.DataBlockCount, pointerCount))
	}

	pointers := make([]uint32, pointerCount)
	for i := range pointers {
		pointers[i] = c.ReadUint32()
	}
	if c.EOF() {
		return wire.Validate(c, mark, size, log)
	}

	for i := uint16(0); i < m31.Header.DataBlockCount; i++ {
		offset := int(pointers[i])
		if offset < c.Since(mark) || offset >= size {
			return fail(wire.Violation("data block pointer %d out of order or range: %d", i, offset))
		}
		c.Skip(int64(offset - c.Since(mark)))

		d := DataBlock{}
		if !c.ReadStruct(&d) {
			break
		}

		blockName := string(d.DataName[:])
		switch blockName {
		case "VOL":
			c.ReadStruct(&m31.VolumeData)
		case "ELV":
			c.ReadStruct(&m31.ElevationData)
		case "RAD":
			c.ReadStruct(&m31.RadialData)
		case "REF", "VEL", "SW ", "ZDR", "PHI", "RHO", "CFP":
			m := GenericDataMoment{}
			c.ReadStruct(&m)

			if m.DataWordSize != 8 && m.DataWordSize != 16 {
				return fail(wire.Violation("%s data word size: %d", blockName, m.DataWordSize))
			}

			// the data moment length is determined with (num gates * word size) / 8.
			dataMomentSize := int(m.NumberDataMomentGates) * int(m.DataWordSize) / 8
			moment := DataMoment{
				GenericDataMoment: m,
				Data:              c.ReadBytes(dataMomentSize),
			}

			switch blockName {
			case "REF":
				m31.REFData = moment
			case "VEL":
				m31.VELData = moment
			case "SW ":
				m31.SWData = moment
			case "ZDR":
				m31.ZDRData = moment
			case "PHI":
				m31.PHIData = moment
			case "RHO":
				m31.RHOData = moment
			case "CFP":
				m31.CFPData = moment
			}
		default:
			return fail(wire.Violation("data block - unknown type '%s'", blockName))
		}

		if c.EOF() {
			break
		}
		if c.Since(mark) > size {
			return wire.Validate(c, mark, size, log)
		}
	}

	// spare bytes may follow the last block
	wire.Drain(c, mark, size)
	return wire.Validate(c, mark, size, log)
}

// AzimuthResolutionSpacing returns the spacing in degrees
func (h *Message31) AzimuthResolutionSpacing() float32 {
	if h.Header.AzimuthResolutionSpacingCode == 1 {
		return 0.5
	}
	return 1
}

// DataBlock is sort of like the header for the blocks of data (GenericDataMoment, VolumeData, etc). These 4 bytes are
// normally found at the top of tables XVII-[BEFH] (User 3.2.4.17)
type DataBlock struct {
	DataBlockType [1]byte
	DataName      [3]byte
}

// GenericDataMoment is a generic data wrapper for momentary data. ex: REF, VEL, SW data (User 3.2.4.17.2)
type GenericDataMoment struct {
	// data block type and data moment name are retrieved separately
	Reserved                      uint32  //
	NumberDataMomentGates         uint16  // NumberDataMomentGates Number of data moment gates for current radial
	DataMomentRange               uint16  // DataMomentRange Range to center of first range gate
	DataMomentRangeSampleInterval uint16  // DataMomentRangeSampleInterval Size of data moment sample interval
	TOVER                         uint16  // TOVER Threshold parameter which specifies the minimum difference in echo power between two resolution gates for them not to be labeled "overlayed"
	SNRThreshold                  uint16  // SNRThreshold SNR threshold for valid data
	ControlFlags                  uint8   // ControlFlags Indicates special control features
	DataWordSize                  uint8   // DataWordSize Number of bits (DWS) used for storing data for each Data Moment gate
	Scale                         float32 // Scale value used to convert Data Moments from integer to floating point data
	Offset                        float32 // Offset value used to convert Data Moments from integer to floating point data
}

// VolumeData wraps information about the Volume being extracted (User 3.2.4.17.3)
type VolumeData struct {
	// data block type and data moment name are retrieved separately
	LRTUP                          uint16 // LRTUP Size of data block in bytes
	VersionMajor                   uint8
	VersionMinor                   uint8
	Lat                            float32
	Long                           float32
	SiteHeight                     uint16
	FeedhornHeight                 uint16
	CalibrationConstant            float32
	SHVTXPowerHor                  float32
	SHVTXPowerVer                  float32
	SystemDifferentialReflectivity float32
	InitialSystemDifferentialPhase float32
	VolumeCoveragePatternNumber    uint16
	ProcessingStatus               uint16
}

// ElevationData wraps Message 31 elevation data (User 3.2.4.17.4)
type ElevationData struct {
	// data block type and data moment name are retrieved separately
	LRTUP      uint16  // LRTUP Size of data block in bytes
	ATMOS      [2]byte // ATMOS Atmospheric Attenuation Factor
	CalibConst float32 // CalibConst Scaling constant used by the Signal Processor for this elevation to calculate reflectivity
}

// RadialData wraps Message 31 radial data (User 3.2.4.17.5)
type RadialData struct {
	// data block type and data moment name are retrieved separately
	LRTUP              uint16 // LRTUP Size of data block in bytes
	UnambiguousRange   uint16 // UnambiguousRange, Interval Size
	NoiseLevelHorz     float32
	NoiseLevelVert     float32
	NyquistVelocity    uint16
	Spares             [2]byte
	CalibConstHorzChan float32
	CalibConstVertChan float32
}

// DataMoment wraps all Momentary data records. ex: REF, VEL, SW data. Data interpretation provided by User 3.2.4.17.6.
type DataMoment struct {
	GenericDataMoment
	Data []byte
}

const (
	// MomentDataBelowThreshold ...
	MomentDataBelowThreshold = 999

	// MomentDataFolded ...
	MomentDataFolded = 998
)

// Gates returns the raw gate values, unpacking 16 bit words when DataWordSize is 16.
func (d *DataMoment) Gates() []uint16 {
	if d.DataWordSize == 16 {
		gates := make([]uint16, len(d.Data)/2)
		for idx := range gates {
			gates[idx] = binary.BigEndian.Uint16(d.Data[idx*2:])
		}
		return gates
	}
	gates := make([]uint16, len(d.Data))
	for idx, val := range d.Data {
		gates[idx] = uint16(val)
	}
	return gates
}

// ScaledData automatically scales the nexrad moment values to their actual values.
// For all data moment integer values N = 0 indicates received signal is below
// threshold and N = 1 indicates range folded data. Actual data range is N = 2
// through 255, or 1023 for data resolution size 8, and 10 bits respectively.
func (d *DataMoment) ScaledData() []float32 {
	gates := d.Gates()
	scaledData := make([]float32, len(gates))
	for idx, val := range gates {
		if val == 0 {
			// below threshold
			scaledData[idx] = MomentDataBelowThreshold
		} else if val == 1 {
			// range folded
			scaledData[idx] = MomentDataFolded
		} else {
			scaledData[idx] = scaleUint(val, d.GenericDataMoment.Offset, d.GenericDataMoment.Scale)
		}
	}
	return scaledData
}

// scaleUint converts unsigned integer data that can be converted to floating point
// data using the Scale and Offset fields, i.e., F = (N - OFFSET) / SCALE where
// N is the integer data value and F is the resulting floating point value. A
// scale value of 0 indicates floating point moment data for each range gate.
func scaleUint(n uint16, offset, scale float32) float32 {
	val := float32(n)
	if scale == 0 {
		return val
	}
	return (val - offset) / scale
}
