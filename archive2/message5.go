package archive2

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jddeal/go-wsr88d/wire"
)

const maxElevationCuts = 32

// Message5 Volume Coverage Pattern Data (User 3.2.4.11)
type Message5 struct {
	Header MessageHeader
	VolumeCoveragePatternHeader
	ElevationCuts []ElevationCut
}

// VolumeCoveragePatternHeader is the fixed start of a message 5 body
type VolumeCoveragePatternHeader struct {
	PatternSize               uint16 // halfwords, this header and all elevation cuts
	PatternType               uint16
	PatternNumber             uint16
	NumberOfElevationCuts     uint16
	Version                   uint8
	ClutterMapGroupNumber     uint8
	DopplerVelocityResolution uint8 // 2 = 0.5 m/s, 4 = 1.0 m/s
	PulseWidth                uint8 // 2 = short, 4 = long
	Reserved                  [10]byte
}

// ElevationCut describes a single cut of the pattern (User Table XI-D)
type ElevationCut struct {
	ElevationAngle                    uint16 // coded angle, see Angle()
	ChannelConfiguration              uint8
	WaveformType                      uint8
	SuperResolutionControl            uint8
	SurveillancePRFNumber             uint8
	SurveillancePRFPulseCount         uint16
	AzimuthRate                       uint16
	ReflectivityThreshold             int16
	VelocityThreshold                 int16
	SpectrumWidthThreshold            int16
	DifferentialReflectivityThreshold int16
	DifferentialPhaseThreshold        int16
	CorrelationCoefficientThreshold   int16
	Sector1EdgeAngle                  uint16
	Sector1DopplerPRFNumber           uint16
	Sector1DopplerPRFPulseCount       uint16
	SupplementalData                  uint16
	Sector2EdgeAngle                  uint16
	Sector2DopplerPRFNumber           uint16
	Sector2DopplerPRFPulseCount       uint16
	EBCAngle                          uint16
	Sector3EdgeAngle                  uint16
	Sector3DopplerPRFNumber           uint16
	Sector3DopplerPRFPulseCount       uint16
	Reserved                          uint16
}

// Angle decodes the binary angle format used for elevations, in degrees.
func (e ElevationCut) Angle() float32 {
	return codedAngle(e.ElevationAngle)
}

// codedAngle converts the 16 bit binary angle, where bit 15 is 180 degrees and
// bit 3 is 0.043945 degrees (User Table III-A).
func codedAngle(v uint16) float32 {
	return float32(v>>3) * (180.0 / 4096.0)
}

// NewMessage5 decodes a volume coverage pattern message body.
func NewMessage5(header MessageHeader, c *wire.Cursor) (*Message5, error) {
	m5 := &Message5{Header: header}
	if err := m5.Parse(c); err != nil {
		return nil, err
	}
	return m5, nil
}

// MessageHeader of this message
func (m5 *Message5) MessageHeader() MessageHeader {
	return m5.Header
}

// Parse reads the pattern header and its elevation cuts. The pattern carries
// its own size which must agree with both the cut count and the message size.
func (m5 *Message5) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("message", MessageTypeVolumeCoveragePattern)
	log.Trace("Parsing Volume Coverage Pattern (Message Type 5)")

	mark := c.Mark()
	size := m5.Header.BodySize()

	var errs []error
	if !c.ReadStruct(&m5.VolumeCoveragePatternHeader) {
		log.Debug("Reached end of file")
	} else {
		cuts := int(m5.NumberOfElevationCuts)
		patternBytes := binary.Size(m5.VolumeCoveragePatternHeader) + cuts*binary.Size(ElevationCut{})

		if cuts < 1 || cuts > maxElevationCuts {
			errs = append(errs, wire.Violation("invalid number of elevation cuts: %d", cuts))
		}
		if int(m5.PatternSize)*2 != patternBytes {
			errs = append(errs, wire.Violation("pattern size %d does not match %d elevation cuts", m5.PatternSize, cuts))
		}
		if patternBytes > size {
			errs = append(errs, wire.Violation("pattern of %d bytes exceeds message of %d bytes", patternBytes, size))
		}
		for _, err := range errs {
			log.Warn(err)
		}

		if len(errs) == 0 {
			m5.ElevationCuts = make([]ElevationCut, cuts)
			for i := range m5.ElevationCuts {
				if !c.ReadStruct(&m5.ElevationCuts[i]) {
					break
				}
			}
		}
	}

	wire.Drain(c, mark, size)
	if err := wire.Validate(c, mark, size, log); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		m5.ElevationCuts = nil
		return errors.Join(errs...)
	}
	return nil
}

func (m5 *Message5) String() string {
	return fmt.Sprintf("Message 5 - VCP %d (%s) %d cuts",
		m5.PatternNumber, VCPDescription(m5.PatternNumber), len(m5.ElevationCuts))
}
