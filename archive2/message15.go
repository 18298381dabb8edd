package archive2

import (
	"errors"
	"fmt"
	"time"

	"github.com/jddeal/go-wsr88d/wire"
)

const (
	// NumAzimuthSegments is the number of 1 degree azimuth segments in every
	// elevation segment of a clutter filter map
	NumAzimuthSegments = 360

	maxElevationSegments = 5
	maxRangeZones        = 20
	maxOpCode            = 2
	maxEndRange          = 511
	minutesPerDay        = 1440
)

// Clutter filter op codes
const (
	OpCodeBypassFilterForced  = 0
	OpCodeBypassMapInControl  = 1
	OpCodeClutterFilterForced = 2
)

// RangeZone is one range interval of an azimuth segment.
type RangeZone struct {
	OpCode   uint16
	EndRange uint16 // km
}

// ClutterFilterMap Clutter Filter Map (User 3.2.4.15, Message Type 15)
type ClutterFilterMap struct {
	Header MessageHeader

	// set when the map was reassembled from several segments
	dataSize int

	mapGenerationDate uint16
	mapGenerationTime uint16

	// indexed [elevation][azimuth][zone]
	rangeZones [][][]RangeZone
}

// NewClutterFilterMap decodes a single segment clutter filter map body.
func NewClutterFilterMap(header MessageHeader, c *wire.Cursor) (*ClutterFilterMap, error) {
	cfm := &ClutterFilterMap{Header: header}
	if err := cfm.Parse(c); err != nil {
		return nil, err
	}
	return cfm, nil
}

// MessageHeader of this message (the first segment's when reassembled)
func (cfm *ClutterFilterMap) MessageHeader() MessageHeader {
	return cfm.Header
}

// DataSize is the number of body bytes this map occupies.
func (cfm *ClutterFilterMap) DataSize() int {
	if cfm.dataSize > 0 {
		return cfm.dataSize
	}
	return cfm.Header.BodySize()
}

// MapGenerationDate in days since 1 January 1970 (day 1)
func (cfm *ClutterFilterMap) MapGenerationDate() uint16 {
	return cfm.mapGenerationDate
}

// MapGenerationTime in minutes past midnight GMT
func (cfm *ClutterFilterMap) MapGenerationTime() uint16 {
	return cfm.mapGenerationTime
}

// GeneratedAt combines the generation date and time
func (cfm *ClutterFilterMap) GeneratedAt() time.Time {
	return julianDate(int64(cfm.mapGenerationDate), time.Duration(cfm.mapGenerationTime)*time.Minute)
}

// NumberOfElevationSegments is 0 for a map that failed to parse
func (cfm *ClutterFilterMap) NumberOfElevationSegments() uint16 {
	return uint16(len(cfm.rangeZones))
}

// NumberOfRangeZones for elevation segment e and azimuth segment a
func (cfm *ClutterFilterMap) NumberOfRangeZones(e, a uint16) uint16 {
	return uint16(len(cfm.rangeZones[e][a]))
}

// OpCode for elevation segment e, azimuth segment a and range zone z
func (cfm *ClutterFilterMap) OpCode(e, a, z uint16) uint16 {
	return cfm.rangeZones[e][a][z].OpCode
}

// EndRange in km for elevation segment e, azimuth segment a and range zone z
func (cfm *ClutterFilterMap) EndRange(e, a, z uint16) uint16 {
	return cfm.rangeZones[e][a][z].EndRange
}

// RangeZones returns a copy of the zones of elevation segment e and azimuth segment a
func (cfm *ClutterFilterMap) RangeZones(e, a uint16) []RangeZone {
	return append([]RangeZone(nil), cfm.rangeZones[e][a]...)
}

// Parse reads the map. Any out of range value anywhere in the map rejects
// the whole map; the remaining declared bytes are still consumed.
func (cfm *ClutterFilterMap) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("message", MessageTypeClutterFilterMap)
	log.Trace("Parsing Clutter Filter Map (Message Type 15)")

	var errs []error
	invalid := func(err error) {
		log.Warn(err)
		errs = append(errs, err)
	}

	mark := c.Mark()
	size := cfm.DataSize()

	cfm.mapGenerationDate = c.ReadUint16()
	cfm.mapGenerationTime = c.ReadUint16()
	numElevationSegments := c.ReadUint16()

	if c.EOF() {
		log.Debug("Reached end of file")
	} else {
		if cfm.mapGenerationDate < 1 {
			invalid(wire.Violation("invalid date: %d", cfm.mapGenerationDate))
		}
		if cfm.mapGenerationTime > minutesPerDay {
			invalid(wire.Violation("invalid time: %d", cfm.mapGenerationTime))
		}
		if numElevationSegments < 1 || numElevationSegments > maxElevationSegments {
			invalid(wire.Violation("invalid number of elevation segments: %d", numElevationSegments))
		}
	}

	if len(errs) == 0 && !c.EOF() {
		cfm.rangeZones = make([][][]RangeZone, numElevationSegments)
		cfm.readSegments(c, invalid)
	}

	wire.Drain(c, mark, size)
	if err := wire.Validate(c, mark, size, log); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		// release what was built rather than holding a large sparse map
		cfm.rangeZones = nil
		return errors.Join(errs...)
	}
	return nil
}

func (cfm *ClutterFilterMap) readSegments(c *wire.Cursor, invalid func(error)) {
	for e := range cfm.rangeZones {
		cfm.rangeZones[e] = make([][]RangeZone, NumAzimuthSegments)

		for a := range cfm.rangeZones[e] {
			numRangeZones := c.ReadUint16()
			if c.EOF() {
				return
			}
			if numRangeZones < 1 || numRangeZones > maxRangeZones {
				invalid(wire.Violation("invalid number of range zones: %d (elevation %d azimuth %d)", numRangeZones, e, a))
				return
			}

			zones := make([]RangeZone, numRangeZones)
			for z := range zones {
				zones[z].OpCode = c.ReadUint16()
				zones[z].EndRange = c.ReadUint16()
				if c.EOF() {
					return
				}

				if zones[z].OpCode > maxOpCode {
					invalid(wire.Violation("invalid op code: %d", zones[z].OpCode))
					return
				}
				if zones[z].EndRange > maxEndRange {
					invalid(wire.Violation("invalid end range: %d", zones[z].EndRange))
					return
				}
			}
			cfm.rangeZones[e][a] = zones
		}
	}
}

func (cfm *ClutterFilterMap) String() string {
	return fmt.Sprintf("Message 15 - clutter filter map generated %v with %d elevation segments",
		cfm.GeneratedAt(), cfm.NumberOfElevationSegments())
}
