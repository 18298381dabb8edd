package archive2

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wsr88d/wire"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func cursor(b []byte) *wire.Cursor {
	return wire.NewCursor(bytes.NewReader(b), quietLogger())
}

type byteWriter struct {
	bytes.Buffer
}

func (w *byteWriter) put(values ...interface{}) *byteWriter {
	for _, v := range values {
		if err := binary.Write(&w.Buffer, binary.BigEndian, v); err != nil {
			panic(err)
		}
	}
	return w
}

func headerFor(msgType uint8, bodySize int) MessageHeader {
	return MessageHeader{
		MessageSize:        uint16((bodySize + MessageHeaderLength) / 2),
		MessageType:        msgType,
		JulianDate:         18902,
		MillisOfDay:        3600000,
		NumMessageSegments: 1,
		MessageSegmentNum:  1,
	}
}

// frame wraps a body the way it appears inside an LDM record
func frame(h MessageHeader, body []byte) []byte {
	w := &byteWriter{}
	w.Write(make([]byte, LegacyCTMHeaderLength))
	w.put(h)
	w.Write(body)
	if h.fixedLength() {
		if pad := recordBodyLength - len(body); pad > 0 {
			w.Write(make([]byte, pad))
		}
	}
	return w.Bytes()
}

func clutterMapBody(date, minutes uint16, elevations int, zones []RangeZone) []byte {
	w := &byteWriter{}
	w.put(date, minutes, uint16(elevations))
	for e := 0; e < elevations; e++ {
		for a := 0; a < NumAzimuthSegments; a++ {
			w.put(uint16(len(zones)))
			for _, z := range zones {
				w.put(z)
			}
		}
	}
	return w.Bytes()
}

func statusBody(build uint16) []byte {
	w := &byteWriter{}
	w.put(RDAStatusData{
		RDAStatus:                2,
		VolumeCoveragePatternNum: 212,
		RDABuild:                 build,
	})
	// alarm code extension on newer builds
	w.Write(make([]byte, 46))
	return w.Bytes()
}

func vcpBody(cuts int) []byte {
	w := &byteWriter{}
	w.put(VolumeCoveragePatternHeader{
		PatternSize:               uint16((22 + cuts*46) / 2),
		PatternType:               2,
		PatternNumber:             212,
		NumberOfElevationCuts:     uint16(cuts),
		Version:                   1,
		DopplerVelocityResolution: 2,
		PulseWidth:                2,
	})
	for i := 0; i < cuts; i++ {
		w.put(ElevationCut{ElevationAngle: uint16(4 + i*8)})
	}
	return w.Bytes()
}

// radarDataBody builds a message 31 body with a RAD block and a REF moment
// holding gates, followed by four spare bytes.
func radarDataBody(gates []byte) []byte {
	header := Message31Header{
		CollectionTime:               60000,
		CollectionDate:               18902,
		AzimuthNumber:                1,
		AzimuthAngle:                 0.5,
		ElevationNumber:              1,
		ElevationAngle:               0.48,
		DataBlockCount:               2,
		AzimuthResolutionSpacingCode: 1,
	}
	copy(header.RadarIdentifier[:], "KMPX")

	headerSize := binary.Size(header) + 10*4
	radOffset := headerSize
	refOffset := radOffset + 4 + binary.Size(RadialData{})

	w := &byteWriter{}
	w.put(header)
	pointers := make([]uint32, 10)
	pointers[0] = uint32(radOffset)
	pointers[1] = uint32(refOffset)
	w.put(pointers)

	w.put(DataBlock{DataBlockType: [1]byte{'R'}, DataName: [3]byte{'R', 'A', 'D'}})
	w.put(RadialData{UnambiguousRange: 466, NyquistVelocity: 2800})

	w.put(DataBlock{DataBlockType: [1]byte{'D'}, DataName: [3]byte{'R', 'E', 'F'}})
	w.put(GenericDataMoment{
		NumberDataMomentGates:         uint16(len(gates)),
		DataMomentRange:               2125,
		DataMomentRangeSampleInterval: 250,
		DataWordSize:                  8,
		Scale:                         2,
		Offset:                        66,
	})
	w.Write(gates)
	w.Write(make([]byte, 4))
	return w.Bytes()
}
