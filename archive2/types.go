// Package archive2 provides structs and functions for decoding NEXRAD Archive II files
// and the Level 2 messages carried inside them.
//
// The documents used and referenced in this package:
//   - RDA/RPG: https://www.roc.noaa.gov/wsr88d/PublicDocs/ICDs/2620002T.pdf (high level details)
//   - User: https://www.roc.noaa.gov/wsr88d/PublicDocs/ICDs/2620010H.pdf (bulk of the format)
package archive2

import (
	"fmt"
	"time"

	"github.com/jddeal/go-wsr88d/wire"
)

const (
	radialStatusStartOfElevationScan   = 0
	radialStatusIntermediateRadialData = 1
	radialStatusEndOfElevation         = 2
	radialStatusBeginningOfVolumeScan  = 3
	radialStatusEndOfVolumeScan        = 4
	radialStatusStartNewElevation      = 5

	// LegacyCTMHeaderLength sits in front of every message header
	LegacyCTMHeaderLength = 12

	// MessageHeaderLength is the size of MessageHeader on the wire
	MessageHeaderLength = 16

	// DefaultMetadataRecordLength is the size of every record regardless of its contents
	DefaultMetadataRecordLength = 2432

	// recordBodyLength is what remains of a fixed size record once both headers are read
	recordBodyLength = DefaultMetadataRecordLength - LegacyCTMHeaderLength - MessageHeaderLength
)

// Message types this package decodes (RDA/RPG Table II)
const (
	MessageTypeRDAStatusData         = 2
	MessageTypeVolumeCoveragePattern = 5
	MessageTypeClutterFilterMap      = 15
	MessageTypeModelData             = 29
	MessageTypeDigitalRadarData      = 31
)

// VolumeHeaderRecord for NEXRAD Archive II Data Streams (RDA/RPG 7.3.3)
type VolumeHeaderRecord struct {
	TapeFilename    [9]byte // eg "AR2V0006"
	ExtensionNumber [3]byte // eg "001" (cycles through 0-999)
	ModifiedDate    int32   // data's valid date (julian day since 1970)
	ModifiedTime    int32   // data's valid time (milliseconds past midnight)
	ICAO            [4]byte // radar identifier
}

// Filename for this archive file
func (vh VolumeHeaderRecord) Filename() string {
	return string(vh.TapeFilename[:]) + string(vh.ExtensionNumber[:])
}

// Date and time this data is valid for
func (vh VolumeHeaderRecord) Date() time.Time {
	return julianDate(int64(vh.ModifiedDate), time.Duration(vh.ModifiedTime)*time.Millisecond)
}

// LDMRecord (Local Data Manager) wraps every radar message in bzip2 compression. (RDA/RPG 7.3.4)
type LDMRecord struct {
	Size           int32
	MetaDataRecord []byte
}

// MessageHeader provides a high level description for a particular message. (User 3.2.4.1)
type MessageHeader struct {
	MessageSize         uint16 // halfwords, including this header
	RDARedundantChannel uint8
	MessageType         uint8
	IDSequenceNumber    uint16
	JulianDate          uint16
	MillisOfDay         uint32
	NumMessageSegments  uint16
	MessageSegmentNum   uint16
}

// BodySize is the number of bytes that follow the header for this message (or segment).
func (h MessageHeader) BodySize() int {
	return int(h.MessageSize)*2 - MessageHeaderLength
}

// Date the message was generated
func (h MessageHeader) Date() time.Time {
	return julianDate(int64(h.JulianDate), time.Duration(h.MillisOfDay)*time.Millisecond)
}

func (h MessageHeader) String() string {
	return fmt.Sprintf("Message Type %d (segment %d/%d size: %d)",
		h.MessageType, h.MessageSegmentNum, h.NumMessageSegments, h.MessageSize)
}

// fixedLength reports whether messages of this type are padded out to a full
// DefaultMetadataRecordLength record.
func (h MessageHeader) fixedLength() bool {
	return h.MessageType != MessageTypeDigitalRadarData && h.MessageType != MessageTypeModelData
}

func (h MessageHeader) validate() error {
	if h.BodySize() < 0 {
		return wire.Violation("invalid message size: %d", h.MessageSize)
	}
	if h.fixedLength() && h.BodySize() > recordBodyLength && h.NumMessageSegments <= 1 {
		return wire.Violation("message size %d exceeds record", h.MessageSize)
	}
	if h.NumMessageSegments > 1 && (h.MessageSegmentNum < 1 || h.MessageSegmentNum > h.NumMessageSegments) {
		return wire.Violation("invalid segment number %d of %d", h.MessageSegmentNum, h.NumMessageSegments)
	}
	return nil
}

// julianDate converts the NEXRAD modified julian date, where day 1 is
// 1 January 1970, into a time.
func julianDate(days int64, sinceMidnight time.Duration) time.Time {
	return time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(days-1) * time.Hour * 24).
		Add(sinceMidnight)
}

// VCPDescription names the operating mode a volume coverage pattern belongs to.
func VCPDescription(vcp uint16) string {
	switch vcp {
	case 31, 32, 35, 90:
		return "Clear Air Mode"
	case 11, 12, 21, 80, 112, 121, 211, 212, 215, 221:
		return "Precipitation Mode"
	default:
		return "?"
	}
}

// See the individual messageXX.go files for message specific types.
