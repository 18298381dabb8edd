package archive2

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dsnet/compress/bzip2"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wsr88d/wire"
)

// defaultBuild is assumed until a metadata record supplies an RDA status message
const defaultBuild = 19

// minimumBuild is the oldest RDA build whose message 31 layout is decoded
const minimumBuild = 18

// Archive2 wrapper for processed archive 2 data files.
type Archive2 struct {
	VolumeHeader VolumeHeaderRecord

	mtx            sync.Mutex
	ElevationScans map[int][]*Message31

	// the metadata record will contain a single Message Type 2 which comes in handy
	// in other parts of the decoding for version-specific handling.
	metadataStatusMessage *Message2

	// VolumeCoveragePattern and ClutterFilterMap come from the metadata record
	VolumeCoveragePattern *Message5
	ClutterFilterMap      *ClutterFilterMap

	// MessageCounts tallies every message decoded, by type
	MessageCounts map[uint8]int

	log logrus.FieldLogger
}

// Build returns the RDA build number from the metadata record.
func (ar2 *Archive2) Build() float32 {
	if ar2.metadataStatusMessage == nil {
		return defaultBuild
	}
	return ar2.metadataStatusMessage.GetBuildNumber()
}

// StatusMessage returns the first RDA status message seen, if any.
func (ar2 *Archive2) StatusMessage() *Message2 {
	return ar2.metadataStatusMessage
}

// AddFromLDMRecord reads one bzip2 compressed LDM record and decodes every
// message inside it. A message that fails to decode ends the record with an
// error since message boundaries after it can not be trusted.
func (ar2 *Archive2) AddFromLDMRecord(reader io.Reader) (int32, error) {
	ldm := LDMRecord{}

	// read in size of LDM record
	err := binary.Read(reader, binary.BigEndian, &ldm.Size)
	if err != nil {
		return 0, err
	}

	// the size can be negative, but you just interpret it as positive (RDA/RPG 7.3.4)
	if ldm.Size < 0 {
		ldm.Size = -ldm.Size
	}

	ar2.log.Debugf("LDM Compressed Record (%s bytes)", color.CyanString("%d", ldm.Size))

	compressed := io.LimitReader(reader, int64(ldm.Size))
	bzipReader, err := bzip2.NewReader(compressed, nil)
	if err != nil {
		return ldm.Size, err
	}
	defer bzipReader.Close()

	c := wire.NewCursor(bzipReader, ar2.log)

	// read until no more messages are available
	messageCounts := map[uint8]int{}

	for {
		msg, err := NewMessage(c, ar2.Build())
		if err == io.EOF {
			break
		} else if err != nil {
			return ldm.Size, err
		}

		header := msg.MessageHeader()

		switch m := msg.(type) {
		case *Message2:
			if m.GetBuildNumber() < minimumBuild {
				return ldm.Size, fmt.Errorf("This file is build %.2f. Only build 19.00 is well supported. Try a more recent file.", m.GetBuildNumber())
			}

			// keep a reference around
			if ar2.metadataStatusMessage == nil {
				ar2.metadataStatusMessage = m
			}

		case *Message5:
			if ar2.VolumeCoveragePattern == nil {
				ar2.VolumeCoveragePattern = m
				ar2.log.Debug(m)
			}

		case *ClutterFilterMap:
			ar2.ClutterFilterMap = m
			ar2.log.Debug(m)

		case *Message31:
			// instead of having every message dump data out, we'll just look at the 0-1 degree data
			if m.Header.AzimuthAngle < 1 {
				ar2.log.WithField("elevation", m.Header.ElevationNumber).Trace(m.Header)
			}

			ar2.mtx.Lock()
			ar2.ElevationScans[int(m.Header.ElevationNumber)] = append(ar2.ElevationScans[int(m.Header.ElevationNumber)], m)
			ar2.mtx.Unlock()
		}

		messageCounts[header.MessageType]++
	}

	// anything left in the record after the compressed stream is discarded
	if _, err := io.Copy(io.Discard, compressed); err != nil {
		return ldm.Size, err
	}

	// helpful for debugging
	totalMessages := 0
	ar2.mtx.Lock()
	for msgType, count := range messageCounts {
		totalMessages += count
		ar2.MessageCounts[msgType] += count
	}
	ar2.mtx.Unlock()
	ar2.log.Debugf("  found %s messages in this record", color.CyanString("%d", totalMessages))
	for msgType, count := range messageCounts {
		ar2.log.Debugf("    type %02d had %d messages", msgType, count)
	}

	return ldm.Size, nil
}

// NewArchive2 returns a new Archive2 from the provided reader. A nil log uses
// the standard logrus logger.
func NewArchive2(reader io.Reader, log logrus.FieldLogger) (*Archive2, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	ar2 := Archive2{
		ElevationScans: make(map[int][]*Message31),
		VolumeHeader:   VolumeHeaderRecord{},
		MessageCounts:  make(map[uint8]int),
		log:            log,
	}

	// the gist of the file format is documented in RDA/RPG 7.3.6
	// but in short:
	//  - read in 24 byte Volume Header
	//  - read in 1 LDM Compressed Record - this is the metadata record
	//  - read in N LDM Compressed Records - these are the data records

	// read in the volume header record
	if err := binary.Read(reader, binary.BigEndian, &ar2.VolumeHeader); err != nil {
		return nil, fmt.Errorf("volume header: %w", err)
	}
	log.Info(ar2.VolumeHeader.Filename())

	// read until no more LDM records are available
	LDMCount := 0
	for {
		_, err := ar2.AddFromLDMRecord(reader)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("LDM record %d: %w", LDMCount, err)
		}

		LDMCount++
	}
	log.Debugf("decoded %s LDM records", color.CyanString("%d", LDMCount))

	return &ar2, nil
}

// NewArchive2FromFile opens and decodes filename.
func NewArchive2FromFile(filename string, log logrus.FieldLogger) (*Archive2, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return NewArchive2(file, log)
}
