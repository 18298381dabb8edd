// Package level3 decodes NEXRAD Level 3 products: the message header and
// product description, the symbology, graphic and tabular blocks, and the
// packets inside them.
//
// The documents used and referenced in this package:
//   - Class 1 User: https://www.roc.noaa.gov/wsr88d/PublicDocs/ICDs/2620001Y.pdf
package level3

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wsr88d/wire"
)

const (
	startOfHeading = 0x01
	maxHeadingLine = 64
)

// WMOHeader is the abbreviated heading NOAAPort and the NCEI archive put in
// front of a product, eg
//
//	SDUS53 KLSX 041639
//	N0RLSX
type WMOHeader struct {
	SequenceNumber string
	DataType       string
	ICAO           string
	DateTime       string
	Designator     string
	AWIPSID        string
}

func (h WMOHeader) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s %s %s / %s", h.DataType, h.ICAO, h.DateTime, h.Designator, h.AWIPSID))
}

// File wrapper for a Level 3 product file
type File struct {
	WMOHeader *WMOHeader
	Message   *Message
}

// NewFile decodes a single product, with or without a WMO heading, from r. A
// nil log uses the standard logrus logger.
func NewFile(r io.Reader, log logrus.FieldLogger) (*File, error) {
	c := wire.NewCursor(r, log)
	log = c.Logger()

	f := &File{}
	first, ok := c.Peek16()
	if !ok {
		return nil, fmt.Errorf("%w: empty file", wire.ErrTruncated)
	}

	// product codes are small so a message header always starts with a zero byte
	if first>>8 != 0 {
		h, err := readWMOHeader(c)
		if err != nil {
			return nil, fmt.Errorf("WMO header: %w", err)
		}
		f.WMOHeader = h
		log.Info(h)
	}

	msg, err := NewMessage(c)
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no product message", wire.ErrTruncated)
	} else if err != nil {
		return nil, err
	}
	f.Message = msg

	log.Debugf("product %s with %s symbology packets",
		color.CyanString("%d", msg.Description.ProductCode), color.CyanString("%d", len(msg.Packets())))
	return f, nil
}

// NewFileFromPath opens and decodes filename.
func NewFileFromPath(filename string, log logrus.FieldLogger) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return NewFile(file, log)
}

func readWMOHeader(c *wire.Cursor) (*WMOHeader, error) {
	h := &WMOHeader{}

	line, err := readHeadingLine(c)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(line, string(rune(startOfHeading))) {
		if h.SequenceNumber, err = readHeadingLine(c); err != nil {
			return nil, err
		}
		if line, err = readHeadingLine(c); err != nil {
			return nil, err
		}
	}

	fields := strings.Fields(line)
	if len(fields) < 3 || len(fields[0]) != 6 || len(fields[1]) != 4 || len(fields[2]) != 6 {
		return nil, wire.Violation("invalid WMO abbreviated heading: %q", line)
	}
	h.DataType, h.ICAO, h.DateTime = fields[0], fields[1], fields[2]
	if len(fields) > 3 {
		h.Designator = fields[3]
	}

	if h.AWIPSID, err = readHeadingLine(c); err != nil {
		return nil, err
	}
	return h, nil
}

// readHeadingLine reads up to and including the next newline, trimming the
// carriage returns and spaces around it.
func readHeadingLine(c *wire.Cursor) (string, error) {
	var sb strings.Builder
	for sb.Len() < maxHeadingLine {
		b := c.ReadUint8()
		if c.EOF() {
			return "", fmt.Errorf("%w: WMO heading", wire.ErrTruncated)
		}
		if b == '\n' {
			return strings.TrimSpace(sb.String()), nil
		}
		sb.WriteByte(b)
	}
	return "", wire.Violation("WMO heading line longer than %d bytes", maxHeadingLine)
}
