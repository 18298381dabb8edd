package archive2

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wsr88d/wire"
)

// Message is any decoded Level 2 message.
type Message interface {
	MessageHeader() MessageHeader
}

// UnhandledMessage is a message type this package does not decode. Its body
// has been skipped.
type UnhandledMessage struct {
	Header MessageHeader
}

// MessageHeader of the skipped message
func (m *UnhandledMessage) MessageHeader() MessageHeader {
	return m.Header
}

// NewMessage reads one framed Level 2 message: the legacy CTM header, the
// message header and the body, plus any padding that fills out a fixed size
// record. Multi-segment messages are reassembled before decoding. It returns
// io.EOF when the stream ends cleanly on a message boundary.
//
// A message is either returned complete or not at all; any failure leaves
// the cursor somewhere inside the message and the caller should stop reading
// this stream.
func NewMessage(c *wire.Cursor, build float32) (Message, error) {
	header, err := readMessageHeader(c)
	if err != nil {
		return nil, err
	}

	log := c.Logger().WithField("message", header.MessageType)
	log.Tracef("  %s", header)

	if err := header.validate(); err != nil {
		log.Warn(err)
		return nil, err
	}

	var msg Message
	switch header.MessageType {
	case MessageTypeRDAStatusData:
		msg, err = NewMessage2(header, c)
	case MessageTypeVolumeCoveragePattern:
		msg, err = NewMessage5(header, c)
	case MessageTypeClutterFilterMap:
		if header.NumMessageSegments > 1 {
			// the segments' padding is consumed while they are collected
			return readSegmentedClutterFilterMap(header, c, log)
		}
		msg, err = NewClutterFilterMap(header, c)
	case MessageTypeDigitalRadarData:
		msg, err = NewMessage31(header, c, build)
	default:
		m := c.Mark()
		c.Skip(int64(header.BodySize()))
		err = wire.Validate(c, m, header.BodySize(), log)
		msg = &UnhandledMessage{Header: header}
	}
	if err != nil {
		return nil, fmt.Errorf("message type %d: %w", header.MessageType, err)
	}

	if err := skipPadding(c, header, log); err != nil {
		return nil, fmt.Errorf("message type %d: %w", header.MessageType, err)
	}
	return msg, nil
}

func readMessageHeader(c *wire.Cursor) (MessageHeader, error) {
	header := MessageHeader{}
	m := c.Mark()

	// eat 12 bytes due to legacy compliance of CTM Header, these are all set to nil
	if !c.Skip(LegacyCTMHeaderLength) {
		if c.Since(m) == 0 {
			return header, io.EOF
		}
		return header, fmt.Errorf("%w: CTM header", wire.ErrTruncated)
	}

	if !c.ReadStruct(&header) {
		return header, fmt.Errorf("%w: message header", wire.ErrTruncated)
	}
	return header, nil
}

func skipPadding(c *wire.Cursor, header MessageHeader, log logrus.FieldLogger) error {
	if !header.fixedLength() {
		return nil
	}
	padding := recordBodyLength - header.BodySize()
	if padding <= 0 {
		return nil
	}
	m := c.Mark()
	c.Skip(int64(padding))
	return wire.Validate(c, m, padding, log)
}

// readSegmentedClutterFilterMap collects every segment of a clutter filter map
// and decodes the concatenated bodies.
func readSegmentedClutterFilterMap(first MessageHeader, c *wire.Cursor, log logrus.FieldLogger) (Message, error) {
	var buf bytes.Buffer
	header := first

	for segment := uint16(1); ; segment++ {
		if header.MessageType != MessageTypeClutterFilterMap ||
			header.NumMessageSegments != first.NumMessageSegments ||
			header.MessageSegmentNum != segment {
			err := wire.Violation("expected clutter filter map segment %d of %d, got %s",
				segment, first.NumMessageSegments, header)
			log.Warn(err)
			return nil, err
		}

		m := c.Mark()
		body := c.ReadBytes(header.BodySize())
		if err := wire.Validate(c, m, header.BodySize(), log); err != nil {
			return nil, fmt.Errorf("clutter filter map segment %d: %w", segment, err)
		}
		buf.Write(body)

		if err := skipPadding(c, header, log); err != nil {
			return nil, fmt.Errorf("clutter filter map segment %d: %w", segment, err)
		}

		if segment == first.NumMessageSegments {
			break
		}

		var err error
		header, err = readMessageHeader(c)
		if err == io.EOF {
			return nil, fmt.Errorf("%w: clutter filter map ended after segment %d", wire.ErrTruncated, segment)
		} else if err != nil {
			return nil, err
		}
		if err := header.validate(); err != nil {
			log.Warn(err)
			return nil, err
		}
	}

	log.Debugf("reassembled clutter filter map from %d segments (%d bytes)", first.NumMessageSegments, buf.Len())

	cfm := &ClutterFilterMap{Header: first, dataSize: buf.Len()}
	if err := cfm.Parse(wire.NewCursor(&buf, c.Logger())); err != nil {
		return nil, fmt.Errorf("message type %d: %w", MessageTypeClutterFilterMap, err)
	}
	return cfm, nil
}
