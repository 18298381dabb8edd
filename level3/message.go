package level3

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dsnet/compress/bzip2"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wsr88d/wire"
)

// State of a message as it is framed
type State int

// States a message moves through while it is framed. Complete and Invalid
// are terminal.
const (
	StateAwaitingHeader State = iota
	StateHeaderParsed
	StateDecodingBlocks
	StateComplete
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateAwaitingHeader:
		return "AwaitingHeader"
	case StateHeaderParsed:
		return "HeaderParsed"
	case StateDecodingBlocks:
		return "DecodingBlocks"
	case StateComplete:
		return "Complete"
	case StateInvalid:
		return "Invalid"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Message is one fully decoded product.
type Message struct {
	Header      MessageHeader
	Description ProductDescription

	// nil when the product does not carry the block
	Symbology *SymbologyBlock
	Graphic   *GraphicAlphanumericBlock
	Tabular   *TabularAlphanumericBlock
}

// Packets returns every symbology packet in layer order
func (m *Message) Packets() []Packet {
	if m.Symbology == nil {
		return nil
	}
	return m.Symbology.Packets()
}

// frame carries a message through its states. Nothing it holds is exposed
// until it reaches StateComplete.
type frame struct {
	c     *wire.Cursor
	log   logrus.FieldLogger
	mark  wire.Mark
	state State
	msg   Message
}

func (f *frame) fail(err error) error {
	f.state = StateInvalid
	f.log.WithField("state", f.state).Warn(err)
	return err
}

// NewMessage frames the product message at the cursor. It returns nil and an
// error unless every declared block decodes and the bytes used match the
// declared length of the message.
func NewMessage(c *wire.Cursor) (*Message, error) {
	f := &frame{
		c:     c,
		log:   c.Logger().WithField("level", 3),
		mark:  c.Mark(),
		state: StateAwaitingHeader,
	}

	if err := f.readHeader(); err != nil {
		return nil, err
	}
	if err := f.decodeBlocks(); err != nil {
		return nil, err
	}

	f.state = StateComplete
	f.log.Debugf("%s: product %d complete", f.msg.Header, f.msg.Description.ProductCode)
	return &f.msg, nil
}

// readHeader moves AwaitingHeader to HeaderParsed. A header that is read in
// full but out of range still has the rest of its declared length consumed.
func (f *frame) readHeader() error {
	if !f.c.ReadStruct(&f.msg.Header) {
		if f.c.Since(f.mark) == 0 {
			return io.EOF
		}
		return f.fail(fmt.Errorf("%w: message header", wire.ErrTruncated))
	}

	errs := f.msg.Header.validate()
	if !f.c.ReadStruct(&f.msg.Description) {
		return f.fail(errors.Join(append(errs, fmt.Errorf("%w: product description", wire.ErrTruncated))...))
	}
	if len(errs) == 0 {
		errs = f.msg.Description.validate(f.msg.Header.MessageCode)
	}

	if len(errs) > 0 {
		if f.msg.Header.LengthOfMessage >= productHeaderLength {
			wire.Drain(f.c, f.mark, int(f.msg.Header.LengthOfMessage))
		}
		f.log.Debugf("consumed %d bytes of rejected message", f.c.Since(f.mark))
		return f.fail(errors.Join(errs...))
	}

	f.state = StateHeaderParsed
	return nil
}

type blockRef struct {
	offset int
	id     int
}

// decodeBlocks moves HeaderParsed to DecodingBlocks and visits every block
// in ascending offset order.
func (f *frame) decodeBlocks() error {
	d := f.msg.Description
	end := int(f.msg.Header.LengthOfMessage)
	body, bodyMark := f.c, f.mark

	if d.Compressed() {
		var err error
		body, err = f.decompress()
		if err != nil {
			return f.fail(err)
		}
		bodyMark = 0
		end = productHeaderLength + d.UncompressedSize()
	}
	f.state = StateDecodingBlocks

	var blocks []blockRef
	for id, offset := range map[int]uint32{
		BlockIDSymbology: d.OffsetToSymbology,
		BlockIDGraphic:   d.OffsetToGraphic,
		BlockIDTabular:   d.OffsetToTabular,
	} {
		if offset != 0 {
			blocks = append(blocks, blockRef{offset: int(offset) * 2, id: id})
		}
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].offset < blocks[j].offset })

	for _, b := range blocks {
		at := body.Since(bodyMark)
		if b.offset < at || b.offset >= end {
			return f.fail(wire.Violation("block %d offset %d outside %d..%d", b.id, b.offset, at, end))
		}
		if !body.Skip(int64(b.offset - at)) {
			return f.fail(fmt.Errorf("%w: skipping to block %d", wire.ErrTruncated, b.id))
		}

		var err error
		switch b.id {
		case BlockIDSymbology:
			f.msg.Symbology = &SymbologyBlock{}
			err = f.msg.Symbology.Parse(body)
		case BlockIDGraphic:
			f.msg.Graphic = &GraphicAlphanumericBlock{}
			err = f.msg.Graphic.Parse(body)
		case BlockIDTabular:
			f.msg.Tabular = &TabularAlphanumericBlock{}
			err = f.msg.Tabular.Parse(body)
		}
		if err != nil {
			return f.fail(fmt.Errorf("block %d: %w", b.id, err))
		}
	}

	if err := wire.Validate(body, bodyMark, end, f.log); err != nil {
		return f.fail(err)
	}
	return nil
}

// decompress reads the bzip2 stream that makes up the rest of the message
// and returns a cursor over it that continues counting from the end of the
// product description.
func (f *frame) decompress() (*wire.Cursor, error) {
	d := f.msg.Description
	compressed := f.c.ReadBytes(int(f.msg.Header.LengthOfMessage) - productHeaderLength)
	if compressed == nil {
		return nil, fmt.Errorf("%w: compressed product", wire.ErrTruncated)
	}

	bz, err := bzip2.NewReader(bytes.NewReader(compressed), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressedProduct, err)
	}
	defer bz.Close()

	data, err := io.ReadAll(io.LimitReader(bz, int64(d.UncompressedSize())+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressedProduct, err)
	}
	if len(data) != d.UncompressedSize() {
		return nil, fmt.Errorf("%w: decompressed %d bytes, expected %d",
			wire.ErrLengthMismatch, len(data), d.UncompressedSize())
	}
	f.log.Debugf("decompressed %d bytes to %d", len(compressed), len(data))

	return wire.NewCursorAt(bytes.NewReader(data), productHeaderLength, f.c.Logger()), nil
}
