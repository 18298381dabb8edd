package level3

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wsr88d/wire"
)

// Block IDs (Class 1 User Figures 3-6, 3-7)
const (
	BlockIDSymbology = 1
	BlockIDGraphic   = 2
	BlockIDTabular   = 3

	blockDivider     = -1
	blockHeaderSize  = 8
	maxLayers        = 18
	maxPages         = 48
	maxLineLength    = 80
	endOfPage        = -1
	tabularPreamble  = 4
	tabularHeaderEnd = blockHeaderSize + productHeaderLength + tabularPreamble
)

// blockHeader starts every block
type blockHeader struct {
	BlockDivider  int16
	BlockID       int16
	LengthOfBlock uint32 // bytes, including this header
}

func readBlockHeader(c *wire.Cursor, id int16, log logrus.FieldLogger) (blockHeader, error) {
	var h blockHeader
	if !c.ReadStruct(&h) {
		log.Debug("Reached end of file")
		return h, fmt.Errorf("%w: block header", wire.ErrTruncated)
	}
	if h.BlockDivider != blockDivider {
		return h, wire.Violation("invalid block divider: %d", h.BlockDivider)
	}
	if h.BlockID != id {
		return h, wire.Violation("invalid block id: %d, expected %d", h.BlockID, id)
	}
	// every block has at least a layer or page count after the header
	if h.LengthOfBlock < blockHeaderSize+2 {
		return h, wire.Violation("invalid length of block: %d", h.LengthOfBlock)
	}
	return h, nil
}

// readPackets decodes packets until exactly length bytes have been used.
func readPackets(c *wire.Cursor, length int) ([]Packet, error) {
	mark := c.Mark()
	var packets []Packet
	for c.Since(mark) < length {
		p, err := NewPacket(c)
		if err != nil {
			return packets, err
		}
		packets = append(packets, p)
	}
	if c.Since(mark) != length {
		return packets, fmt.Errorf("%w: packets used %d of %d bytes", wire.ErrLengthMismatch, c.Since(mark), length)
	}
	return packets, nil
}

// SymbologyBlock holds the layers of packets that draw the product.
type SymbologyBlock struct {
	Header blockHeader
	layers [][]Packet
}

// NumberOfLayers decoded
func (b *SymbologyBlock) NumberOfLayers() int { return len(b.layers) }

// Layer returns the packets of layer i
func (b *SymbologyBlock) Layer(i int) []Packet {
	if i < 0 || i >= len(b.layers) {
		return nil
	}
	return b.layers[i]
}

// Packets returns every packet in layer order
func (b *SymbologyBlock) Packets() []Packet {
	var all []Packet
	for _, layer := range b.layers {
		all = append(all, layer...)
	}
	return all
}

// DataSize is the declared length of the block
func (b *SymbologyBlock) DataSize() int { return int(b.Header.LengthOfBlock) }

// Parse decodes the block from c.
func (b *SymbologyBlock) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("block", "symbology")
	mark := c.Mark()

	h, err := readBlockHeader(c, BlockIDSymbology, log)
	b.Header = h
	if errors.Is(err, wire.ErrTruncated) {
		return err
	}
	numberOfLayers := c.ReadUint16()
	if err == nil && (numberOfLayers < 1 || numberOfLayers > maxLayers) {
		err = wire.Violation("invalid number of layers: %d", numberOfLayers)
	}
	if err != nil {
		return finish(c, mark, b.DataSize(), []error{err}, log)
	}

	b.layers = make([][]Packet, 0, numberOfLayers)
	for i := 0; i < int(numberOfLayers); i++ {
		divider := c.ReadInt16()
		length := c.ReadUint32()
		if c.EOF() {
			break
		}
		if divider != blockDivider {
			return finish(c, mark, b.DataSize(), []error{wire.Violation("layer %d: invalid divider: %d", i, divider)}, log)
		}

		packets, err := readPackets(c, int(length))
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		b.layers = append(b.layers, packets)
	}

	return wire.Validate(c, mark, b.DataSize(), log)
}

// GraphicPage is one page of the graphic alphanumeric block
type GraphicPage struct {
	PageNumber uint16
	Packets    []Packet
}

// GraphicAlphanumericBlock holds pages of text and symbol packets.
type GraphicAlphanumericBlock struct {
	Header blockHeader
	pages  []GraphicPage
}

// Pages returns the decoded pages
func (b *GraphicAlphanumericBlock) Pages() []GraphicPage { return b.pages }

// DataSize is the declared length of the block
func (b *GraphicAlphanumericBlock) DataSize() int { return int(b.Header.LengthOfBlock) }

// Parse decodes the block from c.
func (b *GraphicAlphanumericBlock) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("block", "graphic")
	mark := c.Mark()

	h, err := readBlockHeader(c, BlockIDGraphic, log)
	b.Header = h
	if errors.Is(err, wire.ErrTruncated) {
		return err
	}
	numberOfPages := c.ReadUint16()
	if err == nil && (numberOfPages < 1 || numberOfPages > maxPages) {
		err = wire.Violation("invalid number of pages: %d", numberOfPages)
	}
	if err != nil {
		return finish(c, mark, b.DataSize(), []error{err}, log)
	}

	b.pages = make([]GraphicPage, 0, numberOfPages)
	for i := 0; i < int(numberOfPages); i++ {
		page := GraphicPage{PageNumber: c.ReadUint16()}
		length := c.ReadUint16()
		if c.EOF() {
			break
		}
		if page.PageNumber < 1 || page.PageNumber > maxPages {
			return finish(c, mark, b.DataSize(), []error{wire.Violation("invalid page number: %d", page.PageNumber)}, log)
		}

		packets, err := readPackets(c, int(length))
		if err != nil {
			return fmt.Errorf("page %d: %w", page.PageNumber, err)
		}
		page.Packets = packets
		b.pages = append(b.pages, page)
	}

	return wire.Validate(c, mark, b.DataSize(), log)
}

// TabularAlphanumericBlock holds pages of preformatted text along with a
// copy of the product headers.
type TabularAlphanumericBlock struct {
	Header             blockHeader
	MessageHeader      MessageHeader
	ProductDescription ProductDescription
	pages              [][]string
}

// Pages returns each page as its lines of text
func (b *TabularAlphanumericBlock) Pages() [][]string { return b.pages }

// DataSize is the declared length of the block
func (b *TabularAlphanumericBlock) DataSize() int { return int(b.Header.LengthOfBlock) }

// Parse decodes the block from c.
func (b *TabularAlphanumericBlock) Parse(c *wire.Cursor) error {
	log := c.Logger().WithField("block", "tabular")
	mark := c.Mark()

	h, err := readBlockHeader(c, BlockIDTabular, log)
	b.Header = h
	if errors.Is(err, wire.ErrTruncated) {
		return err
	}
	if err == nil && h.LengthOfBlock < tabularHeaderEnd {
		err = wire.Violation("invalid length of block: %d", h.LengthOfBlock)
	}
	if err != nil {
		return finish(c, mark, b.DataSize(), []error{err}, log)
	}

	c.ReadStruct(&b.MessageHeader)
	c.ReadStruct(&b.ProductDescription)
	divider := c.ReadInt16()
	numberOfPages := c.ReadUint16()
	if c.EOF() {
		log.Debug("Reached end of file")
		return fmt.Errorf("%w: tabular header", wire.ErrTruncated)
	}

	var errs []error
	if divider != blockDivider {
		errs = append(errs, wire.Violation("invalid tabular divider: %d", divider))
	}
	if numberOfPages < 1 || numberOfPages > maxPages {
		errs = append(errs, wire.Violation("invalid number of pages: %d", numberOfPages))
	}
	if len(errs) > 0 {
		return finish(c, mark, b.DataSize(), errs, log)
	}

	b.pages = make([][]string, 0, numberOfPages)
	for i := 0; i < int(numberOfPages) && !c.EOF() && len(errs) == 0; i++ {
		var lines []string
		for {
			count := c.ReadInt16()
			if c.EOF() || count == endOfPage {
				break
			}
			if count < 0 || count > maxLineLength {
				errs = append(errs, wire.Violation("page %d: invalid line length: %d", i+1, count))
				break
			}
			lines = append(lines, string(c.ReadBytes(int(count))))
		}
		b.pages = append(b.pages, lines)
	}

	return finish(c, mark, b.DataSize(), errs, log)
}
