// Package wire provides the forward-only big-endian reader shared by the
// Level 2 and Level 3 decoders, along with the byte accounting check that
// every record runs once it has read its fields.
//
// All multi-byte integers in WSR-88D products are sent in network byte order
// regardless of the host (RDA/RPG 3.2.1, Class 1 User 3.3.1).
package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/sirupsen/logrus"
)

// Mark is a stream position recorded before a record is read.
type Mark int64

// Cursor reads big-endian fields from an underlying stream. It never reads
// ahead of what is requested; a failed read leaves the destination untouched
// and latches EOF, which callers check after a batch of reads.
type Cursor struct {
	r   io.Reader
	log logrus.FieldLogger

	pos int64
	eof bool

	// bytes handed out by Peek16 that the next read consumes first
	pending []byte
	scratch [8]byte
}

// NewCursor wraps r. A nil log falls back to the standard logrus logger.
func NewCursor(r io.Reader, log logrus.FieldLogger) *Cursor {
	return NewCursorAt(r, 0, log)
}

// NewCursorAt wraps r with positions starting at pos. Used for decompressed
// product data whose offsets continue from the compressed section.
func NewCursorAt(r io.Reader, pos int64, log logrus.FieldLogger) *Cursor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cursor{r: r, log: log, pos: pos}
}

// Logger returns the sink decoders should log through.
func (c *Cursor) Logger() logrus.FieldLogger {
	return c.log
}

// Pos is the number of bytes consumed so far (plus the starting offset).
func (c *Cursor) Pos() int64 {
	return c.pos
}

// EOF reports whether any read so far came up short.
func (c *Cursor) EOF() bool {
	return c.eof
}

// Mark records the current position.
func (c *Cursor) Mark() Mark {
	return Mark(c.pos)
}

// Since returns the bytes consumed after m.
func (c *Cursor) Since(m Mark) int {
	return int(c.pos - int64(m))
}

func (c *Cursor) fill(p []byte) bool {
	if c.eof {
		return false
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	if n < len(p) {
		m, err := io.ReadFull(c.r, p[n:])
		n += m
		if err != nil {
			c.pos += int64(n)
			c.eof = true
			return false
		}
	}
	c.pos += int64(len(p))
	return true
}

// Peek16 returns the next uint16 without consuming it.
func (c *Cursor) Peek16() (uint16, bool) {
	if c.eof {
		return 0, false
	}
	if len(c.pending) < 2 {
		buf := make([]byte, 2)
		n := copy(buf, c.pending)
		m, err := io.ReadFull(c.r, buf[n:])
		c.pending = buf[:n+m]
		if err != nil {
			c.eof = true
			return 0, false
		}
	}
	return binary.BigEndian.Uint16(c.pending), true
}

// ReadUint8 reads one byte.
func (c *Cursor) ReadUint8() uint8 {
	b := c.scratch[:1]
	if !c.fill(b) {
		return 0
	}
	return b[0]
}

// ReadUint16 reads a big-endian uint16.
func (c *Cursor) ReadUint16() uint16 {
	b := c.scratch[:2]
	if !c.fill(b) {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// ReadInt16 reads a big-endian int16.
func (c *Cursor) ReadInt16() int16 {
	return int16(c.ReadUint16())
}

// ReadUint32 reads a big-endian uint32.
func (c *Cursor) ReadUint32() uint32 {
	b := c.scratch[:4]
	if !c.fill(b) {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// ReadInt32 reads a big-endian int32.
func (c *Cursor) ReadInt32() int32 {
	return int32(c.ReadUint32())
}

// ReadBytes reads exactly n bytes, returning nil when the stream ends first.
func (c *Cursor) ReadBytes(n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	b := make([]byte, n)
	if !c.fill(b) {
		return nil
	}
	return b
}

// ReadStruct decodes a fixed-size struct. v is left untouched on a short read.
func (c *Cursor) ReadStruct(v interface{}) bool {
	size := binary.Size(v)
	if size < 0 {
		return false
	}
	b := make([]byte, size)
	if !c.fill(b) {
		return false
	}
	return binary.Read(bytes.NewReader(b), binary.BigEndian, v) == nil
}

// Skip discards n bytes.
func (c *Cursor) Skip(n int64) bool {
	if n <= 0 {
		return n == 0
	}
	if c.eof {
		return false
	}
	k := int64(len(c.pending))
	if k > n {
		k = n
	}
	c.pending = c.pending[k:]
	c.pos += k
	if k == n {
		return true
	}
	m, err := io.CopyN(io.Discard, c.r, n-k)
	c.pos += m
	if err != nil {
		c.eof = true
		return false
	}
	return true
}

// ReadCoordinatePairs reads up to n (i, j) pairs of int16 grid coordinates.
// When the stream ends part way the pairs read so far are returned.
func (c *Cursor) ReadCoordinatePairs(n int) (is, js []int16) {
	if n < 0 {
		n = 0
	}
	is = make([]int16, 0, n)
	js = make([]int16, 0, n)
	for k := 0; k < n; k++ {
		i := c.ReadInt16()
		j := c.ReadInt16()
		if c.eof {
			break
		}
		is = append(is, i)
		js = append(js, j)
	}
	return is, js
}
