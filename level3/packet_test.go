package level3

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jddeal/go-wsr88d/wire"
)

func TestSetColorLevelPacket(t *testing.T) {
	c := cursor(setColorLevel(25))

	p, err := NewPacket(c)
	require.NoError(t, err)

	scl, ok := p.(*SetColorLevelPacket)
	require.True(t, ok)
	assert.Equal(t, uint16(0x0802), scl.PacketCode())
	assert.Equal(t, uint16(0x0002), scl.ColorValueIndicator())
	assert.Equal(t, uint16(25), scl.ValueOfContour())
	assert.Equal(t, 6, scl.DataSize())
	assert.Equal(t, int64(6), c.Pos())
}

func TestSetColorLevelPacketBadIndicator(t *testing.T) {
	w := &byteWriter{}
	w.put(uint16(0x0802), uint16(0x0003), uint16(25))

	p, err := NewPacket(cursor(w.Bytes()))
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrMalformedPacket)
	assert.ErrorIs(t, err, wire.ErrSchemaViolation)
}

func TestLinkedContourVectorPacket(t *testing.T) {
	t.Run("WellFormed", func(t *testing.T) {
		b := contour(0x8000, 4, -8, 8, 12, 16, 20)
		c := cursor(b)

		p, err := NewPacket(c)
		require.NoError(t, err)

		lcv := p.(*LinkedContourVectorPacket)
		assert.Equal(t, uint16(0x8000), lcv.InitialPointIndicator())
		assert.Equal(t, int16(4), lcv.StartI())
		assert.Equal(t, -2.0, lcv.StartJKm())
		assert.Equal(t, []int16{8, 16}, lcv.EndI())
		assert.Equal(t, []int16{12, 20}, lcv.EndJ())
		assert.Equal(t, []float64{3, 5}, lcv.EndJKm())
		assert.Equal(t, len(b), lcv.DataSize())
		assert.Equal(t, int64(len(b)), c.Pos())
	})

	t.Run("WrongInitialPointIndicator", func(t *testing.T) {
		b := contour(0x0000, 4, -8, 8, 12, 16, 20)
		c := cursor(b)

		p, err := NewPacket(c)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, wire.ErrSchemaViolation)
		assert.NotErrorIs(t, err, wire.ErrTruncated)

		// the whole packet is still consumed
		assert.Equal(t, int64(len(b)), c.Pos())
		assert.False(t, c.EOF())
	})

	t.Run("Truncated", func(t *testing.T) {
		b := contour(0x8000, 4, -8, 8, 12, 16, 20)

		p, err := NewPacket(cursor(b[:len(b)-2]))
		assert.Nil(t, p)
		assert.ErrorIs(t, err, wire.ErrTruncated)
	})

	t.Run("PartialVector", func(t *testing.T) {
		w := &byteWriter{}
		w.put(uint16(0x0E03), uint16(0x8000), int16(0), int16(0), uint16(6), int16(1), int16(2), int16(3))

		p, err := NewPacket(cursor(w.Bytes()))
		assert.Nil(t, p)
		assert.ErrorIs(t, err, wire.ErrSchemaViolation)
	})
}

func TestLinkedVectorPacket(t *testing.T) {
	t.Run("NoValue", func(t *testing.T) {
		b := linkedVector(6, 0, 1, 2, 3, 4, 5, 6)

		p, err := NewPacket(cursor(b))
		require.NoError(t, err)

		lv := p.(*LinkedVectorPacket)
		_, ok := lv.ValueOfVector()
		assert.False(t, ok)
		assert.Equal(t, uint16(12), lv.LengthOfBlock())
		assert.Equal(t, len(b), lv.DataSize())
		assert.Equal(t, []int16{3, 5}, lv.EndI())
		assert.Equal(t, []int16{4, 6}, lv.EndJ())
	})

	t.Run("WithValue", func(t *testing.T) {
		b := linkedVector(9, 7, 1, 2, 3, 4)

		p, err := NewPacket(cursor(b))
		require.NoError(t, err)

		lv := p.(*LinkedVectorPacket)
		v, ok := lv.ValueOfVector()
		assert.True(t, ok)
		assert.Equal(t, uint16(7), v)
		assert.Equal(t, len(b), lv.DataSize())
		assert.Equal(t, 0.25, lv.StartIKm())
		assert.Equal(t, []float64{0.75}, lv.EndIKm())
	})

	t.Run("KmIsScaledGridUnits", func(t *testing.T) {
		points := []int16{-400, 3, 17, 0, 1000, -1}
		p, err := NewPacket(cursor(linkedVector(6, 0, 0, 0, points...)))
		require.NoError(t, err)

		lv := p.(*LinkedVectorPacket)
		ends, km := lv.EndI(), lv.EndIKm()
		require.Len(t, km, len(ends))
		for k := range ends {
			assert.Equal(t, float64(ends[k])*0.25, km[k])
		}
	})

	t.Run("EndPointsAreCopies", func(t *testing.T) {
		p, err := NewPacket(cursor(linkedVector(6, 0, 0, 0, 1, 2)))
		require.NoError(t, err)

		lv := p.(*LinkedVectorPacket)
		lv.EndI()[0] = 99
		assert.Equal(t, []int16{1}, lv.EndI())
	})

	t.Run("Truncated", func(t *testing.T) {
		b := linkedVector(9, 7, 1, 2, 3, 4, 5, 6)
		for n := 1; n < len(b); n++ {
			p, err := NewPacket(cursor(b[:n]))
			assert.Nil(t, p, "cut at %d", n)
			assert.ErrorIs(t, err, wire.ErrTruncated, "cut at %d", n)
		}
	})
}

func TestUnknownPacketCode(t *testing.T) {
	c := cursor([]byte{0x12, 0x34, 0x00, 0x00})

	p, err := NewPacket(c)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, wire.ErrUnknownPacketCode)
	assert.NotErrorIs(t, err, ErrMalformedPacket)
	assert.Equal(t, "unknown_packet", wire.Classify(err))

	// the code is still there for the caller
	code, ok := c.Peek16()
	assert.True(t, ok)
	assert.Equal(t, uint16(0x1234), code)
}

func TestTextPacket(t *testing.T) {
	w := &byteWriter{}
	w.put(uint16(8), uint16(6+5), uint16(3), int16(40), int16(-40))
	w.WriteString("HELLO")

	p, err := NewPacket(cursor(w.Bytes()))
	require.NoError(t, err)

	text := p.(*TextPacket)
	v, ok := text.ValueOfText()
	assert.True(t, ok)
	assert.Equal(t, uint16(3), v)
	assert.Equal(t, "HELLO", text.Text())
	assert.Equal(t, 10.0, text.PositionIKm())
	assert.Equal(t, -10.0, text.PositionJKm())
	assert.Equal(t, w.Len(), text.DataSize())

	w = &byteWriter{}
	w.put(uint16(1), uint16(4+2), int16(0), int16(0))
	w.WriteString("OK")

	p, err = NewPacket(cursor(w.Bytes()))
	require.NoError(t, err)
	_, ok = p.(*TextPacket).ValueOfText()
	assert.False(t, ok)
	assert.Equal(t, "OK", p.(*TextPacket).Text())
}

func TestSpecialGraphicSymbolPacket(t *testing.T) {
	w := &byteWriter{}
	w.put(uint16(15), uint16(12))
	w.put(int16(10), int16(20), []byte("A0"))
	w.put(int16(30), int16(40), []byte("B1"))

	p, err := NewPacket(cursor(w.Bytes()))
	require.NoError(t, err)

	sym := p.(*SpecialGraphicSymbolPacket)
	require.Len(t, sym.Records(), 2)
	assert.Equal(t, "A0", sym.Records()[0].StormID())
	assert.Equal(t, int16(30), sym.Records()[1].PositionI)
	assert.Equal(t, "B1", sym.Records()[1].StormID())

	t.Run("RaggedLength", func(t *testing.T) {
		w := &byteWriter{}
		w.put(uint16(12), uint16(6), int16(1), int16(2), int16(3))

		c := cursor(w.Bytes())
		p, err := NewPacket(c)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, wire.ErrSchemaViolation)
		assert.Equal(t, int64(w.Len()), c.Pos())
	})
}

func TestWindBarbAndVectorArrow(t *testing.T) {
	w := &byteWriter{}
	w.put(uint16(4), uint16(10), WindBarb{Value: 2, PositionX: 5, PositionY: 6, Direction: 270, Speed: 35})

	p, err := NewPacket(cursor(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []WindBarb{{2, 5, 6, 270, 35}}, p.(*WindBarbPacket).Barbs())

	w = &byteWriter{}
	w.put(uint16(5), uint16(20), VectorArrow{1, 2, 90, 10, 3}, VectorArrow{4, 5, 180, 12, 4})

	p, err = NewPacket(cursor(w.Bytes()))
	require.NoError(t, err)
	assert.Len(t, p.(*VectorArrowPacket).Arrows(), 2)
	assert.Equal(t, 24, p.DataSize())
}

func TestUnlinkedVectorPacket(t *testing.T) {
	w := &byteWriter{}
	w.put(uint16(10), uint16(2+16), uint16(4))
	w.put(int16(0), int16(0), int16(4), int16(4))
	w.put(int16(8), int16(8), int16(12), int16(-12))

	p, err := NewPacket(cursor(w.Bytes()))
	require.NoError(t, err)

	uv := p.(*UnlinkedVectorPacket)
	v, ok := uv.ValueOfVector()
	assert.True(t, ok)
	assert.Equal(t, uint16(4), v)
	assert.Equal(t, 2, uv.NumberOfVectors())
	assert.Equal(t, []int16{0, 8}, uv.BeginI())
	assert.Equal(t, []int16{4, -12}, uv.EndJ())
	assert.Equal(t, []float64{1, -3}, uv.EndJKm())

	w = &byteWriter{}
	w.put(uint16(0x3501), uint16(8), int16(1), int16(2), int16(3), int16(4))

	p, err = NewPacket(cursor(w.Bytes()))
	require.NoError(t, err)
	_, ok = p.(*UnlinkedVectorPacket).ValueOfVector()
	assert.False(t, ok)
	assert.Equal(t, 12, p.DataSize())
}

func TestRadialDataPacket(t *testing.T) {
	t.Run("RunLength", func(t *testing.T) {
		w := &byteWriter{}
		w.put(uint16(0xAF1F), uint16(0), uint16(10), int16(256), int16(280), uint16(999), uint16(2))
		// 3 bins of level 2, 7 of level 5
		w.put(uint16(1), uint16(0), uint16(10), []byte{0x32, 0x75})
		w.put(uint16(2), uint16(10), uint16(10), []byte{0xA1, 0x00, 0x00, 0x00})

		c := cursor(w.Bytes())
		p, err := NewPacket(c)
		require.NoError(t, err)

		radial := p.(*RadialDataPacket)
		require.Len(t, radial.Radials(), 2)
		assert.Equal(t, []uint8{2, 2, 2, 5, 5, 5, 5, 5, 5, 5}, radial.Levels(0))
		assert.Len(t, radial.Levels(1), 10)
		assert.Nil(t, radial.Levels(2))
		assert.Equal(t, w.Len(), radial.DataSize())
		assert.Equal(t, int64(w.Len()), c.Pos())
	})

	t.Run("Digital", func(t *testing.T) {
		w := &byteWriter{}
		w.put(uint16(16), uint16(0), uint16(3), int16(0), int16(0), uint16(1000), uint16(1))
		w.put(uint16(3), uint16(450), uint16(10), []byte{7, 8, 9, 0})

		p, err := NewPacket(cursor(w.Bytes()))
		require.NoError(t, err)

		radial := p.(*RadialDataPacket)
		assert.Equal(t, []uint8{7, 8, 9}, radial.Levels(0))
		assert.Equal(t, w.Len(), radial.DataSize())
	})

	t.Run("TooManyRadials", func(t *testing.T) {
		w := &byteWriter{}
		w.put(uint16(0xAF1F), uint16(0), uint16(10), int16(0), int16(0), uint16(999), uint16(401))

		p, err := NewPacket(cursor(w.Bytes()))
		assert.Nil(t, p)
		assert.ErrorIs(t, err, wire.ErrSchemaViolation)
	})

	t.Run("Truncated", func(t *testing.T) {
		w := &byteWriter{}
		w.put(uint16(0xAF1F), uint16(0), uint16(10), int16(0), int16(0), uint16(999), uint16(2))
		w.put(uint16(1), uint16(0), uint16(10), []byte{0x32, 0x75})

		p, err := NewPacket(cursor(w.Bytes()))
		assert.Nil(t, p)
		assert.ErrorIs(t, err, wire.ErrTruncated)
	})
}

func TestRasterDataPacket(t *testing.T) {
	w := &byteWriter{}
	w.put(uint16(0xBA0F), uint16(0x8000), uint16(0x00C0), int16(-2048), int16(-2048))
	w.put(uint16(4), uint16(0x8000), uint16(4), uint16(0), uint16(2), uint16(2))
	w.put(uint16(2), []byte{0x23, 0x11})
	w.put(uint16(2), []byte{0x40, 0x00})

	p, err := NewPacket(cursor(w.Bytes()))
	require.NoError(t, err)

	raster := p.(*RasterDataPacket)
	assert.Equal(t, 4.5, raster.XScale())
	assert.Equal(t, 4.0, raster.YScale())
	assert.Equal(t, []uint8{3, 3, 1}, raster.Levels(0))
	assert.Equal(t, []uint8{0, 0, 0, 0}, raster.Levels(1))
	assert.Equal(t, w.Len(), raster.DataSize())

	t.Run("BadOpFlags", func(t *testing.T) {
		b := append([]byte(nil), w.Bytes()...)
		b[2] = 0
		p, err := NewPacket(cursor(b))
		assert.Nil(t, p)
		assert.ErrorIs(t, err, wire.ErrSchemaViolation)
	})
}

func TestSCITDataPacket(t *testing.T) {
	nested := &byteWriter{}
	nested.Write(linkedVector(6, 0, 0, 0, 4, 4))
	nested.put(uint16(25), uint16(6), int16(4), int16(4), uint16(8))

	w := &byteWriter{}
	w.put(uint16(23), uint16(nested.Len()))
	w.Write(nested.Bytes())

	p, err := NewPacket(cursor(w.Bytes()))
	require.NoError(t, err)

	scit := p.(*SCITDataPacket)
	require.Len(t, scit.Packets(), 2)
	assert.Equal(t, uint16(6), scit.Packets()[0].PacketCode())
	assert.Equal(t, uint16(25), scit.Packets()[1].PacketCode())
	assert.Equal(t, w.Len(), scit.DataSize())

	t.Run("DisallowedNestedPacket", func(t *testing.T) {
		inner := setColorLevel(1)
		w := &byteWriter{}
		w.put(uint16(24), uint16(len(inner)))
		w.Write(inner)
		w.Write(setColorLevel(2))

		c := cursor(w.Bytes())
		p, err := NewPacket(c)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, wire.ErrSchemaViolation)
		assert.Equal(t, int64(4+len(inner)), c.Pos())
	})
}

func TestFinish(t *testing.T) {
	b := setColorLevel(7)

	t.Run("ShortRead", func(t *testing.T) {
		c := cursor(append(b, 0, 0))
		mark := c.Mark()
		c.Skip(int64(len(b)))

		err := finish(c, mark, len(b)+2, nil, quietLogger())
		assert.ErrorIs(t, err, wire.ErrLengthMismatch)
		assert.Equal(t, int64(len(b)), c.Pos())
	})

	t.Run("RejectedIsDrained", func(t *testing.T) {
		c := cursor(append(b, 0, 0))
		mark := c.Mark()
		c.Skip(2)

		err := finish(c, mark, len(b), []error{wire.Violation("bad")}, quietLogger())
		assert.ErrorIs(t, err, wire.ErrSchemaViolation)
		assert.NotErrorIs(t, err, wire.ErrLengthMismatch)
		assert.Equal(t, int64(len(b)), c.Pos())
	})
}

func TestPacketSequence(t *testing.T) {
	b := bytes.Join([][]byte{
		setColorLevel(10),
		contour(0x8000, 0, 0, 4, 4),
		setColorLevel(20),
		contour(0x8000, 8, 8, 12, 12, 16, 16),
	}, nil)
	c := cursor(b)

	var codes []uint16
	for c.Pos() < int64(len(b)) {
		p, err := NewPacket(c)
		require.NoError(t, err)
		codes = append(codes, p.PacketCode())
	}
	assert.Equal(t, []uint16{0x0802, 0x0E03, 0x0802, 0x0E03}, codes)
}
