package level3

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wsr88d/wire"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func cursor(b []byte) *wire.Cursor {
	return wire.NewCursor(bytes.NewReader(b), quietLogger())
}

type byteWriter struct {
	bytes.Buffer
}

// put writes each fixed size value big endian
func (w *byteWriter) put(vs ...interface{}) *byteWriter {
	for _, v := range vs {
		if err := binary.Write(&w.Buffer, binary.BigEndian, v); err != nil {
			panic(err)
		}
	}
	return w
}

func setColorLevel(value uint16) []byte {
	w := &byteWriter{}
	w.put(uint16(0x0802), uint16(0x0002), value)
	return w.Bytes()
}

func contour(indicator uint16, startI, startJ int16, points ...int16) []byte {
	w := &byteWriter{}
	w.put(uint16(0x0E03), indicator, startI, startJ, uint16(len(points)*2))
	for _, p := range points {
		w.put(p)
	}
	return w.Bytes()
}

func linkedVector(code uint16, value uint16, startI, startJ int16, points ...int16) []byte {
	w := &byteWriter{}
	length := uint16(4 + len(points)*2)
	if code == 9 {
		length += 2
	}
	w.put(code, length)
	if code == 9 {
		w.put(value)
	}
	w.put(startI, startJ)
	for _, p := range points {
		w.put(p)
	}
	return w.Bytes()
}

// symbology wraps packets in a single layer symbology block
func symbology(packets ...[]byte) []byte {
	layer := bytes.Join(packets, nil)
	w := &byteWriter{}
	w.put(int16(-1), int16(1), uint32(16+len(layer)), uint16(1))
	w.put(int16(-1), uint32(len(layer)))
	w.Write(layer)
	return w.Bytes()
}

func messageHeader(code int16, length uint32, blocks uint16) MessageHeader {
	return MessageHeader{
		MessageCode:     code,
		DateOfMessage:   18902,
		TimeOfMessage:   60,
		LengthOfMessage: length,
		SourceID:        1,
		NumberOfBlocks:  blocks,
	}
}

func productDescription(code int16) ProductDescription {
	return ProductDescription{
		BlockDivider:          -1,
		Latitude:              38699,
		Longitude:             -90683,
		Height:                610,
		ProductCode:           code,
		OperationalMode:       2,
		VolumeCoveragePattern: 212,
		VolumeScanDate:        18902,
		VolumeScanStartTime:   30,
		GenerationDate:        18902,
		GenerationTime:        60,
	}
}

// product assembles a message with the symbology block right after the
// description and any other blocks after it.
func product(code int16, sym []byte, tab []byte) []byte {
	d := productDescription(code)
	length := productHeaderLength + len(sym) + len(tab)
	blocks := uint16(2)
	if len(sym) > 0 {
		d.OffsetToSymbology = productHeaderLength / 2
		blocks++
	}
	if len(tab) > 0 {
		d.OffsetToTabular = uint32(productHeaderLength+len(sym)) / 2
		blocks++
	}

	w := &byteWriter{}
	w.put(messageHeader(code, uint32(length), blocks), d)
	w.Write(sym)
	w.Write(tab)
	return w.Bytes()
}
