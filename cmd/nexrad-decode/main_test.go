package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jddeal/go-wsr88d/archive2"
	"github.com/jddeal/go-wsr88d/level3"
	"github.com/jddeal/go-wsr88d/wire"
)

func writeFile(t *testing.T, name string, values ...interface{}) string {
	var b bytes.Buffer
	for _, v := range values {
		require.NoError(t, binary.Write(&b, binary.BigEndian, v))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return path
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestDecode(t *testing.T) {
	defer func(progress bool) { cli.Progress = progress }(cli.Progress)

	for _, progress := range []bool{false, true} {
		cli.Progress = progress

		t.Run("Archive2", func(t *testing.T) {
			path := writeFile(t, "KLSX20211001_000000_V06", archive2.VolumeHeaderRecord{
				TapeFilename:    [9]byte{'A', 'R', '2', 'V', '0', '0', '0', '6', '.'},
				ExtensionNumber: [3]byte{'0', '0', '1'},
				ModifiedDate:    18902,
				ICAO:            [4]byte{'K', 'L', 'S', 'X'},
			})
			assert.NoError(t, decode(path, quietLogger()))
		})

		t.Run("Level3", func(t *testing.T) {
			path := writeFile(t, "KLSX_SDUS53_NCRLSX",
				level3.MessageHeader{
					MessageCode:     65,
					DateOfMessage:   18902,
					TimeOfMessage:   60,
					LengthOfMessage: level3.MessageHeaderLength + level3.ProductDescriptionLength,
					NumberOfBlocks:  1,
				},
				level3.ProductDescription{
					BlockDivider:   -1,
					Latitude:       38699,
					Longitude:      -90683,
					ProductCode:    65,
					VolumeScanDate: 18902,
					GenerationDate: 18902,
				},
			)
			assert.NoError(t, decode(path, quietLogger()))
		})
	}

	t.Run("Truncated", func(t *testing.T) {
		path := writeFile(t, "short", []byte{0, 65, 0})
		assert.ErrorIs(t, decode(path, quietLogger()), wire.ErrTruncated)
	})

	t.Run("Missing", func(t *testing.T) {
		assert.Error(t, decode(filepath.Join(t.TempDir(), "missing"), quietLogger()))
	})
}
