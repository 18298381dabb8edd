package wire

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Validate cross-checks the bytes consumed since m against the size the
// record declared for itself. Every decoder calls it once, after reading all
// of its fields. A nil log uses the cursor's logger.
func Validate(c *Cursor, m Mark, expected int, log logrus.FieldLogger) error {
	if log == nil {
		log = c.Logger()
	}
	read := c.Since(m)
	if c.EOF() {
		log.Debugf("Reached end of stream after %d of %d bytes", read, expected)
		return fmt.Errorf("%w: read %d of %d bytes", ErrTruncated, read, expected)
	}
	if read != expected {
		log.Warnf("Bytes read = %d, expected = %d", read, expected)
		return fmt.Errorf("%w: read %d bytes, expected %d", ErrLengthMismatch, read, expected)
	}
	return nil
}

// Drain consumes whatever is left of a record that declared expected bytes
// once its fields have been read, so a rejected record still leaves the
// stream on the next record boundary.
func Drain(c *Cursor, m Mark, expected int) {
	if rest := expected - c.Since(m); rest > 0 {
		c.Skip(int64(rest))
	}
}
