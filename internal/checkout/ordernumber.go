package checkout

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

const orderNumberPrefix = "CH"

// newOrderNumber generates a human-readable order number of the form
// CH-YYYYMMDD-NNNN. The trailing digits come from crypto/rand; collisions
// are possible within a day and are handled by the unique index on
// order_number plus a retry with a fresh number.
func newOrderNumber(now time.Time) string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// the clock so checkout can still proceed.
		return fmt.Sprintf("%s-%s-%04d", orderNumberPrefix, now.Format("20060102"), now.UnixNano()%10000)
	}
	n := binary.BigEndian.Uint32(buf[:]) % 10000
	return fmt.Sprintf("%s-%s-%04d", orderNumberPrefix, now.Format("20060102"), n)
}
