package domain

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

const referencePrefix = "DD"

const referenceAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NewReference generates a human-readable booking reference: a constant
// prefix, the creation time in millisecond base36, and a short random
// suffix, all uppercased. The random suffix alone does not guarantee
// uniqueness; the bookings table carries a unique constraint on the
// reference and creation retries on conflict.
func NewReference() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// the timestamp nanoseconds rather than panic in the request path.
		n := time.Now().UnixNano()
		for i := range buf {
			buf[i] = referenceAlphabet[int(n>>(i*5))%len(referenceAlphabet)]
		}
	} else {
		for i := range buf {
			buf[i] = referenceAlphabet[int(buf[i])%len(referenceAlphabet)]
		}
	}

	return referencePrefix + "-" + ts + "-" + string(buf)
}
