// internal/daily/daily.go
//
// The board of the day: every player who asks for a daily game on the same
// UTC date gets the same faces in the same layout.
// The layout is derived from HMAC-SHA256(salt, YYYY-MM-DD), so it cannot be
// predicted without the server's salt.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"

	"github.com/robalobadob/memory/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the two PCG seed words for a date.
func Seed(date time.Time, salt string) (uint64, uint64) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}

// Shuffle returns a deterministic shuffle for date. Successive calls on the
// returned func continue the same stream, so a reset of a daily game is
// reproducible too.
func Shuffle(date time.Time, salt string) game.ShuffleFunc {
	r := rand.New(rand.NewPCG(Seed(date, salt)))
	return r.Shuffle
}
