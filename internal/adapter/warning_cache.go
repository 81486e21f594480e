package adapter

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
)

// WarningCache keeps assistant-written conflict warnings keyed by the set of
// conflicting pairs, so an unchanged schedule does not hit the model again.
type WarningCache struct {
	cache *ccache.Cache[string]
	ttl   time.Duration
}

// NewWarningCache creates a bounded cache whose entries live for ttl.
func NewWarningCache(maxSize int64, ttl time.Duration) *WarningCache {
	return &WarningCache{
		cache: ccache.New(ccache.Configure[string]().MaxSize(maxSize)),
		ttl:   ttl,
	}
}

// Get returns the cached warning for conflicts, if still fresh.
func (w *WarningCache) Get(conflicts []booking.Conflict) (string, bool) {
	item := w.cache.Get(ConflictFingerprint(conflicts))
	if item == nil || item.Expired() {
		return "", false
	}
	return item.Value(), true
}

// Set stores a warning for conflicts.
func (w *WarningCache) Set(conflicts []booking.Conflict, warning string) {
	w.cache.Set(ConflictFingerprint(conflicts), warning, w.ttl)
}

// Stop halts the cache's background worker.
func (w *WarningCache) Stop() {
	w.cache.Stop()
}

// ConflictFingerprint is order-independent over pairs and over the two sides of a pair.
func ConflictFingerprint(conflicts []booking.Conflict) string {
	keys := make([]string, len(conflicts))
	for i, c := range conflicts {
		a, b := c.First.ID().String(), c.Second.ID().String()
		if a > b {
			a, b = b, a
		}
		keys[i] = a + ":" + b
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
