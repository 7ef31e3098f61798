package bisect

import (
	"encoding/binary"

	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	klog "github.com/Klingon-tech/icon-cli/internal/log"
	"github.com/Klingon-tech/icon-cli/internal/storage"
)

// Cache stores observations of one check on one account. State at a past
// height never changes, so entries do not expire.
type Cache struct {
	db  storage.DB
	id  string
	log zerolog.Logger
}

// NewCache creates a cache for the observation series id, typically the
// check name and the account. Callers scope db per network.
func NewCache(db storage.DB, id string) *Cache {
	return &Cache{db: db, id: id, log: klog.Storage}
}

// key is blake3(id | 0x00 | height).
func (c *Cache) key(height uint64) []byte {
	buf := make([]byte, 0, len(c.id)+9)
	buf = append(buf, c.id...)
	buf = append(buf, 0)
	buf = binary.BigEndian.AppendUint64(buf, height)
	sum := blake3.Sum256(buf)
	return sum[:]
}

// Get returns the cached value at height.
func (c *Cache) Get(height uint64) (string, bool) {
	v, err := c.db.Get(c.key(height))
	if err != nil {
		return "", false
	}
	return string(v), true
}

// Put records the value at height. Write failures are logged and ignored.
func (c *Cache) Put(height uint64, value string) {
	if err := c.db.Put(c.key(height), []byte(value)); err != nil {
		c.log.Warn().Err(err).Uint64("height", height).Msg("Probe cache write failed")
	}
}
