package backing

import (
	"fmt"
	"iter"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mplewis/layerkv"
)

// DefaultBoltBucket is the bucket used when BoltArgs.Bucket is empty.
const DefaultBoltBucket = "layerkv"

// boltBatch is how many ids Keys reads per read transaction.
const boltBatch = 256

// Bolt stores entries in one bucket of a bbolt database file.
type Bolt struct {
	db     *bolt.DB
	bucket []byte
}

// BoltArgs are the arguments for opening a Bolt backing.
type BoltArgs struct {
	Path    string        // Required. The database file, created if missing.
	Bucket  string        // Optional. The bucket holding entries. Defaults to DefaultBoltBucket.
	Timeout time.Duration // Optional. How long to wait for the file lock. Zero waits forever.
}

// OpenBolt opens or creates the database and its bucket.
func OpenBolt(args BoltArgs) (*Bolt, error) {
	if args.Bucket == "" {
		args.Bucket = DefaultBoltBucket
	}
	db, err := bolt.Open(args.Path, 0o600, &bolt.Options{Timeout: args.Timeout})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}
	b := &Bolt{db: db, bucket: []byte(args.Bucket)}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(b.bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket %s: %w", args.Bucket, err)
	}
	logger.Debug("bolt backing", "path", args.Path, "bucket", args.Bucket)
	return b, nil
}

// Close closes the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Get returns a copy of the value stored at id.
func (b *Bolt) Get(id string) ([]byte, error) {
	var val []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(b.bucket).Get([]byte(id))
		if v == nil {
			return layerkv.NotFound(id)
		}
		val = make([]byte, len(v))
		copy(val, v)
		return nil
	})
	return val, err
}

// Set stores data at id.
func (b *Bolt) Set(id string, data []byte) error {
	if id == "" {
		return layerkv.InvalidKey(id, "bolt keys must not be empty")
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(id), data)
	})
}

// Delete removes id.
func (b *Bolt) Delete(id string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(b.bucket)
		if bk.Get([]byte(id)) == nil {
			return layerkv.NotFound(id)
		}
		return bk.Delete([]byte(id))
	})
}

// Keys yields ids in byte order. Ids are read in batches, each in its own
// read transaction, so callers may write to the database between steps.
func (b *Bolt) Keys() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var after []byte
		for {
			batch, err := b.batchAfter(after)
			if err != nil {
				yield("", err)
				return
			}
			for _, id := range batch {
				if !yield(id, nil) {
					return
				}
			}
			if len(batch) < boltBatch {
				return
			}
			after = []byte(batch[len(batch)-1])
		}
	}
}

func (b *Bolt) batchAfter(after []byte) ([]string, error) {
	var batch []string
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(b.bucket).Cursor()
		var k []byte
		if after == nil {
			k, _ = c.First()
		} else {
			k, _ = c.Seek(after)
			if k != nil && string(k) == string(after) {
				k, _ = c.Next()
			}
		}
		for ; k != nil && len(batch) < boltBatch; k, _ = c.Next() {
			batch = append(batch, string(k))
		}
		return nil
	})
	return batch, err
}

// Contains reports whether id is present.
func (b *Bolt) Contains(id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	var ok bool
	err := b.db.View(func(tx *bolt.Tx) error {
		ok = tx.Bucket(b.bucket).Get([]byte(id)) != nil
		return nil
	})
	return ok, err
}

// Count returns the number of ids from the bucket statistics.
func (b *Bolt) Count() (int, error) {
	var n int
	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(b.bucket).Stats().KeyN
		return nil
	})
	return n, err
}
