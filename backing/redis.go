package backing

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/go-redis/redis/v8"

	"github.com/mplewis/layerkv"
)

// Redis stores entries as string values in one Redis database. Keys enumerates
// with SCAN, which may yield an id more than once if the keyspace is resized
// mid-scan.
type Redis struct {
	client    redis.UniversalClient
	context   context.Context
	scanCount int64
}

// RedisArgs are the arguments for creating a new Redis backing.
type RedisArgs struct {
	Client    redis.UniversalClient // Optional. If not provided, a client is created for Addr.
	Addr      string                // Optional. host:port, or a unix socket path with Network "unix". Defaults to localhost:6379.
	Network   string                // Optional. "tcp" or "unix". Defaults to "tcp".
	DB        int                   // Optional. The database number.
	ScanCount int64                 // Optional. The COUNT hint for SCAN. Defaults to 100.
	Context   context.Context       // Optional. Defaults to context.Background().
}

// NewRedis creates a new backing which stores data in Redis.
func NewRedis(args RedisArgs) *Redis {
	if args.Context == nil {
		args.Context = context.Background()
	}
	if args.ScanCount == 0 {
		args.ScanCount = 100
	}
	if args.Client == nil {
		if args.Network == "" {
			args.Network = "tcp"
		}
		if args.Addr == "" {
			args.Addr = "localhost:6379"
		}
		args.Client = redis.NewClient(&redis.Options{Network: args.Network, Addr: args.Addr, DB: args.DB})
	}
	logger.Debug("redis backing", "addr", args.Addr, "db", args.DB)
	return &Redis{client: args.Client, context: args.Context, scanCount: args.ScanCount}
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Get returns the value at id.
func (r *Redis) Get(id string) ([]byte, error) {
	data, err := r.client.Get(r.context, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, layerkv.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", id, err)
	}
	return data, nil
}

// Set stores data at id without expiry.
func (r *Redis) Set(id string, data []byte) error {
	if err := r.client.Set(r.context, id, data, 0).Err(); err != nil {
		return fmt.Errorf("setting %s: %w", id, err)
	}
	return nil
}

// Delete removes id.
func (r *Redis) Delete(id string) error {
	n, err := r.client.Del(r.context, id).Result()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	if n == 0 {
		return layerkv.NotFound(id)
	}
	return nil
}

// Keys walks the keyspace with SCAN.
func (r *Redis) Keys() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		it := r.client.Scan(r.context, 0, "*", r.scanCount).Iterator()
		for it.Next(r.context) {
			if !yield(it.Val(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield("", fmt.Errorf("scanning: %w", err))
		}
	}
}

// Contains uses EXISTS.
func (r *Redis) Contains(id string) (bool, error) {
	n, err := r.client.Exists(r.context, id).Result()
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", id, err)
	}
	return n > 0, nil
}

// Count uses DBSIZE.
func (r *Redis) Count() (int, error) {
	n, err := r.client.DBSize(r.context).Result()
	if err != nil {
		return 0, fmt.Errorf("counting: %w", err)
	}
	return int(n), nil
}
