package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mplewis/layerkv"
	"github.com/mplewis/layerkv/backing"
	"github.com/mplewis/layerkv/codec"
	"github.com/mplewis/layerkv/internal/logging"
	"github.com/mplewis/layerkv/keys"
)

// DynamoDataAttr is the binary attribute holding entry data in a DynamoDB table.
const DynamoDataAttr = "data"

var logger = logging.For("config")

// Store is an opened backing with the configured key layout applied.
type Store struct {
	layerkv.Bytes
	close func() error
}

// Close releases the backing's connection or file handle, if it holds one.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open validates cfg, installs its logging settings if any are given and
// opens the configured backing. ctx is used by backings that talk to a remote service.
func Open(ctx context.Context, cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logging != (LoggingConfig{}) {
		logging.Init(cfg.Logging.Level, cfg.Logging.Format, nil)
	}

	raw, closer, err := openBacking(ctx, cfg.Backend)
	if err != nil {
		return nil, err
	}
	logger.Info("store opened", "kind", cfg.Backend.Kind, "prefix", cfg.Keys.Prefix, "suffix", cfg.Keys.Suffix)
	return &Store{Bytes: withKeys(raw, cfg.Keys), close: closer}, nil
}

// Typed layers the codec registered under name over p. An empty name means JSON.
func Typed[T any](p layerkv.Bytes, name string) (*layerkv.Store[string, T, string, []byte], error) {
	if name == "" {
		name = "json"
	}
	c, err := codec.ByName[T](name)
	if err != nil {
		return nil, err
	}
	return layerkv.WrapValues[T, string, []byte](p, c), nil
}

func openBacking(ctx context.Context, b BackendConfig) (layerkv.Bytes, func() error, error) {
	switch b.Kind {
	case KindMemory:
		return backing.NewMemory[string, []byte](), nil, nil

	case KindFile:
		return backing.NewFile(expandHome(b.Path)), nil, nil

	case KindBolt:
		var timeout time.Duration
		if b.Timeout != "" {
			timeout, _ = time.ParseDuration(b.Timeout)
		}
		db, err := backing.OpenBolt(backing.BoltArgs{
			Path:    expandHome(b.Path),
			Bucket:  b.Bucket,
			Timeout: timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil

	case KindS3:
		s, err := backing.NewS3(backing.S3Args{Bucket: b.Bucket, Context: ctx})
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil

	case KindDynamoDB:
		d, err := backing.NewDynamo(backing.DynamoArgs{Table: b.Table, KeyAttr: b.KeyAttr, Context: ctx})
		if err != nil {
			return nil, nil, err
		}
		return layerkv.WrapValues[[]byte, string, backing.Document](d, codec.Blob(DynamoDataAttr)), nil, nil

	case KindRedis:
		r := backing.NewRedis(backing.RedisArgs{
			Addr:    b.Addr,
			Network: b.Network,
			DB:      b.DB,
			Context: ctx,
		})
		return r, r.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: backend.kind %q", ErrInvalid, b.Kind)
	}
}

func withKeys(p layerkv.Bytes, k KeysConfig) layerkv.Bytes {
	if k.Prefix == "" && k.Suffix == "" {
		return p
	}
	layout := keys.Chain[string, string, string](keys.Suffix(k.Suffix), keys.Prefix(k.Prefix))
	return layerkv.WrapKeys[string, string, []byte](p, layout)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
