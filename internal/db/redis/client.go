package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/semdex/internal/db"
)

var _ db.Store = (*Store)(nil)

// DefaultDialTimeout applies when Config.DialTimeout is zero.
const DefaultDialTimeout = 5 * time.Second

// Config addresses a standalone Redis 8+ or a cluster (several Addrs).
type Config struct {
	Addrs       []string
	Username    string
	Password    string
	DB          int
	DialTimeout time.Duration
}

func (c Config) clientOption() rueidis.ClientOption {
	opt := rueidis.ClientOption{
		InitAddress: c.Addrs,
		Username:    c.Username,
		Password:    c.Password,
		SelectDB:    c.DB,
		ClientName:  "semdex",
		// Reads all go through FT.SEARCH, which client-side caching cannot serve.
		DisableCache: true,
		// parseKNNReply walks RESP2 arrays.
		AlwaysRESP2: true,
	}
	opt.Dialer.Timeout = c.DialTimeout
	if opt.Dialer.Timeout <= 0 {
		opt.Dialer.Timeout = DefaultDialTimeout
	}
	return opt
}

// Store is the rueidis-backed db.Store.
type Store struct {
	client rueidis.Client
}

// NewStore connects and returns once the client is built. Use WaitForReady
// to block until the server answers.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}
	client, err := rueidis.NewClient(cfg.clientOption())
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping sends PING.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return opError(db.OpPing, err)
	}
	return nil
}

func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady blocks until Redis answers PING or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitReady(ctx, timeout, "redis", s.Ping) //nolint:wrapcheck // already descriptive
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// opError tags err with op. Error replies from the server also wrap
// db.ErrRejected; transport failures do not.
func opError(op string, err error) error {
	var re *rueidis.RedisError
	if errors.As(err, &re) && !rueidis.IsRedisNil(re) {
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrRejected, err)}
	}
	return &db.Error{Op: op, Err: err}
}

// isRedisErr matches a server error reply containing substr, ignoring case.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
