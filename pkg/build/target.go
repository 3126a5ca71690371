package build

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rmax-ai/docgraph/pkg/blob"
	"github.com/rmax-ai/docgraph/pkg/store"
	"github.com/rmax-ai/docgraph/pkg/store/redis"
)

// DefaultKey names the artifact inside SQLite and Redis targets.
const DefaultKey = "knowledge-graph.json"

// Target is an opened artifact location.
type Target struct {
	Store blob.BlobStore
	Key   string
	// Path is the artifact file for local targets, empty otherwise.
	Path string

	close func() error
}

// Close releases any connection held by the target.
func (t *Target) Close() error {
	if t.close == nil {
		return nil
	}
	return t.close()
}

// OpenTarget interprets dsn as one of:
//
//	path/to/knowledge-graph.json     local file
//	sqlite://path/to/docgraph.db     SQLite database (?key= overrides the key)
//	redis://host:6379/0              Redis (?key= overrides the key)
func OpenTarget(dsn string) (*Target, error) {
	switch {
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return openRedis(dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		return openSQLite(strings.TrimPrefix(dsn, "sqlite://"))
	case strings.TrimSpace(dsn) == "":
		return nil, fmt.Errorf("artifact target is empty")
	default:
		abs, err := filepath.Abs(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid artifact path %s: %w", dsn, err)
		}
		return &Target{
			Store: blob.NewLocalBlobStore(filepath.Dir(abs)),
			Key:   filepath.Base(abs),
			Path:  abs,
		}, nil
	}
}

func openRedis(dsn string) (*Target, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid redis target: %w", err)
	}
	q := u.Query()
	key := q.Get("key")
	if key == "" {
		key = DefaultKey
	}
	// go-redis rejects query options it does not know.
	q.Del("key")
	u.RawQuery = q.Encode()

	opts, err := goredis.ParseURL(u.String())
	if err != nil {
		return nil, fmt.Errorf("invalid redis target: %w", err)
	}
	client := goredis.NewClient(opts)
	return &Target{
		Store: redis.NewRedisBlobStore(client),
		Key:   key,
		close: client.Close,
	}, nil
}

func openSQLite(rest string) (*Target, error) {
	dbPath, rawQuery, _ := strings.Cut(rest, "?")
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite target needs a database path")
	}
	key := DefaultKey
	if q, err := url.ParseQuery(rawQuery); err == nil && q.Get("key") != "" {
		key = q.Get("key")
	}

	st, err := store.NewStore(dbPath)
	if err != nil {
		return nil, err
	}
	return &Target{Store: st, Key: key, close: st.Close}, nil
}
