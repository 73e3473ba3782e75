package lookup

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilri/cgmerge"
	"github.com/ilri/cgmerge/atomicfile"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultTTL is the maximum age of a cached response.
const DefaultTTL = 30 * 24 * time.Hour

// DefaultCacheDir returns the HTTP cache directory under the XDG cache home.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, cgmerge.AppName, "http")
}

// entry is a cached response, stored zstd compressed as JSON.
type entry struct {
	URL        string    `json:"url"`
	StatusCode int       `json:"status"`
	Header     string    `json:"content_type,omitempty"`
	Fetched    time.Time `json:"fetched"`
	Body       []byte    `json:"body"`
}

// CachedClient caches responses of GET requests on disk. Only 200 and 404
// responses are cached, since a missing DOI is a stable answer as well.
// Requests, that need to go out, are throttled by an optional rate limiter.
// A CachedClient is safe for concurrent use.
type CachedClient struct {
	Client  Doer
	Dir     string
	TTL     time.Duration
	Limiter *rate.Limiter

	enc *zstd.Encoder
	dec *zstd.Decoder

	hits   atomic.Int64
	misses atomic.Int64
	stored atomic.Int64
	failed atomic.Int64
}

// NewCachedClient creates the cache directory and returns a client. A zero
// ttl means DefaultTTL. A rps of zero or less disables rate limiting.
func NewCachedClient(client Doer, dir string, ttl time.Duration, rps float64) (*CachedClient, error) {
	if dir == "" {
		dir = DefaultCacheDir()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	c := &CachedClient{
		Client: client,
		Dir:    dir,
		TTL:    ttl,
		enc:    enc,
		dec:    dec,
	}
	if rps > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c, nil
}

// path returns the location for a cache key; entries are spread over 256
// subdirectories.
func (c *CachedClient) path(link string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, link)
	slug := fmt.Sprintf("%x", h.Sum(nil))
	return filepath.Join(c.Dir, slug[:2], slug+".zst")
}

// Do serves GET requests from the cache, if possible.
func (c *CachedClient) Do(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != "" {
		return c.do(req)
	}
	link := req.URL.String()
	if e, err := c.get(link); err == nil {
		c.hits.Add(1)
		return e.response(req), nil
	}
	c.misses.Add(1)
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return resp, nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	e := &entry{
		URL:        link,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Get("Content-Type"),
		Fetched:    time.Now(),
		Body:       body,
	}
	if err := c.set(link, e); err != nil {
		c.failed.Add(1)
		log.WithField("url", link).Warnf("cache write failed: %v", err)
	} else {
		c.stored.Add(1)
	}
	return e.response(req), nil
}

func (c *CachedClient) do(req *http.Request) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return c.Client.Do(req)
}

func (c *CachedClient) get(link string) (*entry, error) {
	filename := c.path(link)
	fi, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	if time.Since(fi.ModTime()) > c.TTL {
		return nil, os.ErrNotExist
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	b, err = c.dec.DecodeAll(b, nil)
	if err != nil {
		return nil, err
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	// hash collision
	if e.URL != link {
		return nil, os.ErrNotExist
	}
	return &e, nil
}

func (c *CachedClient) set(link string, e *entry) error {
	filename := c.path(link)
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(filename, c.enc.EncodeAll(b, nil), 0644)
}

// Prune removes expired entries and returns the number of files removed.
func (c *CachedClient) Prune() (int, error) {
	var removed int
	err := filepath.WalkDir(c.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".zst") {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if time.Since(fi.ModTime()) <= c.TTL {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	log.WithFields(log.Fields{"dir": c.Dir, "removed": removed}).Debug("pruned http cache")
	return removed, err
}

// CacheStats are counters of a CachedClient.
type CacheStats struct {
	Hits   int64
	Misses int64
	Stored int64
	Errors int64
}

// Stats returns the current counters.
func (c *CachedClient) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Stored: c.stored.Load(),
		Errors: c.failed.Load(),
	}
}

// Close logs statistics and releases the codecs.
func (c *CachedClient) Close() error {
	s := c.Stats()
	log.WithFields(log.Fields{
		"hits":   s.Hits,
		"misses": s.Misses,
		"stored": s.Stored,
		"errors": s.Errors,
	}).Info("http cache")
	c.dec.Close()
	return c.enc.Close()
}

func (e *entry) response(req *http.Request) *http.Response {
	header := make(http.Header)
	if e.Header != "" {
		header.Set("Content-Type", e.Header)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode)),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
