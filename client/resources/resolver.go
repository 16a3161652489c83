package resources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"
	"time"

	"github.com/cbodonnell/skirmish/pkg/log"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// DefaultRetryAfter is how long a failed URL resolves to the fallback
// key before it is fetched again.
const DefaultRetryAfter = 30 * time.Second

// MaxImagePixels bounds the decoded size of a remote image.
const MaxImagePixels = 4096 * 4096

var ErrImageTooLarge = errors.New("image too large")

// Resolver maps remote image URLs to texture keys, loading each image once.
// Concurrent resolutions of the same URL share a single fetch.
type Resolver struct {
	fetcher    Fetcher
	store      BlobStore
	retryAfter time.Duration
	timeout    time.Duration
	now        func() time.Time

	group singleflight.Group

	lock     sync.RWMutex
	images   map[string]image.Image
	failures map[string]time.Time

	logger *log.Logger
}

type NewResolverOptions struct {
	Fetcher Fetcher
	// Store is an optional persistent cache consulted before fetching.
	Store      BlobStore
	RetryAfter time.Duration
	// Timeout bounds a single load, independent of the callers waiting on it.
	Timeout time.Duration
	Now     func() time.Time
}

func NewResolver(opts NewResolverOptions) (*Resolver, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("resolver requires a fetcher")
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = DefaultRetryAfter
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Resolver{
		fetcher:    opts.Fetcher,
		store:      opts.Store,
		retryAfter: opts.RetryAfter,
		timeout:    opts.Timeout,
		now:        opts.Now,
		images:     make(map[string]image.Image),
		failures:   make(map[string]time.Time),
		logger:     log.With("resources"),
	}, nil
}

// Resolve returns the texture key for url, loading the image if needed.
// It never fails: an empty URL, a failed load or a cancelled ctx all
// yield FallbackKey. A cancelled caller does not cancel the load, which
// still populates the cache for later calls.
func (r *Resolver) Resolve(ctx context.Context, url string) string {
	if url == "" {
		return FallbackKey
	}
	key := KeyFor(url)

	r.lock.RLock()
	_, cached := r.images[key]
	failedAt, failed := r.failures[key]
	r.lock.RUnlock()
	if cached {
		return key
	}
	if failed && r.now().Sub(failedAt) < r.retryAfter {
		return FallbackKey
	}

	ch := r.group.DoChan(key, func() (interface{}, error) {
		return nil, r.load(key, url)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return FallbackKey
		}
		return key
	case <-ctx.Done():
		r.logger.Debug("Stopped waiting for %s: %v", url, ctx.Err())
		return FallbackKey
	}
}

// Prefetch starts loading url in the background.
func (r *Resolver) Prefetch(url string) {
	if url == "" {
		return
	}
	go r.Resolve(context.Background(), url)
}

// Image returns the decoded image stored under key.
func (r *Resolver) Image(key string) (image.Image, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	img, ok := r.images[key]
	return img, ok
}

// Loaded reports whether url has been loaded successfully.
func (r *Resolver) Loaded(url string) bool {
	_, ok := r.Image(KeyFor(url))
	return ok
}

func (r *Resolver) load(key, url string) error {
	r.lock.RLock()
	_, cached := r.images[key]
	failedAt, failed := r.failures[key]
	r.lock.RUnlock()
	if cached {
		return nil
	}
	// A flight for key may have failed since the caller checked.
	if failed && r.now().Sub(failedAt) < r.retryAfter {
		return fmt.Errorf("%s failed %s ago", url, r.now().Sub(failedAt))
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	img, err := r.loadImage(ctx, key, url)
	if err != nil {
		r.logger.Warn("Failed to load %s, using fallback texture: %v", url, err)
		r.lock.Lock()
		r.failures[key] = r.now()
		r.lock.Unlock()
		return err
	}

	r.lock.Lock()
	r.images[key] = img
	delete(r.failures, key)
	r.lock.Unlock()
	r.logger.Debug("Loaded %s as %s", url, key)
	return nil
}

func (r *Resolver) loadImage(ctx context.Context, key, url string) (image.Image, error) {
	if r.store != nil {
		data, err := r.store.Get(ctx, key)
		switch {
		case err == nil:
			img, decodeErr := decodeImage(data)
			if decodeErr == nil {
				return img, nil
			}
			r.logger.Warn("Discarding cached %s: %v", url, decodeErr)
		case !errors.Is(err, ErrNotFound):
			r.logger.Warn("Failed to read cached %s: %v", url, err)
		}
	}

	data, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		if err := r.store.Put(ctx, key, data); err != nil {
			r.logger.Warn("Failed to cache %s: %v", url, err)
		}
	}
	return img, nil
}

func decodeImage(data []byte) (image.Image, error) {
	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image config: %w", err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%s image has no pixels", format)
	}
	if int64(config.Width)*int64(config.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%s image is %dx%d: %w", format, config.Width, config.Height, ErrImageTooLarge)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("decoded %s image is empty", format)
	}
	return FadeNearBlack(img, DefaultBlackThreshold, true), nil
}
