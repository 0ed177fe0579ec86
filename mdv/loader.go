// mdv/loader.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mdv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mdvplot/mdvplot/log"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Loader loads volumes from any location that ParseLocation accepts,
// opening storage backends as needed. Recently loaded volumes are cached;
// callers must treat the volumes it returns as read-only since they may
// be shared.
type Loader struct {
	ctx context.Context
	lg  *log.Logger

	mu       sync.Mutex
	backends map[string]StorageBackend

	// cache stores recently decoded volumes, keyed by location.
	cache *expirable.LRU[string, *Volume]
}

func NewLoader(ctx context.Context, lg *log.Logger) *Loader {
	return &Loader{
		ctx:      ctx,
		lg:       lg,
		backends: make(map[string]StorageBackend),
		cache:    expirable.NewLRU[string, *Volume](8, nil, 30*time.Minute),
	}
}

// Backend returns the storage backend for the given root, opening it if
// it hasn't been already.
func (l *Loader) Backend(root string) (StorageBackend, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if sb, ok := l.backends[root]; ok {
		return sb, nil
	}
	sb, err := OpenBackend(l.ctx, root)
	if err != nil {
		return nil, err
	}
	l.backends[root] = sb
	return sb, nil
}

// Load returns the volume stored at the given location.
func (l *Loader) Load(loc string) (*Volume, error) {
	if v, ok := l.cache.Get(loc); ok {
		l.lg.Debugf("%s: using cached volume", loc)
		return v, nil
	}

	root, path, err := ParseLocation(loc)
	if err != nil {
		return nil, err
	}
	sb, err := l.Backend(root)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	r, err := sb.OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	v, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc, err)
	}
	l.lg.Info("loaded volume", "location", loc, "radar", v.RadarInfo.RadarName,
		"sweeps", v.NumSweeps(), "fields", len(v.FieldHeaders), "elapsed", time.Since(start))

	l.cache.Add(loc, v)
	return v, nil
}

// Close closes all of the backends that the Loader has opened.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for root, sb := range l.backends {
		if err := sb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", root, err))
		}
	}
	clear(l.backends)
	l.cache.Purge()
	return errors.Join(errs...)
}
