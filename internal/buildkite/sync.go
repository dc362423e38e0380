package buildkite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// BuildCache persists the raw build list for one org+pipeline as a single
// payload. Load returns a nil payload and zero time when nothing is cached.
type BuildCache interface {
	Load(ctx context.Context, org, pipeline string) (payload []byte, fetchedAt time.Time, err error)
	Save(ctx context.Context, org, pipeline string, payload []byte) error
}

// SyncBuilds returns all builds for the pipeline, newest first, combining the
// local cache with the API:
//
//   - no cache: fetch everything, persist;
//   - cache younger than maxAge: use it without touching the network;
//   - otherwise: fetch only builds newer than the newest cached number and
//     prepend them (the cache is kept newest-first, deduplicated by number).
func SyncBuilds(ctx context.Context, c *Client, store BuildCache, org, pipeline string, states []string, maxAge time.Duration) ([]Build, error) {
	payload, fetchedAt, err := store.Load(ctx, org, pipeline)
	if err != nil {
		return nil, fmt.Errorf("loading build cache: %w", err)
	}

	if payload == nil {
		logrus.Info("no cache found, fetch all builds")
		builds, err := c.ListBuilds(ctx, org, pipeline, states, -1)
		if err != nil {
			return nil, err
		}
		if err := persist(ctx, store, org, pipeline, builds); err != nil {
			return nil, err
		}
		return builds, nil
	}

	var cached []Build
	if err := json.Unmarshal(payload, &cached); err != nil {
		return nil, fmt.Errorf("decoding build cache: %w", err)
	}
	logrus.Infof("loaded %d builds from disk", len(cached))

	age := time.Since(fetchedAt)
	if age < maxAge {
		logrus.Infof("skip remote fetch: cache written %.1f minutes ago", age.Minutes())
		return cached, nil
	}

	if len(cached) == 0 {
		builds, err := c.ListBuilds(ctx, org, pipeline, states, -1)
		if err != nil {
			return nil, err
		}
		if err := persist(ctx, store, org, pipeline, builds); err != nil {
			return nil, err
		}
		return builds, nil
	}

	// Cache order is newest-first; the first record carries the highest
	// build number.
	newest := cached[0].Number
	logrus.Infof("newest build number in cache: %d", newest)
	logrus.Info("update (forward-fill)")

	fresh, err := c.ListBuilds(ctx, org, pipeline, states, newest)
	if err != nil {
		return nil, err
	}

	builds := append(fresh, cached...)
	if err := persist(ctx, store, org, pipeline, builds); err != nil {
		return nil, err
	}
	return builds, nil
}

func persist(ctx context.Context, store BuildCache, org, pipeline string, builds []Build) error {
	payload, err := json.Marshal(builds)
	if err != nil {
		return fmt.Errorf("encoding build cache: %w", err)
	}
	logrus.Infof("persist %d byte(s) (%.2f MiB) to cache", len(payload), float64(len(payload))/1024.0/1024.0)
	if err := store.Save(ctx, org, pipeline, payload); err != nil {
		return fmt.Errorf("saving build cache: %w", err)
	}
	return nil
}
