// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"

	"github.com/bdgeo/roadctl/internal/config"
)

// Artifact keys. The filename on disk is the key plus ".json"; presence or
// absence of that file is the sole discovery mechanism.
const (
	KeyNetwork  = "road_network"
	KeyBoundary = "district_boundaries"
	KeyStats    = "connectivity_stats"
)

// SchemaVersion is stamped into every envelope. A mismatch on load is a
// DecodeError, which callers treat as a miss.
const SchemaVersion = 1

// ErrMiss reports that no entry exists for the key (or caching is disabled).
var ErrMiss = errors.New("cache miss")

// DecodeError reports an on-disk entry that could not be decoded for the key.
// Callers treat it like a miss and recompute.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cache entry %q cannot be decoded: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// envelope wraps every cached payload with enough metadata to refuse stale
// or foreign formats instead of mis-decoding them.
type envelope struct {
	Kind    string          `json:"kind"`
	Version int             `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Payload json.RawMessage `json:"payload"`
}

// EntryInfo describes one artifact slot for cache-info output.
type EntryInfo struct {
	Name    string
	Key     string
	Path    string
	Cached  bool
	Size    int64
	ModTime time.Time
}

// Store is an explicit handle on one cache directory. No locking: the tool is
// single-process and sequential by design.
type Store struct {
	dir      string
	disabled bool
	mirror   *S3Mirror
}

// Dir resolves the base cache directory.
// Precedence:
//  1. ROADCTL_CACHE_DIR, if set and non-empty
//  2. the cache.dir config value
//  3. os.UserCacheDir()/roadctl
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("ROADCTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if c, err := config.GetString("cache.dir"); err == nil && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "roadctl"), true
	}
	return "", false
}

// Enabled returns true unless ROADCTL_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("ROADCTL_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureBaseDir creates the base cache directory if caching is enabled and
// a base path can be resolved. Returns the path, whether it is usable, and an
// error if creation failed.
func EnsureBaseDir() (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}
	base, ok := Dir()
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// NewStore resolves the cache directory and optional S3 mirror from the
// environment and config.
func NewStore() *Store {
	dir, ok := Dir()
	s := &Store{
		dir:      dir,
		disabled: !ok || !Enabled(),
	}
	if m, err := mirrorFromConfig(); err != nil {
		log.WithError(err).Warn("cache mirror unavailable")
	} else {
		s.mirror = m
	}
	return s
}

// NewStoreAt returns a Store rooted at an explicit directory with no mirror.
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file a key maps to (valid even when the file is absent).
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Exists reports whether a file is present for the key.
func (s *Store) Exists(key string) bool {
	if s.disabled {
		return false
	}
	_, err := os.Stat(s.Path(key))
	return err == nil
}

// Load reads the entry for key and decodes its payload into out.
// Returns ErrMiss when no entry exists, or a *DecodeError when the entry
// cannot be decoded or its envelope does not match the key.
func (s *Store) Load(ctx context.Context, key string, out any) error {
	if s.disabled {
		return ErrMiss
	}

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if s.mirror == nil {
			return ErrMiss
		}
		data, err = s.mirror.Get(ctx, key)
		if err != nil {
			log.Debugf("cache mirror miss for %s: %v", key, err)
			return ErrMiss
		}
		// Repopulate the local file so the next run doesn't hit S3.
		if werr := s.write(key, data); werr != nil {
			log.WithError(werr).Warnf("failed to localize mirrored entry %s", key)
		}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return &DecodeError{Key: key, Err: err}
	}
	if env.Kind != key {
		return &DecodeError{Key: key, Err: fmt.Errorf("kind %q does not match", env.Kind)}
	}
	if env.Version != SchemaVersion {
		return &DecodeError{Key: key, Err: fmt.Errorf("schema version %d, want %d", env.Version, SchemaVersion)}
	}
	if err := json.Unmarshal(env.Payload, out); err != nil {
		return &DecodeError{Key: key, Err: err}
	}

	log.Debugf("cache hit: %s", s.Path(key))
	return nil
}

// Save encodes payload inside a versioned envelope and writes it for key.
// When a mirror is configured the entry is uploaded too, best-effort.
func (s *Store) Save(ctx context.Context, key string, payload any) error {
	if s.disabled {
		return nil // treat as disabled.
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", key, err)
	}
	data, err := json.Marshal(envelope{
		Kind:    key,
		Version: SchemaVersion,
		SavedAt: time.Now().UTC(),
		Payload: raw,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s envelope: %w", key, err)
	}

	if err := s.write(key, data); err != nil {
		return err
	}

	if s.mirror != nil {
		if err := s.mirror.Put(ctx, key, data); err != nil {
			log.WithError(err).Warnf("failed to mirror cache entry %s", key)
		}
	}

	return nil
}

func (s *Store) write(key string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(s.Path(key), data, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Delete removes the entry for key. A missing entry is not an error.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.Path(key))
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return fmt.Errorf("failed to remove cache file %s: %w", s.Path(key), err)
}

// Info reports the state of all three artifact slots in fixed order.
func (s *Store) Info() []EntryInfo {
	slots := []struct{ name, key string }{
		{"Road Network", KeyNetwork},
		{"District Boundaries", KeyBoundary},
		{"Connectivity Stats", KeyStats},
	}

	infos := make([]EntryInfo, 0, len(slots))
	for _, slot := range slots {
		info := EntryInfo{Name: slot.name, Key: slot.key, Path: s.Path(slot.key)}
		if fi, err := os.Stat(info.Path); err == nil {
			info.Cached = true
			info.Size = fi.Size()
			info.ModTime = fi.ModTime()
		}
		infos = append(infos, info)
	}
	return infos
}

// Purge removes files older than the provided number of hours.
// If hours <= 0 the purge is a no-op.
func (s *Store) Purge(hours int) error {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return nil
	}
	if _, err := os.Stat(s.dir); err != nil {
		return nil
	}
	maxAge := time.Duration(hours) * time.Hour
	if err := filepath.Walk(s.dir, func(path string, info os.FileInfo, _ error) error {
		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed cache file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove cache file %s", path)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}
