// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

// Package catalog manages the exercise catalog: an in-memory, atomically
// swappable snapshot loaded from a JSON file and optionally refreshed from
// a remote endpoint. Readers always see a complete, consistent snapshot;
// a failed reload leaves the previous snapshot in place.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/goccy/go-json"

	"github.com/raisedev/routinely/internal/logging"
	"github.com/raisedev/routinely/internal/models"
)

// snapshot is one immutable view of the catalog.
type snapshot struct {
	exercises []models.Exercise
	validIDs  map[string]struct{}
	rawJSON   []byte
}

// Catalog holds the current exercise snapshot. Safe for concurrent use;
// Load/Fetch swap the snapshot atomically while readers continue on the
// old one.
type Catalog struct {
	current atomic.Pointer[snapshot]
	client  *http.Client
}

// New returns an empty catalog. Call Load before serving requests.
func New() *Catalog {
	c := &Catalog{client: http.DefaultClient}
	c.current.Store(&snapshot{validIDs: map[string]struct{}{}})
	return c
}

// Load reads and replaces the catalog from a JSON file. The file holds an
// array of exercise records. Records that fail validation are dropped
// with a warning rather than failing the whole load; an empty result is
// an error so a bad file cannot wipe a working catalog.
func (c *Catalog) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return c.loadBytes(data, path)
}

func (c *Catalog) loadBytes(data []byte, source string) error {
	var exercises []models.Exercise
	if err := json.Unmarshal(data, &exercises); err != nil {
		return fmt.Errorf("failed to parse catalog %s: %w", source, err)
	}

	valid := make([]models.Exercise, 0, len(exercises))
	ids := make(map[string]struct{}, len(exercises))
	for i := range exercises {
		ex := exercises[i]
		if err := ex.Validate(); err != nil {
			logging.Warn().
				Err(err).
				Str("source", source).
				Msg("Dropping invalid catalog record")
			continue
		}
		if _, dup := ids[ex.ExerciseID]; dup {
			logging.Warn().
				Str("exercise_id", ex.ExerciseID).
				Str("source", source).
				Msg("Dropping duplicate catalog record")
			continue
		}
		ids[ex.ExerciseID] = struct{}{}
		valid = append(valid, ex)
	}

	if len(valid) == 0 {
		return fmt.Errorf("catalog %s contains no usable exercises", source)
	}

	raw, err := json.Marshal(valid)
	if err != nil {
		return fmt.Errorf("failed to re-encode catalog: %w", err)
	}

	c.current.Store(&snapshot{
		exercises: valid,
		validIDs:  ids,
		rawJSON:   raw,
	})

	logging.Info().
		Int("exercises", len(valid)).
		Str("source", source).
		Msg("Exercise catalog loaded")
	return nil
}

// Fetch downloads a fresh catalog from url, persists it to path, and
// swaps it in. The previous snapshot survives any failure.
func (c *Catalog) Fetch(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog from %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog fetch from %s returned status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read catalog response: %w", err)
	}

	if err := c.loadBytes(data, url); err != nil {
		return err
	}

	// Persist best-effort; the in-memory snapshot is already live.
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			logging.Warn().
				Err(err).
				Str("path", path).
				Msg("Failed to persist fetched catalog")
		}
	}
	return nil
}

// Exercises returns the current snapshot's records. Callers must not
// mutate the returned slice.
func (c *Catalog) Exercises() []models.Exercise {
	return c.current.Load().exercises
}

// RawJSON returns the current snapshot serialized as a JSON array,
// suitable for embedding into prompts.
func (c *Catalog) RawJSON() []byte {
	return c.current.Load().rawJSON
}

// IsValid reports whether the exercise ID exists in the current snapshot.
func (c *Catalog) IsValid(exerciseID string) bool {
	_, ok := c.current.Load().validIDs[exerciseID]
	return ok
}

// Count returns the number of exercises in the current snapshot.
func (c *Catalog) Count() int {
	return len(c.current.Load().exercises)
}
