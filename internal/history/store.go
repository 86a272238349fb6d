// Package history keeps recent dispatch outcomes in Redis so they can be
// inspected from the control server after the fact.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSize is the number of entries kept when none is configured.
const DefaultSize = 100

// Entry is one dispatch outcome.
type Entry struct {
	At          time.Time     `json:"at"`
	Index       int           `json:"index"`
	Description string        `json:"description"`
	Chord       string        `json:"chord"`
	Domain      string        `json:"domain"`
	Service     string        `json:"service"`
	OK          bool          `json:"ok"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// Counts is the success/failure tally of one binding.
type Counts struct {
	OK     int64 `json:"ok"`
	Failed int64 `json:"failed"`
}

// Store handles Redis operations for dispatch history
type Store struct {
	client *redis.Client
	size   int64
}

// NewStore creates a new history store keeping at most size entries
func NewStore(client *redis.Client, size int) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	return &Store{
		client: client,
		size:   int64(size),
	}
}

// Record stores an entry and bumps the binding's counter
func (s *Store) Record(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, KeyEntries, data)
	pipe.LTrim(ctx, KeyEntries, 0, s.size-1)
	pipe.HIncrBy(ctx, KeyCounters, CounterField(e.Index, e.OK), 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || int64(limit) > s.size {
		limit = int(s.size)
	}

	raw, err := s.client.LRange(ctx, KeyEntries, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			// Skip corrupted entries
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Counters returns the per-binding tallies keyed by binding index
func (s *Store) Counters(ctx context.Context) (map[int]Counts, error) {
	raw, err := s.client.HGetAll(ctx, KeyCounters).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read counters: %w", err)
	}

	out := make(map[int]Counts, len(raw))
	for field, val := range raw {
		idxStr, outcome, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			continue
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			continue
		}
		c := out[idx]
		if outcome == "ok" {
			c.OK = n
		} else {
			c.Failed = n
		}
		out[idx] = c
	}
	return out, nil
}

// Clear removes all history and counters
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, KeyEntries, KeyCounters).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func itoa(i int) string { return strconv.Itoa(i) }
