// Package records holds the in-memory transaction log and goal list and
// keeps them durable through a key-value port. It is the single writer in
// the system; all derivation functions read copies it hands out.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fintrack/internal/core"
)

// ErrDurability marks a mutation that applied in memory but could not be
// persisted. The caller may surface it as a warning; the data stays visible.
var ErrDurability = errors.New("record store durability write failed")

// ErrNotFound is returned by replace operations for an unknown id.
var ErrNotFound = errors.New("record not found")

// Store holds both collections. Writes are serialized by a mutex; reads
// return copies, so aggregation can run concurrently without coordination.
type Store struct {
	mu           sync.Mutex
	kv           KV
	transactions []core.Transaction
	goals        []core.Goal
	version      uint64
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load reads both collections from the key-value store. A missing key means
// an empty collection; a collection that fails to parse falls back to empty
// with a warning, fatal to that collection only.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := loadCollection[core.Transaction](ctx, s.kv, KeyTransactions)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	goals, err := loadCollection[core.Goal](ctx, s.kv, KeyGoals)
	if err != nil {
		return fmt.Errorf("load goals: %w", err)
	}

	s.transactions = txs
	s.goals = goals
	s.version++
	return nil
}

func loadCollection[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	data, found, err := kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		slog.WarnContext(ctx, "Discarding malformed persisted collection",
			"key", key, "error", err, "bytes", len(data))
		return nil, nil
	}
	return items, nil
}

// Snapshot returns a copy of both collections plus a version that increases
// with every mutation, for memoization keyed by snapshot version.
func (s *Store) Snapshot() (core.Snapshot, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := core.Snapshot{
		Transactions: append([]core.Transaction(nil), s.transactions...),
		Goals:        append([]core.Goal(nil), s.goals...),
	}
	return snap, s.version
}

// AddTransaction prepends the transaction (newest-first canonical order)
// and persists the full collection. On persistence failure the in-memory
// mutation is kept and ErrDurability is returned.
func (s *Store) AddTransaction(ctx context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append([]core.Transaction{t}, s.transactions...)
	s.version++
	return s.persist(ctx, KeyTransactions, s.transactions)
}

// AddGoal appends the goal (append order is creation order) and persists
// the full collection.
func (s *Store) AddGoal(ctx context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goals = append(s.goals, g)
	s.version++
	return s.persist(ctx, KeyGoals, s.goals)
}

// ReplaceGoal swaps the goal with the same id, preserving list order.
func (s *Store) ReplaceGoal(ctx context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.goals {
		if s.goals[i].ID == g.ID {
			s.goals[i] = g
			s.version++
			return s.persist(ctx, KeyGoals, s.goals)
		}
	}
	return ErrNotFound
}

// FindGoal returns the goal with the given id.
func (s *Store) FindGoal(id string) (core.Goal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.goals {
		if g.ID == id {
			return g, true
		}
	}
	return core.Goal{}, false
}

func (s *Store) persist(ctx context.Context, key string, collection any) error {
	data, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, data); err != nil {
		slog.WarnContext(ctx, "Durability write failed, in-memory state kept",
			"key", key, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrDurability, key, err)
	}
	return nil
}
