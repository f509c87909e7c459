// Package services implements the validated mutation operations over the
// record store. Each operation is total: it either fully applies or fully
// rejects, leaving the collections unchanged.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/records"
)

// RecordService orchestrates record mutations across the store and the
// optional AMQP change-event stream.
type RecordService struct {
	store      *records.Store
	amqpClient *amqp.Client
	now        func() time.Time
}

func NewRecordService(store *records.Store, amqpClient *amqp.Client) *RecordService {
	return &RecordService{
		store:      store,
		amqpClient: amqpClient,
		now:        time.Now,
	}
}

// TransactionInput mirrors the creation form: everything arrives as
// strings, and validation decides whether the operation applies at all.
type TransactionInput struct {
	Type        string
	Amount      string
	Category    string
	Description string
	Date        string
}

// GoalInput mirrors the goal creation form.
type GoalInput struct {
	Name     string
	Target   string
	Category string
	Deadline string
}

// DefaultTransactionInput returns the post-create form state: type expense,
// empty fields, date set to today.
func (s *RecordService) DefaultTransactionInput() TransactionInput {
	return TransactionInput{
		Type: string(core.Expense),
		Date: core.DateOf(s.now()).String(),
	}
}

// AddTransaction validates the input, assigns an identifier and prepends
// the transaction to the store. Rejection leaves the collection unchanged.
func (s *RecordService) AddTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	typ := core.TransactionType(strings.TrimSpace(in.Type))
	if typ == "" {
		typ = core.Expense
	}

	cents, err := core.ParseDecimalToCents(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	date := core.DateOf(s.now())
	if v := strings.TrimSpace(in.Date); v != "" {
		if date, err = core.ParseDate(v); err != nil {
			return core.Transaction{}, err
		}
	}

	t := core.Transaction{
		ID:          uuid.NewString(),
		Type:        typ,
		Amount:      core.Money{Cents: cents},
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		Date:        date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.AddTransaction(ctx, t); err != nil {
		// Durability failures keep the in-memory mutation; the caller gets
		// both the created transaction and the warning.
		s.publishChange(ctx, records.KeyTransactions, t.ID)
		return t, err
	}

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", t.ID,
		"type", string(t.Type),
		"amount_cents", t.Amount.Cents,
		"category", t.Category)

	s.publishChange(ctx, records.KeyTransactions, t.ID)
	return t, nil
}

// AddGoal validates the input, assigns an identifier, initializes progress
// to zero and appends the goal to the store.
func (s *RecordService) AddGoal(ctx context.Context, in GoalInput) (core.Goal, error) {
	cents, err := core.ParseTargetToCents(in.Target)
	if err != nil {
		return core.Goal{}, err
	}

	var deadline core.Date
	if v := strings.TrimSpace(in.Deadline); v != "" {
		if deadline, err = core.ParseDate(v); err != nil {
			return core.Goal{}, err
		}
	}

	g := core.Goal{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Target:   core.Money{Cents: cents},
		Current:  core.Money{Cents: 0},
		Category: strings.TrimSpace(in.Category),
		Deadline: deadline,
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	if err := s.store.AddGoal(ctx, g); err != nil {
		s.publishChange(ctx, records.KeyGoals, g.ID)
		return g, err
	}

	slog.InfoContext(ctx, "Goal created",
		"goal_id", g.ID,
		"name", g.Name,
		"target_cents", g.Target.Cents)

	s.publishChange(ctx, records.KeyGoals, g.ID)
	return g, nil
}

// SetGoalProgress replaces a goal's saved amount. This is the explicit
// progress-update operation; linking progress to transaction activity is a
// product decision that stays out of the engine.
func (s *RecordService) SetGoalProgress(ctx context.Context, id, amount string) (core.Goal, error) {
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.Goal{}, err
	}

	g, ok := s.store.FindGoal(id)
	if !ok {
		return core.Goal{}, fmt.Errorf("%w: goal %s", records.ErrNotFound, id)
	}

	g.Current = core.Money{Cents: cents}
	if err := s.store.ReplaceGoal(ctx, g); err != nil {
		return g, err
	}

	slog.InfoContext(ctx, "Goal progress updated",
		"goal_id", g.ID,
		"current_cents", g.Current.Cents)

	s.publishChange(ctx, records.KeyGoals, g.ID)
	return g, nil
}

func (s *RecordService) publishChange(ctx context.Context, collection, recordID string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishRecordChanged(ctx, collection, recordID); err != nil {
		// Fire and forget: the record is already saved locally.
		slog.ErrorContext(ctx, "Failed to publish record change",
			"collection", collection, "record_id", recordID, "error", err)
	}
}
