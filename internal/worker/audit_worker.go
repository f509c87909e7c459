// Package worker implements the record-change audit worker. It consumes
// change events and logs the derived financial position after each one,
// giving operators a persistent trail of how the totals moved.
package worker

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/records"
)

// AuditWorker reloads the record collections after each change event and
// logs the derived summary.
type AuditWorker struct {
	kv     records.KV
	logger *log.Logger
	now    func() time.Time
}

func NewAuditWorker(kv records.KV, logger *log.Logger) *AuditWorker {
	return &AuditWorker{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

// HandleRecordChange processes a single change event. Returning an error
// nacks the message for redelivery.
func (w *AuditWorker) HandleRecordChange(msg *amqp.RecordChangedMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store := records.NewStore(w.kv)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("reload records: %w", err)
	}

	snap, ver := store.Snapshot()
	summary := core.Summarize(snap)

	w.logger.InfoContext(ctx, "Record change audited",
		log.FieldCollection, msg.Collection,
		"record_id", msg.RecordID,
		log.FieldSnapshotVer, ver,
		"total_income", core.FormatBRL(summary.TotalIncome),
		"total_expenses", core.FormatBRL(summary.TotalExpenses),
		"balance", core.FormatBRL(summary.Balance),
		"transactions", len(snap.Transactions),
		"goals", len(snap.Goals))
	return nil
}

// LogCurrentPosition emits a one-off summary line, used at worker startup
// so the trail starts from a known state.
func (w *AuditWorker) LogCurrentPosition(ctx context.Context) error {
	store := records.NewStore(w.kv)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	snap, _ := store.Snapshot()
	summary := core.Summarize(snap)
	series := core.MonthlySeries(snap, w.now())
	current := series[len(series)-1]

	w.logger.InfoContext(ctx, "Current position",
		"balance", core.FormatBRL(summary.Balance),
		"balance_pct", fmt.Sprintf("%.1f%%", summary.BalancePercent),
		"month", current.Label,
		"month_balance", core.FormatBRL(current.Balance))
	return nil
}
