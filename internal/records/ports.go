package records

import "context"

// Persisted collection keys, carried over from the original data layout.
const (
	KeyTransactions = "financial-transactions"
	KeyGoals        = "financial-goals"
)

// KV is the outbound port to the local key-value mechanism backing the
// record store. A missing key is reported through found=false and is never
// an error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}
