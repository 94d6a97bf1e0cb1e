package service

import "context"

// IdempotencyStore remembers which loan a client-supplied Idempotency-Key
// produced. Keys are scoped to the acting user.
type IdempotencyStore interface {
	// Lookup returns the loan id stored for (actorID, key), if any.
	Lookup(ctx context.Context, actorID int64, key string) (int64, bool, error)
	// Remember stores loanID for (actorID, key) unless a value is already there.
	Remember(ctx context.Context, actorID int64, key string, loanID int64) error
}
