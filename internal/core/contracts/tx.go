package contracts

import "context"

// TxManager runs fn inside a single database transaction. Repositories called
// through the transactional context share the same tx.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
