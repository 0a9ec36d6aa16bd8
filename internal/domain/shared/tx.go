package shared

import "context"

// TransactionManager runs a unit of work inside one database transaction.
// Repositories resolve the transaction from the context, so every repository
// call made within fn shares the same transaction and row locks taken with
// FindByIDForUpdate hold until fn returns.
//
// fn returning an error rolls the transaction back; nil commits it.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
