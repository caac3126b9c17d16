package xcontext

import (
	"context"

	"gorm.io/gorm"
)

type txState struct {
	tx   *gorm.DB
	done bool
}

type txOwnerKey struct{}

func currentTx(ctx context.Context) *txState {
	state, _ := ctx.Value(dbTransactionKey{}).(*txState)
	if state == nil || state.done {
		return nil
	}

	return state
}

// WithDBTransaction opens a transaction and binds it to the returned context.
// If ctx already carries an open transaction, it is joined and the matching
// commit/rollback calls become no-ops, leaving the outcome to the owner.
func WithDBTransaction(ctx context.Context) context.Context {
	if currentTx(ctx) != nil {
		return context.WithValue(ctx, txOwnerKey{}, false)
	}

	db, _ := ctx.Value(dbKey{}).(*gorm.DB)
	state := &txState{tx: db.WithContext(ctx).Begin()}
	ctx = context.WithValue(ctx, dbTransactionKey{}, state)
	return context.WithValue(ctx, txOwnerKey{}, true)
}

func ownedTx(ctx context.Context) *txState {
	if owner, _ := ctx.Value(txOwnerKey{}).(bool); !owner {
		return nil
	}

	return currentTx(ctx)
}

// WithCommitDBTransaction commits the transaction opened by the paired
// WithDBTransaction call.
func WithCommitDBTransaction(ctx context.Context) error {
	state := ownedTx(ctx)
	if state == nil {
		return nil
	}

	state.done = true
	return state.tx.Commit().Error
}

// WithRollbackDBTransaction rolls back the paired transaction unless it was
// already committed. It is safe to defer unconditionally.
func WithRollbackDBTransaction(ctx context.Context) {
	state := ownedTx(ctx)
	if state == nil {
		return
	}

	state.done = true
	if err := state.tx.Rollback().Error; err != nil {
		Logger(ctx).Errorf("Cannot rollback transaction: %v", err)
	}
}

// InDBTransaction reports whether ctx carries an open transaction.
func InDBTransaction(ctx context.Context) bool {
	return currentTx(ctx) != nil
}
