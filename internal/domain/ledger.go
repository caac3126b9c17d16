package domain

import (
	"context"
	"errors"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/repository"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// costPrecision is the number of decimal places kept when a cost basis is
// reduced proportionally.
const costPrecision = 18

// TokenLedger is the only writer of token holdings. Every method must run
// inside the caller's database transaction, with the caller holding the locks
// of the asset and the holdings it touches.
type TokenLedger struct {
	tokenHoldingRepo repository.TokenHoldingRepository
}

func NewTokenLedger(tokenHoldingRepo repository.TokenHoldingRepository) *TokenLedger {
	return &TokenLedger{tokenHoldingRepo: tokenHoldingRepo}
}

func requireTransaction(ctx context.Context) error {
	if !xcontext.InDBTransaction(ctx) {
		xcontext.Logger(ctx).Errorf("Ledger mutation outside of a transaction")
		return errorx.Unknown
	}

	return nil
}

// Credit increases the holding of userID in asset by amount and its cost basis
// by cost, creating the holding on the first credit.
func (l *TokenLedger) Credit(
	ctx context.Context, userID string, asset *entity.Asset, amount int64, cost decimal.Decimal,
) (*entity.TokenHolding, error) {
	if err := requireTransaction(ctx); err != nil {
		return nil, err
	}

	if amount <= 0 {
		return nil, errorx.New(errorx.ValidationError, "Amount must be positive")
	}

	if cost.IsNegative() {
		return nil, errorx.New(errorx.ValidationError, "Cost basis must not be negative")
	}

	held, err := l.tokenHoldingRepo.SumByAssetID(ctx, asset.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sum holdings of asset %d: %v", asset.ID, err)
		return nil, errorx.Unknown
	}

	if held+amount > asset.TotalTokens {
		return nil, errorx.New(errorx.InvariantViolation,
			"Holdings of asset %d would exceed its total tokens", asset.ID)
	}

	holding, err := l.tokenHoldingRepo.Get(ctx, userID, asset.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get holding: %v", err)
			return nil, errorx.Unknown
		}

		holding = &entity.TokenHolding{
			UserID:         userID,
			AssetID:        asset.ID,
			Amount:         amount,
			InvestedAmount: cost,
		}
		if err := l.tokenHoldingRepo.Create(ctx, holding); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create holding: %v", err)
			return nil, errorx.Unknown
		}

		return holding, nil
	}

	invested := holding.InvestedAmount.Add(cost)
	if err := l.tokenHoldingRepo.Increase(ctx, holding, amount, invested); err != nil {
		return nil, mapStaleVersion(ctx, "increase holding", err)
	}

	holding.Amount += amount
	holding.InvestedAmount = invested
	holding.Version++
	return holding, nil
}

// Debit decreases the holding of userID in asset by amount. The cost basis is
// reduced proportionally and the removed part is returned.
func (l *TokenLedger) Debit(
	ctx context.Context, userID string, asset *entity.Asset, amount int64,
) (*entity.TokenHolding, decimal.Decimal, error) {
	if err := requireTransaction(ctx); err != nil {
		return nil, decimal.Zero, err
	}

	if amount <= 0 {
		return nil, decimal.Zero, errorx.New(errorx.ValidationError, "Amount must be positive")
	}

	holding, err := l.tokenHoldingRepo.Get(ctx, userID, asset.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, errorx.New(errorx.InsufficientBalance, "Insufficient balance")
		}

		xcontext.Logger(ctx).Errorf("Cannot get holding: %v", err)
		return nil, decimal.Zero, errorx.Unknown
	}

	if holding.Amount < amount {
		return nil, decimal.Zero, errorx.New(errorx.InsufficientBalance, "Insufficient balance")
	}

	remaining := holding.Amount - amount
	invested := decimal.Zero
	if remaining > 0 {
		invested = holding.InvestedAmount.
			Mul(decimal.NewFromInt(remaining)).
			DivRound(decimal.NewFromInt(holding.Amount), costPrecision)
	}
	removed := holding.InvestedAmount.Sub(invested)

	if err := l.tokenHoldingRepo.Decrease(ctx, holding, amount, invested); err != nil {
		return nil, decimal.Zero, mapStaleVersion(ctx, "decrease holding", err)
	}

	holding.Amount = remaining
	holding.InvestedAmount = invested
	holding.Version++
	return holding, removed, nil
}

// Transfer moves amount tokens from one user to another at price. The
// receiver's cost basis grows by amount * price.
func (l *TokenLedger) Transfer(
	ctx context.Context, fromID, toID string, asset *entity.Asset, amount int64, price decimal.Decimal,
) (*entity.TokenHolding, *entity.TokenHolding, error) {
	if fromID == toID {
		return nil, nil, errorx.New(errorx.ValidationError, "Cannot transfer to the same user")
	}

	from, _, err := l.Debit(ctx, fromID, asset, amount)
	if err != nil {
		return nil, nil, err
	}

	to, err := l.Credit(ctx, toID, asset, amount, price.Mul(decimal.NewFromInt(amount)))
	if err != nil {
		return nil, nil, err
	}

	return from, to, nil
}

// Balance returns the amount of asset held by userID, zero if none.
func (l *TokenLedger) Balance(ctx context.Context, userID string, assetID int64) (int64, error) {
	holding, err := l.tokenHoldingRepo.Get(ctx, userID, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get holding: %v", err)
		return 0, errorx.Unknown
	}

	return holding.Amount, nil
}
