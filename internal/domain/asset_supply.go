package domain

import (
	"context"
	"time"

	"github.com/rwa-lab/backend/internal/common"
	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/repository"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/rwa-lab/backend/pkg/xlock"
)

// AssetSupply is the only writer of an asset's status and available supply.
// Methods mutate the given asset in place to mirror the stored row, and must
// run inside the caller's transaction while the asset lock is held.
type AssetSupply struct {
	assetRepo repository.AssetRepository
	locker    *xlock.Locker
}

func NewAssetSupply(assetRepo repository.AssetRepository, locker *xlock.Locker) *AssetSupply {
	return &AssetSupply{assetRepo: assetRepo, locker: locker}
}

// ActivateIfDue moves an Approved asset whose launch date has passed to
// Active.
func (s *AssetSupply) ActivateIfDue(ctx context.Context, asset *entity.Asset, now time.Time) error {
	if asset.Status != entity.AssetApproved || !asset.Launched(now) {
		return nil
	}

	err := s.assetRepo.UpdateSupply(ctx, asset.ID, asset.Version, asset.AvailableTokens, entity.AssetActive)
	if err != nil {
		return mapStaleVersion(ctx, "activate asset", err)
	}

	asset.Status = entity.AssetActive
	asset.Version++
	return nil
}

// Reserve takes amount tokens out of the available supply. Reaching zero
// marks the asset Funded.
func (s *AssetSupply) Reserve(ctx context.Context, asset *entity.Asset, amount int64) error {
	if err := requireTransaction(ctx); err != nil {
		return err
	}

	if !asset.Status.Tradable() {
		return errorx.New(errorx.InvalidState, "Asset is not open for investment (status %s)", asset.Status)
	}

	if amount <= 0 {
		return errorx.New(errorx.ValidationError, "Amount must be positive")
	}

	if amount > asset.AvailableTokens {
		return errorx.New(errorx.InsufficientSupply,
			"Only %d tokens are available", asset.AvailableTokens)
	}

	available := asset.AvailableTokens - amount
	status := asset.Status
	if available == 0 {
		status = entity.AssetFunded
	}

	if err := s.assetRepo.UpdateSupply(ctx, asset.ID, asset.Version, available, status); err != nil {
		return mapStaleVersion(ctx, "reserve supply", err)
	}

	asset.AvailableTokens = available
	asset.Status = status
	asset.Version++
	return nil
}

// Release returns amount tokens to the available supply. A Funded asset that
// regains supply goes back to Active once launched, otherwise to Approved.
func (s *AssetSupply) Release(ctx context.Context, asset *entity.Asset, amount int64) error {
	if err := requireTransaction(ctx); err != nil {
		return err
	}

	if amount <= 0 {
		return errorx.New(errorx.ValidationError, "Amount must be positive")
	}

	available := asset.AvailableTokens + amount
	if available > asset.TotalTokens {
		xcontext.Logger(ctx).Errorf("Releasing %d tokens overflows asset %d", amount, asset.ID)
		return errorx.New(errorx.InvariantViolation, "Available tokens would exceed total tokens")
	}

	status := asset.Status
	if status == entity.AssetFunded {
		status = entity.AssetApproved
		if asset.Launched(time.Now()) {
			status = entity.AssetActive
		}
	}

	if err := s.assetRepo.UpdateSupply(ctx, asset.ID, asset.Version, available, status); err != nil {
		return mapStaleVersion(ctx, "release supply", err)
	}

	asset.AvailableTokens = available
	asset.Status = status
	asset.Version++
	return nil
}

// Activate moves every due Approved asset to Active. It is run periodically.
func (s *AssetSupply) Activate(ctx context.Context, now time.Time) (int, error) {
	assets, err := s.assetRepo.GetActivatable(ctx, now)
	if err != nil {
		return 0, err
	}

	activated := 0
	for _, asset := range assets {
		unlock := s.locker.Lock(xlock.AssetKey(asset.ID))
		err := s.assetRepo.UpdateStatus(ctx, asset.ID, []entity.AssetStatus{entity.AssetApproved}, entity.AssetActive)
		unlock()
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot activate asset %d: %v", asset.ID, err)
			continue
		}
		activated++
	}

	common.AddCounter(common.AssetsActivatedTotal, float64(activated))
	return activated, nil
}
