package domain

import (
	"context"
	"errors"
	"time"

	"github.com/rwa-lab/backend/internal/common"
	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/model"
	"github.com/rwa-lab/backend/internal/repository"
	"github.com/rwa-lab/backend/pkg/enum"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/rwa-lab/backend/pkg/xlock"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AssetDomain interface {
	Create(context.Context, *model.CreateAssetRequest) (*model.CreateAssetResponse, error)
	Get(context.Context, *model.GetAssetRequest) (*model.GetAssetResponse, error)
	GetList(context.Context, *model.GetListAssetRequest) (*model.GetListAssetResponse, error)
	Update(context.Context, *model.UpdateAssetRequest) (*model.UpdateAssetResponse, error)
	Delete(context.Context, *model.DeleteAssetRequest) (*model.DeleteAssetResponse, error)
	Approve(context.Context, *model.ApproveAssetRequest) (*model.ApproveAssetResponse, error)
	Reject(context.Context, *model.RejectAssetRequest) (*model.RejectAssetResponse, error)
	MintToken(context.Context, *model.MintTokenRequest) (*model.MintTokenResponse, error)
	TransferToken(context.Context, *model.TransferTokenRequest) (*model.TransferTokenResponse, error)
}

type assetDomain struct {
	assetRepo          repository.AssetRepository
	userRepo           repository.UserRepository
	globalRoleVerifier *common.GlobalRoleVerifier
	supply             *AssetSupply
	ledger             *TokenLedger
	dispatcher         *NotificationDispatcher
	locker             *xlock.Locker
}

func NewAssetDomain(
	assetRepo repository.AssetRepository,
	userRepo repository.UserRepository,
	supply *AssetSupply,
	ledger *TokenLedger,
	dispatcher *NotificationDispatcher,
	locker *xlock.Locker,
) *assetDomain {
	return &assetDomain{
		assetRepo:          assetRepo,
		userRepo:           userRepo,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
		supply:             supply,
		ledger:             ledger,
		dispatcher:         dispatcher,
		locker:             locker,
	}
}

func validateAssetSpec(ctx context.Context, spec *model.AssetSpec) error {
	if spec.Name == "" {
		return errorx.New(errorx.ValidationError, "Asset name is required")
	}

	if spec.TotalTokens <= 0 {
		return errorx.New(errorx.ValidationError, "Total tokens must be positive")
	}

	if !spec.TokenPrice.IsPositive() {
		return errorx.New(errorx.ValidationError, "Token price must be positive")
	}

	if spec.APY.IsNegative() || spec.MonthlyIncome.IsNegative() {
		return errorx.New(errorx.ValidationError, "APY and monthly income must not be negative")
	}

	expected := spec.TokenPrice.Mul(decimal.NewFromInt(spec.TotalTokens))
	tolerance := xcontext.Configs(ctx).Ledger.ValueTolerance
	if spec.TotalValue.Sub(expected).Abs().GreaterThan(tolerance) {
		return errorx.New(errorx.ValidationError,
			"Total value %s does not match token price times total tokens (%s)", spec.TotalValue, expected)
	}

	if !spec.LaunchDate.IsZero() && !spec.FundingDeadline.IsZero() && !spec.FundingDeadline.After(spec.LaunchDate) {
		return errorx.New(errorx.ValidationError, "Funding deadline must be after launch date")
	}

	return nil
}

func (d *assetDomain) getAsset(ctx context.Context, id int64) (*entity.Asset, error) {
	asset, err := d.assetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found asset")
		}

		xcontext.Logger(ctx).Errorf("Cannot get asset: %v", err)
		return nil, errorx.Unknown
	}

	return asset, nil
}

// verifyOwnerOrAdmin allows the asset owner and any admin.
func (d *assetDomain) verifyOwnerOrAdmin(ctx context.Context, asset *entity.Asset) error {
	if asset.OwnerID == xcontext.RequestUserID(ctx) {
		return nil
	}

	return verifyAdmin(ctx, d.globalRoleVerifier)
}

func (d *assetDomain) Create(ctx context.Context, req *model.CreateAssetRequest) (*model.CreateAssetResponse, error) {
	ownerID := xcontext.RequestUserID(ctx)
	if err := verifyKYC(ctx, d.globalRoleVerifier, ownerID); err != nil {
		return nil, err
	}

	if err := validateAssetSpec(ctx, &req.AssetSpec); err != nil {
		return nil, err
	}

	asset := &entity.Asset{OwnerID: ownerID, Status: entity.AssetPending}
	applyAssetSpec(asset, &req.AssetSpec)

	if err := d.assetRepo.Create(ctx, asset); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create asset: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateAssetResponse{Asset: model.ConvertAsset(asset)}, nil
}

func applyAssetSpec(asset *entity.Asset, spec *model.AssetSpec) {
	asset.Name = spec.Name
	asset.Description = spec.Description
	asset.Category = spec.Category
	asset.Location = spec.Location
	asset.Images = spec.Images
	asset.Documents = spec.Documents
	asset.TotalValue = spec.TotalValue
	asset.TokenPrice = spec.TokenPrice
	asset.TotalTokens = spec.TotalTokens
	asset.AvailableTokens = spec.TotalTokens
	asset.APY = spec.APY
	asset.MonthlyIncome = spec.MonthlyIncome
	asset.RiskRating = spec.RiskRating
	asset.KeyMetrics.Data = entity.KeyMetrics{
		CapRate:         spec.KeyMetrics.CapRate,
		OccupancyRate:   spec.KeyMetrics.OccupancyRate,
		LocationScore:   spec.KeyMetrics.LocationScore,
		LiquidityRating: spec.KeyMetrics.LiquidityRating,
	}
	asset.LaunchDate = spec.LaunchDate
	asset.FundingDeadline = spec.FundingDeadline
}

func (d *assetDomain) Get(ctx context.Context, req *model.GetAssetRequest) (*model.GetAssetResponse, error) {
	asset, err := d.getAsset(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetAssetResponse{Asset: model.ConvertAsset(asset)}, nil
}

func (d *assetDomain) GetList(ctx context.Context, req *model.GetListAssetRequest) (*model.GetListAssetResponse, error) {
	offset, limit, err := pagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	filter := repository.GetListAssetFilter{
		Category: req.Category,
		OwnerID:  req.OwnerID,
		Offset:   offset,
		Limit:    limit,
	}

	if req.Status != "" {
		status, err := enum.ToEnum[entity.AssetStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.ValidationError, "Invalid asset status")
		}
		filter.Status = []entity.AssetStatus{status}
	}

	assets, err := d.assetRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get asset list: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Asset{}
	for i := range assets {
		result = append(result, model.ConvertAsset(&assets[i]))
	}

	return &model.GetListAssetResponse{Assets: result}, nil
}

func (d *assetDomain) Update(ctx context.Context, req *model.UpdateAssetRequest) (*model.UpdateAssetResponse, error) {
	if err := validateAssetSpec(ctx, &req.AssetSpec); err != nil {
		return nil, err
	}

	defer d.locker.Lock(xlock.AssetKey(req.ID))()

	asset, err := d.getAsset(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.verifyOwnerOrAdmin(ctx, asset); err != nil {
		return nil, err
	}

	if asset.Status != entity.AssetPending {
		return nil, errorx.New(errorx.InvalidState, "Only pending assets can be updated")
	}

	applyAssetSpec(asset, &req.AssetSpec)
	err = d.assetRepo.UpdateByID(ctx, asset.ID, asset.Version, map[string]any{
		"name":             asset.Name,
		"description":      asset.Description,
		"category":         asset.Category,
		"location":         asset.Location,
		"images":           asset.Images,
		"documents":        asset.Documents,
		"total_value":      asset.TotalValue,
		"token_price":      asset.TokenPrice,
		"total_tokens":     asset.TotalTokens,
		"available_tokens": asset.AvailableTokens,
		"apy":              asset.APY,
		"monthly_income":   asset.MonthlyIncome,
		"risk_rating":      asset.RiskRating,
		"key_metrics":      asset.KeyMetrics,
		"launch_date":      asset.LaunchDate,
		"funding_deadline": asset.FundingDeadline,
	})
	if err != nil {
		return nil, mapStaleVersion(ctx, "update asset", err)
	}
	asset.Version++

	return &model.UpdateAssetResponse{Asset: model.ConvertAsset(asset)}, nil
}

func (d *assetDomain) Delete(ctx context.Context, req *model.DeleteAssetRequest) (*model.DeleteAssetResponse, error) {
	defer d.locker.Lock(xlock.AssetKey(req.ID))()

	asset, err := d.getAsset(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.verifyOwnerOrAdmin(ctx, asset); err != nil {
		return nil, err
	}

	if err := d.assetRepo.DeleteByID(ctx, asset.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete asset: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeleteAssetResponse{}, nil
}

func (d *assetDomain) Approve(ctx context.Context, req *model.ApproveAssetRequest) (*model.ApproveAssetResponse, error) {
	if err := verifyAdmin(ctx, d.globalRoleVerifier); err != nil {
		return nil, err
	}

	asset, err := d.transition(ctx, req.ID, entity.AssetApproved,
		[]entity.AssetStatus{entity.AssetApproved, entity.AssetActive, entity.AssetFunded},
		"Your asset %s has been approved")
	if err != nil {
		return nil, err
	}

	return &model.ApproveAssetResponse{Asset: model.ConvertAsset(asset)}, nil
}

func (d *assetDomain) Reject(ctx context.Context, req *model.RejectAssetRequest) (*model.RejectAssetResponse, error) {
	if err := verifyAdmin(ctx, d.globalRoleVerifier); err != nil {
		return nil, err
	}

	asset, err := d.transition(ctx, req.ID, entity.AssetRejected,
		[]entity.AssetStatus{entity.AssetRejected},
		"Your asset %s has been rejected")
	if err != nil {
		return nil, err
	}

	return &model.RejectAssetResponse{Asset: model.ConvertAsset(asset)}, nil
}

// transition moves a Pending asset to the target status and notifies its
// owner. Assets already in one of unchanged are returned as they are; any
// other status is an InvalidState.
func (d *assetDomain) transition(
	ctx context.Context, id int64, to entity.AssetStatus, unchanged []entity.AssetStatus, message string,
) (*entity.Asset, error) {
	defer d.locker.Lock(xlock.AssetKey(id))()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	asset, err := d.getAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, s := range unchanged {
		if asset.Status == s {
			return asset, nil
		}
	}

	if asset.Status != entity.AssetPending {
		return nil, errorx.New(errorx.InvalidState, "Cannot move asset from %s to %s", asset.Status, to)
	}

	if err := d.assetRepo.UpdateStatus(ctx, asset.ID, []entity.AssetStatus{entity.AssetPending}, to); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update asset status: %v", err)
		return nil, errorx.Unknown
	}
	asset.Status = to
	asset.Version++

	notification, err := d.dispatcher.Notify(ctx, asset.OwnerID, entity.NotificationAdmin, message, asset.Name)
	if err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	d.dispatcher.Publish(ctx, notification)
	return asset, nil
}

func (d *assetDomain) MintToken(ctx context.Context, req *model.MintTokenRequest) (*model.MintTokenResponse, error) {
	callerID := xcontext.RequestUserID(ctx)
	recipientID := req.OwnerID
	if recipientID == "" {
		recipientID = callerID
	}

	if req.Amount <= 0 {
		return nil, errorx.New(errorx.ValidationError, "Amount must be positive")
	}

	if !req.Price.IsPositive() {
		return nil, errorx.New(errorx.ValidationError, "Price must be positive")
	}

	if recipientID != callerID {
		if err := verifyAdmin(ctx, d.globalRoleVerifier); err != nil {
			return nil, err
		}
	}

	if err := verifyKYC(ctx, d.globalRoleVerifier, recipientID); err != nil {
		return nil, err
	}

	defer d.locker.Lock(xlock.AssetKey(req.AssetID), xlock.HoldingKey(recipientID, req.AssetID))()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	asset, err := d.getAsset(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}

	if err := d.supply.ActivateIfDue(ctx, asset, time.Now()); err != nil {
		return nil, err
	}

	if err := d.supply.Reserve(ctx, asset, req.Amount); err != nil {
		return nil, err
	}

	cost := req.Price.Mul(decimal.NewFromInt(req.Amount))
	holding, err := d.ledger.Credit(ctx, recipientID, asset, req.Amount, cost)
	if err != nil {
		return nil, err
	}

	notification, err := d.dispatcher.Notify(ctx, recipientID, entity.NotificationInvestment,
		"You received %d tokens of %s", req.Amount, asset.Name)
	if err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	common.AddCounter(common.TokensMintedTotal, float64(req.Amount), "mint")
	d.dispatcher.Publish(ctx, notification)
	return &model.MintTokenResponse{Holding: model.ConvertTokenHolding(holding, asset.TokenPrice)}, nil
}

// TransferToken moves tokens between two holders outside of the trading flow.
// The holder or an admin may transfer, and the recipient must have passed KYC.
// Without a price the tokens move at the current token price.
func (d *assetDomain) TransferToken(
	ctx context.Context, req *model.TransferTokenRequest,
) (*model.TransferTokenResponse, error) {
	callerID := xcontext.RequestUserID(ctx)
	fromID := req.FromUserID
	if fromID == "" {
		fromID = callerID
	}

	if req.ToUserID == "" {
		return nil, errorx.New(errorx.ValidationError, "Not allow empty recipient")
	}

	if req.Amount <= 0 {
		return nil, errorx.New(errorx.ValidationError, "Amount must be positive")
	}

	if req.Price.IsNegative() {
		return nil, errorx.New(errorx.ValidationError, "Price must not be negative")
	}

	if fromID != callerID {
		if err := verifyAdmin(ctx, d.globalRoleVerifier); err != nil {
			return nil, err
		}
	}

	if err := verifyKYC(ctx, d.globalRoleVerifier, req.ToUserID); err != nil {
		return nil, err
	}

	defer d.locker.Lock(
		xlock.AssetKey(req.AssetID),
		xlock.HoldingKey(fromID, req.AssetID),
		xlock.HoldingKey(req.ToUserID, req.AssetID),
	)()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	asset, err := d.getAsset(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}

	price := req.Price
	if price.IsZero() {
		price = asset.TokenPrice
	}

	from, to, err := d.ledger.Transfer(ctx, fromID, req.ToUserID, asset, req.Amount, price)
	if err != nil {
		return nil, err
	}

	notification, err := d.dispatcher.Notify(ctx, req.ToUserID, entity.NotificationInvestment,
		"You received %d tokens of %s", req.Amount, asset.Name)
	if err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	d.dispatcher.Publish(ctx, notification)
	return &model.TransferTokenResponse{
		From: model.ConvertTokenHolding(from, asset.TokenPrice),
		To:   model.ConvertTokenHolding(to, asset.TokenPrice),
	}, nil
}
