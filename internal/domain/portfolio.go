package domain

import (
	"context"
	"errors"

	"github.com/rwa-lab/backend/internal/common"
	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/model"
	"github.com/rwa-lab/backend/internal/repository"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PortfolioDomain interface {
	GetPortfolio(context.Context, *model.GetPortfolioRequest) (*model.GetPortfolioResponse, error)
	GetListTokenByUser(context.Context, *model.GetListTokenByUserRequest) (*model.GetListTokenByUserResponse, error)
	GetListTokenByAsset(context.Context, *model.GetListTokenByAssetRequest) (*model.GetListTokenByAssetResponse, error)
}

type portfolioDomain struct {
	tokenHoldingRepo   repository.TokenHoldingRepository
	assetRepo          repository.AssetRepository
	globalRoleVerifier *common.GlobalRoleVerifier
}

func NewPortfolioDomain(
	tokenHoldingRepo repository.TokenHoldingRepository,
	assetRepo repository.AssetRepository,
	userRepo repository.UserRepository,
) *portfolioDomain {
	return &portfolioDomain{
		tokenHoldingRepo:   tokenHoldingRepo,
		assetRepo:          assetRepo,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
	}
}

// resolveUser returns the user whose holdings are read. Reading another
// user's holdings requires the admin role.
func (d *portfolioDomain) resolveUser(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	if userID == "" {
		return "", errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	if userID != xcontext.RequestUserID(ctx) {
		if err := verifyAdmin(ctx, d.globalRoleVerifier); err != nil {
			return "", err
		}
	}

	return userID, nil
}

// loadHoldings returns the positive holdings of userID whose asset still
// exists, keyed to their asset.
func (d *portfolioDomain) loadHoldings(
	ctx context.Context, userID string,
) ([]entity.TokenHolding, map[int64]*entity.Asset, error) {
	holdings, err := d.tokenHoldingRepo.GetListByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get holdings of user: %v", err)
		return nil, nil, errorx.Unknown
	}

	assetIDs := []int64{}
	for _, h := range holdings {
		assetIDs = append(assetIDs, h.AssetID)
	}

	assets, err := d.assetRepo.GetByIDs(ctx, assetIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get assets: %v", err)
		return nil, nil, errorx.Unknown
	}

	assetSet := map[int64]*entity.Asset{}
	for i := range assets {
		assetSet[assets[i].ID] = &assets[i]
	}

	result := []entity.TokenHolding{}
	for _, h := range holdings {
		if _, ok := assetSet[h.AssetID]; ok {
			result = append(result, h)
		}
	}

	return result, assetSet, nil
}

func (d *portfolioDomain) GetPortfolio(
	ctx context.Context, req *model.GetPortfolioRequest,
) (*model.GetPortfolioResponse, error) {
	userID, err := d.resolveUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	// Holdings and assets are read from one snapshot.
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	holdings, assets, err := d.loadHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	portfolio := model.Portfolio{
		UserID:        userID,
		TotalValue:    decimal.Zero,
		TotalInvested: decimal.Zero,
		TotalReturn:   decimal.Zero,
		MonthlyIncome: decimal.Zero,
		Holdings:      []model.PortfolioHolding{},
	}

	for _, h := range holdings {
		asset := assets[h.AssetID]
		amount := decimal.NewFromInt(h.Amount)
		value := asset.TokenPrice.Mul(amount)
		income := decimal.Zero
		if asset.TotalTokens > 0 {
			income = asset.MonthlyIncome.Mul(amount).Div(decimal.NewFromInt(asset.TotalTokens))
		}

		portfolio.Holdings = append(portfolio.Holdings, model.PortfolioHolding{
			Asset:          model.ConvertAsset(asset),
			Amount:         h.Amount,
			InvestedAmount: h.InvestedAmount,
			CurrentValue:   value,
			Return:         value.Sub(h.InvestedAmount),
			MonthlyIncome:  income,
		})

		portfolio.TotalValue = portfolio.TotalValue.Add(value)
		portfolio.TotalInvested = portfolio.TotalInvested.Add(h.InvestedAmount)
		portfolio.MonthlyIncome = portfolio.MonthlyIncome.Add(income)
	}

	portfolio.TotalReturn = portfolio.TotalValue.Sub(portfolio.TotalInvested)
	portfolio.TotalAssets = len(portfolio.Holdings)

	return &model.GetPortfolioResponse{Portfolio: portfolio}, nil
}

func (d *portfolioDomain) GetListTokenByUser(
	ctx context.Context, req *model.GetListTokenByUserRequest,
) (*model.GetListTokenByUserResponse, error) {
	userID, err := d.resolveUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	holdings, assets, err := d.loadHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := []model.TokenHolding{}
	for i := range holdings {
		result = append(result, model.ConvertTokenHolding(&holdings[i], assets[holdings[i].AssetID].TokenPrice))
	}

	return &model.GetListTokenByUserResponse{Holdings: result}, nil
}

func (d *portfolioDomain) GetListTokenByAsset(
	ctx context.Context, req *model.GetListTokenByAssetRequest,
) (*model.GetListTokenByAssetResponse, error) {
	asset, err := d.assetRepo.GetByID(ctx, req.AssetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found asset")
		}

		xcontext.Logger(ctx).Errorf("Cannot get asset: %v", err)
		return nil, errorx.Unknown
	}

	holdings, err := d.tokenHoldingRepo.GetListByAssetID(ctx, asset.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get holdings of asset: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.TokenHolding{}
	for i := range holdings {
		result = append(result, model.ConvertTokenHolding(&holdings[i], asset.TokenPrice))
	}

	return &model.GetListTokenByAssetResponse{Holdings: result}, nil
}
