package domain

import (
	"context"
	"database/sql"
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

type TradeDomain interface {
	PlaceOrder(context.Context, *model.PlaceOrderRequest) (*model.PlaceOrderResponse, error)
	CancelOrder(context.Context, *model.CancelOrderRequest) (*model.CancelOrderResponse, error)
	CreateTrade(context.Context, *model.CreateTradeRequest) (*model.CreateTradeResponse, error)
	UpdateTradeStatus(context.Context, *model.UpdateTradeStatusRequest) (*model.UpdateTradeStatusResponse, error)
	Get(context.Context, *model.GetTradeRequest) (*model.GetTradeResponse, error)
	GetList(context.Context, *model.GetListTradeRequest) (*model.GetListTradeResponse, error)
}

type tradeDomain struct {
	tradeRepo          repository.TradeRepository
	assetRepo          repository.AssetRepository
	tokenHoldingRepo   repository.TokenHoldingRepository
	globalRoleVerifier *common.GlobalRoleVerifier
	supply             *AssetSupply
	ledger             *TokenLedger
	dispatcher         *NotificationDispatcher
	locker             *xlock.Locker
}

func NewTradeDomain(
	tradeRepo repository.TradeRepository,
	assetRepo repository.AssetRepository,
	tokenHoldingRepo repository.TokenHoldingRepository,
	userRepo repository.UserRepository,
	supply *AssetSupply,
	ledger *TokenLedger,
	dispatcher *NotificationDispatcher,
	locker *xlock.Locker,
) *tradeDomain {
	return &tradeDomain{
		tradeRepo:          tradeRepo,
		assetRepo:          assetRepo,
		tokenHoldingRepo:   tokenHoldingRepo,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
		supply:             supply,
		ledger:             ledger,
		dispatcher:         dispatcher,
		locker:             locker,
	}
}

func parseCurrency(s string) (entity.Currency, error) {
	if s == "" {
		return entity.CurrencyUSD, nil
	}

	currency, err := enum.ToEnum[entity.Currency](s)
	if err != nil {
		return "", errorx.New(errorx.ValidationError, "Invalid currency %s", s)
	}

	return currency, nil
}

func (d *tradeDomain) getAsset(ctx context.Context, id int64) (*entity.Asset, error) {
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

func (d *tradeDomain) getTrade(ctx context.Context, id int64) (*entity.Trade, error) {
	trade, err := d.tradeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found trade")
		}

		xcontext.Logger(ctx).Errorf("Cannot get trade: %v", err)
		return nil, errorx.Unknown
	}

	return trade, nil
}

// execute applies quantity tokens of a trade to the ledger at the trade price.
func (d *tradeDomain) execute(ctx context.Context, trade *entity.Trade, asset *entity.Asset, quantity int64) error {
	switch {
	case trade.SellerID == "":
		if err := d.supply.Reserve(ctx, asset, quantity); err != nil {
			return err
		}

		_, err := d.ledger.Credit(ctx, trade.BuyerID, asset, quantity, trade.Price.Mul(decimal.NewFromInt(quantity)))
		return err

	case trade.BuyerID == "":
		if _, _, err := d.ledger.Debit(ctx, trade.SellerID, asset, quantity); err != nil {
			return err
		}

		return d.supply.Release(ctx, asset, quantity)

	default:
		_, _, err := d.ledger.Transfer(ctx, trade.SellerID, trade.BuyerID, asset, quantity, trade.Price)
		return err
	}
}

// notifyParties notifies every non market maker side of the trade.
func (d *tradeDomain) notifyParties(
	ctx context.Context, trade *entity.Trade, format string, a ...any,
) ([]*entity.Notification, error) {
	var notifications []*entity.Notification
	for _, userID := range []string{trade.BuyerID, trade.SellerID} {
		n, err := d.dispatcher.Notify(ctx, userID, entity.NotificationTrade, format, a...)
		if err != nil {
			return nil, err
		}

		if n != nil {
			notifications = append(notifications, n)
		}
	}

	return notifications, nil
}

func (d *tradeDomain) isParty(ctx context.Context, trade *entity.Trade) bool {
	userID := xcontext.RequestUserID(ctx)
	return userID != "" && (userID == trade.BuyerID || userID == trade.SellerID)
}

func (d *tradeDomain) PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest) (*model.PlaceOrderResponse, error) {
	callerID := xcontext.RequestUserID(ctx)
	if err := verifyKYC(ctx, d.globalRoleVerifier, callerID); err != nil {
		return nil, err
	}

	side, err := enum.ToEnum[entity.TradeSide](req.Side)
	if err != nil {
		return nil, errorx.New(errorx.ValidationError, "Side must be buy or sell")
	}

	kind := entity.OrderMarket
	if req.Kind != "" {
		if kind, err = enum.ToEnum[entity.OrderKind](req.Kind); err != nil {
			return nil, errorx.New(errorx.ValidationError, "Kind must be market or limit")
		}
	}

	if kind == entity.OrderLimit && !req.LimitPrice.IsPositive() {
		return nil, errorx.New(errorx.ValidationError, "Limit price must be positive")
	}

	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	if req.Quantity <= 0 {
		return nil, errorx.New(errorx.ValidationError, "Quantity must be positive")
	}

	defer d.locker.Lock(xlock.AssetKey(req.AssetID), xlock.HoldingKey(callerID, req.AssetID))()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	asset, err := d.getAsset(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}

	if err := d.supply.ActivateIfDue(ctx, asset, time.Now()); err != nil {
		return nil, err
	}

	trade := &entity.Trade{
		AssetID:   asset.ID,
		Side:      side,
		Kind:      kind,
		Quantity:  req.Quantity,
		Price:     asset.TokenPrice,
		Currency:  currency,
		Status:    entity.TradePending,
		CreatedBy: callerID,
	}

	marketable := kind == entity.OrderMarket
	if side == entity.TradeBuy {
		if !asset.Status.Tradable() {
			return nil, errorx.New(errorx.InvalidState, "Asset is not open for investment (status %s)", asset.Status)
		}

		trade.BuyerID = callerID
		marketable = marketable || req.LimitPrice.GreaterThanOrEqual(asset.TokenPrice)
	} else {
		balance, err := d.ledger.Balance(ctx, callerID, asset.ID)
		if err != nil {
			return nil, err
		}

		if balance < req.Quantity {
			return nil, errorx.New(errorx.InsufficientBalance, "Insufficient balance")
		}

		trade.SellerID = callerID
		marketable = marketable || req.LimitPrice.LessThanOrEqual(asset.TokenPrice)
	}

	if marketable {
		if err := d.execute(ctx, trade, asset, trade.Quantity); err != nil {
			return nil, err
		}

		trade.Filled = trade.Quantity
		trade.Status = entity.TradeFilled
	} else {
		trade.Price = req.LimitPrice
	}

	if err := d.tradeRepo.Create(ctx, trade); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create trade: %v", err)
		return nil, errorx.Unknown
	}

	notifications, err := d.notifyParties(ctx, trade, "Your %s order #%d of %d tokens of %s is %s",
		trade.Side, trade.ID, trade.Quantity, asset.Name, trade.Status)
	if err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	if trade.Status == entity.TradeFilled {
		common.IncCounter(common.TradesExecutedTotal, string(trade.Side))
		if trade.Side == entity.TradeBuy {
			common.AddCounter(common.TokensMintedTotal, float64(trade.Quantity), "trade")
		}
	}

	d.dispatcher.Publish(ctx, notifications...)
	return &model.PlaceOrderResponse{Trade: model.ConvertTrade(trade)}, nil
}

func (d *tradeDomain) CancelOrder(ctx context.Context, req *model.CancelOrderRequest) (*model.CancelOrderResponse, error) {
	resp, err := d.UpdateTradeStatus(ctx, &model.UpdateTradeStatusRequest{
		ID:     req.ID,
		Status: string(entity.TradeCancelled),
	})
	if err != nil {
		return nil, err
	}

	return &model.CancelOrderResponse{Trade: resp.Trade}, nil
}

func (d *tradeDomain) CreateTrade(ctx context.Context, req *model.CreateTradeRequest) (*model.CreateTradeResponse, error) {
	if req.BuyerID == "" && req.SellerID == "" {
		return nil, errorx.New(errorx.ValidationError, "A trade needs at least one counterparty")
	}

	if req.BuyerID == req.SellerID {
		return nil, errorx.New(errorx.ValidationError, "Buyer and seller must differ")
	}

	if req.Quantity <= 0 {
		return nil, errorx.New(errorx.ValidationError, "Quantity must be positive")
	}

	if !req.Price.IsPositive() {
		return nil, errorx.New(errorx.ValidationError, "Price must be positive")
	}

	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	callerID := xcontext.RequestUserID(ctx)
	if callerID != req.BuyerID && callerID != req.SellerID {
		if err := verifyAdmin(ctx, d.globalRoleVerifier); err != nil {
			return nil, err
		}
	}

	for _, userID := range []string{req.BuyerID, req.SellerID} {
		if userID == "" {
			continue
		}

		if err := verifyKYC(ctx, d.globalRoleVerifier, userID); err != nil {
			return nil, err
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	asset, err := d.getAsset(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}

	trade := &entity.Trade{
		BuyerID:   req.BuyerID,
		SellerID:  req.SellerID,
		AssetID:   asset.ID,
		Side:      entity.TradeBuy,
		Kind:      entity.OrderLimit,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Currency:  currency,
		Status:    entity.TradePending,
		CreatedBy: callerID,
	}

	if callerID == req.SellerID {
		trade.Side = entity.TradeSell
	}

	if !req.CreatedAt.IsZero() {
		trade.CreatedAt = req.CreatedAt
	}

	if req.TokenID != 0 {
		holding, err := d.tokenHoldingRepo.GetByID(ctx, req.TokenID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get holding: %v", err)
			return nil, errorx.Unknown
		}

		if holding == nil || holding.UserID != req.SellerID || holding.AssetID != asset.ID {
			return nil, errorx.New(errorx.ValidationError, "Token %d is not held by the seller", req.TokenID)
		}

		trade.TokenID = sql.NullInt64{Int64: holding.ID, Valid: true}
	}

	if err := d.tradeRepo.Create(ctx, trade); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create trade: %v", err)
		return nil, errorx.Unknown
	}

	notifications, err := d.notifyParties(ctx, trade, "Trade #%d of %d tokens of %s was created",
		trade.ID, trade.Quantity, asset.Name)
	if err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	d.dispatcher.Publish(ctx, notifications...)
	return &model.CreateTradeResponse{Trade: model.ConvertTrade(trade)}, nil
}

func (d *tradeDomain) UpdateTradeStatus(
	ctx context.Context, req *model.UpdateTradeStatusRequest,
) (*model.UpdateTradeStatusResponse, error) {
	status, err := enum.ToEnum[entity.TradeStatus](req.Status)
	if err != nil {
		return nil, errorx.New(errorx.ValidationError, "Invalid trade status")
	}

	if status == entity.TradePending {
		return nil, errorx.New(errorx.ValidationError, "A trade cannot move back to pending")
	}

	// The parties are immutable, so they can be read before locking.
	trade, err := d.getTrade(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	defer d.locker.Lock(
		xlock.TradeKey(trade.ID),
		xlock.AssetKey(trade.AssetID),
		xlock.HoldingKey(trade.BuyerID, trade.AssetID),
		xlock.HoldingKey(trade.SellerID, trade.AssetID),
	)()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	trade, err = d.getTrade(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if trade.Status.Terminal() {
		return nil, errorx.New(errorx.InvalidState, "Trade is already %s", trade.Status)
	}

	if status == entity.TradeCancelled {
		return d.cancel(ctx, trade)
	}

	return d.fill(ctx, trade, status, req.Filled)
}

func (d *tradeDomain) cancel(ctx context.Context, trade *entity.Trade) (*model.UpdateTradeStatusResponse, error) {
	if !d.isParty(ctx, trade) {
		if err := verifyAdmin(ctx, d.globalRoleVerifier); err != nil {
			return nil, err
		}
	}

	if trade.Status != entity.TradePending {
		return nil, errorx.New(errorx.InvalidState, "Only pending trades can be cancelled")
	}

	err := d.tradeRepo.UpdateStatus(ctx, trade.ID, []entity.TradeStatus{entity.TradePending}, entity.TradeCancelled)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot cancel trade: %v", err)
		return nil, errorx.Unknown
	}
	trade.Status = entity.TradeCancelled

	notifications, err := d.notifyParties(ctx, trade, "Trade #%d was cancelled", trade.ID)
	if err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	d.dispatcher.Publish(ctx, notifications...)
	return &model.UpdateTradeStatusResponse{Trade: model.ConvertTrade(trade)}, nil
}

func (d *tradeDomain) fill(
	ctx context.Context, trade *entity.Trade, status entity.TradeStatus, filled int64,
) (*model.UpdateTradeStatusResponse, error) {
	// Only the delivering side may fill. For primary trades the market side
	// delivers, which is operated by admins.
	if trade.Primary() || xcontext.RequestUserID(ctx) != trade.SellerID {
		if err := verifyAdmin(ctx, d.globalRoleVerifier); err != nil {
			return nil, err
		}
	}

	if status == entity.TradeFilled && filled == 0 {
		filled = trade.Quantity
	}

	if filled <= trade.Filled || filled > trade.Quantity {
		return nil, errorx.New(errorx.ValidationError,
			"Filled must be in (%d, %d]", trade.Filled, trade.Quantity)
	}

	if status == entity.TradeFilled && filled != trade.Quantity {
		return nil, errorx.New(errorx.ValidationError, "A filled trade must fill its whole quantity")
	}

	if status == entity.TradePartiallyFilled && filled == trade.Quantity {
		return nil, errorx.New(errorx.ValidationError, "Use filled status to fill the whole quantity")
	}

	asset, err := d.getAsset(ctx, trade.AssetID)
	if err != nil {
		return nil, err
	}

	if err := d.supply.ActivateIfDue(ctx, asset, time.Now()); err != nil {
		return nil, err
	}

	delta := filled - trade.Filled
	if err := d.execute(ctx, trade, asset, delta); err != nil {
		return nil, err
	}

	if err := d.tradeRepo.UpdateFilled(ctx, trade.ID, trade.Filled, filled, status); err != nil {
		return nil, mapStaleVersion(ctx, "update trade", err)
	}
	trade.Filled = filled
	trade.Status = status

	notifications, err := d.notifyParties(ctx, trade, "Trade #%d filled %d of %d tokens of %s",
		trade.ID, trade.Filled, trade.Quantity, asset.Name)
	if err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	common.IncCounter(common.TradesExecutedTotal, string(trade.Side))
	d.dispatcher.Publish(ctx, notifications...)
	return &model.UpdateTradeStatusResponse{Trade: model.ConvertTrade(trade)}, nil
}

func (d *tradeDomain) Get(ctx context.Context, req *model.GetTradeRequest) (*model.GetTradeResponse, error) {
	trade, err := d.getTrade(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetTradeResponse{Trade: model.ConvertTrade(trade)}, nil
}

func (d *tradeDomain) GetList(ctx context.Context, req *model.GetListTradeRequest) (*model.GetListTradeResponse, error) {
	offset, limit, err := pagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	filter := repository.GetListTradeFilter{
		UserID:  req.UserID,
		AssetID: req.AssetID,
		Offset:  offset,
		Limit:   limit,
	}

	if req.Status != "" {
		status, err := enum.ToEnum[entity.TradeStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.ValidationError, "Invalid trade status")
		}
		filter.Status = []entity.TradeStatus{status}
	}

	trades, err := d.tradeRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get trade list: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Trade{}
	for i := range trades {
		result = append(result, model.ConvertTrade(&trades[i]))
	}

	return &model.GetListTradeResponse{Trades: result}, nil
}
