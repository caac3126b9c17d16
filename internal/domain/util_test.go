package domain

import (
	"context"
	"testing"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/repository"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/testutil"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/rwa-lab/backend/pkg/xlock"
	"github.com/stretchr/testify/require"
)

type testDomains struct {
	publisher    *testutil.MockPublisher
	supply       *AssetSupply
	ledger       *TokenLedger
	user         *userDomain
	asset        *assetDomain
	trade        *tradeDomain
	portfolio    *portfolioDomain
	notification *notificationDomain
}

func newTestDomains() *testDomains {
	userRepo := repository.NewUserRepository()
	assetRepo := repository.NewAssetRepository()
	tokenHoldingRepo := repository.NewTokenHoldingRepository()
	tradeRepo := repository.NewTradeRepository()
	notificationRepo := repository.NewNotificationRepository()

	locker := xlock.New()
	publisher := &testutil.MockPublisher{}
	dispatcher := NewNotificationDispatcher(notificationRepo, publisher)
	supply := NewAssetSupply(assetRepo, locker)
	ledger := NewTokenLedger(tokenHoldingRepo)

	return &testDomains{
		publisher:    publisher,
		supply:       supply,
		ledger:       ledger,
		user:         NewUserDomain(userRepo, dispatcher, locker),
		asset:        NewAssetDomain(assetRepo, userRepo, supply, ledger, dispatcher, locker),
		trade:        NewTradeDomain(tradeRepo, assetRepo, tokenHoldingRepo, userRepo, supply, ledger, dispatcher, locker),
		portfolio:    NewPortfolioDomain(tokenHoldingRepo, assetRepo, userRepo),
		notification: NewNotificationDomain(notificationRepo, userRepo),
	}
}

func requireCode(t *testing.T, err error, code errorx.Code) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, errorx.Kind(code), "got %v", err)
}

func getAsset(t *testing.T, ctx context.Context, id int64) *entity.Asset {
	t.Helper()
	asset, err := repository.NewAssetRepository().GetByID(ctx, id)
	require.NoError(t, err)
	return asset
}

func getUser(t *testing.T, ctx context.Context, id string) *entity.User {
	t.Helper()
	user, err := repository.NewUserRepository().GetByID(ctx, id)
	require.NoError(t, err)
	return user
}

// balance returns zero for a missing holding.
func balance(t *testing.T, ctx context.Context, userID string, assetID int64) int64 {
	t.Helper()
	holding, err := repository.NewTokenHoldingRepository().Get(ctx, userID, assetID)
	if err != nil {
		return 0
	}
	return holding.Amount
}

func countNotifications(t *testing.T, ctx context.Context, userID string) int64 {
	t.Helper()
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Notification{}).Where("user_id=?", userID).Count(&count).Error
	require.NoError(t, err)
	return count
}

func countTrades(t *testing.T, ctx context.Context) int64 {
	t.Helper()
	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.Trade{}).Count(&count).Error)
	return count
}

// requireSupplyInvariant checks that holdings and available supply add up to
// the total tokens of the asset.
func requireSupplyInvariant(t *testing.T, ctx context.Context, assetID int64) {
	t.Helper()
	asset := getAsset(t, ctx, assetID)
	held, err := repository.NewTokenHoldingRepository().SumByAssetID(ctx, assetID)
	require.NoError(t, err)
	require.Equal(t, asset.TotalTokens, held+asset.AvailableTokens)
}
