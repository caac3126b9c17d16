package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/model"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/testutil"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func sampleAssetSpec() model.AssetSpec {
	return model.AssetSpec{
		Name:          "Harbor Loft",
		Category:      "real_estate",
		Location:      "Lisbon",
		Images:        []string{"https://img/1.png"},
		TotalValue:    decimal.NewFromInt(1_000_000),
		TokenPrice:    decimal.NewFromInt(1),
		TotalTokens:   1_000_000,
		APY:           decimal.RequireFromString("0.07"),
		MonthlyIncome: decimal.NewFromInt(5000),
		KeyMetrics:    model.KeyMetrics{LiquidityRating: "high"},
	}
}

func Test_assetDomain_CreateApproveMint(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	ctxUser1 := testutil.NewMockContextWithUserID(ctx, testutil.User1.ID)
	ctxAdmin := testutil.NewMockContextWithUserID(ctx, testutil.AdminUser.ID)

	// Created assets wait for admin approval.
	created, err := d.asset.Create(ctxUser1, &model.CreateAssetRequest{AssetSpec: sampleAssetSpec()})
	require.NoError(t, err)
	require.Equal(t, string(entity.AssetPending), created.Asset.Status)
	require.Equal(t, int64(1_000_000), created.Asset.AvailableTokens)
	require.Equal(t, testutil.User1.ID, created.Asset.OwnerID)

	_, err = d.asset.Approve(ctxUser1, &model.ApproveAssetRequest{ID: created.Asset.ID})
	requireCode(t, err, errorx.Unauthorized)

	approved, err := d.asset.Approve(ctxAdmin, &model.ApproveAssetRequest{ID: created.Asset.ID})
	require.NoError(t, err)
	require.Equal(t, string(entity.AssetApproved), approved.Asset.Status)
	require.Equal(t, int64(1), countNotifications(t, ctx, testutil.User1.ID))

	// Over-minting changes nothing.
	_, err = d.asset.MintToken(ctxUser1, &model.MintTokenRequest{
		AssetID: created.Asset.ID,
		Amount:  1_000_001,
		Price:   decimal.NewFromInt(1),
	})
	requireCode(t, err, errorx.InsufficientSupply)

	asset := getAsset(t, ctx, created.Asset.ID)
	require.Equal(t, int64(1_000_000), asset.AvailableTokens)
	require.Equal(t, int64(0), balance(t, ctx, testutil.User1.ID, created.Asset.ID))

	// Minting the whole supply funds the asset.
	minted, err := d.asset.MintToken(ctxUser1, &model.MintTokenRequest{
		AssetID: created.Asset.ID,
		Amount:  1_000_000,
		Price:   decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1_000_000), minted.Holding.Amount)
	require.True(t, minted.Holding.InvestedAmount.Equal(decimal.NewFromInt(1_000_000)))

	asset = getAsset(t, ctx, created.Asset.ID)
	require.Equal(t, int64(0), asset.AvailableTokens)
	require.Equal(t, entity.AssetFunded, asset.Status)
	require.Equal(t, int64(1_000_000), balance(t, ctx, testutil.User1.ID, created.Asset.ID))
	requireSupplyInvariant(t, ctx, created.Asset.ID)

	// A Funded asset can no longer be minted.
	_, err = d.asset.MintToken(ctxUser1, &model.MintTokenRequest{
		AssetID: created.Asset.ID,
		Amount:  1,
		Price:   decimal.NewFromInt(1),
	})
	requireCode(t, err, errorx.InvalidState)
	require.Equal(t, int64(1_000_000), balance(t, ctx, testutil.User1.ID, created.Asset.ID))
}

func Test_assetDomain_Create_Invalid(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	tests := []struct {
		name   string
		userID string
		modify func(*model.AssetSpec)
		code   errorx.Code
	}{
		{
			name:   "kyc not approved",
			userID: testutil.NotSubmittedUser.ID,
			code:   errorx.Unauthorized,
		},
		{
			name:   "not registered",
			userID: "unknown",
			code:   errorx.NotFound,
		},
		{
			name:   "empty name",
			userID: testutil.User1.ID,
			modify: func(s *model.AssetSpec) { s.Name = "" },
			code:   errorx.ValidationError,
		},
		{
			name:   "zero tokens",
			userID: testutil.User1.ID,
			modify: func(s *model.AssetSpec) { s.TotalTokens = 0 },
			code:   errorx.ValidationError,
		},
		{
			name:   "zero price",
			userID: testutil.User1.ID,
			modify: func(s *model.AssetSpec) { s.TokenPrice = decimal.Zero },
			code:   errorx.ValidationError,
		},
		{
			name:   "negative apy",
			userID: testutil.User1.ID,
			modify: func(s *model.AssetSpec) { s.APY = decimal.NewFromInt(-1) },
			code:   errorx.ValidationError,
		},
		{
			name:   "value mismatch",
			userID: testutil.User1.ID,
			modify: func(s *model.AssetSpec) { s.TotalValue = decimal.RequireFromString("1000000.02") },
			code:   errorx.ValidationError,
		},
		{
			name:   "value within tolerance",
			userID: testutil.User1.ID,
			modify: func(s *model.AssetSpec) { s.TotalValue = decimal.RequireFromString("1000000.01") },
		},
		{
			name:   "deadline before launch",
			userID: testutil.User1.ID,
			modify: func(s *model.AssetSpec) {
				s.LaunchDate = time.Now().Add(48 * time.Hour)
				s.FundingDeadline = time.Now().Add(24 * time.Hour)
			},
			code: errorx.ValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := sampleAssetSpec()
			if tt.modify != nil {
				tt.modify(&spec)
			}

			_, err := d.asset.Create(testutil.NewMockContextWithUserID(ctx, tt.userID),
				&model.CreateAssetRequest{AssetSpec: spec})
			if tt.code == 0 {
				require.NoError(t, err)
				return
			}

			requireCode(t, err, tt.code)
		})
	}
}

func Test_assetDomain_GetList(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	resp, err := d.asset.GetList(ctx, &model.GetListAssetRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Assets, len(testutil.Assets))

	resp, err = d.asset.GetList(ctx, &model.GetListAssetRequest{Status: "approved"})
	require.NoError(t, err)
	require.Len(t, resp.Assets, 2)
	require.Equal(t, testutil.ApprovedAsset.ID, resp.Assets[0].ID)
	require.Equal(t, testutil.DueAsset.ID, resp.Assets[1].ID)

	resp, err = d.asset.GetList(ctx, &model.GetListAssetRequest{Category: "art"})
	require.NoError(t, err)
	require.Len(t, resp.Assets, 1)
	require.Equal(t, testutil.FundedAsset.Name, resp.Assets[0].Name)

	resp, err = d.asset.GetList(ctx, &model.GetListAssetRequest{Offset: 4, Limit: 10})
	require.NoError(t, err)
	require.Len(t, resp.Assets, 2)

	_, err = d.asset.GetList(ctx, &model.GetListAssetRequest{Status: "sold"})
	requireCode(t, err, errorx.ValidationError)
}

func Test_assetDomain_Update(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	spec := sampleAssetSpec()
	spec.Name = "Renamed Villa"

	_, err := d.asset.Update(testutil.NewMockContextWithUserID(ctx, testutil.User2.ID),
		&model.UpdateAssetRequest{ID: testutil.PendingAsset.ID, AssetSpec: spec})
	requireCode(t, err, errorx.Unauthorized)

	_, err = d.asset.Update(testutil.NewMockContextWithUserID(ctx, testutil.User1.ID),
		&model.UpdateAssetRequest{ID: testutil.ApprovedAsset.ID, AssetSpec: spec})
	requireCode(t, err, errorx.InvalidState)

	resp, err := d.asset.Update(testutil.NewMockContextWithUserID(ctx, testutil.User1.ID),
		&model.UpdateAssetRequest{ID: testutil.PendingAsset.ID, AssetSpec: spec})
	require.NoError(t, err)
	require.Equal(t, "Renamed Villa", resp.Asset.Name)

	asset := getAsset(t, ctx, testutil.PendingAsset.ID)
	require.Equal(t, "Renamed Villa", asset.Name)
	require.Equal(t, int64(1_000_000), asset.TotalTokens)
	require.Equal(t, int64(1_000_000), asset.AvailableTokens)
	require.Equal(t, []string{"https://img/1.png"}, []string(asset.Images))
	require.Equal(t, "high", asset.KeyMetrics.Data.LiquidityRating)
	require.Equal(t, int64(1), asset.Version)

	// Admins may update any pending asset.
	spec.Name = "Admin Villa"
	_, err = d.asset.Update(testutil.NewMockContextWithUserID(ctx, testutil.AdminUser.ID),
		&model.UpdateAssetRequest{ID: testutil.PendingAsset.ID, AssetSpec: spec})
	require.NoError(t, err)
}

func Test_assetDomain_Delete(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	_, err := d.asset.Delete(testutil.NewMockContextWithUserID(ctx, testutil.User2.ID),
		&model.DeleteAssetRequest{ID: testutil.ActiveAsset.ID})
	requireCode(t, err, errorx.Unauthorized)

	_, err = d.asset.Delete(testutil.NewMockContextWithUserID(ctx, testutil.User1.ID),
		&model.DeleteAssetRequest{ID: testutil.ActiveAsset.ID})
	require.NoError(t, err)

	_, err = d.asset.Get(ctx, &model.GetAssetRequest{ID: testutil.ActiveAsset.ID})
	requireCode(t, err, errorx.NotFound)

	// Holdings are kept.
	require.Equal(t, testutil.User2ActiveHolding.Amount, balance(t, ctx, testutil.User2.ID, testutil.ActiveAsset.ID))

	_, err = d.asset.Delete(testutil.NewMockContextWithUserID(ctx, testutil.User1.ID),
		&model.DeleteAssetRequest{ID: testutil.ActiveAsset.ID})
	requireCode(t, err, errorx.NotFound)
}

func Test_assetDomain_ApproveReject(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	ctxAdmin := testutil.NewMockContextWithUserID(ctx, testutil.AdminUser.ID)

	tests := []struct {
		name    string
		approve bool
		assetID int64
		want    entity.AssetStatus
		code    errorx.Code
		notify  bool
	}{
		{name: "approve approved", approve: true, assetID: testutil.ApprovedAsset.ID, want: entity.AssetApproved},
		{name: "approve active", approve: true, assetID: testutil.ActiveAsset.ID, want: entity.AssetActive},
		{name: "approve funded", approve: true, assetID: testutil.FundedAsset.ID, want: entity.AssetFunded},
		{name: "approve rejected", approve: true, assetID: testutil.RejectedAsset.ID, code: errorx.InvalidState},
		{name: "reject rejected", assetID: testutil.RejectedAsset.ID, want: entity.AssetRejected},
		{name: "reject active", assetID: testutil.ActiveAsset.ID, code: errorx.InvalidState},
		{name: "reject pending", assetID: testutil.PendingAsset.ID, want: entity.AssetRejected, notify: true},
		{name: "approve unknown", approve: true, assetID: 100, code: errorx.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := countNotifications(t, ctx, testutil.User1.ID)

			var status string
			var err error
			if tt.approve {
				var resp *model.ApproveAssetResponse
				resp, err = d.asset.Approve(ctxAdmin, &model.ApproveAssetRequest{ID: tt.assetID})
				if resp != nil {
					status = resp.Asset.Status
				}
			} else {
				var resp *model.RejectAssetResponse
				resp, err = d.asset.Reject(ctxAdmin, &model.RejectAssetRequest{ID: tt.assetID})
				if resp != nil {
					status = resp.Asset.Status
				}
			}

			if tt.code != 0 {
				requireCode(t, err, tt.code)
				return
			}

			require.NoError(t, err)
			require.Equal(t, string(tt.want), status)
			require.Equal(t, tt.want, getAsset(t, ctx, tt.assetID).Status)

			after := countNotifications(t, ctx, testutil.User1.ID)
			if tt.notify {
				require.Equal(t, before+1, after)
			} else {
				require.Equal(t, before, after)
			}
		})
	}
}

func Test_assetDomain_MintToken_Invalid(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	price := decimal.NewFromInt(10)
	tests := []struct {
		name   string
		userID string
		req    *model.MintTokenRequest
		code   errorx.Code
	}{
		{
			name:   "zero amount",
			userID: testutil.User2.ID,
			req:    &model.MintTokenRequest{AssetID: testutil.ApprovedAsset.ID, Price: price},
			code:   errorx.ValidationError,
		},
		{
			name:   "zero price",
			userID: testutil.User2.ID,
			req:    &model.MintTokenRequest{AssetID: testutil.ApprovedAsset.ID, Amount: 1},
			code:   errorx.ValidationError,
		},
		{
			name:   "mint for another user",
			userID: testutil.User2.ID,
			req:    &model.MintTokenRequest{AssetID: testutil.ApprovedAsset.ID, OwnerID: testutil.User3.ID, Amount: 1, Price: price},
			code:   errorx.Unauthorized,
		},
		{
			name:   "recipient without kyc",
			userID: testutil.AdminUser.ID,
			req:    &model.MintTokenRequest{AssetID: testutil.ApprovedAsset.ID, OwnerID: testutil.PendingUser.ID, Amount: 1, Price: price},
			code:   errorx.Unauthorized,
		},
		{
			name:   "pending asset",
			userID: testutil.User2.ID,
			req:    &model.MintTokenRequest{AssetID: testutil.PendingAsset.ID, Amount: 1, Price: price},
			code:   errorx.InvalidState,
		},
		{
			name:   "rejected asset",
			userID: testutil.User2.ID,
			req:    &model.MintTokenRequest{AssetID: testutil.RejectedAsset.ID, Amount: 1, Price: price},
			code:   errorx.InvalidState,
		},
		{
			name:   "funded asset",
			userID: testutil.User2.ID,
			req:    &model.MintTokenRequest{AssetID: testutil.FundedAsset.ID, Amount: 1, Price: price},
			code:   errorx.InvalidState,
		},
		{
			name:   "unknown asset",
			userID: testutil.User2.ID,
			req:    &model.MintTokenRequest{AssetID: 100, Amount: 1, Price: price},
			code:   errorx.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.asset.MintToken(testutil.NewMockContextWithUserID(ctx, tt.userID), tt.req)
			requireCode(t, err, tt.code)
		})
	}

	require.Equal(t, int64(0), countNotifications(t, ctx, testutil.User2.ID))
}

func Test_assetDomain_MintToken_AdminForUser(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	resp, err := d.asset.MintToken(testutil.NewMockContextWithUserID(ctx, testutil.AdminUser.ID),
		&model.MintTokenRequest{
			AssetID: testutil.ActiveAsset.ID,
			OwnerID: testutil.User2.ID,
			Amount:  10,
			Price:   decimal.NewFromInt(50),
		})
	require.NoError(t, err)
	require.Equal(t, int64(50), resp.Holding.Amount)
	require.True(t, resp.Holding.InvestedAmount.Equal(decimal.NewFromInt(2100)))
	require.Equal(t, int64(1), countNotifications(t, ctx, testutil.User2.ID))
	require.Len(t, d.publisher.Packs(), 1)
	requireSupplyInvariant(t, ctx, testutil.ActiveAsset.ID)
}

func Test_assetDomain_MintToken_Rollback(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	// Corrupt the ledger so that the credit step fails after the supply was
	// already reserved in the same transaction.
	require.NoError(t, xcontext.DB(ctx).Create(&entity.TokenHolding{
		UserID:         testutil.User3.ID,
		AssetID:        testutil.ActiveAsset.ID,
		Amount:         60,
		InvestedAmount: decimal.NewFromInt(3000),
	}).Error)

	_, err := d.asset.MintToken(testutil.NewMockContextWithUserID(ctx, testutil.User1.ID),
		&model.MintTokenRequest{AssetID: testutil.ActiveAsset.ID, Amount: 10, Price: decimal.NewFromInt(50)})
	requireCode(t, err, errorx.InvariantViolation)

	asset := getAsset(t, ctx, testutil.ActiveAsset.ID)
	require.Equal(t, testutil.ActiveAsset.AvailableTokens, asset.AvailableTokens)
	require.Equal(t, testutil.ActiveAsset.Version, asset.Version)
	require.Equal(t, int64(0), balance(t, ctx, testutil.User1.ID, testutil.ActiveAsset.ID))
	require.Equal(t, int64(0), countNotifications(t, ctx, testutil.User1.ID))
}

func Test_assetDomain_MintToken_Concurrent(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	users := []string{testutil.User1.ID, testutil.User2.ID, testutil.User3.ID}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	unexpected := []error{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := d.asset.MintToken(testutil.NewMockContextWithUserID(ctx, userID),
				&model.MintTokenRequest{AssetID: testutil.ApprovedAsset.ID, Amount: 100, Price: decimal.NewFromInt(10)})

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}

			if code := errorx.CodeOf(err); code != errorx.InsufficientSupply && code != errorx.InvalidState {
				unexpected = append(unexpected, err)
			}
		}(users[i%len(users)])
	}
	wg.Wait()

	require.Empty(t, unexpected)
	require.Equal(t, 10, succeeded)

	asset := getAsset(t, ctx, testutil.ApprovedAsset.ID)
	require.Equal(t, int64(0), asset.AvailableTokens)
	require.Equal(t, entity.AssetFunded, asset.Status)
	requireSupplyInvariant(t, ctx, testutil.ApprovedAsset.ID)
}

func Test_assetDomain_MintToken_ActivatesDueAsset(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	_, err := d.asset.MintToken(testutil.NewMockContextWithUserID(ctx, testutil.User2.ID),
		&model.MintTokenRequest{AssetID: testutil.DueAsset.ID, Amount: 5, Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	require.Equal(t, entity.AssetActive, getAsset(t, ctx, testutil.DueAsset.ID).Status)
}

func Test_assetDomain_TransferToken(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains()

	ctxUser2 := testutil.NewMockContextWithUserID(ctx, testutil.User2.ID)
	before := countNotifications(t, ctx, testutil.User3.ID)

	resp, err := d.asset.TransferToken(ctxUser2, &model.TransferTokenRequest{
		AssetID:  testutil.ActiveAsset.ID,
		ToUserID: testutil.User3.ID,
		Amount:   10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(30), resp.From.Amount)
	require.Equal(t, int64(10), resp.To.Amount)
	require.True(t, resp.To.InvestedAmount.Equal(decimal.NewFromInt(500)), resp.To.InvestedAmount.String())
	require.Equal(t, before+1, countNotifications(t, ctx, testutil.User3.ID))

	// Only the holder or an admin may move the tokens.
	_, err = d.asset.TransferToken(testutil.NewMockContextWithUserID(ctx, testutil.User3.ID), &model.TransferTokenRequest{
		AssetID:    testutil.ActiveAsset.ID,
		FromUserID: testutil.User2.ID,
		ToUserID:   testutil.User3.ID,
		Amount:     1,
	})
	requireCode(t, err, errorx.Unauthorized)

	_, err = d.asset.TransferToken(testutil.NewMockContextWithUserID(ctx, testutil.AdminUser.ID), &model.TransferTokenRequest{
		AssetID:    testutil.ActiveAsset.ID,
		FromUserID: testutil.User2.ID,
		ToUserID:   testutil.User3.ID,
		Amount:     5,
		Price:      decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	require.Equal(t, int64(25), balance(t, ctx, testutil.User2.ID, testutil.ActiveAsset.ID))
	require.Equal(t, int64(15), balance(t, ctx, testutil.User3.ID, testutil.ActiveAsset.ID))

	tests := []struct {
		name string
		req  *model.TransferTokenRequest
		code errorx.Code
	}{
		{
			name: "recipient without kyc",
			req:  &model.TransferTokenRequest{AssetID: testutil.ActiveAsset.ID, ToUserID: testutil.NotSubmittedUser.ID, Amount: 1},
			code: errorx.Unauthorized,
		},
		{
			name: "over balance",
			req:  &model.TransferTokenRequest{AssetID: testutil.ActiveAsset.ID, ToUserID: testutil.User3.ID, Amount: 26},
			code: errorx.InsufficientBalance,
		},
		{
			name: "to self",
			req:  &model.TransferTokenRequest{AssetID: testutil.ActiveAsset.ID, ToUserID: testutil.User2.ID, Amount: 1},
			code: errorx.ValidationError,
		},
		{
			name: "empty recipient",
			req:  &model.TransferTokenRequest{AssetID: testutil.ActiveAsset.ID, Amount: 1},
			code: errorx.ValidationError,
		},
		{
			name: "zero amount",
			req:  &model.TransferTokenRequest{AssetID: testutil.ActiveAsset.ID, ToUserID: testutil.User3.ID},
			code: errorx.ValidationError,
		},
		{
			name: "unknown asset",
			req:  &model.TransferTokenRequest{AssetID: 100, ToUserID: testutil.User3.ID, Amount: 1},
			code: errorx.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.asset.TransferToken(ctxUser2, tt.req)
			requireCode(t, err, tt.code)
		})
	}

	require.Equal(t, int64(25), balance(t, ctx, testutil.User2.ID, testutil.ActiveAsset.ID))
	require.Equal(t, int64(60), getAsset(t, ctx, testutil.ActiveAsset.ID).AvailableTokens)
	requireSupplyInvariant(t, ctx, testutil.ActiveAsset.ID)
}
