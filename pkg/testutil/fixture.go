package testutil

import (
	"context"
	"time"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/shopspring/decimal"
)

var (
	// Users
	AdminUser = &entity.User{
		ID:        "admin",
		Username:  "admin",
		Email:     "admin@rwa.test",
		KYCStatus: entity.KYCApproved,
		Role:      entity.RoleAdmin,
	}

	User1 = &entity.User{
		ID:            "user1",
		Username:      "user1",
		Email:         "user1@rwa.test",
		WalletAddress: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		KYCStatus:     entity.KYCApproved,
		Role:          entity.RoleUser,
	}

	User2 = &entity.User{
		ID:        "user2",
		Username:  "user2",
		Email:     "user2@rwa.test",
		KYCStatus: entity.KYCApproved,
		Role:      entity.RoleUser,
	}

	User3 = &entity.User{
		ID:        "user3",
		Username:  "user3",
		Email:     "user3@rwa.test",
		KYCStatus: entity.KYCApproved,
		Role:      entity.RoleUser,
	}

	NotSubmittedUser = &entity.User{
		ID:        "user4",
		Username:  "user4",
		Email:     "user4@rwa.test",
		KYCStatus: entity.KYCNotSubmitted,
		Role:      entity.RoleUser,
	}

	PendingUser = &entity.User{
		ID:        "user5",
		Username:  "user5",
		Email:     "user5@rwa.test",
		KYCStatus: entity.KYCPending,
		Role:      entity.RoleUser,
	}

	RejectedUser = &entity.User{
		ID:        "user6",
		Username:  "user6",
		Email:     "user6@rwa.test",
		KYCStatus: entity.KYCRejected,
		Role:      entity.RoleUser,
	}

	Users = []*entity.User{AdminUser, User1, User2, User3, NotSubmittedUser, PendingUser, RejectedUser}

	// Assets, all owned by User1.
	PendingAsset = &entity.Asset{
		SoftDeleteBase:  entity.SoftDeleteBase{Base: entity.Base{ID: 1}},
		OwnerID:         User1.ID,
		Name:            "Pending Villa",
		Category:        "real_estate",
		TotalValue:      decimal.NewFromInt(10000),
		TokenPrice:      decimal.NewFromInt(10),
		TotalTokens:     1000,
		AvailableTokens: 1000,
		MonthlyIncome:   decimal.NewFromInt(100),
		Status:          entity.AssetPending,
	}

	ApprovedAsset = &entity.Asset{
		SoftDeleteBase:  entity.SoftDeleteBase{Base: entity.Base{ID: 2}},
		OwnerID:         User1.ID,
		Name:            "Approved Tower",
		Category:        "real_estate",
		TotalValue:      decimal.NewFromInt(10000),
		TokenPrice:      decimal.NewFromInt(10),
		TotalTokens:     1000,
		AvailableTokens: 1000,
		APY:             decimal.RequireFromString("0.08"),
		MonthlyIncome:   decimal.NewFromInt(500),
		Status:          entity.AssetApproved,
	}

	// ActiveAsset has 40 of its 100 tokens held by User2.
	ActiveAsset = &entity.Asset{
		SoftDeleteBase:  entity.SoftDeleteBase{Base: entity.Base{ID: 3}},
		OwnerID:         User1.ID,
		Name:            "Active Vineyard",
		Category:        "agriculture",
		TotalValue:      decimal.NewFromInt(5000),
		TokenPrice:      decimal.NewFromInt(50),
		TotalTokens:     100,
		AvailableTokens: 60,
		MonthlyIncome:   decimal.NewFromInt(200),
		Status:          entity.AssetActive,
		LaunchDate:      time.Now().Add(-24 * time.Hour),
	}

	RejectedAsset = &entity.Asset{
		SoftDeleteBase:  entity.SoftDeleteBase{Base: entity.Base{ID: 4}},
		OwnerID:         User1.ID,
		Name:            "Rejected Warehouse",
		Category:        "real_estate",
		TotalValue:      decimal.NewFromInt(1000),
		TokenPrice:      decimal.NewFromInt(1),
		TotalTokens:     1000,
		AvailableTokens: 1000,
		Status:          entity.AssetRejected,
	}

	// FundedAsset is entirely held by User2.
	FundedAsset = &entity.Asset{
		SoftDeleteBase:  entity.SoftDeleteBase{Base: entity.Base{ID: 5}},
		OwnerID:         User1.ID,
		Name:            "Funded Painting",
		Category:        "art",
		TotalValue:      decimal.NewFromInt(200),
		TokenPrice:      decimal.NewFromInt(20),
		TotalTokens:     10,
		AvailableTokens: 0,
		MonthlyIncome:   decimal.NewFromInt(10),
		Status:          entity.AssetFunded,
		LaunchDate:      time.Now().Add(-24 * time.Hour),
	}

	// DueAsset is approved with a launch date in the past.
	DueAsset = &entity.Asset{
		SoftDeleteBase:  entity.SoftDeleteBase{Base: entity.Base{ID: 6}},
		OwnerID:         User1.ID,
		Name:            "Due Solar Farm",
		Category:        "energy",
		TotalValue:      decimal.NewFromInt(1000),
		TokenPrice:      decimal.NewFromInt(1),
		TotalTokens:     1000,
		AvailableTokens: 1000,
		Status:          entity.AssetApproved,
		LaunchDate:      time.Now().Add(-time.Hour),
	}

	Assets = []*entity.Asset{PendingAsset, ApprovedAsset, ActiveAsset, RejectedAsset, FundedAsset, DueAsset}

	// Holdings
	User2ActiveHolding = &entity.TokenHolding{
		Base:           entity.Base{ID: 1},
		UserID:         User2.ID,
		AssetID:        ActiveAsset.ID,
		Amount:         40,
		InvestedAmount: decimal.NewFromInt(1600),
	}

	User2FundedHolding = &entity.TokenHolding{
		Base:           entity.Base{ID: 2},
		UserID:         User2.ID,
		AssetID:        FundedAsset.ID,
		Amount:         10,
		InvestedAmount: decimal.NewFromInt(150),
	}

	TokenHoldings = []*entity.TokenHolding{User2ActiveHolding, User2FundedHolding}
)

// CreateFixtureDb inserts the fixture records into the database of ctx.
// Copies are inserted, so the fixture values themselves are never mutated.
func CreateFixtureDb(ctx context.Context) {
	db := xcontext.DB(ctx)
	for _, u := range Users {
		user := *u
		if err := db.Create(&user).Error; err != nil {
			panic(err)
		}
	}

	for _, a := range Assets {
		asset := *a
		if err := db.Create(&asset).Error; err != nil {
			panic(err)
		}
	}

	for _, h := range TokenHoldings {
		holding := *h
		if err := db.Create(&holding).Error; err != nil {
			panic(err)
		}
	}
}
