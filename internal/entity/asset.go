package entity

import (
	"time"

	"github.com/rwa-lab/backend/pkg/enum"
	"github.com/shopspring/decimal"
)

type AssetStatus string

var (
	AssetPending  = enum.New(AssetStatus("pending"))
	AssetApproved = enum.New(AssetStatus("approved"))
	AssetRejected = enum.New(AssetStatus("rejected"))
	AssetActive   = enum.New(AssetStatus("active"))
	AssetFunded   = enum.New(AssetStatus("funded"))
)

// Tradable reports whether tokens of an asset in this status can be bought.
func (s AssetStatus) Tradable() bool {
	return s == AssetApproved || s == AssetActive
}

type KeyMetrics struct {
	CapRate         decimal.Decimal `json:"cap_rate"`
	OccupancyRate   decimal.Decimal `json:"occupancy_rate"`
	LocationScore   decimal.Decimal `json:"location_score"`
	LiquidityRating string          `json:"liquidity_rating"`
}

type Asset struct {
	SoftDeleteBase

	OwnerID         string `gorm:"index"`
	Name            string
	Description     string
	Category        string `gorm:"index"`
	Location        string
	Images          Array[string]
	Documents       Array[string]
	TotalValue      decimal.Decimal `gorm:"type:decimal(36,18)"`
	TokenPrice      decimal.Decimal `gorm:"type:decimal(36,18)"`
	TotalTokens     int64
	AvailableTokens int64
	APY             decimal.Decimal `gorm:"column:apy;type:decimal(36,18)"`
	MonthlyIncome   decimal.Decimal `gorm:"type:decimal(36,18)"`
	RiskRating      string
	KeyMetrics      JSON[KeyMetrics]
	Status          AssetStatus `gorm:"index"`
	LaunchDate      time.Time
	FundingDeadline time.Time
	Version         int64
}

// Launched reports whether the asset has a launch date that is not after now.
func (a *Asset) Launched(now time.Time) bool {
	return !a.LaunchDate.IsZero() && !a.LaunchDate.After(now)
}
