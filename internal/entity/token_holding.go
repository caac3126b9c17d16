package entity

import "github.com/shopspring/decimal"

type TokenHolding struct {
	Base

	UserID         string          `gorm:"uniqueIndex:idx_token_holdings_user_id_asset_id"`
	AssetID        int64           `gorm:"uniqueIndex:idx_token_holdings_user_id_asset_id"`
	Amount         int64
	InvestedAmount decimal.Decimal `gorm:"type:decimal(36,18)"`
	Version        int64
}
