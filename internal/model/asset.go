package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssetSpec struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Location        string          `json:"location"`
	Images          []string        `json:"images"`
	Documents       []string        `json:"documents"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TokenPrice      decimal.Decimal `json:"token_price"`
	TotalTokens     int64           `json:"total_tokens"`
	APY             decimal.Decimal `json:"apy"`
	MonthlyIncome   decimal.Decimal `json:"monthly_income"`
	RiskRating      string          `json:"risk_rating"`
	KeyMetrics      KeyMetrics      `json:"key_metrics"`
	LaunchDate      time.Time       `json:"launch_date"`
	FundingDeadline time.Time       `json:"funding_deadline"`
}

type CreateAssetRequest struct {
	AssetSpec
}

type CreateAssetResponse struct {
	Asset Asset `json:"asset"`
}

type GetAssetRequest struct {
	ID int64 `json:"id"`
}

type GetAssetResponse struct {
	Asset Asset `json:"asset"`
}

type GetListAssetRequest struct {
	Status   string `json:"status"`
	Category string `json:"category"`
	OwnerID  string `json:"owner_id"`
	Offset   int    `json:"offset"`
	Limit    int    `json:"limit"`
}

type GetListAssetResponse struct {
	Assets []Asset `json:"assets"`
}

type UpdateAssetRequest struct {
	ID int64 `json:"id"`
	AssetSpec
}

type UpdateAssetResponse struct {
	Asset Asset `json:"asset"`
}

type DeleteAssetRequest struct {
	ID int64 `json:"id"`
}

type DeleteAssetResponse struct{}

type ApproveAssetRequest struct {
	ID int64 `json:"id"`
}

type ApproveAssetResponse struct {
	Asset Asset `json:"asset"`
}

type RejectAssetRequest struct {
	ID int64 `json:"id"`
}

type RejectAssetResponse struct {
	Asset Asset `json:"asset"`
}

type MintTokenRequest struct {
	AssetID int64           `json:"asset_id"`
	OwnerID string          `json:"owner_id"`
	Amount  int64           `json:"amount"`
	Price   decimal.Decimal `json:"price"`
}

type MintTokenResponse struct {
	Holding TokenHolding `json:"holding"`
}

type TransferTokenRequest struct {
	AssetID    int64           `json:"asset_id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     int64           `json:"amount"`
	Price      decimal.Decimal `json:"price"`
}

type TransferTokenResponse struct {
	From TokenHolding `json:"from"`
	To   TokenHolding `json:"to"`
}
