package model

import "github.com/shopspring/decimal"

type AccessToken struct {
	ID string `json:"id"`
}

type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	Bio           string `json:"bio"`
	Avatar        string `json:"avatar"`
	KYCStatus     string `json:"kyc_status"`
	Role          string `json:"role"`
	CreatedAt     string `json:"created_at"`
}

type KeyMetrics struct {
	CapRate         decimal.Decimal `json:"cap_rate"`
	OccupancyRate   decimal.Decimal `json:"occupancy_rate"`
	LocationScore   decimal.Decimal `json:"location_score"`
	LiquidityRating string          `json:"liquidity_rating"`
}

type Asset struct {
	ID              int64           `json:"id"`
	OwnerID         string          `json:"owner_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Location        string          `json:"location"`
	Images          []string        `json:"images"`
	Documents       []string        `json:"documents"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TokenPrice      decimal.Decimal `json:"token_price"`
	TotalTokens     int64           `json:"total_tokens"`
	AvailableTokens int64           `json:"available_tokens"`
	APY             decimal.Decimal `json:"apy"`
	MonthlyIncome   decimal.Decimal `json:"monthly_income"`
	RiskRating      string          `json:"risk_rating"`
	KeyMetrics      KeyMetrics      `json:"key_metrics"`
	Status          string          `json:"status"`
	LaunchDate      string          `json:"launch_date,omitempty"`
	FundingDeadline string          `json:"funding_deadline,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

type TokenHolding struct {
	ID             int64           `json:"id"`
	UserID         string          `json:"user_id"`
	AssetID        int64           `json:"asset_id"`
	Amount         int64           `json:"amount"`
	InvestedAmount decimal.Decimal `json:"invested_amount"`
	CurrentValue   decimal.Decimal `json:"current_value"`
	UpdatedAt      string          `json:"updated_at"`
}

type Trade struct {
	ID        int64           `json:"id"`
	BuyerID   string          `json:"buyer_id"`
	SellerID  string          `json:"seller_id"`
	TokenID   int64           `json:"token_id,omitempty"`
	AssetID   int64           `json:"asset_id"`
	Side      string          `json:"side"`
	Kind      string          `json:"kind"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	Filled    int64           `json:"filled"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

type Notification struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

type PortfolioHolding struct {
	Asset          Asset           `json:"asset"`
	Amount         int64           `json:"amount"`
	InvestedAmount decimal.Decimal `json:"invested_amount"`
	CurrentValue   decimal.Decimal `json:"current_value"`
	Return         decimal.Decimal `json:"return"`
	MonthlyIncome  decimal.Decimal `json:"monthly_income"`
}

type Portfolio struct {
	UserID        string             `json:"user_id"`
	TotalValue    decimal.Decimal    `json:"total_value"`
	TotalInvested decimal.Decimal    `json:"total_invested"`
	TotalReturn   decimal.Decimal    `json:"total_return"`
	MonthlyIncome decimal.Decimal    `json:"monthly_income"`
	TotalAssets   int                `json:"total_assets"`
	Holdings      []PortfolioHolding `json:"holdings"`
}
