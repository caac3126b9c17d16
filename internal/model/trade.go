package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	AssetID    int64           `json:"asset_id"`
	Side       string          `json:"side"`
	Kind       string          `json:"kind"`
	Quantity   int64           `json:"quantity"`
	LimitPrice decimal.Decimal `json:"limit_price"`
	Currency   string          `json:"currency"`
}

type PlaceOrderResponse struct {
	Trade Trade `json:"trade"`
}

type CancelOrderRequest struct {
	ID int64 `json:"id"`
}

type CancelOrderResponse struct {
	Trade Trade `json:"trade"`
}

type CreateTradeRequest struct {
	BuyerID   string          `json:"buyer_id"`
	SellerID  string          `json:"seller_id"`
	TokenID   int64           `json:"token_id"`
	AssetID   int64           `json:"asset_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
}

type CreateTradeResponse struct {
	Trade Trade `json:"trade"`
}

type UpdateTradeStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Filled int64  `json:"filled"`
}

type UpdateTradeStatusResponse struct {
	Trade Trade `json:"trade"`
}

type GetTradeRequest struct {
	ID int64 `json:"id"`
}

type GetTradeResponse struct {
	Trade Trade `json:"trade"`
}

type GetListTradeRequest struct {
	UserID  string `json:"user_id"`
	AssetID int64  `json:"asset_id"`
	Status  string `json:"status"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

type GetListTradeResponse struct {
	Trades []Trade `json:"trades"`
}
