package entity

import (
	"database/sql"

	"github.com/rwa-lab/backend/pkg/enum"
	"github.com/shopspring/decimal"
)

type TradeSide string

var (
	TradeBuy  = enum.New(TradeSide("buy"))
	TradeSell = enum.New(TradeSide("sell"))
)

type OrderKind string

var (
	OrderMarket = enum.New(OrderKind("market"))
	OrderLimit  = enum.New(OrderKind("limit"))
)

type TradeStatus string

var (
	TradePending         = enum.New(TradeStatus("pending"))
	TradePartiallyFilled = enum.New(TradeStatus("partially_filled"))
	TradeFilled          = enum.New(TradeStatus("filled"))
	TradeCancelled       = enum.New(TradeStatus("cancelled"))
)

// Terminal reports whether no further transition is allowed.
func (s TradeStatus) Terminal() bool {
	return s == TradeFilled || s == TradeCancelled
}

type Currency string

var (
	CurrencyICP = enum.New(Currency("ICP"))
	CurrencyUSD = enum.New(Currency("USD"))
	CurrencyINR = enum.New(Currency("INR"))
)

type Trade struct {
	Base

	// BuyerID or SellerID is empty when that side is the asset's primary
	// market.
	BuyerID   string        `gorm:"index"`
	SellerID  string        `gorm:"index"`
	TokenID   sql.NullInt64 `gorm:"index"`
	AssetID   int64         `gorm:"index"`
	Side      TradeSide
	Kind      OrderKind
	Quantity  int64
	Price     decimal.Decimal `gorm:"type:decimal(36,18)"`
	Currency  Currency
	Status    TradeStatus `gorm:"index"`
	Filled    int64
	CreatedBy string
}

// Primary reports whether one side of the trade is the primary market.
func (t *Trade) Primary() bool {
	return t.BuyerID == "" || t.SellerID == ""
}
