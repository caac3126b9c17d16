package model

import (
	"time"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/shopspring/decimal"
)

const DefaultTimeLayout string = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(DefaultTimeLayout)
}

// ConvertUser hides contact details unless includeSensitive is set.
func ConvertUser(user *entity.User, includeSensitive bool) User {
	if user == nil {
		return User{}
	}

	u := User{
		ID:        user.ID,
		Username:  user.Username,
		Bio:       user.Profile.Data.Bio,
		Avatar:    user.Profile.Data.Avatar,
		KYCStatus: string(user.KYCStatus),
		Role:      string(user.Role),
		CreatedAt: formatTime(user.CreatedAt),
	}

	if includeSensitive {
		u.Email = user.Email
		u.WalletAddress = user.WalletAddress
	}

	return u
}

func ConvertAsset(asset *entity.Asset) Asset {
	if asset == nil {
		return Asset{}
	}

	metrics := asset.KeyMetrics.Data
	return Asset{
		ID:              asset.ID,
		OwnerID:         asset.OwnerID,
		Name:            asset.Name,
		Description:     asset.Description,
		Category:        asset.Category,
		Location:        asset.Location,
		Images:          append([]string{}, asset.Images...),
		Documents:       append([]string{}, asset.Documents...),
		TotalValue:      asset.TotalValue,
		TokenPrice:      asset.TokenPrice,
		TotalTokens:     asset.TotalTokens,
		AvailableTokens: asset.AvailableTokens,
		APY:             asset.APY,
		MonthlyIncome:   asset.MonthlyIncome,
		RiskRating:      asset.RiskRating,
		KeyMetrics: KeyMetrics{
			CapRate:         metrics.CapRate,
			OccupancyRate:   metrics.OccupancyRate,
			LocationScore:   metrics.LocationScore,
			LiquidityRating: metrics.LiquidityRating,
		},
		Status:          string(asset.Status),
		LaunchDate:      formatTime(asset.LaunchDate),
		FundingDeadline: formatTime(asset.FundingDeadline),
		CreatedAt:       formatTime(asset.CreatedAt),
	}
}

// ConvertTokenHolding values the holding at the given token price.
func ConvertTokenHolding(holding *entity.TokenHolding, tokenPrice decimal.Decimal) TokenHolding {
	if holding == nil {
		return TokenHolding{}
	}

	return TokenHolding{
		ID:             holding.ID,
		UserID:         holding.UserID,
		AssetID:        holding.AssetID,
		Amount:         holding.Amount,
		InvestedAmount: holding.InvestedAmount,
		CurrentValue:   tokenPrice.Mul(decimal.NewFromInt(holding.Amount)),
		UpdatedAt:      formatTime(holding.UpdatedAt),
	}
}

func ConvertTrade(trade *entity.Trade) Trade {
	if trade == nil {
		return Trade{}
	}

	return Trade{
		ID:        trade.ID,
		BuyerID:   trade.BuyerID,
		SellerID:  trade.SellerID,
		TokenID:   trade.TokenID.Int64,
		AssetID:   trade.AssetID,
		Side:      string(trade.Side),
		Kind:      string(trade.Kind),
		Quantity:  trade.Quantity,
		Price:     trade.Price,
		Currency:  string(trade.Currency),
		Status:    string(trade.Status),
		Filled:    trade.Filled,
		CreatedAt: formatTime(trade.CreatedAt),
		UpdatedAt: formatTime(trade.UpdatedAt),
	}
}

func ConvertNotification(n *entity.Notification) Notification {
	if n == nil {
		return Notification{}
	}

	return Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: formatTime(n.CreatedAt),
	}
}
