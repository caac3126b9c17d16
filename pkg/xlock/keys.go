package xlock

import "fmt"

func AssetKey(assetID int64) string {
	return fmt.Sprintf("asset:%d", assetID)
}

func HoldingKey(userID string, assetID int64) string {
	return fmt.Sprintf("holding:%s:%d", userID, assetID)
}

func UserKey(userID string) string {
	return "user:" + userID
}

func TradeKey(tradeID int64) string {
	return fmt.Sprintf("trade:%d", tradeID)
}

// RoleKey guards role changes, which must see a stable admin count.
const RoleKey = "role"
