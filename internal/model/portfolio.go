package model

type GetPortfolioRequest struct {
	UserID string `json:"user_id"`
}

type GetPortfolioResponse struct {
	Portfolio Portfolio `json:"portfolio"`
}

type GetListTokenByUserRequest struct {
	UserID string `json:"user_id"`
}

type GetListTokenByUserResponse struct {
	Holdings []TokenHolding `json:"holdings"`
}

type GetListTokenByAssetRequest struct {
	AssetID int64 `json:"asset_id"`
}

type GetListTokenByAssetResponse struct {
	Holdings []TokenHolding `json:"holdings"`
}
