package middleware

import (
	"context"
	"strings"

	"github.com/rwa-lab/backend/internal/model"
	"github.com/rwa-lab/backend/pkg/authenticator"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/router"
	"github.com/rwa-lab/backend/pkg/xcontext"
)

// AuthVerifier resolves the caller from a bearer token or the access token
// cookie.
type AuthVerifier struct {
	tokenEngine authenticator.TokenEngine
	required    bool
}

func NewAuthVerifier(tokenEngine authenticator.TokenEngine) *AuthVerifier {
	return &AuthVerifier{tokenEngine: tokenEngine}
}

// WithAccessToken rejects requests without a valid access token.
func (a *AuthVerifier) WithAccessToken() *AuthVerifier {
	return &AuthVerifier{tokenEngine: a.tokenEngine, required: true}
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if token := getAccessToken(ctx); token != "" {
			var info model.AccessToken
			if err := a.tokenEngine.Verify(token, &info); err == nil && info.ID != "" {
				return xcontext.WithRequestUserID(ctx, info.ID), nil
			}
		}

		if a.required {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return nil, nil
	}
}

func getAccessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	auth, token, found := strings.Cut(req.Header.Get("Authorization"), " ")
	if found {
		if auth == "Bearer" {
			return token
		}
		return ""
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
