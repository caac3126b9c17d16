package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rwa-lab/backend/config"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/logger"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name   string          `json:"name"`
	Limit  int             `json:"limit"`
	Amount decimal.Decimal `json:"amount"`
}

type echoResponse struct {
	Name   string          `json:"name"`
	Limit  int             `json:"limit"`
	Amount decimal.Decimal `json:"amount"`
	UserID string          `json:"user_id"`
}

type userKey struct{}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Name == "fail" {
		return nil, errorx.New(errorx.NotFound, "Not found %s", req.Name)
	}

	userID, _ := ctx.Value(userKey{}).(string)
	return &echoResponse{Name: req.Name, Limit: req.Limit, Amount: req.Amount, UserID: userID}, nil
}

func newTestRouter() *Router {
	ctx := xcontext.WithConfigs(context.Background(), config.Default())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	return New(ctx)
}

func serve(t *testing.T, h http.Handler, req *http.Request) response {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, w.Header().Get(requestIDHeader))
	return resp
}

func TestRouterGET(t *testing.T) {
	r := newTestRouter()
	GET(r, "/echo", echo)

	resp := serve(t, r.Handler(), httptest.NewRequest(http.MethodGet, "/echo?name=alice&limit=5&amount=1.5", nil))
	require.Equal(t, int64(0), resp.Code)

	data := resp.Data.(map[string]any)
	require.Equal(t, "alice", data["name"])
	require.Equal(t, float64(5), data["limit"])
	require.Equal(t, "1.5", data["amount"])
}

func TestRouterPOST(t *testing.T) {
	r := newTestRouter()
	POST(r, "/echo", echo)

	body := strings.NewReader(`{"name":"bob","amount":"2"}`)
	resp := serve(t, r.Handler(), httptest.NewRequest(http.MethodPost, "/echo", body))
	require.Equal(t, int64(0), resp.Code)
	require.Equal(t, "bob", resp.Data.(map[string]any)["name"])
}

func TestRouterErrors(t *testing.T) {
	r := newTestRouter()
	POST(r, "/echo", echo)
	h := r.Handler()

	tests := []struct {
		name string
		req  *http.Request
		code errorx.Code
	}{
		{
			name: "domain error",
			req:  httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"fail"}`)),
			code: errorx.NotFound,
		},
		{
			name: "invalid body",
			req:  httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":`)),
			code: errorx.BadRequest,
		},
		{
			name: "wrong method",
			req:  httptest.NewRequest(http.MethodGet, "/echo", nil),
			code: errorx.BadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serve(t, h, tt.req)
			require.Equal(t, int64(tt.code), resp.Code)
			require.NotEmpty(t, resp.Error)
		})
	}
}

func TestRouterMiddlewares(t *testing.T) {
	r := newTestRouter()

	closed := 0
	r.AddCloser(func(ctx context.Context) { closed++ })

	authorized := r.Branch()
	authorized.Before(func(ctx context.Context) (context.Context, error) {
		if xcontext.HTTPRequest(ctx).Header.Get("Authorization") == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return context.WithValue(ctx, userKey{}, "user-1"), nil
	})

	GET(r, "/public", echo)
	GET(authorized, "/private", echo)
	h := r.Handler()

	resp := serve(t, h, httptest.NewRequest(http.MethodGet, "/public", nil))
	require.Equal(t, int64(0), resp.Code)

	resp = serve(t, h, httptest.NewRequest(http.MethodGet, "/private", nil))
	require.Equal(t, int64(errorx.Unauthenticated), resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer x")
	resp = serve(t, h, req)
	require.Equal(t, int64(0), resp.Code)
	require.Equal(t, "user-1", resp.Data.(map[string]any)["user_id"])

	require.Equal(t, 3, closed)
}
