package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rwa-lab/backend/pkg/xcontext"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc may return a derived context. A nil context keeps the
// current one.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc always runs at the end of a request, after the response was
// determined.
type CloserFunc func(ctx context.Context)

type Router struct {
	engine *gin.Engine
	ctx    context.Context

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

// New creates a router whose handlers inherit ctx, which carries the configs,
// logger and database.
func New(ctx context.Context) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(handleRouteError(errMethodNotAllowed))
	engine.NoRoute(handleRouteError(errNotFound))

	return &Router{
		engine:  engine,
		ctx:     ctx,
		closers: []CloserFunc{handleResponse()},
	}
}

// Branch returns a router sharing the same engine, with a copy of the current
// middlewares. Middlewares added to the branch do not affect the parent.
func (r *Router) Branch() *Router {
	return &Router{
		engine:  r.engine,
		ctx:     r.ctx,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]MiddlewareFunc{}, r.afters...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func (r *Router) Handler() http.Handler {
	cfg := xcontext.Configs(r.ctx).ApiServer
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(r.engine)
}

func GET[Request, Response any](router *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(router, http.MethodGet, pattern, handler)
}

func POST[Request, Response any](router *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(router, http.MethodPost, pattern, handler)
}

func route[Request, Response any](
	router *Router, method, pattern string, handler HandlerFunc[Request, Response],
) {
	befores := router.befores
	afters := router.afters
	closers := router.closers

	router.engine.Handle(method, pattern, func(c *gin.Context) {
		req := c.Request
		ctx := xcontext.WithHTTPRequest(router.ctx, req)
		ctx = xcontext.WithHTTPWriter(ctx, c.Writer)
		c.Header(requestIDHeader, requestID(req))

		defer func() {
			for _, closer := range closers {
				closer(ctx)
			}
		}()

		ctx, err := runMiddlewares(ctx, befores)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			return
		}

		var request Request
		if err := bind(c, &request); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
			ctx = xcontext.WithError(ctx, errInvalidRequest)
			return
		}

		resp, err := handler(ctx, &request)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			return
		}

		ctx = xcontext.WithResponse(ctx, resp)
		ctx, err = runMiddlewares(ctx, afters)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
		}
	})
}

// handleRouteError answers unknown routes and methods with the error envelope.
func handleRouteError(err error) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(requestIDHeader, requestID(c.Request))
		c.Header("Content-Type", "application/json")
		_ = WriteJson(c.Writer, newErrorResponse(err))
	}
}

func runMiddlewares(ctx context.Context, middlewares []MiddlewareFunc) (context.Context, error) {
	for _, middleware := range middlewares {
		newCtx, err := middleware(ctx)
		if err != nil {
			return ctx, err
		}

		if newCtx != nil {
			ctx = newCtx
		}
	}

	return ctx, nil
}
