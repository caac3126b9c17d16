package main

import (
	"net/http"

	"github.com/rwa-lab/backend/internal/domain/cron"
	"github.com/rwa-lab/backend/internal/middleware"
	"github.com/rwa-lab/backend/pkg/prometheus"
	"github.com/rwa-lab/backend/pkg/router"
	"github.com/rwa-lab/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.migrateDB(); err != nil {
		return err
	}

	if err := s.loadPublisher(); err != nil {
		return err
	}

	s.loadRepos()
	s.loadTokenEngine()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewAssetActivationCronJob(s.supply, cfg.Ledger.ActivateInterval.Duration))
	go cronJobManager.Start(s.ctx)
	defer cronJobManager.Cancel(s.ctx)

	go s.startPrometheus()

	httpSrv := &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.router.Handler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting server on port: %s", cfg.ApiServer.Port)
	if err := httpSrv.ListenAndServe(); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stop")
	return nil
}

func (s *srv) startPrometheus() {
	cfg := xcontext.Configs(s.ctx).PrometheusServer
	httpSrv := &http.Server{
		Addr:    cfg.Address(),
		Handler: prometheus.NewHandler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting prometheus on port: %s", cfg.Port)
	if err := httpSrv.ListenAndServe(); err != nil {
		xcontext.Logger(s.ctx).Errorf("Prometheus server stopped: %v", err)
	}
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	// Public API. The caller is resolved when a token is present.
	publicRouter := s.router.Branch()
	publicRouter.Before(middleware.NewAuthVerifier(s.tokenEngine).Middleware())
	{
		router.GET(publicRouter, "/getUser", s.userDomain.GetUser)
		router.GET(publicRouter, "/getAsset", s.assetDomain.Get)
		router.GET(publicRouter, "/getListAsset", s.assetDomain.GetList)
		router.GET(publicRouter, "/getTrade", s.tradeDomain.Get)
		router.GET(publicRouter, "/getListTrade", s.tradeDomain.GetList)
		router.GET(publicRouter, "/getListTokenByAsset", s.portfolioDomain.GetListTokenByAsset)
	}

	// These following APIs need authentication with Access Token.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.NewAuthVerifier(s.tokenEngine).WithAccessToken().Middleware())
	{
		// User API
		router.POST(authRouter, "/register", s.userDomain.Register)
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)
		router.POST(authRouter, "/updateProfile", s.userDomain.UpdateProfile)
		router.POST(authRouter, "/requestKYC", s.userDomain.RequestKYC)

		// Asset API
		router.POST(authRouter, "/createAsset", s.assetDomain.Create)
		router.POST(authRouter, "/updateAsset", s.assetDomain.Update)
		router.POST(authRouter, "/deleteAsset", s.assetDomain.Delete)
		router.POST(authRouter, "/mintToken", s.assetDomain.MintToken)
		router.POST(authRouter, "/transferToken", s.assetDomain.TransferToken)

		// Portfolio API
		router.GET(authRouter, "/getPortfolio", s.portfolioDomain.GetPortfolio)
		router.GET(authRouter, "/getListTokenByUser", s.portfolioDomain.GetListTokenByUser)

		// Trade API
		router.POST(authRouter, "/placeOrder", s.tradeDomain.PlaceOrder)
		router.POST(authRouter, "/cancelOrder", s.tradeDomain.CancelOrder)
		router.POST(authRouter, "/createTrade", s.tradeDomain.CreateTrade)
		router.POST(authRouter, "/updateTradeStatus", s.tradeDomain.UpdateTradeStatus)

		// Notification API
		router.GET(authRouter, "/getMyNotifications", s.notificationDomain.GetMyNotifications)
		router.POST(authRouter, "/markNotificationRead", s.notificationDomain.MarkRead)
	}

	adminRouter := authRouter.Branch()
	adminRouter.Before(middleware.NewOnlyAdmin(s.userRepo).Middleware())
	{
		router.GET(adminRouter, "/getListUser", s.userDomain.GetList)
		router.POST(adminRouter, "/setKYCStatus", s.userDomain.SetKYCStatus)
		router.POST(adminRouter, "/setUserRole", s.userDomain.SetRole)
		router.POST(adminRouter, "/approveAsset", s.assetDomain.Approve)
		router.POST(adminRouter, "/rejectAsset", s.assetDomain.Reject)
		router.GET(adminRouter, "/getListNotification", s.notificationDomain.GetList)
	}
}
