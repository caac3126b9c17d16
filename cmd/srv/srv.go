package main

import (
	"context"
	"fmt"

	"github.com/rwa-lab/backend/config"
	"github.com/rwa-lab/backend/internal/domain"
	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/repository"
	"github.com/rwa-lab/backend/pkg/authenticator"
	"github.com/rwa-lab/backend/pkg/kafka"
	"github.com/rwa-lab/backend/pkg/logger"
	"github.com/rwa-lab/backend/pkg/pubsub"
	"github.com/rwa-lab/backend/pkg/router"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/rwa-lab/backend/pkg/xlock"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	userRepo         repository.UserRepository
	assetRepo        repository.AssetRepository
	tokenHoldingRepo repository.TokenHoldingRepository
	tradeRepo        repository.TradeRepository
	notificationRepo repository.NotificationRepository

	locker      *xlock.Locker
	publisher   pubsub.Publisher
	tokenEngine authenticator.TokenEngine

	supply     *domain.AssetSupply
	ledger     *domain.TokenLedger
	dispatcher *domain.NotificationDispatcher

	userDomain         domain.UserDomain
	assetDomain        domain.AssetDomain
	tradeDomain        domain.TradeDomain
	portfolioDomain    domain.PortfolioDomain
	notificationDomain domain.NotificationDomain

	router *router.Router
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	return nil
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(), // data source name
			DefaultStringSize:         256,                    // default size for string fields
			DisableDatetimePrecision:  true,                   // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,                   // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,                   // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false,                  // auto configure based on currently MySQL version
		})
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// SQLite allows a single writer.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return nil
}

func (s *srv) migrateDB() error {
	if err := entity.MigrateTable(s.ctx); err != nil {
		return fmt.Errorf("cannot migrate tables: %w", err)
	}

	return nil
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.assetRepo = repository.NewAssetRepository()
	s.tokenHoldingRepo = repository.NewTokenHoldingRepository()
	s.tradeRepo = repository.NewTradeRepository()
	s.notificationRepo = repository.NewNotificationRepository()
}

func (s *srv) loadPublisher() error {
	cfg := xcontext.Configs(s.ctx).Kafka
	if cfg.Addr == "" {
		xcontext.Logger(s.ctx).Warnf("Kafka is not configured, notifications are only stored")
		s.publisher = pubsub.NewNopPublisher()
		return nil
	}

	publisher, err := kafka.NewPublisher("rwa-api", []string{cfg.Addr})
	if err != nil {
		return fmt.Errorf("cannot connect to kafka: %w", err)
	}

	s.publisher = publisher
	return nil
}

func (s *srv) loadTokenEngine() {
	s.tokenEngine = authenticator.NewTokenEngine(xcontext.Configs(s.ctx).Auth.TokenSecret)
}

func (s *srv) loadDomains() {
	s.locker = xlock.New()
	s.supply = domain.NewAssetSupply(s.assetRepo, s.locker)
	s.ledger = domain.NewTokenLedger(s.tokenHoldingRepo)
	s.dispatcher = domain.NewNotificationDispatcher(s.notificationRepo, s.publisher)

	s.userDomain = domain.NewUserDomain(s.userRepo, s.dispatcher, s.locker)
	s.assetDomain = domain.NewAssetDomain(s.assetRepo, s.userRepo, s.supply, s.ledger, s.dispatcher, s.locker)
	s.tradeDomain = domain.NewTradeDomain(s.tradeRepo, s.assetRepo, s.tokenHoldingRepo, s.userRepo,
		s.supply, s.ledger, s.dispatcher, s.locker)
	s.portfolioDomain = domain.NewPortfolioDomain(s.tokenHoldingRepo, s.assetRepo, s.userRepo)
	s.notificationDomain = domain.NewNotificationDomain(s.notificationRepo, s.userRepo)
}
