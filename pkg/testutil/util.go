package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rwa-lab/backend/config"
	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/pkg/logger"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/shopspring/decimal"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewMockContext returns a context carrying test configs and a fresh,
// migrated in-memory database.
func NewMockContext() context.Context {
	// A named shared-cache database keeps every connection of the pool on the
	// same data while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Default()
	cfg.ApiServer.MaxLimit = 50
	cfg.ApiServer.DefaultLimit = 10
	cfg.Auth.TokenSecret = "secret"
	cfg.Auth.AccessToken.Expiration = config.Duration{Duration: time.Minute}
	cfg.Ledger.ValueTolerance = decimal.RequireFromString("0.01")

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func NewMockContextWithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = NewMockContext()
	}

	return xcontext.WithRequestUserID(ctx, userID)
}
