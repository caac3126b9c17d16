package entity

import (
	"context"

	"github.com/rwa-lab/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&Asset{},
		&TokenHolding{},
		&Trade{},
		&Notification{},
	)
}
