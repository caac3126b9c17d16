package cron

import (
	"context"
	"time"

	"github.com/rwa-lab/backend/internal/domain"
	"github.com/rwa-lab/backend/pkg/xcontext"
)

// AssetActivationCronJob moves approved assets to active once their launch
// date has passed.
type AssetActivationCronJob struct {
	supply   *domain.AssetSupply
	interval time.Duration
}

func NewAssetActivationCronJob(supply *domain.AssetSupply, interval time.Duration) *AssetActivationCronJob {
	if interval <= 0 {
		interval = time.Minute
	}

	return &AssetActivationCronJob{supply: supply, interval: interval}
}

func (job *AssetActivationCronJob) Do(ctx context.Context) {
	n, err := job.supply.Activate(ctx, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot activate assets: %v", err)
		return
	}

	if n > 0 {
		xcontext.Logger(ctx).Infof("Activated %d assets", n)
	}
}

func (job *AssetActivationCronJob) RunNow() bool {
	return true
}

func (job *AssetActivationCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
