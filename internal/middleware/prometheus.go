package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/rwa-lab/backend/internal/common"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/rwa-lab/backend/pkg/router"
	"github.com/rwa-lab/backend/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		startTime := xcontext.StartTime(ctx)
		path := xcontext.HTTPRequest(ctx).URL.Path

		code := 0
		if err := xcontext.Error(ctx); err != nil {
			code = int(errorx.CodeOf(err))
		}

		if counter, ok := common.PromCounters[common.HTTPRequestTotal]; ok {
			counter.WithLabelValues(path, fmt.Sprint(code)).Inc()
		}

		if histogram, ok := common.PromHistograms[common.HTTPRequestDurationSeconds]; ok {
			histogram.WithLabelValues(path, fmt.Sprint(code)).Observe(time.Since(startTime).Seconds())
		}
	}
}
