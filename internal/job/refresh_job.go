package job

import (
	"context"
	"log"
	"time"

	"macrotrend-snapshot/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type DashboardRefresher interface {
	Refresh(ctx context.Context, credential string) (*service.Dashboard, error)
}

// RefreshJob keeps the server's default dashboard warm by refreshing it once
// per staleness window.
type RefreshJob struct {
	tracer     trace.Tracer
	dashboard  DashboardRefresher
	credential string
	interval   time.Duration
}

func NewRefreshJob(tracer trace.Tracer, dashboard DashboardRefresher, credential string, interval time.Duration) *RefreshJob {
	if interval <= 0 {
		interval = service.DefaultStalenessWindow
	}
	return &RefreshJob{
		tracer:     tracer,
		dashboard:  dashboard,
		credential: credential,
		interval:   interval,
	}
}

// Start runs one refresh immediately, then one per interval. Blocks until ctx is cancelled.
func (j *RefreshJob) Start(ctx context.Context) {
	log.Printf("Dashboard refresh job starting (every %s)", j.interval)

	j.runOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Dashboard refresh job stopped")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *RefreshJob) runOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "refresh-job.run")
	defer span.End()

	d, err := j.dashboard.Refresh(ctx, j.credential)
	if err != nil {
		span.RecordError(err)
		log.Printf("dashboard refresh error: %v", err)
		return
	}
	span.SetAttributes(
		attribute.String("macro.provenance", string(d.MacroProvenance)),
		attribute.String("company.provenance", string(d.CompanyProvenance)),
	)
	if d.HasError() {
		log.Printf("dashboard refreshed with %s: %s", d.ErrorType, d.ErrorMessage)
	}
}
