package services

import (
	"context"
	"time"

	applog "localbazaar/internal/log"
	"localbazaar/internal/metrics"
	"localbazaar/internal/repos"

	"github.com/robfig/cron/v3"
)

// Reconciler rebuilds the denormalized user counters (listings and sales)
// from the listings and orders tables.
type Reconciler struct {
	Repo *repos.ReconcileRepo
}

func NewReconciler(repo *repos.ReconcileRepo) *Reconciler {
	return &Reconciler{Repo: repo}
}

// Run corrects every drifted user and returns how many were rewritten.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	drifts, err := r.Repo.Fix(ctx)
	if err != nil {
		return 0, err
	}
	for _, d := range drifts {
		applog.Info(nil, "reconcile.user", map[string]any{
			"user_id":  d.UserID,
			"listings": []int{d.StoredListings, d.ActualListings},
			"sales":    []int{d.StoredSales, d.ActualSales},
		})
	}
	metrics.ReconcileCorrections.Add(float64(len(drifts)))
	return len(drifts), nil
}

// Schedule starts a cron runner calling Run on spec. The caller stops it.
func (r *Reconciler) Schedule(spec string, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		n, err := r.Run(ctx)
		if err != nil {
			applog.Error(nil, "reconcile.run", err, nil)
			return
		}
		applog.Info(nil, "reconcile.run", map[string]any{"corrected": n})
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
