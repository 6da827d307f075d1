package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hq/meridian/internal/authz"
	"github.com/meridian-hq/meridian/internal/observability"
)

// AuthzReconcileJob re-runs the role seeder for every organization so that
// catalog or template changes shipped with a deploy reach existing tenants.
type AuthzReconcileJob struct {
	Seeder  *authz.Seeder
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// NewAuthzReconcileJob wires dependencies for the reconcile handler.
func NewAuthzReconcileJob(seeder *authz.Seeder, pool *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics) *AuthzReconcileJob {
	return &AuthzReconcileJob{Seeder: seeder, Pool: pool, Logger: logger, Metrics: metrics}
}

// Handle processes TaskTypeAuthzReconcile tasks. A conflicting concurrent
// seed surfaces as a retryable error.
func (j *AuthzReconcileJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Seeder == nil {
		return errors.New("authz reconcile: handler not configured")
	}
	orgIDs, err := j.orgIDs(ctx)
	if err != nil {
		j.Metrics.RecordJob(TaskTypeAuthzReconcile, "failure")
		return err
	}
	var failed int
	for _, orgID := range orgIDs {
		if err := j.Seeder.SeedAll(ctx, authz.SeedOptions{OrganizationID: orgID}); err != nil {
			failed++
			j.Logger.Error("authz reconcile", slog.Int64("org_id", orgID), slog.Any("error", err))
			if errors.Is(err, authz.ErrSeedConflict) {
				j.Metrics.RecordJob(TaskTypeAuthzReconcile, "conflict")
				return err
			}
		}
	}
	if failed > 0 {
		j.Metrics.RecordJob(TaskTypeAuthzReconcile, "failure")
		return errors.New("authz reconcile: some organizations failed")
	}
	j.Metrics.RecordJob(TaskTypeAuthzReconcile, "success")
	j.Logger.Info("authz reconcile complete", slog.Int("organizations", len(orgIDs)))
	return nil
}

func (j *AuthzReconcileJob) orgIDs(ctx context.Context) ([]int64, error) {
	rows, err := j.Pool.Query(ctx, `SELECT id FROM organizations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
