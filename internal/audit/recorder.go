package audit

import (
	"context"

	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/repository"

	"github.com/rs/zerolog"
)

// storeRecorder persists audit events through the repository layer,
// logging and swallowing any sink failure.
type storeRecorder struct {
	complianceRepo repository.ComplianceRepository
	activityRepo   repository.ActivityLogRepository
	logger         zerolog.Logger
}

// NewRecorder creates a Recorder backed by the audit repositories.
func NewRecorder(
	complianceRepo repository.ComplianceRepository,
	activityRepo repository.ActivityLogRepository,
	logger zerolog.Logger,
) Recorder {
	return &storeRecorder{
		complianceRepo: complianceRepo,
		activityRepo:   activityRepo,
		logger:         logger,
	}
}

func (r *storeRecorder) RecordCompliance(ctx context.Context, event ComplianceEvent) {
	record := &domain.ComplianceRecord{
		UserID:   event.UserID,
		Type:     event.Type,
		Status:   event.Status,
		Severity: event.Severity,
		Details:  event.Details,
	}
	if _, err := r.complianceRepo.Create(ctx, record); err != nil {
		r.logger.Error().
			Err(err).
			Str("user", event.UserID.Hex()).
			Str("type", event.Type).
			Msg("failed to persist compliance record")
	}
}

func (r *storeRecorder) LogActivity(ctx context.Context, event ActivityEvent) {
	entry := &domain.ActivityLog{
		ActorID:    event.ActorID,
		ActorEmail: event.ActorEmail,
		ActionType: event.ActionType,
		TargetUser: event.TargetUser,
		Details:    event.Details,
		Status:     event.Status,
	}
	if _, err := r.activityRepo.Create(ctx, entry); err != nil {
		r.logger.Error().
			Err(err).
			Str("actor", event.ActorID.Hex()).
			Str("actionType", event.ActionType).
			Msg("failed to persist activity log entry")
	}
}
