package activitylog

import (
	"context"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
)

type ActivityLogServiceImpl struct {
	activitylog.ActivityLogRepository
}

func NewActivityLogService(repo activitylog.ActivityLogRepository) activitylog.ActivityLogService {
	return &ActivityLogServiceImpl{ActivityLogRepository: repo}
}

// List implements activitylog.ActivityLogService.
func (s *ActivityLogServiceImpl) List(ctx context.Context, filter activitylog.Filter) ([]activitylog.EntryResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	entries, err := s.ActivityLogRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]activitylog.EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, activitylog.ToResponse(e))
	}
	return out, nil
}
