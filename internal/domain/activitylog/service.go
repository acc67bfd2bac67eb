package activitylog

import "context"

type ActivityLogService interface {
	List(ctx context.Context, filter Filter) ([]EntryResponse, error)
}
