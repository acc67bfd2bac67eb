package activitylog

import "context"

type ActivityLogRepository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, filter Filter) ([]Entry, error)
}
