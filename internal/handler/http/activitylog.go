package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/activitylog"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
)

type ActivityLogHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type activityLogHandlerImpl struct {
	activityLogService activitylog.ActivityLogService
}

func NewActivityLogHandler(activityLogService activitylog.ActivityLogService) ActivityLogHandler {
	return &activityLogHandlerImpl{
		activityLogService: activityLogService,
	}
}

func (h *activityLogHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", "limit")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := activitylog.Filter{
		TargetType: queryParam(r, "targetType", "target_type"),
		TargetID:   queryParam(r, "targetId", "target_id"),
		Action:     queryParam(r, "action"),
		Limit:      limit,
	}

	result, err := h.activityLogService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result, limit)
}
