package controller_system

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediavault/content-repository/api/controller"
	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_system"
)

type JobStatusController struct {
	JobStatusUsecase domain_system.JobStatusUsecase
}

func NewJobStatusController(uc domain_system.JobStatusUsecase) *JobStatusController {
	return &JobStatusController{JobStatusUsecase: uc}
}

func (c *JobStatusController) GetJobStatuses(ctx *gin.Context) {
	statuses, err := c.JobStatusUsecase.GetAll(ctx.Request.Context())
	if err != nil {
		controller.ErrorResponse(ctx, http.StatusInternalServerError, "SERVER_ERROR", err.Error())
		return
	}

	controller.SuccessResponse(ctx, "jobs", statuses, len(statuses))
}

func (c *JobStatusController) GetJobStatus(ctx *gin.Context) {
	status, err := c.JobStatusUsecase.Get(ctx.Request.Context(), ctx.Param("job"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			controller.ErrorResponse(ctx, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		controller.ErrorResponse(ctx, http.StatusInternalServerError, "SERVER_ERROR", err.Error())
		return
	}

	controller.SuccessResponse(ctx, "job", status, 1)
}
