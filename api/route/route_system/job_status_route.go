package route_system

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mediavault/content-repository/api/controller/controller_system"
	"github.com/mediavault/content-repository/domain/domain_system"
	"github.com/mediavault/content-repository/usecase/usecase_system"
)

func NewJobStatusRouter(
	timeout time.Duration,
	repo domain_system.JobStatusRepository,
	group *gin.RouterGroup,
) {
	uc := usecase_system.NewJobStatusUsecase(repo, timeout)
	ctrl := controller_system.NewJobStatusController(uc)

	jobGroup := group.Group("/system/jobs")
	{
		jobGroup.GET("", ctrl.GetJobStatuses)
		jobGroup.GET("/:job", ctrl.GetJobStatus)
	}
}
