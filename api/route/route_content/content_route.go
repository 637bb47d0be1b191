package route_content

import (
	"github.com/gin-gonic/gin"
	"github.com/mediavault/content-repository/api/controller/controller_content"
	"github.com/mediavault/content-repository/usecase"
	"github.com/rs/zerolog"
)

// NewContentRouter 读接口和计数接口公开，写接口挂在需要认证的分组上
func NewContentRouter[T any](
	uc usecase.ContentUsecase[T],
	path string,
	key string,
	listKey string,
	public *gin.RouterGroup,
	protected *gin.RouterGroup,
) {
	ctrl := controller_content.NewContentController(uc, key, listKey)

	publicGroup := public.Group(path)
	{
		publicGroup.GET("", ctrl.List)
		publicGroup.GET("/:id", ctrl.Get)
		publicGroup.POST("/:id/hit", ctrl.Hit)
	}

	protectedGroup := protected.Group(path)
	{
		protectedGroup.POST("", ctrl.Save)
		protectedGroup.DELETE("/:id", ctrl.Delete)
	}
}

func NewSearchRouter(
	syncer controller_content.SearchSyncer,
	log zerolog.Logger,
	protected *gin.RouterGroup,
) {
	ctrl := controller_content.NewSearchSyncController(syncer, log)

	searchGroup := protected.Group("/search")
	{
		searchGroup.POST("/sync", ctrl.Sync)
	}
}
