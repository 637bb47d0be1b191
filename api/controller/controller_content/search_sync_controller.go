package controller_content

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const searchSyncKey = "search-sync"

// SearchSyncer 全量同步搜索索引
type SearchSyncer interface {
	EnsureSearchIndex(ctx context.Context) error
}

type SearchSyncController struct {
	Syncer SearchSyncer
	log    zerolog.Logger
	flight singleflight.Group
}

func NewSearchSyncController(syncer SearchSyncer, log zerolog.Logger) *SearchSyncController {
	return &SearchSyncController{Syncer: syncer, log: log}
}

// Sync 后台执行，立即返回 202；同步进行中的重复请求合并到同一次执行
func (c *SearchSyncController) Sync(ctx *gin.Context) {
	c.flight.DoChan(searchSyncKey, func() (interface{}, error) {
		err := c.Syncer.EnsureSearchIndex(context.Background())
		if err != nil {
			c.log.Error().Err(err).Msg("搜索索引同步失败")
		}
		return nil, err
	})

	ctx.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
