package controller_content

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mediavault/content-repository/api/controller"
	"github.com/mediavault/content-repository/api/middleware"
	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/usecase"
)

// ContentController 四种内容文档共用的控制器
type ContentController[T any] struct {
	Usecase usecase.ContentUsecase[T]
	key     string
	listKey string
}

func NewContentController[T any](uc usecase.ContentUsecase[T], key, listKey string) *ContentController[T] {
	return &ContentController[T]{Usecase: uc, key: key, listKey: listKey}
}

// Save 请求体带 _id 时更新，否则新建
func (c *ContentController[T]) Save(ctx *gin.Context) {
	var doc T
	if err := ctx.ShouldBindJSON(&doc); err != nil {
		controller.ErrorResponse(ctx, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	saved, err := c.Usecase.Save(ctx.Request.Context(), &doc, middleware.ActorFromContext(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}

	controller.SuccessResponse(ctx, c.key, saved, 1)
}

func (c *ContentController[T]) Get(ctx *gin.Context) {
	resolved, err := c.Usecase.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}

	controller.SuccessResponse(ctx, c.key, resolved, 1)
}

func (c *ContentController[T]) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := c.Usecase.Delete(ctx.Request.Context(), id, middleware.ActorFromContext(ctx)); err != nil {
		writeError(ctx, err)
		return
	}

	controller.SuccessResponse(ctx, "deleted", id, 1)
}

func (c *ContentController[T]) Hit(ctx *gin.Context) {
	if err := c.Usecase.Hit(ctx.Request.Context(), ctx.Param("id")); err != nil {
		writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// List 查询参数: license、mediaType 可重复，downloadable=true|false，
// sort 格式为 field:order（可重复），start/end 为分页区间
func (c *ContentController[T]) List(ctx *gin.Context) {
	params := struct {
		Start        string   `form:"start"`
		End          string   `form:"end"`
		Licenses     []string `form:"license"`
		MediaTypes   []string `form:"mediaType"`
		Downloadable string   `form:"downloadable"`
		Sort         []string `form:"sort"`
	}{
		Start:        ctx.DefaultQuery("start", "0"),
		End:          ctx.Query("end"),
		Licenses:     ctx.QueryArray("license"),
		MediaTypes:   ctx.QueryArray("mediaType"),
		Downloadable: ctx.Query("downloadable"),
		Sort:         ctx.QueryArray("sort"),
	}

	sortOrders, err := domain.ParseSortOrders(params.Sort)
	if err != nil {
		controller.ErrorResponse(ctx, http.StatusBadRequest, "INVALID_SORT_FORMAT", err.Error())
		return
	}

	q := content_models.PropertyQuery{
		Licenses:   params.Licenses,
		MediaTypes: params.MediaTypes,
		Sort:       sortOrders,
	}
	if params.Downloadable != "" {
		downloadable, err := strconv.ParseBool(params.Downloadable)
		if err != nil {
			controller.ErrorResponse(ctx, http.StatusBadRequest, "INVALID_PARAM", "downloadable参数应为true或false")
			return
		}
		q.Downloadable = &downloadable
	}

	start, err := strconv.ParseInt(params.Start, 10, 64)
	if err != nil || start < 0 {
		controller.ErrorResponse(ctx, http.StatusBadRequest, "INVALID_PARAM", "start参数必须为非负整数")
		return
	}
	q.Skip = start
	if params.End != "" {
		end, err := strconv.ParseInt(params.End, 10, 64)
		if err != nil || end <= start {
			controller.ErrorResponse(ctx, http.StatusBadRequest, "INVALID_PARAM", "end参数必须大于start")
			return
		}
		q.Limit = end - start
	}

	items, err := c.Usecase.List(ctx.Request.Context(), q)
	if err != nil {
		writeError(ctx, err)
		return
	}

	controller.SuccessResponse(ctx, c.listKey, items, len(items))
}

func writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedReference):
		controller.ErrorResponse(ctx, http.StatusBadRequest, "MALFORMED_REFERENCE", err.Error())
	case errors.Is(err, domain.ErrInvalidQuery):
		controller.ErrorResponse(ctx, http.StatusBadRequest, "INVALID_QUERY", err.Error())
	case errors.Is(err, domain.ErrNotDerivable):
		controller.ErrorResponse(ctx, http.StatusBadRequest, "NOT_DERIVABLE", err.Error())
	case errors.Is(err, domain.ErrUnknownKind):
		controller.ErrorResponse(ctx, http.StatusBadRequest, "UNKNOWN_KIND", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		controller.ErrorResponse(ctx, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		controller.ErrorResponse(ctx, http.StatusInternalServerError, "SERVER_ERROR", err.Error())
	}
}
