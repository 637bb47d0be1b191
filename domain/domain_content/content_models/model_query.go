package content_models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mediavault/content-repository/domain"
)

const (
	DefaultListLimit int64 = 50
	MaxListLimit     int64 = 500
)

// PropertyQuery 按派生字段过滤和排序的列表查询。
// 集合字段匹配任一取值，字段缺失的文档不会命中过滤条件；_id 始终作为最后的排序键
type PropertyQuery struct {
	Licenses     []string
	MediaTypes   []string
	Downloadable *bool
	Sort         []domain.SortOrder
	Skip         int64
	Limit        int64
}

// Normalize 校验排序字段并补全分页默认值
func (q PropertyQuery) Normalize() (PropertyQuery, error) {
	q.Sort = slices.Clone(q.Sort)
	for i, s := range q.Sort {
		if !slices.Contains(SortableFields, s.Sort) {
			return q, fmt.Errorf("%w: unsupported sort field %q", domain.ErrInvalidQuery, s.Sort)
		}
		switch strings.ToLower(s.Order) {
		case "", "asc":
			q.Sort[i].Order = "asc"
		case "desc":
			q.Sort[i].Order = "desc"
		default:
			return q, fmt.Errorf("%w: unsupported sort order %q", domain.ErrInvalidQuery, s.Order)
		}
	}

	if q.Skip < 0 {
		return q, fmt.Errorf("%w: negative offset", domain.ErrInvalidQuery)
	}
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultListLimit
	case q.Limit > MaxListLimit:
		q.Limit = MaxListLimit
	}
	return q, nil
}

// Matches 内存实现使用的过滤判断，语义与 MongoDB 查询一致
func (q PropertyQuery) Matches(d DerivedFields) bool {
	if len(q.Licenses) > 0 && (d.Licenses == nil || !intersects(*d.Licenses, q.Licenses)) {
		return false
	}
	if len(q.MediaTypes) > 0 && (d.MediaTypes == nil || !intersects(*d.MediaTypes, q.MediaTypes)) {
		return false
	}
	if q.Downloadable != nil && (d.Downloadable == nil || *d.Downloadable != *q.Downloadable) {
		return false
	}
	return true
}

func intersects(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
