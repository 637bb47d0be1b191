package usecase_propagation

import (
	"slices"

	"github.com/mediavault/content-repository/domain/domain_content/content_models"
)

// DiffDerived 比较存储值与计算值，只返回需要写入的字段。
// 结果为空时不写库，重复执行补全任务不会产生写操作
func DiffDerived(
	stored content_models.DerivedFields,
	filterable *content_models.FilterableProperties,
	sortable *content_models.SortableProperties,
) content_models.DerivedFields {
	var changes content_models.DerivedFields

	if f := filterable; f != nil {
		if stored.Licenses == nil || !slices.Equal(*stored.Licenses, f.Licenses) {
			v := nonNil(f.Licenses)
			changes.Licenses = &v
		}
		if stored.MediaTypes == nil || !slices.Equal(*stored.MediaTypes, f.MediaTypes) {
			v := nonNil(f.MediaTypes)
			changes.MediaTypes = &v
		}
		if stored.Downloadable == nil || *stored.Downloadable != f.Downloadable {
			v := f.Downloadable
			changes.Downloadable = &v
		}
	}

	if s := sortable; s != nil {
		if stored.CreatedAt == nil {
			v := s.CreatedAt
			changes.CreatedAt = &v
		}
		if stored.Hits == nil || *stored.Hits < 0 {
			v := s.Hits
			changes.Hits = &v
		}
		if stored.AnnotationCount == nil || *stored.AnnotationCount != s.AnnotationCount {
			v := s.AnnotationCount
			changes.AnnotationCount = &v
		}
		if stored.NormalizedName == nil || *stored.NormalizedName != s.NormalizedName {
			v := s.NormalizedName
			changes.NormalizedName = &v
		}
		if stored.NamePinyin == nil || !slices.Equal(*stored.NamePinyin, s.NamePinyin) {
			v := nonNil(s.NamePinyin)
			changes.NamePinyin = &v
		}
	}

	return changes
}

func nonNil(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
