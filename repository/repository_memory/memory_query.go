package repository_memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/mediavault/content-repository/domain/domain_content/content_models"
)

type derivedDocument interface {
	content_models.Document
	content_models.Derivable
}

// listByQuery docs 需已按 ID 排序，稳定排序保证 _id 为最后的排序键
func listByQuery[T derivedDocument](docs []T, q content_models.PropertyQuery) []T {
	matched := make([]T, 0, len(docs))
	for _, doc := range docs {
		if q.Matches(*doc.Derived()) {
			matched = append(matched, doc)
		}
	}

	slices.SortStableFunc(matched, func(a, b T) int {
		for _, s := range q.Sort {
			c := compareField(a.Derived(), b.Derived(), s.Sort)
			if s.Descending() {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	if q.Skip >= int64(len(matched)) {
		return []T{}
	}
	matched = matched[q.Skip:]
	if q.Limit > 0 && int64(len(matched)) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched
}

func compareField(a, b *content_models.DerivedFields, field string) int {
	switch field {
	case content_models.FieldCreatedAt:
		return cmp.Compare(deref(a.CreatedAt), deref(b.CreatedAt))
	case content_models.FieldHits:
		return cmp.Compare(deref(a.Hits), deref(b.Hits))
	case content_models.FieldAnnotationCount:
		return cmp.Compare(deref(a.AnnotationCount), deref(b.AnnotationCount))
	case content_models.FieldNormalizedName:
		return cmp.Compare(deref(a.NormalizedName), deref(b.NormalizedName))
	case content_models.FieldNamePinyin:
		return cmp.Compare(strings.Join(deref(a.NamePinyin), " "), strings.Join(deref(b.NamePinyin), " "))
	}
	return 0
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (r entityRepo) List(_ context.Context, q content_models.PropertyQuery) ([]*content_models.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var docs []*content_models.Entity
	for _, id := range mustIDs(r.s.idsOf(content_models.KindEntity)) {
		docs = append(docs, r.s.entities[id].Clone())
	}
	return listByQuery(docs, q), nil
}

func (r compilationRepo) List(_ context.Context, q content_models.PropertyQuery) ([]*content_models.Compilation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var docs []*content_models.Compilation
	for _, id := range mustIDs(r.s.idsOf(content_models.KindCompilation)) {
		docs = append(docs, r.s.compilations[id].Clone())
	}
	return listByQuery(docs, q), nil
}

func (r profileRepo) List(_ context.Context, q content_models.PropertyQuery) ([]*content_models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var docs []*content_models.Profile
	for _, id := range mustIDs(r.s.idsOf(content_models.KindProfile)) {
		docs = append(docs, r.s.profiles[id].Clone())
	}
	return listByQuery(docs, q), nil
}
