package usecase_propagation

import (
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
)

// BuildSearchDocument 把展开后的文档和派生属性合并成搜索索引文档
func BuildSearchDocument(
	resolved content_models.Resolved,
	filterable content_models.FilterableProperties,
	sortable content_models.SortableProperties,
) *content_models.SearchDocument {
	doc := &content_models.SearchDocument{
		ID:              resolved.Document().DocumentID().Hex(),
		Kind:            resolved.ResolvedKind(),
		Licenses:        nonNil(filterable.Licenses),
		MediaTypes:      nonNil(filterable.MediaTypes),
		Downloadable:    filterable.Downloadable,
		CreatedAt:       sortable.CreatedAt,
		Hits:            sortable.Hits,
		AnnotationCount: sortable.AnnotationCount,
		NormalizedName:  sortable.NormalizedName,
		NamePinyin:      nonNil(sortable.NamePinyin),
	}

	switch r := resolved.(type) {
	case *content_models.ResolvedEntity:
		doc.Name = r.Entity.Name
		if r.DigitalEntity != nil {
			doc.DigitalEntity = r.DigitalEntity.Title
			doc.Description = r.DigitalEntity.Description
		}
	case *content_models.ResolvedContainer:
		switch c := r.Container.(type) {
		case *content_models.Compilation:
			doc.Name = c.Name
			doc.Description = c.Description
		case *content_models.Profile:
			doc.Name = c.Display
			doc.Description = c.Description
		}
		for _, m := range r.Members {
			doc.Members = append(doc.Members, m.Entity.ID.Hex())
		}
	}
	return doc
}
