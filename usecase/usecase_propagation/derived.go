package usecase_propagation

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mozillazg/go-pinyin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ComputeFilterable 叶子直接取自身属性，容器对成员做并集（布尔量取或）
func ComputeFilterable(resolved content_models.Resolved) (content_models.FilterableProperties, error) {
	switch r := resolved.(type) {
	case *content_models.ResolvedEntity:
		if r == nil || r.Entity == nil {
			break
		}
		return entityFilterable(r), nil
	case *content_models.ResolvedContainer:
		if r == nil || r.Container == nil {
			break
		}
		return containerFilterable(r), nil
	case *content_models.ResolvedDigitalEntity:
		return content_models.FilterableProperties{}, fmt.Errorf("%w: %s", domain.ErrNotDerivable, content_models.KindDigitalEntity)
	}
	return content_models.FilterableProperties{}, fmt.Errorf("%w: %T", domain.ErrUnknownKind, resolved)
}

func entityFilterable(r *content_models.ResolvedEntity) content_models.FilterableProperties {
	licenses := newStringSet()
	if r.DigitalEntity != nil {
		licenses.add(r.DigitalEntity.Licence)
	}
	mediaTypes := newStringSet()
	mediaTypes.add(entityMediaType(r.Entity))

	return content_models.FilterableProperties{
		Licenses:     licenses.sorted(),
		MediaTypes:   mediaTypes.sorted(),
		Downloadable: r.Entity.Options.AllowDownload,
	}
}

func containerFilterable(r *content_models.ResolvedContainer) content_models.FilterableProperties {
	licenses := newStringSet()
	mediaTypes := newStringSet()
	downloadable := false

	for _, member := range r.Members {
		if member == nil || member.Entity == nil {
			continue
		}
		m := entityFilterable(member)
		licenses.add(m.Licenses...)
		mediaTypes.add(m.MediaTypes...)
		downloadable = downloadable || m.Downloadable
	}

	return content_models.FilterableProperties{
		Licenses:     licenses.sorted(),
		MediaTypes:   mediaTypes.sorted(),
		Downloadable: downloadable,
	}
}

// entityMediaType 优先使用声明的 mediaType，否则按主文件扩展名推断 MIME 大类
func entityMediaType(e *content_models.Entity) string {
	if mt := strings.ToLower(strings.TrimSpace(e.MediaType)); mt != "" {
		return mt
	}
	file, ok := e.MainFile()
	if !ok {
		return ""
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.FileName)), ".")
	if ext == "" {
		return ""
	}
	return filetype.GetType(ext).MIME.Type
}

// ComputeSortable 只依赖文档自身。createdAt 与 hits 一旦存储就不再重新计算
func ComputeSortable(doc content_models.Document) (content_models.SortableProperties, error) {
	switch d := doc.(type) {
	case *content_models.Entity:
		if d != nil {
			return sortable(d.ID, d.DerivedFields, len(d.Annotations), d.Name, d.Title), nil
		}
	case *content_models.Compilation:
		if d != nil {
			return sortable(d.ID, d.DerivedFields, len(d.Annotations), d.Name, ""), nil
		}
	case *content_models.Profile:
		if d != nil {
			return sortable(d.ID, d.DerivedFields, 0, d.Name, d.Display), nil
		}
	case *content_models.DigitalEntity:
		return content_models.SortableProperties{}, fmt.Errorf("%w: %s", domain.ErrNotDerivable, content_models.KindDigitalEntity)
	}
	return content_models.SortableProperties{}, fmt.Errorf("%w: %T", domain.ErrUnknownKind, doc)
}

func sortable(
	id primitive.ObjectID,
	stored content_models.DerivedFields,
	annotations int,
	name, fallback string,
) content_models.SortableProperties {
	createdAt := id.Timestamp().UnixMilli()
	if stored.CreatedAt != nil {
		createdAt = *stored.CreatedAt
	}
	var hits int64
	if stored.Hits != nil && *stored.Hits > 0 {
		hits = *stored.Hits
	}

	normalized := NormalizeName(name, fallback)
	return content_models.SortableProperties{
		CreatedAt:       createdAt,
		Hits:            hits,
		AnnotationCount: annotations,
		NormalizedName:  normalized,
		NamePinyin:      namePinyin(normalized),
	}
}

// NormalizeName 去除首尾空白后转小写；name 为空时使用 fallback
func NormalizeName(name, fallback string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		n = strings.TrimSpace(fallback)
	}
	if n == "" {
		return ""
	}
	// Caser 有内部状态，不能跨 goroutine 共享
	return cases.Lower(language.Und).String(n)
}

// namePinyin 中文名称的拼音，用于按拼音排序；非汉字部分被忽略
func namePinyin(name string) []string {
	out := pinyin.LazyConvert(name, nil)
	if out == nil {
		return []string{}
	}
	return out
}

type stringSet map[string]struct{}

func newStringSet() stringSet { return stringSet{} }

func (s stringSet) add(values ...string) {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			s[v] = struct{}{}
		}
	}
}

// sorted 空集合返回 []string{}，与“缺失”区分
func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
