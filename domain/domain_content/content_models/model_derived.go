package content_models

import (
	"slices"
	"sort"
)

// 派生字段名，统一使用双下划线前缀以区别于用户字段
const (
	FieldLicenses        = "__licenses"
	FieldMediaTypes      = "__mediaTypes"
	FieldDownloadable    = "__downloadable"
	FieldCreatedAt       = "__createdAt"
	FieldHits            = "__hits"
	FieldAnnotationCount = "__annotationCount"
	FieldNormalizedName  = "__normalizedName"
	FieldNamePinyin      = "__namePinyin"
)

var (
	FilterableFields = []string{FieldLicenses, FieldMediaTypes, FieldDownloadable}
	SortableFields   = []string{FieldCreatedAt, FieldHits, FieldAnnotationCount, FieldNormalizedName, FieldNamePinyin}
)

// DerivedFields 持久化在文档上的派生字段。nil 表示缺失，由补全任务填充
type DerivedFields struct {
	Licenses        *[]string `bson:"__licenses,omitempty" json:"__licenses,omitempty"`
	MediaTypes      *[]string `bson:"__mediaTypes,omitempty" json:"__mediaTypes,omitempty"`
	Downloadable    *bool     `bson:"__downloadable,omitempty" json:"__downloadable,omitempty"`
	CreatedAt       *int64    `bson:"__createdAt,omitempty" json:"__createdAt,omitempty"`
	Hits            *int64    `bson:"__hits,omitempty" json:"__hits,omitempty"`
	AnnotationCount *int      `bson:"__annotationCount,omitempty" json:"__annotationCount,omitempty"`
	NormalizedName  *string   `bson:"__normalizedName,omitempty" json:"__normalizedName,omitempty"`
	NamePinyin      *[]string `bson:"__namePinyin,omitempty" json:"__namePinyin,omitempty"`
}

// FilterableProperties 由成员传递汇总而来的可过滤属性
type FilterableProperties struct {
	Licenses     []string `json:"licenses"`
	MediaTypes   []string `json:"mediaTypes"`
	Downloadable bool     `json:"downloadable"`
}

// SortableProperties 每个文档各自独立计算的可排序属性
type SortableProperties struct {
	CreatedAt       int64    `json:"createdAt"`
	Hits            int64    `json:"hits"`
	AnnotationCount int      `json:"annotationCount"`
	NormalizedName  string   `json:"normalizedName"`
	NamePinyin      []string `json:"namePinyin"`
}

// IsEmpty 没有任何字段需要写入
func (d DerivedFields) IsEmpty() bool {
	return len(d.Fields()) == 0
}

// Fields 返回非 nil 的字段名，顺序固定
func (d DerivedFields) Fields() []string {
	var fields []string
	if d.Licenses != nil {
		fields = append(fields, FieldLicenses)
	}
	if d.MediaTypes != nil {
		fields = append(fields, FieldMediaTypes)
	}
	if d.Downloadable != nil {
		fields = append(fields, FieldDownloadable)
	}
	if d.CreatedAt != nil {
		fields = append(fields, FieldCreatedAt)
	}
	if d.Hits != nil {
		fields = append(fields, FieldHits)
	}
	if d.AnnotationCount != nil {
		fields = append(fields, FieldAnnotationCount)
	}
	if d.NormalizedName != nil {
		fields = append(fields, FieldNormalizedName)
	}
	if d.NamePinyin != nil {
		fields = append(fields, FieldNamePinyin)
	}
	return fields
}

// Merge 用 changes 中非 nil 的字段覆盖当前值
func (d *DerivedFields) Merge(changes DerivedFields) {
	if changes.Licenses != nil {
		d.Licenses = cloneStrings(changes.Licenses)
	}
	if changes.MediaTypes != nil {
		d.MediaTypes = cloneStrings(changes.MediaTypes)
	}
	if changes.Downloadable != nil {
		v := *changes.Downloadable
		d.Downloadable = &v
	}
	if changes.CreatedAt != nil {
		v := *changes.CreatedAt
		d.CreatedAt = &v
	}
	if changes.Hits != nil {
		v := *changes.Hits
		d.Hits = &v
	}
	if changes.AnnotationCount != nil {
		v := *changes.AnnotationCount
		d.AnnotationCount = &v
	}
	if changes.NormalizedName != nil {
		v := *changes.NormalizedName
		d.NormalizedName = &v
	}
	if changes.NamePinyin != nil {
		d.NamePinyin = cloneStrings(changes.NamePinyin)
	}
}

// Clear 将指定字段置为缺失
func (d *DerivedFields) Clear(fields []string) {
	for _, f := range fields {
		switch f {
		case FieldLicenses:
			d.Licenses = nil
		case FieldMediaTypes:
			d.MediaTypes = nil
		case FieldDownloadable:
			d.Downloadable = nil
		case FieldCreatedAt:
			d.CreatedAt = nil
		case FieldHits:
			d.Hits = nil
		case FieldAnnotationCount:
			d.AnnotationCount = nil
		case FieldNormalizedName:
			d.NormalizedName = nil
		case FieldNamePinyin:
			d.NamePinyin = nil
		}
	}
}

// Missing 报告 fields 中是否有任一字段缺失
func (d DerivedFields) Missing(fields []string) bool {
	present := d.Fields()
	for _, f := range fields {
		if !slices.Contains(present, f) {
			return true
		}
	}
	return false
}

func (d DerivedFields) Clone() DerivedFields {
	var out DerivedFields
	out.Merge(d)
	return out
}

// Filterable 读取已存储的可过滤属性，缺失字段取零值
func (d DerivedFields) Filterable() FilterableProperties {
	var f FilterableProperties
	if d.Licenses != nil {
		f.Licenses = *d.Licenses
	}
	if d.MediaTypes != nil {
		f.MediaTypes = *d.MediaTypes
	}
	if d.Downloadable != nil {
		f.Downloadable = *d.Downloadable
	}
	return f
}

func cloneStrings(p *[]string) *[]string {
	v := make([]string, len(*p))
	copy(v, *p)
	return &v
}

func sortStrings(s []string) {
	sort.Strings(s)
}

// ResetDerived 清空写入方带来的派生字段，派生字段只能由引擎写入
func ResetDerived(doc Document) {
	if d, ok := doc.(Derivable); ok {
		*d.Derived() = DerivedFields{}
	}
}
