package content_models

// SearchDocument 推送到外部搜索索引的文档：展开后的内容加上派生字段
type SearchDocument struct {
	ID              string   `json:"id"`
	Kind            Kind     `json:"kind"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	DigitalEntity   string   `json:"digitalEntity,omitempty"`
	Members         []string `json:"members,omitempty"`
	Licenses        []string `json:"licenses"`
	MediaTypes      []string `json:"mediaTypes"`
	Downloadable    bool     `json:"downloadable"`
	CreatedAt       int64    `json:"createdAt"`
	Hits            int64    `json:"hits"`
	AnnotationCount int      `json:"annotationCount"`
	NormalizedName  string   `json:"normalizedName"`
	NamePinyin      []string `json:"namePinyin"`
}
