package content_models

// Resolved 引用展开后的文档视图，只在内存中存在，不持久化
type Resolved interface {
	ResolvedKind() Kind
	Document() Document
	// PendingReferences 因深度限制未展开的引用
	PendingReferences() []Reference
}

type ResolvedDigitalEntity struct {
	DigitalEntity *DigitalEntity `json:"digitalEntity"`
}

// ResolvedEntity DigitalEntity 为 nil 表示引用为空、目标不存在或尚未展开
type ResolvedEntity struct {
	Entity        *Entity        `json:"entity"`
	DigitalEntity *DigitalEntity `json:"digitalEntity,omitempty"`
	Pending       []Reference    `json:"pending,omitempty"`
}

// ResolvedContainer Members 只包含成功展开的成员，失效引用被静默过滤
type ResolvedContainer struct {
	Container Container         `json:"container"`
	Members   []*ResolvedEntity `json:"members"`
	Pending   []Reference       `json:"pending,omitempty"`
}

func (r *ResolvedDigitalEntity) ResolvedKind() Kind { return KindDigitalEntity }
func (r *ResolvedEntity) ResolvedKind() Kind        { return KindEntity }
func (r *ResolvedContainer) ResolvedKind() Kind     { return r.Container.DocumentKind() }

func (r *ResolvedDigitalEntity) Document() Document { return r.DigitalEntity }
func (r *ResolvedEntity) Document() Document        { return r.Entity }
func (r *ResolvedContainer) Document() Document     { return r.Container }

func (r *ResolvedDigitalEntity) PendingReferences() []Reference { return nil }
func (r *ResolvedEntity) PendingReferences() []Reference        { return r.Pending }

func (r *ResolvedContainer) PendingReferences() []Reference {
	pending := append([]Reference(nil), r.Pending...)
	for _, m := range r.Members {
		pending = append(pending, m.Pending...)
	}
	return pending
}
