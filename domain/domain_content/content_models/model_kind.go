package content_models

import (
	"fmt"

	"github.com/mediavault/content-repository/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind 文档类型
type Kind string

const (
	KindDigitalEntity Kind = "digitalentity"
	KindEntity        Kind = "entity"
	KindCompilation   Kind = "compilation"
	KindProfile       Kind = "profile"
)

// DerivedKinds 拥有派生字段的类型，按依赖顺序排列（先叶子后容器）
var DerivedKinds = []Kind{KindEntity, KindCompilation, KindProfile}

// Collection 返回类型对应的集合名
func (k Kind) Collection() (string, error) {
	switch k {
	case KindDigitalEntity:
		return domain.CollectionDigitalEntity, nil
	case KindEntity:
		return domain.CollectionEntity, nil
	case KindCompilation:
		return domain.CollectionCompilation, nil
	case KindProfile:
		return domain.CollectionProfile, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownKind, string(k))
}

// HasDerived 是否维护派生字段
func (k Kind) HasDerived() bool {
	return k == KindEntity || k == KindCompilation || k == KindProfile
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, err := k.Collection(); err != nil {
		return "", err
	}
	return k, nil
}

// Document 四种文档的封闭联合类型，派生计算通过类型分支穷举处理
type Document interface {
	DocumentKind() Kind
	DocumentID() primitive.ObjectID
	isDocument()
}

// Derivable 持有派生字段的文档
type Derivable interface {
	Document
	Derived() *DerivedFields
}

// Container 聚合成员 Entity 的文档（Compilation、Profile）
type Container interface {
	Derivable
	MemberReferences() []Reference
	DisplayName() string
}
