package content_models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DigitalEntity 被数字化对象的元数据，许可证声明在这里
type DigitalEntity struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Licence     string             `bson:"licence" json:"licence"`
	Type        string             `bson:"type" json:"type,omitempty"`
	Tags        []string           `bson:"tags" json:"tags,omitempty"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Entity 单个可发布的媒体条目，关联一个 DigitalEntity
type Entity struct {
	ID                   primitive.ObjectID   `bson:"_id" json:"_id"`
	Name                 string               `bson:"name" json:"name"`
	Title                string               `bson:"title" json:"title,omitempty"`
	MediaType            string               `bson:"mediaType" json:"mediaType"`
	Files                []EntityFile         `bson:"files" json:"files"`
	Options              EntityOptions        `bson:"options" json:"options"`
	Finished             bool                 `bson:"finished" json:"finished"`
	Online               bool                 `bson:"online" json:"online"`
	RelatedDigitalEntity Reference            `bson:"relatedDigitalEntity" json:"relatedDigitalEntity"`
	Annotations          map[string]Reference `bson:"annotations" json:"annotations,omitempty"`
	UpdatedAt            time.Time            `bson:"updated_at" json:"updated_at"`

	DerivedFields `bson:",inline"`
}

type EntityFile struct {
	FileName string `bson:"file_name" json:"file_name"`
	FileSize int64  `bson:"file_size" json:"file_size"`
}

type EntityOptions struct {
	AllowDownload bool `bson:"allowDownload" json:"allowDownload"`
}

// MainFile 首个文件为主文件，mediaType 缺失时据其扩展名推断
func (e *Entity) MainFile() (EntityFile, bool) {
	if len(e.Files) == 0 {
		return EntityFile{}, false
	}
	return e.Files[0], true
}

// Published 已完成且在线的 Entity 才进入搜索索引
func (e *Entity) Published() bool { return e.Finished && e.Online }

// Compilation 用户整理的 Entity 合集
type Compilation struct {
	ID          primitive.ObjectID   `bson:"_id" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Password    string               `bson:"password" json:"-"`
	Entities    map[string]Reference `bson:"entities" json:"entities"`
	Annotations map[string]Reference `bson:"annotations" json:"annotations,omitempty"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`

	DerivedFields `bson:",inline"`
}

// Profile 用户或机构主页，聚合其名下的 Entity
type Profile struct {
	ID          primitive.ObjectID   `bson:"_id" json:"_id"`
	Name        string               `bson:"name" json:"name,omitempty"`
	Display     string               `bson:"displayName" json:"displayName"`
	Description string               `bson:"description" json:"description"`
	Type        string               `bson:"type" json:"type"`
	Entities    map[string]Reference `bson:"entities" json:"entities"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`

	DerivedFields `bson:",inline"`
}

func (*DigitalEntity) DocumentKind() Kind { return KindDigitalEntity }
func (*Entity) DocumentKind() Kind        { return KindEntity }
func (*Compilation) DocumentKind() Kind   { return KindCompilation }
func (*Profile) DocumentKind() Kind       { return KindProfile }

func (d *DigitalEntity) DocumentID() primitive.ObjectID { return d.ID }
func (e *Entity) DocumentID() primitive.ObjectID        { return e.ID }
func (c *Compilation) DocumentID() primitive.ObjectID   { return c.ID }
func (p *Profile) DocumentID() primitive.ObjectID       { return p.ID }

func (*DigitalEntity) isDocument() {}
func (*Entity) isDocument()        {}
func (*Compilation) isDocument()   {}
func (*Profile) isDocument()       {}

func (e *Entity) Derived() *DerivedFields      { return &e.DerivedFields }
func (c *Compilation) Derived() *DerivedFields { return &c.DerivedFields }
func (p *Profile) Derived() *DerivedFields     { return &p.DerivedFields }

func (c *Compilation) MemberReferences() []Reference { return memberReferences(c.Entities) }
func (p *Profile) MemberReferences() []Reference     { return memberReferences(p.Entities) }

func (c *Compilation) DisplayName() string { return "" }
func (p *Profile) DisplayName() string     { return p.Display }

// Clone 深拷贝，内存仓储用来隔离调用方的修改
func (d *DigitalEntity) Clone() *DigitalEntity {
	out := *d
	out.Tags = append([]string(nil), d.Tags...)
	return &out
}

func (e *Entity) Clone() *Entity {
	out := *e
	out.Files = append([]EntityFile(nil), e.Files...)
	out.Annotations = cloneReferenceMap(e.Annotations)
	out.DerivedFields = e.DerivedFields.Clone()
	return &out
}

func (c *Compilation) Clone() *Compilation {
	out := *c
	out.Entities = cloneReferenceMap(c.Entities)
	out.Annotations = cloneReferenceMap(c.Annotations)
	out.DerivedFields = c.DerivedFields.Clone()
	return &out
}

func (p *Profile) Clone() *Profile {
	out := *p
	out.Entities = cloneReferenceMap(p.Entities)
	out.DerivedFields = p.DerivedFields.Clone()
	return &out
}

func cloneReferenceMap(m map[string]Reference) map[string]Reference {
	if m == nil {
		return nil
	}
	out := make(map[string]Reference, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
