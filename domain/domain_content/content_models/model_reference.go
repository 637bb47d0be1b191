package content_models

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reference 文档间引用。存储中可能是 ObjectID、十六进制字符串或内嵌的 {_id: ...} 存根，
// 解码时统一归一化为 ID；无法解析的原值保留在 Raw 中
type Reference struct {
	ID  primitive.ObjectID
	Raw string
}

func NewReference(id primitive.ObjectID) Reference {
	return Reference{ID: id}
}

// ParseReference 解析十六进制标识符；失败时返回 Malformed 的引用而不是错误
func ParseReference(s string) Reference {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reference{}
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return Reference{Raw: s}
	}
	return Reference{ID: id}
}

func (r Reference) IsZero() bool    { return r.ID.IsZero() && r.Raw == "" }
func (r Reference) Valid() bool     { return !r.ID.IsZero() }
func (r Reference) Malformed() bool { return r.ID.IsZero() && r.Raw != "" }

func (r Reference) String() string {
	if r.Valid() {
		return r.ID.Hex()
	}
	return r.Raw
}

func (r Reference) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch {
	case r.Valid():
		return bson.MarshalValue(r.ID)
	case r.Raw != "":
		return bson.MarshalValue(r.Raw)
	}
	return bson.MarshalValue(nil)
}

func (r *Reference) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined, bsontype.Boolean:
		*r = Reference{}
		return nil
	case bsontype.ObjectID:
		*r = Reference{ID: raw.ObjectID()}
		return nil
	case bsontype.String:
		*r = ParseReference(raw.StringValue())
		return nil
	case bsontype.EmbeddedDocument:
		doc, ok := raw.DocumentOK()
		if !ok {
			return fmt.Errorf("reference: invalid embedded document")
		}
		idValue, err := doc.LookupErr("_id")
		if err != nil {
			*r = Reference{}
			return nil
		}
		return r.UnmarshalBSONValue(idValue.Type, idValue.Value)
	}
	return fmt.Errorf("reference: unsupported bson type %s", t)
}

func (r Reference) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON 接受 "hex" 或 {"_id": "hex"}
func (r *Reference) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" || trimmed == "true" || trimmed == "false" {
		*r = Reference{}
		return nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var stub struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(data, &stub); err != nil {
			return err
		}
		*r = ParseReference(stub.ID)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseReference(s)
	return nil
}

// memberReferences 成员表的键是十六进制 ID，值可能是完整引用也可能是占位布尔值
func memberReferences(members map[string]Reference) []Reference {
	if len(members) == 0 {
		return nil
	}
	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sortStrings(keys)

	refs := make([]Reference, 0, len(keys))
	for _, k := range keys {
		ref := members[k]
		if ref.IsZero() {
			ref = ParseReference(k)
		}
		refs = append(refs, ref)
	}
	return refs
}
