// Package mongotest 记录调用的 mongo.Database 替身，用于断言仓储层生成的过滤条件与更新语句
package mongotest

import (
	"context"
	"sync"

	"github.com/mediavault/content-repository/mongo"
	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Call 一次集合操作
type Call struct {
	Op         string
	Filter     interface{}
	Update     interface{}
	Upsert     bool
	Projection interface{}
	BatchSize  int32
	Sort       interface{}
	Skip       int64
	Limit      int64
}

type Database struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

func NewDatabase() *Database {
	return &Database{collections: make(map[string]*Collection)}
}

func (d *Database) Collection(name string) mongo.Collection {
	return d.C(name)
}

// C 返回具体类型，便于测试预置结果
func (d *Database) C(name string) *Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.collections[name]
	if !ok {
		c = &Collection{Name: name}
		d.collections[name] = c
	}
	return c
}

var (
	_ mongo.Database   = (*Database)(nil)
	_ mongo.Collection = (*Collection)(nil)
)

// Collection 预置的结果按 BSON 往返后解码，和真实驱动一样经过自定义编解码器
type Collection struct {
	mu    sync.Mutex
	Name  string
	calls []Call

	FindOneResult interface{}
	FindResults   []interface{}
	UpdateResult  driver.UpdateResult
	DeletedCount  int64
	Err           error

	indexes []string
}

func (c *Collection) record(call Call) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

func (c *Collection) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// LastCall 最近一次调用，没有调用时返回零值
func (c *Collection) LastCall() Call {
	calls := c.Calls()
	if len(calls) == 0 {
		return Call{}
	}
	return calls[len(calls)-1]
}

func (c *Collection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) mongo.SingleResult {
	c.record(Call{Op: "FindOne", Filter: filter})
	if c.Err != nil {
		return singleResult{err: c.Err}
	}
	if c.FindOneResult == nil {
		return singleResult{err: mongo.ErrNoDocuments}
	}
	return singleResult{doc: c.FindOneResult}
}

func (c *Collection) DeleteOne(_ context.Context, filter interface{}) (int64, error) {
	c.record(Call{Op: "DeleteOne", Filter: filter})
	return c.DeletedCount, c.Err
}

func (c *Collection) Find(_ context.Context, filter interface{}, opts ...*options.FindOptions) (mongo.Cursor, error) {
	call := Call{Op: "Find", Filter: filter}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if o.Projection != nil {
			call.Projection = o.Projection
		}
		if o.BatchSize != nil {
			call.BatchSize = *o.BatchSize
		}
		if o.Sort != nil {
			call.Sort = o.Sort
		}
		if o.Skip != nil {
			call.Skip = *o.Skip
		}
		if o.Limit != nil {
			call.Limit = *o.Limit
		}
	}
	c.record(call)
	if c.Err != nil {
		return nil, c.Err
	}
	return &cursor{docs: c.FindResults, pos: -1}, nil
}

func (c *Collection) UpdateOne(_ context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*driver.UpdateResult, error) {
	c.record(Call{Op: "UpdateOne", Filter: filter, Update: update, Upsert: upsert(opts)})
	if c.Err != nil {
		return nil, c.Err
	}
	result := c.UpdateResult
	return &result, nil
}

func (c *Collection) UpdateMany(_ context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*driver.UpdateResult, error) {
	c.record(Call{Op: "UpdateMany", Filter: filter, Update: update, Upsert: upsert(opts)})
	if c.Err != nil {
		return nil, c.Err
	}
	result := c.UpdateResult
	return &result, nil
}

func (c *Collection) Indexes() mongo.IndexView { return indexView{c: c} }

// IndexNames 已创建的索引名
func (c *Collection) IndexNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.indexes...)
}

func upsert(opts []*options.UpdateOptions) bool {
	for _, o := range opts {
		if o != nil && o.Upsert != nil && *o.Upsert {
			return true
		}
	}
	return false
}

type singleResult struct {
	doc interface{}
	err error
}

func (r singleResult) Decode(v interface{}) error {
	if r.err != nil {
		return r.err
	}
	return roundTrip(r.doc, v)
}

type cursor struct {
	docs []interface{}
	pos  int
}

func (c *cursor) Close(context.Context) error { return nil }

func (c *cursor) Next(context.Context) bool {
	c.pos++
	return c.pos < len(c.docs)
}

func (c *cursor) Decode(v interface{}) error { return roundTrip(c.docs[c.pos], v) }

func (c *cursor) Err() error { return nil }

type indexView struct{ c *Collection }

func (iv indexView) CreateOne(_ context.Context, model driver.IndexModel) (string, error) {
	name := ""
	if model.Options != nil && model.Options.Name != nil {
		name = *model.Options.Name
	}
	iv.c.mu.Lock()
	iv.c.indexes = append(iv.c.indexes, name)
	iv.c.mu.Unlock()
	return name, nil
}

func (iv indexView) ListSpecifications(context.Context) ([]*driver.IndexSpecification, error) {
	names := iv.c.IndexNames()
	specs := make([]*driver.IndexSpecification, 0, len(names))
	for _, n := range names {
		specs = append(specs, &driver.IndexSpecification{Name: n})
	}
	return specs, nil
}

func roundTrip(doc interface{}, v interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, v)
}
