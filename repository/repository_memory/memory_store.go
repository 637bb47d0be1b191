// Package repository_memory 内存版仓储，实现与 Mongo 仓储相同的语义，供用例层与任务测试使用
package repository_memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu              sync.Mutex
	digitalEntities map[primitive.ObjectID]*content_models.DigitalEntity
	entities        map[primitive.ObjectID]*content_models.Entity
	compilations    map[primitive.ObjectID]*content_models.Compilation
	profiles        map[primitive.ObjectID]*content_models.Profile

	setDerivedCalls   int
	unsetDerivedCalls int
	failSetDerived    map[primitive.ObjectID]error
}

func NewStore() *Store {
	return &Store{
		digitalEntities: make(map[primitive.ObjectID]*content_models.DigitalEntity),
		entities:        make(map[primitive.ObjectID]*content_models.Entity),
		compilations:    make(map[primitive.ObjectID]*content_models.Compilation),
		profiles:        make(map[primitive.ObjectID]*content_models.Profile),
		failSetDerived:  make(map[primitive.ObjectID]error),
	}
}

// Content 组装成引擎使用的仓储集合
func (s *Store) Content() content_interface.Store {
	return content_interface.Store{
		DigitalEntities: digitalEntityRepo{s},
		Entities:        entityRepo{s},
		Compilations:    compilationRepo{s},
		Profiles:        profileRepo{s},
		Derived:         derivedRepo{s},
	}
}

// SetDerivedCalls 实际发生的派生字段写入次数
func (s *Store) SetDerivedCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setDerivedCalls
}

func (s *Store) UnsetDerivedCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsetDerivedCalls
}

// FailSetDerived 使指定文档的派生字段写入返回 err
func (s *Store) FailSetDerived(id primitive.ObjectID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSetDerived[id] = err
}

// Entity 返回存储中的副本
func (s *Store) Entity(id primitive.ObjectID) *content_models.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[id]; ok {
		return e.Clone()
	}
	return nil
}

func (s *Store) Compilation(id primitive.ObjectID) *content_models.Compilation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.compilations[id]; ok {
		return c.Clone()
	}
	return nil
}

func (s *Store) Profile(id primitive.ObjectID) *content_models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[id]; ok {
		return p.Clone()
	}
	return nil
}

// Seed 直接写入文档，不经过钩子，派生字段原样保留
func (s *Store) Seed(docs ...content_models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		switch d := doc.(type) {
		case *content_models.DigitalEntity:
			s.digitalEntities[d.ID] = d.Clone()
		case *content_models.Entity:
			s.entities[d.ID] = d.Clone()
		case *content_models.Compilation:
			s.compilations[d.ID] = d.Clone()
		case *content_models.Profile:
			s.profiles[d.ID] = d.Clone()
		}
	}
}

func (s *Store) derivedOf(kind content_models.Kind, id primitive.ObjectID) (*content_models.DerivedFields, bool) {
	switch kind {
	case content_models.KindEntity:
		if e, ok := s.entities[id]; ok {
			return &e.DerivedFields, true
		}
	case content_models.KindCompilation:
		if c, ok := s.compilations[id]; ok {
			return &c.DerivedFields, true
		}
	case content_models.KindProfile:
		if p, ok := s.profiles[id]; ok {
			return &p.DerivedFields, true
		}
	}
	return nil, false
}

func (s *Store) idsOf(kind content_models.Kind) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	switch kind {
	case content_models.KindEntity:
		for id := range s.entities {
			ids = append(ids, id)
		}
	case content_models.KindCompilation:
		for id := range s.compilations {
			ids = append(ids, id)
		}
	case content_models.KindProfile:
		for id := range s.profiles {
			ids = append(ids, id)
		}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, string(kind))
	}
	sortIDs(ids)
	return ids, nil
}

func sortIDs(ids []primitive.ObjectID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
}

func assignID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

// preserveDerived $set 语义：nil 派生字段保留存储中的值
func preserveDerived(incoming *content_models.DerivedFields, stored *content_models.DerivedFields) {
	merged := stored.Clone()
	merged.Merge(*incoming)
	*incoming = merged
}

type digitalEntityRepo struct{ s *Store }

func (r digitalEntityRepo) GetByID(_ context.Context, id primitive.ObjectID) (*content_models.DigitalEntity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d, ok := r.s.digitalEntities[id]; ok {
		return d.Clone(), nil
	}
	return nil, nil
}

func (r digitalEntityRepo) Upsert(_ context.Context, doc *content_models.DigitalEntity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignID(&doc.ID)
	doc.UpdatedAt = time.Now().UTC()
	r.s.digitalEntities[doc.ID] = doc.Clone()
	return nil
}

func (r digitalEntityRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.digitalEntities[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id.Hex())
	}
	delete(r.s.digitalEntities, id)
	return nil
}

type entityRepo struct{ s *Store }

func (r entityRepo) GetByID(_ context.Context, id primitive.ObjectID) (*content_models.Entity, error) {
	return r.s.Entity(id), nil
}

func (r entityRepo) Upsert(_ context.Context, doc *content_models.Entity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignID(&doc.ID)
	doc.UpdatedAt = time.Now().UTC()
	stored := doc.Clone()
	if old, ok := r.s.entities[doc.ID]; ok {
		preserveDerived(&stored.DerivedFields, &old.DerivedFields)
	}
	r.s.entities[doc.ID] = stored
	return nil
}

func (r entityRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.entities[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id.Hex())
	}
	delete(r.s.entities, id)
	return nil
}

func (r entityRepo) FindIDsByDigitalEntity(_ context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []primitive.ObjectID
	for eid, e := range r.s.entities {
		if e.RelatedDigitalEntity.ID == id {
			ids = append(ids, eid)
		}
	}
	sortIDs(ids)
	return ids, nil
}

func (r entityRepo) ForEachPublished(ctx context.Context, fn func(*content_models.Entity) error) error {
	r.s.mu.Lock()
	var published []*content_models.Entity
	for _, id := range mustIDs(r.s.idsOf(content_models.KindEntity)) {
		if e := r.s.entities[id]; e.Published() {
			published = append(published, e.Clone())
		}
	}
	r.s.mu.Unlock()

	for _, e := range published {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

type compilationRepo struct{ s *Store }

func (r compilationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*content_models.Compilation, error) {
	return r.s.Compilation(id), nil
}

func (r compilationRepo) Upsert(_ context.Context, doc *content_models.Compilation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignID(&doc.ID)
	doc.UpdatedAt = time.Now().UTC()
	stored := doc.Clone()
	if old, ok := r.s.compilations[doc.ID]; ok {
		preserveDerived(&stored.DerivedFields, &old.DerivedFields)
	}
	r.s.compilations[doc.ID] = stored
	return nil
}

func (r compilationRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.compilations[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id.Hex())
	}
	delete(r.s.compilations, id)
	return nil
}

func (r compilationRepo) FindIDsByEntity(_ context.Context, entityID primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []primitive.ObjectID
	for id, c := range r.s.compilations {
		if _, ok := c.Entities[entityID.Hex()]; ok {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids, nil
}

func (r compilationRepo) ForEach(ctx context.Context, fn func(*content_models.Compilation) error) error {
	r.s.mu.Lock()
	var all []*content_models.Compilation
	for _, id := range mustIDs(r.s.idsOf(content_models.KindCompilation)) {
		all = append(all, r.s.compilations[id].Clone())
	}
	r.s.mu.Unlock()

	for _, c := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

type profileRepo struct{ s *Store }

func (r profileRepo) GetByID(_ context.Context, id primitive.ObjectID) (*content_models.Profile, error) {
	return r.s.Profile(id), nil
}

func (r profileRepo) Upsert(_ context.Context, doc *content_models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignID(&doc.ID)
	doc.UpdatedAt = time.Now().UTC()
	stored := doc.Clone()
	if old, ok := r.s.profiles[doc.ID]; ok {
		preserveDerived(&stored.DerivedFields, &old.DerivedFields)
	}
	r.s.profiles[doc.ID] = stored
	return nil
}

func (r profileRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id.Hex())
	}
	delete(r.s.profiles, id)
	return nil
}

func (r profileRepo) FindIDsByEntity(_ context.Context, entityID primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []primitive.ObjectID
	for id, p := range r.s.profiles {
		if _, ok := p.Entities[entityID.Hex()]; ok {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids, nil
}

type derivedRepo struct{ s *Store }

func (r derivedRepo) ForEachMissing(
	ctx context.Context,
	kind content_models.Kind,
	fields []string,
	fn func(primitive.ObjectID) error,
) error {
	r.s.mu.Lock()
	ids, err := r.s.idsOf(kind)
	var missing []primitive.ObjectID
	for _, id := range ids {
		if d, ok := r.s.derivedOf(kind, id); ok && d.Missing(fields) {
			missing = append(missing, id)
		}
	}
	r.s.mu.Unlock()
	if err != nil {
		return err
	}

	for _, id := range missing {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}

func (r derivedRepo) SetDerived(_ context.Context, kind content_models.Kind, id primitive.ObjectID, changes content_models.DerivedFields) error {
	if changes.IsEmpty() {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failSetDerived[id]; err != nil {
		return err
	}
	r.s.setDerivedCalls++
	if d, ok := r.s.derivedOf(kind, id); ok {
		d.Merge(changes)
	}
	return nil
}

func (r derivedRepo) UnsetDerived(_ context.Context, kind content_models.Kind, ids []primitive.ObjectID, fields []string) error {
	if len(ids) == 0 || len(fields) == 0 {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.unsetDerivedCalls++
	for _, id := range ids {
		if d, ok := r.s.derivedOf(kind, id); ok {
			d.Clear(fields)
		}
	}
	return nil
}

func (r derivedRepo) IncrementHits(_ context.Context, kind content_models.Kind, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.derivedOf(kind, id)
	if !ok {
		if !kind.HasDerived() {
			return fmt.Errorf("%w: %q", domain.ErrNotDerivable, string(kind))
		}
		return nil
	}
	var hits int64
	if d.Hits != nil {
		hits = *d.Hits
	}
	hits++
	d.Hits = &hits
	return nil
}

func (r derivedRepo) DecrementHits(_ context.Context, kind content_models.Kind) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids, err := r.s.idsOf(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, id := range ids {
		d, _ := r.s.derivedOf(kind, id)
		if d.Hits != nil && *d.Hits > 0 {
			hits := *d.Hits - 1
			d.Hits = &hits
			n++
		}
	}
	return n, nil
}

func mustIDs(ids []primitive.ObjectID, _ error) []primitive.ObjectID { return ids }
