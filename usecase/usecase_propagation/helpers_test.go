package usecase_propagation

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/repository/repository_memory"
	"github.com/mediavault/content-repository/usecase/usecase_hook"
	"github.com/mediavault/content-repository/util/clock"
	"github.com/mediavault/content-repository/util/metrics"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var epoch = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

var editor = &domain.Actor{UserID: "u-1", Username: "editor"}

type fakeSearch struct {
	mu   sync.Mutex
	docs map[string]*content_models.SearchDocument
	fail map[string]bool
}

func newFakeSearch() *fakeSearch {
	return &fakeSearch{
		docs: make(map[string]*content_models.SearchDocument),
		fail: make(map[string]bool),
	}
}

func (s *fakeSearch) UpdateDocument(_ context.Context, _ content_models.Kind, doc *content_models.SearchDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[doc.ID] {
		return errors.New("search unavailable")
	}
	s.docs[doc.ID] = doc
	return nil
}

func (s *fakeSearch) get(id primitive.ObjectID) *content_models.SearchDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[id.Hex()]
}

func (s *fakeSearch) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

type testEnv struct {
	store     *repository_memory.Store
	search    *fakeSearch
	clock     *clock.FakeClock
	resolver  *Resolver
	refresher *Refresher
	queue     *usecase_hook.TaskQueue
	hooks     *usecase_hook.Manager
	statuses  *repository_memory.JobStatusRepository
	jobs      *Jobs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.New(io.Discard)
	m := metrics.New(nil)

	store := repository_memory.NewStore()
	content := store.Content()
	search := newFakeSearch()
	fake := clock.Fake(epoch)

	resolver := NewResolver(content, 0)
	refresher := NewRefresher(content, resolver, search, log, m)
	queue := usecase_hook.NewTaskQueue(log, m)
	hooks := usecase_hook.NewManager(log, m)
	NewPropagator(content, refresher, queue, log).Register(hooks)
	statuses := repository_memory.NewJobStatusRepository()

	return &testEnv{
		store:     store,
		search:    search,
		clock:     fake,
		resolver:  resolver,
		refresher: refresher,
		queue:     queue,
		hooks:     hooks,
		statuses:  statuses,
		jobs:      NewJobs(content, refresher, statuses, fake, log, m),
	}
}

// backfill 依次执行两个补全任务
func (e *testEnv) backfill(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := e.jobs.EnsureFilterableProperties(ctx); err != nil {
		t.Fatalf("ensure filterable: %v", err)
	}
	if err := e.jobs.EnsureSortableProperties(ctx); err != nil {
		t.Fatalf("ensure sortable: %v", err)
	}
}

func digitalEntity(licence string) *content_models.DigitalEntity {
	return &content_models.DigitalEntity{ID: primitive.NewObjectID(), Title: "Object", Licence: licence}
}

func entityOf(de *content_models.DigitalEntity, mediaType string, downloadable bool) *content_models.Entity {
	e := &content_models.Entity{
		ID:        primitive.NewObjectID(),
		Name:      "Entity " + mediaType,
		MediaType: mediaType,
		Options:   content_models.EntityOptions{AllowDownload: downloadable},
		Finished:  true,
		Online:    true,
	}
	if de != nil {
		e.RelatedDigitalEntity = content_models.NewReference(de.ID)
	}
	return e
}

func members(entities ...*content_models.Entity) map[string]content_models.Reference {
	out := make(map[string]content_models.Reference, len(entities))
	for _, e := range entities {
		out[e.ID.Hex()] = content_models.NewReference(e.ID)
	}
	return out
}

func compilationOf(name string, entities ...*content_models.Entity) *content_models.Compilation {
	return &content_models.Compilation{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Entities: members(entities...),
	}
}

func strs(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}
