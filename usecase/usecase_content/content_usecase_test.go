package usecase_content

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/repository/repository_memory"
	"github.com/mediavault/content-repository/repository/repository_search"
	"github.com/mediavault/content-repository/usecase/usecase_hook"
	"github.com/mediavault/content-repository/usecase/usecase_propagation"
	"github.com/mediavault/content-repository/util/metrics"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var editor = &domain.Actor{UserID: "u-1", Username: "editor"}

type fixture struct {
	store *repository_memory.Store
	queue *usecase_hook.TaskQueue
	deps  Dependencies
}

func newFixture() *fixture {
	log := zerolog.New(io.Discard)
	m := metrics.New(nil)
	store := repository_memory.NewStore()
	content := store.Content()

	resolver := usecase_propagation.NewResolver(content, 0)
	refresher := usecase_propagation.NewRefresher(content, resolver, repository_search.NewNoopSearchIndex(), log, m)
	queue := usecase_hook.NewTaskQueue(log, m)
	hooks := usecase_hook.NewManager(log, m)
	usecase_propagation.NewPropagator(content, refresher, queue, log).Register(hooks)

	return &fixture{
		store: store,
		queue: queue,
		deps: Dependencies{
			Store:    content,
			Hooks:    hooks,
			Resolver: resolver,
			Timeout:  time.Second,
		},
	}
}

func TestSaveEntityComputesDerivedProperties(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	de, err := NewDigitalEntityUsecase(f.deps).Save(ctx, &content_models.DigitalEntity{Title: "Vase", Licence: "CC0"}, editor)
	require.NoError(t, err)

	forged := int64(1000)
	entity := &content_models.Entity{
		Name:                 "Vase scan",
		Files:                []content_models.EntityFile{{FileName: "vase.jpg"}},
		RelatedDigitalEntity: content_models.NewReference(de.ID),
	}
	entity.Hits = &forged

	saved, err := NewEntityUsecase(f.deps).Save(ctx, entity, editor)
	require.NoError(t, err)
	assert.False(t, saved.ID.IsZero())
	require.NotNil(t, saved.Licenses)
	assert.Equal(t, []string{"CC0"}, *saved.Licenses)
	assert.Equal(t, []string{"image"}, *saved.MediaTypes)
	require.NotNil(t, saved.Hits)
	assert.Equal(t, int64(0), *saved.Hits, "client supplied derived values are discarded")
}

func TestSaveWithoutActorLeavesDerivedMissing(t *testing.T) {
	f := newFixture()
	saved, err := NewEntityUsecase(f.deps).Save(context.Background(), &content_models.Entity{Name: "import"}, nil)
	require.NoError(t, err)
	assert.Nil(t, saved.Licenses)
	assert.Nil(t, saved.CreatedAt)
}

func TestSaveNil(t *testing.T) {
	f := newFixture()
	_, err := NewProfileUsecase(f.deps).Save(context.Background(), nil, editor)
	assert.Error(t, err)
}

func TestGetResolvesReferences(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	entities := NewEntityUsecase(f.deps)
	compilations := NewCompilationUsecase(f.deps)

	e, err := entities.Save(ctx, &content_models.Entity{Name: "Coin", MediaType: "model"}, editor)
	require.NoError(t, err)
	c, err := compilations.Save(ctx, &content_models.Compilation{
		Name:     "Coins",
		Entities: map[string]content_models.Reference{e.ID.Hex(): content_models.NewReference(e.ID)},
	}, editor)
	require.NoError(t, err)
	assert.Equal(t, []string{"model"}, *c.MediaTypes)

	resolved, err := compilations.Get(ctx, c.ID.Hex())
	require.NoError(t, err)
	rc := resolved.(*content_models.ResolvedContainer)
	require.Len(t, rc.Members, 1)
	assert.Equal(t, "Coin", rc.Members[0].Entity.Name)
}

func TestGetErrors(t *testing.T) {
	f := newFixture()
	uc := NewEntityUsecase(f.deps)

	_, err := uc.Get(context.Background(), "xyz")
	assert.ErrorIs(t, err, domain.ErrMalformedReference)

	_, err = uc.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteFiresHooks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	entities := NewEntityUsecase(f.deps)

	a, err := entities.Save(ctx, &content_models.Entity{Name: "a", MediaType: "audio"}, editor)
	require.NoError(t, err)
	b, err := entities.Save(ctx, &content_models.Entity{Name: "b", MediaType: "video"}, editor)
	require.NoError(t, err)
	p, err := NewProfileUsecase(f.deps).Save(ctx, &content_models.Profile{
		Display: "Studio",
		Entities: map[string]content_models.Reference{
			a.ID.Hex(): content_models.NewReference(a.ID),
			b.ID.Hex(): content_models.NewReference(b.ID),
		},
	}, editor)
	require.NoError(t, err)
	require.Equal(t, []string{"audio", "video"}, *p.MediaTypes)

	require.NoError(t, entities.Delete(ctx, b.ID.Hex(), editor))
	f.queue.RunPending(ctx)
	assert.Equal(t, []string{"audio"}, *f.store.Profile(p.ID).MediaTypes)

	assert.ErrorIs(t, entities.Delete(ctx, b.ID.Hex(), editor), domain.ErrNotFound)
	assert.ErrorIs(t, entities.Delete(ctx, "nope", editor), domain.ErrMalformedReference)
}

func TestHit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	entities := NewEntityUsecase(f.deps)

	e, err := entities.Save(ctx, &content_models.Entity{Name: "popular"}, editor)
	require.NoError(t, err)
	require.NoError(t, entities.Hit(ctx, e.ID.Hex()))
	require.NoError(t, entities.Hit(ctx, e.ID.Hex()))
	assert.Equal(t, int64(2), *f.store.Entity(e.ID).Hits)

	err = NewDigitalEntityUsecase(f.deps).Hit(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrNotDerivable)
}

func TestListByDerivedProperties(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	entities := NewEntityUsecase(f.deps)

	open, err := NewDigitalEntityUsecase(f.deps).Save(ctx, &content_models.DigitalEntity{Title: "Jug", Licence: "CC0"}, editor)
	require.NoError(t, err)

	jug, err := entities.Save(ctx, &content_models.Entity{
		Name:                 "Jug",
		MediaType:            "model",
		RelatedDigitalEntity: content_models.NewReference(open.ID),
	}, editor)
	require.NoError(t, err)
	cup, err := entities.Save(ctx, &content_models.Entity{
		Name:                 "Cup",
		MediaType:            "image",
		RelatedDigitalEntity: content_models.NewReference(open.ID),
	}, editor)
	require.NoError(t, err)
	_, err = entities.Save(ctx, &content_models.Entity{Name: "Plate", MediaType: "image"}, editor)
	require.NoError(t, err)
	require.NoError(t, entities.Hit(ctx, jug.ID.Hex()))

	items, err := entities.List(ctx, content_models.PropertyQuery{
		Licenses: []string{"CC0"},
		Sort:     []domain.SortOrder{{Sort: content_models.FieldHits, Order: "desc"}},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, jug.ID, items[0].ID)
	assert.Equal(t, cup.ID, items[1].ID)

	items, err = entities.List(ctx, content_models.PropertyQuery{
		MediaTypes: []string{"image"},
		Sort:       []domain.SortOrder{{Sort: content_models.FieldNormalizedName}},
		Limit:      1,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Cup", items[0].Name)

	_, err = entities.List(ctx, content_models.PropertyQuery{Sort: []domain.SortOrder{{Sort: "name"}}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)

	_, err = NewDigitalEntityUsecase(f.deps).List(ctx, content_models.PropertyQuery{})
	assert.ErrorIs(t, err, domain.ErrNotDerivable)
}
