package usecase_propagation

import (
	"context"
	"errors"
	"testing"

	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/usecase/usecase_hook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropagatorRegistersHooks(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, 1, env.hooks.Len(content_models.KindEntity, usecase_hook.EventAfterSave))
	assert.Equal(t, 1, env.hooks.Len(content_models.KindEntity, usecase_hook.EventAfterDelete))
	assert.Equal(t, 1, env.hooks.Len(content_models.KindCompilation, usecase_hook.EventAfterSave))
	assert.Equal(t, 1, env.hooks.Len(content_models.KindProfile, usecase_hook.EventAfterSave))
	assert.Equal(t, 1, env.hooks.Len(content_models.KindDigitalEntity, usecase_hook.EventAfterSave))
	assert.Equal(t, 1, env.hooks.Len(content_models.KindDigitalEntity, usecase_hook.EventAfterDelete))
}

func TestEntitySaveRecomputesSelfAndDefersContainers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	de := digitalEntity("CC-BY")
	e := entityOf(de, "model", false)
	c := compilationOf("c", e)
	env.store.Seed(de, e, c)
	env.backfill(t)
	require.Equal(t, []string{"model"}, strs(env.store.Compilation(c.ID).MediaTypes))

	e.MediaType = "audio"
	e.Options.AllowDownload = true
	require.NoError(t, env.store.Content().Entities.Upsert(ctx, e))
	env.hooks.Fire(ctx, content_models.KindEntity, usecase_hook.EventAfterSave, e, editor)

	stored := env.store.Entity(e.ID)
	assert.Equal(t, []string{"audio"}, strs(stored.MediaTypes))
	assert.True(t, *stored.Downloadable)
	// 容器在任务执行前保持旧值
	assert.Equal(t, []string{"model"}, strs(env.store.Compilation(c.ID).MediaTypes))
	assert.Equal(t, 0, env.store.UnsetDerivedCalls())
	assert.Equal(t, 1, env.queue.Len())

	assert.Equal(t, 1, env.queue.RunPending(ctx))
	storedC := env.store.Compilation(c.ID)
	assert.Equal(t, []string{"audio"}, strs(storedC.MediaTypes))
	assert.True(t, *storedC.Downloadable)
	assert.NotNil(t, env.search.get(e.ID))
	assert.NotNil(t, env.search.get(c.ID))
}

func TestSaveWithoutActorSkipsDerivedWork(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	e := entityOf(nil, "model", false)
	c := compilationOf("c", e)
	env.store.Seed(e, c)

	env.hooks.Fire(ctx, content_models.KindEntity, usecase_hook.EventAfterSave, e, nil)
	env.hooks.Fire(ctx, content_models.KindCompilation, usecase_hook.EventAfterSave, c, nil)

	assert.Equal(t, 0, env.store.SetDerivedCalls())
	assert.Equal(t, 0, env.store.UnsetDerivedCalls())
	assert.Equal(t, 0, env.queue.Len())
}

func TestEntityDeleteShrinksContainers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	keep := entityOf(digitalEntity("CC0"), "image", false)
	drop := entityOf(nil, "video", true)
	c := compilationOf("c", keep, drop)
	env.store.Seed(keep, drop, c)
	env.backfill(t)
	require.True(t, *env.store.Compilation(c.ID).Downloadable)

	require.NoError(t, env.store.Content().Entities.Delete(ctx, drop.ID))
	env.hooks.Fire(ctx, content_models.KindEntity, usecase_hook.EventAfterDelete, drop, editor)
	env.queue.RunPending(ctx)

	storedC := env.store.Compilation(c.ID)
	assert.Equal(t, []string{"image"}, strs(storedC.MediaTypes))
	assert.False(t, *storedC.Downloadable)
}

func TestContainerSaveRecomputesMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	de := digitalEntity("CC0")
	a := entityOf(de, "model", false)
	b := entityOf(nil, "audio", false)
	p := &content_models.Profile{Display: "Lab", Entities: members(a)}
	env.store.Seed(de, a, b)
	require.NoError(t, env.store.Content().Profiles.Upsert(ctx, p))

	env.hooks.Fire(ctx, content_models.KindProfile, usecase_hook.EventAfterSave, p, editor)
	stored := env.store.Profile(p.ID)
	assert.Equal(t, []string{"CC0"}, strs(stored.Licenses))
	assert.Equal(t, "lab", *stored.NormalizedName)

	p.Entities = members(a, b)
	require.NoError(t, env.store.Content().Profiles.Upsert(ctx, p))
	env.hooks.Fire(ctx, content_models.KindProfile, usecase_hook.EventAfterSave, p, editor)
	assert.Equal(t, []string{"audio", "model"}, strs(env.store.Profile(p.ID).MediaTypes))
	// Profile 不进入搜索索引
	assert.Equal(t, 0, env.queue.Len())
}

func TestDigitalEntityDeleteClearsLicences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	de := digitalEntity("CC-BY-NC")
	e := entityOf(de, "model", false)
	c := compilationOf("c", e)
	env.store.Seed(de, e, c)
	env.backfill(t)

	require.NoError(t, env.store.Content().DigitalEntities.Delete(ctx, de.ID))
	env.hooks.Fire(ctx, content_models.KindDigitalEntity, usecase_hook.EventAfterDelete, de, editor)
	require.Equal(t, 1, env.queue.RunPending(ctx))

	assert.Equal(t, []string{}, strs(env.store.Entity(e.ID).Licenses))
	assert.Equal(t, []string{}, strs(env.store.Compilation(c.ID).Licenses))
	// 其他字段不受影响
	assert.Equal(t, []string{"model"}, strs(env.store.Compilation(c.ID).MediaTypes))
}

func TestIrrelevantEditsKeepContainerFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	de := digitalEntity("CC0")
	e := entityOf(de, "model", true)
	c := compilationOf("c", e)
	env.store.Seed(de, e, c)
	env.backfill(t)

	de.Description = "typo fix"
	require.NoError(t, env.store.Content().DigitalEntities.Upsert(ctx, de))
	env.hooks.Fire(ctx, content_models.KindDigitalEntity, usecase_hook.EventAfterSave, de, editor)

	assert.Equal(t, []string{"CC0"}, strs(env.store.Entity(e.ID).Licenses))
	assert.Equal(t, []string{"CC0"}, strs(env.store.Compilation(c.ID).Licenses))
	require.Equal(t, 1, env.queue.RunPending(ctx))

	e.Name = "Renamed scan"
	require.NoError(t, env.store.Content().Entities.Upsert(ctx, e))
	env.hooks.Fire(ctx, content_models.KindEntity, usecase_hook.EventAfterSave, e, editor)
	assert.Equal(t, "renamed scan", *env.store.Entity(e.ID).NormalizedName)

	storedC := env.store.Compilation(c.ID)
	assert.Equal(t, []string{"CC0"}, strs(storedC.Licenses))
	assert.Equal(t, []string{"model"}, strs(storedC.MediaTypes))
	require.NotNil(t, storedC.Downloadable)
	assert.True(t, *storedC.Downloadable)

	require.Equal(t, 1, env.queue.RunPending(ctx))
	assert.Equal(t, 0, env.store.UnsetDerivedCalls())

	license := content_models.PropertyQuery{Licenses: []string{"CC0"}}
	assert.True(t, license.Matches(env.store.Compilation(c.ID).DerivedFields))
}

func TestLicenceChangeReachesContainers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	de := digitalEntity("CC0")
	e := entityOf(de, "model", false)
	c := compilationOf("c", e)
	env.store.Seed(de, e, c)
	env.backfill(t)

	de.Licence = "CC-BY"
	require.NoError(t, env.store.Content().DigitalEntities.Upsert(ctx, de))
	env.hooks.Fire(ctx, content_models.KindDigitalEntity, usecase_hook.EventAfterSave, de, editor)
	assert.Equal(t, 0, env.store.UnsetDerivedCalls())

	require.Equal(t, 1, env.queue.RunPending(ctx))
	assert.Equal(t, []string{"CC-BY"}, strs(env.store.Entity(e.ID).Licenses))
	assert.Equal(t, []string{"CC-BY"}, strs(env.store.Compilation(c.ID).Licenses))
	assert.Equal(t, []string{"model"}, strs(env.store.Compilation(c.ID).MediaTypes))
	assert.Equal(t, 1, env.store.UnsetDerivedCalls())
}

func TestEntityRefreshFailureRetriedByTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	e := entityOf(nil, "model", false)
	c := compilationOf("c", e)
	env.store.Seed(e, c)
	env.backfill(t)

	env.store.FailSetDerived(e.ID, errors.New("write conflict"))
	e.MediaType = "audio"
	require.NoError(t, env.store.Content().Entities.Upsert(ctx, e))
	env.hooks.Fire(ctx, content_models.KindEntity, usecase_hook.EventAfterSave, e, editor)

	assert.Equal(t, []string{"model"}, strs(env.store.Entity(e.ID).MediaTypes))
	assert.Equal(t, []string{"model"}, strs(env.store.Compilation(c.ID).MediaTypes))
	require.Equal(t, 1, env.queue.Len())

	env.store.FailSetDerived(e.ID, nil)
	require.Equal(t, 1, env.queue.RunPending(ctx))
	assert.Equal(t, []string{"audio"}, strs(env.store.Entity(e.ID).MediaTypes))
	assert.Equal(t, []string{"audio"}, strs(env.store.Compilation(c.ID).MediaTypes))
}
