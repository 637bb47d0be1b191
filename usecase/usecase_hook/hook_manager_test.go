package usecase_hook

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/util/metrics"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(zerolog.New(io.Discard), metrics.New(nil))
}

func TestFireRunsCallbacksInRegistrationOrder(t *testing.T) {
	m := newTestManager()
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		m.AddHook(content_models.KindEntity, EventAfterSave,
			func(_ context.Context, doc content_models.Document, _ *domain.Actor) (content_models.Document, error) {
				order = append(order, name)
				return doc, nil
			})
	}

	m.Fire(context.Background(), content_models.KindEntity, EventAfterSave, &content_models.Entity{}, nil)
	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Equal(t, 3, m.Len(content_models.KindEntity, EventAfterSave))
	assert.Equal(t, 0, m.Len(content_models.KindEntity, EventAfterDelete))
}

func TestFireSwallowsErrorsAndPanics(t *testing.T) {
	m := newTestManager()
	reached := false
	m.AddHook(content_models.KindProfile, EventAfterDelete,
		func(context.Context, content_models.Document, *domain.Actor) (content_models.Document, error) {
			return nil, errors.New("boom")
		})
	m.AddHook(content_models.KindProfile, EventAfterDelete,
		func(context.Context, content_models.Document, *domain.Actor) (content_models.Document, error) {
			panic("worse")
		})
	m.AddHook(content_models.KindProfile, EventAfterDelete,
		func(_ context.Context, doc content_models.Document, _ *domain.Actor) (content_models.Document, error) {
			reached = true
			return doc, nil
		})

	doc := &content_models.Profile{Display: "Museum"}
	var out content_models.Document
	require.NotPanics(t, func() {
		out = m.Fire(context.Background(), content_models.KindProfile, EventAfterDelete, doc, nil)
	})
	assert.True(t, reached)
	assert.Same(t, doc, out)
}

func TestFireThreadsReturnedDocument(t *testing.T) {
	m := newTestManager()
	replacement := &content_models.Entity{Name: "replaced"}
	m.AddHook(content_models.KindEntity, EventAfterSave,
		func(context.Context, content_models.Document, *domain.Actor) (content_models.Document, error) {
			return replacement, nil
		})

	var seen content_models.Document
	m.AddHook(content_models.KindEntity, EventAfterSave,
		func(_ context.Context, doc content_models.Document, actor *domain.Actor) (content_models.Document, error) {
			seen = doc
			assert.Equal(t, "u1", actor.UserID)
			return nil, nil
		})

	out := m.Fire(context.Background(), content_models.KindEntity, EventAfterSave,
		&content_models.Entity{Name: "original"}, &domain.Actor{UserID: "u1"})
	assert.Same(t, replacement, seen)
	assert.Same(t, replacement, out)
}

func TestFireWithoutHooksReturnsInput(t *testing.T) {
	m := newTestManager()
	doc := &content_models.Compilation{}
	assert.Same(t, doc, m.Fire(context.Background(), content_models.KindCompilation, EventAfterSave, doc, nil))
}
