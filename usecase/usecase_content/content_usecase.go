package usecase_content

import (
	"time"

	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/usecase"
	"github.com/mediavault/content-repository/usecase/usecase_hook"
	"github.com/mediavault/content-repository/usecase/usecase_propagation"
)

// Dependencies 四种内容Usecase共享的依赖
type Dependencies struct {
	Store    content_interface.Store
	Hooks    *usecase_hook.Manager
	Resolver *usecase_propagation.Resolver
	Timeout  time.Duration
}

func NewDigitalEntityUsecase(deps Dependencies) usecase.ContentUsecase[content_models.DigitalEntity] {
	return usecase.NewBaseContentUsecase[content_models.DigitalEntity, *content_models.DigitalEntity](
		content_models.KindDigitalEntity, deps.Store.DigitalEntities,
		deps.Hooks, deps.Resolver, deps.Store.Derived, deps.Timeout)
}

func NewEntityUsecase(deps Dependencies) usecase.ContentUsecase[content_models.Entity] {
	return usecase.NewBaseContentUsecase[content_models.Entity, *content_models.Entity](
		content_models.KindEntity, deps.Store.Entities,
		deps.Hooks, deps.Resolver, deps.Store.Derived, deps.Timeout)
}

func NewCompilationUsecase(deps Dependencies) usecase.ContentUsecase[content_models.Compilation] {
	return usecase.NewBaseContentUsecase[content_models.Compilation, *content_models.Compilation](
		content_models.KindCompilation, deps.Store.Compilations,
		deps.Hooks, deps.Resolver, deps.Store.Derived, deps.Timeout)
}

func NewProfileUsecase(deps Dependencies) usecase.ContentUsecase[content_models.Profile] {
	return usecase.NewBaseContentUsecase[content_models.Profile, *content_models.Profile](
		content_models.KindProfile, deps.Store.Profiles,
		deps.Hooks, deps.Resolver, deps.Store.Derived, deps.Timeout)
}
