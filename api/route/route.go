package route

import (
	"github.com/gin-gonic/gin"
	"github.com/mediavault/content-repository/api/middleware"
	"github.com/mediavault/content-repository/api/route/route_content"
	"github.com/mediavault/content-repository/api/route/route_system"
	"github.com/mediavault/content-repository/bootstrap"
	"github.com/mediavault/content-repository/util/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(app *bootstrap.Application, engine *gin.Engine) {
	engine.Use(middleware.RequestLogger(logger.Component(app.Log, "http")))

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})))

	publicRouter := engine.Group("/api")
	protectedRouter := engine.Group("/api")
	protectedRouter.Use(middleware.JwtAuthMiddleware(app.Env.AccessTokenSecret))

	route_content.NewContentRouter(app.Content.DigitalEntities, "/digitalentities", "digitalEntity", "digitalEntities", publicRouter, protectedRouter)
	route_content.NewContentRouter(app.Content.Entities, "/entities", "entity", "entities", publicRouter, protectedRouter)
	route_content.NewContentRouter(app.Content.Compilations, "/compilations", "compilation", "compilations", publicRouter, protectedRouter)
	route_content.NewContentRouter(app.Content.Profiles, "/profiles", "profile", "profiles", publicRouter, protectedRouter)

	route_content.NewSearchRouter(app.Jobs, logger.Component(app.Log, "search"), protectedRouter)
	route_system.NewJobStatusRouter(app.Env.Timeout(), app.JobStatuses, protectedRouter)
}
