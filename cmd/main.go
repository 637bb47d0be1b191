package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mediavault/content-repository/api/route"
	"github.com/mediavault/content-repository/bootstrap"
	"github.com/rs/zerolog/log"
)

func main() {
	app, err := bootstrap.App(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("启动失败")
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 派生属性的异步传播
	go app.Queue.Run(ctx, app.Env.PropagationWorkers)

	if app.Env.RunStartupJobs {
		go func() {
			if err := app.Jobs.RunStartup(ctx); err != nil {
				app.Log.Error().Err(err).Msg("启动任务执行失败")
			}
		}()
	} else {
		app.Jobs.DecreasePopularityTimer(ctx)
	}

	if app.Env.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	route.Setup(app, engine)

	srv := &http.Server{
		Addr:    app.Env.ServerAddress,
		Handler: engine,
	}
	go func() {
		app.Log.Info().Str("addr", srv.Addr).Msg("HTTP 服务已启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.Error().Err(err).Msg("HTTP 服务异常退出")
			stop()
		}
	}()

	<-ctx.Done()
	app.Log.Info().Msg("正在关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Log.Error().Err(err).Msg("HTTP 服务关闭失败")
	}
}
