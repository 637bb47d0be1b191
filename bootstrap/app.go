package bootstrap

import (
	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/domain/domain_system"
	"github.com/mediavault/content-repository/mongo"
	"github.com/mediavault/content-repository/repository/repository_content"
	"github.com/mediavault/content-repository/repository/repository_search"
	"github.com/mediavault/content-repository/repository/repository_system"
	"github.com/mediavault/content-repository/usecase"
	"github.com/mediavault/content-repository/usecase/usecase_content"
	"github.com/mediavault/content-repository/usecase/usecase_hook"
	"github.com/mediavault/content-repository/usecase/usecase_propagation"
	"github.com/mediavault/content-repository/util/clock"
	"github.com/mediavault/content-repository/util/logger"
	"github.com/mediavault/content-repository/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

type Application struct {
	Env      *Env
	Log      zerolog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Mongo    mongo.Client

	Store       content_interface.Store
	JobStatuses domain_system.JobStatusRepository
	Hooks       *usecase_hook.Manager
	Queue       *usecase_hook.TaskQueue
	Resolver    *usecase_propagation.Resolver
	Jobs        *usecase_propagation.Jobs
	Content     ContentUsecases
}

type ContentUsecases struct {
	DigitalEntities usecase.ContentUsecase[content_models.DigitalEntity]
	Entities        usecase.ContentUsecase[content_models.Entity]
	Compilations    usecase.ContentUsecase[content_models.Compilation]
	Profiles        usecase.ContentUsecase[content_models.Profile]
}

// App 读取配置、连接 MongoDB、建立索引并装配全部组件
func App(envPath string) (*Application, error) {
	env, err := LoadEnv(envPath)
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: env.LogLevel, Pretty: env.LogPretty})

	client, err := NewMongoDatabase(env)
	if err != nil {
		return nil, err
	}
	db := client.Database(env.DBName)
	mongo.CreateIndexes(db, logger.Component(log, "mongo"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	search := repository_search.NewSearchIndex(env.SearchURL, env.SearchAPIKey, env.Timeout())
	app := Wire(env, MongoStore(db, int32(env.BackfillBatchSize)), repository_system.NewJobStatusRepository(db), search, log, reg)
	app.Mongo = client
	return app, nil
}

func MongoStore(db mongo.Database, batchSize int32) content_interface.Store {
	return content_interface.Store{
		DigitalEntities: repository_content.NewDigitalEntityRepository(db),
		Entities:        repository_content.NewEntityRepository(db, batchSize),
		Compilations:    repository_content.NewCompilationRepository(db, batchSize),
		Profiles:        repository_content.NewProfileRepository(db),
		Derived:         repository_content.NewDerivedPropertyRepository(db, batchSize),
	}
}

// Wire 装配引擎：钩子、任务队列、解析器、对账任务和写路径 Usecase
func Wire(
	env *Env,
	store content_interface.Store,
	statuses domain_system.JobStatusRepository,
	search content_interface.SearchIndex,
	log zerolog.Logger,
	reg *prometheus.Registry,
) *Application {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.New(reg)

	hooks := usecase_hook.NewManager(logger.Component(log, "hooks"), m)
	queue := usecase_hook.NewTaskQueue(logger.Component(log, "queue"), m)
	resolver := usecase_propagation.NewResolver(store, env.ResolveDepth)
	refresher := usecase_propagation.NewRefresher(store, resolver, search, logger.Component(log, "refresher"), m)

	usecase_propagation.NewPropagator(store, refresher, queue, logger.Component(log, "propagation")).Register(hooks)
	jobs := usecase_propagation.NewJobs(store, refresher, statuses, clock.Real(), logger.Component(log, "jobs"), m)

	deps := usecase_content.Dependencies{
		Store:    store,
		Hooks:    hooks,
		Resolver: resolver,
		Timeout:  env.Timeout(),
	}

	return &Application{
		Env:         env,
		Log:         log,
		Registry:    reg,
		Metrics:     m,
		Store:       store,
		JobStatuses: statuses,
		Hooks:       hooks,
		Queue:       queue,
		Resolver:    resolver,
		Jobs:        jobs,
		Content: ContentUsecases{
			DigitalEntities: usecase_content.NewDigitalEntityUsecase(deps),
			Entities:        usecase_content.NewEntityUsecase(deps),
			Compilations:    usecase_content.NewCompilationUsecase(deps),
			Profiles:        usecase_content.NewProfileUsecase(deps),
		},
	}
}

// Close 停止任务队列并断开数据库
func (app *Application) Close() {
	app.Queue.Close()
	if err := CloseMongoDBConnection(app.Mongo); err != nil {
		app.Log.Error().Err(err).Msg("关闭 MongoDB 连接失败")
		return
	}
	if app.Mongo != nil {
		app.Log.Info().Msg("MongoDB 连接已关闭")
	}
}
