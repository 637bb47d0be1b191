package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Env struct {
	AppEnv             string `mapstructure:"APP_ENV"`
	ServerAddress      string `mapstructure:"SERVER_ADDRESS"`
	ContextTimeout     int    `mapstructure:"CONTEXT_TIMEOUT"`
	DBHost             string `mapstructure:"DB_HOST"`
	DBPort             string `mapstructure:"DB_PORT"`
	DBUser             string `mapstructure:"DB_USER"`
	DBPass             string `mapstructure:"DB_PASS"`
	DBName             string `mapstructure:"DB_NAME"`
	AccessTokenSecret  string `mapstructure:"ACCESS_TOKEN_SECRET"`
	SearchURL          string `mapstructure:"SEARCH_URL"`
	SearchAPIKey       string `mapstructure:"SEARCH_API_KEY"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	LogPretty          bool   `mapstructure:"LOG_PRETTY"`
	PropagationWorkers int    `mapstructure:"PROPAGATION_WORKERS"`
	BackfillBatchSize  int    `mapstructure:"BACKFILL_BATCH_SIZE"`
	ResolveDepth       int    `mapstructure:"RESOLVE_DEPTH"`
	RunStartupJobs     bool   `mapstructure:"RUN_STARTUP_JOBS"`
}

// LoadEnv 读取 .env 文件，环境变量优先；文件不存在时只使用环境变量和默认值
func LoadEnv(path string) (*Env, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("CONTEXT_TIMEOUT", 10)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "27017")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASS", "")
	v.SetDefault("DB_NAME", "content_repository")
	v.SetDefault("ACCESS_TOKEN_SECRET", "")
	v.SetDefault("SEARCH_URL", "")
	v.SetDefault("SEARCH_API_KEY", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("PROPAGATION_WORKERS", 2)
	v.SetDefault("BACKFILL_BATCH_SIZE", 500)
	v.SetDefault("RESOLVE_DEPTH", 2)
	v.SetDefault("RUN_STARTUP_JOBS", true)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
		}
	}

	env := Env{}
	if err := v.Unmarshal(&env); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if env.AppEnv == "production" && env.AccessTokenSecret == "" {
		return nil, errors.New("ACCESS_TOKEN_SECRET is required in production")
	}
	return &env, nil
}

func (e *Env) Timeout() time.Duration {
	if e.ContextTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(e.ContextTimeout) * time.Second
}
