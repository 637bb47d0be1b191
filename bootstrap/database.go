package bootstrap

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mediavault/content-repository/mongo"
)

func mongoURI(env *Env) string {
	if env.DBUser == "" {
		return fmt.Sprintf("mongodb://%s:%s", env.DBHost, env.DBPort)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s",
		url.QueryEscape(env.DBUser), url.QueryEscape(env.DBPass), env.DBHost, env.DBPort)
}

func NewMongoDatabase(env *Env) (mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.NewClient(ctx, mongoURI(env))
	if err != nil {
		return nil, fmt.Errorf("连接 MongoDB 失败: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("MongoDB 无响应: %w", err)
	}
	return client, nil
}

func CloseMongoDBConnection(client mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
