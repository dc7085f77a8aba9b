package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"socialbench/pkg/config"
)

const connectTimeout = 10 * time.Second

// NewPostgresPool 创建并验证 PostgreSQL 连接池。
// 基准测试只读，不需要大连接池；上限由配置给出。
func NewPostgresPool(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslmode)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("解析 PostgreSQL 配置失败: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("创建 PostgreSQL 连接池失败: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("PostgreSQL 连接验证失败: %w", err)
	}
	logger.Info("成功验证 PostgreSQL 连接",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
	)
	return pool, nil
}

// NewNeo4jDriver 创建并验证 Neo4j 驱动。
func NewNeo4jDriver(ctx context.Context, cfg *config.Neo4jConfig, logger *zap.Logger) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("创建 Neo4j 驱动失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("Neo4j 连接验证失败: %w", err)
	}
	logger.Info("成功验证 Neo4j 连接", zap.String("uri", cfg.URI))
	return driver, nil
}

// NewRedisClient 创建并验证 Redis 连接。
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis 连接 Ping 失败: %w", err)
	}
	logger.Info("成功连接到 Redis", zap.String("address", cfg.Addr))
	return client, nil
}
