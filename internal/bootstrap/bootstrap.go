package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"socialbench/biz/bench"
	"socialbench/biz/dal/neo4jdal"
	"socialbench/biz/dal/pgdal"
	dbInfra "socialbench/infrastructure/database"
	"socialbench/infrastructure/rabbitmq"
	"socialbench/pkg/config"
	"socialbench/pkg/reportstore"
)

// App 汇集一次基准测试运行所需的全部依赖。
type App struct {
	Config       *config.AppConfig
	Logger       *zap.Logger
	Pool         *pgxpool.Pool
	Driver       neo4j.DriverWithContext
	Redis        *redis.Client
	Store        reportstore.Store
	Orchestrator *bench.Orchestrator

	publisher *rabbitmq.Publisher
}

// Init 函数执行所有应用程序的初始化步骤
func Init(ctx context.Context, configPath string) (*App, error) {
	// 1. 加载配置 (移到最前)
	cfg, err := config.InitConfig(configPath)
	if err != nil {
		// 在 logger 初始化前，只能用标准 log
		log.Printf("Error: 加载配置失败: %v", err)
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	log.Println("Info: 配置加载完成.")

	// 2. 初始化 Zap Logger (使用配置中的级别)
	logger := newLogger(cfg.Logging.Level)
	logger.Info("Zap Logger 初始化完成", zap.String("level", cfg.Logging.Level))

	// 3. 初始化数据库连接 (传入配置好的 logger)
	pool, err := dbInfra.NewPostgresPool(ctx, &cfg.Database.Postgres, logger)
	if err != nil {
		logger.Error("初始化 PostgreSQL 失败", zap.Error(err))
		return nil, fmt.Errorf("初始化 PostgreSQL 失败: %w", err)
	}
	driver, err := dbInfra.NewNeo4jDriver(ctx, &cfg.Database.Neo4j, logger)
	if err != nil {
		pool.Close()
		logger.Error("初始化 Neo4j 失败", zap.Error(err))
		return nil, fmt.Errorf("初始化 Neo4j 失败: %w", err)
	}
	redisClient, err := dbInfra.NewRedisClient(ctx, &cfg.Database.Redis, logger)
	if err != nil {
		pool.Close()
		driver.Close(ctx)
		logger.Error("初始化 Redis 失败", zap.Error(err))
		return nil, fmt.Errorf("初始化 Redis 失败: %w", err)
	}
	logger.Info("数据库连接初始化完成.")

	// 4. 初始化报告存储
	store, err := reportstore.NewRedisStore(redisClient, cfg.Benchmark.StorePrefix)
	if err != nil {
		logger.Error("初始化报告存储失败", zap.Error(err))
		return nil, fmt.Errorf("初始化报告存储失败: %w", err)
	}
	logger.Info("报告存储初始化完成.")

	// 5. 初始化查询执行器与样本加载器
	pgExec := pgdal.NewExecutor(pool, logger)
	graphExec := neo4jdal.NewExecutor(driver, logger)
	sampler := pgdal.NewSampleLoader(pool, logger)
	logger.Info("查询执行器初始化完成.")

	// 6. 初始化编排器
	orchestrator := bench.NewOrchestrator(sampler, logger, pgExec, graphExec)
	logger.Info("编排器初始化完成.")

	app := &App{
		Config:       cfg,
		Logger:       logger,
		Pool:         pool,
		Driver:       driver,
		Redis:        redisClient,
		Store:        store,
		Orchestrator: orchestrator,
	}

	// 7. 可选：进度事件发布器
	if cfg.RabbitMQ.Enabled {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			// 进度发布属于旁路功能，失败不阻塞基准测试
			logger.Warn("初始化 RabbitMQ 发布器失败，进度事件将不可用", zap.Error(err))
		} else {
			routingKey := cfg.RabbitMQ.RoutingKey
			if routingKey == "" {
				routingKey = "benchmark.progress"
			}
			orchestrator.OnProgress(func(step, total int, message string) {
				publisher.PublishProgress(routingKey, step, total, message)
			})
			app.publisher = publisher
			logger.Info("进度事件发布器初始化完成.", zap.String("exchange", cfg.RabbitMQ.Exchange))
		}
	}

	return app, nil
}

// Close 依次释放所有连接资源。
func (a *App) Close(ctx context.Context) {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("关闭 Redis 连接失败", zap.Error(err))
		}
	}
	if a.Driver != nil {
		if err := a.Driver.Close(ctx); err != nil {
			a.Logger.Error("关闭 Neo4j 驱动失败", zap.Error(err))
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	a.Logger.Sync()
}

// newLogger 按配置级别构建 zap logger。
func newLogger(level string) *zap.Logger {
	logLevel := zapcore.InfoLevel // 默认为 Info
	switch level {
	case "debug":
		logLevel = zapcore.DebugLevel
	case "info":
		logLevel = zapcore.InfoLevel
	case "warn":
		logLevel = zapcore.WarnLevel
	case "error":
		logLevel = zapcore.ErrorLevel
	default:
		log.Printf("Warning: 无效的日志级别 '%s' 在配置中，将使用 'info'", level)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(log.Default().Writer()),
		logLevel,
	)
	return zap.New(core, zap.AddCaller()) // AddCaller 显示文件名和行号
}
