package config

import (
	"fmt"
	"log"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppConfig 包含所有应用程序的配置
type AppConfig struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Benchmark BenchmarkConfig `mapstructure:"benchmark"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
}

// DatabaseConfig 包含所有数据库的配置
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Neo4j    Neo4jConfig    `mapstructure:"neo4j"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig PostgreSQL 连接配置
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"` // 连接池上限
}

// Neo4jConfig Neo4j 连接配置
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BenchmarkConfig 基准测试相关配置
type BenchmarkConfig struct {
	SampleSize        int    `mapstructure:"sample_size"`        // 每种实体的样本抓取上限
	DefaultIterations int    `mapstructure:"default_iterations"` // CLI 未指定时的迭代次数
	DefaultMaxLevel   int    `mapstructure:"default_max_level"`  // CLI 未指定时的遍历深度
	ReportTTLSeconds  int    `mapstructure:"report_ttl_seconds"` // 报告在 Redis 中的保留时间（秒）
	StorePrefix       string `mapstructure:"store_prefix"`       // 报告存储的 key 前缀
}

// LoggingConfig 日志相关配置
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// RabbitMQConfig RabbitMQ 连接配置，用于进度事件发布
type RabbitMQConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

// GlobalConfig 是全局配置实例
var GlobalConfig = new(AppConfig)

func InitConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)   // 设置配置文件路径
	v.SetConfigType("yaml") // 设置配置文件类型

	// 尝试读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 将配置解析到 GlobalConfig 结构体中
	if err := v.Unmarshal(GlobalConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 监听配置文件变化 (可选)
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("配置文件已更改: %s", e.Name)
		// 重新解析配置到 GlobalConfig
		if err := v.Unmarshal(GlobalConfig); err != nil {
			log.Printf("警告: 重新解析配置文件失败: %v", err)
		} else {
			log.Println("Info: 配置已重新加载.")
		}
	})

	log.Printf("Info: 成功加载并解析配置文件: %s", path)
	return GlobalConfig, nil
}
