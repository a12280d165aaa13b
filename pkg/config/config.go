package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ==================== 配置 ====================

// Config 全量配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Source   SourceConfig   `mapstructure:"source"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// SourceConfig 来源平台接入配置
type SourceConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	ConsumerKey    string        `mapstructure:"consumer_key"`
	ConsumerSecret string        `mapstructure:"consumer_secret"`
	PageSize       int           `mapstructure:"page_size"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RetryCount     int           `mapstructure:"retry_count"`
	Provider       string        `mapstructure:"provider"` // 身份映射里的 provider 判别串
	ScrapeSeo      bool          `mapstructure:"scrape_seo"`
}

// SyncConfig 同步参数
type SyncConfig struct {
	BatchSize    int    `mapstructure:"batch_size"`
	CronSpec     string `mapstructure:"cron_spec"`
	RunOnStartup bool   `mapstructure:"run_on_startup"`
}

// StorageConfig 媒体镜像存储
type StorageConfig struct {
	Provider  string `mapstructure:"provider"` // s3 | none
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"`
	CDNDomain string `mapstructure:"cdn_domain"`
	BasePath  string `mapstructure:"base_path"`
}

// Load 读配置：./config.yaml 可选，环境变量 (IMPORT_ 前缀) 覆盖
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("IMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 默认值
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("source.page_size", 100)
	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("source.retry_count", 3)
	v.SetDefault("source.provider", "dokan")
	v.SetDefault("source.scrape_seo", false)
	v.SetDefault("sync.batch_size", 200)
	v.SetDefault("sync.cron_spec", "0 0 2 * * *") // 每日凌晨 2 点
	v.SetDefault("sync.run_on_startup", false)
	v.SetDefault("storage.provider", "none")

	if err := v.ReadInConfig(); err != nil {
		// 配置文件可选，纯环境变量运行也合法
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("缺少数据库 DSN (IMPORT_DATABASE_DSN)")
	}
	if cfg.Source.BaseURL == "" {
		return nil, fmt.Errorf("缺少来源平台地址 (IMPORT_SOURCE_BASE_URL)")
	}
	return &cfg, nil
}
