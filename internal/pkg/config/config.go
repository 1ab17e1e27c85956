// internal/pkg/config/config.go
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 聚合了所有服务共享的配置。
// 各服务只读取自己关心的部分，端口等服务私有配置由各自的 main 决定。
type Config struct {
	App struct {
		Env string `yaml:"env"`
	} `yaml:"app"`
	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
			// 价格缓存的有效期，0 表示禁用缓存
			PriceCacheTTLSeconds int `yaml:"priceCacheTtlSeconds"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers        []string `yaml:"brokers"`
			LifecycleTopic string   `yaml:"lifecycleTopic"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
	} `yaml:"infra"`
	Services struct {
		Confirmation struct {
			URL string `yaml:"url"`
			// 单次确认调用的超时（秒），0 表示不限制
			TimeoutSeconds int `yaml:"timeoutSeconds"`
		} `yaml:"confirmation"`
		Oracle struct {
			URL            string `yaml:"url"`
			TimeoutSeconds int    `yaml:"timeoutSeconds"`
		} `yaml:"oracle"`
	} `yaml:"services"`
}

// Load 读取 yaml 配置文件并应用环境变量覆盖。
// 配置文件不存在时退回默认值 + 环境变量，方便本地直接启动。
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Env = "dev"
	cfg.Infra.Mysql.DSN = "mysql:admin@tcp(localhost:3306)/orderService?charset=utf8mb4&parseTime=True&loc=Local"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Redis.PriceCacheTTLSeconds = 30
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Kafka.LifecycleTopic = "order-lifecycle-events"
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Services.Confirmation.URL = "http://localhost:8082"
	cfg.Services.Confirmation.TimeoutSeconds = 10
	cfg.Services.Oracle.URL = "http://localhost:8084/index.php"
	cfg.Services.Oracle.TimeoutSeconds = 10
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("MYSQL_DSN"); ok {
		cfg.Infra.Mysql.DSN = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Infra.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("JAEGER_ENDPOINT"); ok {
		cfg.Infra.Jaeger.Endpoint = v
	}
	if v, ok := os.LookupEnv("CONFIRMATION_SERVICE_URL"); ok {
		cfg.Services.Confirmation.URL = v
	}
	if v, ok := os.LookupEnv("PRICE_ORACLE_URL"); ok {
		cfg.Services.Oracle.URL = v
	}
}
