package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR,default=:8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS,default=*"`

	// StoreDriver selects the persistence backend: "postgres" or "memory".
	StoreDriver       string        `env:"STORE_DRIVER,default=postgres"`
	DBHost            string        `env:"DB_HOST,default=localhost"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,default=scholarwatch"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBName            string        `env:"DB_NAME,default=scholarwatch"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	LogicMillBaseURL string        `env:"LOGIC_MILL_BASE_URL,default=https://api.logicmill.com"`
	LogicMillToken   string        `env:"LOGIC_MILL_API_TOKEN"`
	LogicMillTimeout time.Duration `env:"LOGIC_MILL_TIMEOUT,default=30s"`

	SchedulerCheckInterval time.Duration `env:"SCHEDULER_CHECK_INTERVAL,default=300s"`
	SchedulerBatchSize     int           `env:"SCHEDULER_BATCH_SIZE,default=5"`
	SchedulerBatchPause    time.Duration `env:"SCHEDULER_BATCH_PAUSE,default=1s"`
	SchedulerStopTimeout   time.Duration `env:"SCHEDULER_STOP_TIMEOUT,default=10s"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
