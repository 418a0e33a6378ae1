package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	StorageDSN string `yaml:"storage_dsn" env:"STORAGE_DSN" env-required:"true"`
	HTTPServer `yaml:"http_server"`
	WSServer   `yaml:"ws_server"`
	Pusher     `yaml:"pusher"`
	Blockchain `yaml:"blockchain"`
	Fairness   `yaml:"fairness"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type WSServer struct {
	Address     string        `yaml:"address" env:"WS_ADDRESS" env-default:"localhost:8081"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Pusher struct {
	AppID   string `yaml:"app_id" env:"PUSHER_APP_ID"`
	Key     string `yaml:"key" env:"PUSHER_KEY"`
	Secret  string `yaml:"secret" env:"PUSHER_SECRET"`
	Cluster string `yaml:"cluster" env:"PUSHER_CLUSTER" env-default:"eu"`
}

type Blockchain struct {
	RPCURL     string        `yaml:"rpc_url" env:"BLOCKCHAIN_RPC_URL" env-default:"http://localhost:8232"`
	RPCUser    string        `yaml:"rpc_user" env:"BLOCKCHAIN_RPC_USER"`
	RPCPass    string        `yaml:"rpc_pass" env:"BLOCKCHAIN_RPC_PASS"`
	RPCTimeout time.Duration `yaml:"rpc_timeout" env-default:"15s"`
}

type Fairness struct {
	Mode              FairnessMode  `yaml:"mode" env:"FAIRNESS_MODE" env-default:"session"`
	PoolTargetSize    int           `yaml:"pool_target_size" env:"POOL_TARGET_SIZE" env-default:"10"`
	PoolMinHealthy    int           `yaml:"pool_min_healthy" env:"POOL_MIN_HEALTHY" env-default:"3"`
	RefillInterval    time.Duration `yaml:"refill_interval" env:"POOL_REFILL_INTERVAL" env-default:"30s"`
	WitnessMaturation time.Duration `yaml:"witness_maturation" env:"WITNESS_MATURATION" env-default:"75s"`
	CommitmentTTL     time.Duration `yaml:"commitment_ttl" env:"COMMITMENT_TTL" env-default:"24h"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}
