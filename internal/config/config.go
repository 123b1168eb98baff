package config

import (
	"flag"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"os"
	"time"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Env       string `yaml:"env" env:"ENV" env-default:"local" env-description:"Environment" env-choices:"local,dev,prod"`
	ApiPort   int    `yaml:"api_port" env:"API_PORT" env-default:"8080"`
	ApiHost   string `yaml:"api_host" env:"API_HOST" env-default:"localhost"`
	Storage   string `yaml:"storage" env:"STORAGE" env-default:"postgres" env-description:"Catalog storage backend" env-choices:"memory,postgres"`
	Postgres  `yaml:"postgres"`
	JWT       `yaml:"jwt"`
	Catalog   `yaml:"catalog"`
	Recommend `yaml:"recommend"`
}

type Postgres struct {
	Host string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"POSTGRES_PORT" env-default:"5433"`
	User string `yaml:"user" env:"POSTGRES_USER" env-default:"test"`
	Pass string `yaml:"pass" env:"POSTGRES_PASS" env-default:"12345"`
	Db   string `yaml:"db" env:"POSTGRES_DB" env-default:"test_db"`
}

func (p Postgres) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Pass, p.Host, p.Port, p.Db)
}

type JWT struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	TTL    time.Duration `yaml:"ttl" env:"JWT_TTL" env-default:"24h"`
}

type Catalog struct {
	// Path of the games CSV loaded at startup. Empty skips the load.
	Path string `yaml:"path" env:"CATALOG_PATH"`
}

type Recommend struct {
	Seed        int64 `yaml:"seed" env:"RECOMMEND_SEED" env-default:"0"`
	Limit       int   `yaml:"limit" env:"RECOMMEND_LIMIT" env-default:"5"`
	MaxAttempts int   `yaml:"max_attempts" env:"RECOMMEND_MAX_ATTEMPTS" env-default:"100"`
}

func MustLoad() *Config {
	return MustLoadPath(fetchConfigPath())
}

func MustLoadPath(path string) *Config {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config file does not exist: " + path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic("Failed to read config" + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
