package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string
		WorkDir      string

		Server    ServerConfig
		Storage   StorageConfig
		Seed      SeedConfig
		Canvas    CanvasConfig
		Hierarchy HierarchyConfig
	}

	ServerConfig struct {
		Address            string
		Host               string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	StorageConfig struct {
		Engine string // bolt (default), sqlite, postgres, memory
		Path   string // bolt file
		DSN    string // sqlite / postgres data source
		Key    string // key the document is stored under
		Bucket string // bolt bucket
	}

	// SeedConfig is the user written to a brand new document.
	SeedConfig struct {
		Username string
		Password string
	}

	CanvasConfig struct {
		Width  int
		Height int
	}

	HierarchyConfig struct {
		// StrictReferences rejects records created under a parent that does not exist.
		StrictReferences bool
	}
)

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the uppercased env name, eg. DEV_STORAGE_ENGINE.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "MarkMyWords")
	v.SetDefault("secretKey", "n2w+8k)q1#r!pz@v0e7m=c9&dh5(xu$4tj^6bya*lo3sfg_i")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 12*time.Hour)
	v.SetDefault("storage.engine", "bolt")
	v.SetDefault("storage.path", filepath.Join("data", "markmywords.db"))
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.key", "MarkMyWords_DB")
	v.SetDefault("storage.bucket", "markmywords_store")
	v.SetDefault("seed.username", "Dylan")
	v.SetDefault("seed.password", "54852")
	v.SetDefault("canvas.width", 800)
	v.SetDefault("canvas.height", 600)
	v.SetDefault("hierarchy.strictReferences", false)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Address:            v.GetString("server.address"),
			Host:               v.GetString("server.host"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Storage: StorageConfig{
			Engine: strings.ToLower(v.GetString("storage.engine")),
			Path:   v.GetString("storage.path"),
			DSN:    v.GetString("storage.dsn"),
			Key:    v.GetString("storage.key"),
			Bucket: v.GetString("storage.bucket"),
		},
		Seed: SeedConfig{
			Username: v.GetString("seed.username"),
			Password: v.GetString("seed.password"),
		},
		Canvas: CanvasConfig{
			Width:  v.GetInt("canvas.width"),
			Height: v.GetInt("canvas.height"),
		},
		Hierarchy: HierarchyConfig{
			StrictReferences: v.GetBool("hierarchy.strictReferences"),
		},
	}
}
