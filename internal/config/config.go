package config // package config loads application configuration from flags, environment variables and .env files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// ErrMissingVersion is returned by Load when api.version is not supplied by
// any configuration source.
var ErrMissingVersion = errors.New("missing required setting: api.version (flag --api.version or env API_VERSION)")

// Config holds all runtime configuration values. It is built once at startup
// and never modified afterwards.
type Config struct {
	Version         string        // api.version reported by /api/version and /api/info
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	ShutdownTimeout time.Duration // grace period for in-flight requests on shutdown
}

// Load resolves the configuration. Flags win over the process environment,
// and the environment wins over the .env file (godotenv never overrides a
// variable that is already set). A present but empty version is accepted;
// an absent one yields ErrMissingVersion.
func Load(args []string) (Config, error) {
	if err := loadDotenv(envStr("DOTENV_PATH", ".env")); err != nil {
		return Config{}, err
	}

	flags := pflag.NewFlagSet("service-b", pflag.ContinueOnError)
	version := flags.String("api.version", "", "version string served by /api/version")
	port := flags.String("port", "", "HTTP port to listen on")
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	cfg := Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            envStr("APP_PORT", "8080"),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if flags.Changed("port") {
		cfg.Port = *port
	}

	switch {
	case flags.Changed("api.version"):
		cfg.Version = *version
	default:
		v, ok := os.LookupEnv("API_VERSION")
		if !ok {
			return Config{}, ErrMissingVersion
		}
		cfg.Version = v
	}
	return cfg, nil
}

// loadDotenv populates the environment from path. A missing file is not an error.
func loadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
