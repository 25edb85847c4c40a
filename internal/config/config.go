package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the server and tool configuration. Values come from defaults,
// then the optional YAML file, then environment variables.
type Config struct {
	Port              string   `yaml:"port" env:"PORT"`
	OpportunitiesPath string   `yaml:"opportunities_path" env:"OPPORTUNITIES_PATH"`
	BlogDir           string   `yaml:"blog_dir" env:"BLOG_DIR"`
	CORSOrigins       []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	AdminPasscodeHash string   `yaml:"admin_passcode_hash" env:"ADMIN_PASSCODE_HASH"`
	JWTSecret         string   `yaml:"jwt_secret" env:"JWT_SECRET"`
	WatchData         bool     `yaml:"watch_data" env:"WATCH_DATA"`
	LogLevel          string   `yaml:"log_level" env:"LOG_LEVEL"`
	UrgentWindowDays  int      `yaml:"urgent_window_days" env:"URGENT_WINDOW_DAYS"`
}

func Defaults() Config {
	return Config{
		Port:              "8081",
		OpportunitiesPath: "data/opportunities.json",
		BlogDir:           "public/blog/posts",
		CORSOrigins:       []string{"http://localhost:5173"},
		LogLevel:          "info",
		UrgentWindowDays:  15,
	}
}

// Load builds the configuration. A missing file at path is not an error;
// an empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			// Expand environment variables within the YAML content (e.g. ${JWT_SECRET})
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("config: port is required")
	}
	if strings.TrimSpace(c.OpportunitiesPath) == "" {
		return errors.New("config: opportunities_path is required")
	}
	if c.UrgentWindowDays <= 0 {
		return fmt.Errorf("config: urgent_window_days must be positive, got %d", c.UrgentWindowDays)
	}
	return nil
}

// UrgentWindow is the urgency horizon as a duration.
func (c Config) UrgentWindow() time.Duration {
	return time.Duration(c.UrgentWindowDays) * 24 * time.Hour
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
