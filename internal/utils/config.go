package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config.yaml"

// Render backends.
const (
	BackendCloudflare = "cloudflare"
	BackendChrome     = "chrome"
)

// Storage drivers.
const (
	DriverR2    = "r2"
	DriverMinIO = "minio"
)

// DefaultRenderEndpoint is the Cloudflare Browser Rendering screenshot API.
// {account_id} is replaced with the configured account identifier.
const DefaultRenderEndpoint = "https://api.cloudflare.com/client/v4/accounts/{account_id}/browser-rendering/screenshot"

// Config holds the full service configuration.
type Config struct {
	Server struct {
		Host      string `yaml:"host"`
		Port      string `yaml:"port"`
		Prefork   bool   `yaml:"prefork"`
		BodyLimit int    `yaml:"body_limit"`
	} `yaml:"server"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`

	Cloudflare struct {
		AccountID string `yaml:"account_id"`
		APIToken  string `yaml:"api_token"`
	} `yaml:"cloudflare"`

	Render struct {
		Backend         string        `yaml:"backend"`
		Endpoint        string        `yaml:"endpoint"`
		Timeout         time.Duration `yaml:"timeout"`
		ChromePath      string        `yaml:"chrome_path"`
		ChromeNoSandbox bool          `yaml:"chrome_no_sandbox"`
		ViewportWidth   int           `yaml:"viewport_width"`
		ViewportHeight  int           `yaml:"viewport_height"`
	} `yaml:"render"`

	Storage struct {
		Driver          string `yaml:"driver"`
		Bucket          string `yaml:"bucket"`
		Endpoint        string `yaml:"endpoint"`
		Region          string `yaml:"region"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
		UseSSL          bool   `yaml:"use_ssl"`
	} `yaml:"storage"`

	Screenshot struct {
		KeyPrefix    string `yaml:"key_prefix"`
		KeyExtension string `yaml:"key_extension"`
		ContentType  string `yaml:"content_type"`
		Source       string `yaml:"source"`
	} `yaml:"screenshot"`

	Auth struct {
		Tokens []string `yaml:"tokens"`
	} `yaml:"auth"`
}

// AppConfig is the configuration loaded by LoadConfig.
var AppConfig Config

// GetConfig returns the configuration loaded by LoadConfig.
func GetConfig() Config {
	return AppConfig
}

// LoadConfig reads the file named by CONFIG_PATH (default config.yaml),
// applies environment overrides and stores the result in AppConfig.
// It panics on invalid configuration.
func LoadConfig() Config {
	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	AppConfig = loadFrom(path, explicit)
	return AppConfig
}

// LoadFrom reads the configuration at path. It panics if the file is missing
// or the resulting configuration is invalid.
func LoadFrom(path string) Config {
	return loadFrom(path, true)
}

func loadFrom(path string, mustExist bool) Config {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			panic(fmt.Sprintf("config: parse %s: %v", path, err))
		}
	case errors.Is(err, fs.ErrNotExist) && !mustExist:
		// run from environment only
	default:
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// applyEnv lets the hosting environment supply credentials and bindings.
func applyEnv(cfg *Config) {
	overrides := []struct {
		env string
		dst *string
	}{
		{"CF_ACCOUNT_ID", &cfg.Cloudflare.AccountID},
		{"CF_API_TOKEN", &cfg.Cloudflare.APIToken},
		{"R2_BUCKET", &cfg.Storage.Bucket},
		{"R2_ACCESS_KEY_ID", &cfg.Storage.AccessKeyID},
		{"R2_SECRET_ACCESS_KEY", &cfg.Storage.SecretAccessKey},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
	if cfg.Render.ChromePath == "" {
		if v := os.Getenv("CHROME_BIN"); v != "" {
			cfg.Render.ChromePath = v
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.BodyLimit == 0 {
		cfg.Server.BodyLimit = 10 * 1024 * 1024
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Render.Backend == "" {
		cfg.Render.Backend = BackendCloudflare
	}
	if cfg.Render.Endpoint == "" {
		cfg.Render.Endpoint = DefaultRenderEndpoint
	}
	if cfg.Render.ViewportWidth == 0 {
		cfg.Render.ViewportWidth = 1280
	}
	if cfg.Render.ViewportHeight == 0 {
		cfg.Render.ViewportHeight = 720
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverR2
	}
	if cfg.Storage.Region == "" {
		if cfg.Storage.Driver == DriverR2 {
			cfg.Storage.Region = "auto"
		} else {
			cfg.Storage.Region = "us-east-1"
		}
	}
	if cfg.Screenshot.KeyPrefix == "" {
		cfg.Screenshot.KeyPrefix = "screenshot-"
	}
	if cfg.Screenshot.KeyExtension == "" {
		cfg.Screenshot.KeyExtension = ".png"
	}
	if cfg.Screenshot.ContentType == "" {
		cfg.Screenshot.ContentType = "image/png"
	}
	if cfg.Screenshot.Source == "" {
		cfg.Screenshot.Source = "screenshot-relay"
	}
}

// Validate reports the first configuration problem found.
func (cfg Config) Validate() error {
	switch cfg.Render.Backend {
	case BackendCloudflare:
		if cfg.Cloudflare.AccountID == "" {
			return errors.New("cloudflare.account_id is required for the cloudflare render backend")
		}
		if cfg.Cloudflare.APIToken == "" {
			return errors.New("cloudflare.api_token is required for the cloudflare render backend")
		}
	case BackendChrome:
	default:
		return fmt.Errorf("render.backend %q is not supported", cfg.Render.Backend)
	}
	if cfg.Render.Timeout < 0 {
		return errors.New("render.timeout must not be negative")
	}
	if cfg.Render.ViewportWidth < 0 || cfg.Render.ViewportHeight < 0 {
		return errors.New("render viewport must not be negative")
	}

	if cfg.Storage.Bucket == "" {
		return errors.New("storage.bucket is required")
	}
	switch cfg.Storage.Driver {
	case DriverR2:
		if cfg.Storage.Endpoint == "" && cfg.Cloudflare.AccountID == "" {
			return errors.New("storage.endpoint or cloudflare.account_id is required for the r2 driver")
		}
	case DriverMinIO:
		if cfg.Storage.Endpoint == "" {
			return errors.New("storage.endpoint is required for the minio driver")
		}
		if strings.Contains(cfg.Storage.Endpoint, "://") {
			return errors.New("storage.endpoint must be host[:port] for the minio driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", cfg.Storage.Driver)
	}

	for _, t := range cfg.Auth.Tokens {
		if strings.TrimSpace(t) == "" {
			return errors.New("auth.tokens must not contain empty tokens")
		}
	}
	return nil
}

// RenderURL returns the render endpoint with the account identifier filled in.
func (cfg Config) RenderURL() string {
	return strings.ReplaceAll(cfg.Render.Endpoint, "{account_id}", cfg.Cloudflare.AccountID)
}

// R2Endpoint returns the storage endpoint, deriving the R2 one from the account id.
func (cfg Config) R2Endpoint() string {
	if cfg.Storage.Endpoint != "" {
		return cfg.Storage.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.Cloudflare.AccountID)
}
