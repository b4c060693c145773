package app

import (
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/smactrace/pkg/constants"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string

	// Config file
	ConfigFile string

	// Experiment defaults
	DataDir      string
	Dataset      string
	Preprocessor string
	OutputDir    string

	// Reconciliation
	Workers     int
	CacheDir    string
	ResponseMin float64
	ResponseMax float64

	// Logging configuration from the environment
	LogLevelEnv string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by setupCommand)
// 2. SMACTRACE_* environment variables
// 3. .env files
// 4. Config file ($SMACTRACE_CONFIG or ~/.smactrace.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first so they feed the environment lookups below
	loadEnvFiles()

	config := &Config{
		LogLevelEnv: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}
	if err := config.load(os.Getenv("SMACTRACE_CONFIG")); err != nil {
		return nil, err
	}
	return config, nil
}

// load reads the experiment and reconciliation settings. An empty file
// searches the home and working directories for .smactrace.yaml.
func (c *Config) load(file string) error {
	v := viper.New()
	v.SetEnvPrefix("smactrace")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("response_min", constants.DefaultResponseLower)
	v.SetDefault("response_max", constants.DefaultResponseUpper)
	v.SetDefault("format", "")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".smactrace")
		// A missing default config file is not an error
		_ = v.ReadInConfig()
	}

	c.ConfigFile = v.ConfigFileUsed()
	c.DataDir = v.GetString("data_dir")
	c.Dataset = v.GetString("dataset")
	c.Preprocessor = v.GetString("preprocessor")
	c.OutputDir = v.GetString("output_dir")
	c.Workers = v.GetInt("workers")
	c.CacheDir = v.GetString("cache_dir")
	c.ResponseMin = v.GetFloat64("response_min")
	c.ResponseMax = v.GetFloat64("response_max")
	if c.Format == "" {
		c.Format = v.GetString("format")
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
