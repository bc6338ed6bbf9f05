package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Archive   ArchiveConfig
	Survey    SurveyConfig
	Platforms PlatformsConfig
	Storage   StorageConfig
	SQLite    SQLiteConfig
	Logging   LoggingConfig
}

type ArchiveConfig struct {
	AvailabilityURL string
	UserAgent       string
	TimeoutSec      int
	MaxAttempts     int
	RetryDelaySec   int
	QueryDelaySec   int
	FetchDelaySec   int
}

type SurveyConfig struct {
	LegacyURL string
	ModernURL string
}

type PlatformsConfig struct {
	StartYears map[string]int
	EndYear    int
}

type StorageConfig struct {
	DataDir   string
	OutputDir string
	Overwrite bool
}

type SQLiteConfig struct {
	Path string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("STEAMHW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("archive.availabilityURL", "http://archive.org/wayback/available")
	viper.SetDefault("archive.userAgent", "steamhw-pipeline/1.0")
	viper.SetDefault("archive.timeoutSec", 30)
	viper.SetDefault("archive.maxAttempts", 5)
	viper.SetDefault("archive.retryDelaySec", 5)
	// pauses between archive requests keep the batch polite
	viper.SetDefault("archive.queryDelaySec", 5)
	viper.SetDefault("archive.fetchDelaySec", 3)

	// the combined survey moved hosts with the 2009 store redesign
	viper.SetDefault("survey.legacyURL", "http://www.steampowered.com/status/survey.html")
	viper.SetDefault("survey.modernURL", "https://store.steampowered.com/hwsurvey")

	viper.SetDefault("platforms.startYears", map[string]int{
		"combined": 2004,
		"pc":       2010,
		"mac":      2010,
		"linux":    2014,
	})
	viper.SetDefault("platforms.endYear", 2021)

	viper.SetDefault("storage.dataDir", "./data")
	viper.SetDefault("storage.outputDir", ".")
	viper.SetDefault("storage.overwrite", false)

	viper.SetDefault("sqlite.path", "./steam_hw_survey.db")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.outputPath", "stdout")
}
