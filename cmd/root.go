package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-fit/internal/utils"
)

const (
	app       = "resume-fit"
	envPrefix = "RESUME_FIT"
)

type Config struct {
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	NER       NERConfig       `mapstructure:"ner"`
	AI        *AIConfig       `mapstructure:"ai"`
	Report    ReportConfig    `mapstructure:"report"`
}

// ArtifactsConfig points at the model and taxonomy files. Empty taxonomy
// paths select the embedded defaults.
type ArtifactsConfig struct {
	Skills                string `mapstructure:"skills"`
	Roles                 string `mapstructure:"roles"`
	ATSVectorizer         string `mapstructure:"ats-vectorizer"`
	ATSKeywords           string `mapstructure:"ats-keywords"`
	EmbeddingModel        string `mapstructure:"embedding-model"`
	RecommenderDataset    string `mapstructure:"recommender-dataset"`
	RecommenderVectorizer string `mapstructure:"recommender-vectorizer" validate:"required_with=RecommenderDataset"`
}

type MatchingConfig struct {
	FuzzyThreshold       float64 `mapstructure:"fuzzy-threshold" validate:"gte=0,lte=100"`
	MinFuzzyTokenLength  int     `mapstructure:"min-fuzzy-token-length" validate:"gte=0"`
	ATSLowScore          float64 `mapstructure:"ats-low-score" validate:"gte=0,lte=100"`
	MissingKeywordsLimit int     `mapstructure:"missing-keywords-limit" validate:"gte=0"`
	Recommendations      int     `mapstructure:"recommendations" validate:"gte=1,lte=100"`
}

type EmbeddingConfig struct {
	Provider string      `mapstructure:"provider" validate:"oneof=static gemini none"`
	Model    string      `mapstructure:"model"`
	Cache    CacheConfig `mapstructure:"cache"`
}

type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	RedisURL   string        `mapstructure:"redis-url"`
	TTL        time.Duration `mapstructure:"ttl" validate:"gte=0"`
	MaxEntries int           `mapstructure:"max-entries" validate:"gte=0"`
}

type NERConfig struct {
	Provider string `mapstructure:"provider" validate:"oneof=heuristic gemini"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key" json:"-"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxRetries     int    `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength   int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type ReportConfig struct {
	RoadmapMonths int `mapstructure:"roadmap-months" validate:"gte=1,lte=36"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-fit scores a resume against a job description and builds an improvement report",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-fit.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())

	for key, env := range map[string]string{
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	} {
		if err := viper.BindEnv(key, envPrefix+"_"+envName(key), env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("artifacts.skills", "")
	v.SetDefault("artifacts.roles", "")
	v.SetDefault("artifacts.ats-vectorizer", "models/ats_vectorizer.json")
	v.SetDefault("artifacts.ats-keywords", "models/job_keywords.yaml")
	v.SetDefault("artifacts.embedding-model", "models/embedding.json")
	v.SetDefault("artifacts.recommender-dataset", "")
	v.SetDefault("artifacts.recommender-vectorizer", "")

	v.SetDefault("matching.fuzzy-threshold", 92.0)
	v.SetDefault("matching.min-fuzzy-token-length", 0)
	v.SetDefault("matching.ats-low-score", 70.0)
	v.SetDefault("matching.missing-keywords-limit", 10)
	v.SetDefault("matching.recommendations", 5)

	v.SetDefault("embedding.provider", "static")
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.cache.enabled", true)
	v.SetDefault("embedding.cache.redis-url", "")
	v.SetDefault("embedding.cache.ttl", "24h")
	v.SetDefault("embedding.cache.max-entries", 10000)

	v.SetDefault("ner.provider", "heuristic")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.embedding-model", "text-embedding-004")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-log-length", 200)

	v.SetDefault("report.roadmap-months", 3)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func envName(key string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

func initConfig() {
	// .env is optional, a broken one is not.
	if utils.FileExists(".env") {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("loading .env: %v", err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}
