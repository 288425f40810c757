package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-fit/internal/ai/gemini"
	"github.com/spigell/resume-fit/internal/ats"
	"github.com/spigell/resume-fit/internal/cache"
	"github.com/spigell/resume-fit/internal/coach"
	"github.com/spigell/resume-fit/internal/embedding"
	"github.com/spigell/resume-fit/internal/extract"
	"github.com/spigell/resume-fit/internal/logger"
	"github.com/spigell/resume-fit/internal/recommend"
	"github.com/spigell/resume-fit/internal/report"
	"github.com/spigell/resume-fit/internal/resume"
	"github.com/spigell/resume-fit/internal/secrets"
	"github.com/spigell/resume-fit/internal/similarity"
	"github.com/spigell/resume-fit/internal/skillgap"
	"github.com/spigell/resume-fit/internal/taxonomy"
	"github.com/spigell/resume-fit/internal/utils"
)

// needs selects which components a command builds.
type needs struct {
	parser      bool
	similarity  bool
	skillGap    bool
	ats         bool
	recommender bool
	coach       bool
}

type components struct {
	config    *Config
	logger    *zap.Logger
	generator *gemini.Generator
	cache     *cache.Tiered
	skills    *taxonomy.Skills
	roles     *taxonomy.Roles
	deps      report.Deps
}

// setup builds the logger and the validated config. Any failure is fatal.
func setup() (*zap.Logger, *Config) {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	l.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return l, config
}

// mustBuild builds the components or exits.
func mustBuild(ctx context.Context, n needs) *components {
	l, config := setup()
	c, err := buildComponents(ctx, config, l, n)
	if err != nil {
		l.Fatal("building components", zap.Error(err))
	}
	return c
}

func buildComponents(ctx context.Context, config *Config, l *zap.Logger, n needs) (*components, error) {
	c := &components{config: config, logger: l}
	c.deps.Logger = l

	if n.similarity || n.recommender || n.coach {
		n.parser = true
	}

	if usesGemini(config, n) {
		generator, err := newGenerator(ctx, config, l)
		if err != nil {
			return nil, err
		}
		c.generator = generator
	}

	if n.parser {
		parser, err := c.buildParser(config)
		if err != nil {
			return nil, err
		}
		c.deps.Parser = parser
	}

	if n.similarity {
		embedder, err := c.buildEmbedder(ctx, config)
		if err != nil {
			return nil, err
		}
		c.deps.Similarity = similarity.NewScorer(embedder, l)
	}

	if n.skillGap {
		roles, err := taxonomy.LoadRoles(config.Artifacts.Roles)
		if err != nil {
			return nil, fmt.Errorf("role taxonomy: %w", err)
		}
		c.roles = roles
		c.deps.SkillGap = skillgap.NewAnalyzer(roles)

		for role, skills := range roles.Uncovered(c.skills) {
			l.Warn("role requires skills the skill taxonomy cannot extract", zap.String("role", role), zap.Strings("skills", skills))
		}
	}

	if n.ats {
		scorer, err := ats.Load(config.Artifacts.ATSVectorizer, config.Artifacts.ATSKeywords, ats.Options{
			LowScore:             config.Matching.ATSLowScore,
			MissingKeywordsLimit: config.Matching.MissingKeywordsLimit,
		}, l)
		if err != nil {
			return nil, err
		}
		c.deps.ATS = scorer
	}

	if n.recommender && strings.TrimSpace(config.Artifacts.RecommenderDataset) != "" {
		recommender, err := recommend.Load(config.Artifacts.RecommenderDataset, config.Artifacts.RecommenderVectorizer)
		if err != nil {
			return nil, err
		}
		l.Debug("recommender loaded", zap.Int("roles", recommender.Len()))
		c.deps.Recommender = recommender
	}

	if n.coach && config.AI.Enabled && c.generator != nil {
		c.deps.Coach = coach.New(c.generator, coach.Options{RoadmapMonths: config.Report.RoadmapMonths}, l)
	}

	return c, nil
}

func usesGemini(config *Config, n needs) bool {
	switch {
	case n.coach && config.AI.Enabled:
		return true
	case n.parser && config.NER.Provider == "gemini":
		return true
	case n.similarity && config.Embedding.Provider == "gemini":
		return true
	default:
		return false
	}
}

func newGenerator(ctx context.Context, config *Config, l *zap.Logger) (*gemini.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}

	cfg := config.AI.Gemini
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (or set ai.gemini.api-key-file / GEMINI_API_KEY_FILE)", err)
	}

	genLogger := l.With(zap.Int("ai_retry_attempts", cfg.MaxRetries))

	return gemini.NewGenerator(ctx, gemini.Options{
		APIKey:         apiKey,
		Model:          cfg.Model,
		EmbeddingModel: cfg.EmbeddingModel,
		MaxRetries:     cfg.MaxRetries,
		MaxLogLength:   cfg.MaxLogLength,
	}, genLogger)
}

func (c *components) buildParser(config *Config) (*resume.Parser, error) {
	skills, err := taxonomy.LoadSkills(config.Artifacts.Skills)
	if err != nil {
		return nil, fmt.Errorf("skill taxonomy: %w", err)
	}

	opts := []extract.SkillOption{extract.WithFuzzyThreshold(config.Matching.FuzzyThreshold)}
	if config.Matching.MinFuzzyTokenLength > 0 {
		opts = append(opts, extract.WithMinFuzzyTokenLength(config.Matching.MinFuzzyTokenLength))
	}

	var recognizer extract.Recognizer
	if config.NER.Provider == "gemini" && c.generator != nil {
		recognizer = gemini.NewEntityRecognizer(c.generator, logger.WithCommonFields(c.logger, "gemini", c.generator.Model()), config.AI.Gemini.MaxLogLength)
	}

	c.skills = skills
	c.logger.Debug("skill taxonomy loaded", zap.Int("skills", skills.Len()), zap.Strings("categories", skills.Categories()))

	return resume.NewParser(
		extract.NewSkillExtractor(skills, opts...),
		extract.NewEntityExtractor(recognizer, c.logger),
		extract.NewExperienceEstimator(nil),
		c.logger,
	), nil
}

// buildEmbedder returns nil when embeddings are switched off.
func (c *components) buildEmbedder(ctx context.Context, config *Config) (similarity.Embedder, error) {
	var (
		base  embedding.Embedder
		model string
	)

	switch config.Embedding.Provider {
	case "none":
		c.logger.Warn("embedding provider is none, similarity scores will be 0")
		return nil, nil
	case "gemini":
		emb := c.generator.Embedder()
		base, model = emb, emb.Model()
	default:
		static, err := embedding.LoadStatic(config.Artifacts.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		base, model = static, static.Model()
	}

	if override := strings.TrimSpace(config.Embedding.Model); override != "" {
		model = override
	}

	if !config.Embedding.Cache.Enabled {
		return base, nil
	}

	c.cache = cache.New(ctx, cache.Options{
		RedisURL:   config.Embedding.Cache.RedisURL,
		TTL:        config.Embedding.Cache.TTL,
		MaxEntries: config.Embedding.Cache.MaxEntries,
	}, c.logger)

	return embedding.NewCached(base, c.cache, model, c.logger), nil
}

func (c *components) close() {
	if c.cache == nil {
		return
	}
	hits, misses := c.cache.Stats()
	c.logger.Debug("embedding cache", zap.Int64("hits", hits), zap.Int64("misses", misses), zap.Bool("redis", c.cache.HasL2()))
	if err := c.cache.Close(); err != nil {
		c.logger.Warn("closing embedding cache", zap.Error(err))
	}
}

func readInput(l *zap.Logger, kind, path string) string {
	if strings.TrimSpace(path) == "" {
		l.Fatal("input file is required", zap.String("input", kind))
	}
	text, err := utils.ReadText(path)
	if err != nil {
		l.Fatal("reading input", zap.String("input", kind), zap.String("path", path), zap.Error(err))
	}
	return text
}

// writeJSON prints v as indented JSON to the output file or stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	data = append(data, '\n')

	output := ""
	if flag := cmd.Flags().Lookup("output"); flag != nil {
		output = strings.TrimSpace(flag.Value.String())
	}
	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	return os.WriteFile(output, data, 0o644)
}
