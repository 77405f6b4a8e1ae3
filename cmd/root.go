package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"job-tailor/internal/keywords"
	"job-tailor/internal/logger"
	"job-tailor/internal/pipeline"
	"job-tailor/internal/profile"
	"job-tailor/internal/render"
	"job-tailor/internal/scoring"
	"job-tailor/internal/source"
	"job-tailor/internal/store"
	"job-tailor/internal/tailoring"
)

const app = "job-tailor"

type Config struct {
	Profile     string `mapstructure:"profile"`
	ProfilesDir string `mapstructure:"profiles-dir"`
	DataDir     string `mapstructure:"data-dir"`
	OutputDir   string `mapstructure:"output-dir"`
	Parallelism int    `mapstructure:"parallelism"`

	Source    *source.Config    `mapstructure:"source"`
	Scoring   *ScoringConfig    `mapstructure:"scoring"`
	Tailoring *tailoring.Limits `mapstructure:"tailoring"`
	Keywords  *KeywordsConfig   `mapstructure:"keywords"`
}

type ScoringConfig struct {
	HighThreshold   float64 `mapstructure:"high-threshold"`
	MediumThreshold float64 `mapstructure:"medium-threshold"`
	TagWeight       float64 `mapstructure:"tag-weight"`
}

type KeywordsConfig struct {
	MinTokenLength int      `mapstructure:"min-token-length"`
	StopWords      []string `mapstructure:"stop-words"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-tailor scores scraped job postings against your profile and tailors a resume per posting",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-tailor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for commands that run the pipeline.
	if scrapeCmd.CalledAs() == "" && scoreCmd.CalledAs() == "" && applyCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.ProfilesDir == "" {
		c.ProfilesDir = "profiles"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.OutputDir == "" {
		c.OutputDir = "output_resumes"
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 4
	}
	if c.Source == nil {
		cfg := source.DefaultConfig
		c.Source = &cfg
	}
	if c.Scoring == nil {
		c.Scoring = &ScoringConfig{}
	}
	if c.Scoring.HighThreshold <= 0 {
		c.Scoring.HighThreshold = scoring.DefaultThresholds.High
	}
	if c.Scoring.MediumThreshold <= 0 {
		c.Scoring.MediumThreshold = scoring.DefaultThresholds.Medium
	}
	if c.Scoring.TagWeight < 1 {
		c.Scoring.TagWeight = scoring.DefaultTagWeight
	}
	if c.Tailoring == nil {
		limits := tailoring.DefaultLimits
		c.Tailoring = &limits
	}
	if c.Keywords == nil {
		c.Keywords = &KeywordsConfig{}
	}
}

// fatal reports a startup failure before the zap logger exists.
func fatal(err error) {
	log.Fatal(err)
}

// engine bundles everything a pipeline command needs.
type engine struct {
	config   *Config
	logger   *zap.Logger
	store    *store.Store
	profiles *profile.Store
	pipeline *pipeline.Pipeline
}

func (e *engine) Close() {
	if e.store != nil {
		e.store.Close()
	}
}

// newEngine builds the logger, configuration and pipeline shared by the
// scrape, score and apply commands.
func newEngine() (*engine, error) {
	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}

	if config.Profile == "" {
		return nil, fmt.Errorf("profile name is required under the 'profile' key to score and tailor postings")
	}

	profiles, err := profile.NewStore(config.ProfilesDir)
	if err != nil {
		return nil, err
	}

	postings, err := store.Open(config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening posting store: %w", err)
	}

	extractor := keywords.NewExtractor(keywords.Config{
		MinTokenLength: config.Keywords.MinTokenLength,
		ExtraStopWords: config.Keywords.StopWords,
	})
	thresholds := scoring.Thresholds{
		High:   config.Scoring.HighThreshold,
		Medium: config.Scoring.MediumThreshold,
	}
	scorer := scoring.NewScorer(extractor, thresholds, config.Scoring.TagWeight)
	selector := tailoring.NewSelector(extractor, *config.Tailoring, config.Scoring.TagWeight)
	renderer := render.NewMarkdown(config.OutputDir)

	return &engine{
		config:   config,
		logger:   zlog,
		store:    postings,
		profiles: profiles,
		pipeline: pipeline.New(postings, scorer, selector, renderer, zlog, config.Parallelism),
	}, nil
}

// loadProfile loads and validates the configured profile, failing before
// any scoring or tailoring happens when the profile is invalid.
func (e *engine) loadProfile() (*profile.Profile, error) {
	prof, err := e.profiles.Load(e.config.Profile)
	if err != nil {
		return nil, err
	}
	e.logger.Info("loaded profile",
		zap.String("profile", e.config.Profile),
		zap.Int("skills", len(prof.Skills)),
		zap.Int("experience", len(prof.Experience)),
		zap.Int("projects", len(prof.Projects)),
	)
	return prof, nil
}
