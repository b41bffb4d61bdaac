package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spigell/resume-matcher/internal/report"
	"github.com/spigell/resume-matcher/internal/scorer"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-matcher"
)

type Config struct {
	Scorer *ScorerConfig `mapstructure:"scorer" validate:"required"`
	Report *ReportConfig `mapstructure:"report" validate:"required"`
}

type ScorerConfig struct {
	URL            string        `mapstructure:"url" validate:"required,url"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent      string        `mapstructure:"user-agent"`
	SkillsEncoding string        `mapstructure:"skills-encoding" validate:"oneof=string json-blob"`
}

type ReportConfig struct {
	RedirectDelay time.Duration `mapstructure:"redirect-delay" validate:"gte=0"`
	Format        string        `mapstructure:"format" validate:"oneof=human json yaml"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher scores a PDF resume against a list of target skills",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults()

	if err := viper.BindEnv("scorer.url", "RESUME_MATCHER_SCORER_URL"); err != nil {
		log.Fatalf("binding RESUME_MATCHER_SCORER_URL environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("scorer.url", scorer.DefaultURL)
	viper.SetDefault("scorer.timeout", time.Minute)
	viper.SetDefault("scorer.skills-encoding", string(scorer.EncodingString))
	viper.SetDefault("report.redirect-delay", report.DefaultRedirectDelay)
	viper.SetDefault("report.format", report.FormatHuman)
}

func initConfig() {
	// Only analyze needs the config.
	if analyzeCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	// Without an explicit --config the file is optional, defaults cover everything.
	var notFound viper.ConfigFileNotFoundError
	if cfgFile == "" && errors.As(err, &notFound) {
		return
	}

	// We can't proceed if the config file parsed with error.
	log.Fatal(err)
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if err := validateConfig(config); err != nil {
		return config, err
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config == nil {
		return errors.New("config is required")
	}

	validate := validator.New()
	return validate.Struct(config)
}
