package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "onehcm"
	envPrefix = "ONEHCM"
)

type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Matcher     MatcherConfig     `mapstructure:"matcher"`
	Synthesis   SynthesisConfig   `mapstructure:"synthesis"`
	AI          *AIConfig         `mapstructure:"ai"`
	Email       EmailConfig       `mapstructure:"email"`
	Server      ServerConfig      `mapstructure:"server"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
}

type DatabaseConfig struct {
	URL     string `mapstructure:"url"`
	URLFile string `mapstructure:"url-file"`
}

type ScoringConfig struct {
	URL              string        `mapstructure:"url"`
	APIKey           string        `mapstructure:"api-key"`
	APIKeyFile       string        `mapstructure:"api-key-file"`
	Timeout          time.Duration `mapstructure:"timeout"`
	ThresholdPct     float64       `mapstructure:"threshold-pct"`
	HoldThresholdPct float64       `mapstructure:"hold-threshold-pct"`
	UserAgent        string        `mapstructure:"user-agent"`
	MaxLogLength     int           `mapstructure:"max-log-length"`
}

type MatcherConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type SynthesisConfig struct {
	PollInterval time.Duration `mapstructure:"poll-interval"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
	Focus        string `mapstructure:"focus"`
	Tone         string `mapstructure:"tone"`
	Instructions string `mapstructure:"instructions"`
}

type EmailConfig struct {
	From   string       `mapstructure:"from"`
	SMTP   SMTPConfig   `mapstructure:"smtp"`
	Resend ResendConfig `mapstructure:"resend"`
}

type SMTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
}

type ResendConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	URL        string `mapstructure:"url"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DiagnosticsConfig struct {
	Capacity int `mapstructure:"capacity"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "onehcm computes evaluation syntheses, matches candidates to job offers and sends them for AI scoring",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is onehcm.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "")
	v.SetDefault("database.url-file", "")
	v.SetDefault("scoring.url", "")
	v.SetDefault("scoring.api-key", "")
	v.SetDefault("scoring.api-key-file", "")
	v.SetDefault("scoring.timeout", 60*time.Second)
	v.SetDefault("scoring.threshold-pct", 60.0)
	v.SetDefault("scoring.hold-threshold-pct", 50.0)
	v.SetDefault("scoring.user-agent", "")
	v.SetDefault("scoring.max-log-length", 200)
	v.SetDefault("matcher.ttl", 5*time.Minute)
	v.SetDefault("synthesis.poll-interval", 5*time.Second)
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-log-length", 200)
	v.SetDefault("email.from", "")
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.password-file", "")
	v.SetDefault("email.resend.api-key", "")
	v.SetDefault("email.resend.api-key-file", "")
	v.SetDefault("email.resend.url", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("diagnostics.capacity", 100)
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without a config file every setting comes from defaults and ONEHCM_* variables.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
