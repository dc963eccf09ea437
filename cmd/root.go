package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/vacancy-bot/internal/store"
)

const (
	app       = "vacancy-bot"
	envPrefix = "VACANCY_BOT"
)

type Config struct {
	Telegram *TelegramConfig `mapstructure:"telegram"`
	Store    store.Config    `mapstructure:"store"`
	Search   *SearchConfig   `mapstructure:"search"`
	Sources  *SourcesConfig  `mapstructure:"sources"`
	Notify   *NotifyConfig   `mapstructure:"notify"`
	HTTP     *HTTPConfig     `mapstructure:"http"`
}

type TelegramConfig struct {
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token-file"`
}

type SearchConfig struct {
	MaxResults int    `mapstructure:"max-results"`
	DaysBack   int    `mapstructure:"days-back"`
	Pacing     string `mapstructure:"pacing"`
	Timeout    string `mapstructure:"timeout"`
	UserAgent  string `mapstructure:"user-agent"`
}

type SourcesConfig struct {
	HH       *HHConfig     `mapstructure:"hh"`
	Habr     *SourceConfig `mapstructure:"habr"`
	GetMatch *SourceConfig `mapstructure:"getmatch"`
	LinkedIn *SourceConfig `mapstructure:"linkedin"`
}

type SourceConfig struct {
	Disabled  bool   `mapstructure:"disabled"`
	URL       string `mapstructure:"url"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token-file"`
}

type HHConfig struct {
	SourceConfig `mapstructure:",squash"`
	MaxPages     int `mapstructure:"max-pages"`
}

type NotifyConfig struct {
	Schedule string `mapstructure:"schedule"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "vacancy-bot is a telegram bot that collects job postings from several boards and filters them per chat",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is vacancy-bot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	// .env is optional, real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %s", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	for _, key := range []string{
		"telegram.token", "telegram.token-file",
		"store.type", "store.path", "store.redis-url", "store.redis-key", "store.postgres-url",
		"sources.habr.token", "sources.habr.token-file", "sources.linkedin.url",
		"notify.schedule", "http.addr",
	} {
		if err := viper.BindEnv(key); err != nil {
			log.Fatalf("binding %s environment variable: %v", key, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional when everything comes from the environment,
	// but a broken one is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	if config.Search == nil {
		config.Search = &SearchConfig{}
	}
	if config.Sources == nil {
		config.Sources = &SourcesConfig{}
	}

	return config, nil
}
