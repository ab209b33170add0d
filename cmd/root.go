package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"demo-data-loader/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	appCfg  config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "demo-data-loader",
	Short: "Load sample security events into a webhook",
	Long: "Renders event templates into the past week and delivers them to a\n" +
		"webhook, so detection rules have recent data to match.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

func initConfig() {
	v := viper.GetViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/demo-data-loader")
		v.AddConfigPath("configs")
	}
	v.SetEnvPrefix("ddl")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			os.Exit(1)
		}
	}

	if err := v.Unmarshal(&appCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing config: %v\n", err)
		os.Exit(1)
	}

	appCfg.FillDefaults()
	slog.SetDefault(newLogger(appCfg.App))
	if used := v.ConfigFileUsed(); used != "" {
		slog.Debug("config: loaded", "file", used)
	}
}

// bindEnvKeys makes every config key visible to Unmarshal even when it is
// only set through the environment.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"app.log_level", "app.log_format",
		"redis.addr", "redis.username", "redis.password", "redis.db",
		"history.enabled", "history.ttl", "history.limit",
		"loader.template_url", "loader.webhook_url", "loader.mode", "loader.delay",
		"loader.timeout", "loader.batch_size", "loader.max_template_bytes", "loader.user_agent",
		"server.addr",
		"hook.domain", "hook.name", "hook.extension",
	} {
		_ = v.BindEnv(key)
	}
}

func newLogger(app config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(app.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}
