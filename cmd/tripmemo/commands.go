package main

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type config struct {
	API      string
	Plan     string
	Spot     int
	Password *string
	Redis    string
	CacheTTL time.Duration
	Debug    bool
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tripmemo",
		Short:         "Manage the memos of a trip plan's spots.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	f := cmd.PersistentFlags()
	f.String("api", "http://localhost:8080", "Base URL of the trip API.")
	f.String("plan", "", "Plan ID.")
	f.Int("spot", 0, "Spot ID.")
	f.String("password", "", "Plan password. Prompted for when rejected.")
	f.String("redis", "", "Redis connection string for the list cache.")
	f.Duration("cache-ttl", 5*time.Minute, "How long cached lists are kept.")
	f.Bool("debug", false, "Enable debug logging.")

	addMemo(cmd)
	addSpot(cmd)
	return cmd
}

// loadConfig resolves flags, falling back to TRIPMEMO_* environment variables.
func loadConfig(cmd *cobra.Command) (config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRIPMEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return config{}, err
	}

	cfg := config{
		API:      v.GetString("api"),
		Plan:     v.GetString("plan"),
		Spot:     v.GetInt("spot"),
		Redis:    v.GetString("redis"),
		CacheTTL: v.GetDuration("cache-ttl"),
		Debug:    v.GetBool("debug"),
	}
	if v.IsSet("password") {
		pw := v.GetString("password")
		cfg.Password = &pw
	}
	if cfg.Plan == "" {
		return config{}, errors.New("requires --plan or TRIPMEMO_PLAN")
	}
	if cfg.CacheTTL < 0 {
		return config{}, errors.New("cache-ttl must not be negative")
	}
	return cfg, nil
}
