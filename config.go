/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/taboo/games/taboo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind              string
	broadcastInterval time.Duration
	cards             string
	port              int
	prefix            string
	profile           bool
	reviewDuration    time.Duration
	reviewPause       time.Duration
	rounds            int
	tlsCert           string
	tlsKey            string
	turnDuration      time.Duration
	verbose           bool
	version           bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.rounds < 1 {
		return fmt.Errorf("invalid round count (must be at least 1): %d", c.rounds)
	}
	if c.turnDuration < time.Second {
		return fmt.Errorf("invalid turn duration (must be at least 1s): %s", c.turnDuration)
	}
	if c.reviewDuration < time.Second {
		return fmt.Errorf("invalid review duration (must be at least 1s): %s", c.reviewDuration)
	}
	if c.reviewPause <= 0 {
		return fmt.Errorf("invalid review pause (must be positive): %s", c.reviewPause)
	}
	if c.broadcastInterval <= 0 {
		return fmt.Errorf("invalid broadcast interval (must be positive): %s", c.broadcastInterval)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TABOO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "taboo",
		Short:         "A single-room game of Taboo, played in the browser.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: TABOO_BIND)")
	fs.DurationVar(&cfg.broadcastInterval, "broadcast-interval", time.Second, "how often game state is pushed to clients (env: TABOO_BROADCAST_INTERVAL)")
	fs.StringVarP(&cfg.cards, "cards", "c", "", "path to a JSON card deck, instead of the built-in one (env: TABOO_CARDS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: TABOO_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: TABOO_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: TABOO_PROFILE)")
	fs.DurationVar(&cfg.reviewDuration, "review-duration", taboo.DefaultReviewDuration, "time to vote on each guessed card (env: TABOO_REVIEW_DURATION)")
	fs.DurationVar(&cfg.reviewPause, "review-pause", taboo.DefaultReviewPause, "time a review outcome is shown before moving on (env: TABOO_REVIEW_PAUSE)")
	fs.IntVarP(&cfg.rounds, "rounds", "r", taboo.DefaultMaxRounds, "times each player gives before the game ends (env: TABOO_ROUNDS)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: TABOO_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: TABOO_TLS_KEY)")
	fs.DurationVarP(&cfg.turnDuration, "turn-duration", "t", taboo.DefaultTurnDuration, "length of each giver's turn (env: TABOO_TURN_DURATION)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: TABOO_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: TABOO_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("taboo v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
