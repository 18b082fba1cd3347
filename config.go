/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Seednode/wikiguess/games/wikilinks"
)

const defaultWikipediaAPI = "https://en.wikipedia.org/w/api.php"

type Config struct {
	bind         string
	configFile   string
	port         int
	prefix       string
	profile      bool
	seed         uint64
	tlsCert      string
	tlsKey       string
	verbose      bool
	version      bool
	wikipediaAPI string

	// starting settings for the room; the judge may change them at runtime
	game wikilinks.Settings
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.game.MaxPlayers < 3 {
		return fmt.Errorf("invalid max players (a round needs a judge and two players): %d", c.game.MaxPlayers)
	}
	if c.game.RoundTimeLimit < 0 {
		return fmt.Errorf("invalid round time limit (must not be negative): %d", c.game.RoundTimeLimit)
	}
	if c.game.PointsForCorrect < 0 || c.game.PointsForFooling < 0 {
		return errors.New("point values must not be negative")
	}
	if u, err := url.Parse(c.wikipediaAPI); err != nil || u.Host == "" {
		return fmt.Errorf("invalid wikipedia api url: %q", c.wikipediaAPI)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// bindFlags lets environment variables and config file values fill in any
// flag not given on the command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WIKIGUESS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "wikiguess",
		Short:         "A party game: everyone submits a Wikipedia link, the judge guesses who sent the one on screen.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.configFile == "" {
				return nil
			}

			v.SetConfigFile(cfg.configFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("unable to read config file: %w", err)
			}

			bindFlags(v, cmd.Root().PersistentFlags())
			bindFlags(v, cmd.Flags())

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	normalize := func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalize)

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: WIKIGUESS_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: WIKIGUESS_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: WIKIGUESS_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: WIKIGUESS_PROFILE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: WIKIGUESS_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: WIKIGUESS_TLS_KEY)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: WIKIGUESS_VERSION)")
	fs.StringVar(&cfg.wikipediaAPI, "wikipedia-api", defaultWikipediaAPI, "MediaWiki API used to suggest random articles (env: WIKIGUESS_WIKIPEDIA_API)")

	pfs := cmd.PersistentFlags()
	pfs.SetNormalizeFunc(normalize)

	defaults := wikilinks.DefaultSettings()
	pfs.StringVarP(&cfg.configFile, "config", "c", "", "path to a config file (yaml, toml or json) (env: WIKIGUESS_CONFIG)")
	pfs.IntVar(&cfg.game.MaxPlayers, "max-players", defaults.MaxPlayers, "maximum players in the room (env: WIKIGUESS_MAX_PLAYERS)")
	pfs.IntVar(&cfg.game.PointsForCorrect, "points-for-correct", defaults.PointsForCorrect, "points for the judge and submitter on a correct guess (env: WIKIGUESS_POINTS_FOR_CORRECT)")
	pfs.IntVar(&cfg.game.PointsForFooling, "points-for-fooling", defaults.PointsForFooling, "points for the submitter on a wrong guess (env: WIKIGUESS_POINTS_FOR_FOOLING)")
	pfs.IntVar(&cfg.game.RoundTimeLimit, "round-time-limit", defaults.RoundTimeLimit, "advertised round length in seconds (env: WIKIGUESS_ROUND_TIME_LIMIT)")
	pfs.Uint64Var(&cfg.seed, "seed", 0, "seed for judge and link selection, 0 for random (env: WIKIGUESS_SEED)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: WIKIGUESS_VERBOSE)")

	bindFlags(v, pfs)
	bindFlags(v, fs)

	cmd.AddCommand(newSettingsCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("wikiguess v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newSettingsCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the room settings a new game would start with, as YAML.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)

			if err := enc.Encode(cfg.game); err != nil {
				return err
			}

			return enc.Close()
		},
	}
}
