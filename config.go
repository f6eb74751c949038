package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	avatarMaxBytes int64
	avatarTimeout  time.Duration
	bind           string
	deployID       string
	detourBase     string
	port           int
	prefix         string
	profile        bool
	siteURL        string
	storeKey       string
	storeTimeout   time.Duration
	storeURL       string
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if _, err := url.Parse(c.siteURL); err != nil {
		return fmt.Errorf("invalid site url %q: %w", c.siteURL, err)
	}
	if (c.storeURL == "") != (c.storeKey == "") {
		return errors.New("both --store-url and --store-key must be provided together")
	}
	if c.avatarMaxBytes < 1 {
		return fmt.Errorf("invalid avatar byte cap: %d", c.avatarMaxBytes)
	}
	if c.avatarTimeout < 1 || c.storeTimeout < 1 {
		return errors.New("timeouts must be positive durations")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// cacheVersion is the deploy-scoped cache-busting token appended to image
// URLs so stale edge caches are bypassed after a new deployment.
func (c *Config) cacheVersion() string {
	if c.deployID != "" {
		return c.deployID
	}
	return releaseVersion
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CARIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "sharelinks",
		Short:         "Resolves Classic Car IQ share links into OG previews for crawlers and app deep links for everyone else.",
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

	fs.Int64Var(&cfg.avatarMaxBytes, "avatar-max-bytes", 1<<20, "maximum size of a fetched avatar image (env: CARIQ_AVATAR_MAX_BYTES)")
	fs.DurationVar(&cfg.avatarTimeout, "avatar-timeout", 800*time.Millisecond, "timeout for each avatar fetch (env: CARIQ_AVATAR_TIMEOUT)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: CARIQ_BIND)")
	fs.StringVar(&cfg.deployID, "deploy-id", "", "cache-busting token appended to image URLs, defaults to the release version (env: CARIQ_DEPLOY_ID)")
	fs.StringVar(&cfg.detourBase, "detour-base", "", "deep-link base URL for redirecting humans into the app (env: DETOUR_BASE_URL)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: CARIQ_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: CARIQ_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: CARIQ_PROFILE)")
	fs.StringVar(&cfg.siteURL, "site-url", "https://links.classiccariq.com", "public base URL of this site (env: CARIQ_SITE_URL)")
	fs.StringVar(&cfg.storeKey, "store-key", "", "backing store service key, absence enables universal fallback mode (env: CARIQ_STORE_KEY)")
	fs.DurationVar(&cfg.storeTimeout, "store-timeout", 1200*time.Millisecond, "combined timeout budget for backing store lookups (env: CARIQ_STORE_TIMEOUT)")
	fs.StringVar(&cfg.storeURL, "store-url", "", "backing store endpoint, absence enables universal fallback mode (env: CARIQ_STORE_URL)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: CARIQ_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: CARIQ_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: CARIQ_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: CARIQ_VERSION)")

	// DETOUR_BASE_URL predates the CARIQ_ prefix and is still what the deploy
	// environment sets.
	_ = v.BindEnv("detour-base", "DETOUR_BASE_URL")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if f.Name != "detour-base" {
			_ = v.BindEnv(f.Name)
		}
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("sharelinks v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
