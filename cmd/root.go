package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ispell/ispell/internal/api"
	"github.com/ispell/ispell/internal/app"
	"github.com/ispell/ispell/internal/config"
	"github.com/ispell/ispell/internal/creds"
	"github.com/ispell/ispell/internal/logging"
	"github.com/ispell/ispell/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "ispell",
	Short: "Spelling trainer for your terminal",
	Long:  "iSpell — practice spelling from curated word books, with spaced review scheduled by the iSpell backend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		return app.Run(app.Options{
			Config:     env.cfg,
			ConfigPath: env.cfgPath,
			Log:        env.log,
			Store:      env.store,
			Creds:      env.creds,
			Client:     env.client,
		})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ISPELL_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides ISPELL_CONFIG env var)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(booksCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// env bundles the services every command needs.
type env struct {
	cfg     config.Config
	cfgPath string
	log     *zap.Logger
	store   *store.Store
	creds   *creds.Store
	client  *api.Client
}

func (e *env) Close() {
	if e.log != nil {
		_ = e.log.Sync()
	}
	if e.store != nil {
		_ = e.store.Close()
	}
}

// buildEnv loads config, opens the local store, and constructs the API
// client on top of both.
func buildEnv(cmd *cobra.Command) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logPath, err := logging.DefaultPath()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(logPath, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}

	cs := creds.New(st)
	client := api.New(cfg.ServerURL, cs,
		api.WithLogger(log),
		api.WithLogoutHandler(func() {
			log.Info("session expired, credentials cleared")
		}),
	)

	return &env{
		cfg:     cfg,
		cfgPath: cfgPath,
		log:     log,
		store:   st,
		creds:   cs,
		client:  client,
	}, nil
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then ISPELL_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
