// Command trackermcpd runs the tracker MCP server over HTTP.
//
// Bearer tokens and their provider credentials come from a YAML config
// file; every flag can also be set via a TRACKERMCP_* environment
// variable.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	trackermcp "github.com/tracknest/tracker-mcp-go"
)

func main() {
	ctx := withSignalCancel(context.Background())
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// tokenEntry is one bearer token's credential in the config file.
type tokenEntry struct {
	UserID          string            `mapstructure:"user_id"`
	Provider        string            `mapstructure:"provider"`
	OrgConfig       map[string]string `mapstructure:"org_config"`
	UserCredentials map[string]string `mapstructure:"user_credentials"`
	Role            string            `mapstructure:"role"`
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "trackermcpd",
		Short:         "MCP server exposing issue trackers as tools and resources",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, err := loadConfigFile()
			if err != nil {
				return err
			}

			logger := newLogger(viper.GetString("log-level"))
			if configFile != "" {
				logger.Info("loaded config file", "path", configFile)
			}

			resolver, err := loadResolver()
			if err != nil {
				return err
			}

			srv, err := trackermcp.New(resolver,
				trackermcp.WithLogger(logger),
				trackermcp.WithSessionTTL(viper.GetDuration("session-ttl")),
			)
			if err != nil {
				return err
			}

			return serve(cmd.Context(), srv, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "path to YAML config file with bearer tokens")
	flags.String("listen", ":8080", "listen address")
	flags.String("path", "/mcp", "HTTP path the MCP endpoint is mounted on")
	flags.Duration("session-ttl", 24*time.Hour, "idle session lifetime")
	flags.Duration("gc-interval", 5*time.Minute, "how often expired sessions are collected")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	bindFlags(flags, "config", "listen", "path", "session-ttl", "gc-interval", "log-level")

	viper.SetEnvPrefix("TRACKERMCP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cmd.AddCommand(newProvidersCommand())
	return cmd
}

// newProvidersCommand prints the supported providers and the
// credential fields each one expects in the config file.
func newProvidersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and their credential fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, desc := range trackermcp.Descriptors() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", desc.Key, desc.Label)
				for _, field := range desc.OrgFields {
					fmt.Fprintf(cmd.OutOrStdout(), "  org_config.%s\t%s\n", field.Key, fieldNote(field))
				}
				for _, field := range desc.UserFields {
					fmt.Fprintf(cmd.OutOrStdout(), "  user_credentials.%s\t%s\n", field.Key, fieldNote(field))
				}
			}
			return nil
		},
	}
}

func bindFlags(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		flag := flags.Lookup(name)
		if flag == nil {
			panic(fmt.Sprintf("flag %q not found", name))
		}
		if err := viper.BindPFlag(name, flag); err != nil {
			panic(err)
		}
	}
}

func fieldNote(field trackermcp.Field) string {
	parts := make([]string, 0, 2)
	if field.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "optional")
	}
	if field.Sensitive {
		parts = append(parts, "sensitive")
	}
	return strings.Join(parts, ", ")
}

func serve(ctx context.Context, srv *trackermcp.Server, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mountPath := viper.GetString("path")
	if mountPath == "" {
		mountPath = "/mcp"
	}
	mux.Handle(mountPath, srv.HTTPHandler())

	httpServer := &http.Server{
		Addr:              viper.GetString("listen"),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	gcInterval := viper.GetDuration("gc-interval")
	if gcInterval <= 0 {
		gcInterval = 5 * time.Minute
	}
	gcDone := make(chan struct{})
	go func() {
		defer close(gcDone)
		ticker := time.NewTicker(gcInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if expired := srv.CollectSessions(); len(expired) > 0 {
					logger.Debug("collected expired sessions", "count", len(expired))
				}
			}
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "addr", httpServer.Addr, "path", mountPath)
	err := httpServer.ListenAndServe()
	<-gcDone
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// loadResolver builds a static token resolver from the config file's
// tokens map.
func loadResolver() (trackermcp.StaticResolver, error) {
	var entries map[string]tokenEntry
	if err := viper.UnmarshalKey("tokens", &entries); err != nil {
		return nil, fmt.Errorf("parse tokens: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no tokens configured; add a tokens map to the config file")
	}
	resolver := make(trackermcp.StaticResolver, len(entries))
	for token, entry := range entries {
		if entry.Provider == "" {
			return nil, fmt.Errorf("token %q: provider is required", redactToken(token))
		}
		resolver[token] = trackermcp.UserCredential{
			UserID:          entry.UserID,
			Provider:        entry.Provider,
			OrgConfig:       entry.OrgConfig,
			UserCredentials: entry.UserCredentials,
			Role:            entry.Role,
		}
	}
	return resolver, nil
}

func redactToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + "****"
}

func loadConfigFile() (string, error) {
	cfgPath := strings.TrimSpace(viper.GetString("config"))
	if cfgPath == "" {
		return "", nil
	}
	expanded, err := expandPath(cfgPath)
	if err != nil {
		return "", fmt.Errorf("expand config path %q: %w", cfgPath, err)
	}
	viper.SetConfigFile(expanded)
	if err := viper.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read config file %q: %w", expanded, err)
	}
	return expanded, nil
}

func expandPath(p string) (string, error) {
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(p) == 1 {
			p = home
		} else if p[1] == '/' || p[1] == '\\' {
			p = filepath.Join(home, p[2:])
		}
	}
	return filepath.Abs(p)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func withSignalCancel(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(signals)
	}()
	return ctx
}
