package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"meeting-assistant/internal/app"
	"meeting-assistant/internal/calcom"
	"meeting-assistant/internal/config"
	"meeting-assistant/internal/logger"
	"meeting-assistant/internal/scheduling"
	"meeting-assistant/internal/server"
)

var (
	v = viper.New()

	rootCmd = &cobra.Command{
		Use:          "meeting-assistant",
		Short:        "Scheduling backend for a conversational meeting assistant, backed by Cal.com",
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Verify Cal.com credentials and print the account",
		RunE:  runCheck,
	}

	toolsCmd = &cobra.Command{
		Use:   "tools",
		Short: "Print the function-call tool definitions as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(app.Tools())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	serveCmd.Flags().String("port", "", "port to listen on")

	must(v.BindPFlag("LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level")))
	must(v.BindPFlag("PORT", serveCmd.Flags().Lookup("port")))

	rootCmd.AddCommand(serveCmd, checkCmd, toolsCmd)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

type deps struct {
	cfg    *config.Config
	logger *zap.Logger
	svc    *scheduling.Service
}

func setup(cmd *cobra.Command) (*deps, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	client := calcom.NewClient(calcom.Config{
		BaseURL:  cfg.CalBaseURL,
		APIKey:   cfg.CalAPIKey,
		Username: cfg.CalUsername,
		Timeout:  cfg.CalTimeout,
	}, log)
	return &deps{cfg: cfg, logger: log, svc: scheduling.NewService(client, log)}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	d, err := setup(cmd)
	if err != nil {
		return err
	}
	defer d.logger.Sync() //nolint:errcheck

	if d.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := app.New(d.svc, d.logger).Router(app.RouterOptions{
		StaticTokens:    d.cfg.Tokens(),
		JWTSecret:       d.cfg.JWTHMACSecret,
		RateLimitPerMin: d.cfg.RateLimitPerMin,
		TrustedProxies:  d.cfg.Proxies(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d.logger.Info("meeting assistant starting",
		zap.String("env", d.cfg.Env),
		zap.String("cal_username", d.cfg.CalUsername),
		zap.String("cal_base_url", d.cfg.CalBaseURL))
	return server.Run(ctx, router, d.cfg.Port, d.logger)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	d, err := setup(cmd)
	if err != nil {
		return err
	}
	defer d.logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	user, err := d.svc.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("fetching account: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "account: %s (id %d, time zone %s)\n", user.Username, user.ID, user.TimeZone)

	if id, ok, err := d.svc.DefaultScheduleID(ctx); err != nil {
		return fmt.Errorf("fetching schedules: %w", err)
	} else if ok {
		fmt.Fprintf(out, "default schedule: %d\n", id)
	} else {
		fmt.Fprintln(out, "default schedule: none")
	}

	types, err := d.svc.ListMeetingTypes(ctx)
	if err != nil {
		return fmt.Errorf("fetching meeting types: %w", err)
	}
	fmt.Fprintf(out, "meeting types: %d\n", len(types))
	for _, t := range types {
		fmt.Fprintf(out, "  %d  %-30s %d min\n", t.ID, t.Title, t.DurationMinutes)
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
