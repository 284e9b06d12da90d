package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/depotbot/internal/config"
	"github.com/JonMunkholm/depotbot/internal/core"
	"github.com/JonMunkholm/depotbot/internal/discord"
	"github.com/JonMunkholm/depotbot/internal/logging"
	"github.com/JonMunkholm/depotbot/internal/version"
	"github.com/JonMunkholm/depotbot/internal/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and post the report on schedule",
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return configError(err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded",
		"version", version.String(),
		"channel_id", cfg.Discord.ChannelID,
		"interval", cfg.Schedule.Interval,
		"command", cfg.Discord.CommandPrefix+cfg.Discord.CommandName,
		"missing_fields", cfg.Sheet.MissingFields,
		"server_enabled", cfg.Server.Enabled,
	)
	slog.Debug("full configuration", "config", cfg.String())

	// One client for the sheet and the Discord REST API; its idle
	// connections are released on exit.
	hc := &http.Client{Timeout: cfg.Sheet.Timeout}
	defer hc.CloseIdleConnections()

	svc, err := newService(cfg, hc)
	if err != nil {
		return err
	}

	bot, err := discord.New(cfg.Discord.Token, discord.WithHTTPClient(hc))
	if err != nil {
		return err
	}

	resolver := bot.Resolver(cfg.Discord.ChannelIDString())
	scheduler := core.NewScheduler(svc, resolver, core.SchedulerConfig{
		Interval:   cfg.Schedule.Interval,
		RunOnStart: cfg.Schedule.RunOnStart,
	})
	commands := core.NewCommandHandler(svc)

	bot.OnReady(scheduler)
	bot.OnCommand(cfg.Discord.CommandPrefix+cfg.Discord.CommandName, commands)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Open(ctx); err != nil {
		slog.Error("failed to connect to Discord", "error", err)
		return err
	}
	slog.Info("connected to Discord gateway")

	g, gctx := errgroup.WithContext(ctx)

	var server *web.Server
	if cfg.Server.Enabled {
		server = web.NewServer(web.Deps{
			Scheduler: scheduler,
			Commands:  commands,
			Resolver:  resolver,
			Builder:   svc,
			Title:     cfg.Report.Title,
			Version:   version.String(),
		}, web.Options{
			ReadTimeout: cfg.Server.ReadTimeout,
		})
		g.Go(func() error {
			return server.Start(cfg.Server.Addr())
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := scheduler.Stop(shutdownCtx); err != nil {
			slog.Warn("report cycle did not finish in time", "error", err)
		}

		if active := commands.Active(); active > 0 {
			slog.Info("waiting for report commands to complete", "active", active)
			if err := commands.Drain(shutdownCtx); err != nil {
				slog.Warn("report commands did not complete in time", "error", err)
			}
		}

		if server != nil {
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("ops server shutdown error", "error", err)
			}
		}

		if err := bot.Close(); err != nil {
			slog.Error("failed to close Discord session", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("bot stopped with error", "error", err)
		return err
	}
	slog.Info("bot stopped", "cycles", scheduler.Cycles())
	return nil
}
