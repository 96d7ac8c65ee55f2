/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fintrack-app/apiserver/config"
	"github.com/fintrack-app/apiserver/internal/events"
	"github.com/fintrack-app/apiserver/internal/logger"
)

// workerCmd consumes signup events published by the API server.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consumes signup events",
	Long: `Consumes user.registered events from the configured broker and
processes post-registration work such as welcome mail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := logger.New(cfg.LogLevel)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		broker, err := events.NewBroker(ctx, cfg.Events)
		if err != nil {
			return fmt.Errorf("init broker failed: %w", err)
		}
		if broker == nil {
			return errors.New("EVENTS_BACKEND is required for the worker")
		}

		bus := events.NewBus(broker)
		defer func() {
			_ = bus.Close()
		}()

		log.Info("worker started", "backend", cfg.Events.Backend)

		err = bus.SubscribeUserRegistered(ctx, func(ctx context.Context, event events.UserRegistered) error {
			// TODO: hand off to the mail service once its API is settled.
			log.Info("welcome new user",
				"user_id", event.UserID,
				"email", event.Email)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
