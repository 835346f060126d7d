package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"pantry/internal/audit"
	"pantry/internal/config"
)

type recentReader interface {
	Recent(ctx context.Context, count int64) ([]redis.XMessage, error)
	Close() error
}

var openStreamFunc = func(ctx context.Context, cfg config.AuditConfig) (recentReader, error) {
	if !cfg.Enabled() {
		return nil, errors.New("REDIS_ADDR must be set")
	}
	return audit.NewStream(ctx, audit.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Stream:   cfg.Stream,
	})
}

func newAuditCommand() *cobra.Command {
	var count int64
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect recipe composition events",
	}
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print the most recent composition events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			stream, err := openStreamFunc(cmd.Context(), cfg.Audit)
			if err != nil {
				return err
			}
			defer stream.Close()

			messages, err := stream.Recent(cmd.Context(), count)
			if err != nil {
				return err
			}
			for _, message := range messages {
				fmt.Fprintln(cmd.OutOrStdout(), formatMessage(message))
			}
			return nil
		},
	}
	tail.Flags().Int64VarP(&count, "count", "n", 20, "number of events to show")
	cmd.AddCommand(tail)
	return cmd
}

func formatMessage(message redis.XMessage) string {
	keys := make([]string, 0, len(message.Values))
	for key := range message.Values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(message.ID)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, message.Values[key])
	}
	return b.String()
}
