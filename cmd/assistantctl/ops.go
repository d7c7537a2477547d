package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"content-assistant/internal/cache"
	"content-assistant/internal/events"
)

func cacheCmd(c *cli) *cobra.Command {
	cacheRoot := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}
	cacheRoot.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every cached processing result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.CacheProvider != "redis" {
				return fmt.Errorf("cache purge requires CACHE_PROVIDER=redis (got %q)", c.cfg.CacheProvider)
			}
			rc, err := cache.NewRedisCache(c.cfg.RedisAddr, c.cfg.RedisPassword)
			if err != nil {
				return err
			}
			defer rc.Close()
			return purge(cmd.Context(), cmd, rc)
		},
	})
	return cacheRoot
}

func purge(ctx context.Context, cmd *cobra.Command, c cache.Cache) error {
	n, err := c.Purge(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "purged %d cached results\n", n)
	return nil
}

func eventsCmd(c *cli) *cobra.Command {
	eventsRoot := &cobra.Command{
		Use:   "events",
		Short: "Inspect chat events",
	}
	var types []string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print chat events as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.NATSURL == "" {
				return fmt.Errorf("NATS_URL is required")
			}
			nc, err := nats.Connect(c.cfg.NATSURL, nats.Name("assistantctl"))
			if err != nil {
				return fmt.Errorf("failed to connect to NATS: %w", err)
			}
			pub := events.NewNATS(c.log, nc)
			defer pub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return tailEvents(ctx, cmd, pub, types)
		},
	}
	tail.Flags().StringSliceVar(&types, "type",
		[]string{string(events.TypeMessageCreated), string(events.TypeChatDeleted)}, "event types to follow")
	eventsRoot.AddCommand(tail)
	return eventsRoot
}

func tailEvents(ctx context.Context, cmd *cobra.Command, p events.Publisher, types []string) error {
	out := make(chan events.Event)
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range types {
		t := events.Type(t)
		g.Go(func() error {
			return p.Subscribe(gctx, t, func(ctx context.Context, ev events.Event) error {
				select {
				case out <- ev:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
		})
	}
	go func() {
		_ = g.Wait()
		close(out)
	}()

	for ev := range out {
		if err := printJSON(cmd.OutOrStdout(), ev); err != nil {
			return err
		}
	}
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
