package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/postgressink"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/pubsubmanager"
)

var errFlaky = errors.New("flaky subscriber refuses odd numbers")

// runPingScenario wires p1 to the subscribers s1 and s2 on "ping", publishes twice, and tears everything down.
// s2 fails on odd numbers, so the timeline contains one subscriber error.
func runPingScenario(manager *pubsubmanager.Manager) error {
	p1 := manager.NewPublisher("p1")

	s1, err := manager.NewSubscriber("s1")
	if err != nil {
		return err
	}

	s2, err := manager.NewSubscriber("s2")
	if err != nil {
		return err
	}

	if _, err = s1.Subscribe(p1, "ping", func(any) error { return nil }); err != nil {
		return err
	}

	_, err = s2.Subscribe(p1, "ping", func(payload any) error {
		if ping, ok := payload.(map[string]int); ok && ping["n"]%2 == 1 {
			return errFlaky
		}

		return nil
	})
	if err != nil {
		return err
	}

	if err = p1.Publish("ping", map[string]int{"n": 1}); err != nil && !errors.Is(err, errFlaky) {
		return err
	}

	if err = p1.Publish("ping", map[string]int{"n": 2}); err != nil {
		return err
	}

	if err = p1.Destroy(); err != nil {
		return err
	}

	s1.Destroy()
	s2.Destroy()

	return nil
}

// scenarioEnv holds what the commands build from the persistent flags.
type scenarioEnv struct {
	logger  *slog.Logger
	options []pubsubmanager.Option
	close   func()
}

func newScenarioEnv(ctx context.Context, cmd *cobra.Command) (scenarioEnv, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return scenarioEnv{}, err
	}

	noTrace, _ := cmd.Flags().GetBool(flagNoTrace)

	env := scenarioEnv{
		logger: logger,
		options: []pubsubmanager.Option{
			pubsubmanager.WithLogger(logger),
			pubsubmanager.WithTraceCapture(!noTrace),
		},
		close: func() {},
	}

	dsn, _ := cmd.Flags().GetString(flagDSN)
	if dsn == "" {
		return env, nil
	}

	table, _ := cmd.Flags().GetString(flagTable)

	sink, pool, err := newPostgresSink(ctx, dsn, table, logger)
	if err != nil {
		return scenarioEnv{}, err
	}

	logger.Info("exporting timeline to postgres", "table", sink.TableName(), "run_id", sink.RunID().String())

	env.options = append(env.options, pubsubmanager.WithSink(sink))
	env.close = pool.Close

	return env, nil
}

func newPostgresSink(
	ctx context.Context,
	dsn string,
	table string,
	logger timeline.Logger,
) (postgressink.Sink, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return postgressink.Sink{}, nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return postgressink.Sink{}, nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	sink, err := postgressink.NewSinkFromPGXPool(pool, postgressink.WithTableName(table), postgressink.WithLogger(logger))
	if err != nil {
		pool.Close()
		return postgressink.Sink{}, nil, err
	}

	if err = sink.CreateTable(ctx); err != nil {
		pool.Close()
		return postgressink.Sink{}, nil, err
	}

	return sink, pool, nil
}
