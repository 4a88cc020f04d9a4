package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mercadolab/workflow-engine/internal/adminserver"
	"github.com/mercadolab/workflow-engine/internal/eventproc"
	"github.com/mercadolab/workflow-engine/internal/logger"
	"github.com/mercadolab/workflow-engine/internal/taskproc"
)

func newStartEventProcessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start-event-process <engine_uid>",
		Short: "Run the Event process's poll loop for an existing Engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("StartEventProcess")

			engineUID, err := parseUID(args[0])
			if err != nil {
				return err
			}

			cfg := loadConfig()
			d := openStores(cfg)
			defer d.close()

			poller := eventproc.New(d.db, d.engines, d.evs, d.outbox, d.q, cfg.Event.IdleInterval)

			ctx, running := withStopSignal()
			return poller.Run(ctx, engineUID, running)
		},
	}
}

func newStartTaskProcessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start-task-process <engine_uid>",
		Short: "Run the Task process's worker pool for an existing Engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("StartTaskProcess")

			engineUID, err := parseUID(args[0])
			if err != nil {
				return err
			}

			cfg := loadConfig()
			d := openStores(cfg)
			defer d.close()

			pool := taskproc.New(d.engines, d.tasks, d.q, cfg.Worker.Concurrency, cfg.Worker.IdleInterval, cfg.Worker.ShutdownTimeout).
				WithHeartbeat(d.q.Client(), engineUID, cfg.Worker.HeartbeatInterval, cfg.Worker.HeartbeatTimeout)

			ctx, running := withStopSignal()

			// The admin dashboard is supplementary observability: the
			// task process, which already owns the pool's metrics and
			// heartbeat, starts it when enabled.
			if cfg.Server.Enabled {
				srv := adminserver.NewServer(cfg, d.pub)
				srv.Start(ctx)
				go func() {
					if err := srv.ListenAndServe(); err != nil {
						logger.Error().Err(err).Msg("admin server stopped")
					}
				}()
				defer srv.Stop()
			}

			return pool.Run(ctx, engineUID, running)
		},
	}
}

// withStopSignal returns a context and a running flag that flips to
// false on SIGINT/SIGTERM, the local half of the two cooperating
// cancellation paths Run() expects.
func withStopSignal() (context.Context, *atomic.Bool) {
	ctx, cancel := context.WithCancel(context.Background())
	running := &atomic.Bool{}
	running.Store(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		running.Store(false)
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	return ctx, running
}
