package cli

import (
	"fmt"
	"os"

	"github.com/mercadolab/workflow-engine/internal/config"
	"github.com/mercadolab/workflow-engine/internal/events"
	"github.com/mercadolab/workflow-engine/internal/logger"
	"github.com/mercadolab/workflow-engine/internal/queue"
	"github.com/mercadolab/workflow-engine/internal/store"
)

// deps bundles every store/queue connection a CLI verb might need. Not
// every verb uses every field; openStores fills them all, and close
// skips any that are nil.
type deps struct {
	cfg     *config.Config
	db      *store.DB
	engines store.EngineStore
	evs     store.EventStore
	tasks   store.TaskStore
	outbox  store.OutboxStore
	q       *queue.Queue
	pub     *events.RedisPubSub
}

// loadConfig loads configuration and initializes the logger, the first
// step every verb performs.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.Engine.Environment != "prod")
	return cfg
}

// openStores opens the database and Redis connections and wraps them
// in the store interfaces, exiting the process on failure.
func openStores(cfg *config.Config) *deps {
	db, err := store.Open(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}

	q, err := queue.New(cfg.Redis, cfg.Engine.QueueName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to redis: %v\n", err)
		os.Exit(1)
	}

	return &deps{
		cfg:     cfg,
		db:      db,
		engines: store.NewPostgresEngineStore(db),
		evs:     store.NewPostgresEventStore(db),
		tasks:   store.NewPostgresTaskStore(db),
		outbox:  store.NewPostgresOutboxStore(db),
		q:       q,
		pub:     events.NewRedisPubSub(q.Client()),
	}
}

func (d *deps) close() {
	if d.q != nil {
		_ = d.q.Close()
	}
	if d.db != nil {
		_ = d.db.Close()
	}
}
