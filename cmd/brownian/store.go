package main

import (
	"fmt"

	"github.com/aretw0/brownian/pkg/adapters/file"
	"github.com/aretw0/brownian/pkg/adapters/memory"
	"github.com/aretw0/brownian/pkg/adapters/redis"
	"github.com/aretw0/brownian/pkg/adapters/sqlite"
	"github.com/aretw0/brownian/pkg/persistence/middleware"
	"github.com/aretw0/brownian/pkg/ports"
	"github.com/aretw0/brownian/pkg/session"
	"github.com/spf13/cobra"
)

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", "memory", "Snapshot store: memory, file, sqlite or redis")
	cmd.Flags().String("store-dir", "", "Directory of the file store (default .brownian/runs)")
	cmd.Flags().String("store-db", "", "Database of the sqlite store (default .brownian/runs.db)")
	cmd.Flags().String("redis-addr", "localhost:6379", "Redis address for the redis store")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().Bool("redis-lock", false, "Guard each run with a redis lock shared by all writers")
	cmd.Flags().Bool("drop-coordinates", false, "Record counts only, without molecule coordinates")
	cmd.Flags().Int("sample", 1, "Record every nth snapshot")
}

// openStore returns the store selected by --store, wrapped by the recording
// middlewares, and a function releasing it.
func openStore(cmd *cobra.Command) (ports.StateStore, func() error, error) {
	mgr, release, err := openRuns(cmd)
	if err != nil {
		return nil, nil, err
	}
	var mws []middleware.Middleware
	if every, _ := cmd.Flags().GetInt("sample"); every > 1 {
		mws = append(mws, middleware.Sample(every))
	}
	if drop, _ := cmd.Flags().GetBool("drop-coordinates"); drop {
		mws = append(mws, middleware.DropCoordinates())
	}
	return middleware.Chain(mgr, mws...), release, nil
}

// openRuns returns the backend selected by --store behind a run-level session manager.
func openRuns(cmd *cobra.Command) (*session.Manager, func() error, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, release, err := openBackend(cmd)
	if err != nil {
		return nil, nil, err
	}
	opts := []session.Option{session.WithLogger(logger)}
	if rs, ok := store.(*redis.Store); ok {
		if lock, _ := cmd.Flags().GetBool("redis-lock"); lock {
			opts = append(opts, session.WithLocker(redis.NewLocker(rs.Client(), "brownian:"), 0))
		}
	}
	return session.NewManager(store, opts...), release, nil
}

func openBackend(cmd *cobra.Command) (ports.StateStore, func() error, error) {
	kind, _ := cmd.Flags().GetString("store")
	noop := func() error { return nil }

	switch kind {
	case "memory":
		return memory.NewStore(), noop, nil
	case "file":
		dir, _ := cmd.Flags().GetString("store-dir")
		return file.New(dir), noop, nil
	case "sqlite":
		path, _ := cmd.Flags().GetString("store-db")
		s, err := sqlite.Open(cmd.Context(), path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		password, _ := cmd.Flags().GetString("redis-password")
		db, _ := cmd.Flags().GetInt("redis-db")
		s := redis.New(addr, password, db)
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q: use memory, file, sqlite or redis", kind)
}
