package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/sadopc/studylog/internal/clock"
	"github.com/sadopc/studylog/internal/config"
	"github.com/sadopc/studylog/internal/logging"
	"github.com/sadopc/studylog/internal/session"
	"github.com/sadopc/studylog/internal/store"
	"github.com/sadopc/studylog/internal/timer"
)

// Runtime holds the opened database, session store and logger shared by
// every command.
type Runtime struct {
	Config   config.Config
	Sessions *session.Store
	Logger   hclog.Logger
	Location *time.Location
	Clock    clock.Clock

	// Period is the tick interval handed to timer engines.
	Period time.Duration

	closers []io.Closer
}

// Open wires config into a logger, the SQLite key-value store and the
// session store loaded from it.
func Open(cfg config.Config) (*Runtime, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := store.New(cfg.DBPath)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	c := clock.System{}
	backend := session.NewLocalState(db, cfg.StorageKey, logger.Named("persist"))
	sessions := session.NewStore(backend,
		session.WithClock(c),
		session.WithLogger(logger.Named("sessions")),
	)
	logger.Info("opened session store", "db", cfg.DBPath, "sessions", sessions.Len())

	return &Runtime{
		Config:   cfg,
		Sessions: sessions,
		Logger:   logger,
		Location: loc,
		Clock:    c,
		Period:   timer.DefaultPeriod,
		closers:  []io.Closer{db, logCloser},
	}, nil
}

// Close releases the database and log file.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewEngine builds a timer engine over the runtime's session store.
func (r *Runtime) NewEngine(sched timer.Scheduler) *timer.Engine {
	return timer.New(r.Sessions, sched,
		timer.WithClock(r.Clock),
		timer.WithLocation(r.Location),
		timer.WithLogger(r.Logger.Named("timer")),
		timer.WithPeriod(r.Period),
		timer.WithFlushEvery(r.Config.FlushEvery),
	)
}

// Now is the current time in the configured zone.
func (r *Runtime) Now() time.Time {
	return r.Clock.Now().In(r.Location)
}
