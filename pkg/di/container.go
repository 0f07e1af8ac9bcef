// Package di assembles the application object graph. Construction is
// explicit: every collaborator is built here, in dependency order, with no
// registry or reflection.
package di

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/goliatone/go-course-catalog/cache"
	"github.com/goliatone/go-course-catalog/config"
	"github.com/goliatone/go-course-catalog/enroll"
	"github.com/goliatone/go-course-catalog/events"
	"github.com/goliatone/go-course-catalog/identity"
	"github.com/goliatone/go-course-catalog/internal/cacheinfra"
	"github.com/goliatone/go-course-catalog/obs"
	"github.com/goliatone/go-course-catalog/repocache"
	"github.com/goliatone/go-course-catalog/storage"
)

// Container holds the wired application graph.
type Container struct {
	Config   config.Config
	Logger   *slog.Logger
	DB       *bun.DB
	Cache    cache.Gateway
	Observer obs.Observer

	Publisher events.Publisher
	Identity  identity.Client

	Courses     *repocache.CourseRepository
	Sections    *repocache.SectionRepository
	Lessons     *repocache.LessonRepository
	Quizzes     *repocache.QuizRepository
	Enrollments *repocache.EnrollmentRepository
	Reviews     *repocache.ReviewRepository
	Progress    *repocache.ProgressRepository

	Enroll *enroll.Service

	closers []func() error
}

// New builds the container from config. The database dialect, cache
// backend, and publisher are all selected by which config fields are set.
func New(cfg config.Config, log *slog.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Container{Config: cfg, Logger: log}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	c.DB = db
	c.closers = append(c.closers, db.Close)

	gw, err := c.openCache(cfg, log)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Cache = gw

	observer, err := obs.NewOTel(cfg.ServiceName)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Observer = observer

	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaClientID)
		c.Publisher = kp
		c.closers = append(c.closers, kp.Close)
	} else {
		c.Publisher = events.Nop{}
	}

	if cfg.IdentityBaseURL != "" {
		c.Identity = identity.NewHTTPClient(cfg.IdentityBaseURL)
	}

	deps := repocache.Deps{
		Cache:    c.Cache,
		Codec:    cache.NewMsgpackCodec(),
		Observer: c.Observer,
		Logger:   log,
		TTL:      cfg.CacheTTL,
	}

	courseStore := storage.NewCourseStore(db)
	sectionStore := storage.NewSectionStore(db)

	c.Courses = repocache.NewCourseRepository(courseStore, deps)
	c.Sections = repocache.NewSectionRepository(sectionStore, courseStore, deps)
	c.Lessons = repocache.NewLessonRepository(storage.NewLessonStore(db), sectionStore, courseStore, deps)
	c.Quizzes = repocache.NewQuizRepository(storage.NewQuizStore(db), courseStore, deps)
	c.Enrollments = repocache.NewEnrollmentRepository(storage.NewEnrollmentStore(db), deps)
	c.Reviews = repocache.NewReviewRepository(storage.NewReviewStore(db), deps)
	c.Progress = repocache.NewProgressRepository(storage.NewProgressStore(db), deps)

	c.Enroll = enroll.NewService(c.Courses, c.Enrollments, c.Identity, c.Publisher, log)

	return c, nil
}

// Close releases every resource the container opened, last first.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func openDB(cfg config.Config) (*bun.DB, error) {
	if cfg.DatabaseDSN != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DatabaseDSN)))
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}
	sqldb, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps the shared in-memory database alive and avoids
	// sqlite write-lock contention.
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func (c *Container) openCache(cfg config.Config, log *slog.Logger) (cache.Gateway, error) {
	if cfg.RedisAddr != "" {
		gw, err := cacheinfra.NewRedisGateway(cacheinfra.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, gw.Close)
		return gw, nil
	}
	memCfg := cache.DefaultConfig()
	memCfg.TTL = cfg.CacheTTL
	memCfg.Capacity = cfg.CacheCapacity
	memCfg.NumShards = cfg.CacheNumShards
	return cache.NewMemoryGateway(memCfg)
}
