package cli

import (
	"errors"
	"fmt"

	"Faran/internal/config"
	"Faran/internal/pkg"
	rrepo "Faran/internal/repository/redis"
	"Faran/internal/repository/store"
	"Faran/internal/router"
	"Faran/internal/service"
	"Faran/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// app 持有 serve 需要的全部依赖
type app struct {
	db      *gorm.DB
	rdb     *redis.Client
	engine  *gin.Engine
	relayer *service.OutboxRelayer
	closers []func() error
}

func newApp(cfg *config.Config, log *logrus.Logger) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	db, err := store.Open(cfg.Database, gormLogger(log))
	if err != nil {
		return nil, err
	}
	a.db = db
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	if err := store.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	rdb, err := rrepo.NewClient(cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.rdb = rdb
	a.closers = append(a.closers, rdb.Close)

	files, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.WithField("type", files.Name()).Info("storage initialized")

	hasher, err := pkg.NewPasswordHasher(cfg.Password.Algorithm, cfg.Password.BcryptCost)
	if err != nil {
		return nil, err
	}
	tokens := pkg.NewTokenIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	sessions := rrepo.NewSessionRepository(rdb, cfg.JWT.RefreshTTL)
	emails := pkg.NewEmailValidator(cfg.Email.CheckDeliverability, nil)

	follows := service.NewFollowService(db)
	svcs := router.Services{
		Users:   service.NewUserService(db, sessions, tokens, hasher, emails, files, log),
		Follows: follows,
		Feed:    service.NewFeedService(db),
		Profile: service.NewProfileService(db, follows),
		Search:  service.NewSearchService(db),
		Uploads: service.NewUploadService(db, files, log),
	}
	a.engine = router.InitRouter(svcs, router.NewOptions(cfg), log)

	sender := service.LogSender(log)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, producer.Close)
		sender = service.KafkaSender(producer)
	}
	a.relayer = service.NewOutboxRelayer(db, sender, cfg.Outbox.Interval, cfg.Outbox.BatchSize, log.WithField("component", "outbox"))

	ok = true
	return a, nil
}

// Close 逆序关闭
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
