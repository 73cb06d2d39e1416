package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/grigobio237-eng/Youniqle-sub001/configs"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/adapter/cache"
	httpadapter "github.com/grigobio237-eng/Youniqle-sub001/internal/adapter/http"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/adapter/http/middleware"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/adapter/kafka"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/adapter/queue"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/adapter/repo"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/gateway"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/logging"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logger := logging.Init(cfg.App.Name, cfg.App.LogFile)

	// database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, err
	}

	logger.Info("payment-api: starting up")

	// redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// stores
	orderRepo := repo.NewMySQLOrderRepo(db)
	partnerRepo := repo.NewMySQLPartnerRepo(db)
	settlementRepo := repo.NewMySQLSettlementRepo(db)
	cartStore := cache.NewRedisCartStore(rdb)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisStatusCache(rdb, cfg.Redis.StatusTTL)

	// rabbitmq: payment lifecycle events. Optional at startup; the callback
	// path treats publish failures as best-effort anyway.
	var events usecase.EventPublisher
	var closeRabbit = func() {}
	if conn, err := amqp.Dial(cfg.Rabbit.URL); err != nil {
		logger.Error("rabbitmq unavailable, events disabled", "err", err)
	} else if ch, err := conn.Channel(); err != nil {
		logger.Error("rabbitmq channel failed, events disabled", "err", err)
		_ = conn.Close()
	} else if producer, err := queue.NewRabbitProducer(ch); err != nil {
		logger.Error("rabbitmq topology failed, events disabled", "err", err)
		_ = conn.Close()
	} else {
		events = producer
		closeRabbit = func() { _ = ch.Close(); _ = conn.Close() }
	}

	// payment gateway client: the injected transport carries the only
	// timeout/cancellation boundary of the callback path.
	requester := gateway.NewRequester(
		&http.Client{Timeout: cfg.Gateway.ApprovalTimeout},
		cfg.Gateway.MerchantID,
		cfg.Gateway.MerchantSecret,
	)

	// use cases
	settleUC := usecase.NewSettlePayment(orderRepo, cartStore, requester, events, statusCache, logging.New("settle"))
	createUC := usecase.NewCreateOrder(orderRepo, partnerRepo, idem)
	reportUC := usecase.NewSettlementReport(settlementRepo)

	// fulfillment feed
	stopKafka := setupFulfillmentFeed(cfg, orderRepo, statusCache)

	// handlers + router
	ph := httpadapter.NewPaymentHandler(settleUC, cfg)
	oh := httpadapter.NewOrderHandler(createUC, orderRepo)
	sh := httpadapter.NewSettlementHandler(reportUC)
	th := httpadapter.NewTokenHandler(cfg)
	authz := middleware.NewAuthz(cfg)
	router := httpadapter.NewRouter(ph, oh, sh, th, authz)

	cleanup := func() {
		stopKafka()
		closeRabbit()
		_ = rdb.Close()
		_ = db.Close()
	}
	return &App{Router: router}, cleanup, nil
}

// setupFulfillmentFeed consumes fulfillment status events and advances order
// lifecycles through the ledger's guarded transitions.
func setupFulfillmentFeed(cfg configs.Config, orders usecase.OrderStore, statusCache usecase.StatusCache) func() {
	log := logging.New("fulfillment")

	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		log.Error("kafka unavailable, fulfillment feed disabled", "err", err)
		return func() {}
	}

	h := kafka.NewFulfillmentHandler(orders, statusCache, log)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.FulfillmentTopic}, h.Handle, log)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("fulfillment consumer stopped", "err", err)
		}
	}()
	return func() {
		cancel()
		_ = grp.Close()
	}
}
