package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/partify/internal/config"
	"github.com/Skotchmaster/partify/internal/es"
	"github.com/Skotchmaster/partify/internal/httpserver"
	"github.com/Skotchmaster/partify/internal/logging"
	"github.com/Skotchmaster/partify/internal/metrics"
	authmw "github.com/Skotchmaster/partify/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/partify/internal/middleware/logging"
	"github.com/Skotchmaster/partify/internal/mykafka"
	"github.com/Skotchmaster/partify/internal/service"
	"github.com/Skotchmaster/partify/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, closeStore, err := store.Open(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("store open: %v", err)
	}
	logger.Info("store_ready", "driver", cfg.StoreDriver)

	var events service.EventPublisher
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		events = producer

		topicCtx, topicCancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = mykafka.EnsureTopics(topicCtx, cfg.KafkaBrokers[0],
			service.TopicProductEvents, service.TopicOrderEvents, service.TopicUserEvents)
		topicCancel()
		if err != nil {
			logger.Warn("kafka_topics_not_ensured", "broker", cfg.KafkaBrokers[0], "error", err)
		}
	}

	var index service.ProductIndex
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := es.NewClient(esCtx, es.ClientConfig{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		esCancel()
		if err != nil {
			logger.Warn("search_index_disabled", "error", err)
		} else {
			index = es.NewProductIndex(client, cfg.ESIndex)
		}
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector()
	reg.MustRegister(collector, collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	catalog := &service.CatalogService{Repo: st, Index: index, Events: events}
	orders := &service.OrderService{
		Orders:       st,
		Users:        st,
		Products:     st,
		Events:       events,
		Metrics:      collector,
		PricePolicy:  cfg.OrderPricePolicy,
		StrictStatus: cfg.StrictOrderStatus,
	}
	users := &service.UserService{Repo: st, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.JWTTTL, Events: events}
	admin := &service.AdminService{Products: st, Orders: st, Users: st, Events: events}

	catalogHTTP := &httpserver.CatalogHTTP{Svc: catalog}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(collector.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: catalogHTTP,
		OrderHandler:   &httpserver.OrderHTTP{Svc: orders},
		AuthHandler:    &httpserver.AuthHTTP{Svc: users},
		AdminHandler:   &httpserver.AdminHTTP{Admin: admin, Catalog: catalogHTTP, Orders: orders, Users: users},
		Auth:           authmw.New(cfg.JWTSecret, st),
		Ready:          st.Ping,
		Metrics:        metrics.Handler(reg),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}
	if err := closeStore(shutdownCtx); err != nil {
		logger.Error("store_close_failed", "error", err)
	}

	logger.Info("shutdown_complete")
}
