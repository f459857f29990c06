package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/course-marketplace/config"
	"github.com/Dhoini/course-marketplace/internal/api/rest"
	"github.com/Dhoini/course-marketplace/internal/api/rest/handlers"
	"github.com/Dhoini/course-marketplace/internal/api/rest/middleware"
	stripeint "github.com/Dhoini/course-marketplace/internal/integration/stripe"
	"github.com/Dhoini/course-marketplace/internal/kafka"
	"github.com/Dhoini/course-marketplace/internal/kafka/consumer"
	"github.com/Dhoini/course-marketplace/internal/kafka/producer"
	"github.com/Dhoini/course-marketplace/internal/metrics"
	"github.com/Dhoini/course-marketplace/internal/notification"
	"github.com/Dhoini/course-marketplace/internal/repository"
	"github.com/Dhoini/course-marketplace/internal/repository/postgres"
	"github.com/Dhoini/course-marketplace/internal/service"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App контейнер компонентов сервиса и их жизненного цикла
type App struct {
	cfg           *config.Config
	opts          Options
	log           *logger.Logger
	server        *rest.Server
	router        *gin.Engine
	consumer      *consumer.EnrollmentConsumer
	systemMetrics metrics.SystemMetrics
	closers       []closer
}

// Options параметры запуска, не входящие в конфигурацию окружения
type Options struct {
	// AutoMigrate применяет миграции PostgreSQL при старте
	AutoMigrate bool
}

type closer struct {
	name  string
	close func() error
}

type repositories struct {
	courses     repository.CourseRepository
	payments    repository.PaymentRepository
	enrollments repository.EnrollmentRepository
}

// New подключает инфраструктуру и собирает сервисы.
// При ошибке уже открытые соединения закрываются.
func New(ctx context.Context, cfg *config.Config, opts Options, log *logger.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, opts: opts, log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	marketplaceMetrics := metrics.NewMarketplaceMetrics(registry, log)
	a.systemMetrics = metrics.NewSystemMetrics(registry, log)

	healthChecks := make(map[string]handlers.Pinger)

	repos, err := a.buildRepositories(ctx, healthChecks)
	if err != nil {
		return nil, err
	}

	enrollments := service.NewEnrollmentService(repos.enrollments, marketplaceMetrics, log)

	publisher, err := a.buildPublisher(ctx, enrollments)
	if err != nil {
		return nil, err
	}

	notifier, err := a.buildNotifier()
	if err != nil {
		return nil, err
	}

	checkoutClient := stripeint.NewCheckoutClient(stripeint.Config{
		APIKey:     cfg.Stripe.APIKey,
		BackendURL: cfg.Stripe.BackendURL,
		Breaker: stripeint.BreakerConfig{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		},
	}, log)

	a.router = rest.SetupRouter(rest.Dependencies{
		Courses: service.NewCourseService(repos.courses, marketplaceMetrics, log),
		Checkout: service.NewCheckoutService(repos.courses, repos.payments, checkoutClient, publisher, marketplaceMetrics, service.CheckoutOptions{
			Currency:          cfg.Checkout.Currency,
			DefaultSuccessURL: cfg.Checkout.DefaultSuccessURL,
			DefaultCancelURL:  cfg.Checkout.DefaultCancelURL,
		}, log),
		Enrollments:    enrollments,
		Webhooks:       service.NewWebhookService(repos.payments, publisher, notifier, marketplaceMetrics, log),
		Verifier:       stripeint.NewWebhookVerifier(cfg.Stripe.WebhookSecret, log),
		TokenValidator: middleware.NewHMACTokenValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Metrics:        marketplaceMetrics,
		Registry:       registry,
		HealthChecks:   healthChecks,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}, log)
	a.server = rest.NewServer(a.router, cfg.Server, log)

	return a, nil
}

func (a *App) addCloser(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}

// buildRepositories выбирает хранилище по DB_DRIVER и подключает кэш курсов
func (a *App) buildRepositories(ctx context.Context, healthChecks map[string]handlers.Pinger) (repositories, error) {
	var repos repositories

	switch a.cfg.Database.Driver {
	case "memory":
		a.log.Warn("Using in-memory storage, data will be lost on restart")
		courses := repository.NewInMemoryCourseRepository(a.log)
		repos = repositories{
			courses:     courses,
			payments:    repository.NewInMemoryPaymentRepository(a.log),
			enrollments: repository.NewInMemoryEnrollmentRepository(courses, a.log),
		}
	default:
		pool, err := postgres.NewConnection(ctx, a.cfg.Database.GetDSN(), postgres.ConnectOptions{
			MaxConns:   a.cfg.Database.MaxConns,
			MaxRetries: 5,
		}, a.log)
		if err != nil {
			return repositories{}, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.addCloser("postgres", func() error { pool.Close(); return nil })
		healthChecks["postgres"] = pool.Ping

		if a.opts.AutoMigrate {
			applied, err := postgres.Migrate(ctx, pool, a.log)
			if err != nil {
				return repositories{}, err
			}
			a.log.Infow("Migrations applied", "count", applied)
		}

		repos = repositories{
			courses:     postgres.NewCourseRepository(pool, a.log),
			payments:    postgres.NewPaymentRepository(pool, a.log),
			enrollments: postgres.NewEnrollmentRepository(pool, a.log),
		}
	}

	if a.cfg.Redis.Addr == "" {
		return repos, nil
	}

	cache, err := repository.NewRedisCourseCache(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB, a.cfg.Redis.TTL, a.log)
	if err != nil {
		// Кэш необязателен: без Redis курсы читаются напрямую
		a.log.Warnw("Course cache disabled", "error", err)
		return repos, nil
	}
	a.addCloser("redis", cache.Close)
	healthChecks["redis"] = cache.Ping
	repos.courses = repository.NewCachedCourseRepository(repos.courses, cache, a.log)

	return repos, nil
}

// buildPublisher возвращает Kafka-продюсер или синхронный издатель, если Kafka выключена
func (a *App) buildPublisher(ctx context.Context, enrollments service.EnrollmentService) (service.PaymentEventPublisher, error) {
	if !a.cfg.Kafka.Enabled {
		a.log.Info("Kafka disabled, enrollments are confirmed inline")
		return service.NewInlinePublisher(enrollments, a.log), nil
	}

	kafkaCfg := kafka.NewConfig(a.cfg.Kafka.Brokers, a.cfg.Kafka.GroupID)

	// Брокер может подниматься дольше сервиса
	ensure := func() error { return kafka.EnsureTopics(ctx, kafkaCfg.Brokers, a.log) }
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.RetryNotify(ensure, policy, func(err error, d time.Duration) {
		a.log.Warnw("Kafka is not ready, retrying", "error", err, "in", d.String())
	}); err != nil {
		return nil, fmt.Errorf("failed to prepare kafka topics: %w", err)
	}

	syncProducer, err := producer.NewSyncProducer(kafkaCfg, a.log)
	if err != nil {
		return nil, err
	}
	paymentProducer := producer.NewPaymentProducer(syncProducer, a.log)
	a.addCloser("kafka producer", paymentProducer.Close)

	a.consumer, err = consumer.NewEnrollmentConsumer(kafkaCfg, enrollments, a.log)
	if err != nil {
		return nil, err
	}
	a.addCloser("kafka consumer", a.consumer.Close)

	return paymentProducer, nil
}

func (a *App) buildNotifier() (notification.Notifier, error) {
	cfg := a.cfg.Notifier

	switch cfg.Driver {
	case "smtp":
		return notification.NewSMTPNotifier(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.From,
		}, a.log), nil
	case "rabbitmq":
		n, err := notification.NewRabbitMQNotifier(cfg.RabbitMQURL, a.log)
		if err != nil {
			return nil, err
		}
		a.addCloser("rabbitmq", n.Close)
		return n, nil
	default:
		return notification.NewLogNotifier(a.log), nil
	}
}

// Router возвращает настроенный gin.Engine
func (a *App) Router() *gin.Engine {
	return a.router
}

// Run запускает HTTP сервер и consumer group и блокируется до отмены ctx
func (a *App) Run(ctx context.Context) error {
	a.systemMetrics.StartRecording(15 * time.Second)
	defer a.systemMetrics.Stop()

	errCh := make(chan error, 2)

	go func() {
		errCh <- a.server.Start()
	}()

	consumerCtx, cancelConsumer := context.WithCancel(ctx)
	defer cancelConsumer()
	if a.consumer != nil {
		go func() {
			if err := a.consumer.Run(consumerCtx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	cancelConsumer()

	shutdownTimeout := time.Duration(a.cfg.Server.ShutdownTimeout) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("server forced to shutdown: %w", err))
	}
	return runErr
}

// Close освобождает ресурсы в порядке, обратном открытию
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.log.Warnw("Failed to close resource", "resource", c.name, "error", err)
		}
	}
	a.closers = nil
}
