package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/catalog/internal/console"
	"github.com/vladislavdragonenkov/catalog/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/catalog/internal/health"
	"github.com/vladislavdragonenkov/catalog/internal/service/orders"
	"github.com/vladislavdragonenkov/catalog/internal/service/sales"
	"github.com/vladislavdragonenkov/catalog/internal/storage/memory"
	"github.com/vladislavdragonenkov/catalog/internal/storage/postgres"
	"github.com/vladislavdragonenkov/catalog/internal/version"
)

// Config описывает минимальные настройки запуска приложения.
type Config struct {
	// PostgresDSN — адрес базы. Пустое значение включает in-memory хранилище.
	PostgresDSN string
	// MetricsAddr — адрес HTTP-сервера метрик и health-проверок.
	// Пустое значение отключает сервер.
	MetricsAddr string
	// Input и Output — потоки консольного меню. Nil означает
	// os.Stdin/os.Stdout; тесты подставляют сценарий и буфер.
	Input  io.Reader
	Output io.Writer
}

// DefaultConfig возвращает конфигурацию по умолчанию: in-memory
// хранилище и метрики на :9090.
func DefaultConfig() Config {
	return Config{
		PostgresDSN: "",
		MetricsAddr: ":9090",
	}
}

// repositories собирает порты хранилища, выбранные по конфигурации.
type repositories struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	clients    domain.ClientRepository
	orders     domain.OrderRepository
	reporter   domain.SalesReporter
}

func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	healthHandler := healthcheck.NewHandler(version.GetVersion())

	var repos repositories
	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("failed to close postgres store")
			}
		}()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		logger.Info("используем postgres хранилище")

		repos = repositories{
			categories: postgres.NewCategoryRepository(store),
			products:   postgres.NewProductRepository(store),
			clients:    postgres.NewClientRepository(store),
			orders:     postgres.NewOrderRepository(store),
			reporter:   postgres.NewSalesRepository(store),
		}
		healthHandler.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(pingCtx)
		}))
	} else {
		logger.Info("используем in-memory хранилище")
		clients := memory.NewClientRepository()
		ordersRepo := memory.NewOrderRepository(clients)
		repos = repositories{
			categories: memory.NewCategoryRepository(),
			products:   memory.NewProductRepository(),
			clients:    clients,
			orders:     ordersRepo,
			reporter:   memory.NewSalesReporter(ordersRepo, clients),
		}
	}

	orderSvc := orders.NewService(repos.orders, repos.products, repos.clients,
		logger.WithField("component", "orders"))
	salesSvc := sales.NewService(repos.reporter, logger.WithField("component", "sales"))

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	}

	in := io.Reader(os.Stdin)
	if cfg.Input != nil {
		in = cfg.Input
	}
	out := io.Writer(os.Stdout)
	if cfg.Output != nil {
		out = cfg.Output
	}

	menu := console.NewMenu(
		repos.categories,
		repos.products,
		repos.clients,
		orderSvc,
		salesSvc,
		in,
		out,
		logger.WithField("component", "console"),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- menu.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, завершаем работу")
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
