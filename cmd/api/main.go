// @title           POS Ledger API
// @version         1.0
// @description     Entradas y salidas de stock, seriales, tarjetas de stock y reportes del punto de venta.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in              header
// @name            Authorization
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/pos-ledger/docs"
	"github.com/jhoicas/pos-ledger/internal/application/ledger"
	"github.com/jhoicas/pos-ledger/internal/application/stock"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/httpgateway"
	infrapdf "github.com/jhoicas/pos-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pos-ledger/internal/interfaces/http"
	"github.com/jhoicas/pos-ledger/pkg/config"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool)
	movementUC := stock.NewMovementUseCase(
		txRunner,
		postgres.NewProductRepository(pool),
		postgres.NewStockRecordRepository(pool),
		postgres.NewStockMovementRepository(pool),
		postgres.NewBarcodeRepository(pool),
		postgres.NewCategoryRepository(pool),
		log.Component("stock"),
	)

	// Con LEDGER_UPSTREAM_URL el ledger delega en otro backend; si no, aplica sobre PostgreSQL.
	var gateway ledger.StockMovementGateway = movementUC
	var opening httpRouter.OpeningStockSetter = movementUC
	var categories httpRouter.CategoryLister = movementUC
	if cfg.Ledger.UpstreamURL != "" {
		gateway = httpgateway.New(
			cfg.Ledger.UpstreamURL,
			cfg.Ledger.UpstreamToken,
			&http.Client{Timeout: cfg.Ledger.GatewayTimeout},
			log.Component("httpgateway"),
		)
		// corrección de stock inicial y categorías solo en modo local
		opening, categories = nil, nil
		log.Info().Str("upstream", cfg.Ledger.UpstreamURL).Msg("gateway remoto")
	}

	var invalidator httpRouter.CatalogInvalidator
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, catálogo sin caché")
		} else {
			defer rdb.Close()
			catalogCache := cache.NewCatalogCache(gateway, rdb, cfg.Redis.CatalogTTL, log.Component("cache"))
			gateway = catalogCache
			invalidator = catalogCache
		}
	}

	reconciler := ledger.NewReconciler(gateway, log.Component("ledger"), ledger.Config{
		GatewayTimeout: cfg.Ledger.GatewayTimeout,
		BarcodeTimeout: cfg.Ledger.BarcodeTimeout,
	})
	reporter := ledger.NewReporter(gateway, cfg.Ledger.GatewayTimeout)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Ledger.GatewayTimeout + 5*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    docs.SwaggerInfo.Title,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db_down", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Gateway:     gateway,
		Reconciler:  reconciler,
		Reporter:    reporter,
		Opening:     opening,
		Categories:  categories,
		PDF:         infrapdf.NewGenerator(),
		Invalidator: invalidator,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
