package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/mebel-backend/internal/config"
	"github.com/ignatzorin/mebel-backend/internal/db"
	"github.com/ignatzorin/mebel-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/mebel-backend/internal/http/handlers"
	"github.com/ignatzorin/mebel-backend/internal/http/middleware"
	httpRouter "github.com/ignatzorin/mebel-backend/internal/http/router"
	"github.com/ignatzorin/mebel-backend/internal/imaging"
	"github.com/ignatzorin/mebel-backend/internal/logger"
	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/repository"
	"github.com/ignatzorin/mebel-backend/internal/service"
	"github.com/ignatzorin/mebel-backend/internal/storage"
	"github.com/ignatzorin/mebel-backend/internal/ws"
	"github.com/ignatzorin/mebel-backend/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(logger.Options{
		Level:    cfg.LogLevel,
		Text:     !cfg.IsProduction(),
		FilePath: cfg.LogFilePath,
	})
	goroutine.SetLogger(logger.Log)

	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, db.MigrationsFS(cfg.MigrationsPath, migrations.FS)); err != nil {
		logger.Log.Fatalf("main: ошибка миграций: %v", err)
	}

	objectStorage, err := newObjectStorage(cfg.Storage)
	if err != nil {
		logger.Log.Fatalf("main: не удалось подготовить хранилище: %v", err)
	}

	limiterStore, err := middleware.NewRateLimitStore(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatalf("main: %v", err)
	}

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	authService := service.NewAuthService(cfg.AdminLogin, cfg.AdminPasswordHash, tokenManager)
	processor := imaging.NewProcessor()
	imageService := service.NewImageService(
		repository.NewImageRepository(dbConn), objectStorage, processor,
		imaging.ImageProfile(cfg.Images.MaxSize, cfg.Images.Quality))
	logoService := service.NewLogoService(objectStorage, processor,
		imaging.LogoProfile(cfg.Images.LogoMaxSize, cfg.Images.LogoQuality))

	// События о новых заявках уходят в админ-панель и, если настроен SMTP, менеджеру на почту.
	hub := ws.NewHub()
	goroutine.SafeGo(func() { hub.Run(ctx) })

	notifier := service.MultiNotifier{hub}
	if cfg.SMTP.Enabled() {
		notifier = append(notifier, service.NewMailNotifier(service.MailConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.ManagerEmail,
		}))
	} else {
		logger.Log.Info("main: SMTP не настроен, письма о заявках отключены")
	}
	requestService := service.NewServiceRequestService(repository.NewServiceRequestRepository(dbConn), notifier)

	cache := service.NewCacheService(cfg.CacheTTL)

	// HTTP хэндлеры.
	handlers := httpRouter.Handlers{
		Auth:            httpHandlers.NewAuthHandler(authService),
		Health:          httpHandlers.NewHealthHandler(map[string]httpHandlers.Pinger{"database": dbConn}),
		Images:          httpHandlers.NewImageHandler(imageService),
		Logos:           httpHandlers.NewLogoHandler(logoService),
		ServiceRequests: httpHandlers.NewServiceRequestHandler(requestService),
		WS:              httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Catalog: map[string]httpRouter.CatalogRoutes{
			"rubrics":                  catalog[models.Rubric](dbConn, repository.RubricsTable, cache),
			"categories":               catalog[models.Category](dbConn, repository.CategoriesTable, cache),
			"brands":                   catalog[models.Brand](dbConn, repository.BrandsTable, cache),
			"shops":                    catalog[models.Shop](dbConn, repository.ShopsTable, cache),
			"shop-cities":              catalog[models.ShopCity](dbConn, repository.ShopCitiesTable, cache),
			"mebel":                    catalog[models.Mebel](dbConn, repository.MebelTable, cache),
			"mebel-projects":           catalog[models.MebelProject](dbConn, repository.MebelProjectsTable, cache),
			"countertop-manufacturers": catalog[models.CountertopManufacturer](dbConn, repository.CountertopManufacturersTable, cache),
		},
	}

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, handlers, tokenManager, limiterStore)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	logger.Log.Infof("main: HTTP сервер запущен на порту %s (storage=%s)", cfg.HTTPPort, cfg.Storage.Driver)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// catalog собирает репозиторий, сервис и хэндлер одной сущности каталога.
func catalog[T any, P models.EntityPtr[T]](conn *sqlx.DB, spec repository.TableSpec, cache *service.CacheService) *httpHandlers.CatalogHandler[T, P] {
	repo := repository.NewCatalogRepository[T](conn, spec)
	return httpHandlers.NewCatalogHandler[T, P](service.NewCatalogService[T, P](spec.Name, repo, cache))
}

func newObjectStorage(cfg config.StorageConfig) (storage.ObjectStorage, error) {
	if cfg.Driver == config.StorageDriverLocal {
		return storage.NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
	}
	return storage.NewS3Storage(storage.S3Config{
		Endpoint:  cfg.Endpoint,
		Region:    cfg.Region,
		Bucket:    cfg.Bucket,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		PublicURL: cfg.PublicURL,
	})
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия базы: %v", err)
	}
}
