package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turnaplay/teamreg/internal/config"
	"github.com/turnaplay/teamreg/internal/repository/postgres"
	"github.com/turnaplay/teamreg/internal/service"
	"github.com/turnaplay/teamreg/migrations"
)

// App представляет приложение со всеми зависимостями
type App struct {
	config *config.Config
	db     *pgxpool.Pool
	server *http.Server
	logger *slog.Logger
}

// New создает новый экземпляр приложения
func New(cfg *config.Config) (*App, error) {
	// Инициализируем структурированный логгер (JSON формат)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	app := &App{
		config: cfg,
		logger: logger,
	}

	return app, nil
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	// Подключаемся к базе данных
	if err := a.connectDB(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if a.config.Database.AutoMigrate {
		if err := migrations.Up(ctx, a.db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		a.logger.Info("Database schema is up to date")
	}

	// Настраиваем HTTP сервер и роутинг
	a.setupServer()

	a.logger.Info("Application initialized successfully")
	return nil
}

// connectDB устанавливает подключение к PostgreSQL с connection pool
func (a *App) connectDB(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	// Настраиваем размеры connection pool
	poolConfig.MaxConns = a.config.Database.MaxConns
	poolConfig.MinConns = a.config.Database.MinConns
	poolConfig.MaxConnLifetime = a.config.Database.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверяем подключение к БД
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	a.logger.Info("Connected to database")
	return nil
}

// NewPostgresServices собирает сервисы поверх PostgreSQL
func NewPostgresServices(db *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) Services {
	// Инициализируем слой репозиториев (работа с БД)
	tx := postgres.NewTransactor(db, logger)
	userRepo := postgres.NewUserRepository(db)
	tournamentRepo := postgres.NewTournamentRepository(db)
	accountRepo := postgres.NewGameAccountRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	inviteRepo := postgres.NewInviteRepository(db)

	// Инициализируем слой сервисов (бизнес-логика)
	membership := service.NewMembershipService(userRepo, tournamentRepo, teamRepo, memberRepo)
	roster := service.NewRosterService(tx, tournamentRepo, accountRepo, teamRepo, memberRepo, membership, logger)

	return Services{
		Auth:         service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.GetExpiration()),
		Membership:   membership,
		GameAccounts: service.NewGameAccountService(tx, accountRepo),
		Roster:       roster,
		Invites:      service.NewInviteService(tx, userRepo, tournamentRepo, teamRepo, memberRepo, inviteRepo, roster, logger),
		Stats:        service.NewStatsService(db),
	}
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer() {
	services := NewPostgresServices(a.db, a.config, a.logger)
	router := NewRouter(services, a.config.Server.AllowedOrigins, a.logger)

	// Создаем HTTP сервер с настройками таймаутов
	addr := fmt.Sprintf("%s:%s", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", "addr", addr)
}

// Handler возвращает корневой HTTP обработчик (доступен после Initialize)
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает HTTP сервер
func (a *App) Run() error {
	a.logger.Info("Starting HTTP server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	// Останавливаем HTTP сервер (ждем завершения текущих запросов)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	// Закрываем подключения к базе данных
	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
