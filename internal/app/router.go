package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/turnaplay/teamreg/internal/handler"
	"github.com/turnaplay/teamreg/internal/metrics"
	"github.com/turnaplay/teamreg/internal/middleware"
	"github.com/turnaplay/teamreg/internal/service"
)

// Services набор сервисов, из которых собирается HTTP API
type Services struct {
	Auth         *service.AuthService
	Membership   *service.MembershipService
	GameAccounts *service.GameAccountService
	Roster       *service.RosterService
	Invites      *service.InviteService
	Stats        handler.StatsProvider // nil отключает /stats
}

// NewRouter настраивает роутер chi со всеми эндпоинтами
func NewRouter(services Services, allowedOrigins []string, logger *slog.Logger) http.Handler {
	validate := handler.NewValidator()

	// Инициализируем HTTP обработчики
	authHandler := handler.NewAuthHandler(services.Auth, validate)
	accountHandler := handler.NewGameAccountHandler(services.GameAccounts, validate)
	teamHandler := handler.NewTeamHandler(services.Roster, services.Membership, validate)
	inviteHandler := handler.NewInviteHandler(services.Invites, validate)
	userHandler := handler.NewUserHandler(services.Membership, services.GameAccounts, services.Invites)

	// Инициализируем middleware для JWT авторизации
	authMiddleware := middleware.AuthMiddleware(services.Auth, services.Membership)

	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Metrics)

	// Публичные эндпоинты (без авторизации)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
	})

	// Health check для мониторинга
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			logger.Error("Failed to write health check response", "error", err)
		}
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Защищенные эндпоинты (требуют JWT токен в заголовке Authorization)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/me", userHandler.Me)

		// Игровые аккаунты
		r.Route("/game-accounts", func(r chi.Router) {
			r.Post("/", accountHandler.Create)
			r.Get("/", accountHandler.List)
			r.Post("/{id}/deactivate", accountHandler.Deactivate)
		})

		// Команды
		r.Route("/teams", func(r chi.Router) {
			r.Post("/", teamHandler.Create)
			r.Get("/leading", teamHandler.Leading)
			r.Get("/{id}", teamHandler.Get)
			r.Post("/{id}/rename", teamHandler.Rename)
			r.Post("/{id}/leave", teamHandler.Leave)
			r.Post("/{id}/kick", teamHandler.Kick)
		})

		// Приглашения
		r.Route("/invites", func(r chi.Router) {
			r.Post("/", inviteHandler.Create)
			r.Get("/", inviteHandler.Overview)
			r.Get("/incoming", inviteHandler.Incoming)
			r.Get("/outgoing", inviteHandler.Outgoing)
			r.Get("/poll", inviteHandler.Poll)
			r.Post("/{id}/accept", inviteHandler.Accept)
			r.Post("/{id}/reject", inviteHandler.Reject)
			r.Post("/{id}/cancel", inviteHandler.Cancel)
		})

		// Статистика регистрации
		if services.Stats != nil {
			r.Get("/stats", handler.NewStatsHandler(services.Stats).GetTournamentStats)
		}
	})

	return r
}
