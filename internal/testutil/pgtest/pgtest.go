// Package pgtest поднимает PostgreSQL в testcontainers для интеграционных тестов.
package pgtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turnaplay/teamreg/internal/config"
	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/migrations"
)

const (
	dbName     = "teamreg_test"
	dbUser     = "test_user"
	dbPassword = "test_password"
)

// DB содержит запущенный контейнер и пул подключений с примененной схемой
type DB struct {
	Pool   *pgxpool.Pool
	Config config.DatabaseConfig
}

// Start запускает контейнер PostgreSQL и применяет миграции.
// Тест пропускается в режиме -short; ресурсы освобождаются через t.Cleanup.
func Start(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Запускаем PostgreSQL контейнер
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.Up(ctx, pool), "Failed to apply migrations")

	return &DB{
		Pool: pool,
		Config: config.DatabaseConfig{
			Host:            host,
			Port:            port.Port(),
			User:            dbUser,
			Password:        dbPassword,
			Name:            dbName,
			SSLMode:         "disable",
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
		},
	}
}

// Truncate очищает все таблицы между тестами
func (d *DB) Truncate(t *testing.T) {
	t.Helper()
	_, err := d.Pool.Exec(context.Background(), `
		TRUNCATE tournament_invites, team_members, teams, game_accounts,
		         tournaments, tournament_formats, games, users CASCADE
	`)
	require.NoError(t, err)
}

// SeedUser создает пользователя
func (d *DB) SeedUser(t *testing.T, username string) domain.User {
	t.Helper()
	user := domain.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Role:     domain.RoleUser,
	}
	_, err := d.Pool.Exec(context.Background(),
		`INSERT INTO users (id, username, email, role) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Username, user.Email, string(user.Role),
	)
	require.NoError(t, err)
	return user
}

// SeedGame создает игру
func (d *DB) SeedGame(t *testing.T, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := d.Pool.Exec(context.Background(), `INSERT INTO games (id, name) VALUES ($1, $2)`, id, name)
	require.NoError(t, err)
	return id
}

// SeedTournament создает формат с размером команды и турнир по нему.
// Открытый турнир начинается через неделю, закрытый начался вчера.
func (d *DB) SeedTournament(t *testing.T, gameID uuid.UUID, teamSize int, open bool) domain.Tournament {
	t.Helper()
	ctx := context.Background()

	formatID := uuid.New()
	_, err := d.Pool.Exec(ctx,
		`INSERT INTO tournament_formats (id, game_id, name, team_size) VALUES ($1, $2, $3, $4)`,
		formatID, gameID, "format-"+formatID.String()[:8], teamSize,
	)
	require.NoError(t, err)

	start := time.Now().AddDate(0, 0, 7)
	if !open {
		start = time.Now().AddDate(0, 0, -1)
	}

	tournament := domain.Tournament{
		ID:               uuid.New(),
		Name:             "cup-" + formatID.String()[:8],
		GameID:           gameID,
		TeamSize:         teamSize,
		RegistrationOpen: open,
	}
	_, err = d.Pool.Exec(ctx,
		`INSERT INTO tournaments (id, format_id, name, start_date, end_date) VALUES ($1, $2, $3, $4::date, $5::date)`,
		tournament.ID, formatID, tournament.Name, start.Format("2006-01-02"), start.AddDate(0, 0, 3).Format("2006-01-02"),
	)
	require.NoError(t, err)

	return tournament
}
