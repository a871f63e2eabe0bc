// Package pg implementa account.Directory sobre PostgreSQL (pgxpool).
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/socialgate/internal/account"
	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
)

const uniqueViolation = "23505"

type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// Connect abre el pool y verifica la conexión.
func Connect(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return pool, nil
}

type Directory struct {
	pool *pgxpool.Pool
}

func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

const selectColumns = `id, provider_type, provider_id, display_name,
	COALESCE(email, ''), COALESCE(phone_number, ''), COALESCE(profile_image_url, ''),
	COALESCE(gender, ''), birth_date, created_at`

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		a      account.Account
		id     uuid.UUID
		pt     string
		gender string
		birth  *time.Time
	)
	err := row.Scan(&id, &pt, &a.ProviderID, &a.DisplayName,
		&a.Email, &a.PhoneNumber, &a.ProfileImageURL,
		&gender, &birth, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.ID = id.String()
	a.ProviderType = account.ProviderType(pt)
	a.Gender = userinfo.Gender(gender)
	if birth != nil {
		b := birth.UTC()
		a.BirthDate = &b
	}
	return &a, nil
}

func (d *Directory) FindByProvider(ctx context.Context, pt account.ProviderType, providerID string) (*account.Account, error) {
	const query = `SELECT ` + selectColumns + ` FROM account WHERE provider_type = $1 AND provider_id = $2`
	return scanAccount(d.pool.QueryRow(ctx, query, string(pt), providerID))
}

func (d *Directory) FindByID(ctx context.Context, id string) (*account.Account, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, account.ErrNotFound
	}
	const query = `SELECT ` + selectColumns + ` FROM account WHERE id = $1`
	return scanAccount(d.pool.QueryRow(ctx, query, uid))
}

func (d *Directory) Create(ctx context.Context, profile *userinfo.OAuthUserInfo, pt account.ProviderType) (*account.Account, error) {
	a := account.FromProfile(profile, pt)
	id := uuid.New()
	const query = `
		INSERT INTO account (id, provider_type, provider_id, display_name, email,
			phone_number, profile_image_url, gender, birth_date)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9)
		RETURNING created_at`
	err := d.pool.QueryRow(ctx, query,
		id, string(pt), a.ProviderID, a.DisplayName, a.Email,
		a.PhoneNumber, a.ProfileImageURL, string(a.Gender), a.BirthDate,
	).Scan(&a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, account.ErrAlreadyExists
		}
		return nil, fmt.Errorf("pg: insert account: %w", err)
	}
	a.ID = id.String()
	return &a, nil
}

func (d *Directory) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}
