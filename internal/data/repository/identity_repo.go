package repository

import (
	"context"
	"fmt"

	"sms-auth/internal/data/entity"
	"sms-auth/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type IdentityRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error)
	FindByProvider(ctx context.Context, name, openid string) (*entity.Identity, error)
	FindByUsername(ctx context.Context, username string) (*entity.Identity, error)
	CreateWithProvider(ctx context.Context, identity *entity.Identity, provider *entity.IdentityProvider) error
	AddProvider(ctx context.Context, provider *entity.IdentityProvider) error
	UpdateSecret(ctx context.Context, identityID uuid.UUID, newSecret string) error
}

type identityRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewIdentityRepository(db database.PgxIface, log *zap.Logger) IdentityRepository {
	return &identityRepository{
		db:  db,
		log: log.With(zap.String("repository", "identity")),
	}
}

const identityColumns = `i.id, i.username, i.secret_hash, i.created_at, i.updated_at`

func (r *identityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM identities i
		WHERE i.id = $1
	`

	return r.findOne(ctx, query, id)
}

func (r *identityRepository) FindByProvider(ctx context.Context, name, openid string) (*entity.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM identities i
		JOIN identity_providers p ON p.identity_id = i.id
		WHERE p.name = $1 AND p.openid = $2
	`

	return r.findOne(ctx, query, name, openid)
}

func (r *identityRepository) FindByUsername(ctx context.Context, username string) (*entity.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM identities i
		WHERE i.username = $1
	`

	return r.findOne(ctx, query, username)
}

func (r *identityRepository) findOne(ctx context.Context, query string, args ...any) (*entity.Identity, error) {
	var identity entity.Identity
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&identity.ID,
		&identity.Username,
		&identity.SecretHash,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find identity", zap.Error(err))
		return nil, fmt.Errorf("find identity: %w", err)
	}

	if err := r.loadProviders(ctx, &identity); err != nil {
		return nil, err
	}

	return &identity, nil
}

func (r *identityRepository) loadProviders(ctx context.Context, identity *entity.Identity) error {
	query := `
		SELECT id, identity_id, name, openid, created_at
		FROM identity_providers
		WHERE identity_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, identity.ID)
	if err != nil {
		r.log.Error("Failed to load providers",
			zap.Error(err),
			zap.String("identity_id", identity.ID.String()),
		)
		return fmt.Errorf("load providers for %s: %w", identity.ID.String(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var p entity.IdentityProvider
		if err := rows.Scan(&p.ID, &p.IdentityID, &p.Name, &p.OpenID, &p.CreatedAt); err != nil {
			return fmt.Errorf("scan provider: %w", err)
		}
		identity.Providers = append(identity.Providers, p)
	}

	return rows.Err()
}

// CreateWithProvider inserts the identity and its first provider binding
// in one transaction, so a half-created identity is never observable.
func (r *identityRepository) CreateWithProvider(ctx context.Context, identity *entity.Identity, provider *entity.IdentityProvider) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create identity: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO identities (id, username, secret_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		identity.ID,
		identity.Username,
		identity.SecretHash,
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create identity",
			zap.Error(err),
			zap.String("username", identity.Username),
		)
		return fmt.Errorf("create identity %s: %w", identity.Username, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO identity_providers (id, identity_id, name, openid, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		provider.ID,
		provider.IdentityID,
		provider.Name,
		provider.OpenID,
		provider.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create provider binding",
			zap.Error(err),
			zap.String("provider", provider.Name),
		)
		return fmt.Errorf("create provider binding %s: %w", provider.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create identity: %w", err)
	}

	identity.Providers = append(identity.Providers, *provider)
	return nil
}

// AddProvider attaches a binding to an existing identity. The unique
// (name, openid) index rejects a binding already held elsewhere.
func (r *identityRepository) AddProvider(ctx context.Context, provider *entity.IdentityProvider) error {
	query := `
		INSERT INTO identity_providers (id, identity_id, name, openid, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		provider.ID,
		provider.IdentityID,
		provider.Name,
		provider.OpenID,
		provider.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to add provider binding",
			zap.Error(err),
			zap.String("identity_id", provider.IdentityID.String()),
			zap.String("provider", provider.Name),
		)
		return fmt.Errorf("add provider binding %s: %w", provider.Name, err)
	}

	return nil
}

// UpdateSecret replaces the identity's credential secret. Hashing is this
// store's responsibility: callers pass the plaintext replacement.
func (r *identityRepository) UpdateSecret(ctx context.Context, identityID uuid.UUID, newSecret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newSecret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash secret: %w", err)
	}

	query := `
		UPDATE identities
		SET secret_hash = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.Exec(ctx, query, string(hash), identityID)
	if err != nil {
		r.log.Error("Failed to update secret",
			zap.Error(err),
			zap.String("identity_id", identityID.String()),
		)
		return fmt.Errorf("update secret for %s: %w", identityID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("identity %s not found", identityID.String())
	}

	return nil
}
