package repository

import (
	"sms-auth/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Code     CodeRepository
	Identity IdentityRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Code:     NewCodeRepository(db, log),
		Identity: NewIdentityRepository(db, log),
	}
}
