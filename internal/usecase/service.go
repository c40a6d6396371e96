package usecase

import (
	"sms-auth/internal/data/repository"
	"sms-auth/pkg/captcha"
	"sms-auth/pkg/sms"
	"sms-auth/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Code CodeService
	Auth AuthService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	sender sms.Sender,
	verifier captcha.Verifier,
	log *zap.Logger,
) *Service {
	code := NewCodeService(repo, config, sender, verifier, log)

	return &Service{
		Code: code,
		Auth: NewAuthService(repo, config, code, log),
	}
}
