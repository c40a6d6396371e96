package adaptor

import (
	"sms-auth/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Code *CodeHandler
	Auth *AuthHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Code: NewCodeHandler(service.Code, log),
		Auth: NewAuthHandler(service.Auth, log),
	}
}
