package adaptor

import (
	"encoding/json"
	"net/http"

	"sms-auth/internal/dto/request"
	"sms-auth/internal/dto/response"
	"sms-auth/internal/usecase"
	"sms-auth/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req request.SignInRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.SignIn(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "sign in")
		return
	}

	// A brand-new identity answers 201, reuse and linking answer 200
	if result.Status == response.SignInStatusCreated {
		utils.ResponseCreated(w, "Signed in", result)
		return
	}
	utils.ResponseSuccess(w, "Signed in", result)
}

// Reset handles POST /api/auth/reset
func (h *AuthHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req request.ResetRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := h.service.Reset(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "reset credential")
		return
	}

	utils.ResponseNoContent(w)
}
