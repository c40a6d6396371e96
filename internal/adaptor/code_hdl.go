package adaptor

import (
	"encoding/json"
	"net"
	"net/http"

	"sms-auth/internal/dto/request"
	"sms-auth/internal/usecase"
	"sms-auth/pkg/utils"

	"go.uber.org/zap"
)

type CodeHandler struct {
	service usecase.CodeService
	log     *zap.Logger
}

func NewCodeHandler(service usecase.CodeService, log *zap.Logger) *CodeHandler {
	return &CodeHandler{
		service: service,
		log:     log.With(zap.String("handler", "code")),
	}
}

// Send handles POST /api/codes/send
func (h *CodeHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req request.SendCodeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.RequestCode(r.Context(), &req, remoteIP(r))
	if err != nil {
		handleServiceError(w, h.log, err, "send code")
		return
	}

	utils.ResponseCreated(w, "Code sent", result)
}

// List handles GET /api/codes (role-gated)
func (h *CodeHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	result, err := h.service.ListCodes(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list codes")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
