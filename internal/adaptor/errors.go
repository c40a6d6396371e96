package adaptor

import (
	"net/http"

	"sms-auth/internal/usecase"
	"sms-auth/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps classified flow errors onto the response
// envelope. Anything unclassified is logged and hidden behind a 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	if fe, ok := usecase.AsFlowError(err); ok {
		switch fe.Kind {
		case usecase.KindValidation,
			usecase.KindUnknownCategory,
			usecase.KindCaptchaFailed,
			usecase.KindResendTooSoon,
			usecase.KindInvalidCode:
			log.Warn(operation+" rejected", zap.Error(err))
			utils.ResponseUnprocessable(w, fe.Error(), nil)

		case usecase.KindUsernameNotFound:
			log.Warn(operation+" failed - username not found", zap.Error(err))
			utils.ResponseNotFound(w, fe.Error())

		case usecase.KindTransport:
			// Dependency failure, not user input
			log.Error(operation+" failed - provider error", zap.Error(err))
			utils.ResponseBadGateway(w, fe.Error())

		default:
			log.Error("Failed to "+operation, zap.Error(err))
			utils.ResponseInternalError(w, "Internal server error")
		}
		return
	}

	log.Error("Failed to "+operation, zap.Error(err))
	utils.ResponseInternalError(w, "Internal server error")
}
