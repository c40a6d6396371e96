package middleware

import (
	"net/http"
	"strings"

	"sms-auth/pkg/utils"

	"go.uber.org/zap"
)

// Auth validates the bearer session token and stores the identity claims
// on the request context.
func Auth(cfg utils.JWTConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := utils.ParseToken(cfg, strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Warn("Invalid or expired token", zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			identityID, err := utils.ParseUUID(claims.IdentityID)
			if err != nil {
				logger.Warn("Token carries malformed identity id",
					zap.String("identity_id", claims.IdentityID))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := utils.SetIdentityContext(r.Context(), identityID, claims.Username, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles rejects requests whose token holds none of the allowed
// roles. Runs after Auth.
func RequireRoles(logger *zap.Logger, allowed ...string) func(http.Handler) http.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles, ok := utils.GetRolesFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			for _, role := range roles {
				if _, ok := allowedSet[role]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("Role guard rejected request",
				zap.Strings("roles", roles),
				zap.String("path", r.URL.Path),
			)
			utils.ResponseForbidden(w, "Insufficient role")
		})
	}
}
