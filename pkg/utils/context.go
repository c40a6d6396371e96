package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	IdentityIDKey contextKey = "identity_id"
	UsernameKey   contextKey = "username"
	RolesKey      contextKey = "roles"
)

func GetIdentityIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	idVal := ctx.Value(IdentityIDKey)
	if idVal == nil {
		return uuid.Nil, false
	}

	idStr, ok := idVal.(string)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(UsernameKey)
	if val == nil {
		return "", false
	}

	username, ok := val.(string)
	return username, ok
}

func GetRolesFromContext(ctx context.Context) ([]string, bool) {
	val := ctx.Value(RolesKey)
	if val == nil {
		return nil, false
	}

	roles, ok := val.([]string)
	return roles, ok
}

func SetIdentityContext(ctx context.Context, identityID uuid.UUID, username string, roles []string) context.Context {
	ctx = context.WithValue(ctx, IdentityIDKey, identityID.String())
	ctx = context.WithValue(ctx, UsernameKey, username)
	ctx = context.WithValue(ctx, RolesKey, roles)
	return ctx
}
