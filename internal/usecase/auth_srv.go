package usecase

import (
	"context"
	"fmt"
	"time"

	"sms-auth/internal/data/entity"
	"sms-auth/internal/data/repository"
	"sms-auth/internal/dto/request"
	"sms-auth/internal/dto/response"
	"sms-auth/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	SignIn(ctx context.Context, req *request.SignInRequest) (*response.SignInResponse, error)
	Reset(ctx context.Context, req *request.ResetRequest) error
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	codes  CodeService
	log    *zap.Logger

	now func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	codes CodeService,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		codes:  codes,
		log:    log,
		now:    time.Now,
	}
}

// SignIn exchanges a verified (mobile, code) pair for a session token.
// An existing provider binding is reused; otherwise an account with the
// same username adopts the binding; otherwise a fresh identity is created.
func (s *authService) SignIn(ctx context.Context, req *request.SignInRequest) (*response.SignInResponse, error) {
	flow := s.config.SignIn
	if flow == nil {
		return nil, fmt.Errorf("sign-in flow is not configured")
	}

	if req.Code == "" {
		return nil, newFlowError(KindValidation, s.config.Errors.EmptyCode)
	}
	if req.Mobile == "" {
		return nil, newFlowError(KindValidation, s.config.Errors.EmptyMobile)
	}

	correct, err := s.codes.Verify(ctx, req.Mobile, flow.CategoryName, req.Code)
	if err != nil {
		return nil, err
	}
	if !correct {
		return nil, newFlowError(KindInvalidCode, flow.InvalidCodeError)
	}

	identity, status, err := s.bindIdentity(ctx, flow.CategoryName, req.Mobile)
	if err != nil {
		return nil, err
	}

	token, err := utils.SignToken(s.config.JWT, identity.ID, identity.Username, nil, flow.ExpiresIn)
	if err != nil {
		s.log.Error("Failed to sign session token",
			zap.Error(err),
			zap.String("identity_id", identity.ID.String()),
		)
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	s.log.Info("Sign-in completed",
		zap.String("identity_id", identity.ID.String()),
		zap.String("username", identity.Username),
		zap.String("status", status),
	)

	return &response.SignInResponse{
		Token:      token,
		Status:     status,
		IdentityID: identity.ID.String(),
		Username:   identity.Username,
	}, nil
}

// bindIdentity resolves the identity behind a verified mobile number and
// reports how it was obtained (ok / linked / created).
func (s *authService) bindIdentity(ctx context.Context, providerName, mobile string) (*entity.Identity, string, error) {
	// Existing binding wins
	identity, err := s.repo.Identity.FindByProvider(ctx, providerName, mobile)
	if err != nil {
		return nil, "", fmt.Errorf("find identity by provider: %w", err)
	}
	if identity != nil {
		return identity, response.SignInStatusOK, nil
	}

	now := s.now()

	// An account whose username is the mobile number adopts the binding
	identity, err = s.repo.Identity.FindByUsername(ctx, mobile)
	if err != nil {
		return nil, "", fmt.Errorf("find identity by username: %w", err)
	}
	if identity != nil {
		provider := &entity.IdentityProvider{
			ID:         uuid.New(),
			IdentityID: identity.ID,
			Name:       providerName,
			OpenID:     mobile,
			CreatedAt:  now,
		}
		if err := s.repo.Identity.AddProvider(ctx, provider); err != nil {
			return nil, "", err
		}
		identity.Providers = append(identity.Providers, *provider)
		return identity, response.SignInStatusLinked, nil
	}

	// First sign-in ever for this mobile: create the identity
	identity = &entity.Identity{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username: mobile,
	}
	provider := &entity.IdentityProvider{
		ID:         uuid.New(),
		IdentityID: identity.ID,
		Name:       providerName,
		OpenID:     mobile,
		CreatedAt:  now,
	}
	if err := s.repo.Identity.CreateWithProvider(ctx, identity, provider); err != nil {
		return nil, "", err
	}

	return identity, response.SignInStatusCreated, nil
}

// Reset replaces an identity's credential secret after the reset-category
// code verifies against the username used as the mobile key.
func (s *authService) Reset(ctx context.Context, req *request.ResetRequest) error {
	flow := s.config.Reset
	if flow == nil {
		return fmt.Errorf("reset flow is not configured")
	}

	if req.Code == "" {
		return newFlowError(KindValidation, s.config.Errors.EmptyCode)
	}
	if req.Username == "" {
		return newFlowError(KindValidation, s.config.Errors.EmptyUsername)
	}
	if req.Password == "" {
		return newFlowError(KindValidation, s.config.Errors.EmptyPassword)
	}

	correct, err := s.codes.Verify(ctx, req.Username, flow.CategoryName, req.Code)
	if err != nil {
		return err
	}
	if !correct {
		return newFlowError(KindInvalidCode, flow.InvalidCodeError)
	}

	identity, err := s.repo.Identity.FindByUsername(ctx, req.Username)
	if err != nil {
		return fmt.Errorf("find identity by username: %w", err)
	}
	if identity == nil {
		return newFlowError(KindUsernameNotFound, s.config.Errors.UsernameNotFound)
	}

	if err := s.repo.Identity.UpdateSecret(ctx, identity.ID, req.Password); err != nil {
		return err
	}

	s.log.Info("Credential secret reset",
		zap.String("identity_id", identity.ID.String()),
		zap.String("username", identity.Username),
	)

	return nil
}
