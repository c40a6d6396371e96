package usecase

import (
	"context"
	"fmt"
	"time"

	"sms-auth/internal/data/entity"
	"sms-auth/internal/data/repository"
	"sms-auth/internal/dto/request"
	"sms-auth/internal/dto/response"
	"sms-auth/pkg/captcha"
	"sms-auth/pkg/sms"
	"sms-auth/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CodeService interface {
	RequestCode(ctx context.Context, req *request.SendCodeRequest, remoteIP string) (*response.SendResult, error)
	Verify(ctx context.Context, mobile, categoryName, code string) (bool, error)
	ListCodes(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CodeRecordView], error)
}

type codeService struct {
	repo    *repository.Repository
	config  *utils.Config
	sender  sms.Sender
	captcha captcha.Verifier
	log     *zap.Logger

	// now is injectable so expiry/throttle windows are testable.
	now func() time.Time
}

func NewCodeService(
	repo *repository.Repository,
	config *utils.Config,
	sender sms.Sender,
	verifier captcha.Verifier,
	log *zap.Logger,
) CodeService {
	return &codeService{
		repo:    repo,
		config:  config,
		sender:  sender,
		captcha: verifier,
		log:     log,
		now:     time.Now,
	}
}

// RequestCode issues one verification code: throttle check, generation,
// delivery, then persistence. Delivery success gates persistence so an
// undelivered message never leaves an orphaned code behind.
func (s *codeService) RequestCode(ctx context.Context, req *request.SendCodeRequest, remoteIP string) (*response.SendResult, error) {
	// 1. Required fields, each with its configured message
	if req.Category == "" {
		return nil, newFlowError(KindValidation, s.config.Errors.EmptyCategory)
	}
	if req.Mobile == "" {
		return nil, newFlowError(KindValidation, s.config.Errors.EmptyMobile)
	}

	// 2. Resolve category
	category, ok := s.config.CategoryByName(req.Category)
	if !ok {
		return nil, newFlowError(KindUnknownCategory, s.config.Errors.UnknownCategory)
	}

	// 3. Pre-send challenge gate
	if category.Captcha && s.captcha != nil {
		allowed, err := s.captcha.Verify(ctx, req.CaptchaToken, remoteIP)
		if err != nil {
			s.log.Error("Captcha check failed",
				zap.Error(err),
				zap.String("category", category.Name),
			)
			return nil, fmt.Errorf("captcha check: %w", err)
		}
		if !allowed {
			return nil, newFlowError(KindCaptchaFailed, s.config.Errors.Captcha)
		}
	}

	// 4. Resend throttle: one recent code per (mobile, category)
	now := s.now()
	since := now.Add(-category.ResendInterval)

	recent, err := s.repo.Code.CountRecent(ctx, req.Mobile, category.Name, since)
	if err != nil {
		return nil, fmt.Errorf("check resend throttle: %w", err)
	}
	if recent > 0 {
		return nil, newFlowError(KindResendTooSoon, category.ResendError)
	}

	// 5. Generate code
	code := utils.GenerateCode(category.CodeLength)

	// 6. Deliver via the SMS transport
	params := map[string]string{"code": code}
	if category.Product != "" {
		params["product"] = category.Product
	}

	result, err := s.sender.Send(ctx, &sms.Message{
		AccessKeyID:     category.AccessKeyID,
		AccessKeySecret: category.AccessKeySecret,
		TemplateCode:    category.TemplateCode,
		SignName:        category.SignName,
		Recipients:      []string{req.Mobile},
		Params:          params,
	})
	if err != nil {
		s.log.Warn("SMS delivery failed",
			zap.Error(err),
			zap.String("mobile", req.Mobile),
			zap.String("category", category.Name),
		)
		return nil, &FlowError{Kind: KindTransport, Message: "sms delivery failed", Err: err}
	}

	// 7. Persist, unless a concurrent request won the race during the send
	rec := &entity.CodeRecord{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		Mobile:    req.Mobile,
		Code:      code,
		Category:  category.Name,
		ExpiresAt: now.Add(category.ExpiresIn),
	}

	inserted, err := s.repo.Code.CreateUnlessRecent(ctx, rec, since)
	if err != nil {
		return nil, fmt.Errorf("persist code record: %w", err)
	}
	if !inserted {
		// The SMS went out already; nothing to roll back, but the caller
		// is throttled the same as in step 4.
		s.log.Warn("Concurrent send detected, code record dropped",
			zap.String("mobile", req.Mobile),
			zap.String("category", category.Name),
		)
		return nil, newFlowError(KindResendTooSoon, category.ResendError)
	}

	s.log.Info("Verification code issued",
		zap.String("mobile", req.Mobile),
		zap.String("category", category.Name),
		zap.String("request_id", result.RequestID),
		zap.Time("expires_at", rec.ExpiresAt),
	)

	return &response.SendResult{
		RequestID: result.RequestID,
		BizID:     result.BizID,
	}, nil
}

// Verify reports whether a matching, unexpired code exists for the
// (mobile, category) pair. Verification is non-destructive: the record
// stays valid until its expiry window closes.
func (s *codeService) Verify(ctx context.Context, mobile, categoryName, code string) (bool, error) {
	category, ok := s.config.CategoryByName(categoryName)
	if !ok {
		return false, newFlowError(KindUnknownCategory, s.config.Errors.UnknownCategory)
	}

	since := s.now().Add(-category.ExpiresIn)

	count, err := s.repo.Code.CountMatching(ctx, mobile, category.Name, code, since)
	if err != nil {
		return false, fmt.Errorf("verify code: %w", err)
	}

	return count > 0, nil
}

func (s *codeService) ListCodes(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CodeRecordView], error) {
	records, err := s.repo.Code.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}

	total, err := s.repo.Code.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count codes: %w", err)
	}

	views := make([]response.CodeRecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, response.CodeRecordView{
			ID:        rec.ID.String(),
			Mobile:    rec.Mobile,
			Code:      rec.Code,
			Category:  rec.Category,
			ExpiresAt: rec.ExpiresAt,
			CreatedAt: rec.CreatedAt,
		})
	}

	return response.NewPaginatedResponse(views, req.Page, req.PerPage, total), nil
}
