package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"sms-auth/internal/data/entity"
	"sms-auth/internal/data/repository"
	"sms-auth/pkg/sms"
	"sms-auth/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ---------- fake code store ----------

type fakeCodeRepo struct {
	mu      sync.Mutex
	records []*entity.CodeRecord
	failAll bool

	// raceOnce makes the next conditional insert report a conflict, as if
	// a concurrent request persisted first.
	raceOnce bool
}

func (f *fakeCodeRepo) Create(ctx context.Context, rec *entity.CodeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("store down")
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeCodeRepo) CreateUnlessRecent(ctx context.Context, rec *entity.CodeRecord, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return false, errors.New("store down")
	}
	if f.raceOnce {
		f.raceOnce = false
		return false, nil
	}
	for _, r := range f.records {
		if r.Mobile == rec.Mobile && r.Category == rec.Category && r.CreatedAt.After(since) {
			return false, nil
		}
	}
	f.records = append(f.records, rec)
	return true, nil
}

func (f *fakeCodeRepo) CountRecent(ctx context.Context, mobile, category string, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return 0, errors.New("store down")
	}
	var n int64
	for _, r := range f.records {
		if r.Mobile == mobile && r.Category == category && r.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeCodeRepo) CountMatching(ctx context.Context, mobile, category, code string, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return 0, errors.New("store down")
	}
	var n int64
	for _, r := range f.records {
		if r.Mobile == mobile && r.Category == category && r.Code == code && r.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeCodeRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.CodeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if offset >= len(f.records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.records) {
		end = len(f.records)
	}
	return f.records[offset:end], nil
}

func (f *fakeCodeRepo) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

// ---------- fake identity store ----------

type fakeIdentityRepo struct {
	mu         sync.Mutex
	identities []*entity.Identity
}

func (f *fakeIdentityRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.identities {
		if i.ID == id {
			return i, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentityRepo) FindByProvider(ctx context.Context, name, openid string) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.identities {
		if i.HasProvider(name, openid) {
			return i, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentityRepo) FindByUsername(ctx context.Context, username string) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.identities {
		if i.Username == username {
			return i, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentityRepo) CreateWithProvider(ctx context.Context, identity *entity.Identity, provider *entity.IdentityProvider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity.Providers = append(identity.Providers, *provider)
	f.identities = append(f.identities, identity)
	return nil
}

func (f *fakeIdentityRepo) AddProvider(ctx context.Context, provider *entity.IdentityProvider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.identities {
		if i.ID == provider.IdentityID {
			i.Providers = append(i.Providers, *provider)
			return nil
		}
	}
	return errors.New("identity not found")
}

func (f *fakeIdentityRepo) UpdateSecret(ctx context.Context, identityID uuid.UUID, newSecret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.identities {
		if i.ID == identityID {
			i.SecretHash = "hashed:" + newSecret
			return nil
		}
	}
	return errors.New("identity not found")
}

// ---------- fake transport and captcha ----------

type fakeSender struct {
	mu   sync.Mutex
	sent []*sms.Message
	fail bool
}

func (f *fakeSender) Send(ctx context.Context, msg *sms.Message) (*sms.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("provider rejected")
	}
	f.sent = append(f.sent, msg)
	return &sms.Result{Code: "OK", RequestID: "req-1", BizID: "biz-1"}, nil
}

type fakeVerifier struct {
	allow bool
	err   error
}

func (f *fakeVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	return f.allow, f.err
}

// ---------- shared fixtures ----------

func testConfig() *utils.Config {
	return &utils.Config{
		JWT: utils.JWTConfig{Secret: "test-secret", Issuer: "sms-auth-test"},
		Categories: []utils.CategoryConfig{
			{
				Name:           "signin",
				AccessKeyID:    "key",
				TemplateCode:   "SMS_0001",
				SignName:       "Test",
				Product:        "TestApp",
				CodeLength:     6,
				ExpiresIn:      5 * time.Minute,
				ResendInterval: 60 * time.Second,
				ResendError:    "a code was sent recently",
			},
			{
				Name:           "reset",
				AccessKeyID:    "key",
				TemplateCode:   "SMS_0002",
				SignName:       "Test",
				CodeLength:     6,
				ExpiresIn:      10 * time.Minute,
				ResendInterval: 60 * time.Second,
				ResendError:    "a code was sent recently",
				Captcha:        true,
			},
		},
		Errors: utils.ErrorMessages{
			Empty:            "request body is required",
			EmptyCategory:    "category is required",
			EmptyMobile:      "mobile is required",
			EmptyCode:        "code is required",
			EmptyUsername:    "username is required",
			EmptyPassword:    "password is required",
			UnknownCategory:  "unknown category",
			UsernameNotFound: "username not found",
			Captcha:          "captcha verification failed",
		},
		SignIn: &utils.FlowConfig{
			CategoryName:     "signin",
			ExpiresIn:        time.Hour,
			InvalidCodeError: "invalid or expired code",
		},
		Reset: &utils.FlowConfig{
			CategoryName:     "reset",
			ExpiresIn:        15 * time.Minute,
			InvalidCodeError: "invalid or expired code",
		},
	}
}

type testEnv struct {
	codes    *fakeCodeRepo
	idents   *fakeIdentityRepo
	sender   *fakeSender
	verifier *fakeVerifier
	clock    *fakeClock

	code CodeService
	auth AuthService
}

type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

func newTestEnv(cfg *utils.Config) *testEnv {
	env := &testEnv{
		codes:    &fakeCodeRepo{},
		idents:   &fakeIdentityRepo{},
		sender:   &fakeSender{},
		verifier: &fakeVerifier{allow: true},
		clock:    &fakeClock{cur: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}

	repo := &repository.Repository{Code: env.codes, Identity: env.idents}
	logger := zap.NewNop()

	codeSrv := NewCodeService(repo, cfg, env.sender, env.verifier, logger).(*codeService)
	codeSrv.now = env.clock.Now
	env.code = codeSrv

	authSrv := NewAuthService(repo, cfg, codeSrv, logger).(*authService)
	authSrv.now = env.clock.Now
	env.auth = authSrv

	return env
}
