package usecase

import (
	"context"
	"testing"

	"sms-auth/internal/data/entity"
	"sms-auth/internal/dto/request"
	"sms-auth/internal/dto/response"
	"sms-auth/pkg/utils"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
)

// issue requests a code and returns what was generated for the mobile.
func issue(t *testing.T, env *testEnv, mobile, category string) string {
	t.Helper()
	g := NewWithT(t)
	_, err := env.code.RequestCode(context.Background(), sendReq(mobile, category), "")
	g.Expect(err).NotTo(HaveOccurred())
	return env.codes.records[len(env.codes.records)-1].Code
}

func TestSignIn_CreatesIdentityOnFirstVerification(t *testing.T) {
	g := NewWithT(t)
	cfg := testConfig()
	env := newTestEnv(cfg)
	code := issue(t, env, "13800000000", "signin")

	result, err := env.auth.SignIn(context.Background(), &request.SignInRequest{
		Mobile: "13800000000",
		Code:   code,
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(result.Status).To(Equal(response.SignInStatusCreated))
	g.Expect(result.Username).To(Equal("13800000000"))
	g.Expect(result.Token).NotTo(BeEmpty())

	claims, err := utils.ParseToken(cfg.JWT, result.Token)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(claims.Username).To(Equal("13800000000"))
	g.Expect(claims.IdentityID).To(Equal(result.IdentityID))

	g.Expect(env.idents.identities).To(HaveLen(1))
	g.Expect(env.idents.identities[0].HasProvider("signin", "13800000000")).To(BeTrue())
}

func TestSignIn_ReusesExistingBinding(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(testConfig())
	ctx := context.Background()

	code := issue(t, env, "13800000000", "signin")
	first, err := env.auth.SignIn(ctx, &request.SignInRequest{Mobile: "13800000000", Code: code})
	g.Expect(err).NotTo(HaveOccurred())

	// Same unexpired code verifies again; no duplicate identity appears
	second, err := env.auth.SignIn(ctx, &request.SignInRequest{Mobile: "13800000000", Code: code})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(second.Status).To(Equal(response.SignInStatusOK))
	g.Expect(second.IdentityID).To(Equal(first.IdentityID))
	g.Expect(env.idents.identities).To(HaveLen(1))
}

func TestSignIn_LinksAccountWithMatchingUsername(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(testConfig())

	// A pre-existing account whose username is the mobile number
	existing := &entity.Identity{Username: "13800000000"}
	existing.ID = uuid.New()
	env.idents.identities = append(env.idents.identities, existing)

	code := issue(t, env, "13800000000", "signin")
	result, err := env.auth.SignIn(context.Background(), &request.SignInRequest{
		Mobile: "13800000000",
		Code:   code,
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(result.Status).To(Equal(response.SignInStatusLinked))
	g.Expect(result.IdentityID).To(Equal(existing.ID.String()))
	g.Expect(existing.HasProvider("signin", "13800000000")).To(BeTrue())
	g.Expect(env.idents.identities).To(HaveLen(1))
}

func TestSignIn_RejectsWrongOrMissingCode(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(testConfig())
	ctx := context.Background()

	issue(t, env, "13800000000", "signin")

	_, err := env.auth.SignIn(ctx, &request.SignInRequest{Mobile: "13800000000", Code: "000000"})
	fe, ok := AsFlowError(err)
	g.Expect(ok).To(BeTrue())
	g.Expect(fe.Kind).To(Equal(KindInvalidCode))
	g.Expect(fe.Message).To(Equal("invalid or expired code"))

	_, err = env.auth.SignIn(ctx, &request.SignInRequest{Mobile: "13800000000"})
	fe, ok = AsFlowError(err)
	g.Expect(ok).To(BeTrue())
	g.Expect(fe.Kind).To(Equal(KindValidation))
	g.Expect(fe.Message).To(Equal("code is required"))

	g.Expect(env.idents.identities).To(BeEmpty())
}

func TestSignIn_CodeFromOtherCategoryRejected(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(testConfig())

	// Code issued under the reset category must not sign anyone in
	code := issue(t, env, "13800000000", "reset")
	_, err := env.auth.SignIn(context.Background(), &request.SignInRequest{
		Mobile: "13800000000",
		Code:   code,
	})
	fe, ok := AsFlowError(err)
	g.Expect(ok).To(BeTrue())
	g.Expect(fe.Kind).To(Equal(KindInvalidCode))
}

func TestReset_ReplacesSecret(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(testConfig())

	existing := &entity.Identity{Username: "13800000000", SecretHash: "hashed:old"}
	existing.ID = uuid.New()
	env.idents.identities = append(env.idents.identities, existing)

	code := issue(t, env, "13800000000", "reset")
	err := env.auth.Reset(context.Background(), &request.ResetRequest{
		Username: "13800000000",
		Code:     code,
		Password: "new-secret",
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(existing.SecretHash).To(Equal("hashed:new-secret"))
}

func TestReset_UnknownUsername(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(testConfig())

	code := issue(t, env, "13800000000", "reset")
	err := env.auth.Reset(context.Background(), &request.ResetRequest{
		Username: "13800000000",
		Code:     code,
		Password: "new-secret",
	})
	fe, ok := AsFlowError(err)
	g.Expect(ok).To(BeTrue())
	g.Expect(fe.Kind).To(Equal(KindUsernameNotFound))
	g.Expect(fe.Message).To(Equal("username not found"))
}

func TestReset_MissingFields(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(testConfig())
	ctx := context.Background()

	cases := []struct {
		req     *request.ResetRequest
		message string
	}{
		{&request.ResetRequest{Username: "u", Password: "p"}, "code is required"},
		{&request.ResetRequest{Code: "123456", Password: "p"}, "username is required"},
		{&request.ResetRequest{Username: "u", Code: "123456"}, "password is required"},
	}

	for _, tc := range cases {
		err := env.auth.Reset(ctx, tc.req)
		fe, ok := AsFlowError(err)
		g.Expect(ok).To(BeTrue())
		g.Expect(fe.Kind).To(Equal(KindValidation))
		g.Expect(fe.Message).To(Equal(tc.message))
	}
}

func TestReset_InvalidCode(t *testing.T) {
	g := NewWithT(t)
	env := newTestEnv(testConfig())

	existing := &entity.Identity{Username: "13800000000", SecretHash: "hashed:old"}
	existing.ID = uuid.New()
	env.idents.identities = append(env.idents.identities, existing)

	issue(t, env, "13800000000", "reset")
	err := env.auth.Reset(context.Background(), &request.ResetRequest{
		Username: "13800000000",
		Code:     "000000",
		Password: "new-secret",
	})
	fe, ok := AsFlowError(err)
	g.Expect(ok).To(BeTrue())
	g.Expect(fe.Kind).To(Equal(KindInvalidCode))
	g.Expect(existing.SecretHash).To(Equal("hashed:old"))
}
