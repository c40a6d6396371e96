package utils

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func validCategory(name string) CategoryConfig {
	return CategoryConfig{
		Name:           name,
		CodeLength:     6,
		ExpiresIn:      5 * time.Minute,
		ResendInterval: time.Minute,
	}
}

func TestConfigValidate_DuplicateCategoryName(t *testing.T) {
	g := NewWithT(t)

	cfg := &Config{Categories: []CategoryConfig{validCategory("signin"), validCategory("signin")}}
	g.Expect(cfg.validate()).To(MatchError(ContainSubstring("duplicate category name")))
}

func TestConfigValidate_RejectsBadDurations(t *testing.T) {
	g := NewWithT(t)

	bad := validCategory("signin")
	bad.ExpiresIn = 0
	cfg := &Config{Categories: []CategoryConfig{bad}}
	g.Expect(cfg.validate()).To(MatchError(ContainSubstring("expires_in")))

	bad = validCategory("signin")
	bad.ResendInterval = 0
	cfg = &Config{Categories: []CategoryConfig{bad}}
	g.Expect(cfg.validate()).To(MatchError(ContainSubstring("resend_interval")))
}

func TestConfigValidate_FlowMustReferenceCategory(t *testing.T) {
	g := NewWithT(t)

	cfg := &Config{
		Categories: []CategoryConfig{validCategory("signin")},
		SignIn:     &FlowConfig{CategoryName: "missing"},
	}
	g.Expect(cfg.validate()).To(MatchError(ContainSubstring("signin references unknown category")))

	cfg = &Config{
		Categories: []CategoryConfig{validCategory("reset")},
		Reset:      &FlowConfig{CategoryName: "reset"},
	}
	g.Expect(cfg.validate()).To(Succeed())
}

func TestCategoryByName(t *testing.T) {
	g := NewWithT(t)

	cfg := &Config{Categories: []CategoryConfig{validCategory("signin"), validCategory("reset")}}

	cat, ok := cfg.CategoryByName("reset")
	g.Expect(ok).To(BeTrue())
	g.Expect(cat.Name).To(Equal("reset"))

	_, ok = cfg.CategoryByName("promo")
	g.Expect(ok).To(BeFalse())
}
