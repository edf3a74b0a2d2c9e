package access

import (
	"context"
	"testing"
)

func TestAnonymous(t *testing.T) {
	ac := Anonymous()
	if ac.IsAuthenticated() {
		t.Error("IsAuthenticated() = true for anonymous")
	}
	if s, ok := ac.Subject(); ok || s != "" {
		t.Errorf("Subject() = %q, %v", s, ok)
	}
}

func TestNew(t *testing.T) {
	ac := New("u1", "org-1").WithAssetSearchOnly(true)
	s, ok := ac.Subject()
	if !ok || s != "u1" {
		t.Errorf("Subject() = %q, %v", s, ok)
	}
	if ac.Organization() != "org-1" {
		t.Errorf("Organization() = %q", ac.Organization())
	}
	if !ac.IsAssetSearchOnly() {
		t.Error("IsAssetSearchOnly() = false")
	}
}

func TestNew_EmptySubjectIsAnonymous(t *testing.T) {
	if New("", "org").IsAuthenticated() {
		t.Error("empty subject should be anonymous")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := ContextWith(context.Background(), New("u2", ""))
	if s, _ := FromContext(ctx).Subject(); s != "u2" {
		t.Errorf("FromContext subject = %q", s)
	}
	if FromContext(context.Background()).IsAuthenticated() {
		t.Error("missing identity should be anonymous")
	}
}
