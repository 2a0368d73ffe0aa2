package registry

import (
	"errors"
	"testing"

	"github.com/uGboly/xrblocks/internal/testutil/testlog"
)

type fakeService struct {
	name string
}

type tokenService struct{}

func (tokenService) DependencyToken() Token {
	return "svc.token"
}

func TestRegisterAndResolve(t *testing.T) {
	testlog.Start(t)
	r := NewRegistry()
	svc := &fakeService{name: "depth"}

	if err := r.Register("svc.depth", svc); err != nil {
		t.Fatalf("register: %v", err)
	}
	resolved, err := r.Resolve([]Token{"svc.depth"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved["svc.depth"] != svc {
		t.Fatalf("resolved wrong instance: %+v", resolved)
	}
}

func TestResolveMissingNamesFirstUnresolvedToken(t *testing.T) {
	testlog.Start(t)
	r := NewRegistry()
	if err := r.Register("svc.b", &fakeService{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := r.Resolve([]Token{"svc.b", "svc.a", "svc.c"})
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("expected ErrMissingDependency, got %v", err)
	}
	var missing *MissingDependencyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingDependencyError, got %T", err)
	}
	if missing.Token != "svc.a" {
		t.Fatalf("expected first unresolved token svc.a, got %q", missing.Token)
	}
}

func TestReRegistrationReplaces(t *testing.T) {
	testlog.Start(t)
	r := NewRegistry()
	first := &fakeService{name: "first"}
	second := &fakeService{name: "second"}

	if err := r.Register("svc.depth", first); err != nil {
		t.Fatalf("register first: %v", err)
	}
	if err := r.Register("svc.depth", second); err != nil {
		t.Fatalf("register second: %v", err)
	}
	got, ok := r.Lookup("svc.depth")
	if !ok || got != second {
		t.Fatalf("expected last write to win, got %+v", got)
	}
	if r.Len() != 1 {
		t.Fatalf("expected one binding, got %d", r.Len())
	}
}

func TestRegisterProvider(t *testing.T) {
	testlog.Start(t)
	r := NewRegistry()
	if err := r.RegisterProvider(tokenService{}); err != nil {
		t.Fatalf("register provider: %v", err)
	}
	if _, ok := r.Lookup("svc.token"); !ok {
		t.Fatalf("provider token not bound")
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	testlog.Start(t)
	r := NewRegistry()
	if err := r.Register("", &fakeService{}); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if err := r.Register("svc.x", nil); !errors.Is(err, ErrNilInstance) {
		t.Fatalf("expected ErrNilInstance, got %v", err)
	}
	if err := r.RegisterProvider(nil); !errors.Is(err, ErrNilInstance) {
		t.Fatalf("expected ErrNilInstance, got %v", err)
	}
}

func TestResolveEmptySetSucceeds(t *testing.T) {
	testlog.Start(t)
	r := NewRegistry()
	resolved, err := r.Resolve(nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(resolved) != 0 {
		t.Fatalf("expected empty mapping, got %+v", resolved)
	}
}
