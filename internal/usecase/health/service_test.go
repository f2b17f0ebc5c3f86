package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, map[string]Checker{"nlu": &mockChecker{}})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["nlu"] != CheckOK {
		t.Errorf("expected nlu %q, got %q", CheckOK, r.Checks["nlu"])
	}
}

func TestCheck_DBError(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, map[string]Checker{"nlu": &mockChecker{}})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
	if r.Checks["nlu"] != CheckOK {
		t.Errorf("expected nlu %q, got %q", CheckOK, r.Checks["nlu"])
	}
}

func TestCheck_ProviderError(t *testing.T) {
	svc := New(&mockDBPinger{}, map[string]Checker{
		"nlu":         &mockChecker{err: errors.New("timeout")},
		"recognition": &mockChecker{},
	})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["nlu"] != CheckError {
		t.Errorf("expected nlu %q, got %q", CheckError, r.Checks["nlu"])
	}
	if r.Checks["recognition"] != CheckOK {
		t.Errorf("expected recognition %q, got %q", CheckOK, r.Checks["recognition"])
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(
		&mockDBPinger{err: errors.New("db down")},
		map[string]Checker{"nlu": &mockChecker{err: errors.New("nlu down")}},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError || r.Checks["nlu"] != CheckError {
		t.Errorf("expected both checks to fail, got %v", r.Checks)
	}
}

func TestCheck_NilProviderIgnored(t *testing.T) {
	svc := New(&mockDBPinger{}, map[string]Checker{"nlu": nil})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["nlu"]; ok {
		t.Error("nil checker should be absent from the report")
	}
}
