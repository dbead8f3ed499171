package daemon

import "testing"

func TestSetUIDGIDNoopWithoutArguments(t *testing.T) {
	if err := SetUIDGID("", ""); err != nil {
		t.Fatalf("SetUIDGID with no user/group should be a no-op, got: %v", err)
	}
}

func TestNewBuildsService(t *testing.T) {
	svc, err := New(Config{Name: "logdevourer", DisplayName: "logdevourer", Description: "log forwarding daemon"},
		func() error { return nil },
		func() error { return nil },
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if svc == nil {
		t.Fatalf("expected a non-nil service")
	}
}
