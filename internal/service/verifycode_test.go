package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/studyroom-seat-reservation/internal/clock"
	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
	"github.com/iliyamo/studyroom-seat-reservation/internal/service"
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"
)

func TestIssueCode(t *testing.T) {
	m := newMemStore()
	m.addRoom(model.StudyRoom{ID: 1, Name: "Quiet Room", IsActive: true})
	now := time.Date(2025, 3, 10, 0, 0, 5, 0, time.UTC)
	issuer := service.NewCodeIssuer(m, &clock.Frozen{Current: now})

	code, err := issuer.IssueCode(context.Background(), 1)
	if err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code %q has length %d, want 6", code, len(code))
	}
	for _, ch := range code {
		if !(ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9') {
			t.Fatalf("code %q contains %q outside A-Z0-9", code, ch)
		}
	}

	room, _ := m.ByID(context.Background(), 1)
	if room.VerifyCode == nil || *room.VerifyCode != code {
		t.Fatalf("stored code = %v, want %q", room.VerifyCode, code)
	}
	if room.CodeIssuedAt == nil || !room.CodeIssuedAt.Equal(now) {
		t.Fatalf("issued at = %v, want %v", room.CodeIssuedAt, now)
	}
}

func TestIssueCodeReplacesPrevious(t *testing.T) {
	m := newMemStore()
	old := "OLDOLD"
	m.addRoom(model.StudyRoom{ID: 1, Name: "Quiet Room", IsActive: true, VerifyCode: &old})
	issuer := service.NewCodeIssuer(m, clock.Real{})

	code, err := issuer.IssueCode(context.Background(), 1)
	if err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	room, _ := m.ByID(context.Background(), 1)
	if *room.VerifyCode == old {
		t.Fatal("old code survived rotation")
	}
	if *room.VerifyCode != code {
		t.Fatalf("stored %q, returned %q", *room.VerifyCode, code)
	}
}

func TestIssueCodeUnknownRoom(t *testing.T) {
	issuer := service.NewCodeIssuer(newMemStore(), clock.Real{})
	if _, err := issuer.IssueCode(context.Background(), 42); err != store.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
