package services

import (
	"testing"

	"ustbills/internal/models"
	"ustbills/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	store := testutil.SetupTestStore(t)
	svc := NewAuditService(store)

	svc.Log("admin-1", "CANCEL_USTBILL", "ustbill", "bill-1", "127.0.0.1", map[string]interface{}{"status": "cancelled"})
	svc.Log("admin-1", "SWEEP", "ustbill", "", "127.0.0.1", nil)

	var entries []models.AuditLog
	store.DB().Order("id ASC").Find(&entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Changes != `{"status":"cancelled"}` {
		t.Errorf("unexpected changes %q", entries[0].Changes)
	}
	if entries[1].Changes != "" {
		t.Errorf("expected empty changes, got %q", entries[1].Changes)
	}
}
