package service

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rentyield/yieldgate/internal/model"
)

func TestAuditServiceCloseDrainsQueuedEntries(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewAuditService(dir, nil)
	if err != nil {
		t.Fatalf("new audit service: %v", err)
	}

	const n = 50
	for i := 0; i < n; i++ {
		svc.Log(&model.AuditLog{
			ID:        "req-" + time.Now().Format("150405") + "-" + string(rune('a'+i%26)),
			Method:    "POST",
			Path:      "/v1/accounts/a/deposits",
			CreatedAt: time.Now(),
			Context:   map[string]interface{}{"i": i},
		})
	}
	svc.Close()

	matches, err := filepath.Glob(filepath.Join(dir, "audit-*.jsonl"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one audit file, got %v (%v)", matches, err)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open audit file: %v", err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry model.AuditLog
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("corrupt audit line %d: %v", count, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count != n {
		t.Fatalf("expected %d flushed entries after Close, got %d", n, count)
	}
}

func TestAuditBufferListFiltersAndOrders(t *testing.T) {
	b := newAuditBuffer(10)
	for i := 0; i < 5; i++ {
		caller := "caller-a"
		if i%2 == 1 {
			caller = "caller-b"
		}
		b.Add(&model.AuditLog{ID: string(rune('0' + i)), CallerID: caller})
	}

	all := b.List("", 10)
	if len(all) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(all))
	}
	// Newest first.
	if all[0].ID != "4" {
		t.Fatalf("expected newest entry first, got %s", all[0].ID)
	}

	onlyB := b.List("caller-b", 10)
	if len(onlyB) != 2 {
		t.Fatalf("expected 2 caller-b entries, got %d", len(onlyB))
	}
	for _, e := range onlyB {
		if e.CallerID != "caller-b" {
			t.Fatalf("filter leaked entry for %s", e.CallerID)
		}
	}
}
