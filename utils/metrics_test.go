package utils

import (
	"errors"
	"testing"
	"time"
)

func TestMetricsRecordLedgerOperation(t *testing.T) {
	m := GetMetrics()
	m.ResetMetrics()

	m.RecordLedgerOperation("initiate", 1, nil)
	m.RecordLedgerOperation("verify", 1, nil)
	m.RecordLedgerOperation("submit", 3, nil)

	snapshot := m.GetMetricsSnapshot()
	if snapshot["initiated_transactions"] != int64(1) {
		t.Errorf("unexpected initiated count: %v", snapshot["initiated_transactions"])
	}
	if snapshot["verified_transactions"] != int64(1) {
		t.Errorf("unexpected verified count: %v", snapshot["verified_transactions"])
	}
	if snapshot["submitted_transactions"] != int64(3) {
		t.Errorf("unexpected submitted count: %v", snapshot["submitted_transactions"])
	}
}

func TestMetricsRecordLedgerOperationError(t *testing.T) {
	m := GetMetrics()
	m.ResetMetrics()

	m.RecordLedgerOperation("verify", 1, errors.New("transaction already processed"))

	snapshot := m.GetMetricsSnapshot()
	if snapshot["verified_transactions"] != int64(0) {
		t.Errorf("failed operation must not count as verified: %v", snapshot["verified_transactions"])
	}
	if snapshot["error_count"] != int64(1) {
		t.Errorf("expected 1 recorded error, got %v", snapshot["error_count"])
	}
	errorTypes := snapshot["error_types"].(map[string]int64)
	if errorTypes["transaction already processed"] != 1 {
		t.Errorf("unexpected error breakdown: %v", errorTypes)
	}
}

func TestMetricsRecordRequest(t *testing.T) {
	m := GetMetrics()
	m.ResetMetrics()

	m.RecordRequest(10*time.Millisecond, false)
	m.RecordRequest(20*time.Millisecond, true)

	snapshot := m.GetMetricsSnapshot()
	if snapshot["total_requests"] != int64(2) {
		t.Errorf("expected 2 total requests, got %v", snapshot["total_requests"])
	}
	if snapshot["failed_requests"] != int64(1) {
		t.Errorf("expected 1 failed request, got %v", snapshot["failed_requests"])
	}
}
