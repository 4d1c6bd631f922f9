package worker

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chapak/internal/models"

	"github.com/rs/zerolog"
)

type fakeLister struct {
	bookings  []models.Booking
	failFirst int
	calls     int
	params    map[string]string
}

func (f *fakeLister) ListBookings(ctx context.Context, params map[string]string) ([]models.Booking, error) {
	f.calls++
	f.params = params
	if f.calls <= f.failFirst {
		return nil, errors.New("boom")
	}
	return f.bookings, nil
}

func newTestWorker(t *testing.T, lister BookingLister, retry RetryPolicy) *ExportWorker {
	t.Helper()
	logger := zerolog.New(io.Discard)
	return NewExportWorker(lister, t.TempDir(), retry, &logger)
}

func TestExportWritesFile(t *testing.T) {
	visitDate := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	lister := &fakeLister{
		bookings: []models.Booking{
			{
				BookingID: "CHPK-1001",
				VisitDate: visitDate,
				Tickets:   models.Tickets{Adult: 2, Kids: 1},
				Customer:  models.Customer{Name: "Ravi", Mobile: "9991234567"},
				Pricing:   models.PriceQuote{FinalAmount: 2100},
				Payment:   models.Payment{Status: models.PaymentPaid},
				Verified:  true,
				CreatedAt: time.Now(),
			},
		},
	}
	worker := newTestWorker(t, lister, RetryPolicy{})

	path, err := worker.process(context.Background(), ExportRequest{Date: visitDate, Status: models.PaymentPaid})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if filepath.Base(path) != "bookings_2025-08-20.xlsx" {
		t.Fatalf("unexpected file name: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if lister.params["date"] != "2025-08-20" || lister.params["status"] != models.PaymentPaid {
		t.Fatalf("unexpected list params: %+v", lister.params)
	}
}

func TestExportRetriesTransientFailure(t *testing.T) {
	lister := &fakeLister{failFirst: 2}
	worker := newTestWorker(t, lister, RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond})

	_, err := worker.process(context.Background(), ExportRequest{})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if lister.calls != 3 {
		t.Fatalf("expected 3 list attempts, got %d", lister.calls)
	}
}

func TestExportGivesUpAfterMaxRetries(t *testing.T) {
	lister := &fakeLister{failFirst: 10}
	worker := newTestWorker(t, lister, RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond})

	_, err := worker.process(context.Background(), ExportRequest{})
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if lister.calls != 2 {
		t.Fatalf("expected 2 list attempts, got %d", lister.calls)
	}
}

func TestExportWorkerLoop(t *testing.T) {
	lister := &fakeLister{}
	worker := newTestWorker(t, lister, RetryPolicy{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)

	result := make(chan ExportResult, 1)
	if err := worker.Enqueue(ExportRequest{Result: result}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case res := <-result:
		if res.Err != nil {
			t.Fatalf("export: %v", res.Err)
		}
		if !strings.HasPrefix(filepath.Base(res.FilePath), "bookings_export_") {
			t.Fatalf("unexpected file name: %s", res.FilePath)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for export result")
	}
}

func TestEnqueueQueueFull(t *testing.T) {
	worker := newTestWorker(t, &fakeLister{}, RetryPolicy{})

	// Worker not started: fill the buffer.
	for i := 0; i < models.ExportQueueSize; i++ {
		if err := worker.Enqueue(ExportRequest{}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := worker.Enqueue(ExportRequest{}); err == nil {
		t.Fatalf("expected error when queue is full")
	}
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}
	d1 := policy.NextDelay(1)
	d2 := policy.NextDelay(2)
	d3 := policy.NextDelay(5)

	if d1 != time.Second {
		t.Fatalf("attempt1 expected 1s, got %s", d1)
	}
	if d2 != 2*time.Second {
		t.Fatalf("attempt2 expected 2s, got %s", d2)
	}
	if d3 != 5*time.Second {
		t.Fatalf("attempt5 expected capped 5s, got %s", d3)
	}
}

func TestRetryPolicyDefaults(t *testing.T) {
	policy := RetryPolicy{}.withDefaults()
	if policy.MaxRetries != 3 {
		t.Fatalf("expected default max retries 3, got %d", policy.MaxRetries)
	}
	if policy.NextDelay(1) <= 0 {
		t.Fatalf("expected positive delay")
	}
}
