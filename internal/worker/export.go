package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chapak/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// BookingLister is the slice of the ticketing API the export worker needs.
type BookingLister interface {
	ListBookings(ctx context.Context, params map[string]string) ([]models.Booking, error)
}

// ExportRequest asks for an Excel report of bookings. Zero Date means all
// dates; empty Status means all payment statuses.
type ExportRequest struct {
	Date   time.Time
	Status string
	Result chan ExportResult
}

// ExportResult is delivered on the request's Result channel when set.
type ExportResult struct {
	FilePath string
	Err      error
}

// ExportWorker consumes export requests sequentially and renders each into an
// .xlsx file under the configured directory. Listing the bookings is retried
// with exponential backoff; rendering is not.
type ExportWorker struct {
	lister BookingLister
	dir    string
	retry  RetryPolicy
	queue  chan ExportRequest
	logger *zerolog.Logger
}

func NewExportWorker(lister BookingLister, dir string, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	return &ExportWorker{
		lister: lister,
		dir:    dir,
		retry:  retry.withDefaults(),
		queue:  make(chan ExportRequest, models.ExportQueueSize),
		logger: logger,
	}
}

// Enqueue schedules an export. Returns an error when the queue is full.
func (w *ExportWorker) Enqueue(req ExportRequest) error {
	select {
	case w.queue <- req:
		return nil
	default:
		return errors.New("export queue is full")
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *ExportWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("export worker started")
	defer w.logger.Info().Msg("export worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.queue:
			path, err := w.process(ctx, req)
			if err != nil {
				w.logger.Error().Err(err).Msg("export failed")
			}
			if req.Result != nil {
				req.Result <- ExportResult{FilePath: path, Err: err}
			}
		}
	}
}

func (w *ExportWorker) process(ctx context.Context, req ExportRequest) (string, error) {
	bookings, err := w.listWithRetry(ctx, req)
	if err != nil {
		return "", err
	}
	return w.writeFile(req, bookings)
}

func (w *ExportWorker) listWithRetry(ctx context.Context, req ExportRequest) ([]models.Booking, error) {
	params := map[string]string{}
	if !req.Date.IsZero() {
		params["date"] = req.Date.Format("2006-01-02")
	}
	if req.Status != "" {
		params["status"] = req.Status
	}

	var lastErr error
	for attempt := 1; attempt <= w.retry.MaxRetries; attempt++ {
		bookings, err := w.lister.ListBookings(ctx, params)
		if err == nil {
			return bookings, nil
		}
		lastErr = err
		w.logger.Warn().Err(err).Int("attempt", attempt).Msg("booking list fetch failed")

		if attempt == w.retry.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(w.retry.NextDelay(attempt)):
		}
	}
	return nil, fmt.Errorf("list bookings: %w", lastErr)
}

var exportHeaders = []string{
	"Booking ID", "Visit Date", "Adults", "Kids", "Customer", "Mobile",
	"Amount", "Payment", "Checked In", "Created At",
}

func (w *ExportWorker) writeFile(req ExportRequest, bookings []models.Booking) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), b.BookingID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), b.VisitDate.Format("02.01.2006"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), b.Tickets.Adult)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), b.Tickets.Kids)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), b.Customer.Name)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), b.Customer.Mobile)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), b.Pricing.FinalAmount)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), b.Payment.Status)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), boolToYesNo(b.Verified))
		if !b.CreatedAt.IsZero() {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), b.CreatedAt.Format("02.01.2006 15:04"))
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 18)
	_ = f.SetColWidth(sheetName, "B", "B", 12)
	_ = f.SetColWidth(sheetName, "E", "F", 20)
	_ = f.SetColWidth(sheetName, "G", "J", 14)

	_ = f.DeleteSheet("Sheet1")

	fileName := w.fileName(req)
	filePath := filepath.Join(w.dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	w.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("Excel file created")
	return filePath, nil
}

func (w *ExportWorker) fileName(req ExportRequest) string {
	if !req.Date.IsZero() {
		return fmt.Sprintf("bookings_%s.xlsx", req.Date.Format("2006-01-02"))
	}
	return fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
}

func boolToYesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
