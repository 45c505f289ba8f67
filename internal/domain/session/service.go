package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/billing-dashboard/internal/domain/billing"
	"github.com/FACorreiaa/billing-dashboard/internal/domain/ingest/normalizer"
	"github.com/FACorreiaa/billing-dashboard/internal/domain/ingest/parser"
	"github.com/FACorreiaa/billing-dashboard/internal/domain/search"
	"github.com/FACorreiaa/billing-dashboard/pkg/metrics"
)

// UploadSummary reports what an upload did to the session table.
type UploadSummary struct {
	Filename    string `json:"filename"`
	Appended    bool   `json:"appended"`
	RowsTotal   int    `json:"rows_total"`
	RowsKept    int    `json:"rows_kept"`
	RowsDropped int    `json:"rows_dropped"`
}

type Service struct {
	store  *Store
	logger *slog.Logger
	tracer trace.Tracer
}

func NewService(store *Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		tracer: otel.Tracer("session"),
	}
}

// Upload decodes and normalizes a workbook and installs it as the session
// table. With appendMode set and an existing table present, the new rows
// are merged in instead, deduplicating exact duplicates.
func (s *Service) Upload(ctx context.Context, sessionID, filename string, data []byte, appendMode bool) (*UploadSummary, error) {
	ctx, span := s.tracer.Start(ctx, "session.Upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("filename", filename),
		attribute.Bool("append", appendMode),
	)

	start := time.Now()

	sheet, err := parser.ParseWorkbook(data, filename)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	result, err := normalizer.Normalize(sheet)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.RowsDroppedTotal.WithLabelValues("date").Add(float64(result.DroppedDates))
	metrics.RowsDroppedTotal.WithLabelValues("amount").Add(float64(result.DroppedAmounts))

	table := result.Table
	appended := false
	if appendMode {
		if existing, ok := s.store.get(sessionID); ok && !existing.table.IsEmpty() {
			merged, err := billing.Merge(existing.table, table)
			if err != nil {
				metrics.UploadsTotal.WithLabelValues("rejected").Inc()
				return nil, err
			}
			// The intersection may promote a column that was never
			// coerced to a role, so the merged rows go through the drop
			// policy again.
			droppedDates, droppedAmounts := normalizer.Recoerce(merged)
			metrics.RowsDroppedTotal.WithLabelValues("date").Add(float64(droppedDates))
			metrics.RowsDroppedTotal.WithLabelValues("amount").Add(float64(droppedAmounts))
			if droppedDates+droppedAmounts > 0 {
				s.logger.Info("rows dropped during merge",
					slog.String("session_id", sessionID),
					slog.Int("dropped_dates", droppedDates),
					slog.Int("dropped_amounts", droppedAmounts),
				)
			}
			merged.SortByDate()
			table = merged
			appended = true
		}
	}

	index, err := search.New(table.Records())
	if err != nil {
		// Search is best effort; the table itself is still usable.
		s.logger.Warn("session search index unavailable",
			slog.String("session_id", sessionID),
			slog.Any("error", err),
		)
		index = nil
	}
	s.store.put(sessionID, table, index)

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	metrics.NormalizeDuration.Observe(time.Since(start).Seconds())

	summary := &UploadSummary{
		Filename:    filename,
		Appended:    appended,
		RowsTotal:   result.TotalRows,
		RowsKept:    len(table.Rows),
		RowsDropped: result.Dropped(),
	}
	s.logger.Info("upload processed",
		slog.String("session_id", sessionID),
		slog.String("filename", filename),
		slog.Bool("appended", appended),
		slog.Int("rows_kept", summary.RowsKept),
		slog.Int("rows_dropped", summary.RowsDropped),
	)
	return summary, nil
}

// Clear drops the session's table. Clearing an empty session is a no-op.
func (s *Service) Clear(ctx context.Context, sessionID string) {
	_, span := s.tracer.Start(ctx, "session.Clear")
	defer span.End()

	if s.store.clear(sessionID) {
		s.logger.Info("session cleared", slog.String("session_id", sessionID))
	}
}

// Current returns the session's table, or nil when nothing is uploaded.
func (s *Service) Current(ctx context.Context, sessionID string) *billing.Table {
	_, span := s.tracer.Start(ctx, "session.Current")
	defer span.End()

	e, ok := s.store.get(sessionID)
	if !ok {
		return nil
	}
	s.store.touch(sessionID)
	return e.table
}

// Search runs a lookup over the session table. Single plain terms use the
// order-preserving fuzzy filter; anything with query syntax or multiple
// terms goes through the full-text index.
func (s *Service) Search(ctx context.Context, sessionID, q string, limit int) ([]map[string]string, error) {
	_, span := s.tracer.Start(ctx, "session.Search")
	defer span.End()

	e, ok := s.store.get(sessionID)
	if !ok || e.index == nil {
		return nil, nil
	}
	s.store.touch(sessionID)

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	if isPlainTerm(q) {
		return e.index.Filter(q), nil
	}
	return e.index.Query(q, limit)
}

// ExportCSV writes the session table's role columns as CSV.
func (s *Service) ExportCSV(ctx context.Context, sessionID string, w io.Writer) error {
	_, span := s.tracer.Start(ctx, "session.ExportCSV")
	defer span.End()

	e, ok := s.store.get(sessionID)
	if !ok {
		return fmt.Errorf("no table uploaded")
	}
	s.store.touch(sessionID)
	return e.table.WriteCSV(w)
}

// SweepExpired reaps idle sessions. Wired to the cron scheduler.
func (s *Service) SweepExpired() {
	if removed := s.store.Sweep(); removed > 0 {
		s.logger.Info("expired sessions swept", slog.Int("removed", removed))
	}
}

// isPlainTerm reports whether q is a single bare word with no bleve query
// syntax in it.
func isPlainTerm(q string) bool {
	if strings.ContainsAny(q, " \t+-*\"():^~[]{}") {
		return false
	}
	return true
}
