package analytics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/billing-dashboard/internal/domain/billing"
)

// Dashboard is the full aggregate payload served to the frontend.
type Dashboard struct {
	HasData      bool         `json:"has_data"`
	RowCount     int          `json:"row_count"`
	Trend        []MonthTotal `json:"monthly_trend"`
	ByService    []GroupTotal `json:"totals_by_service"`
	TopCustomers []GroupTotal `json:"top_customers"`
	Stats        AmountStats  `json:"amount_stats"`
}

type Service struct {
	logger *slog.Logger
	tracer trace.Tracer
}

func NewService(logger *slog.Logger) *Service {
	return &Service{
		logger: logger,
		tracer: otel.Tracer("analytics"),
	}
}

// Dashboard assembles every aggregate for the given table. A nil or empty
// table yields HasData false with zero-valued sections, never an error.
func (s *Service) Dashboard(ctx context.Context, t *billing.Table) Dashboard {
	_, span := s.tracer.Start(ctx, "analytics.Dashboard")
	defer span.End()

	if t.IsEmpty() {
		return Dashboard{}
	}
	span.SetAttributes(attribute.Int("rows", len(t.Rows)))

	return Dashboard{
		HasData:      true,
		RowCount:     len(t.Rows),
		Trend:        MonthlyTrend(t),
		ByService:    TotalsByService(t),
		TopCustomers: TopCustomers(t),
		Stats:        Describe(t),
	}
}
