package services

import (
	"context"
	"strings"
	"time"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/storage"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ReportServiceImpl реализует ReportService.
type ReportServiceImpl struct {
	orders storage.OrderStorage
}

// NewReportService создаёт сервис отчётов.
func NewReportService(orders storage.OrderStorage) *ReportServiceImpl {
	return &ReportServiceImpl{orders: orders}
}

// DailySales суммирует сохранённые суммы заказов за дату YYYY-MM-DD.
func (s *ReportServiceImpl) DailySales(ctx context.Context, date string) (*models.DailySalesReport, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, apperr.Validation(models.FieldDate, "Se requiere una fecha (formato YYYY-MM-DD)")
	}

	orders, err := s.orders.GetByDate(ctx, date)
	if err != nil {
		return nil, apperr.Store("Error al obtener las ventas diarias", err)
	}

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Amount)
	}

	return &models.DailySalesReport{
		Date:   date,
		Orders: orders,
		Count:  len(orders),
		Total:  total,
	}, nil
}
