package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/agamariel/cocapremium/internal/metrics"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/storage"
	"github.com/agamariel/cocapremium/internal/utils"
	"go.uber.org/zap"
)

// maxNumberAttempts - сколько раз генерируем новый номер при коллизии.
const maxNumberAttempts = 3

const msgMissingFields = "Faltan campos requeridos"

var ErrNumberExhausted = errors.New("could not allocate a free order number")

// OrderServiceImpl реализует OrderService.
type OrderServiceImpl struct {
	catalog storage.CatalogStorage
	orders  storage.OrderStorage
	// proofPrefix - адрес, под которым UploadService отдаёт чеки.
	proofPrefix string
	topic       string
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewOrderService создаёт новый сервис заказов.
func NewOrderService(catalog storage.CatalogStorage, orders storage.OrderStorage, publicBaseURL, topic string, m *metrics.Metrics, logger *zap.Logger) *OrderServiceImpl {
	return &OrderServiceImpl{
		catalog:     catalog,
		orders:      orders,
		proofPrefix: strings.TrimRight(publicBaseURL, "/") + ProofsPath,
		topic:       topic,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateOrder проверяет запрос, разрешает id по каталогу и сохраняет заказ.
// Сумма берётся только из цены пакета в каталоге.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, req *models.OrderRequest, idempotencyKey string) (*models.Order, bool, error) {
	order, replayed, err := s.createOrder(ctx, req, idempotencyKey)
	if s.metrics != nil {
		s.metrics.OrdersSubmitted.WithLabelValues(metrics.Outcome(err)).Inc()
	}
	return order, replayed, err
}

func (s *OrderServiceImpl) createOrder(ctx context.Context, req *models.OrderRequest, idempotencyKey string) (*models.Order, bool, error) {
	if err := checkRequired(req); err != nil {
		return nil, false, err
	}
	if !s.isOwnProof(req.PaymentProofURL) {
		return nil, false, apperr.Validation(models.FieldPaymentProofURL, "Comprobante de pago no válido")
	}

	sweetness, ok := models.ParseSweetness(req.Sweetness)
	if !ok {
		return nil, false, apperr.Validation(models.FieldSweetness, "Nivel de dulzura no válido")
	}

	pkg, err := s.catalog.GetPackage(ctx, req.ResolvedPackageID())
	if errors.Is(err, storage.ErrPackageNotFound) {
		return nil, false, apperr.Validation(models.FieldPackageID, "Paquete no válido")
	}
	if err != nil {
		return nil, false, apperr.Store("Error al crear el pedido", err)
	}

	flavorNames, err := s.resolveFlavors(ctx, req.FlavorIDs)
	if err != nil {
		return nil, false, err
	}

	crush, err := s.catalog.GetCrushType(ctx, strings.TrimSpace(req.CrushedType))
	if errors.Is(err, storage.ErrCrushTypeNotFound) {
		return nil, false, apperr.Validation(models.FieldCrushType, "Tipo de triturado no válido")
	}
	if err != nil {
		return nil, false, apperr.Store("Error al crear el pedido", err)
	}

	newOrder := &models.NewOrder{
		CustomerName:       strings.TrimSpace(req.CustomerName),
		PackageID:          pkg.ID,
		PackageDescription: pkg.Description(),
		Flavors:            flavorNames,
		Sweetness:          sweetness,
		CrushType:          crush.Name,
		Amount:             pkg.Price,
		PaymentProofURL:    strings.TrimSpace(req.PaymentProofURL),
		IdempotencyKey:     strings.TrimSpace(idempotencyKey),
	}

	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		newOrder.Number, err = utils.NewOrderNumber(s.now())
		if err != nil {
			return nil, false, apperr.Store("Error al crear el pedido", err)
		}

		event := &models.OrderCreatedEvent{
			Topic:     s.topic,
			Number:    newOrder.Number,
			PackageID: newOrder.PackageID,
			Amount:    newOrder.Amount,
		}

		created, replayed, err := s.orders.Create(ctx, newOrder, event)
		if errors.Is(err, storage.ErrOrderNumberTaken) {
			s.logger.Warn("order number collision, regenerating",
				zap.String("number", newOrder.Number), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, false, apperr.Store("Error al crear el pedido", err)
		}

		if replayed {
			s.logger.Info("idempotent order replay",
				zap.String("number", created.Number), zap.String("idempotency_key", newOrder.IdempotencyKey))
		} else {
			s.logger.Info("order created",
				zap.String("number", created.Number), zap.String("amount", created.Amount.String()))
		}
		return created, replayed, nil
	}

	return nil, false, apperr.Store("Error al crear el pedido", ErrNumberExhausted)
}

// GetOrder ищет заказ по отображаемому номеру.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, number string) (*models.Order, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if err := utils.ValidateOrderNumber(number); err != nil {
		return nil, apperr.Validation(models.FieldOrderNumber, "Número de pedido no válido")
	}

	order, err := s.orders.GetByNumber(ctx, number)
	if errors.Is(err, storage.ErrOrderNotFound) {
		return nil, apperr.NotFound("Pedido no encontrado")
	}
	if err != nil {
		return nil, apperr.Store("Error al obtener el pedido", err)
	}
	return order, nil
}

// checkRequired проверяет обязательные поля в том же порядке, что и мастер заказа.
func checkRequired(req *models.OrderRequest) error {
	switch {
	case req.ResolvedPackageID() == "":
		return apperr.Validation(models.FieldPackageID, msgMissingFields)
	case len(req.FlavorIDs) == 0:
		return apperr.Validation(models.FieldFlavors, msgMissingFields)
	case strings.TrimSpace(req.Sweetness) == "":
		return apperr.Validation(models.FieldSweetness, msgMissingFields)
	case strings.TrimSpace(req.CrushedType) == "":
		return apperr.Validation(models.FieldCrushType, msgMissingFields)
	case strings.TrimSpace(req.CustomerName) == "":
		return apperr.Validation(models.FieldCustomerName, msgMissingFields)
	case strings.TrimSpace(req.PaymentProofURL) == "":
		return apperr.Validation(models.FieldPaymentProofURL, msgMissingFields)
	}
	return nil
}

// isOwnProof принимает только ссылки, выданные UploadService этого сервиса.
func (s *OrderServiceImpl) isOwnProof(rawURL string) bool {
	name, ok := strings.CutPrefix(strings.TrimSpace(rawURL), s.proofPrefix)
	return ok && name != "" && !strings.ContainsAny(name, "/?#\\")
}

// resolveFlavors переводит id в имена, сохраняя порядок выбора.
func (s *OrderServiceImpl) resolveFlavors(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) > models.MaxFlavors {
		return nil, apperr.Validation(models.FieldFlavors, fmt.Sprintf("Se permiten como máximo %d sabores", models.MaxFlavors))
	}

	seen := make(map[string]struct{}, len(ids))
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup || id == "" {
			return nil, apperr.Validation(models.FieldFlavors, "Sabores repetidos o vacíos")
		}
		seen[id] = struct{}{}
		clean = append(clean, id)
	}

	flavors, err := s.catalog.GetFlavorsByIDs(ctx, clean)
	if err != nil {
		return nil, apperr.Store("Error al crear el pedido", err)
	}

	byID := make(map[string]string, len(flavors))
	for _, f := range flavors {
		byID[f.ID] = f.Name
	}

	names := make([]string, 0, len(clean))
	for _, id := range clean {
		name, ok := byID[id]
		if !ok {
			return nil, apperr.Validation(models.FieldFlavors, "Sabor no válido: "+id)
		}
		names = append(names, name)
	}
	return names, nil
}
