package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order представляет оформленный заказ. После создания не изменяется.
type Order struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Number             string          `json:"number" db:"number"`
	CustomerName       string          `json:"customer_name" db:"customer_name"`
	PackageID          string          `json:"package_id" db:"package_id"`
	PackageDescription string          `json:"package_description" db:"package_description"`
	Flavors            []string        `json:"flavors" db:"flavors"`
	Sweetness          Sweetness       `json:"sweetness" db:"sweetness"`
	CrushType          string          `json:"crush_type" db:"crush_type"`
	Amount             decimal.Decimal `json:"amount" db:"amount"`
	PaymentProofURL    string          `json:"payment_proof_url" db:"payment_proof_url"`
	OrderDate          string          `json:"order_date" db:"order_date"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// PublicOrder - то, что видно о заказе без входа администратора:
// без имени клиента и ссылки на чек.
type PublicOrder struct {
	Number             string          `json:"number"`
	PackageDescription string          `json:"package_description"`
	Amount             decimal.Decimal `json:"amount"`
	OrderDate          string          `json:"order_date"`
	CreatedAt          time.Time       `json:"created_at"`
}

// Public возвращает сокращённое представление заказа.
func (o *Order) Public() *PublicOrder {
	return &PublicOrder{
		Number:             o.Number,
		PackageDescription: o.PackageDescription,
		Amount:             o.Amount,
		OrderDate:          o.OrderDate,
		CreatedAt:          o.CreatedAt,
	}
}

// OrderRequest - тело POST /api/orders.
//
// PackageInfo оставлен для старых клиентов, которые передают в нём id пакета.
// Цену из него не разбираем никогда.
type OrderRequest struct {
	CustomerName    string   `json:"customerName"`
	PackageID       string   `json:"packageId,omitempty"`
	PackageInfo     string   `json:"packageInfo,omitempty"`
	FlavorIDs       []string `json:"flavorIds"`
	Sweetness       string   `json:"sweetness"`
	CrushedType     string   `json:"crushedType"`
	PaymentProofURL string   `json:"paymentProofUrl"`
}

// ResolvedPackageID возвращает id пакета с учётом устаревшего поля packageInfo.
func (r OrderRequest) ResolvedPackageID() string {
	if id := strings.TrimSpace(r.PackageID); id != "" {
		return id
	}
	return strings.TrimSpace(r.PackageInfo)
}

// NewOrder - данные для вставки, уже проверенные и разрешённые по каталогу.
type NewOrder struct {
	Number             string
	CustomerName       string
	PackageID          string
	PackageDescription string
	Flavors            []string
	Sweetness          Sweetness
	CrushType          string
	Amount             decimal.Decimal
	PaymentProofURL    string
	IdempotencyKey     string
}

// Имена полей заказа в ошибках валидации.
const (
	FieldPackageID       = "packageId"
	FieldFlavors         = "flavors"
	FieldSweetness       = "sweetness"
	FieldCrushType       = "crushType"
	FieldCustomerName    = "customerName"
	FieldPaymentProofURL = "paymentProofUrl"
	FieldPaymentProof    = "paymentProof"
	FieldDate            = "date"
	FieldOrderNumber     = "number"
)

// MaxFlavors - сколько вкусов можно выбрать в одном заказе.
const MaxFlavors = 4
