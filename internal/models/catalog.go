package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Package описывает вариант упаковки коки (цена в боливиано, вес).
type Package struct {
	ID         string          `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Price      decimal.Decimal `json:"price" db:"price"`
	Weight     decimal.Decimal `json:"weight" db:"weight"`
	WeightUnit string          `json:"weight_unit" db:"weight_unit"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// Description возвращает строку для отображения: "Paquete Black - 30 Bs - 150 g".
// Строка только для показа, цену из неё не извлекаем.
func (p Package) Description() string {
	return fmt.Sprintf("%s - %s Bs - %s %s", p.Name, p.Price.String(), p.Weight.String(), p.WeightUnit)
}

// Category группирует вкусы.
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Flavor - вкус, принадлежащий категории.
type Flavor struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	CategoryID string    `json:"category_id" db:"category_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CrushType - тип измельчения (EXTREMO, LIGERO).
type CrushType struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// QRCode - QR-код для оплаты.
type QRCode struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Sweetness - степень сладости.
type Sweetness string

const (
	SweetnessStrong Sweetness = "FUERTE"
	SweetnessMedium Sweetness = "MEDIO"
	SweetnessMild   Sweetness = "SUAVE"
)

// Sweetnesses перечисляет допустимые значения в порядке отображения.
var Sweetnesses = []Sweetness{SweetnessStrong, SweetnessMedium, SweetnessMild}

// Valid сообщает, входит ли значение в фиксированный набор.
func (s Sweetness) Valid() bool {
	switch s {
	case SweetnessStrong, SweetnessMedium, SweetnessMild:
		return true
	}
	return false
}

// ParseSweetness нормализует ввод ("medio", " MEDIO ") и проверяет его.
func ParseSweetness(raw string) (Sweetness, bool) {
	s := Sweetness(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}
