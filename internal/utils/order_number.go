package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const orderNumberPrefix = "CC-"

// ErrInvalidOrderNumber - номер не в формате CC-YYYYMMDD-NNNNNNC или не проходит проверку Луна.
var ErrInvalidOrderNumber = errors.New("invalid order number")

// NewOrderNumber генерирует отображаемый номер заказа CC-YYYYMMDD-NNNNNNC,
// где C - контрольная цифра Луна по дате и случайной части.
// Номер только для показа клиенту, идентификатор заказа назначает хранилище.
func NewOrderNumber(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	date := now.UTC().Format("20060102")
	random := fmt.Sprintf("%06d", n.Int64()+100000)

	check, _ := LuhnCheckDigit(date + random)
	return orderNumberPrefix + date + "-" + random + string(check), nil
}

// ValidateOrderNumber проверяет формат и контрольную цифру номера.
func ValidateOrderNumber(number string) error {
	number = strings.ToUpper(strings.TrimSpace(number))
	if !strings.HasPrefix(number, orderNumberPrefix) {
		return ErrInvalidOrderNumber
	}
	parts := strings.Split(strings.TrimPrefix(number, orderNumberPrefix), "-")
	if len(parts) != 2 || len(parts[0]) != 8 || len(parts[1]) != 7 {
		return ErrInvalidOrderNumber
	}
	if _, err := time.Parse("20060102", parts[0]); err != nil {
		return ErrInvalidOrderNumber
	}
	if !ValidateLuhn(parts[0] + parts[1]) {
		return ErrInvalidOrderNumber
	}
	return nil
}
