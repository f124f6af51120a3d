// Package apperr описывает ошибки, которые видит клиент: вид ошибки,
// локализованное сообщение и исходная причина.
package apperr

import (
	"errors"
	"fmt"
)

// Kind - машиночитаемый вид ошибки.
type Kind string

const (
	KindValidation Kind = "validation"
	KindUpload     Kind = "upload"
	KindStore      Kind = "store"
	KindNotFound   Kind = "not_found"
)

// Error - ошибка с видом, полем и сообщением для пользователя.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation - не заполнено или неверно поле field. Возникает до любого I/O.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Upload - хранилище файлов недоступно или отклонило запись.
func Upload(err error) *Error {
	return &Error{Kind: KindUpload, Message: "Error al subir el comprobante de pago", Err: err}
}

// Store - ошибка вставки или чтения записи.
func Store(message string, err error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// NotFound - запись каталога или заказа не найдена.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// KindOf возвращает вид ошибки или пустую строку, если это не *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is сообщает, относится ли err к виду kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FieldOf возвращает имя поля для ошибки валидации.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
