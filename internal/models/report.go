package models

import "github.com/shopspring/decimal"

// DailySalesReport - сводка продаж за день.
type DailySalesReport struct {
	Date        string          `json:"date"`
	Orders      []*Order        `json:"orders"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
	GeneratedBy string          `json:"generated_by,omitempty"`
}

// Response - единый конверт ответа API.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// ErrorBody - машиночитаемая часть ошибки в конверте.
type ErrorBody struct {
	Kind   string `json:"kind"`
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// UploadResponse - данные ответа на загрузку чека.
type UploadResponse struct {
	URL string `json:"url"`
}

// LoginRequest - запрос на вход администратора.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse возвращает токен администратора.
type LoginResponse struct {
	Login string `json:"login"`
	Token string `json:"token"`
}
