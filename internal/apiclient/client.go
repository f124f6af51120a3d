// Package apiclient - HTTP-клиент REST API Coca Premium.
// Реализует wizard.Catalog и wizard.OrderStore поверх конверта {success, data, message, error}.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/agamariel/cocapremium/internal/models"
)

const (
	defaultTimeout = 10 * time.Second

	headerIdempotencyKey = "Idempotency-Key"
	proofFormField       = "paymentProof"
)

// ErrEmptyResponse - сервер ответил успехом без данных.
var ErrEmptyResponse = errors.New("empty response data")

// StatusError хранит HTTP-статус неуспешного ответа.
type StatusError struct {
	Code int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Error   *models.ErrorBody `json:"error"`
}

// Client ходит в API. Токен администратора запоминается после Login.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New создаёт клиент для адреса baseURL, например http://localhost:5000.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// SetToken задаёт токен администратора для защищённых запросов.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) ListPackages(ctx context.Context) ([]*models.Package, error) {
	return list[models.Package](ctx, c, "/api/packages")
}

func (c *Client) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return list[models.Category](ctx, c, "/api/categories")
}

// ListFlavors возвращает вкусы категории; пустой id - все вкусы.
func (c *Client) ListFlavors(ctx context.Context, categoryID string) ([]*models.Flavor, error) {
	if categoryID == "" {
		return list[models.Flavor](ctx, c, "/api/flavors")
	}
	return list[models.Flavor](ctx, c, "/api/flavors/category/"+url.PathEscape(categoryID))
}

func (c *Client) ListCrushTypes(ctx context.Context) ([]*models.CrushType, error) {
	return list[models.CrushType](ctx, c, "/api/crushed-types")
}

func (c *Client) ListActivePaymentQRCodes(ctx context.Context) ([]*models.QRCode, error) {
	return list[models.QRCode](ctx, c, "/api/qr/active")
}

// UploadBlob загружает чек multipart-запросом и возвращает публичную ссылку.
func (c *Client) UploadBlob(ctx context.Context, name, contentType string, body []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, proofFormField, name))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(body); err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}

	var resp models.UploadResponse
	err = c.do(ctx, http.MethodPost, "/api/upload/payment-proof", w.FormDataContentType(), &buf, nil, &resp)
	if err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", ErrEmptyResponse
	}
	return resp.URL, nil
}

// InsertOrder создаёт заказ. Повтор с тем же ключом вернёт уже созданный заказ.
func (c *Client) InsertOrder(ctx context.Context, req *models.OrderRequest, idempotencyKey string) (*models.Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}

	header := http.Header{}
	if idempotencyKey != "" {
		header.Set(headerIdempotencyKey, idempotencyKey)
	}

	var order models.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", "application/json", bytes.NewReader(body), header, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder ищет заказ по отображаемому номеру.
func (c *Client) GetOrder(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(number), "", nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Login входит как администратор и запоминает токен.
func (c *Client) Login(ctx context.Context, login, password string) (string, error) {
	body, err := json.Marshal(models.LoginRequest{Login: login, Password: password})
	if err != nil {
		return "", fmt.Errorf("encode login: %w", err)
	}

	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", "application/json", bytes.NewReader(body), nil, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrEmptyResponse
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// DailySales запрашивает отчёт за дату YYYY-MM-DD. Нужен токен администратора.
func (c *Client) DailySales(ctx context.Context, date string) (*models.DailySalesReport, error) {
	var report models.DailySalesReport
	path := "/api/reports/daily-sales?date=" + url.QueryEscape(date)
	if err := c.do(ctx, http.MethodGet, path, "", nil, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func list[T any](ctx context.Context, c *Client, path string) ([]*T, error) {
	items := []*T{}
	if err := c.do(ctx, http.MethodGet, path, "", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// do выполняет запрос и разбирает конверт. Ошибки API превращаются в *apperr.Error.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, header http.Header, out interface{}) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("build request path: %w", err)
	}
	u := *c.baseURL
	u.Path = c.baseURL.Path + ref.Path
	u.RawQuery = ref.RawQuery

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return toAppError(resp.StatusCode, nil)
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		return toAppError(resp.StatusCode, &env)
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// toAppError восстанавливает вид ошибки из конверта, а без него - из статуса.
func toAppError(status int, env *envelope) error {
	appErr := &apperr.Error{Err: StatusError{Code: status}}
	if env != nil {
		appErr.Message = env.Message
		if env.Error != nil {
			appErr.Field = env.Error.Field
			appErr.Kind = apperr.Kind(env.Error.Kind)
		}
	}

	switch appErr.Kind {
	case apperr.KindValidation, apperr.KindUpload, apperr.KindStore, apperr.KindNotFound:
	default:
		switch {
		case status == http.StatusNotFound:
			appErr.Kind = apperr.KindNotFound
		case status >= 400 && status < 500:
			appErr.Kind = apperr.KindValidation
		default:
			appErr.Kind = apperr.KindStore
		}
	}

	if appErr.Message == "" {
		appErr.Message = http.StatusText(status)
	}
	return appErr
}
