package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/services"
	"github.com/agamariel/cocapremium/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testMaxUpload = 5 * 1024 * 1024

// multipartRequest собирает запрос с одним файлом в поле field.
func multipartRequest(t *testing.T, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "sin archivo"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/payment-proof", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUploadHandler_UploadProof(t *testing.T) {
	tests := []struct {
		name        string
		req         func(t *testing.T) *http.Request
		putErr      error
		wantStatus  int
		wantKind    string
		wantMessage string
		wantStored  bool
	}{
		{
			name: "jpeg accepted",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, ProofFormField, "pago.jpg", "image/jpeg", bytes.Repeat([]byte{0xff}, 2048))
			},
			wantStatus:  http.StatusOK,
			wantMessage: "Comprobante subido correctamente",
			wantStored:  true,
		},
		{
			// файл 6 МБ отклоняется до обращения к хранилищу
			name: "six megabytes rejected",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, ProofFormField, "grande.jpg", "image/jpeg", make([]byte, 6*1024*1024))
			},
			wantStatus:  http.StatusBadRequest,
			wantKind:    "validation",
			wantMessage: "El archivo es demasiado grande. Tamaño máximo: 5MB",
		},
		{
			name: "not an image",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, ProofFormField, "pago.pdf", "application/pdf", []byte("%PDF-1.4"))
			},
			wantStatus:  http.StatusBadRequest,
			wantKind:    "validation",
			wantMessage: "Solo se permiten archivos de imagen (JPG, PNG, GIF)",
		},
		{
			name: "svg rejected",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, ProofFormField, "pago.svg", "image/svg+xml",
					[]byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>fetch('/api/reports/daily-sales')</script></svg>`))
			},
			wantStatus:  http.StatusBadRequest,
			wantKind:    "validation",
			wantMessage: "Solo se permiten archivos de imagen (JPG, PNG, GIF)",
		},
		{
			name: "no file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "", "", "", nil)
			},
			wantStatus:  http.StatusBadRequest,
			wantKind:    "validation",
			wantMessage: "No se ha subido ningún archivo",
		},
		{
			name: "storage down",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, ProofFormField, "pago.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
			},
			putErr:      errors.New("disk full"),
			wantStatus:  http.StatusInternalServerError,
			wantKind:    "upload",
			wantMessage: "Error al subir el comprobante de pago",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stored *storage.Blob
			blobs := &storage.MockBlobStorage{
				PutFunc: func(ctx context.Context, blob *storage.Blob) error {
					if tt.putErr != nil {
						return tt.putErr
					}
					stored = blob
					return nil
				},
			}
			uploads := services.NewUploadService(blobs, "http://api.test", testMaxUpload, nil, zap.NewNop())
			h := NewUploadHandler(uploads, testMaxUpload)

			e := newTestEcho(false)
			rec := httptest.NewRecorder()
			c := e.NewContext(tt.req(t), rec)

			serve(e, c, h.UploadProof)

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decode(t, rec)
			assert.Equal(t, tt.wantMessage, env.Message)

			if !tt.wantStored {
				assert.Nil(t, stored)
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantKind, env.Error.Kind)
				return
			}

			require.NotNil(t, stored)
			var data models.UploadResponse
			require.NoError(t, json.Unmarshal(env.Data, &data))
			assert.Equal(t, "http://api.test"+services.ProofsPath+stored.Name, data.URL)
			assert.True(t, strings.HasSuffix(stored.Name, ".jpg"))
			assert.Equal(t, "image/jpeg", stored.ContentType)
		})
	}
}

func TestUploadHandler_GetProof(t *testing.T) {
	blobs := &storage.MockBlobStorage{
		GetFunc: func(ctx context.Context, name string) (*storage.Blob, error) {
			switch name {
			case "abc.png":
				return &storage.Blob{Name: name, ContentType: "image/png", Data: []byte("png-bytes")}, nil
			case "old.svg":
				return &storage.Blob{Name: name, ContentType: "image/svg+xml", Data: []byte("<svg><script>alert(1)</script></svg>")}, nil
			}
			return nil, storage.ErrBlobNotFound
		},
	}
	h := NewUploadHandler(services.NewUploadService(blobs, "http://api.test", testMaxUpload, nil, zap.NewNop()), testMaxUpload)

	tests := []struct {
		name            string
		param           string
		wantStatus      int
		wantType        string
		wantDisposition string
	}{
		{"stored proof", "abc.png", http.StatusOK, "image/png", `inline; filename="abc.png"`},
		{"script-capable type is downloaded", "old.svg", http.StatusOK, echo.MIMEOctetStream, `attachment; filename="old.svg"`},
		{"unknown proof", "zzz.png", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(false)
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, services.ProofsPath+tt.param, nil), rec)
			c.SetParamNames("name")
			c.SetParamValues(tt.param)

			serve(e, c, h.GetProof)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "Comprobante no encontrado", decode(t, rec).Message)
				return
			}
			assert.Equal(t, tt.wantType, rec.Header().Get(echo.HeaderContentType))
			assert.Equal(t, tt.wantDisposition, rec.Header().Get(echo.HeaderContentDisposition))
			assert.Equal(t, "sandbox; default-src 'none'", rec.Header().Get("Content-Security-Policy"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
		})
	}
}
