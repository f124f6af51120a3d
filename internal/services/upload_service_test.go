package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/agamariel/cocapremium/internal/metrics"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fiveMB = 5 * 1024 * 1024

func TestUploadService_UploadProof(t *testing.T) {
	ctx := context.Background()

	t.Run("stores blob and returns public url", func(t *testing.T) {
		var stored *storage.Blob
		m := metrics.New()
		svc := NewUploadService(&storage.MockBlobStorage{
			PutFunc: func(ctx context.Context, blob *storage.Blob) error {
				stored = blob
				return nil
			},
		}, "https://coca.example/", fiveMB, m, zap.NewNop())

		url, err := svc.UploadProof(ctx, ProofUpload{
			Filename:    "Comprobante.JPG",
			ContentType: "image/jpeg",
			Size:        3,
			Body:        bytes.NewReader([]byte{0xff, 0xd8, 0xff}),
		})
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.True(t, strings.HasSuffix(stored.Name, ".jpg"))
		assert.Equal(t, "https://coca.example/api/proofs/"+stored.Name, url)
		assert.Equal(t, "image/jpeg", stored.ContentType)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.ProofUploads.WithLabelValues("ok")))
	})

	t.Run("extension from content type", func(t *testing.T) {
		var stored *storage.Blob
		svc := NewUploadService(&storage.MockBlobStorage{
			PutFunc: func(ctx context.Context, blob *storage.Blob) error {
				stored = blob
				return nil
			},
		}, "http://x", fiveMB, nil, zap.NewNop())

		_, err := svc.UploadProof(ctx, ProofUpload{Filename: "blob", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(stored.Name, ".png"))

		// расширение не расходится с типом, тип хранится нормализованным
		_, err = svc.UploadProof(ctx, ProofUpload{Filename: "pago.svg", ContentType: "Image/PNG; charset=binary", Size: 1, Body: strings.NewReader("x")})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(stored.Name, ".png"))
		assert.Equal(t, "image/png", stored.ContentType)
	})

	tests := []struct {
		name string
		file ProofUpload
		msg  string
	}{
		{"no file", ProofUpload{ContentType: "image/png"}, "No se ha subido ningún archivo"},
		{"empty file", ProofUpload{ContentType: "image/png", Body: strings.NewReader("")}, "No se ha subido ningún archivo"},
		{"not an image", ProofUpload{ContentType: "application/pdf", Size: 10, Body: strings.NewReader("pdf")}, "Solo se permiten archivos de imagen (JPG, PNG, GIF)"},
		{"svg", ProofUpload{Filename: "pago.svg", ContentType: "image/svg+xml", Size: 10, Body: strings.NewReader("<svg/>")}, "Solo se permiten archivos de imagen (JPG, PNG, GIF)"},
		{"declared too large", ProofUpload{ContentType: "image/jpeg", Size: 6 * 1024 * 1024, Body: strings.NewReader("x")}, "El archivo es demasiado grande. Tamaño máximo: 5MB"},
		{"actual too large", ProofUpload{ContentType: "image/jpeg", Size: 1, Body: bytes.NewReader(make([]byte, fiveMB+1))}, "El archivo es demasiado grande. Tamaño máximo: 5MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUploadService(&storage.MockBlobStorage{
				PutFunc: func(ctx context.Context, blob *storage.Blob) error {
					t.Fatal("blob must not be stored")
					return nil
				},
			}, "http://x", fiveMB, nil, zap.NewNop())

			_, err := svc.UploadProof(ctx, tt.file)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, models.FieldPaymentProof, appErr.Field)
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}

	t.Run("blob store failure", func(t *testing.T) {
		svc := NewUploadService(&storage.MockBlobStorage{
			PutFunc: func(ctx context.Context, blob *storage.Blob) error {
				return errors.New("disk full")
			},
		}, "http://x", fiveMB, nil, zap.NewNop())

		_, err := svc.UploadProof(ctx, ProofUpload{ContentType: "image/gif", Size: 1, Body: strings.NewReader("g")})
		assert.True(t, apperr.Is(err, apperr.KindUpload))
	})
}

func TestUploadService_GetProof(t *testing.T) {
	reads := 0
	svc := NewUploadService(&storage.MockBlobStorage{
		GetFunc: func(ctx context.Context, name string) (*storage.Blob, error) {
			reads++
			if name == "a.png" {
				return &storage.Blob{Name: name}, nil
			}
			return nil, storage.ErrBlobNotFound
		},
	}, "http://x", fiveMB, nil, zap.NewNop())

	blob, err := svc.GetProof(context.Background(), "../../a.png")
	require.NoError(t, err)
	assert.Equal(t, "a.png", blob.Name)

	// повторное чтение из кеша
	_, err = svc.GetProof(context.Background(), "a.png")
	require.NoError(t, err)
	assert.Equal(t, 1, reads)

	_, err = svc.GetProof(context.Background(), "b.png")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, 2, reads)
}

func TestUploadService_UploadedProofIsCached(t *testing.T) {
	svc := NewUploadService(&storage.MockBlobStorage{
		PutFunc: func(ctx context.Context, blob *storage.Blob) error { return nil },
		GetFunc: func(ctx context.Context, name string) (*storage.Blob, error) {
			t.Fatalf("unexpected read of %s", name)
			return nil, nil
		},
	}, "http://x", fiveMB, nil, zap.NewNop())

	url, err := svc.UploadProof(context.Background(), ProofUpload{
		Filename: "pago.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png"),
	})
	require.NoError(t, err)

	blob, err := svc.GetProof(context.Background(), url[strings.LastIndex(url, "/")+1:])
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), blob.Data)
}
