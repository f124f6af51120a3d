package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/agamariel/cocapremium/internal/metrics"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/storage"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

const (
	// ProofsPath - префикс маршрута, по которому отдаются чеки.
	ProofsPath = "/api/proofs/"

	msgNoFile      = "No se ha subido ningún archivo"
	msgOnlyImages  = "Solo se permiten archivos de imagen (JPG, PNG, GIF)"
	msgFileTooBig  = "El archivo es demasiado grande. Tamaño máximo: %dMB"
	msgProofAbsent = "Comprobante no encontrado"

	// proofCacheSize - сколько последних чеков держать в памяти.
	proofCacheSize = 32
)

// UploadServiceImpl реализует UploadService.
type UploadServiceImpl struct {
	blobs         storage.BlobStorage
	publicBaseURL string
	maxBytes      int64
	metrics       *metrics.Metrics
	logger        *zap.Logger
	// чеки не изменяются после записи
	cache *lru.Cache
}

// NewUploadService создаёт сервис загрузки чеков.
func NewUploadService(blobs storage.BlobStorage, publicBaseURL string, maxBytes int64, m *metrics.Metrics, logger *zap.Logger) *UploadServiceImpl {
	// lru.New возвращает ошибку только при неположительном размере
	cache, _ := lru.New(proofCacheSize)
	return &UploadServiceImpl{
		blobs:         blobs,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxBytes:      maxBytes,
		metrics:       m,
		logger:        logger,
		cache:         cache,
	}
}

// MaxBytes возвращает предельный размер файла.
func (s *UploadServiceImpl) MaxBytes() int64 {
	return s.maxBytes
}

// UploadProof сохраняет изображение под именем <uuid>.<ext> и возвращает публичную ссылку.
func (s *UploadServiceImpl) UploadProof(ctx context.Context, file ProofUpload) (string, error) {
	url, err := s.uploadProof(ctx, file)
	if s.metrics != nil {
		s.metrics.ProofUploads.WithLabelValues(metrics.Outcome(err)).Inc()
	}
	return url, err
}

func (s *UploadServiceImpl) uploadProof(ctx context.Context, file ProofUpload) (string, error) {
	if file.Body == nil {
		return "", apperr.Validation(models.FieldPaymentProof, msgNoFile)
	}
	if err := CheckProof(file.ContentType, file.Size, s.maxBytes); err != nil {
		return "", err
	}
	contentType, _ := models.ProofImageType(file.ContentType)

	// читаем на байт больше лимита, чтобы поймать неверно заявленный размер
	data, err := io.ReadAll(io.LimitReader(file.Body, s.maxBytes+1))
	if err != nil {
		return "", apperr.Upload(fmt.Errorf("read upload: %w", err))
	}
	if int64(len(data)) > s.maxBytes {
		return "", apperr.Validation(models.FieldPaymentProof, fmt.Sprintf(msgFileTooBig, s.maxBytes/(1024*1024)))
	}
	if len(data) == 0 {
		return "", apperr.Validation(models.FieldPaymentProof, msgNoFile)
	}

	name := uuid.NewString() + proofExtension(file.Filename, contentType)
	blob := &storage.Blob{Name: name, ContentType: contentType, Data: data}
	if err := s.blobs.Put(ctx, blob); err != nil {
		return "", apperr.Upload(err)
	}
	s.cache.Add(name, blob)

	s.logger.Info("payment proof stored", zap.String("name", name), zap.Int("bytes", len(data)))
	return s.publicBaseURL + ProofsPath + name, nil
}

// GetProof возвращает сохранённый чек, сначала из кеша.
func (s *UploadServiceImpl) GetProof(ctx context.Context, name string) (*storage.Blob, error) {
	name = filepath.Base(name)
	if cached, ok := s.cache.Get(name); ok {
		return cached.(*storage.Blob), nil
	}

	blob, err := s.blobs.Get(ctx, name)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return nil, apperr.NotFound(msgProofAbsent)
	}
	if err != nil {
		return nil, apperr.Store("Error al obtener el comprobante", err)
	}
	s.cache.Add(name, blob)
	return blob, nil
}

// CheckProof проверяет тип и размер файла до чтения содержимого.
// Принимаются только jpeg, png, gif и webp.
func CheckProof(contentType string, size, maxBytes int64) error {
	if _, ok := models.ProofImageType(contentType); !ok {
		return apperr.Validation(models.FieldPaymentProof, msgOnlyImages)
	}
	if size > maxBytes {
		return apperr.Validation(models.FieldPaymentProof, fmt.Sprintf(msgFileTooBig, maxBytes/(1024*1024)))
	}
	return nil
}

// proofExtension сохраняет исходное расширение, если оно совпадает с типом файла,
// иначе берёт его из типа.
func proofExtension(filename, mediaType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".jpeg" && mediaType == "image/jpeg" {
		return ext
	}
	return models.ProofExtension(mediaType)
}
