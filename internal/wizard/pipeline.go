package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/agamariel/cocapremium/internal/apperr"
	"github.com/agamariel/cocapremium/internal/models"
)

// MaxProofBytes - предельный размер файла чека.
const MaxProofBytes = 5 * 1024 * 1024

var (
	// ErrBusy - предыдущая загрузка или отправка ещё не завершилась.
	ErrBusy = errors.New("another operation is in flight")
	// ErrStaleDraft - черновик сменился, пока шёл запрос; результат отброшен.
	ErrStaleDraft = errors.New("draft was replaced while the request was in flight")
)

// OrderStore - хранилище заказов и файлов чеков.
type OrderStore interface {
	UploadBlob(ctx context.Context, name, contentType string, body []byte) (string, error)
	InsertOrder(ctx context.Context, req *models.OrderRequest, idempotencyKey string) (*models.Order, error)
}

// Stage - состояние конвейера отправки.
type Stage int

const (
	StageIdle Stage = iota
	StageUploading
	StageUploaded
	StageSubmitting
	StageSubmitted
	StageFailed
)

var stageNames = [...]string{"idle", "uploading", "uploaded", "submitting", "submitted", "failed"}

func (s Stage) String() string {
	if s < StageIdle || s > StageFailed {
		return "unknown"
	}
	return stageNames[s]
}

// Pipeline загружает чек и отправляет заказ. Одновременно выполняется одна операция.
type Pipeline struct {
	wizard *Wizard
	store  OrderStore

	mu       sync.Mutex
	stage    Stage
	failedAt Stage
	busy     bool
}

// NewPipeline создаёт конвейер для мастера w.
func NewPipeline(w *Wizard, store OrderStore) *Pipeline {
	return &Pipeline{wizard: w, store: store}
}

// Stage возвращает текущее состояние.
func (p *Pipeline) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// FailedAt возвращает этап, на котором произошла ошибка, если Stage() == StageFailed.
func (p *Pipeline) FailedAt() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failedAt
}

func (p *Pipeline) begin(stage Stage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.busy {
		return ErrBusy
	}
	p.busy = true
	p.stage = stage
	return nil
}

func (p *Pipeline) finish(stage Stage, failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.busy = false
	if failed {
		p.failedAt = stage
		p.stage = StageFailed
		return
	}
	p.stage = stage
}

// abort снимает блокировку, не меняя состояние.
func (p *Pipeline) abort(prev Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = false
	p.stage = prev
}

// UploadProof сохраняет файл чека и записывает ссылку в черновик.
// Повторная загрузка заменяет ссылку. При ошибке ссылка сбрасывается.
func (p *Pipeline) UploadProof(ctx context.Context, f ProofFile) (string, error) {
	if err := CheckProofFile(&f); err != nil {
		return "", err
	}

	prev := p.Stage()
	if err := p.begin(StageUploading); err != nil {
		return "", err
	}
	generation := p.wizard.Generation()

	url, err := p.store.UploadBlob(ctx, f.Name, f.ContentType, f.Data)
	if err != nil {
		p.wizard.clearProofURL(generation)
		p.finish(StageUploading, true)
		return "", uploadError(err)
	}

	if !p.wizard.applyProof(generation, &f, url) {
		p.abort(prev)
		return "", ErrStaleDraft
	}

	p.finish(StageUploaded, false)
	return url, nil
}

// SubmitOrder проверяет черновик и создаёт заказ одной попыткой.
// Сумму считает сервер по цене пакета. При ошибке черновик не меняется,
// при успехе мастер начинает новый черновик.
func (p *Pipeline) SubmitOrder(ctx context.Context) (*models.Order, error) {
	prev := p.Stage()
	if err := p.begin(StageSubmitting); err != nil {
		return nil, err
	}

	draft, generation, key := p.wizard.beginSubmit()
	if err := validateDraft(&draft); err != nil {
		p.abort(prev)
		return nil, err
	}

	req := &models.OrderRequest{
		CustomerName:    strings.TrimSpace(draft.CustomerName),
		PackageID:       draft.PackageID,
		FlavorIDs:       draft.FlavorIDs,
		Sweetness:       string(draft.Sweetness),
		CrushedType:     draft.CrushTypeID,
		PaymentProofURL: draft.PaymentProofURL,
	}

	order, err := p.store.InsertOrder(ctx, req, key)
	if err != nil {
		p.finish(StageSubmitting, true)
		return nil, storeError(err)
	}

	// заказ создан в любом случае; чужой черновик не сбрасываем
	p.wizard.finishSubmit(generation)
	p.finish(StageSubmitted, false)
	return order, nil
}

// validateDraft возвращает ошибку по первому незаполненному полю.
func validateDraft(d *Draft) error {
	const msg = "Faltan campos requeridos"
	switch {
	case d.PackageID == "":
		return apperr.Validation(models.FieldPackageID, msg)
	case len(d.FlavorIDs) == 0:
		return apperr.Validation(models.FieldFlavors, msg)
	case d.Sweetness == "":
		return apperr.Validation(models.FieldSweetness, msg)
	case d.CrushTypeID == "":
		return apperr.Validation(models.FieldCrushType, msg)
	case strings.TrimSpace(d.CustomerName) == "":
		return apperr.Validation(models.FieldCustomerName, msg)
	case d.PaymentProofURL == "":
		return apperr.Validation(models.FieldPaymentProofURL, msg)
	}
	return nil
}

// CheckProofFile проверяет тип и размер файла до любой сетевой операции.
func CheckProofFile(f *ProofFile) error {
	if f == nil || len(f.Data) == 0 {
		return apperr.Validation(models.FieldPaymentProof, "No se ha subido ningún archivo")
	}
	if _, ok := models.ProofImageType(f.ContentType); !ok {
		return apperr.Validation(models.FieldPaymentProof, "Solo se permiten archivos de imagen (JPG, PNG, GIF)")
	}
	if f.Size() > MaxProofBytes {
		return apperr.Validation(models.FieldPaymentProof,
			fmt.Sprintf("El archivo es demasiado grande. Tamaño máximo: %dMB", MaxProofBytes/(1024*1024)))
	}
	return nil
}

// uploadError оставляет отказ по валидации как есть, всё остальное - ошибка загрузки,
// в том числе ответы шлюза без конверта.
func uploadError(err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindUpload:
		return err
	}
	return apperr.Upload(err)
}

// storeError оставляет типизированные ошибки как есть, остальные - ошибка хранилища.
func storeError(err error) error {
	if apperr.KindOf(err) != "" {
		return err
	}
	return apperr.Store("Error al crear el pedido", err)
}
