// Package wizard ведёт черновик заказа по шагам и отправляет его в хранилище.
//
// Недопустимые операции мастера ничего не меняют и возвращают false:
// интерфейс блокирует кнопки по тем же условиям (CanAdvance), поэтому
// пользователю здесь ошибок не показывается.
package wizard

import (
	"context"
	"strings"
	"sync"

	"github.com/agamariel/cocapremium/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Step - шаг мастера, от 1 до 6.
type Step int

const (
	StepPackage Step = iota + 1
	StepFlavors
	StepSweetness
	StepCrushType
	StepSummary
	StepPayment
)

var stepNames = [...]string{"", "package", "flavors", "sweetness", "crush_type", "summary", "payment"}

func (s Step) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return stepNames[s]
}

// Valid сообщает, лежит ли шаг в диапазоне 1..6.
func (s Step) Valid() bool {
	return s >= StepPackage && s <= StepPayment
}

// ProofFile - выбранный пользователем файл чека.
type ProofFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size возвращает размер файла в байтах.
func (f *ProofFile) Size() int64 {
	return int64(len(f.Data))
}

// Draft - черновик заказа.
type Draft struct {
	Step            Step
	PackageID       string
	FlavorIDs       []string
	Sweetness       models.Sweetness
	CrushTypeID     string
	CustomerName    string
	ProofFile       *ProofFile
	PaymentProofURL string
}

func (d Draft) clone() Draft {
	d.FlavorIDs = append([]string(nil), d.FlavorIDs...)
	return d
}

// Summary - черновик с именами из каталога, для экрана сводки.
type Summary struct {
	PackageDescription string
	Flavors            []string
	Sweetness          models.Sweetness
	CrushType          string
	Total              decimal.Decimal
}

// Wizard хранит один черновик и снимок каталога. Безопасен для конкурентного доступа.
type Wizard struct {
	catalog *Snapshot

	mu         sync.Mutex
	draft      Draft
	generation uint64
	idemKey    string
}

// New создаёт мастер на шаге 1 с пустым черновиком.
func New(catalog *Snapshot) *Wizard {
	if catalog == nil {
		catalog = &Snapshot{}
	}
	return &Wizard{
		catalog: catalog,
		draft:   Draft{Step: StepPackage},
	}
}

// Load загружает каталог и создаёт мастер.
func Load(ctx context.Context, c Catalog) (*Wizard, error) {
	snapshot, err := FetchSnapshot(ctx, c)
	if err != nil {
		return nil, err
	}
	return New(snapshot), nil
}

// Catalog возвращает снимок каталога.
func (w *Wizard) Catalog() *Snapshot {
	return w.catalog
}

// Step возвращает текущий шаг.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Step
}

// Snapshot возвращает копию черновика.
func (w *Wizard) Snapshot() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.clone()
}

// Generation возвращает поколение черновика. Меняется только при Reset.
func (w *Wizard) Generation() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generation
}

// Reset начинает новый пустой черновик.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

func (w *Wizard) resetLocked() {
	w.draft = Draft{Step: StepPackage}
	w.generation++
	w.idemKey = ""
}

// SelectPackage выбирает пакет на шаге 1. Шаг не меняется.
func (w *Wizard) SelectPackage(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft.Step != StepPackage {
		return false
	}
	if _, ok := w.catalog.Package(id); !ok {
		return false
	}
	w.setLocked(func(d *Draft) { d.PackageID = id })
	return true
}

// CanAdvance сообщает, выполнено ли условие завершения текущего шага.
func (w *Wizard) CanAdvance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canAdvanceLocked()
}

func (w *Wizard) canAdvanceLocked() bool {
	d := &w.draft
	switch d.Step {
	case StepPackage:
		return d.PackageID != ""
	case StepFlavors:
		return len(d.FlavorIDs) >= 1
	case StepSweetness:
		return d.Sweetness != ""
	case StepCrushType:
		return d.CrushTypeID != ""
	case StepSummary:
		return true
	}
	// шаг 6 завершает конвейер отправки
	return false
}

// Advance переходит на следующий шаг, если текущий завершён.
func (w *Wizard) Advance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.canAdvanceLocked() {
		return false
	}
	w.draft.Step++
	return true
}

// Retreat возвращает на шаг назад, данные не стираются.
func (w *Wizard) Retreat() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft.Step <= StepPackage {
		return false
	}
	w.draft.Step--
	return true
}

// JumpTo переходит со сводки на один из шагов 1..4 для правки.
func (w *Wizard) JumpTo(step Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft.Step != StepSummary || step < StepPackage || step > StepCrushType {
		return false
	}
	w.draft.Step = step
	return true
}

// AddFlavor добавляет вкус на шаге 2: не больше 4, без повторов.
func (w *Wizard) AddFlavor(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft.Step != StepFlavors || len(w.draft.FlavorIDs) >= models.MaxFlavors {
		return false
	}
	if _, ok := w.catalog.Flavor(id); !ok {
		return false
	}
	for _, f := range w.draft.FlavorIDs {
		if f == id {
			return false
		}
	}
	w.setLocked(func(d *Draft) { d.FlavorIDs = append(d.FlavorIDs, id) })
	return true
}

// RemoveFlavor убирает вкус на шаге 2 или на сводке.
// На сводке последний вкус не убирается: шаг 2 уже пройден.
func (w *Wizard) RemoveFlavor(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.draft.Step {
	case StepFlavors:
	case StepSummary:
		if len(w.draft.FlavorIDs) <= 1 {
			return false
		}
	default:
		return false
	}
	for i, f := range w.draft.FlavorIDs {
		if f == id {
			w.setLocked(func(d *Draft) {
				d.FlavorIDs = append(d.FlavorIDs[:i:i], d.FlavorIDs[i+1:]...)
			})
			return true
		}
	}
	return false
}

// SelectSweetness выбирает сладость на шаге 3.
func (w *Wizard) SelectSweetness(s models.Sweetness) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft.Step != StepSweetness || !s.Valid() {
		return false
	}
	w.setLocked(func(d *Draft) { d.Sweetness = s })
	return true
}

// SelectCrushType выбирает тип измельчения на шаге 4 по id или имени.
func (w *Wizard) SelectCrushType(idOrName string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft.Step != StepCrushType {
		return false
	}
	ct, ok := w.catalog.CrushType(strings.TrimSpace(idOrName))
	if !ok {
		return false
	}
	w.setLocked(func(d *Draft) { d.CrushTypeID = ct.ID })
	return true
}

// SetCustomerName задаёт имя на шаге 6. Пустое имя проверяется только при отправке.
func (w *Wizard) SetCustomerName(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft.Step != StepPayment {
		return false
	}
	w.setLocked(func(d *Draft) { d.CustomerName = name })
	return true
}

// SetPaymentProofFile выбирает файл чека на шаге 6.
// Новый файл сбрасывает ссылку на ранее загруженный.
func (w *Wizard) SetPaymentProofFile(f ProofFile) bool {
	if CheckProofFile(&f) != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft.Step != StepPayment {
		return false
	}
	w.setLocked(func(d *Draft) {
		d.ProofFile = &f
		d.PaymentProofURL = ""
	})
	return true
}

// Total возвращает цену выбранного пакета из каталога.
func (w *Wizard) Total() (decimal.Decimal, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pkg, ok := w.catalog.Package(w.draft.PackageID)
	if !ok {
		return decimal.Zero, false
	}
	return pkg.Price, true
}

// Summary возвращает черновик с именами вместо id.
func (w *Wizard) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()

	d := w.draft
	s := Summary{Sweetness: d.Sweetness, Flavors: []string{}}
	if pkg, ok := w.catalog.Package(d.PackageID); ok {
		s.PackageDescription = pkg.Description()
		s.Total = pkg.Price
	}
	for _, id := range d.FlavorIDs {
		if f, ok := w.catalog.Flavor(id); ok {
			s.Flavors = append(s.Flavors, f.Name)
		}
	}
	if ct, ok := w.catalog.CrushType(d.CrushTypeID); ok {
		s.CrushType = ct.Name
	}
	return s
}

// setLocked меняет содержимое черновика. Ключ идемпотентности относится
// к конкретному содержимому, поэтому сбрасывается.
func (w *Wizard) setLocked(mutate func(d *Draft)) {
	mutate(&w.draft)
	w.idemKey = ""
}

// idempotencyKeyLocked возвращает ключ для текущего содержимого, создавая его при первом запросе.
func (w *Wizard) idempotencyKeyLocked() string {
	if w.idemKey == "" {
		w.idemKey = uuid.NewString()
	}
	return w.idemKey
}

// applyProof записывает результат загрузки, если черновик не сменился.
func (w *Wizard) applyProof(generation uint64, f *ProofFile, url string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.generation != generation {
		return false
	}
	w.setLocked(func(d *Draft) {
		d.ProofFile = f
		d.PaymentProofURL = url
	})
	return true
}

// clearProofURL сбрасывает ссылку после неудачной загрузки.
func (w *Wizard) clearProofURL(generation uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.generation != generation || w.draft.PaymentProofURL == "" {
		return
	}
	w.setLocked(func(d *Draft) { d.PaymentProofURL = "" })
}

// beginSubmit фиксирует черновик, его поколение и ключ идемпотентности.
func (w *Wizard) beginSubmit() (Draft, uint64, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.clone(), w.generation, w.idempotencyKeyLocked()
}

// finishSubmit начинает новый черновик, если отправленный всё ещё текущий.
func (w *Wizard) finishSubmit(generation uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.generation != generation {
		return false
	}
	w.resetLocked()
	return true
}
