package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/agamariel/cocapremium/internal/models"
	"golang.org/x/sync/errgroup"
)

// Catalog - источник справочников для мастера.
type Catalog interface {
	ListPackages(ctx context.Context) ([]*models.Package, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListFlavors(ctx context.Context, categoryID string) ([]*models.Flavor, error)
	ListCrushTypes(ctx context.Context) ([]*models.CrushType, error)
	ListActivePaymentQRCodes(ctx context.Context) ([]*models.QRCode, error)
}

// Snapshot - справочники, загруженные один раз при старте мастера. Не изменяется.
type Snapshot struct {
	Packages   []*models.Package
	Categories []*models.Category
	Flavors    []*models.Flavor
	CrushTypes []*models.CrushType
	QRCodes    []*models.QRCode
}

// FetchSnapshot загружает все справочники параллельно.
func FetchSnapshot(ctx context.Context, c Catalog) (*Snapshot, error) {
	var s Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		s.Packages, err = c.ListPackages(ctx)
		return wrapFetch("packages", err)
	})
	g.Go(func() (err error) {
		s.Categories, err = c.ListCategories(ctx)
		return wrapFetch("categories", err)
	})
	g.Go(func() (err error) {
		s.Flavors, err = c.ListFlavors(ctx, "")
		return wrapFetch("flavors", err)
	})
	g.Go(func() (err error) {
		s.CrushTypes, err = c.ListCrushTypes(ctx)
		return wrapFetch("crush types", err)
	})
	g.Go(func() (err error) {
		s.QRCodes, err = c.ListActivePaymentQRCodes(ctx)
		return wrapFetch("qr codes", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &s, nil
}

func wrapFetch(what string, err error) error {
	if err != nil {
		return fmt.Errorf("fetch %s: %w", what, err)
	}
	return nil
}

// Package ищет пакет по id.
func (s *Snapshot) Package(id string) (*models.Package, bool) {
	for _, p := range s.Packages {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Flavor ищет вкус по id.
func (s *Snapshot) Flavor(id string) (*models.Flavor, bool) {
	for _, f := range s.Flavors {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// CrushType ищет тип измельчения по id, затем по имени без учёта регистра.
func (s *Snapshot) CrushType(idOrName string) (*models.CrushType, bool) {
	for _, c := range s.CrushTypes {
		if c.ID == idOrName {
			return c, true
		}
	}
	for _, c := range s.CrushTypes {
		if strings.EqualFold(c.Name, idOrName) {
			return c, true
		}
	}
	return nil, false
}

// FlavorsInCategory возвращает вкусы категории; пустой id - все.
func (s *Snapshot) FlavorsInCategory(categoryID string) []*models.Flavor {
	if categoryID == "" {
		return s.Flavors
	}
	out := []*models.Flavor{}
	for _, f := range s.Flavors {
		if f.CategoryID == categoryID {
			out = append(out, f)
		}
	}
	return out
}
