package store

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreatePackage inserts pkg. Status defaults to active.
func (s *Store) CreatePackage(ctx context.Context, pkg *Package) error {
	if strings.TrimSpace(pkg.Name) == "" {
		return invalid("package name is required")
	}
	if pkg.PackageType == "" {
		pkg.PackageType = "website"
	}
	if pkg.Status == "" {
		pkg.Status = StatusActive
	}
	return mapErr("package", 0, s.db.WithContext(ctx).Create(pkg).Error)
}

// UpdatePackage saves all fields of pkg.
func (s *Store) UpdatePackage(ctx context.Context, pkg *Package) error {
	if strings.TrimSpace(pkg.Name) == "" {
		return invalid("package name is required")
	}
	if _, err := get[Package](ctx, s.db, "package", pkg.ID); err != nil {
		return err
	}
	return mapErr("package", pkg.ID, s.db.WithContext(ctx).Omit("created_at").Save(pkg).Error)
}

func (s *Store) Package(ctx context.Context, id int64) (*Package, error) {
	return get[Package](ctx, s.db, "package", id)
}

// Packages lists packages by name. Empty filters match everything.
func (s *Store) Packages(ctx context.Context, packageType, status string) ([]Package, error) {
	q := s.db.WithContext(ctx).Order("name ASC")
	if packageType != "" {
		q = q.Where("package_type = ?", packageType)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []Package
	return out, mapErr("packages", 0, q.Find(&out).Error)
}

func (s *Store) DeletePackage(ctx context.Context, id int64) error {
	return remove[Package](ctx, s.db, "package", id)
}

func (s *Store) ArchivePackage(ctx context.Context, id int64) error {
	return setStatus[Package](ctx, s.db, "package", id, StatusArchived)
}

func (s *Store) UnarchivePackage(ctx context.Context, id int64) error {
	return setStatus[Package](ctx, s.db, "package", id, StatusActive)
}

// ClonePackage copies a package as "<name> (Copy)".
func (s *Store) ClonePackage(ctx context.Context, id int64) (*Package, error) {
	orig, err := s.Package(ctx, id)
	if err != nil {
		return nil, err
	}
	clone := &Package{
		Name:             orig.Name + " (Copy)",
		PackageType:      orig.PackageType,
		Status:           orig.Status,
		ShortDescription: orig.ShortDescription,
		BasePrice:        orig.BasePrice,
		SchemaData:       SchemaData{SchemaJSON: orig.SchemaJSON},
	}
	if err := s.db.WithContext(ctx).Create(clone).Error; err != nil {
		return nil, mapErr("package", id, err)
	}
	return clone, nil
}

// CreateExtra inserts ex. Status defaults to active.
func (s *Store) CreateExtra(ctx context.Context, ex *Extra) error {
	if strings.TrimSpace(ex.Name) == "" {
		return invalid("extra name is required")
	}
	if ex.Status == "" {
		ex.Status = StatusActive
	}
	return mapErr("extra", 0, s.db.WithContext(ctx).Create(ex).Error)
}

func (s *Store) UpdateExtra(ctx context.Context, ex *Extra) error {
	if strings.TrimSpace(ex.Name) == "" {
		return invalid("extra name is required")
	}
	if _, err := get[Extra](ctx, s.db, "extra", ex.ID); err != nil {
		return err
	}
	return mapErr("extra", ex.ID, s.db.WithContext(ctx).Omit("created_at").Save(ex).Error)
}

func (s *Store) Extra(ctx context.Context, id int64) (*Extra, error) {
	return get[Extra](ctx, s.db, "extra", id)
}

// Extras lists extras by name, optionally filtered by status.
func (s *Store) Extras(ctx context.Context, status string) ([]Extra, error) {
	q := s.db.WithContext(ctx).Order("name ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []Extra
	return out, mapErr("extras", 0, q.Find(&out).Error)
}

func (s *Store) DeleteExtra(ctx context.Context, id int64) error {
	return remove[Extra](ctx, s.db, "extra", id)
}

// CreateBrochure inserts b. Status defaults to draft.
func (s *Store) CreateBrochure(ctx context.Context, b *Brochure) error {
	if strings.TrimSpace(b.Title) == "" {
		return invalid("brochure title is required")
	}
	if b.Status == "" {
		b.Status = StatusDraft
	}
	return mapErr("brochure", 0, s.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error)
}

func (s *Store) UpdateBrochure(ctx context.Context, b *Brochure) error {
	if strings.TrimSpace(b.Title) == "" {
		return invalid("brochure title is required")
	}
	if _, err := get[Brochure](ctx, s.db, "brochure", b.ID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Omit(clause.Associations, "created_at").Save(b).Error
	return mapErr("brochure", b.ID, err)
}

// Brochure returns a brochure with its items in sort order.
func (s *Store) Brochure(ctx context.Context, id int64) (*Brochure, error) {
	b, err := get[Brochure](ctx, s.db, "brochure", id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Where("brochure_id = ?", id).
		Order("sort_order ASC, id ASC").Find(&b.Items).Error
	if err != nil {
		return nil, mapErr("brochure items", id, err)
	}
	return b, nil
}

// Brochures lists brochures, newest first.
func (s *Store) Brochures(ctx context.Context, status string) ([]Brochure, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []Brochure
	return out, mapErr("brochures", 0, q.Find(&out).Error)
}

func (s *Store) DeleteBrochure(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("brochure_id = ?", id).Delete(&BrochureItem{}).Error; err != nil {
			return mapErr("brochure", id, err)
		}
		return remove[Brochure](ctx, tx, "brochure", id)
	})
}

// SetBrochureItems replaces the brochure's package list. Sort order follows
// the slice.
func (s *Store) SetBrochureItems(ctx context.Context, brochureID int64, items []BrochureItem) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := get[Brochure](ctx, tx, "brochure", brochureID); err != nil {
			return err
		}
		if err := tx.Where("brochure_id = ?", brochureID).Delete(&BrochureItem{}).Error; err != nil {
			return mapErr("brochure items", brochureID, err)
		}
		for i := range items {
			items[i].ID = 0
			items[i].BrochureID = brochureID
			items[i].SortOrder = (i + 1) * sortStep
		}
		if len(items) == 0 {
			return nil
		}
		return mapErr("brochure items", brochureID, tx.Create(&items).Error)
	})
}

// CreateSnippet inserts a text snippet.
func (s *Store) CreateSnippet(ctx context.Context, sn *Snippet) error {
	if strings.TrimSpace(sn.Title) == "" {
		return invalid("snippet title is required")
	}
	return mapErr("snippet", 0, s.db.WithContext(ctx).Create(sn).Error)
}

func (s *Store) UpdateSnippet(ctx context.Context, sn *Snippet) error {
	if strings.TrimSpace(sn.Title) == "" {
		return invalid("snippet title is required")
	}
	if _, err := get[Snippet](ctx, s.db, "snippet", sn.ID); err != nil {
		return err
	}
	return mapErr("snippet", sn.ID, s.db.WithContext(ctx).Omit("created_at").Save(sn).Error)
}

func (s *Store) Snippet(ctx context.Context, id int64) (*Snippet, error) {
	return get[Snippet](ctx, s.db, "snippet", id)
}

// Snippets lists snippets by title, optionally filtered by category.
func (s *Store) Snippets(ctx context.Context, category string) ([]Snippet, error) {
	q := s.db.WithContext(ctx).Order("title ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []Snippet
	return out, mapErr("snippets", 0, q.Find(&out).Error)
}

func (s *Store) DeleteSnippet(ctx context.Context, id int64) error {
	return remove[Snippet](ctx, s.db, "snippet", id)
}
