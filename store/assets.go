package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/lvillar/proposalpdf"
	"github.com/lvillar/proposalpdf/assets"
)

// Metadata keys holding an asset's relative file path, in lookup order.
var metadataPathKeys = []string{"file_path", "path"}

var (
	_ assets.Lookup             = (*Store)(nil)
	_ proposalpdf.ContentSource = (*Store)(nil)
)

// CreateAttachment records an uploaded file.
func (s *Store) CreateAttachment(ctx context.Context, at *Attachment) error {
	if strings.TrimSpace(at.FilePath) == "" {
		return invalid("attachment file path is required")
	}
	return mapErr("attachment", 0, s.db.WithContext(ctx).Create(at).Error)
}

func (s *Store) Attachment(ctx context.Context, id int64) (*Attachment, error) {
	return get[Attachment](ctx, s.db, "attachment", id)
}

// CreateAsset inserts a. The slug defaults to a slugified name.
func (s *Store) CreateAsset(ctx context.Context, a *Asset) error {
	if strings.TrimSpace(a.Name) == "" {
		return invalid("asset name is required")
	}
	if a.Slug == "" {
		a.Slug = slugify(a.Name)
	}
	return mapErr("asset", 0, s.db.WithContext(ctx).Omit("Attachment").Create(a).Error)
}

func (s *Store) UpdateAsset(ctx context.Context, a *Asset) error {
	if strings.TrimSpace(a.Name) == "" {
		return invalid("asset name is required")
	}
	if _, err := get[Asset](ctx, s.db, "asset", a.ID); err != nil {
		return err
	}
	return mapErr("asset", a.ID, s.db.WithContext(ctx).Omit("Attachment", "created_at").Save(a).Error)
}

// Asset returns an asset with its attachment preloaded.
func (s *Store) Asset(ctx context.Context, id int64) (*Asset, error) {
	if id <= 0 {
		return nil, invalid("asset id %d", id)
	}
	var a Asset
	if err := s.db.WithContext(ctx).Preload("Attachment").First(&a, id).Error; err != nil {
		return nil, mapErr("asset", id, err)
	}
	return &a, nil
}

// AssetBySlug returns the asset with the given slug.
func (s *Store) AssetBySlug(ctx context.Context, slug string) (*Asset, error) {
	var a Asset
	if err := s.db.WithContext(ctx).Preload("Attachment").Where("slug = ?", slug).First(&a).Error; err != nil {
		return nil, mapErr("asset "+slug, 0, err)
	}
	return &a, nil
}

// Assets lists assets by name, optionally filtered by type.
func (s *Store) Assets(ctx context.Context, assetType string) ([]Asset, error) {
	q := s.db.WithContext(ctx).Order("name ASC")
	if assetType != "" {
		q = q.Where("asset_type = ?", assetType)
	}
	var out []Asset
	return out, mapErr("assets", 0, q.Find(&out).Error)
}

func (s *Store) DeleteAsset(ctx context.Context, id int64) error {
	return remove[Asset](ctx, s.db, "asset", id)
}

// LookupAsset returns the file information of an asset for the resolver.
func (s *Store) LookupAsset(ctx context.Context, id int64) (assets.Record, error) {
	a, err := s.Asset(ctx, id)
	if err != nil {
		return assets.Record{}, err
	}
	rec := assets.Record{ID: a.ID}
	if a.Attachment != nil {
		rec.AttachmentPath = a.Attachment.FilePath
	}
	meta := a.Metadata()
	for _, key := range metadataPathKeys {
		if p, ok := meta[key].(string); ok && p != "" {
			rec.MetadataPath = p
			break
		}
	}
	return rec, nil
}

// LinkedContent returns a text snippet as agreement content.
func (s *Store) LinkedContent(ctx context.Context, id int64) (proposalpdf.LinkedContent, error) {
	sn, err := s.Snippet(ctx, id)
	if err != nil {
		return proposalpdf.LinkedContent{}, fmt.Errorf("linked content: %w", err)
	}
	return proposalpdf.LinkedContent{Title: sn.Title, Body: sn.Content}, nil
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
