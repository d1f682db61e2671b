package store

import (
	"context"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateProposal inserts p, filling defaults for status, type and
// currency.
func (s *Store) CreateProposal(ctx context.Context, p *Proposal) error {
	if err := validateProposal(p); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.ProposalType == "" {
		p.ProposalType = "proposal"
	}
	if p.Currency == "" {
		p.Currency = "PHP"
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return mapErr("proposal", p.ID, err)
	}
	return nil
}

// UpdateProposal saves the header fields and schema data of p. Items and
// the stored total are left untouched.
func (s *Store) UpdateProposal(ctx context.Context, p *Proposal) error {
	if err := validateProposal(p); err != nil {
		return err
	}
	if _, err := get[Proposal](ctx, s.db, "proposal", p.ID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Model(p).
		Omit(clause.Associations, "total_amount", "created_at").
		Select("*").
		Updates(p).Error
	return mapErr("proposal", p.ID, err)
}

func validateProposal(p *Proposal) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("proposal name is required")
	}
	return nil
}

// Proposal returns the proposal header with its schema data decoded.
func (s *Store) Proposal(ctx context.Context, id int64) (*Proposal, error) {
	return get[Proposal](ctx, s.db, "proposal", id)
}

// ProposalWithItems returns the proposal and its items in display order.
func (s *Store) ProposalWithItems(ctx context.Context, id int64) (*Proposal, error) {
	p, err := s.Proposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Items, err = s.ProposalItems(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

// Proposals lists proposals, newest first. An empty status lists all.
func (s *Store) Proposals(ctx context.Context, status string) ([]Proposal, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []Proposal
	if err := q.Find(&out).Error; err != nil {
		return nil, mapErr("proposals", 0, err)
	}
	return out, nil
}

// DeleteProposal removes a proposal and its items.
func (s *Store) DeleteProposal(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", id).Delete(&ProposalItem{}).Error; err != nil {
			return mapErr("proposal", id, err)
		}
		return remove[Proposal](ctx, tx, "proposal", id)
	})
}

// ArchiveProposal sets the status to archived.
func (s *Store) ArchiveProposal(ctx context.Context, id int64) error {
	return setStatus[Proposal](ctx, s.db, "proposal", id, StatusArchived)
}

// UnarchiveProposal returns an archived proposal to draft.
func (s *Store) UnarchiveProposal(ctx context.Context, id int64) error {
	return setStatus[Proposal](ctx, s.db, "proposal", id, StatusDraft)
}

// CloneProposal copies a proposal and its items as a new draft named
// "Copy of <name>" and returns the copy.
func (s *Store) CloneProposal(ctx context.Context, id int64) (*Proposal, error) {
	var clone *Proposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orig, err := get[Proposal](ctx, tx, "proposal", id)
		if err != nil {
			return err
		}
		items, err := itemsOf(tx, id)
		if err != nil {
			return err
		}
		clone = &Proposal{
			Name:         "Copy of " + orig.Name,
			ClientName:   orig.ClientName,
			ProjectName:  orig.ProjectName,
			Status:       StatusDraft,
			ProposalType: orig.ProposalType,
			Currency:     orig.Currency,
			SchemaData:   SchemaData{SchemaJSON: orig.SchemaJSON},
		}
		if err := tx.Omit(clause.Associations).Create(clone).Error; err != nil {
			return mapErr("proposal", id, err)
		}
		for _, it := range items {
			it.ID = 0
			it.ProposalID = clone.ID
			if err := tx.Create(&it).Error; err != nil {
				return mapErr("proposal item", 0, err)
			}
		}
		return recompute(tx, clone)
	})
	if err != nil {
		return nil, err
	}
	return clone, nil
}

// ItemInput is a new line item. A zero Quantity means 1.
type ItemInput struct {
	ItemType    string
	ItemID      *int64
	Name        string
	Description string
	Quantity    int
	UnitPrice   float64
	TotalPrice  float64
	SortOrder   int
}

func (in ItemInput) item(proposalID int64) (ProposalItem, error) {
	if in.Quantity < 0 {
		return ProposalItem{}, invalid("quantity %d", in.Quantity)
	}
	if in.UnitPrice < 0 {
		return ProposalItem{}, invalid("unit price %.2f", in.UnitPrice)
	}
	it := ProposalItem{
		ProposalID:  proposalID,
		ItemType:    in.ItemType,
		ItemID:      in.ItemID,
		Name:        in.Name,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		TotalPrice:  in.TotalPrice,
		SortOrder:   in.SortOrder,
	}
	if it.ItemType == "" {
		it.ItemType = ItemCustom
	}
	if it.Quantity == 0 {
		it.Quantity = 1
	}
	// An explicit total of exactly zero is recomputed.
	if it.TotalPrice == 0 && it.UnitPrice > 0 {
		it.TotalPrice = it.UnitPrice * float64(it.Quantity)
	}
	return it, nil
}

// ItemPatch changes some fields of an item. When Quantity or UnitPrice is
// set and TotalPrice is not, the total is recomputed.
type ItemPatch struct {
	Name        *string
	Description *string
	Quantity    *int
	UnitPrice   *float64
	TotalPrice  *float64
	SortOrder   *int
}

// ProposalItems returns a proposal's items by sort order, then id.
func (s *Store) ProposalItems(ctx context.Context, proposalID int64) ([]ProposalItem, error) {
	return itemsOf(s.db.WithContext(ctx), proposalID)
}

func itemsOf(db *gorm.DB, proposalID int64) ([]ProposalItem, error) {
	var items []ProposalItem
	err := db.Where("proposal_id = ?", proposalID).Order("sort_order ASC, id ASC").Find(&items).Error
	if err != nil {
		return nil, mapErr("proposal items", proposalID, err)
	}
	return items, nil
}

// AddItem appends an item and updates the proposal total.
func (s *Store) AddItem(ctx context.Context, proposalID int64, in ItemInput) (*ProposalItem, error) {
	it, err := in.item(proposalID)
	if err != nil {
		return nil, err
	}
	err = s.withProposal(ctx, proposalID, func(tx *gorm.DB, p *Proposal) error {
		if err := tx.Create(&it).Error; err != nil {
			return mapErr("proposal item", 0, err)
		}
		return recompute(tx, p)
	})
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateItem applies patch to an item and updates the proposal total.
func (s *Store) UpdateItem(ctx context.Context, itemID int64, patch ItemPatch) (*ProposalItem, error) {
	var out *ProposalItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		it, err := get[ProposalItem](ctx, tx, "proposal item", itemID)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			it.Name = *patch.Name
		}
		if patch.Description != nil {
			it.Description = *patch.Description
		}
		if patch.Quantity != nil {
			if *patch.Quantity <= 0 {
				return invalid("quantity %d", *patch.Quantity)
			}
			it.Quantity = *patch.Quantity
		}
		if patch.UnitPrice != nil {
			if *patch.UnitPrice < 0 {
				return invalid("unit price %.2f", *patch.UnitPrice)
			}
			it.UnitPrice = *patch.UnitPrice
		}
		if patch.SortOrder != nil {
			it.SortOrder = *patch.SortOrder
		}
		switch {
		case patch.TotalPrice != nil:
			it.TotalPrice = *patch.TotalPrice
		case patch.Quantity != nil || patch.UnitPrice != nil:
			it.TotalPrice = float64(it.Quantity) * it.UnitPrice
		}
		if err := tx.Save(it).Error; err != nil {
			return mapErr("proposal item", itemID, err)
		}
		out = it
		return recompute(tx, &Proposal{ID: it.ProposalID})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteItem removes an item and updates the proposal total.
func (s *Store) DeleteItem(ctx context.Context, itemID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		it, err := get[ProposalItem](ctx, tx, "proposal item", itemID)
		if err != nil {
			return err
		}
		if err := tx.Delete(it).Error; err != nil {
			return mapErr("proposal item", itemID, err)
		}
		return recompute(tx, &Proposal{ID: it.ProposalID})
	})
}

// ReplaceItems swaps all of a proposal's items for inputs, in order.
func (s *Store) ReplaceItems(ctx context.Context, proposalID int64, inputs []ItemInput) ([]ProposalItem, error) {
	items := make([]ProposalItem, 0, len(inputs))
	for _, in := range inputs {
		it, err := in.item(proposalID)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	err := s.withProposal(ctx, proposalID, func(tx *gorm.DB, p *Proposal) error {
		if err := tx.Where("proposal_id = ?", proposalID).Delete(&ProposalItem{}).Error; err != nil {
			return mapErr("proposal items", proposalID, err)
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return mapErr("proposal items", proposalID, err)
			}
		}
		return recompute(tx, p)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// AddPackages appends one item per package at the end of the proposal,
// quantity 1 at the package's base price. Unknown ids are skipped. It
// returns the number of items added.
func (s *Store) AddPackages(ctx context.Context, proposalID int64, packageIDs []int64) (int, error) {
	return s.appendCatalog(ctx, proposalID, packageIDs, func(tx *gorm.DB, id int64) (ProposalItem, bool, error) {
		var pkg Package
		err := tx.First(&pkg, id).Error
		if err == gorm.ErrRecordNotFound {
			return ProposalItem{}, false, nil
		}
		return ProposalItem{
			ItemType:    ItemPackage,
			Name:        pkg.Name,
			Description: pkg.ShortDescription,
			UnitPrice:   pkg.BasePrice,
		}, err == nil, err
	})
}

// AddExtras is AddPackages for extras.
func (s *Store) AddExtras(ctx context.Context, proposalID int64, extraIDs []int64) (int, error) {
	return s.appendCatalog(ctx, proposalID, extraIDs, func(tx *gorm.DB, id int64) (ProposalItem, bool, error) {
		var ex Extra
		err := tx.First(&ex, id).Error
		if err == gorm.ErrRecordNotFound {
			return ProposalItem{}, false, nil
		}
		return ProposalItem{
			ItemType:    ItemExtra,
			Name:        ex.Name,
			Description: ex.Description,
			UnitPrice:   ex.BasePrice,
		}, err == nil, err
	})
}

const sortStep = 10

func (s *Store) appendCatalog(ctx context.Context, proposalID int64, ids []int64, load func(*gorm.DB, int64) (ProposalItem, bool, error)) (int, error) {
	added := 0
	err := s.withProposal(ctx, proposalID, func(tx *gorm.DB, p *Proposal) error {
		var maxSort int
		if err := tx.Model(&ProposalItem{}).Where("proposal_id = ?", proposalID).
			Select("COALESCE(MAX(sort_order), 0)").Scan(&maxSort).Error; err != nil {
			return mapErr("proposal items", proposalID, err)
		}
		sort := maxSort + sortStep
		for _, id := range ids {
			if id <= 0 {
				continue
			}
			it, ok, err := load(tx, id)
			if err != nil {
				return mapErr("catalog item", id, err)
			}
			if !ok {
				continue
			}
			ref := id
			it.ProposalID = proposalID
			it.ItemID = &ref
			it.Quantity = 1
			it.TotalPrice = it.UnitPrice
			it.SortOrder = sort
			if err := tx.Create(&it).Error; err != nil {
				return mapErr("proposal item", 0, err)
			}
			added++
			sort += sortStep
		}
		if added == 0 {
			return nil
		}
		return recompute(tx, p)
	})
	return added, err
}

// withProposal runs fn in a transaction after checking the proposal exists.
func (s *Store) withProposal(ctx context.Context, id int64, fn func(*gorm.DB, *Proposal) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := get[Proposal](ctx, tx, "proposal", id)
		if err != nil {
			return err
		}
		return fn(tx, p)
	})
}

// recompute stores the sum of the proposal's item totals as its
// total_amount and bumps updated_at, which keys cached renders.
func recompute(tx *gorm.DB, p *Proposal) error {
	var total float64
	if err := tx.Model(&ProposalItem{}).Where("proposal_id = ?", p.ID).
		Select("COALESCE(SUM(total_price), 0)").Scan(&total).Error; err != nil {
		return mapErr("proposal total", p.ID, err)
	}
	total = math.Round(total*100) / 100
	cols := map[string]any{"total_amount": total, "updated_at": time.Now()}
	if err := tx.Model(&Proposal{}).Where("id = ?", p.ID).UpdateColumns(cols).Error; err != nil {
		return mapErr("proposal total", p.ID, err)
	}
	p.TotalAmount = total
	return nil
}
