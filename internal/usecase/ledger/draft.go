package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goalfolio-backend/internal/domain"
)

// Draft holds the user-supplied fields of a new position
type Draft struct {
	Category  domain.Category
	Symbol    string
	Name      string
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal // required for equities and digital assets
	Currency  string
	Notes     string
}

// AddDraft creates a position through the convenience adder of its category.
// A cash draft always has a unit price of 1; other drafts default to 1 as well.
func (s *Service) AddDraft(ctx context.Context, d Draft) (domain.Position, error) {
	opts := []AddOption{WithNotes(d.Notes)}
	if d.Currency != "" {
		opts = append(opts, WithCurrency(strings.ToUpper(d.Currency)))
	}

	switch d.Category {
	case domain.CategoryCash:
		if d.Name != "" {
			opts = append(opts, WithName(d.Name))
		}
		return s.AddCash(ctx, d.Quantity, opts...)
	case domain.CategoryEquities, domain.CategoryDigitalAssets:
		if strings.TrimSpace(d.Symbol) == "" {
			return domain.Position{}, errors.Join(domain.ErrInvalidPosition, errors.New("symbol is required"))
		}
		if d.UnitPrice == nil {
			return domain.Position{}, errors.Join(domain.ErrInvalidPosition, errors.New("unit price is required"))
		}
		name := d.Name
		if name == "" {
			name = strings.ToUpper(strings.TrimSpace(d.Symbol))
		}
		if d.Category == domain.CategoryEquities {
			return s.AddEquity(ctx, d.Symbol, name, d.Quantity, *d.UnitPrice, opts...)
		}
		return s.AddDigitalAsset(ctx, d.Symbol, name, d.Quantity, *d.UnitPrice, opts...)
	case domain.CategoryOther:
		if strings.TrimSpace(d.Name) == "" {
			return domain.Position{}, errors.Join(domain.ErrInvalidPosition, errors.New("name is required"))
		}
		if d.UnitPrice != nil {
			opts = append(opts, WithUnitPrice(*d.UnitPrice))
		}
		return s.AddOther(ctx, d.Name, d.Quantity, opts...)
	default:
		return domain.Position{}, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, d.Category)
	}
}

// Patch lists the fields to change on an existing position; nil fields are kept.
// An empty Symbol or Notes clears the field.
type Patch struct {
	Symbol    *string
	Name      *string
	Quantity  *decimal.Decimal
	UnitPrice *decimal.Decimal
	Currency  *string
	Notes     *string
}

// Apply returns p with the patch applied
func (pt Patch) Apply(p domain.Position) domain.Position {
	p = p.Clone()
	if pt.Symbol != nil {
		p.Symbol = normalizeSymbol(*pt.Symbol)
	}
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Quantity != nil {
		p.Quantity = *pt.Quantity
	}
	if pt.UnitPrice != nil {
		p.UnitPrice = *pt.UnitPrice
	}
	if pt.Currency != nil && *pt.Currency != "" {
		p.Currency = strings.ToUpper(*pt.Currency)
	}
	if pt.Notes != nil {
		p.Notes = domain.StringPtr(*pt.Notes)
	}
	return p
}

// PatchPosition applies a patch to the position with the given ID in one step.
// An unknown ID is a no-op and reports false, like Update.
func (s *Service) PatchPosition(ctx context.Context, id uuid.UUID, patch Patch) (domain.Position, bool, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Position{}, false, nil
	}
	p := patch.Apply(s.positions[i])
	s.positions[i] = p
	change, err := s.commit(ctx, Change{Op: OpUpdate, PositionID: p.ID, Category: p.Category})
	s.mu.Unlock()

	s.notify(change)
	return p.Clone(), true, err
}
