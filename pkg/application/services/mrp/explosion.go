package mrp

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
)

// ErrEmptyBOM is returned when a BOM has no components to explode
var ErrEmptyBOM = &entities.Error{Kind: entities.KindNotFound, Op: "bom.explode", Message: "bom has no components"}

// Exploder turns a BOM and an order quantity into flat material requirements.
// Sub-assemblies are listed as single requirements and never exploded through their own BOMs.
type Exploder struct {
	store  repositories.Store
	logger *zap.Logger
}

// NewExploder creates a new exploder
func NewExploder(store repositories.Store, logger *zap.Logger) *Exploder {
	return &Exploder{
		store:  store,
		logger: logging.OrNop(logger),
	}
}

// Explode scales every component of bom by quantity, in (level, position, id) order.
// Draft BOMs may be exploded; obsolete ones may not.
func (e *Exploder) Explode(bom *entities.BillOfMaterials, components []entities.BomComponent, quantity decimal.Decimal) ([]dto.MaterialRequirement, error) {
	const op = "bom.explode"

	if bom == nil {
		return nil, entities.Validationf(op, "bom is required")
	}
	if !quantity.IsPositive() {
		return nil, entities.Validationf(op, "order quantity must be positive, got %s", quantity.String())
	}
	if bom.Status == entities.BOMObsolete {
		return nil, entities.InvalidTransitionf(op, "bom %d is obsolete", bom.ID)
	}

	owned := make([]entities.BomComponent, 0, len(components))
	for _, c := range components {
		if c.BomID == bom.ID {
			owned = append(owned, c)
		}
	}
	if len(owned) == 0 {
		return nil, ErrEmptyBOM
	}
	entities.SortComponents(owned)

	requirements := make([]dto.MaterialRequirement, 0, len(owned))
	for _, c := range owned {
		requirements = append(requirements, dto.MaterialRequirement{
			ComponentItemID:   c.ComponentItemID,
			PlannedQuantity:   c.Quantity.Mul(quantity),
			UomID:             c.UomID,
			SourceComponentID: c.ID,
			LevelNumber:       c.LevelNumber,
			Position:          c.Position,
		})
	}

	e.logger.Debug("bom exploded",
		zap.Int64("bom_id", bom.ID),
		zap.String("quantity", quantity.String()),
		zap.Int("requirements", len(requirements)),
	)

	return requirements, nil
}

// ExplodeByID loads the BOM and its components and explodes them
func (e *Exploder) ExplodeByID(ctx context.Context, bomID int64, quantity decimal.Decimal) (*dto.ExplosionResult, error) {
	bom, err := e.store.BOMs().GetBOM(ctx, bomID)
	if err != nil {
		return nil, err
	}
	components, err := e.store.BOMs().GetComponents(ctx, bomID)
	if err != nil {
		return nil, err
	}

	requirements, err := e.Explode(bom, components, quantity)
	if err != nil {
		return nil, err
	}

	return &dto.ExplosionResult{
		BomID:        bom.ID,
		ItemID:       bom.ItemID,
		Quantity:     quantity,
		Requirements: requirements,
	}, nil
}
