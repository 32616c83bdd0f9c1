package repositories

import (
	"context"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

// BOMRepository provides access to bills of materials and their components.
// GetComponents returns components ordered by level, position and id.
type BOMRepository interface {
	GetBOM(ctx context.Context, id int64) (*entities.BillOfMaterials, error)
	ListBOMsByItem(ctx context.Context, itemID int64) ([]*entities.BillOfMaterials, error)
	ListBOMsByStatus(ctx context.Context, status entities.BOMStatus) ([]*entities.BillOfMaterials, error)
	SaveBOM(ctx context.Context, bom *entities.BillOfMaterials) error

	GetComponents(ctx context.Context, bomID int64) ([]entities.BomComponent, error)
	GetComponent(ctx context.Context, id int64) (*entities.BomComponent, error)
	SaveComponent(ctx context.Context, component *entities.BomComponent) error
	DeleteComponent(ctx context.Context, id int64) error
}
