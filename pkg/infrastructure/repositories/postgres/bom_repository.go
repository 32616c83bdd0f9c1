package postgres

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

type bomRepository struct {
	*Store
}

func (r *bomRepository) GetBOM(ctx context.Context, id int64) (*entities.BillOfMaterials, error) {
	var bom entities.BillOfMaterials
	if err := first(r.locking(ctx), &bom, id, "get bom", "bom"); err != nil {
		return nil, err
	}
	return &bom, nil
}

func (r *bomRepository) ListBOMsByItem(ctx context.Context, itemID int64) ([]*entities.BillOfMaterials, error) {
	var boms []*entities.BillOfMaterials
	err := r.conn(ctx).Where("item_id = ?", itemID).Order("id").Find(&boms).Error
	return boms, err
}

func (r *bomRepository) ListBOMsByStatus(ctx context.Context, status entities.BOMStatus) ([]*entities.BillOfMaterials, error) {
	var boms []*entities.BillOfMaterials
	err := r.conn(ctx).Where("status = ?", status).Order("id").Find(&boms).Error
	return boms, err
}

func (r *bomRepository) SaveBOM(ctx context.Context, bom *entities.BillOfMaterials) error {
	return translate(r.conn(ctx).Omit(clause.Associations).Save(bom).Error, "save bom")
}

func (r *bomRepository) GetComponents(ctx context.Context, bomID int64) ([]entities.BomComponent, error) {
	var components []entities.BomComponent
	err := r.conn(ctx).
		Where("bom_id = ?", bomID).
		Order("level_number, position, id").
		Find(&components).Error
	return components, err
}

func (r *bomRepository) GetComponent(ctx context.Context, id int64) (*entities.BomComponent, error) {
	var component entities.BomComponent
	if err := first(r.conn(ctx), &component, id, "get bom component", "bom component"); err != nil {
		return nil, err
	}
	return &component, nil
}

func (r *bomRepository) SaveComponent(ctx context.Context, component *entities.BomComponent) error {
	if component.ParentComponentID != nil {
		parent, err := r.GetComponent(ctx, *component.ParentComponentID)
		if err != nil {
			return err
		}
		if parent.BomID != component.BomID {
			return entities.Validationf("save bom component", "parent component %d is not part of bom %d", parent.ID, component.BomID)
		}
	}
	return translate(r.conn(ctx).Save(component).Error, "save bom component")
}

func (r *bomRepository) DeleteComponent(ctx context.Context, id int64) error {
	result := r.conn(ctx).Delete(&entities.BomComponent{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.NotFoundf("delete bom component", "bom component %d not found", id)
	}
	return nil
}
