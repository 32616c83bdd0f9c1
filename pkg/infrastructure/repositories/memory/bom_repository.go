package memory

import (
	"context"
	"sort"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

type bomRepository struct {
	*view
}

func (r *bomRepository) GetBOM(_ context.Context, id int64) (*entities.BillOfMaterials, error) {
	var out *entities.BillOfMaterials
	err := r.access.read(func(s *state) error {
		bom, ok := s.boms[id]
		if !ok {
			return entities.NotFoundf("get bom", "bom %d not found", id)
		}
		out = copyBOM(bom)
		return nil
	})
	return out, err
}

func (r *bomRepository) ListBOMsByItem(_ context.Context, itemID int64) ([]*entities.BillOfMaterials, error) {
	return r.list(func(b *entities.BillOfMaterials) bool { return b.ItemID == itemID })
}

func (r *bomRepository) ListBOMsByStatus(_ context.Context, status entities.BOMStatus) ([]*entities.BillOfMaterials, error) {
	return r.list(func(b *entities.BillOfMaterials) bool { return b.Status == status })
}

func (r *bomRepository) list(match func(*entities.BillOfMaterials) bool) ([]*entities.BillOfMaterials, error) {
	var out []*entities.BillOfMaterials
	err := r.access.read(func(s *state) error {
		for _, bom := range s.boms {
			if match(bom) {
				out = append(out, copyBOM(bom))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *bomRepository) SaveBOM(_ context.Context, bom *entities.BillOfMaterials) error {
	return r.access.write(func(s *state) error {
		if _, ok := s.items[bom.ItemID]; !ok {
			return entities.NotFoundf("save bom", "item %d not found", bom.ItemID)
		}
		now := r.now()
		if existing, ok := s.boms[bom.ID]; ok {
			bom.CreatedAt = existing.CreatedAt
		} else {
			bom.ID = s.nextID("boms", bom.ID)
			bom.CreatedAt = now
		}
		bom.UpdatedAt = now
		s.boms[bom.ID] = copyBOM(bom)
		return nil
	})
}

func (r *bomRepository) GetComponents(_ context.Context, bomID int64) ([]entities.BomComponent, error) {
	var out []entities.BomComponent
	err := r.access.read(func(s *state) error {
		for _, c := range s.components {
			if c.BomID == bomID {
				out = append(out, *copyComponent(c))
			}
		}
		return nil
	})
	entities.SortComponents(out)
	return out, err
}

func (r *bomRepository) GetComponent(_ context.Context, id int64) (*entities.BomComponent, error) {
	var out *entities.BomComponent
	err := r.access.read(func(s *state) error {
		c, ok := s.components[id]
		if !ok {
			return entities.NotFoundf("get bom component", "bom component %d not found", id)
		}
		out = copyComponent(c)
		return nil
	})
	return out, err
}

func (r *bomRepository) SaveComponent(_ context.Context, component *entities.BomComponent) error {
	return r.access.write(func(s *state) error {
		if _, ok := s.boms[component.BomID]; !ok {
			return entities.NotFoundf("save bom component", "bom %d not found", component.BomID)
		}
		if component.ParentComponentID != nil {
			parent, ok := s.components[*component.ParentComponentID]
			if !ok || parent.BomID != component.BomID {
				return entities.Validationf("save bom component", "parent component %d is not part of bom %d", *component.ParentComponentID, component.BomID)
			}
		}
		if _, ok := s.components[component.ID]; !ok {
			component.ID = s.nextID("bom_components", component.ID)
			component.CreatedAt = r.now()
		}
		s.components[component.ID] = copyComponent(component)
		return nil
	})
}

func (r *bomRepository) DeleteComponent(_ context.Context, id int64) error {
	return r.access.write(func(s *state) error {
		if _, ok := s.components[id]; !ok {
			return entities.NotFoundf("delete bom component", "bom component %d not found", id)
		}
		delete(s.components, id)
		return nil
	})
}
