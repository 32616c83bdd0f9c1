package memory

import (
	"context"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

type inventoryRepository struct {
	*view
}

func (r *inventoryRepository) FindRecord(_ context.Context, key entities.InventoryKey) (*entities.InventoryRecord, error) {
	var out *entities.InventoryRecord
	err := r.access.read(func(s *state) error {
		for _, record := range s.records {
			if key.Matches(record) {
				out = copyRecord(record)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *inventoryRepository) SaveRecord(_ context.Context, record *entities.InventoryRecord) error {
	return r.access.write(func(s *state) error {
		key := record.Key()
		for id, existing := range s.records {
			if id != record.ID && key.Matches(existing) {
				return entities.Validationf("save inventory record", "inventory record for %s already exists", key)
			}
		}
		now := r.now()
		if existing, ok := s.records[record.ID]; ok {
			record.CreatedAt = existing.CreatedAt
		} else {
			record.ID = s.nextID("inventory_records", record.ID)
			record.CreatedAt = now
		}
		record.UpdatedAt = now
		record.Recompute()
		s.records[record.ID] = copyRecord(record)
		return nil
	})
}

func (r *inventoryRepository) AppendMovement(_ context.Context, movement *entities.InventoryMovement) error {
	return r.access.write(func(s *state) error {
		movement.ID = s.nextID("inventory_movements", 0)
		movement.CreatedAt = r.now()
		s.movements = append(s.movements, copyMovement(movement))
		return nil
	})
}

func (r *inventoryRepository) ListMovements(_ context.Context, itemID int64) ([]*entities.InventoryMovement, error) {
	var out []*entities.InventoryMovement
	err := r.access.read(func(s *state) error {
		for _, m := range s.movements {
			if m.ItemID == itemID {
				out = append(out, copyMovement(m))
			}
		}
		return nil
	})
	return out, err
}
