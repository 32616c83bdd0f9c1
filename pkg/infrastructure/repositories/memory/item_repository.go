package memory

import (
	"context"
	"sort"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

type itemRepository struct {
	*view
}

func (r *itemRepository) GetItem(_ context.Context, id int64) (*entities.Item, error) {
	var out *entities.Item
	err := r.access.read(func(s *state) error {
		item, ok := s.items[id]
		if !ok {
			return entities.NotFoundf("get item", "item %d not found", id)
		}
		out = copyItem(item)
		return nil
	})
	return out, err
}

func (r *itemRepository) GetItemByCode(_ context.Context, code string) (*entities.Item, error) {
	var out *entities.Item
	err := r.access.read(func(s *state) error {
		for _, item := range s.items {
			if item.Code == code {
				out = copyItem(item)
				return nil
			}
		}
		return entities.NotFoundf("get item", "item %q not found", code)
	})
	return out, err
}

func (r *itemRepository) ListItems(_ context.Context) ([]*entities.Item, error) {
	var out []*entities.Item
	err := r.access.read(func(s *state) error {
		out = make([]*entities.Item, 0, len(s.items))
		for _, item := range s.items {
			out = append(out, copyItem(item))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *itemRepository) SaveItem(_ context.Context, item *entities.Item) error {
	return r.access.write(func(s *state) error {
		for _, existing := range s.items {
			if existing.Code == item.Code && existing.ID != item.ID {
				return entities.Validationf("save item", "item code %q already exists", item.Code)
			}
		}
		now := r.now()
		if existing, ok := s.items[item.ID]; ok {
			item.CreatedAt = existing.CreatedAt
		} else {
			item.ID = s.nextID("items", item.ID)
			item.CreatedAt = now
		}
		item.UpdatedAt = now
		s.items[item.ID] = copyItem(item)
		return nil
	})
}

type siteRepository struct {
	*view
}

func (r *siteRepository) GetDivision(_ context.Context, id int64) (*entities.Division, error) {
	var out *entities.Division
	err := r.access.read(func(s *state) error {
		d, ok := s.divisions[id]
		if !ok {
			return entities.NotFoundf("get division", "division %d not found", id)
		}
		out = copyDivision(d)
		return nil
	})
	return out, err
}

func (r *siteRepository) GetWarehouse(_ context.Context, id int64) (*entities.Warehouse, error) {
	var out *entities.Warehouse
	err := r.access.read(func(s *state) error {
		w, ok := s.warehouses[id]
		if !ok {
			return entities.NotFoundf("get warehouse", "warehouse %d not found", id)
		}
		out = copyWarehouse(w)
		return nil
	})
	return out, err
}

func (r *siteRepository) GetLocation(_ context.Context, id int64) (*entities.Location, error) {
	var out *entities.Location
	err := r.access.read(func(s *state) error {
		l, ok := s.locations[id]
		if !ok {
			return entities.NotFoundf("get location", "location %d not found", id)
		}
		out = copyLocation(l)
		return nil
	})
	return out, err
}

func (r *siteRepository) SaveDivision(_ context.Context, division *entities.Division) error {
	return r.access.write(func(s *state) error {
		if _, ok := s.divisions[division.ID]; !ok {
			division.ID = s.nextID("divisions", division.ID)
			division.CreatedAt = r.now()
		}
		s.divisions[division.ID] = copyDivision(division)
		return nil
	})
}

func (r *siteRepository) SaveWarehouse(_ context.Context, warehouse *entities.Warehouse) error {
	return r.access.write(func(s *state) error {
		if _, ok := s.divisions[warehouse.DivisionID]; !ok {
			return entities.NotFoundf("save warehouse", "division %d not found", warehouse.DivisionID)
		}
		if _, ok := s.warehouses[warehouse.ID]; !ok {
			warehouse.ID = s.nextID("warehouses", warehouse.ID)
			warehouse.CreatedAt = r.now()
		}
		s.warehouses[warehouse.ID] = copyWarehouse(warehouse)
		return nil
	})
}

func (r *siteRepository) SaveLocation(_ context.Context, location *entities.Location) error {
	return r.access.write(func(s *state) error {
		if _, ok := s.warehouses[location.WarehouseID]; !ok {
			return entities.NotFoundf("save location", "warehouse %d not found", location.WarehouseID)
		}
		if _, ok := s.locations[location.ID]; !ok {
			location.ID = s.nextID("locations", location.ID)
			location.CreatedAt = r.now()
		}
		s.locations[location.ID] = copyLocation(location)
		return nil
	})
}
