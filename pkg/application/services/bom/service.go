package bom

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
	domainservices "github.com/vsinha/divmrp/pkg/domain/services"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
)

// Service maintains BOM structure and lifecycle
type Service struct {
	store     repositories.Store
	tx        repositories.TxManager
	validator *domainservices.BOMValidator
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store repositories.Store, tx repositories.TxManager, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		store:     store,
		tx:        tx,
		validator: domainservices.NewBOMValidator(),
		publisher: publisher,
		logger:    logging.OrNop(logger),
		now:       time.Now,
	}
}

// Get returns the BOM with its ordered components
func (s *Service) Get(ctx context.Context, id int64) (*entities.BillOfMaterials, error) {
	bom, err := s.store.BOMs().GetBOM(ctx, id)
	if err != nil {
		return nil, err
	}
	bom.Components, err = s.store.BOMs().GetComponents(ctx, id)
	if err != nil {
		return nil, err
	}
	return bom, nil
}

// AddComponent appends a line to a BOM that is not obsolete. A child line sits one level below its
// parent; a line whose item would make the BOM's item a component of itself is rejected.
func (s *Service) AddComponent(ctx context.Context, bomID int64, req dto.AddComponentRequest) (*entities.BomComponent, error) {
	const op = "bom.add_component"

	if !req.Quantity.IsPositive() {
		return nil, entities.Validationf(op, "quantity must be positive, got %s", req.Quantity.String())
	}

	var component *entities.BomComponent
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		bom, err := tx.BOMs().GetBOM(ctx, bomID)
		if err != nil {
			return err
		}
		if bom.Status == entities.BOMObsolete {
			return entities.InvalidTransitionf(op, "bom %d is obsolete", bom.ID)
		}
		if _, err := tx.Items().GetItem(ctx, req.ComponentItemID); err != nil {
			return err
		}
		if req.ComponentItemID == bom.ItemID {
			return entities.Validationf(op, "item %d cannot be a component of its own bom", bom.ItemID)
		}

		siblings, err := tx.BOMs().GetComponents(ctx, bom.ID)
		if err != nil {
			return err
		}

		level := 1
		if req.ParentComponentID != nil {
			parent, err := tx.BOMs().GetComponent(ctx, *req.ParentComponentID)
			if err != nil {
				return err
			}
			if parent.BomID != bom.ID {
				return entities.Validationf(op, "parent component %d is not part of bom %d", parent.ID, bom.ID)
			}
			level = parent.LevelNumber + 1
		}

		edges, err := activeEdges(ctx, tx, bom.ID)
		if err != nil {
			return err
		}
		for _, c := range siblings {
			edges = append(edges, domainservices.ItemEdge{ParentItemID: bom.ItemID, ChildItemID: c.ComponentItemID})
		}
		if s.validator.WouldCreateCycle(edges, domainservices.ItemEdge{ParentItemID: bom.ItemID, ChildItemID: req.ComponentItemID}) {
			return entities.Validationf(op, "adding item %d to bom %d creates a cycle", req.ComponentItemID, bom.ID)
		}

		position := nextPosition(siblings, req.ParentComponentID)
		if req.Position != nil {
			position = *req.Position
		}

		component, err = entities.NewBomComponent(bom.ID, req.ComponentItemID, req.Quantity, req.UomID, req.ParentComponentID, level, position)
		if err != nil {
			return entities.Validationf(op, "%s", err.Error())
		}
		return tx.BOMs().SaveComponent(ctx, component)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bom component added",
		zap.Int64("bom_id", bomID),
		zap.Int64("component_id", component.ID),
		zap.Int64("item_id", component.ComponentItemID),
	)
	return component, nil
}

// activeEdges collects the item edges of every active BOM except skip
func activeEdges(ctx context.Context, tx repositories.Store, skip int64) ([]domainservices.ItemEdge, error) {
	active, err := tx.BOMs().ListBOMsByStatus(ctx, entities.BOMActive)
	if err != nil {
		return nil, err
	}
	var edges []domainservices.ItemEdge
	for _, b := range active {
		if b.ID == skip {
			continue
		}
		components, err := tx.BOMs().GetComponents(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range components {
			edges = append(edges, domainservices.ItemEdge{ParentItemID: b.ItemID, ChildItemID: c.ComponentItemID})
		}
	}
	return edges, nil
}

func nextPosition(components []entities.BomComponent, parentID *int64) int {
	next := 1
	for _, c := range components {
		sameParent := (c.ParentComponentID == nil && parentID == nil) ||
			(c.ParentComponentID != nil && parentID != nil && *c.ParentComponentID == *parentID)
		if sameParent && c.Position >= next {
			next = c.Position + 1
		}
	}
	return next
}

// RemoveComponent deletes a line without children from a BOM that is not obsolete
func (s *Service) RemoveComponent(ctx context.Context, bomID, componentID int64) error {
	const op = "bom.remove_component"

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		bom, err := tx.BOMs().GetBOM(ctx, bomID)
		if err != nil {
			return err
		}
		if bom.Status == entities.BOMObsolete {
			return entities.InvalidTransitionf(op, "bom %d is obsolete", bom.ID)
		}

		components, err := tx.BOMs().GetComponents(ctx, bom.ID)
		if err != nil {
			return err
		}
		found := false
		for _, c := range components {
			if c.ID == componentID {
				found = true
			}
			if c.ParentComponentID != nil && *c.ParentComponentID == componentID {
				return entities.InvalidTransitionf(op, "component %d has child components", componentID)
			}
		}
		if !found {
			return entities.NotFoundf(op, "component %d not found in bom %d", componentID, bom.ID)
		}
		return tx.BOMs().DeleteComponent(ctx, componentID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("bom component removed", zap.Int64("bom_id", bomID), zap.Int64("component_id", componentID))
	return nil
}

// Activate makes a draft BOM the active BOM of its item in its division. The previously active BOM
// becomes obsolete and the new one takes the next revision.
func (s *Service) Activate(ctx context.Context, id int64) (*entities.BillOfMaterials, error) {
	const op = "bom.activate"

	var (
		bom       *entities.BillOfMaterials
		obsoleted []int64
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		bom, err = tx.BOMs().GetBOM(ctx, id)
		if err != nil {
			return err
		}
		if bom.Status != entities.BOMDraft {
			return entities.InvalidTransitionf(op, "bom %d is %s, only draft boms can be activated", bom.ID, bom.Status)
		}

		components, err := tx.BOMs().GetComponents(ctx, bom.ID)
		if err != nil {
			return err
		}
		if len(components) == 0 {
			return entities.Validationf(op, "bom %d has no components", bom.ID)
		}
		if result := s.validator.ValidateComponents(bom, components); !result.Valid() {
			return entities.Validationf(op, "bom %d is invalid: %s", bom.ID, strings.Join(result.Errors, "; "))
		}

		edges, err := activeEdges(ctx, tx, bom.ID)
		if err != nil {
			return err
		}
		for _, c := range components {
			edges = append(edges, domainservices.ItemEdge{ParentItemID: bom.ItemID, ChildItemID: c.ComponentItemID})
		}
		if result := s.validator.DetectCycles(edges); result.HasCycles {
			return entities.Validationf(op, "activating bom %d creates a cycle: %s", bom.ID, strings.Join(result.Errors, "; "))
		}

		siblings, err := tx.BOMs().ListBOMsByItem(ctx, bom.ItemID)
		if err != nil {
			return err
		}
		revision := 0
		for _, other := range siblings {
			if other.DivisionID != bom.DivisionID || other.ID == bom.ID {
				continue
			}
			if other.Revision > revision {
				revision = other.Revision
			}
			if other.Status == entities.BOMActive {
				other.Status = entities.BOMObsolete
				if err := tx.BOMs().SaveBOM(ctx, other); err != nil {
					return err
				}
				obsoleted = append(obsoleted, other.ID)
			}
		}

		now := s.now().UTC()
		bom.Status = entities.BOMActive
		bom.Revision = revision + 1
		bom.ActivatedAt = &now
		return tx.BOMs().SaveBOM(ctx, bom)
	})
	if err != nil {
		s.logger.Info("bom activation rejected", zap.Int64("bom_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("bom activated",
		zap.Int64("bom_id", bom.ID),
		zap.Int("revision", bom.Revision),
		zap.Int64s("obsoleted", obsoleted),
	)
	events.Emit(ctx, s.publisher, s.logger, events.NewEvent(events.BOMActivatedEvent, events.BOMStream(bom.ID), events.BOMActivated{
		BomID:       bom.ID,
		ItemID:      bom.ItemID,
		Revision:    bom.Revision,
		ObsoletedID: obsoleted,
	}))
	return bom, nil
}

// Obsolete retires a draft or active BOM
func (s *Service) Obsolete(ctx context.Context, id int64) (*entities.BillOfMaterials, error) {
	var bom *entities.BillOfMaterials
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		bom, err = tx.BOMs().GetBOM(ctx, id)
		if err != nil {
			return err
		}
		if !bom.CanTransitionTo(entities.BOMObsolete) {
			return entities.InvalidTransitionf("bom.obsolete", "bom %d is already obsolete", bom.ID)
		}
		bom.Status = entities.BOMObsolete
		return tx.BOMs().SaveBOM(ctx, bom)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("bom obsoleted", zap.Int64("bom_id", id))
	return bom, nil
}
