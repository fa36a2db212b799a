package app

import (
	"context"
	"fmt"

	"github.com/societyq/societyq/internal/domain"
)

// DirectoryService owns the structural records: societies, their buildings
// and flats. These have no lifecycle of their own beyond the flat's
// occupancy flag, which the allocation workflow maintains.
type DirectoryService struct {
	societies domain.SocietyRepository
	buildings domain.BuildingRepository
	flats     domain.FlatRepository
}

// NewDirectoryService creates a service with the given adapters.
func NewDirectoryService(societies domain.SocietyRepository, buildings domain.BuildingRepository, flats domain.FlatRepository) *DirectoryService {
	return &DirectoryService{
		societies: societies,
		buildings: buildings,
		flats:     flats,
	}
}

// NewSocietyInput carries the fields needed to register a society.
type NewSocietyInput struct {
	Name    string
	Address string
	City    string
	Pincode string
}

// CreateSociety registers a new society. Super-admin only: a society-scoped
// admin administers an existing society, it does not mint new ones.
func (s *DirectoryService) CreateSociety(ctx context.Context, actor domain.Actor, in NewSocietyInput) (domain.Society, error) {
	if !actor.SuperAdmin() {
		return domain.Society{}, &domain.ForbiddenError{Reason: "only a super admin may register societies"}
	}

	id, err := generateID()
	if err != nil {
		return domain.Society{}, fmt.Errorf("generating society id: %w", err)
	}

	society := domain.NewSociety(id, in.Name, in.Address, in.City, in.Pincode)

	if err := s.societies.Create(ctx, society); err != nil {
		return domain.Society{}, err
	}

	return society, nil
}

// GetSociety returns one society, scope-checked.
func (s *DirectoryService) GetSociety(ctx context.Context, actor domain.Actor, id string) (domain.Society, error) {
	if err := Authorize(actor, id); err != nil {
		return domain.Society{}, err
	}
	return s.societies.GetByID(ctx, id)
}

// ListSocieties returns every society. Super-admin only.
func (s *DirectoryService) ListSocieties(ctx context.Context, actor domain.Actor) ([]domain.Society, error) {
	if !actor.SuperAdmin() {
		return nil, &domain.ForbiddenError{Reason: "the society listing spans societies"}
	}
	return s.societies.List(ctx)
}

// NewBuildingInput carries the fields needed to add a building.
type NewBuildingInput struct {
	SocietyID   string
	Name        string
	TotalFloors int
}

// CreateBuilding adds a building to a society. Admin-only.
func (s *DirectoryService) CreateBuilding(ctx context.Context, actor domain.Actor, in NewBuildingInput) (domain.Building, error) {
	ok, err := s.societies.Exists(ctx, in.SocietyID)
	if err != nil {
		return domain.Building{}, fmt.Errorf("checking society: %w", err)
	}
	if !ok {
		return domain.Building{}, &domain.NotFoundError{Resource: "society", ID: in.SocietyID}
	}

	if err := Authorize(actor, in.SocietyID, domain.RoleAdmin); err != nil {
		return domain.Building{}, err
	}

	id, err := generateID()
	if err != nil {
		return domain.Building{}, fmt.Errorf("generating building id: %w", err)
	}

	building := domain.NewBuilding(id, in.Name, in.TotalFloors, in.SocietyID)

	if err := s.buildings.Create(ctx, building); err != nil {
		return domain.Building{}, err
	}

	return building, nil
}

// ListBuildings returns a society's buildings, scope-checked.
func (s *DirectoryService) ListBuildings(ctx context.Context, actor domain.Actor, societyID string) ([]domain.Building, error) {
	if err := Authorize(actor, societyID); err != nil {
		return nil, err
	}
	return s.buildings.ListBySociety(ctx, societyID)
}

// NewFlatInput carries the fields needed to add a flat.
type NewFlatInput struct {
	BuildingID string
	Number     string
	Floor      int
	Area       float64
}

// CreateFlat adds a vacant flat to a building. Admin-only; the flat number
// must be unique within the building.
func (s *DirectoryService) CreateFlat(ctx context.Context, actor domain.Actor, in NewFlatInput) (domain.Flat, error) {
	building, err := s.buildings.GetByID(ctx, in.BuildingID)
	if err != nil {
		return domain.Flat{}, err
	}

	if err := Authorize(actor, building.SocietyID, domain.RoleAdmin); err != nil {
		return domain.Flat{}, err
	}

	if in.Floor < 0 || in.Floor > building.TotalFloors {
		return domain.Flat{}, &domain.InvalidArgumentError{Reason: fmt.Sprintf("floor %d is outside the building's %d floors", in.Floor, building.TotalFloors)}
	}

	id, err := generateID()
	if err != nil {
		return domain.Flat{}, fmt.Errorf("generating flat id: %w", err)
	}

	flat := domain.NewFlat(id, in.Number, in.Floor, in.Area, building.ID, building.SocietyID)

	if err := s.flats.Create(ctx, flat); err != nil {
		return domain.Flat{}, err
	}

	return flat, nil
}

// GetFlat returns one flat, scope-checked.
func (s *DirectoryService) GetFlat(ctx context.Context, actor domain.Actor, id string) (domain.Flat, error) {
	flat, err := s.flats.GetByID(ctx, id)
	if err != nil {
		return domain.Flat{}, err
	}
	if err := Authorize(actor, flat.SocietyID); err != nil {
		return domain.Flat{}, err
	}
	return flat, nil
}

// ListFlatsByBuilding returns a building's flats, scope-checked.
func (s *DirectoryService) ListFlatsByBuilding(ctx context.Context, actor domain.Actor, buildingID string) ([]domain.Flat, error) {
	building, err := s.buildings.GetByID(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, building.SocietyID); err != nil {
		return nil, err
	}
	return s.flats.ListByBuilding(ctx, building.ID)
}

// ListFlatsBySociety returns every flat in a society, scope-checked.
func (s *DirectoryService) ListFlatsBySociety(ctx context.Context, actor domain.Actor, societyID string) ([]domain.Flat, error) {
	if err := Authorize(actor, societyID); err != nil {
		return nil, err
	}
	return s.flats.ListBySociety(ctx, societyID)
}
