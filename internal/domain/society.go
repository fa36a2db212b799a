package domain

import "time"

// Society is the tenancy root. Every other entity resolves, transitively,
// to exactly one society; the chain flat → building → society is the unit
// of tenant isolation.
type Society struct {
	ID        string
	Name      string
	Address   string
	City      string
	Pincode   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Building belongs to exactly one society.
type Building struct {
	ID          string
	Name        string
	TotalFloors int
	SocietyID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OccupiedStatus tracks whether a flat is allocated.
type OccupiedStatus string

const (
	OccupiedStatusVacant   OccupiedStatus = "VACANT"
	OccupiedStatusOccupied OccupiedStatus = "OCCUPIED"
)

// Flat belongs to exactly one building. SocietyID is resolved through the
// owning building when the flat is loaded; it is the tenant-isolation key
// every scope check runs against.
type Flat struct {
	ID             string
	Number         string
	Floor          int
	Area           float64
	BuildingID     string
	SocietyID      string
	OccupiedStatus OccupiedStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSociety creates a society record.
func NewSociety(id, name, address, city, pincode string) Society {
	now := time.Now().UTC()
	return Society{
		ID:        id,
		Name:      name,
		Address:   address,
		City:      city,
		Pincode:   pincode,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewBuilding creates a building record in the given society.
func NewBuilding(id, name string, totalFloors int, societyID string) Building {
	now := time.Now().UTC()
	return Building{
		ID:          id,
		Name:        name,
		TotalFloors: totalFloors,
		SocietyID:   societyID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewFlat creates a vacant flat in the given building.
func NewFlat(id, number string, floor int, area float64, buildingID, societyID string) Flat {
	now := time.Now().UTC()
	return Flat{
		ID:             id,
		Number:         number,
		Floor:          floor,
		Area:           area,
		BuildingID:     buildingID,
		SocietyID:      societyID,
		OccupiedStatus: OccupiedStatusVacant,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
