package domain

import "time"

// MaintenanceRatePerSqFt is the fixed rate used by bulk bill generation:
// amount = flat area × rate.
const MaintenanceRatePerSqFt = 2.5

// MaintenanceBill is issued per flat. Paid is terminal: there is no unpaying.
type MaintenanceBill struct {
	ID               string
	BillNumber       string
	BillDate         time.Time
	DueDate          time.Time
	Amount           float64
	Description      string
	FlatID           string
	Paid             bool
	PaymentDate      *time.Time
	PaymentReference string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewMaintenanceBill creates an unpaid bill. The bill number must be unique
// across all bills; the repository surfaces a collision as AlreadyExists.
func NewMaintenanceBill(id, billNumber string, billDate, dueDate time.Time, amount float64, description, flatID string) MaintenanceBill {
	now := time.Now().UTC()
	return MaintenanceBill{
		ID:          id,
		BillNumber:  billNumber,
		BillDate:    billDate,
		DueDate:     dueDate,
		Amount:      amount,
		Description: description,
		FlatID:      flatID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
