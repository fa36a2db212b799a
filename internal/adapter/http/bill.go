package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/societyq/societyq/internal/app"
	"github.com/societyq/societyq/internal/domain"
)

// BillResponse is the API representation of a maintenance bill.
type BillResponse struct {
	ID               string  `json:"id" doc:"Unique identifier"`
	BillNumber       string  `json:"bill_number" doc:"Human-readable bill number"`
	BillDate         string  `json:"bill_date" doc:"Billing date (ISO 8601)"`
	DueDate          string  `json:"due_date" doc:"Payment deadline (ISO 8601)"`
	Amount           float64 `json:"amount" doc:"Amount due"`
	Description      string  `json:"description,omitempty" doc:"What the bill covers"`
	FlatID           string  `json:"flat_id" doc:"Billed flat"`
	Paid             bool    `json:"paid" doc:"Whether the bill is settled"`
	PaymentDate      string  `json:"payment_date,omitempty" doc:"Settlement timestamp (ISO 8601)"`
	PaymentReference string  `json:"payment_reference,omitempty" doc:"Payment reference supplied by the payer"`
	CreatedAt        string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toBillResponse(b domain.MaintenanceBill) BillResponse {
	return BillResponse{
		ID:               b.ID,
		BillNumber:       b.BillNumber,
		BillDate:         formatTime(b.BillDate),
		DueDate:          formatTime(b.DueDate),
		Amount:           b.Amount,
		Description:      b.Description,
		FlatID:           b.FlatID,
		Paid:             b.Paid,
		PaymentDate:      formatNullTime(b.PaymentDate),
		PaymentReference: b.PaymentReference,
		CreatedAt:        formatTime(b.CreatedAt),
	}
}

type CreateBillInput struct {
	Body struct {
		FlatID      string    `json:"flat_id" minLength:"1" doc:"Flat to bill"`
		BillDate    time.Time `json:"bill_date" doc:"Billing date"`
		DueDate     time.Time `json:"due_date" doc:"Payment deadline"`
		Amount      float64   `json:"amount" exclusiveMinimum:"0" doc:"Amount due"`
		Description string    `json:"description,omitempty" doc:"What the bill covers"`
	}
}

type CreateBillOutput struct {
	Body BillResponse
}

type BulkGenerateBillsInput struct {
	Body struct {
		SocietyID   string    `json:"society_id" minLength:"1" doc:"Society to bill"`
		BillDate    time.Time `json:"bill_date" doc:"Billing date"`
		DueDate     time.Time `json:"due_date" doc:"Payment deadline"`
		Description string    `json:"description,omitempty" doc:"What the bills cover"`
	}
}

type BulkGenerateBillsOutput struct {
	Body []BillResponse
}

type PayBillInput struct {
	ID   string `path:"id" doc:"Bill ID"`
	Body struct {
		Reference string `json:"reference,omitempty" doc:"Payment reference"`
	}
}

type PayBillOutput struct {
	Body BillResponse
}

type GetBillInput struct {
	ID string `path:"id" doc:"Bill ID"`
}

type GetBillOutput struct {
	Body BillResponse
}

type ListBillsByFlatInput struct {
	ID string `path:"id" doc:"Flat ID"`
}

type ListBillsBySocietyInput struct {
	ID      string `path:"id" doc:"Society ID"`
	Pending bool   `query:"pending" required:"false" doc:"Only unpaid bills"`
}

type ListBillsOutput struct {
	Body []BillResponse
}

func registerBills(api huma.API, svc *app.BillService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-bill",
		Method:      http.MethodPost,
		Path:        "/api/v1/bills",
		Summary:     "Issue a maintenance bill",
		Tags:        []string{"Bills"},
	}, func(ctx context.Context, input *CreateBillInput) (*CreateBillOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		bill, err := svc.Create(ctx, actor, app.NewBillInput{
			FlatID:      input.Body.FlatID,
			BillDate:    input.Body.BillDate,
			DueDate:     input.Body.DueDate,
			Amount:      input.Body.Amount,
			Description: input.Body.Description,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateBillOutput{Body: toBillResponse(bill)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "bulk-generate-bills",
		Method:      http.MethodPost,
		Path:        "/api/v1/bills/bulk",
		Summary:     "Issue one bill per flat in a society",
		Tags:        []string{"Bills"},
	}, func(ctx context.Context, input *BulkGenerateBillsInput) (*BulkGenerateBillsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		bills, err := svc.BulkGenerate(ctx, actor, app.BulkGenerateInput{
			SocietyID:   input.Body.SocietyID,
			BillDate:    input.Body.BillDate,
			DueDate:     input.Body.DueDate,
			Description: input.Body.Description,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]BillResponse, len(bills))
		for i, b := range bills {
			resp[i] = toBillResponse(b)
		}
		return &BulkGenerateBillsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "pay-bill",
		Method:      http.MethodPost,
		Path:        "/api/v1/bills/{id}/pay",
		Summary:     "Mark a bill as paid",
		Tags:        []string{"Bills"},
	}, func(ctx context.Context, input *PayBillInput) (*PayBillOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		bill, err := svc.MarkPaid(ctx, actor, input.ID, input.Body.Reference)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PayBillOutput{Body: toBillResponse(bill)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-overdue-bills",
		Method:      http.MethodGet,
		Path:        "/api/v1/bills/overdue",
		Summary:     "List unpaid bills past their due date",
		Tags:        []string{"Bills"},
	}, func(ctx context.Context, _ *struct{}) (*ListBillsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		bills, err := svc.ListOverdue(ctx, actor)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]BillResponse, len(bills))
		for i, b := range bills {
			resp[i] = toBillResponse(b)
		}
		return &ListBillsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-bill",
		Method:      http.MethodGet,
		Path:        "/api/v1/bills/{id}",
		Summary:     "Get a bill by ID",
		Tags:        []string{"Bills"},
	}, func(ctx context.Context, input *GetBillInput) (*GetBillOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		bill, err := svc.GetByID(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetBillOutput{Body: toBillResponse(bill)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-bills-by-flat",
		Method:      http.MethodGet,
		Path:        "/api/v1/flats/{id}/bills",
		Summary:     "List a flat's bills",
		Tags:        []string{"Bills"},
	}, func(ctx context.Context, input *ListBillsByFlatInput) (*ListBillsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		bills, err := svc.ListByFlat(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]BillResponse, len(bills))
		for i, b := range bills {
			resp[i] = toBillResponse(b)
		}
		return &ListBillsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-bills-by-society",
		Method:      http.MethodGet,
		Path:        "/api/v1/societies/{id}/bills",
		Summary:     "List a society's bills",
		Tags:        []string{"Bills"},
	}, func(ctx context.Context, input *ListBillsBySocietyInput) (*ListBillsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		bills, err := svc.ListBySociety(ctx, actor, input.ID, input.Pending)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]BillResponse, len(bills))
		for i, b := range bills {
			resp[i] = toBillResponse(b)
		}
		return &ListBillsOutput{Body: resp}, nil
	})
}
