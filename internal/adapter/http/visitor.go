package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/societyq/societyq/internal/app"
	"github.com/societyq/societyq/internal/domain"
)

// VisitorResponse is the API representation of a visitor log entry.
type VisitorResponse struct {
	ID           string `json:"id" doc:"Unique identifier"`
	Name         string `json:"name" doc:"Visitor name"`
	Phone        string `json:"phone,omitempty" doc:"Contact number"`
	Purpose      string `json:"purpose,omitempty" doc:"Reason for the visit"`
	FlatID       string `json:"flat_id" doc:"Flat being visited"`
	LoggedByID   string `json:"logged_by_id" doc:"Guard who logged the entry"`
	EntryTime    string `json:"entry_time" doc:"Entry timestamp (ISO 8601)"`
	ExitTime     string `json:"exit_time,omitempty" doc:"Exit timestamp (ISO 8601)"`
	Approved     bool   `json:"approved" doc:"Whether a flat member approved the visit"`
	ApprovalTime string `json:"approval_time,omitempty" doc:"Approval timestamp (ISO 8601)"`
	ApprovedByID string `json:"approved_by_id,omitempty" doc:"Flat member who approved"`
}

func toVisitorResponse(v domain.Visitor) VisitorResponse {
	return VisitorResponse{
		ID:           v.ID,
		Name:         v.Name,
		Phone:        v.Phone,
		Purpose:      v.Purpose,
		FlatID:       v.FlatID,
		LoggedByID:   v.LoggedByID,
		EntryTime:    formatTime(v.EntryTime),
		ExitTime:     formatNullTime(v.ExitTime),
		Approved:     v.Approved,
		ApprovalTime: formatNullTime(v.ApprovalTime),
		ApprovedByID: v.ApprovedByID,
	}
}

type CreateVisitorInput struct {
	Body struct {
		FlatID  string `json:"flat_id" minLength:"1" doc:"Flat being visited"`
		Name    string `json:"name" minLength:"1" maxLength:"255" doc:"Visitor name"`
		Phone   string `json:"phone,omitempty" doc:"Contact number"`
		Purpose string `json:"purpose,omitempty" doc:"Reason for the visit"`
	}
}

type CreateVisitorOutput struct {
	Body VisitorResponse
}

type VisitorIDInput struct {
	ID string `path:"id" doc:"Visitor ID"`
}

type VisitorOutput struct {
	Body VisitorResponse
}

type ListVisitorsInput struct {
	ID     string `path:"id" doc:"Society ID"`
	Filter string `query:"filter" required:"false" enum:"active,pending" doc:"active = on premises, pending = awaiting approval"`
}

type ListVisitorsOutput struct {
	Body []VisitorResponse
}

func registerVisitors(api huma.API, svc *app.VisitorService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-visitor",
		Method:      http.MethodPost,
		Path:        "/api/v1/visitors",
		Summary:     "Log a visitor at the gate",
		Tags:        []string{"Visitors"},
	}, func(ctx context.Context, input *CreateVisitorInput) (*CreateVisitorOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		visitor, err := svc.Create(ctx, actor, app.NewVisitorInput{
			FlatID:  input.Body.FlatID,
			Name:    input.Body.Name,
			Phone:   input.Body.Phone,
			Purpose: input.Body.Purpose,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateVisitorOutput{Body: toVisitorResponse(visitor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "approve-visitor",
		Method:      http.MethodPost,
		Path:        "/api/v1/visitors/{id}/approve",
		Summary:     "Approve a waiting visitor",
		Tags:        []string{"Visitors"},
	}, func(ctx context.Context, input *VisitorIDInput) (*VisitorOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		visitor, err := svc.Approve(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &VisitorOutput{Body: toVisitorResponse(visitor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "record-visitor-exit",
		Method:      http.MethodPost,
		Path:        "/api/v1/visitors/{id}/exit",
		Summary:     "Record a visitor leaving",
		Tags:        []string{"Visitors"},
	}, func(ctx context.Context, input *VisitorIDInput) (*VisitorOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		visitor, err := svc.RecordExit(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &VisitorOutput{Body: toVisitorResponse(visitor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-visitors-by-society",
		Method:      http.MethodGet,
		Path:        "/api/v1/societies/{id}/visitors",
		Summary:     "List a society's visitors",
		Tags:        []string{"Visitors"},
	}, func(ctx context.Context, input *ListVisitorsInput) (*ListVisitorsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}

		var visitors []domain.Visitor
		switch input.Filter {
		case "active":
			visitors, err = svc.ListActiveBySociety(ctx, actor, input.ID)
		case "pending":
			visitors, err = svc.ListPendingBySociety(ctx, actor, input.ID)
		default:
			visitors, err = svc.ListBySociety(ctx, actor, input.ID)
		}
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]VisitorResponse, len(visitors))
		for i, v := range visitors {
			resp[i] = toVisitorResponse(v)
		}
		return &ListVisitorsOutput{Body: resp}, nil
	})
}
