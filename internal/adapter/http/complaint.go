package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/societyq/societyq/internal/app"
	"github.com/societyq/societyq/internal/domain"
)

// ComplaintResponse is the API representation of a complaint.
type ComplaintResponse struct {
	ID          string `json:"id" doc:"Unique identifier"`
	Title       string `json:"title" doc:"Short summary"`
	Description string `json:"description" doc:"Full description"`
	Status      string `json:"status" doc:"PENDING, IN_PROGRESS or RESOLVED"`
	FlatID      string `json:"flat_id" doc:"Flat the complaint concerns"`
	RaisedByID  string `json:"raised_by_id" doc:"Flat member who raised it"`
	Resolution  string `json:"resolution,omitempty" doc:"How it was resolved"`
	ResolvedAt  string `json:"resolved_at,omitempty" doc:"Resolution timestamp (ISO 8601)"`
	CreatedAt   string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt   string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toComplaintResponse(c domain.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Status:      string(c.Status),
		FlatID:      c.FlatID,
		RaisedByID:  c.RaisedByID,
		Resolution:  c.Resolution,
		ResolvedAt:  formatNullTime(c.ResolvedAt),
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

type CreateComplaintInput struct {
	Body struct {
		FlatID      string `json:"flat_id" minLength:"1" doc:"Flat the complaint concerns"`
		RaisedByID  string `json:"raised_by_id" minLength:"1" doc:"Flat member raising the complaint"`
		Title       string `json:"title" minLength:"1" maxLength:"255" doc:"Short summary"`
		Description string `json:"description,omitempty" doc:"Full description"`
	}
}

type CreateComplaintOutput struct {
	Body ComplaintResponse
}

type GetComplaintInput struct {
	ID string `path:"id" doc:"Complaint ID"`
}

type GetComplaintOutput struct {
	Body ComplaintResponse
}

type UpdateComplaintStatusInput struct {
	ID   string `path:"id" doc:"Complaint ID"`
	Body struct {
		Status     string `json:"status" enum:"IN_PROGRESS,RESOLVED" doc:"Target status"`
		Resolution string `json:"resolution,omitempty" doc:"Required context when resolving"`
	}
}

type UpdateComplaintStatusOutput struct {
	Body ComplaintResponse
}

type ListComplaintsByFlatInput struct {
	ID string `path:"id" doc:"Flat ID"`
}

type ListComplaintsBySocietyInput struct {
	ID     string `path:"id" doc:"Society ID"`
	Status string `query:"status" required:"false" enum:"PENDING,IN_PROGRESS,RESOLVED" doc:"Filter by status"`
}

type ListComplaintsOutput struct {
	Body []ComplaintResponse
}

func registerComplaints(api huma.API, svc *app.ComplaintService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-complaint",
		Method:      http.MethodPost,
		Path:        "/api/v1/complaints",
		Summary:     "Raise a complaint",
		Tags:        []string{"Complaints"},
	}, func(ctx context.Context, input *CreateComplaintInput) (*CreateComplaintOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		complaint, err := svc.Create(ctx, actor, app.NewComplaintInput{
			FlatID:      input.Body.FlatID,
			RaisedByID:  input.Body.RaisedByID,
			Title:       input.Body.Title,
			Description: input.Body.Description,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateComplaintOutput{Body: toComplaintResponse(complaint)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-complaint",
		Method:      http.MethodGet,
		Path:        "/api/v1/complaints/{id}",
		Summary:     "Get a complaint by ID",
		Tags:        []string{"Complaints"},
	}, func(ctx context.Context, input *GetComplaintInput) (*GetComplaintOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		complaint, err := svc.GetByID(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetComplaintOutput{Body: toComplaintResponse(complaint)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-complaint-status",
		Method:      http.MethodPost,
		Path:        "/api/v1/complaints/{id}/status",
		Summary:     "Advance a complaint's status",
		Tags:        []string{"Complaints"},
	}, func(ctx context.Context, input *UpdateComplaintStatusInput) (*UpdateComplaintStatusOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		complaint, err := svc.UpdateStatus(ctx, actor, input.ID, domain.ComplaintStatus(input.Body.Status), input.Body.Resolution)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &UpdateComplaintStatusOutput{Body: toComplaintResponse(complaint)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-complaints-by-flat",
		Method:      http.MethodGet,
		Path:        "/api/v1/flats/{id}/complaints",
		Summary:     "List a flat's complaints",
		Tags:        []string{"Complaints"},
	}, func(ctx context.Context, input *ListComplaintsByFlatInput) (*ListComplaintsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		complaints, err := svc.ListByFlat(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]ComplaintResponse, len(complaints))
		for i, c := range complaints {
			resp[i] = toComplaintResponse(c)
		}
		return &ListComplaintsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-complaints-by-society",
		Method:      http.MethodGet,
		Path:        "/api/v1/societies/{id}/complaints",
		Summary:     "List a society's complaints",
		Tags:        []string{"Complaints"},
	}, func(ctx context.Context, input *ListComplaintsBySocietyInput) (*ListComplaintsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		var status *domain.ComplaintStatus
		if input.Status != "" {
			s := domain.ComplaintStatus(input.Status)
			status = &s
		}
		complaints, err := svc.ListBySociety(ctx, actor, input.ID, status)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]ComplaintResponse, len(complaints))
		for i, c := range complaints {
			resp[i] = toComplaintResponse(c)
		}
		return &ListComplaintsOutput{Body: resp}, nil
	})
}
