package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/societyq/societyq/internal/app"
	"github.com/societyq/societyq/internal/domain"
)

// AllocationResponse is the API representation of a flat allocation request.
type AllocationResponse struct {
	ID            string `json:"id" doc:"Unique identifier"`
	FlatID        string `json:"flat_id" doc:"Requested flat"`
	UserID        string `json:"user_id" doc:"Requesting resident"`
	Status        string `json:"status" doc:"PENDING, APPROVED or REJECTED"`
	ResidentType  string `json:"resident_type,omitempty" doc:"owner or tenant"`
	Occupation    string `json:"occupation,omitempty" doc:"Requester's occupation"`
	FamilyMembers int    `json:"family_members,omitempty" doc:"Household size"`
	CreatedAt     string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt     string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toAllocationResponse(a domain.FlatAllocation) AllocationResponse {
	return AllocationResponse{
		ID:            a.ID,
		FlatID:        a.FlatID,
		UserID:        a.UserID,
		Status:        string(a.Status),
		ResidentType:  a.ResidentType,
		Occupation:    a.Occupation,
		FamilyMembers: a.FamilyMembers,
		CreatedAt:     formatTime(a.CreatedAt),
		UpdatedAt:     formatTime(a.UpdatedAt),
	}
}

type CreateAllocationInput struct {
	Body struct {
		FlatID        string `json:"flat_id" minLength:"1" doc:"Flat being requested"`
		ResidentType  string `json:"resident_type,omitempty" doc:"owner or tenant"`
		Occupation    string `json:"occupation,omitempty" doc:"Requester's occupation"`
		FamilyMembers int    `json:"family_members,omitempty" minimum:"0" doc:"Household size"`
	}
}

type CreateAllocationOutput struct {
	Body AllocationResponse
}

type AllocationIDInput struct {
	ID string `path:"id" doc:"Allocation ID"`
}

type AllocationOutput struct {
	Body AllocationResponse
}

type ListAllocationsInput struct {
	ID string `path:"id" doc:"Society ID"`
}

type ListAllocationsOutput struct {
	Body []AllocationResponse
}

func registerAllocations(api huma.API, svc *app.AllocationService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-allocation",
		Method:      http.MethodPost,
		Path:        "/api/v1/allocations",
		Summary:     "Request a flat allocation",
		Tags:        []string{"Allocations"},
	}, func(ctx context.Context, input *CreateAllocationInput) (*CreateAllocationOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		alloc, err := svc.Create(ctx, actor, app.NewAllocationInput{
			FlatID:        input.Body.FlatID,
			ResidentType:  input.Body.ResidentType,
			Occupation:    input.Body.Occupation,
			FamilyMembers: input.Body.FamilyMembers,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateAllocationOutput{Body: toAllocationResponse(alloc)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "approve-allocation",
		Method:      http.MethodPost,
		Path:        "/api/v1/allocations/{id}/approve",
		Summary:     "Approve a pending allocation",
		Tags:        []string{"Allocations"},
	}, func(ctx context.Context, input *AllocationIDInput) (*AllocationOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		alloc, err := svc.Approve(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AllocationOutput{Body: toAllocationResponse(alloc)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reject-allocation",
		Method:      http.MethodPost,
		Path:        "/api/v1/allocations/{id}/reject",
		Summary:     "Reject a pending allocation",
		Tags:        []string{"Allocations"},
	}, func(ctx context.Context, input *AllocationIDInput) (*AllocationOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		alloc, err := svc.Reject(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AllocationOutput{Body: toAllocationResponse(alloc)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-allocations-by-society",
		Method:      http.MethodGet,
		Path:        "/api/v1/societies/{id}/allocations",
		Summary:     "List a society's allocation requests",
		Tags:        []string{"Allocations"},
	}, func(ctx context.Context, input *ListAllocationsInput) (*ListAllocationsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		allocs, err := svc.ListBySociety(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]AllocationResponse, len(allocs))
		for i, a := range allocs {
			resp[i] = toAllocationResponse(a)
		}
		return &ListAllocationsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-my-allocations",
		Method:      http.MethodGet,
		Path:        "/api/v1/allocations/mine",
		Summary:     "List the caller's allocation requests",
		Tags:        []string{"Allocations"},
	}, func(ctx context.Context, _ *struct{}) (*ListAllocationsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		allocs, err := svc.ListMine(ctx, actor)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]AllocationResponse, len(allocs))
		for i, a := range allocs {
			resp[i] = toAllocationResponse(a)
		}
		return &ListAllocationsOutput{Body: resp}, nil
	})
}
