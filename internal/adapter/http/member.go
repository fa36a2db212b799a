package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/societyq/societyq/internal/app"
	"github.com/societyq/societyq/internal/domain"
)

// MemberResponse is the API representation of a flat member.
type MemberResponse struct {
	ID           string `json:"id" doc:"Unique identifier"`
	Name         string `json:"name" doc:"Full name"`
	Phone        string `json:"phone,omitempty" doc:"Contact number"`
	Email        string `json:"email,omitempty" doc:"Contact email"`
	Relationship string `json:"relationship,omitempty" doc:"Relationship to the owner"`
	Owner        bool   `json:"owner" doc:"Whether the member owns the flat"`
	Approved     bool   `json:"approved" doc:"Whether the membership is approved"`
	FlatID       string `json:"flat_id" doc:"Flat the member belongs to"`
	UserID       string `json:"user_id,omitempty" doc:"Linked login, if any"`
	CreatedAt    string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toMemberResponse(m domain.FlatMember) MemberResponse {
	return MemberResponse{
		ID:           m.ID,
		Name:         m.Name,
		Phone:        m.Phone,
		Email:        m.Email,
		Relationship: m.Relationship,
		Owner:        m.Owner,
		Approved:     m.Approved,
		FlatID:       m.FlatID,
		UserID:       m.UserID,
		CreatedAt:    formatTime(m.CreatedAt),
	}
}

type CreateMemberInput struct {
	Body struct {
		FlatID       string `json:"flat_id" minLength:"1" doc:"Flat to join"`
		Name         string `json:"name" minLength:"1" maxLength:"255" doc:"Full name"`
		Phone        string `json:"phone,omitempty" doc:"Contact number"`
		Email        string `json:"email,omitempty" doc:"Contact email"`
		Relationship string `json:"relationship,omitempty" doc:"Relationship to the owner"`
		Owner        bool   `json:"owner,omitempty" doc:"Whether the member owns the flat"`
		UserID       string `json:"user_id,omitempty" doc:"Login to link, if any"`
	}
}

type CreateMemberOutput struct {
	Body MemberResponse
}

type ApproveMemberInput struct {
	ID string `path:"id" doc:"Member ID"`
}

type ApproveMemberOutput struct {
	Body MemberResponse
}

type ListMembersInput struct {
	ID string `path:"id" doc:"Flat ID"`
}

type ListPendingMembersInput struct {
	ID string `path:"id" doc:"Society ID"`
}

type ListMembersOutput struct {
	Body []MemberResponse
}

type DeleteMemberInput struct {
	ID string `path:"id" doc:"Member ID"`
}

type DeleteMemberOutput struct{}

func registerMembers(api huma.API, svc *app.MemberService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-member",
		Method:      http.MethodPost,
		Path:        "/api/v1/members",
		Summary:     "Add a member to a flat",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *CreateMemberInput) (*CreateMemberOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		member, err := svc.Create(ctx, actor, app.NewMemberInput{
			FlatID:       input.Body.FlatID,
			Name:         input.Body.Name,
			Phone:        input.Body.Phone,
			Email:        input.Body.Email,
			Relationship: input.Body.Relationship,
			Owner:        input.Body.Owner,
			UserID:       input.Body.UserID,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateMemberOutput{Body: toMemberResponse(member)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "approve-member",
		Method:      http.MethodPost,
		Path:        "/api/v1/members/{id}/approve",
		Summary:     "Approve a pending membership",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *ApproveMemberInput) (*ApproveMemberOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		member, err := svc.Approve(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ApproveMemberOutput{Body: toMemberResponse(member)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-members-by-flat",
		Method:      http.MethodGet,
		Path:        "/api/v1/flats/{id}/members",
		Summary:     "List a flat's members",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *ListMembersInput) (*ListMembersOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		members, err := svc.ListByFlat(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]MemberResponse, len(members))
		for i, m := range members {
			resp[i] = toMemberResponse(m)
		}
		return &ListMembersOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-pending-members",
		Method:      http.MethodGet,
		Path:        "/api/v1/societies/{id}/members/pending",
		Summary:     "List a society's pending memberships",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *ListPendingMembersInput) (*ListMembersOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		members, err := svc.ListPendingBySociety(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]MemberResponse, len(members))
		for i, m := range members {
			resp[i] = toMemberResponse(m)
		}
		return &ListMembersOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-member",
		Method:      http.MethodDelete,
		Path:        "/api/v1/members/{id}",
		Summary:     "Remove a member from a flat",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *DeleteMemberInput) (*DeleteMemberOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		if err := svc.Delete(ctx, actor, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteMemberOutput{}, nil
	})
}
