package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/societyq/societyq/internal/app"
	"github.com/societyq/societyq/internal/domain"
)

// NoticeResponse is the API representation of a notice.
type NoticeResponse struct {
	ID          string `json:"id" doc:"Unique identifier"`
	Title       string `json:"title" doc:"Notice title"`
	Content     string `json:"content" doc:"Notice body"`
	SocietyID   string `json:"society_id" doc:"Society the notice addresses"`
	CreatedByID string `json:"created_by_id" doc:"Admin who posted it"`
	Active      bool   `json:"active" doc:"Whether the notice is currently displayed"`
	ExpiresAt   string `json:"expires_at,omitempty" doc:"Automatic retirement timestamp (ISO 8601)"`
	CreatedAt   string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt   string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toNoticeResponse(n domain.Notice) NoticeResponse {
	return NoticeResponse{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		SocietyID:   n.SocietyID,
		CreatedByID: n.CreatedByID,
		Active:      n.Active,
		ExpiresAt:   formatNullTime(n.ExpiresAt),
		CreatedAt:   formatTime(n.CreatedAt),
		UpdatedAt:   formatTime(n.UpdatedAt),
	}
}

type CreateNoticeInput struct {
	Body struct {
		SocietyID string     `json:"society_id" minLength:"1" doc:"Society to address"`
		Title     string     `json:"title" minLength:"1" maxLength:"255" doc:"Notice title"`
		Content   string     `json:"content" minLength:"1" doc:"Notice body"`
		ExpiresAt *time.Time `json:"expires_at,omitempty" doc:"Automatic retirement time"`
	}
}

type CreateNoticeOutput struct {
	Body NoticeResponse
}

type UpdateNoticeInput struct {
	ID   string `path:"id" doc:"Notice ID"`
	Body struct {
		Title     string     `json:"title" minLength:"1" maxLength:"255" doc:"Notice title"`
		Content   string     `json:"content" minLength:"1" doc:"Notice body"`
		ExpiresAt *time.Time `json:"expires_at,omitempty" doc:"Automatic retirement time"`
		Active    bool       `json:"active" doc:"Whether the notice stays displayed"`
	}
}

type UpdateNoticeOutput struct {
	Body NoticeResponse
}

type DeactivateNoticeInput struct {
	ID string `path:"id" doc:"Notice ID"`
}

type DeactivateNoticeOutput struct {
	Body NoticeResponse
}

type ListNoticesInput struct {
	ID     string `path:"id" doc:"Society ID"`
	Active bool   `query:"active" required:"false" doc:"Only active notices"`
}

type ListNoticesOutput struct {
	Body []NoticeResponse
}

func registerNotices(api huma.API, svc *app.NoticeService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-notice",
		Method:      http.MethodPost,
		Path:        "/api/v1/notices",
		Summary:     "Post a notice to a society",
		Tags:        []string{"Notices"},
	}, func(ctx context.Context, input *CreateNoticeInput) (*CreateNoticeOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		notice, err := svc.Create(ctx, actor, app.NewNoticeInput{
			SocietyID: input.Body.SocietyID,
			Title:     input.Body.Title,
			Content:   input.Body.Content,
			ExpiresAt: input.Body.ExpiresAt,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateNoticeOutput{Body: toNoticeResponse(notice)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-notice",
		Method:      http.MethodPut,
		Path:        "/api/v1/notices/{id}",
		Summary:     "Update a notice",
		Tags:        []string{"Notices"},
	}, func(ctx context.Context, input *UpdateNoticeInput) (*UpdateNoticeOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		notice, err := svc.Update(ctx, actor, input.ID, input.Body.Title, input.Body.Content, input.Body.ExpiresAt, input.Body.Active)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &UpdateNoticeOutput{Body: toNoticeResponse(notice)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "deactivate-notice",
		Method:      http.MethodPost,
		Path:        "/api/v1/notices/{id}/deactivate",
		Summary:     "Take a notice down",
		Tags:        []string{"Notices"},
	}, func(ctx context.Context, input *DeactivateNoticeInput) (*DeactivateNoticeOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		notice, err := svc.Deactivate(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &DeactivateNoticeOutput{Body: toNoticeResponse(notice)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-notices-by-society",
		Method:      http.MethodGet,
		Path:        "/api/v1/societies/{id}/notices",
		Summary:     "List a society's notices",
		Tags:        []string{"Notices"},
	}, func(ctx context.Context, input *ListNoticesInput) (*ListNoticesOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		notices, err := svc.ListBySociety(ctx, actor, input.ID, input.Active)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]NoticeResponse, len(notices))
		for i, n := range notices {
			resp[i] = toNoticeResponse(n)
		}
		return &ListNoticesOutput{Body: resp}, nil
	})
}
