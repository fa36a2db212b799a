package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/societyq/societyq/internal/app"
	"github.com/societyq/societyq/internal/domain"
)

// UserResponse is the API representation of a user account.
type UserResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	Name      string `json:"name" doc:"Full name"`
	Email     string `json:"email" doc:"Login email"`
	Phone     string `json:"phone,omitempty" doc:"Contact number"`
	Role      string `json:"role" doc:"ADMIN, RESIDENT or GUARD"`
	SocietyID string `json:"society_id,omitempty" doc:"Society the account is scoped to; empty for super admins"`
	CreatedAt string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		SocietyID: u.SocietyID,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

type RegisterUserInput struct {
	Body struct {
		Name            string `json:"name" minLength:"1" maxLength:"255" doc:"Full name"`
		Email           string `json:"email" format:"email" doc:"Login email"`
		Password        string `json:"password" minLength:"8" doc:"Password (min 8 characters)"`
		ConfirmPassword string `json:"confirm_password" doc:"Must match password"`
		Phone           string `json:"phone,omitempty" doc:"Contact number"`
		Role            string `json:"role" enum:"ADMIN,RESIDENT,GUARD" doc:"Account role"`
		SocietyID       string `json:"society_id,omitempty" doc:"Society to join; required unless registering a super admin"`
	}
}

type RegisterUserOutput struct {
	Body UserResponse
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Login email"`
		Password string `json:"password" doc:"Password"`
	}
}

type LoginOutput struct {
	Body struct {
		Token string       `json:"token" doc:"Bearer token for subsequent requests"`
		User  UserResponse `json:"user"`
	}
}

type GetUserInput struct {
	ID string `path:"id" doc:"User ID"`
}

type GetUserOutput struct {
	Body UserResponse
}

type ListUsersInput struct {
	ID string `path:"id" doc:"Society ID"`
}

type ListUsersOutput struct {
	Body []UserResponse
}

func registerAuth(api huma.API, svc *app.AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "register-user",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register a new account",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RegisterUserInput) (*RegisterUserOutput, error) {
		user, err := svc.Register(ctx, app.RegisterInput{
			Name:            input.Body.Name,
			Email:           input.Body.Email,
			Password:        input.Body.Password,
			ConfirmPassword: input.Body.ConfirmPassword,
			Phone:           input.Body.Phone,
			Role:            domain.Role(input.Body.Role),
			SocietyID:       input.Body.SocietyID,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RegisterUserOutput{Body: toUserResponse(user)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Exchange credentials for a token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		token, user, err := svc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &LoginOutput{}
		out.Body.Token = token
		out.Body.User = toUserResponse(user)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get a user profile",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *GetUserInput) (*GetUserOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		user, err := svc.GetUser(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetUserOutput{Body: toUserResponse(user)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-users-by-society",
		Method:      http.MethodGet,
		Path:        "/api/v1/societies/{id}/users",
		Summary:     "List a society's accounts",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		users, err := svc.ListUsersBySociety(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]UserResponse, len(users))
		for i, u := range users {
			resp[i] = toUserResponse(u)
		}
		return &ListUsersOutput{Body: resp}, nil
	})
}
