package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/societyq/societyq/internal/domain"
)

// AuthService registers users and issues the signed tokens the HTTP layer
// turns back into actors.
type AuthService struct {
	users     domain.UserRepository
	societies domain.SocietyRepository
	secret    []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a service signing tokens with the given secret.
func NewAuthService(users domain.UserRepository, societies domain.SocietyRepository, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		societies: societies,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
	}
}

// RegisterInput carries the fields needed to create a login.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Role            domain.Role
	SocietyID       string
}

// Register creates a user with a bcrypt-hashed password. An ADMIN registered
// without a society becomes a super admin; everyone else must name an
// existing society.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	if !domain.ValidRole(in.Role) {
		return domain.User{}, &domain.InvalidArgumentError{Reason: fmt.Sprintf("unknown role %q", in.Role)}
	}
	if in.Password == "" {
		return domain.User{}, &domain.InvalidArgumentError{Reason: "password must not be empty"}
	}
	if in.Password != in.ConfirmPassword {
		return domain.User{}, &domain.InvalidArgumentError{Reason: "passwords do not match"}
	}

	if in.SocietyID == "" {
		if in.Role != domain.RoleAdmin {
			return domain.User{}, &domain.InvalidArgumentError{Reason: "a society is required for this role"}
		}
	} else {
		ok, err := s.societies.Exists(ctx, in.SocietyID)
		if err != nil {
			return domain.User{}, fmt.Errorf("checking society: %w", err)
		}
		if !ok {
			return domain.User{}, &domain.NotFoundError{Resource: "society", ID: in.SocietyID}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing password: %w", err)
	}

	id, err := generateID()
	if err != nil {
		return domain.User{}, fmt.Errorf("generating user id: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           id,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		Role:         in.Role,
		SocietyID:    in.SocietyID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies the credentials and returns a signed bearer token. Wrong
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return "", domain.User{}, domain.ErrUnauthenticated
		}
		return "", domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.User{}, domain.ErrUnauthenticated
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        user.ID,
		"name":       user.Name,
		"role":       string(user.Role),
		"society_id": user.SocietyID,
		"iat":        now.Unix(),
		"exp":        now.Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("signing token: %w", err)
	}

	user.PasswordHash = ""
	return signed, user, nil
}

// GetUser returns a user profile. Callers may read themselves; anything else
// requires an admin of the user's society.
func (s *AuthService) GetUser(ctx context.Context, actor domain.Actor, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if actor.UserID != user.ID {
		if err := Authorize(actor, user.SocietyID, domain.RoleAdmin); err != nil {
			return domain.User{}, err
		}
	}

	user.PasswordHash = ""
	return user, nil
}

// ListUsersBySociety returns a society's accounts. Admin-only.
func (s *AuthService) ListUsersBySociety(ctx context.Context, actor domain.Actor, societyID string) ([]domain.User, error) {
	if err := Authorize(actor, societyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	users, err := s.users.ListBySociety(ctx, societyID)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// ParseToken verifies a bearer token and rebuilds the actor it was issued to.
func (s *AuthService) ParseToken(tokenString string) (domain.Actor, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return domain.Actor{}, domain.ErrUnauthenticated
	}

	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	societyID, _ := claims["society_id"].(string)
	if sub == "" || !domain.ValidRole(domain.Role(role)) {
		return domain.Actor{}, domain.ErrUnauthenticated
	}

	return domain.Actor{
		UserID:    sub,
		Name:      name,
		Role:      domain.Role(role),
		SocietyID: societyID,
	}, nil
}
