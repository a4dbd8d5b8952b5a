package downstream

import (
	"context"
	"net/url"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/domain"
)

type UserClient struct {
	c *Client
}

func NewUserClient(c *Client) *UserClient {
	return &UserClient{c: c}
}

func (u *UserClient) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := u.c.Get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = make([]domain.User, 0)
	}
	return users, nil
}

func (u *UserClient) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := u.c.Get(ctx, "/user/"+url.PathEscape(id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type registerUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

// CreateUser registers a user. The backend answers with a message only,
// so there is no entity to return.
func (u *UserClient) CreateUser(ctx context.Context, form domain.UserForm) error {
	user := form.User()
	return u.c.PostJSON(ctx, "/user/register", registerUserRequest{
		Username: user.Username,
		Email:    user.Email,
		Password: form.Password,
		Role:     user.Role,
	}, nil)
}

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

func (u *UserClient) UpdateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var updated domain.User
	err := u.c.PutJSON(ctx, "/user/"+url.PathEscape(user.ID), updateUserRequest{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}, &updated)
	if err != nil {
		return nil, err
	}
	if updated.ID == "" {
		updated = user
	}
	return &updated, nil
}

func (u *UserClient) DeleteUser(ctx context.Context, id string) error {
	return u.c.Delete(ctx, "/user/"+url.PathEscape(id), nil)
}

func (u *UserClient) ResetPassword(ctx context.Context, id, newPassword string) error {
	return u.c.PutJSON(ctx, "/reset-password/"+url.PathEscape(id), map[string]string{
		"newPassword": newPassword,
	}, nil)
}
