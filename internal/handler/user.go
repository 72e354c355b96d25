package handler

import (
	"strconv"

	"github.com/deppfellow/user-service/internal/errs"
	"github.com/deppfellow/user-service/internal/model"
	"github.com/deppfellow/user-service/internal/server"
	"github.com/deppfellow/user-service/internal/service"
	"github.com/deppfellow/user-service/internal/validation"
	"github.com/labstack/echo/v4"
)

// UserHandler serves the /users endpoints.
type UserHandler struct {
	Handler
	users *service.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		users:   users,
	}
}

// UserBody is the JSON body accepted by create and update. An absent field
// is "not provided"; an explicit null clears it.
type UserBody struct {
	Name  textField `json:"name"`
	Email textField `json:"email"`
	Age   intField  `json:"age"`
}

func (b UserBody) fields() model.UserFields {
	return model.UserFields{Name: b.Name.Optional, Email: b.Email.Optional, Age: b.Age.Optional}
}

type CreateUserRequest struct {
	UserBody
}

func (r *CreateUserRequest) Validate() error {
	return validation.Validate.Struct(r)
}

type ListUsersRequest struct {
	Search string `query:"search"`
	SortBy string `query:"sortBy"`
}

func (r *ListUsersRequest) Validate() error {
	return validation.Validate.Struct(r)
}

// UserIDRequest carries the raw :id path parameter. It stays a string so
// that a non-numeric id is a lookup miss rather than a bind error.
type UserIDRequest struct {
	ID string `param:"id" json:"-"`
}

func (r *UserIDRequest) Validate() error {
	return validation.Validate.Struct(r)
}

type UpdateUserRequest struct {
	ID string `param:"id" json:"-"`
	UserBody
}

func (r *UpdateUserRequest) Validate() error {
	return validation.Validate.Struct(r)
}

func parseUserID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(c echo.Context, req *CreateUserRequest) (*UserResponse, error) {
	user, err := h.users.Create(c.Request().Context(), req.fields())
	if err != nil {
		return nil, errs.StorageFault(err, failure(msgCreateFailed, err))
	}

	return &UserResponse{Success: true, Message: msgUserCreated, User: user}, nil
}

// ListUsers handles GET /users?search=&sortBy=.
func (h *UserHandler) ListUsers(c echo.Context, req *ListUsersRequest) (*ListUsersResponse, error) {
	users, err := h.users.List(c.Request().Context(), model.ListOptions{
		Search: req.Search,
		SortBy: req.SortBy,
	})
	if err != nil {
		return nil, errs.StorageFault(err, ListUsersResponse{
			Data: nil,
			Error: &ListUsersFailure{
				Success:      false,
				Message:      msgListFailed,
				ErrorMessage: err.Error(),
			},
		})
	}

	if users == nil {
		users = []model.User{}
	}
	return &ListUsersResponse{Data: &UsersData{Users: users}, Error: nil}, nil
}

// GetUser handles GET /users/:id.
func (h *UserHandler) GetUser(c echo.Context, req *UserIDRequest) (*GetUserResponse, error) {
	notFound := errs.NotFound(GetUserResponse{Success: false, Message: msgUserNotFound})

	id, ok := parseUserID(req.ID)
	if !ok {
		return nil, notFound
	}

	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		text := err.Error()
		return nil, errs.StorageFault(err, GetUserResponse{
			Success: false,
			Message: msgRetrieveFailed,
			Error:   &text,
		})
	}
	if user == nil {
		return nil, notFound
	}

	return &GetUserResponse{Success: true, Message: msgUserRetrieved, Data: user}, nil
}

// UpdateUser handles PUT /users/:id. Fields missing from the body keep their
// stored values; null fields are cleared.
func (h *UserHandler) UpdateUser(c echo.Context, req *UpdateUserRequest) (*UserResponse, error) {
	notFound := errs.NotFound(MessageResponse{Success: false, Message: msgUserNotFound})

	id, ok := parseUserID(req.ID)
	if !ok {
		return nil, notFound
	}

	user, err := h.users.Update(c.Request().Context(), id, req.fields())
	if err != nil {
		return nil, errs.StorageFault(err, failure(msgUpdateFailed, err))
	}
	if user == nil {
		return nil, notFound
	}

	return &UserResponse{Success: true, Message: msgUserUpdated, User: user}, nil
}

// DeleteUser handles DELETE /users/:id.
func (h *UserHandler) DeleteUser(c echo.Context, req *UserIDRequest) (*MessageResponse, error) {
	notFound := errs.NotFound(MessageResponse{Success: false, Message: msgUserNotFound})

	id, ok := parseUserID(req.ID)
	if !ok {
		return nil, notFound
	}

	deleted, err := h.users.Delete(c.Request().Context(), id)
	if err != nil {
		return nil, errs.StorageFault(err, failure(msgDeleteFailed, err))
	}
	if !deleted {
		return nil, notFound
	}

	return &MessageResponse{Success: true, Message: msgUserDeleted}, nil
}
