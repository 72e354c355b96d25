package handler

import "github.com/deppfellow/user-service/internal/model"

// Response envelopes. Each endpoint keeps its own shape, so they are not
// unified on purpose.

const (
	msgUserCreated   = "User created successfully"
	msgUserRetrieved = "User retrieved successfully"
	msgUserUpdated   = "User updated successfully"
	msgUserDeleted   = "User deleted successfully"
	msgUserNotFound  = "User not found"

	msgCreateFailed   = "Unable to create user"
	msgListFailed     = "Unable to retrieve users"
	msgRetrieveFailed = "Unable to retrieve user"
	msgUpdateFailed   = "Unable to update user"
	msgDeleteFailed   = "Unable to delete user"
)

// UserResponse is returned by create and update.
type UserResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// MessageResponse is returned by delete and by the update/delete not-found case.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FailureResponse is the 500 body of create, update and delete.
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// UsersData wraps the list result; Users is never null.
type UsersData struct {
	Users []model.User `json:"users"`
}

// ListUsersFailure is the error member of a failed list response.
type ListUsersFailure struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ErrorMessage string `json:"errorMessage"`
}

// ListUsersResponse is the body of GET /users, success or failure.
type ListUsersResponse struct {
	Data  *UsersData        `json:"data"`
	Error *ListUsersFailure `json:"error"`
}

// GetUserResponse is the body of GET /users/:id in all three outcomes.
type GetUserResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *model.User `json:"data"`
	Error   *string     `json:"error"`
}

func failure(message string, err error) FailureResponse {
	return FailureResponse{Success: false, Message: message, Error: err.Error()}
}
