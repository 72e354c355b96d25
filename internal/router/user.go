package router

import (
	"net/http"

	"github.com/deppfellow/user-service/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerUserRoutes registers the /users CRUD endpoints.
func registerUserRoutes(r *echo.Echo, h *handler.Handlers) {
	users := r.Group("/users")
	uh := h.User

	users.POST("", handler.Handle(uh.Handler, uh.CreateUser, http.StatusCreated,
		handler.NewRequest[handler.CreateUserRequest]))

	users.GET("", handler.Handle(uh.Handler, uh.ListUsers, http.StatusOK,
		handler.NewRequest[handler.ListUsersRequest]))

	users.GET("/:id", handler.Handle(uh.Handler, uh.GetUser, http.StatusOK,
		handler.NewRequest[handler.UserIDRequest]))

	users.PUT("/:id", handler.Handle(uh.Handler, uh.UpdateUser, http.StatusOK,
		handler.NewRequest[handler.UpdateUserRequest]))

	users.DELETE("/:id", handler.Handle(uh.Handler, uh.DeleteUser, http.StatusOK,
		handler.NewRequest[handler.UserIDRequest]))
}
