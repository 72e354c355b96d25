package repository

import (
	"github.com/deppfellow/user-service/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	User *UserRepository
}

// NewRepositories constructs the repository container over the server's
// database handle.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		User: NewUserRepository(
			s.DB.DB,
			s.Logger,
			s.Config.Observability.Logging.SlowQueryThreshold,
		),
	}
}
