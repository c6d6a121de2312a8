package environment

import (
	"blog-admin/internal/database"
	"blog-admin/internal/logging"
)

// Env bundles the infrastructure every controller and service needs: the post
// store and the logger. Components embed *Env so repository and logging methods
// are promoted onto them.
type Env struct {
	database.Repository
	logging.Logger
}

// Environment builds an Env from the given repository and logger.
// A nil argument is replaced by its no-op counterpart, so a partially wired Env
// never panics on a nil interface.
func Environment(repository database.Repository, logger logging.Logger) *Env {
	if repository == nil {
		repository = &database.NullRepository{}
	}

	if logger == nil {
		logger = &logging.NullLogger{}
	}

	return &Env{repository, logger}
}

// Null returns an Env that neither stores nor logs anything.
func Null() *Env {
	return Environment(nil, nil)
}

// WithRepository returns a copy of env that uses repository for data access.
func (e *Env) WithRepository(repository database.Repository) *Env {
	return Environment(repository, e.Logger)
}
