package repository

import (
	"github.com/deppfellow/books-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Book BookStore
}

// NewRepositories builds the repositories over the backend the server opened.
func NewRepositories(s *server.Server) *Repositories {
	var book BookStore
	if s.DB.Pool != nil {
		book = NewBookRepository(s.DB.Pool)
	} else {
		book = NewBoltBookRepository(s.DB.Bolt)
	}

	return &Repositories{Book: book}
}
