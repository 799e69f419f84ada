package model

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/deppfellow/books-api/internal/validation"
	"golang.org/x/text/cases"
)

const (
	MaxTextLength = 100
	MinPages      = 1
	MinRating     = 0.0
	MaxRating     = 5.0
	MinPrice      = 0.0
)

// Book is the persisted record.
type Book struct {
	ID     int64   `json:"id" db:"id"`
	Title  string  `json:"title" db:"title"`
	Author string  `json:"author" db:"author"`
	Pages  int     `json:"pages" db:"pages"`
	Rating float64 `json:"rating" db:"rating"`
	Price  float64 `json:"price" db:"price"`
}

// BookDelta is the set of mutable fields an update supplies.
// A nil field means "not supplied", never "set to zero".
type BookDelta struct {
	Price  *float64
	Rating *float64
}

// IsEmpty reports whether the delta changes nothing.
func (d BookDelta) IsEmpty() bool {
	return d.Price == nil && d.Rating == nil
}

// Apply returns b with the supplied fields replaced.
func (d BookDelta) Apply(b Book) Book {
	if d.Price != nil {
		b.Price = *d.Price
	}
	if d.Rating != nil {
		b.Rating = *d.Rating
	}
	return b
}

// BookFilter is a conjunction of optional query terms.
type BookFilter struct {
	// Title matches case-insensitively anywhere in the title.
	Title *string
	// MinPages keeps books with pages >= MinPages.
	MinPages *int
}

// Matches reports whether b satisfies every supplied term.
//
// Backends that cannot push the filter down to the engine use it directly.
func (f BookFilter) Matches(b Book) bool {
	if f.Title != nil && !containsFold(b.Title, *f.Title) {
		return false
	}
	if f.MinPages != nil && b.Pages < *f.MinPages {
		return false
	}
	return true
}

// CreateBookRequest is the POST /books payload.
//
// Every field is a pointer so a missing field is distinguishable from a
// zero value: rating 0 and price 0 are legal, an absent rating is not.
type CreateBookRequest struct {
	ID     *int64   `json:"id"`
	Title  *string  `json:"title"`
	Author *string  `json:"author"`
	Pages  *int     `json:"pages"`
	Rating *float64 `json:"rating"`
	Price  *float64 `json:"price"`
}

// Validate checks every field and reports all violations at once.
func (r *CreateBookRequest) Validate() error {
	var violations validation.CustomValidationErrors

	if r.ID == nil {
		violations = append(violations, required("id"))
	}

	violations = append(violations, checkText("title", r.Title)...)
	violations = append(violations, checkText("author", r.Author)...)

	switch {
	case r.Pages == nil:
		violations = append(violations, required("pages"))
	case *r.Pages < MinPages:
		violations = append(violations, validation.CustomValidationError{
			Field:   "pages",
			Message: fmt.Sprintf("must be at least %d", MinPages),
		})
	}

	if r.Rating == nil {
		violations = append(violations, required("rating"))
	} else if v, ok := checkRating(*r.Rating); !ok {
		violations = append(violations, v)
	}

	if r.Price == nil {
		violations = append(violations, required("price"))
	} else if v, ok := checkPrice(*r.Price); !ok {
		violations = append(violations, v)
	}

	if len(violations) > 0 {
		return violations
	}
	return nil
}

// ToBook returns the normalized record. Call only after Validate succeeds.
func (r *CreateBookRequest) ToBook() Book {
	return Book{
		ID:     *r.ID,
		Title:  *r.Title,
		Author: *r.Author,
		Pages:  *r.Pages,
		Rating: *r.Rating,
		Price:  *r.Price,
	}
}

// UpdateBookRequest is the PUT /books/{id} payload. Only price and rating
// are mutable; other JSON fields are ignored.
type UpdateBookRequest struct {
	ID     int64    `param:"id" json:"-"`
	Price  *float64 `json:"price"`
	Rating *float64 `json:"rating"`
}

// Validate returns ErrEmptyUpdate when nothing is supplied, otherwise the
// aggregated range violations of the supplied fields.
func (r *UpdateBookRequest) Validate() error {
	if r.Delta().IsEmpty() {
		return ErrEmptyUpdate
	}

	var violations validation.CustomValidationErrors
	if r.Price != nil {
		if v, ok := checkPrice(*r.Price); !ok {
			violations = append(violations, v)
		}
	}
	if r.Rating != nil {
		if v, ok := checkRating(*r.Rating); !ok {
			violations = append(violations, v)
		}
	}

	if len(violations) > 0 {
		return violations
	}
	return nil
}

// Delta returns the supplied field changes.
func (r *UpdateBookRequest) Delta() BookDelta {
	return BookDelta{Price: r.Price, Rating: r.Rating}
}

// GetBookRequest carries the path id of GET /books/{id}.
type GetBookRequest struct {
	ID int64 `param:"id"`
}

func (r *GetBookRequest) Validate() error {
	return nil
}

// ListBooksRequest carries the GET /books query.
type ListBooksRequest struct {
	Title    string `query:"title"`
	MinPages int    `query:"min_pages"`
}

func (r *ListBooksRequest) Validate() error {
	return nil
}

// Filter converts the query into a BookFilter; empty terms are omitted.
func (r *ListBooksRequest) Filter() BookFilter {
	var f BookFilter
	if r.Title != "" {
		title := r.Title
		f.Title = &title
	}
	if r.MinPages != 0 {
		minPages := r.MinPages
		f.MinPages = &minPages
	}
	return f
}

func required(field string) validation.CustomValidationError {
	return validation.CustomValidationError{Field: field, Message: "is required"}
}

func checkText(field string, value *string) validation.CustomValidationErrors {
	if value == nil {
		return validation.CustomValidationErrors{required(field)}
	}

	n := utf8.RuneCountInString(*value)
	switch {
	case n < 1:
		return validation.CustomValidationErrors{{Field: field, Message: "must not be empty"}}
	case n > MaxTextLength:
		return validation.CustomValidationErrors{{
			Field:   field,
			Message: fmt.Sprintf("must not exceed %d characters", MaxTextLength),
		}}
	}
	return nil
}

func checkRating(rating float64) (validation.CustomValidationError, bool) {
	switch {
	case rating < MinRating:
		return validation.CustomValidationError{Field: "rating", Message: fmt.Sprintf("must be at least %g", MinRating)}, false
	case rating > MaxRating:
		return validation.CustomValidationError{Field: "rating", Message: fmt.Sprintf("must not exceed %g", MaxRating)}, false
	}
	return validation.CustomValidationError{}, true
}

func checkPrice(price float64) (validation.CustomValidationError, bool) {
	if price < MinPrice {
		return validation.CustomValidationError{Field: "price", Message: fmt.Sprintf("must be at least %g", MinPrice)}, false
	}
	return validation.CustomValidationError{}, true
}

// containsFold is a Unicode case-folded substring match. A Caser keeps
// state, so each call gets its own.
func containsFold(s, substr string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}
