package model

import (
	"strings"
	"testing"

	"github.com/deppfellow/books-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func validCreate() *CreateBookRequest {
	return &CreateBookRequest{
		ID:     ptr(int64(42)),
		Title:  ptr("Dune"),
		Author: ptr("Herbert"),
		Pages:  ptr(412),
		Rating: ptr(4.8),
		Price:  ptr(11.5),
	}
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()

	var violations validation.CustomValidationErrors
	require.ErrorAs(t, err, &violations)

	out := make(map[string]string, len(violations))
	for _, v := range violations {
		out[v.Field] = v.Message
	}
	return out
}

func TestCreateBookRequest_Validate(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		req := validCreate()
		require.NoError(t, req.Validate())
		assert.Equal(t, Book{ID: 42, Title: "Dune", Author: "Herbert", Pages: 412, Rating: 4.8, Price: 11.5}, req.ToBook())
	})

	t.Run("boundary values are accepted", func(t *testing.T) {
		req := validCreate()
		req.Title = ptr(strings.Repeat("é", MaxTextLength))
		req.Pages = ptr(1)
		req.Rating = ptr(0.0)
		req.Price = ptr(0.0)
		assert.NoError(t, req.Validate())

		req.Rating = ptr(5.0)
		assert.NoError(t, req.Validate())
	})

	t.Run("every violation is reported", func(t *testing.T) {
		req := &CreateBookRequest{
			Title:  ptr(""),
			Author: ptr(strings.Repeat("a", MaxTextLength+1)),
			Pages:  ptr(0),
			Rating: ptr(5.1),
			Price:  ptr(-0.01),
		}

		assert.Equal(t, map[string]string{
			"id":     "is required",
			"title":  "must not be empty",
			"author": "must not exceed 100 characters",
			"pages":  "must be at least 1",
			"rating": "must not exceed 5",
			"price":  "must be at least 0",
		}, fields(t, req.Validate()))
	})

	t.Run("missing fields are required", func(t *testing.T) {
		got := fields(t, (&CreateBookRequest{}).Validate())

		assert.Len(t, got, 6)
		for _, field := range []string{"id", "title", "author", "pages", "rating", "price"} {
			assert.Equal(t, "is required", got[field], field)
		}
	})

	t.Run("negative rating", func(t *testing.T) {
		req := validCreate()
		req.Rating = ptr(-1.0)

		assert.Equal(t, map[string]string{"rating": "must be at least 0"}, fields(t, req.Validate()))
	})
}

func TestUpdateBookRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     UpdateBookRequest
		wantErr error
		fields  map[string]string
	}{
		{name: "nothing supplied", req: UpdateBookRequest{ID: 1}, wantErr: ErrEmptyUpdate},
		{name: "price only", req: UpdateBookRequest{Price: ptr(9.99)}},
		{name: "zero rating counts as supplied", req: UpdateBookRequest{Rating: ptr(0.0)}},
		{name: "zero price counts as supplied", req: UpdateBookRequest{Price: ptr(0.0)}},
		{
			name:   "each supplied field is checked",
			req:    UpdateBookRequest{Price: ptr(-1.0), Rating: ptr(6.0)},
			fields: map[string]string{"price": "must be at least 0", "rating": "must not exceed 5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.fields != nil:
				assert.Equal(t, tt.fields, fields(t, err))
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestBookDelta(t *testing.T) {
	book := Book{ID: 42, Title: "Dune", Author: "Herbert", Pages: 412, Rating: 4.8, Price: 11.5}

	assert.True(t, BookDelta{}.IsEmpty())
	assert.False(t, BookDelta{Rating: ptr(0.0)}.IsEmpty())

	got := BookDelta{Price: ptr(9.99)}.Apply(book)
	assert.Equal(t, 9.99, got.Price)
	assert.Equal(t, 4.8, got.Rating)
	assert.Equal(t, "Dune", got.Title)

	assert.Equal(t, book, BookDelta{}.Apply(book))
}

func TestBookFilter_Matches(t *testing.T) {
	book := Book{Title: "Animal Farm", Pages: 112}

	assert.True(t, BookFilter{}.Matches(book))
	assert.True(t, BookFilter{Title: ptr("FARM")}.Matches(book))
	assert.True(t, BookFilter{MinPages: ptr(112)}.Matches(book))
	assert.False(t, BookFilter{MinPages: ptr(113)}.Matches(book))
	assert.False(t, BookFilter{Title: ptr("farm"), MinPages: ptr(200)}.Matches(book))
	assert.False(t, BookFilter{Title: ptr("1984")}.Matches(book))

	// Final sigma and the capital form fold to the same letter.
	assert.True(t, BookFilter{Title: ptr("ΟΔΥΣΣΈΑΣ")}.Matches(Book{Title: "Ο Οδυσσέας"}))
}

func TestListBooksRequest_Filter(t *testing.T) {
	assert.Equal(t, BookFilter{}, (&ListBooksRequest{}).Filter())

	f := (&ListBooksRequest{Title: "farm", MinPages: 100}).Filter()
	require.NotNil(t, f.Title)
	require.NotNil(t, f.MinPages)
	assert.Equal(t, "farm", *f.Title)
	assert.Equal(t, 100, *f.MinPages)
}

func TestNewStorageError(t *testing.T) {
	assert.NoError(t, NewStorageError("get book", nil))

	cause := assert.AnError
	err := NewStorageError("get book", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage: get book: "+cause.Error(), err.Error())
}
