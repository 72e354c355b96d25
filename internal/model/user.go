// Package model holds the domain types shared by the repository,
// service and handler layers.
package model

import "time"

// User is the only resource exposed by the service.
//
// Name, Email and Age are nullable; ID and the timestamps are managed by
// the store.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      *string   `json:"name" db:"name"`
	Email     *string   `json:"email" db:"email"`
	Age       *int      `json:"age" db:"age"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Optional is one attribute of UserFields. The zero value was not
// provided; a provided Optional with a nil Value is an explicit null.
//
// Value holds whatever the client sent after coercion. The store decides
// whether it fits the column.
type Optional struct {
	Present bool
	Value   any
}

// Set returns a provided Optional holding v.
func Set(v any) Optional {
	return Optional{Present: true, Value: v}
}

// Null returns a provided Optional that clears the column.
func Null() Optional {
	return Optional{Present: true}
}

// UserFields is the replaceable subset of a User. A field that is not
// provided is stored as NULL on create and left untouched on update.
type UserFields struct {
	Name  Optional
	Email Optional
	Age   Optional
}

// IsEmpty reports whether no field was provided.
func (f UserFields) IsEmpty() bool {
	return !f.Name.Present && !f.Email.Present && !f.Age.Present
}

// Columns returns the provided fields keyed by column name. Explicit nulls
// map to nil.
func (f UserFields) Columns() map[string]any {
	cols := make(map[string]any, 3)
	if f.Name.Present {
		cols["name"] = f.Name.Value
	}
	if f.Email.Present {
		cols["email"] = f.Email.Value
	}
	if f.Age.Present {
		cols["age"] = f.Age.Value
	}
	return cols
}

// ListOptions narrows and orders FindAll.
type ListOptions struct {
	// Search is a case-insensitive substring matched against name.
	Search string

	// SortBy is the JSON name of the field to sort ascending by.
	SortBy string
}
