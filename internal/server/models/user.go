// Package models defines server-side data models persisted in the database.
// JSON tags give the wire names used by the REST API.
package models

import "time"

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	// Password is the bcrypt hash; it never leaves the server.
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserRef is the owner summary nested into todos and files.
type UserRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type UserWithTodos struct {
	User
	Todos []Todo `json:"todos"`
}

type UserWithRoles struct {
	User
	Roles []Role `json:"roles"`
}

// UserPatch carries the fields of a partial user update; nil means unchanged.
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}
