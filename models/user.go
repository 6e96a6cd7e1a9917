package models

// User represents a row in the "users" table. The password hash is never
// loaded into it.
type User struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// UserDetail is a user together with the ids of the jobs they applied to.
type UserDetail struct {
	User
	Jobs []int64 `json:"jobs"`
}

// RegisterUserParams holds the fields needed to create an account. Password
// is the plain text; the repository hashes it before storing.
type RegisterUserParams struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}
