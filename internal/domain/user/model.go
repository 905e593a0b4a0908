package user

import "time"

type User struct {
	ID        int
	Login     string
	Password  string // bcrypt-хеш
	IsAdmin   bool
	CreatedAt time.Time
}

// Principal - аутентифицированный пользователь вместе с привязкой к клиенту.
type Principal struct {
	UserID     int
	Login      string
	Admin      bool
	CustomerID string
}
