package account

import (
	"time"

	"github.com/saaskit/saaskit/internal/email"
)

// User contains the data for a user account.
type User struct {
	ID        int
	Email     email.Address
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
