package domain

import "context"

// BookingAuthorizer answers whether a user may book. Identity itself is
// established by the auth service.
type BookingAuthorizer interface {
	CanBook(ctx context.Context, userID int) error
}
