package repository

import (
	"context"

	"shop/internal/domain/model"
)

// CartOwner identifies who a cart belongs to: a logged-in user or an
// anonymous guest token. Exactly one side is set.
type CartOwner struct {
	UserID     *int64
	GuestToken string
}

func OwnerForUser(userID int64) CartOwner {
	return CartOwner{UserID: &userID}
}

func OwnerForGuest(token string) CartOwner {
	return CartOwner{GuestToken: token}
}

func (o CartOwner) Valid() bool {
	if o.UserID != nil && *o.UserID > 0 {
		return o.GuestToken == ""
	}
	return o.GuestToken != ""
}

type CartRepository interface {
	GetOrCreateActiveByOwner(ctx context.Context, owner CartOwner) (model.Cart, error)
	FindActiveByOwner(ctx context.Context, owner CartOwner) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
	Clear(ctx context.Context, cartID int64) error

	// MergeGuestIntoUser moves the guest cart's items into the user's
	// active cart (quantities added per product) and closes the guest
	// cart. No-op when the guest has no active cart.
	MergeGuestIntoUser(ctx context.Context, guestToken string, userID int64) error
}
