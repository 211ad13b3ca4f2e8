package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutStateGormRepository struct {
	db *gorm.DB
}

func NewCheckoutStateGormRepository(db *gorm.DB) *CheckoutStateGormRepository {
	return &CheckoutStateGormRepository{db: db}
}

func (r *CheckoutStateGormRepository) FindByCartID(ctx context.Context, cartID int64) (model.CheckoutState, error) {
	var s model.CheckoutState
	err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CheckoutState{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CheckoutState{}, err
	}
	return s, nil
}

// Save relies on the cart_id unique index: insert on first write,
// update the selection columns afterwards.
func (r *CheckoutStateGormRepository) Save(ctx context.Context, state model.CheckoutState) (model.CheckoutState, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"shipping_address_id", "billing_address_id",
				"shipping_method", "payment_method", "updated_at",
			}),
		}).
		Create(&state).Error
	if err != nil {
		return model.CheckoutState{}, err
	}
	return r.FindByCartID(ctx, state.CartID)
}

func (r *CheckoutStateGormRepository) DeleteByCartID(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CheckoutState{}).Error
}
