package service

import (
	apperrors "supperclub/internal/errors"
	"supperclub/internal/models"
)

// ResolvePrice returns the per-seat price for a guest tier: the slot's
// tier-table entry when one exists, the slot base price otherwise. A
// negative resolved price is a data error discovered after the seats were
// already reserved, so callers must compensate on ErrInvalidPrice.
func ResolvePrice(slot *models.EventSlot, tierPrices []models.TierPrice, tier string) (int64, error) {
	price := slot.BasePrice
	for _, tp := range tierPrices {
		if tp.Tier == tier {
			price = tp.PricePerSeat
			break
		}
	}

	if price < 0 {
		return 0, apperrors.ErrInvalidPrice
	}

	return price, nil
}
