package service

import (
	"time"

	"supperclub/internal/logger"
	"supperclub/internal/models"
	"supperclub/internal/monitoring"
)

// SideEffectDispatcher publishes broker events after the transactional core
// has committed. Publication runs on its own goroutine so the booking
// response never waits on the broker, and each publish runs to completion
// or explicit failure; failures are logged and counted, never propagated.
type SideEffectDispatcher struct {
	nats Publisher
}

func NewSideEffectDispatcher(nats Publisher) *SideEffectDispatcher {
	return &SideEffectDispatcher{nats: nats}
}

// ReservationCreated fans out the post-booking side effects: pass issuance,
// guest email and host notification are performed by the consumers reading
// this subject.
func (d *SideEffectDispatcher) ReservationCreated(booking *models.Booking, intent *models.PaymentIntent, slot *models.EventSlot, recipientEmail string) {
	event := models.ReservationCreatedEvent{
		BookingID:       booking.ID,
		PaymentIntentID: intent.ID,
		SlotID:          slot.ID,
		HostID:          slot.HostID,
		GuestID:         booking.GuestID,
		Seats:           booking.Seats,
		AmountTotal:     booking.AmountTotal,
		Currency:        booking.Currency,
		RecipientEmail:  recipientEmail,
		Timestamp:       time.Now(),
	}

	go d.publish(models.EventReservationCreated, event, "booking_id", booking.ID)
}

// SlotCancelled announces a host cancellation.
func (d *SideEffectDispatcher) SlotCancelled(slot *models.EventSlot, reason string) {
	event := models.SlotCancelledEvent{
		SlotID:    slot.ID,
		HostID:    slot.HostID,
		Reason:    reason,
		Timestamp: time.Now(),
	}

	go d.publish(models.EventSlotCancelled, event, "slot_id", slot.ID)
}

func (d *SideEffectDispatcher) publish(subject string, event interface{}, logArgs ...any) {
	if err := d.nats.Publish(subject, event); err != nil {
		monitoring.SideEffectFailuresTotal.WithLabelValues("publish").Inc()
		args := append([]any{"error", err, "subject", subject}, logArgs...)
		logger.Get().Error("Failed to publish side-effect event", args...)
	}
}
