package consumers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/nats-io/stan.go"

	"supperclub/internal/external"
	"supperclub/internal/models"
	"supperclub/internal/monitoring"
)

// PassIssuer issues dinner passes for a booking and mails them out.
type PassIssuer interface {
	IssuePasses(bookingID int64, seats int) (*external.IssuePassesResponse, error)
	SendPasses(bookingID int64, recipientEmail string) error
}

// HostNotifier delivers a templated notification to a host.
type HostNotifier interface {
	Notify(hostID int64, template string, metadata map[string]string) error
}

// NotificationGate reports whether this is the first delivery attempt for a
// given host/booking pair within the dedup window.
type NotificationGate interface {
	FirstNotification(ctx context.Context, hostID, bookingID int64) (bool, error)
}

type Handlers struct {
	passes PassIssuer
	notify HostNotifier
	guard  NotificationGate
}

func NewHandlers(passes PassIssuer, notify HostNotifier, guard NotificationGate) *Handlers {
	return &Handlers{
		passes: passes,
		notify: notify,
		guard:  guard,
	}
}

// HandleReservationCreated runs the post-booking side effects: pass
// issuance, guest email and host notification. Each effect fails
// independently; one failing never blocks the others and the booking itself
// is never touched from here.
func (h *Handlers) HandleReservationCreated(m *stan.Msg) {
	var event models.ReservationCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal reservation created event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Processing reservation created event",
		"booking_id", event.BookingID,
		"slot_id", event.SlotID,
		"seats", event.Seats)

	if _, err := h.passes.IssuePasses(event.BookingID, event.Seats); err != nil {
		monitoring.SideEffectFailuresTotal.WithLabelValues("passes").Inc()
		slog.Error("Failed to issue passes", "booking_id", event.BookingID, "error", err)
	} else if err := h.passes.SendPasses(event.BookingID, event.RecipientEmail); err != nil {
		monitoring.SideEffectFailuresTotal.WithLabelValues("email").Inc()
		slog.Error("Failed to send passes", "booking_id", event.BookingID, "error", err)
	}

	h.notifyHost(context.Background(), event)

	m.Ack()
}

// notifyHost pings the host about the new booking, at most once per booking.
// Redelivered messages and overlapping consumers hit the guard and skip.
func (h *Handlers) notifyHost(ctx context.Context, event models.ReservationCreatedEvent) {
	first, err := h.guard.FirstNotification(ctx, event.HostID, event.BookingID)
	if err != nil {
		// Guard unavailable: notify anyway, a duplicate ping beats a missed
		// booking.
		slog.Warn("Notification guard unavailable", "error", err, "booking_id", event.BookingID)
	} else if !first {
		slog.Info("Host already notified, skipping", "host_id", event.HostID, "booking_id", event.BookingID)
		return
	}

	metadata := map[string]string{
		"booking_id": strconv.FormatInt(event.BookingID, 10),
		"slot_id":    strconv.FormatInt(event.SlotID, 10),
		"seats":      strconv.Itoa(event.Seats),
	}

	if err := h.notify.Notify(event.HostID, "booking_created", metadata); err != nil {
		monitoring.SideEffectFailuresTotal.WithLabelValues("host_notify").Inc()
		slog.Error("Failed to notify host", "host_id", event.HostID, "booking_id", event.BookingID, "error", err)
	}
}

// HandleSlotCancelled currently only records the cancellation. Guest-facing
// refund mails go out through a separate billing process.
func (h *Handlers) HandleSlotCancelled(m *stan.Msg) {
	var event models.SlotCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal slot cancelled event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Slot cancelled", "slot_id", event.SlotID, "host_id", event.HostID, "reason", event.Reason)

	m.Ack()
}
