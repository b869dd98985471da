package service

import (
	"context"
	"fmt"

	apperrors "supperclub/internal/errors"
	"supperclub/internal/logger"
	"supperclub/internal/models"
	"supperclub/internal/monitoring"
	"supperclub/internal/repository"
	"supperclub/internal/search"
)

// SlotService handles the host-side slot lifecycle and guest-side
// discovery. The discovery index is maintained best-effort: a failed index
// write never fails the slot operation.
type SlotService struct {
	slotRepo   *repository.SlotRepository
	userRepo   *repository.UserRepository
	esClient   *search.ElasticsearchClient
	dispatcher *SideEffectDispatcher
}

func NewSlotService(slotRepo *repository.SlotRepository, userRepo *repository.UserRepository, esClient *search.ElasticsearchClient, dispatcher *SideEffectDispatcher) *SlotService {
	return &SlotService{
		slotRepo:   slotRepo,
		userRepo:   userRepo,
		esClient:   esClient,
		dispatcher: dispatcher,
	}
}

func (s *SlotService) Create(ctx context.Context, hostID int64, req *models.CreateSlotRequest) (*models.CreateSlotResponse, error) {
	host, err := s.userRepo.GetByID(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host: %w", err)
	}
	if host == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if host.Suspended {
		return nil, apperrors.ErrHostSuspended
	}

	slot := &models.EventSlot{
		HostID:      hostID,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		MaxGuests:   req.MaxGuests,
		BasePrice:   req.BasePrice,
		Currency:    "EUR",
	}

	if err := s.slotRepo.Create(ctx, slot, req.TierPrices); err != nil {
		return nil, fmt.Errorf("failed to create event slot: %w", err)
	}

	s.indexSlot(ctx, slot)

	return &models.CreateSlotResponse{ID: slot.ID}, nil
}

func (s *SlotService) Get(ctx context.Context, id int64) (*models.EventSlot, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event slot: %w", err)
	}
	if slot == nil {
		return nil, apperrors.ErrEventNotFound
	}
	return slot, nil
}

// List serves discovery. With a search query it goes through Elasticsearch;
// without one, or when the index is unavailable, it falls back to the
// primary store.
func (s *SlotService) List(ctx context.Context, query string, page, pageSize int) (models.ListSlotsResponse, error) {
	if s.esClient != nil {
		summaries, err := s.esClient.SearchSlots(ctx, query, page, pageSize)
		if err == nil {
			return summaries, nil
		}
		logger.WithContext(ctx).Warn("Slot search fell back to database", "error", err, "query", query)
	}

	slots, err := s.slotRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list event slots: %w", err)
	}

	result := make(models.ListSlotsResponse, 0, len(slots))
	for i := range slots {
		slot := &slots[i]
		// The SQL fallback serves only the open-slot listing.
		if slot.Status != models.SlotStatusOpen {
			continue
		}
		result = append(result, models.SlotSummary{
			ID:             slot.ID,
			Title:          slot.Title,
			Description:    slot.Description,
			StartsAt:       slot.StartsAt,
			SeatsRemaining: slot.SeatsRemaining,
			Status:         slot.Status,
			BasePrice:      slot.BasePrice,
			Currency:       slot.Currency,
		})
	}

	return result, nil
}

// Cancel moves a slot to CANCELLED. Reservations already made keep their
// bookings (refund handling lives outside this service); new reserves are
// rejected by the conditional update from this point on.
func (s *SlotService) Cancel(ctx context.Context, hostID int64, req *models.CancelSlotRequest) error {
	slot, err := s.slotRepo.SetStatus(ctx, req.SlotID, hostID, models.SlotStatusCancelled)
	if err != nil {
		return err
	}

	s.indexSlot(ctx, slot)
	s.dispatcher.SlotCancelled(slot, "Cancelled by host")

	return nil
}

func (s *SlotService) Complete(ctx context.Context, hostID int64, req *models.CompleteSlotRequest) error {
	slot, err := s.slotRepo.SetStatus(ctx, req.SlotID, hostID, models.SlotStatusCompleted)
	if err != nil {
		return err
	}

	s.indexSlot(ctx, slot)

	return nil
}

func (s *SlotService) indexSlot(ctx context.Context, slot *models.EventSlot) {
	if s.esClient == nil {
		return
	}
	if err := s.esClient.IndexSlot(ctx, slot); err != nil {
		monitoring.SideEffectFailuresTotal.WithLabelValues("index").Inc()
		logger.WithContext(ctx).Error("Failed to index slot for discovery", "error", err, "slot_id", slot.ID)
	}
}
