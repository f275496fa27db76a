package service

import (
	"context"
	"fmt"

	"github.com/pitstop/garage-bookings/internal/domain"
	"github.com/pitstop/garage-bookings/internal/repository"
	"github.com/pitstop/garage-bookings/pkg/events"
	"github.com/pitstop/garage-bookings/pkg/logger"
)

type BookingService interface {
	Book(ctx context.Context, req *domain.BookingRequest) (*domain.Booking, error)
	Track(ctx context.Context, key string) (*domain.BookingView, error)
	ListBookings(ctx context.Context) ([]domain.BookingView, error)
	UpdateStatus(ctx context.Context, id int64, label string) (*domain.BookingView, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	bus         events.Publisher
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	bus events.Publisher,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		bus:         bus,
	}
}

func (s *bookingService) Book(ctx context.Context, req *domain.BookingRequest) (*domain.Booking, error) {
	req.Normalize()
	date, clock, err := req.Validate()
	if err != nil {
		return nil, err
	}

	booking, user, userCreated, err := s.bookingRepo.Create(ctx, req, date, clock)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Booking created",
		"booking_id", booking.ID,
		"user_id", user.ID,
		"user_created", userCreated,
		"slot", date+" "+clock,
	)

	event := events.BookingCreatedEvent{
		BookingID:     booking.ID,
		CustomerEmail: user.Email,
		CustomerName:  user.FullName,
		ServiceType:   booking.ServiceType,
		BookingDate:   booking.BookingDate,
		BookingTime:   booking.BookingTime,
		LicensePlate:  booking.LicensePlate,
	}
	if err := s.bus.Publish(ctx, events.BookingCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	return booking, nil
}

func (s *bookingService) Track(ctx context.Context, key string) (*domain.BookingView, error) {
	user, err := s.userRepo.FindByTrackingKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tracking key: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	view, err := s.bookingRepo.LatestViewByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest booking: %w", err)
	}
	if view == nil {
		return nil, domain.ErrNotFound
	}
	return view, nil
}

func (s *bookingService) ListBookings(ctx context.Context) ([]domain.BookingView, error) {
	return s.bookingRepo.ListViews(ctx)
}

func (s *bookingService) UpdateStatus(ctx context.Context, id int64, label string) (*domain.BookingView, error) {
	status, ok := domain.ParseBookingStatus(label)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, label)
	}

	view, err := s.bookingRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Booking status updated", "booking_id", id, "status", status)

	event := events.BookingStatusUpdatedEvent{
		BookingID:     view.ID,
		CustomerEmail: view.Email,
		NewStatus:     string(status),
	}
	if err := s.bus.Publish(ctx, events.BookingStatusUpdated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish status updated event", "error", err, "booking_id", id)
	}

	return view, nil
}
