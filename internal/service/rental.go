package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/gateway"
	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/security"
	"rental-mngt-admin/internal/storage"
	"rental-mngt-admin/internal/store"
	"rental-mngt-admin/internal/utils"
)

// overlapMarker is the backend error key for a booking that collides with another one.
const overlapMarker = "overlapping_rental"

type rentalService struct {
	api           gateway.API
	store         *store.Store
	storage       storage.StorageInterface
	notifier      NotificationService
	changeLog     ChangeLogService
	sessions      *sessions[domain.RentalWithMachine]
	presignExpiry time.Duration
	now           func() time.Time
}

func NewRentalService(
	api gateway.API,
	st *store.Store,
	archive storage.StorageInterface,
	notifier NotificationService,
	changeLog ChangeLogService,
	presignExpiry time.Duration,
) RentalService {
	return &rentalService{
		api:           api,
		store:         st,
		storage:       archive,
		notifier:      notifier,
		changeLog:     changeLog,
		sessions:      newSessions[domain.RentalWithMachine](),
		presignExpiry: presignExpiry,
		now:           time.Now,
	}
}

// isOverlap reports whether the backend refused a booking because the dates are taken.
func isOverlap(err error) bool {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorKey == overlapMarker {
		return true
	}
	return strings.Contains(err.Error(), overlapMarker)
}

func validatePeriod(rentalDate, returnDate *time.Time) error {
	if rentalDate == nil || returnDate == nil {
		return fmt.Errorf("%w: rentalDate and returnDate are required", domain.ErrValidation)
	}
	if returnDate.Before(*rentalDate) {
		return fmt.Errorf("%w: returnDate is before rentalDate", domain.ErrValidation)
	}
	return nil
}

func (s *rentalService) Create(ctx context.Context, token, machineID string, rental domain.NewRental) (*domain.Rental, error) {
	if err := validatePeriod(rental.RentalDate, rental.ReturnDate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(rental.ClientEmail) == "" {
		return nil, fmt.Errorf("%w: clientEmail is required", domain.ErrValidation)
	}
	rental.Guests = compactStrings(rental.Guests)

	created, err := s.api.CreateRental(ctx, token, machineID, rental)
	if err != nil {
		if isOverlap(err) {
			s.notifier.Notify(ctx, domain.NotificationError, "The rental dates are already taken")
			return nil, fmt.Errorf("%w: %v", domain.ErrRentalOverlap, err)
		}
		s.notifier.Notify(ctx, domain.NotificationError, "An error occurred while adding the rental: "+err.Error())
		return nil, err
	}
	s.notifier.Notify(ctx, domain.NotificationSuccess, "Rental added")
	s.refresh(ctx, token)
	return created, nil
}

func (s *rentalService) Get(ctx context.Context, token, id string) (*EditView[domain.RentalWithMachine], error) {
	rental, err := s.api.GetRental(ctx, token, id)
	if err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "Failed to load rental: "+err.Error())
		return nil, err
	}

	identity := security.IdentityFromContext(ctx)
	session, ok := s.sessions.get(identity, id)
	if ok {
		if err := session.Reload(*rental); err != nil {
			return nil, err
		}
	} else {
		session, err = NewEditSession(*rental, domain.FieldMachineRented)
		if err != nil {
			return nil, err
		}
		s.sessions.put(identity, id, session)
	}
	return viewOf(session)
}

func (s *rentalService) session(ctx context.Context, token, id string) (*EditSession[domain.RentalWithMachine], error) {
	if session, ok := s.sessions.get(security.IdentityFromContext(ctx), id); ok {
		return session, nil
	}
	if _, err := s.Get(ctx, token, id); err != nil {
		return nil, err
	}
	session, _ := s.sessions.get(security.IdentityFromContext(ctx), id)
	return session, nil
}

func (s *rentalService) Enter(ctx context.Context, token, id string) (*EditView[domain.RentalWithMachine], error) {
	session, err := s.session(ctx, token, id)
	if err != nil {
		return nil, err
	}
	if err := session.Enter(); err != nil {
		return nil, err
	}
	return viewOf(session)
}

func (s *rentalService) Set(ctx context.Context, token, id string, fields map[string]any) (*EditView[domain.RentalWithMachine], error) {
	if _, ok := fields[domain.FieldMachineRented]; ok {
		return nil, fmt.Errorf("%w: %s is read-only", domain.ErrValidation, domain.FieldMachineRented)
	}
	session, err := s.session(ctx, token, id)
	if err != nil {
		return nil, err
	}
	err = session.Update(func(current domain.RentalWithMachine) (domain.RentalWithMachine, error) {
		next, err := utils.Apply(current, fields)
		if err != nil {
			return current, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if next.RentalDate != nil && next.ReturnDate != nil && next.ReturnDate.Before(*next.RentalDate) {
			return current, fmt.Errorf("%w: returnDate is before rentalDate", domain.ErrValidation)
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(session)
}

// submit sends a rental update and keeps the machine the page already shows.
func (s *rentalService) submit(token, id string) SubmitFunc[domain.RentalWithMachine] {
	return func(ctx context.Context, current domain.RentalWithMachine, changes utils.ChangeSet) (domain.RentalWithMachine, error) {
		updated, err := s.api.UpdateRental(ctx, token, id, changes)
		if err != nil {
			return current, err
		}
		return domain.RentalWithMachine{Rental: *updated, MachineRented: current.MachineRented}, nil
	}
}

func (s *rentalService) Exit(ctx context.Context, token, id string) (*RentalExitResult, error) {
	logger.EnterMethod("rentalService.Exit", "rentalID", id)
	session, err := s.session(ctx, token, id)
	if err != nil {
		return nil, err
	}

	changes, err := session.Exit(ctx, s.submit(token, id))
	if errors.Is(err, domain.ErrNotEditing) || errors.Is(err, domain.ErrSubmitting) {
		return nil, err
	}
	s.changeLog.Record(ctx, domain.EntityRental, id, changes, err)
	if err != nil {
		logger.ExitMethodWithError("rentalService.Exit", err, "rentalID", id)
		return nil, s.updateFailed(ctx, err)
	}

	result := &RentalExitResult{Changes: changes, Submitted: !changes.Empty()}
	if result.Submitted {
		s.notifier.Notify(ctx, domain.NotificationSuccess, "Rental updated")
		s.refresh(ctx, token)
	}
	view, err := session.View()
	if err != nil {
		return nil, err
	}
	result.View = view
	logger.ExitMethod("rentalService.Exit", "rentalID", id, "fields", changes.Fields())
	return result, nil
}

func (s *rentalService) updateFailed(ctx context.Context, err error) error {
	if isOverlap(err) {
		s.notifier.Notify(ctx, domain.NotificationError, "The rental dates are already taken")
		return fmt.Errorf("%w: %v", domain.ErrRentalOverlap, err)
	}
	s.notifier.Notify(ctx, domain.NotificationError, "An error occurred while updating the rental: "+err.Error())
	return err
}

// TogglePaid flips the paid flag right away, outside of edit mode.
func (s *rentalService) TogglePaid(ctx context.Context, token, id string) (*EditView[domain.RentalWithMachine], error) {
	session, err := s.session(ctx, token, id)
	if err != nil {
		return nil, err
	}
	changes := utils.ChangeSet{"paid": !session.Current().Paid}
	if err := session.Patch(ctx, changes, s.submit(token, id)); err != nil {
		if errors.Is(err, domain.ErrSubmitting) {
			return nil, err
		}
		return nil, s.updateFailed(ctx, err)
	}
	s.changeLog.Record(ctx, domain.EntityRental, id, changes, nil)
	s.notifier.Notify(ctx, domain.NotificationSuccess, "Rental updated")
	s.refresh(ctx, token)
	return viewOf(session)
}

func (s *rentalService) Delete(ctx context.Context, token, id string) error {
	if err := s.api.DeleteRental(ctx, token, id); err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "Failed to delete rental: "+err.Error())
		return err
	}
	s.sessions.drop(id)
	s.notifier.Notify(ctx, domain.NotificationSuccess, "Rental deleted")
	s.refresh(ctx, token)
	return nil
}

// Quote prices the rental as currently displayed, pending edits included.
func (s *rentalService) Quote(ctx context.Context, token, id string) (*utils.RentalCostBreakdown, error) {
	session, err := s.session(ctx, token, id)
	if err != nil {
		return nil, err
	}
	if s.store.Config.Len() == 0 {
		if err := s.store.Config.Refresh(ctx, token); err != nil {
			logger.WarnContext(ctx, "Quoting without shipping fee", "rentalID", id, "error", err)
		}
	}
	quote := utils.QuoteRental(session.Current(), s.store.PriceShipping())
	return &quote, nil
}

// Agreement downloads the generated contract, archives it and returns a
// time-limited link to the archived copy.
func (s *rentalService) Agreement(ctx context.Context, token, id string) (*AgreementLink, error) {
	if err := domain.CheckID(id); err != nil {
		return nil, err
	}
	blob, err := s.api.RentalAgreement(ctx, token, id)
	if err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "Failed to fetch the rental agreement")
		return nil, err
	}

	key, err := storage.AgreementKey(id, blob.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	if err := s.storage.PutFile(ctx, key, contentType, blob.Data); err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "Failed to archive the rental agreement")
		return nil, fmt.Errorf("failed to archive agreement: %w", err)
	}

	expiresAt := s.now().Add(s.presignExpiry)
	url, err := s.storage.GeneratePresignedDownloadURL(ctx, key, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign agreement: %w", err)
	}
	logger.InfoContext(ctx, "Rental agreement archived", "rentalID", id, "key", key, "size", len(blob.Data))
	return &AgreementLink{Key: key, URL: url, ExpiresAt: expiresAt.UTC()}, nil
}

// refresh reloads rentals and machines: a booking changes both lists.
func (s *rentalService) refresh(ctx context.Context, token string) {
	if err := s.store.Rentals.Refresh(ctx, token); err != nil {
		logger.WarnContext(ctx, "Rentals refresh failed", "error", err)
	}
	if err := s.store.Machines.Refresh(ctx, token); err != nil {
		logger.WarnContext(ctx, "Machines refresh failed", "error", err)
	}
}
