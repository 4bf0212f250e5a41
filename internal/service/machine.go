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
	"rental-mngt-admin/internal/store"
	"rental-mngt-admin/internal/utils"
)

var machineComputedFields = []string{domain.FieldLastMaintenanceDate, domain.FieldNextMaintenance}

type machineService struct {
	api       gateway.API
	store     *store.Store
	notifier  NotificationService
	changeLog ChangeLogService
	sessions  *sessions[domain.Machine]
	now       func() time.Time
}

func NewMachineService(api gateway.API, st *store.Store, notifier NotificationService, changeLog ChangeLogService) MachineService {
	return &machineService{
		api:       api,
		store:     st,
		notifier:  notifier,
		changeLog: changeLog,
		sessions:  newSessions[domain.Machine](),
		now:       time.Now,
	}
}

func (s *machineService) Get(ctx context.Context, token, id string) (*EditView[domain.Machine], error) {
	machine, err := s.api.GetMachine(ctx, token, id)
	if err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "Failed to load machine: "+err.Error())
		return nil, err
	}

	identity := security.IdentityFromContext(ctx)
	session, ok := s.sessions.get(identity, id)
	if ok {
		if err := session.Reload(*machine); err != nil {
			return nil, err
		}
	} else {
		session, err = NewEditSession(*machine, machineComputedFields...)
		if err != nil {
			return nil, err
		}
		s.sessions.put(identity, id, session)
	}
	return viewOf(session)
}

func (s *machineService) session(ctx context.Context, token, id string) (*EditSession[domain.Machine], error) {
	if session, ok := s.sessions.get(security.IdentityFromContext(ctx), id); ok {
		return session, nil
	}
	if _, err := s.Get(ctx, token, id); err != nil {
		return nil, err
	}
	session, _ := s.sessions.get(security.IdentityFromContext(ctx), id)
	return session, nil
}

func (s *machineService) Enter(ctx context.Context, token, id string) (*EditView[domain.Machine], error) {
	session, err := s.session(ctx, token, id)
	if err != nil {
		return nil, err
	}
	if err := session.Enter(); err != nil {
		return nil, err
	}
	return viewOf(session)
}

// Set applies field edits to the displayed machine. Switching the
// maintenance policy clears the threshold of the other policy.
func (s *machineService) Set(ctx context.Context, token, id string, fields map[string]any) (*EditView[domain.Machine], error) {
	session, err := s.session(ctx, token, id)
	if err != nil {
		return nil, err
	}
	err = session.Update(func(current domain.Machine) (domain.Machine, error) {
		next, err := utils.Apply(current, fields)
		if err != nil {
			return current, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if _, ok := fields["maintenance_type"]; ok {
			if !next.MaintenanceType.Valid() {
				return current, fmt.Errorf("%w: unknown maintenance type %q", domain.ErrValidation, next.MaintenanceType)
			}
			next.SetMaintenanceType(next.MaintenanceType)
		}
		if next.PricePerDay.IsNegative() {
			return current, fmt.Errorf("%w: price_per_day must not be negative", domain.ErrValidation)
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(session)
}

// Exit leaves edit mode and sends the fields that changed since the last save.
func (s *machineService) Exit(ctx context.Context, token, id string) (*MachineExitResult, error) {
	logger.EnterMethod("machineService.Exit", "machineID", id)
	session, err := s.session(ctx, token, id)
	if err != nil {
		return nil, err
	}

	eventType := domain.EventUpdateNone
	changes, err := session.Exit(ctx, func(ctx context.Context, current domain.Machine, changes utils.ChangeSet) (domain.Machine, error) {
		result, err := s.api.UpdateMachine(ctx, token, id, changes)
		if err != nil {
			return current, err
		}
		eventType = result.EventUpdateType
		return current.MergeUpdate(result.Machine), nil
	})
	if errors.Is(err, domain.ErrNotEditing) || errors.Is(err, domain.ErrSubmitting) {
		return nil, err
	}
	s.changeLog.Record(ctx, domain.EntityMachine, id, changes, err)
	if err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "An error occurred while updating the machine: "+err.Error())
		logger.ExitMethodWithError("machineService.Exit", err, "machineID", id)
		return nil, err
	}

	result := &MachineExitResult{Changes: changes, Submitted: !changes.Empty(), EventUpdateType: eventType}
	if result.Submitted {
		s.notifier.Notify(ctx, domain.NotificationSuccess, "Machine updated")
		s.notifyEventUpdate(ctx, eventType)
		s.refreshMachines(ctx, token)
	}
	view, err := session.View()
	if err != nil {
		return nil, err
	}
	result.View = view
	logger.ExitMethod("machineService.Exit", "machineID", id, "fields", changes.Fields())
	return result, nil
}

func (s *machineService) notifyEventUpdate(ctx context.Context, eventType domain.EventUpdateType) {
	switch eventType {
	case domain.EventUpdateCreate:
		s.notifier.Notify(ctx, domain.NotificationSuccess, "Maintenance event created in the calendar")
	case domain.EventUpdateUpdate:
		s.notifier.Notify(ctx, domain.NotificationSuccess, "Maintenance event updated in the calendar")
	case domain.EventUpdateDelete:
		s.notifier.Notify(ctx, domain.NotificationSuccess, "Maintenance event deleted from the calendar")
	}
}

func (s *machineService) Create(ctx context.Context, token string, machine domain.NewMachine, image *gateway.File) (*domain.Machine, error) {
	if err := validateNewMachine(machine); err != nil {
		return nil, err
	}
	machine.Guests = compactStrings(machine.Guests)

	created, err := s.api.CreateMachine(ctx, token, machine, image)
	if err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "An error occurred while adding the machine")
		return nil, err
	}
	s.notifier.Notify(ctx, domain.NotificationSuccess, "Machine added")
	s.refreshMachines(ctx, token)
	return created, nil
}

func validateNewMachine(machine domain.NewMachine) error {
	switch {
	case strings.TrimSpace(machine.Name) == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case !machine.MaintenanceType.Valid():
		return fmt.Errorf("%w: unknown maintenance type %q", domain.ErrValidation, machine.MaintenanceType)
	case machine.MaintenanceType == domain.MaintenanceByDay && machine.NbDayBeforeMaintenance == nil:
		return fmt.Errorf("%w: nb_day_before_maintenance is required", domain.ErrValidation)
	case machine.MaintenanceType == domain.MaintenanceByNbRental && machine.NbRentalBeforeMaintenance == nil:
		return fmt.Errorf("%w: nb_rental_before_maintenance is required", domain.ErrValidation)
	case !machine.PricePerDay.IsPositive():
		return fmt.Errorf("%w: price_per_day must be positive", domain.ErrValidation)
	}
	return nil
}

// UpdateImage uploads a new picture. Pending edits of the open session are kept.
func (s *machineService) UpdateImage(ctx context.Context, token, id string, image gateway.File) (string, error) {
	imageURL, err := s.api.UpdateMachineImage(ctx, token, id, image)
	if err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "An error occurred while updating the image")
		return "", err
	}

	if session, ok := s.sessions.get(security.IdentityFromContext(ctx), id); ok {
		err := session.Patch(ctx, utils.ChangeSet{"imageUrl": imageURL},
			func(ctx context.Context, current domain.Machine, _ utils.ChangeSet) (domain.Machine, error) {
				current.ImageURL = imageURL
				return current, nil
			})
		if err != nil {
			logger.WarnContext(ctx, "Failed to update image in edit session", "machineID", id, "error", err)
		}
	}
	s.notifier.Notify(ctx, domain.NotificationSuccess, "Image updated")
	s.refreshMachines(ctx, token)
	return imageURL, nil
}

func (s *machineService) Delete(ctx context.Context, token, id string) error {
	if err := s.api.DeleteMachine(ctx, token, id); err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "Failed to delete machine: "+err.Error())
		return err
	}
	s.sessions.drop(id)
	s.notifier.Notify(ctx, domain.NotificationSuccess, "Machine deleted")
	s.refreshMachines(ctx, token)
	if err := s.store.Rentals.Refresh(ctx, token); err != nil {
		logger.WarnContext(ctx, "Rentals refresh after machine deletion failed", "machineID", id, "error", err)
	}
	return nil
}

// RecordMaintenance appends an entry to the maintenance history and sends
// the whole history. performedAt defaults to now.
func (s *machineService) RecordMaintenance(ctx context.Context, token, id string, performedAt *time.Time, notes string) (*EditView[domain.Machine], error) {
	session, err := s.session(ctx, token, id)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	if performedAt != nil {
		at = *performedAt
	}
	current := session.Current()
	histories := make([]domain.MaintenanceHistory, 0, len(current.MaintenanceHistories)+1)
	histories = append(histories, current.MaintenanceHistories...)
	histories = append(histories, domain.MaintenanceHistory{PerformedAt: at, Notes: notes})

	eventType := domain.EventUpdateNone
	err = session.Patch(ctx, utils.ChangeSet{"maintenanceHistories": histories},
		func(ctx context.Context, current domain.Machine, changes utils.ChangeSet) (domain.Machine, error) {
			result, err := s.api.UpdateMachine(ctx, token, id, changes)
			if err != nil {
				return current, err
			}
			eventType = result.EventUpdateType
			return current.MergeUpdate(result.Machine), nil
		})
	if err != nil {
		s.notifier.Notify(ctx, domain.NotificationError, "An error occurred while adding the maintenance")
		return nil, err
	}
	s.notifyEventUpdate(ctx, eventType)
	s.refreshMachines(ctx, token)
	return viewOf(session)
}

func (s *machineService) AvailableParts(ctx context.Context, token string) ([]string, error) {
	return s.api.AvailableParts(ctx, token)
}

// refreshMachines reloads the machine list. A failure is already notified by the collection.
func (s *machineService) refreshMachines(ctx context.Context, token string) {
	if err := s.store.Machines.Refresh(ctx, token); err != nil {
		logger.WarnContext(ctx, "Machines refresh failed", "error", err)
	}
}

func viewOf[T any](session *EditSession[T]) (*EditView[T], error) {
	view, err := session.View()
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// compactStrings trims entries and drops the empty ones.
func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
