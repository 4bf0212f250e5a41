package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/utils"
)

// API is the typed surface of the rental-mngt backend.
type API interface {
	ListMachines(ctx context.Context, token string, withImages bool) ([]domain.Machine, error)
	GetMachine(ctx context.Context, token, id string) (*domain.Machine, error)
	UpdateMachine(ctx context.Context, token, id string, changes utils.ChangeSet) (*domain.MachineUpdateResult, error)
	DeleteMachine(ctx context.Context, token, id string) error
	CreateMachine(ctx context.Context, token string, machine domain.NewMachine, image *File) (*domain.Machine, error)
	UpdateMachineImage(ctx context.Context, token, id string, image File) (string, error)
	AvailableParts(ctx context.Context, token string) ([]string, error)

	CreateRental(ctx context.Context, token, machineID string, rental domain.NewRental) (*domain.Rental, error)
	ListRentals(ctx context.Context, token string) ([]domain.RentalWithMachine, error)
	GetRental(ctx context.Context, token, id string) (*domain.RentalWithMachine, error)
	UpdateRental(ctx context.Context, token, id string, changes utils.ChangeSet) (*domain.Rental, error)
	DeleteRental(ctx context.Context, token, id string) error
	RentalAgreement(ctx context.Context, token, id string) (*Blob, error)

	KnownEmails(ctx context.Context, token string) ([]string, error)

	Config(ctx context.Context, token string) ([]domain.ConfigElement, error)
	AddConfig(ctx context.Context, token string, element domain.ConfigElement) error
	UpdateConfig(ctx context.Context, token string, element domain.ConfigElement) error
	DeleteConfig(ctx context.Context, token, key string) error

	GoogleAuthStatus(ctx context.Context, token string) (bool, error)
	GoogleAuthURL(ctx context.Context, token, redirect string) (*GoogleAuthURL, error)
}

// Blob is a binary document returned by the API.
type Blob struct {
	ContentType string
	Filename    string
	Data        []byte
}

type GoogleAuthURL struct {
	URL   string `json:"url"`
	Email string `json:"email"`
}

const (
	machinesPath = "/rental-mngt/machine-rented"
	rentalsPath  = "/rental-mngt/machine-rental"
	configPath   = "/rental-mngt/config"
	emailsPath   = "/rental-mngt/known-emails"
	authPath     = "/auth-google"
)

var _ API = (*Client)(nil)

func (c *Client) do(ctx context.Context, endpoint, method, token string, body, out any) error {
	resp, err := c.Request(ctx, endpoint, method, token, body)
	if err != nil {
		return err
	}
	if out == nil || resp.Kind == BodyNone {
		return nil
	}
	return resp.Decode(out)
}

func (c *Client) ListMachines(ctx context.Context, token string, withImages bool) ([]domain.Machine, error) {
	body := map[string]any{
		"filter":     map[string]any{},
		"withImages": withImages,
	}
	var out struct {
		Data []domain.Machine `json:"data"`
	}
	if err := c.do(ctx, machinesPath, http.MethodPost, token, body, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetMachine(ctx context.Context, token, id string) (*domain.Machine, error) {
	var machine domain.Machine
	if err := c.do(ctx, machinesPath+"/"+url.PathEscape(id), http.MethodGet, token, nil, &machine); err != nil {
		return nil, err
	}
	return &machine, nil
}

func (c *Client) UpdateMachine(ctx context.Context, token, id string, changes utils.ChangeSet) (*domain.MachineUpdateResult, error) {
	var result domain.MachineUpdateResult
	if err := c.do(ctx, machinesPath+"/"+url.PathEscape(id), http.MethodPatch, token, changes, &result); err != nil {
		return nil, err
	}
	if result.EventUpdateType == "" {
		result.EventUpdateType = domain.EventUpdateNone
	}
	return &result, nil
}

func (c *Client) DeleteMachine(ctx context.Context, token, id string) error {
	return c.do(ctx, machinesPath+"/"+url.PathEscape(id), http.MethodDelete, token, nil, nil)
}

// CreateMachine sends the machine as a multipart form, the way the backend expects
// when an image may be attached.
func (c *Client) CreateMachine(ctx context.Context, token string, machine domain.NewMachine, image *File) (*domain.Machine, error) {
	form := &Multipart{}
	form.Add("name", machine.Name)
	form.Add("maintenance_type", string(machine.MaintenanceType))
	if machine.NbDayBeforeMaintenance != nil {
		form.Add("nb_day_before_maintenance", strconv.Itoa(*machine.NbDayBeforeMaintenance))
	}
	if machine.NbRentalBeforeMaintenance != nil {
		form.Add("nb_rental_before_maintenance", strconv.Itoa(*machine.NbRentalBeforeMaintenance))
	}
	if machine.LastMaintenanceDate != nil {
		form.Add("last_maintenance_date", machine.LastMaintenanceDate.UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	form.Add("price_per_day", machine.PricePerDay.String())
	form.Add("guests", strings.Join(machine.Guests, ","))
	if image != nil {
		form.Files = map[string]File{"image": *image}
	}

	var created domain.Machine
	if err := c.do(ctx, machinesPath, http.MethodPut, token, form, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateMachineImage(ctx context.Context, token, id string, image File) (string, error) {
	form := &Multipart{Files: map[string]File{"image": image}}
	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.do(ctx, machinesPath+"/"+url.PathEscape(id)+"/image", http.MethodPatch, token, form, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

func (c *Client) AvailableParts(ctx context.Context, token string) ([]string, error) {
	var out struct {
		Parts []string `json:"parts"`
	}
	if err := c.do(ctx, machinesPath+"/parts", http.MethodGet, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Parts, nil
}

// CreateRental books a machine. The backend may answer 2xx with an
// {errorKey, message} payload, which is turned into an *APIError.
func (c *Client) CreateRental(ctx context.Context, token, machineID string, rental domain.NewRental) (*domain.Rental, error) {
	resp, err := c.Request(ctx, machinesPath+"/"+url.PathEscape(machineID)+"/rental", http.MethodPut, token, rental)
	if err != nil {
		return nil, err
	}

	var conflict struct {
		ErrorKey string `json:"errorKey"`
		Message  string `json:"message"`
	}
	if err := resp.Decode(&conflict); err != nil {
		return nil, err
	}
	if conflict.ErrorKey != "" {
		return nil, &APIError{
			Status:     resp.Status,
			StatusText: http.StatusText(resp.Status),
			Message:    conflict.Message,
			ErrorKey:   conflict.ErrorKey,
		}
	}

	var created domain.Rental
	if err := resp.Decode(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListRentals(ctx context.Context, token string) ([]domain.RentalWithMachine, error) {
	var rentals []domain.RentalWithMachine
	if err := c.do(ctx, rentalsPath, http.MethodGet, token, nil, &rentals); err != nil {
		return nil, err
	}
	return rentals, nil
}

func (c *Client) GetRental(ctx context.Context, token, id string) (*domain.RentalWithMachine, error) {
	var rental domain.RentalWithMachine
	if err := c.do(ctx, rentalsPath+"/"+url.PathEscape(id), http.MethodGet, token, nil, &rental); err != nil {
		return nil, err
	}
	return &rental, nil
}

func (c *Client) UpdateRental(ctx context.Context, token, id string, changes utils.ChangeSet) (*domain.Rental, error) {
	var rental domain.Rental
	if err := c.do(ctx, rentalsPath+"/"+url.PathEscape(id), http.MethodPatch, token, changes, &rental); err != nil {
		return nil, err
	}
	return &rental, nil
}

func (c *Client) DeleteRental(ctx context.Context, token, id string) error {
	return c.do(ctx, rentalsPath+"/"+url.PathEscape(id), http.MethodDelete, token, nil, nil)
}

func (c *Client) RentalAgreement(ctx context.Context, token, id string) (*Blob, error) {
	resp, err := c.Request(ctx, rentalsPath+"/"+url.PathEscape(id)+"/rental-agreement", http.MethodGet, token, nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, fmt.Errorf("empty rental agreement for rental %s", id)
	}
	return &Blob{
		ContentType: resp.ContentType,
		Filename:    resp.Filename,
		Data:        resp.Body,
	}, nil
}

func (c *Client) KnownEmails(ctx context.Context, token string) ([]string, error) {
	var emails []string
	if err := c.do(ctx, emailsPath, http.MethodGet, token, nil, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

func (c *Client) Config(ctx context.Context, token string) ([]domain.ConfigElement, error) {
	var elements []domain.ConfigElement
	if err := c.do(ctx, configPath, http.MethodGet, token, nil, &elements); err != nil {
		return nil, err
	}
	return elements, nil
}

func (c *Client) AddConfig(ctx context.Context, token string, element domain.ConfigElement) error {
	return c.do(ctx, configPath, http.MethodPut, token, element, nil)
}

func (c *Client) UpdateConfig(ctx context.Context, token string, element domain.ConfigElement) error {
	return c.do(ctx, configPath+"/"+url.PathEscape(element.Key), http.MethodPatch, token, element, nil)
}

func (c *Client) DeleteConfig(ctx context.Context, token, key string) error {
	return c.do(ctx, configPath+"/"+url.PathEscape(key), http.MethodDelete, token, nil, nil)
}

func (c *Client) GoogleAuthStatus(ctx context.Context, token string) (bool, error) {
	var out struct {
		IsAuthenticated bool `json:"isAuthenticated"`
	}
	if err := c.do(ctx, authPath+"/is-authenticated", http.MethodGet, token, nil, &out); err != nil {
		return false, err
	}
	return out.IsAuthenticated, nil
}

func (c *Client) GoogleAuthURL(ctx context.Context, token, redirect string) (*GoogleAuthURL, error) {
	var out GoogleAuthURL
	endpoint := authPath + "/url?redirect=" + url.QueryEscape(redirect)
	if err := c.do(ctx, endpoint, http.MethodGet, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
