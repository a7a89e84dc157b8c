package storefront

import (
	"context"
	"strconv"
)

// Address is a saved delivery address.
type Address struct {
	ID         int    `json:"id,omitempty"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"address_line1"`
	Line2      string `json:"address_line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
	IsDefault  bool   `json:"is_default,omitempty"`
}

// addressEnvelope tolerates {addresses:[...]} and {data:[...]}.
type addressEnvelope struct {
	Addresses []Address `json:"addresses"`
	Data      []Address `json:"data"`
}

func (e addressEnvelope) addresses() []Address {
	if e.Addresses != nil {
		return e.Addresses
	}
	return e.Data
}

// Addresses returns the user's saved addresses.
func (s *Service) Addresses(ctx context.Context) ([]Address, error) {
	var envelope addressEnvelope
	if err := s.api.GetJSON(ctx, "/user/get-user-addresess", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.addresses(), nil
}

// AddAddress saves a new delivery address.
func (s *Service) AddAddress(ctx context.Context, address Address) error {
	return s.api.PostJSON(ctx, "/user/add-address", address, nil)
}

// UpdateAddress updates an existing delivery address.
func (s *Service) UpdateAddress(ctx context.Context, address Address) error {
	path := "/user/update-address/" + strconv.Itoa(address.ID)
	return s.api.PatchJSON(ctx, path, address, nil)
}
