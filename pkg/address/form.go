package address

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/rs/zerolog"

	"github.com/faizansiddqui/storefront-client/pkg/logging"
	"github.com/faizansiddqui/storefront-client/pkg/storefront"
)

// PostalInfo is what a postal-code lookup yields.
type PostalInfo struct {
	Country string
	State   string
	City    string
}

// Geocoder resolves a postal code to its region.
type Geocoder interface {
	Lookup(ctx context.Context, postalCode string) (PostalInfo, error)
}

// Form is the delivery address form. Postal-code input is debounced into a
// geocoder lookup whose result fills country, state and city, but never a
// field the user has already diverged from. Safe for concurrent use.
type Form struct {
	geocoder  Geocoder
	debouncer *Debouncer
	logger    zerolog.Logger

	// lookupTimeout bounds a single geocoder call.
	lookupTimeout time.Duration

	mu         sync.Mutex
	address    storefront.Address
	autofilled PostalInfo
	fieldErrs  map[string]string
}

// NewForm creates an address form. geocoder may be nil, which disables
// autofill; clk may be nil for the wall clock.
func NewForm(geocoder Geocoder, clk clock.Clock) *Form {
	return &Form{
		geocoder:      geocoder,
		debouncer:     NewDebouncer(clk, DefaultDebounceDelay),
		logger:        logging.NewLogger("address"),
		lookupTimeout: 10 * time.Second,
		fieldErrs:     make(map[string]string),
	}
}

// Address returns the current form values.
func (f *Form) Address() storefront.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.address
}

// FieldError returns the recoverable error for field, if any.
func (f *Form) FieldError(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrs[field]
}

// SetFullName records the full name as typed.
func (f *Form) SetFullName(v string) {
	f.mu.Lock()
	f.address.FullName = v
	f.mu.Unlock()
}

// SetPhone records phone input, normalizing complete numbers to E.164.
func (f *Form) SetPhone(v string) {
	f.mu.Lock()
	f.address.Phone = NormalizePhone(v)
	f.mu.Unlock()
}

// SetLine1 records the street address as typed.
func (f *Form) SetLine1(v string) {
	f.mu.Lock()
	f.address.Line1 = v
	f.mu.Unlock()
}

// SetLine2 records the optional second address line.
func (f *Form) SetLine2(v string) {
	f.mu.Lock()
	f.address.Line2 = v
	f.mu.Unlock()
}

// SetCity records a manual city edit, which autofill will not overwrite.
func (f *Form) SetCity(v string) {
	f.mu.Lock()
	f.address.City = v
	f.mu.Unlock()
}

// SetState records a manual state edit, which autofill will not overwrite.
func (f *Form) SetState(v string) {
	f.mu.Lock()
	f.address.State = v
	f.mu.Unlock()
}

// SetCountry records a manual country edit, which autofill will not
// overwrite.
func (f *Form) SetCountry(v string) {
	f.mu.Lock()
	f.address.Country = v
	f.mu.Unlock()
}

// SetPostalCode records postal-code input and schedules a debounced
// lookup. A burst of keystrokes within the debounce window results in one
// lookup for the final value.
func (f *Form) SetPostalCode(v string) {
	f.mu.Lock()
	f.address.PostalCode = v
	delete(f.fieldErrs, "postal_code")
	f.mu.Unlock()

	if f.geocoder == nil {
		return
	}
	f.debouncer.Trigger(func() { f.lookup(v) })
}

// Close cancels any pending lookup. Used when the form goes away.
func (f *Form) Close() {
	f.debouncer.Stop()
}

func (f *Form) lookup(postalCode string) {
	ctx, cancelCtx := context.WithTimeout(context.Background(), f.lookupTimeout)
	defer cancelCtx()

	info, err := f.geocoder.Lookup(ctx, postalCode)
	if err != nil {
		// Autofill is best effort, a failed lookup never blocks the
		// form.
		f.logger.Debug().Err(err).Str("postal_code", postalCode).Msg("Postal lookup failed")
		f.mu.Lock()
		f.fieldErrs["postal_code"] = "Could not look up this postal code"
		f.mu.Unlock()
		return
	}

	f.mu.Lock()
	if f.address.PostalCode == postalCode {
		f.applyLocked(info)
	}
	f.mu.Unlock()
}

// applyLocked merges the lookup result, filling only fields that are
// empty or still hold the previous autofill value.
func (f *Form) applyLocked(info PostalInfo) {
	if f.address.Country == "" || f.address.Country == f.autofilled.Country {
		f.address.Country = info.Country
	}
	if f.address.State == "" || f.address.State == f.autofilled.State {
		f.address.State = info.State
	}
	if f.address.City == "" || f.address.City == f.autofilled.City {
		f.address.City = info.City
	}
	f.autofilled = info
}

var postalPattern = regexp.MustCompile(`^[0-9]{6}$`)

// Validate checks the form and returns per-field messages for a blocked
// submit. An empty map means the address is ready to save.
func (f *Form) Validate() map[string]string {
	f.mu.Lock()
	addr := f.address
	f.mu.Unlock()

	errs := make(map[string]string)
	required := []struct {
		field, value, label string
	}{
		{"full_name", addr.FullName, "Full name"},
		{"phone", addr.Phone, "Phone number"},
		{"address_line1", addr.Line1, "Street address"},
		{"city", addr.City, "City"},
		{"state", addr.State, "State"},
		{"country", addr.Country, "Country"},
		{"postal_code", addr.PostalCode, "Postal code"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = r.label + " is required"
		}
	}

	if _, ok := errs["postal_code"]; !ok && !postalPattern.MatchString(strings.TrimSpace(addr.PostalCode)) {
		errs["postal_code"] = "Postal code must be 6 digits"
	}
	return errs
}
