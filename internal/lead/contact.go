// Package lead validates contact details submitted after a quote and
// dispatches them, together with the quote, to the back office.
package lead

import (
	"fmt"
	"strings"

	"github.com/iwvelando/payout-quote/pkg/constants"
)

// Draft is a contact submission as entered. Age is nil when left blank.
type Draft struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Age     *int   `json:"age"`
	Comment string `json:"comment,omitempty"`
}

// Contact is a validated lead. It is only produced by Validate.
type Contact struct {
	name    string
	address string
	phone   string
	email   string
	age     int
	comment string
}

func (c Contact) Name() string    { return c.name }
func (c Contact) Address() string { return c.address }
func (c Contact) Phone() string   { return c.phone }
func (c Contact) Email() string   { return c.email }
func (c Contact) Age() int        { return c.age }
func (c Contact) Comment() string { return c.comment }

// Draft returns the contact as an editable draft.
func (c Contact) Draft() Draft {
	age := c.age
	return Draft{
		Name:    c.name,
		Address: c.address,
		Phone:   c.phone,
		Email:   c.email,
		Age:     &age,
		Comment: c.comment,
	}
}

// Required field names in declaration order.
const (
	FieldName    = "Name"
	FieldAddress = "Address"
	FieldPhone   = "Phone"
	FieldEmail   = "Email"
	FieldAge     = "Age"
)

// ValidationError lists the required fields left empty and the fields whose
// value is out of range, both in declaration order.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "Please complete: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, fmt.Sprintf("Please correct: %s (age must be %d-%d)",
			strings.Join(e.Invalid, ", "), constants.MinContactAge, constants.MaxContactAge))
	}
	return strings.Join(parts, "; ")
}

// Validate checks that every required field is present. The comment is
// always accepted.
func Validate(d Draft) (Contact, error) {
	fields := []struct {
		name  string
		value string
	}{
		{FieldName, d.Name},
		{FieldAddress, d.Address},
		{FieldPhone, d.Phone},
		{FieldEmail, d.Email},
	}

	verr := &ValidationError{}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			verr.Missing = append(verr.Missing, f.name)
		}
	}
	if d.Age == nil {
		verr.Missing = append(verr.Missing, FieldAge)
	} else if *d.Age < constants.MinContactAge || *d.Age > constants.MaxContactAge {
		verr.Invalid = append(verr.Invalid, FieldAge)
	}
	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return Contact{}, verr
	}

	return Contact{
		name:    strings.TrimSpace(d.Name),
		address: strings.TrimSpace(d.Address),
		phone:   strings.TrimSpace(d.Phone),
		email:   strings.TrimSpace(d.Email),
		age:     *d.Age,
		comment: strings.TrimSpace(d.Comment),
	}, nil
}
