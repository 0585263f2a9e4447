package lead

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

func completeDraft() Draft {
	return Draft{
		Name:    "Karen Jensen",
		Address: "Strandvejen 1, 2100 København Ø",
		Phone:   "+45 12 34 56 78",
		Email:   "karen@example.dk",
		Age:     intPtr(67),
	}
}

func TestValidateComplete(t *testing.T) {
	for _, comment := range []string{"", "Call after 16"} {
		d := completeDraft()
		d.Comment = comment
		contact, err := Validate(d)
		if err != nil {
			t.Fatalf("Validate() unexpected error = %v", err)
		}
		if contact.Name() != "Karen Jensen" || contact.Age() != 67 || contact.Comment() != comment {
			t.Errorf("Validate() = %+v", contact)
		}
	}
}

func TestValidateMissingFields(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Draft)
		expected []string
	}{
		{
			name:     "Name only",
			mutate:   func(d *Draft) { d.Name = "" },
			expected: []string{"Name"},
		},
		{
			name:     "Whitespace counts as empty",
			mutate:   func(d *Draft) { d.Phone = "   " },
			expected: []string{"Phone"},
		},
		{
			name: "Several fields keep declaration order",
			mutate: func(d *Draft) {
				d.Phone = ""
				d.Name = ""
				d.Address = ""
			},
			expected: []string{"Name", "Address", "Phone"},
		},
		{
			name:     "Age left blank",
			mutate:   func(d *Draft) { d.Age = nil; d.Email = "" },
			expected: []string{"Email", "Age"},
		},
		{
			name:     "Everything empty",
			mutate:   func(d *Draft) { *d = Draft{Comment: "only a comment"} },
			expected: []string{"Name", "Address", "Phone", "Email", "Age"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := completeDraft()
			tt.mutate(&d)
			_, err := Validate(d)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, expected *ValidationError", err)
			}
			if !reflect.DeepEqual(verr.Missing, tt.expected) {
				t.Errorf("Missing = %v, expected %v", verr.Missing, tt.expected)
			}
			if len(verr.Invalid) != 0 {
				t.Errorf("Invalid = %v, expected none", verr.Invalid)
			}
		})
	}
}

func TestValidateAgeBounds(t *testing.T) {
	tests := []struct {
		age       int
		wantError bool
	}{
		{age: 17, wantError: true},
		{age: 18},
		{age: 120},
		{age: 121, wantError: true},
		{age: 0, wantError: true},
	}

	for _, tt := range tests {
		d := completeDraft()
		d.Age = intPtr(tt.age)
		_, err := Validate(d)
		if !tt.wantError {
			if err != nil {
				t.Errorf("Validate(age=%d) unexpected error = %v", tt.age, err)
			}
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Validate(age=%d) error = %v, expected *ValidationError", tt.age, err)
		}
		if !reflect.DeepEqual(verr.Invalid, []string{"Age"}) || len(verr.Missing) != 0 {
			t.Errorf("Validate(age=%d) = %+v", tt.age, verr)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Missing: []string{"Name", "Address", "Phone"}}
	if got := err.Error(); got != "Please complete: Name, Address, Phone" {
		t.Errorf("Error() = %q", got)
	}

	err = &ValidationError{Missing: []string{"Email"}, Invalid: []string{"Age"}}
	got := err.Error()
	if !strings.HasPrefix(got, "Please complete: Email; ") || !strings.Contains(got, "Age") {
		t.Errorf("Error() = %q", got)
	}
}

func TestContactDraftRoundTrip(t *testing.T) {
	d := completeDraft()
	d.Comment = "note"
	contact, err := Validate(d)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	again, err := Validate(contact.Draft())
	if err != nil {
		t.Fatalf("Validate(contact.Draft()) error = %v", err)
	}
	if again != contact {
		t.Errorf("round trip changed contact: %+v vs %+v", again, contact)
	}
}
