package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		label     string
		inputType string
		want      string
	}{
		{"Email Address", "text", "test@example.com"},
		{"Contact", "email", "test@example.com"},
		{"Mobile Number", "", "+1-555-123-4567"},
		{"First Name", "", "John"},
		{"Given Name", "", "John"},
		{"Last Name", "", "Doe"},
		{"Surname", "", "Doe"},
		{"Legal Name", "", "John Doe"},
		{"Address Line 1", "", "123 Main Street"},
		{"Address Line 2", "", "Apt 123"},
		{"City", "", "New York"},
		{"State", "", "NY"},
		{"Province", "", "NY"},
		{"Postal Code", "", "10001"},
		{"Years of Experience", "", "5"},
		{"Amount", "number", "5"},
		{"Personal Website", "", "https://example.com"},
		{"Portfolio", "url", "https://example.com"},
		{"Favourite colour", "", DefaultText},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.label, tt.inputType))
		})
	}
}

func TestTextRuleOrder(t *testing.T) {
	// email outranks name, which outranks address
	assert.Equal(t, "test@example.com", Text("Name on email account", ""))
	assert.Equal(t, "John Doe", Text("Name of street address", ""))
}

func TestDate(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Date of Birth", "1990-01-15"},
		{"DOB", "1990-01-15"},
		{"Start Date", "2020-01-01"},
		{"Employed From", "2020-01-01"},
		{"End Date", "2023-12-31"},
		{"Employed Until", "2023-12-31"},
		{"Graduation", "2022-05-15"},
		{"Earliest availability", "2024-02-01"},
		{"Date", DefaultDate},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := Date(tt.label)
			assert.Equal(t, tt.want, got)
			_, err := time.Parse("2006-01-02", got)
			assert.NoError(t, err, "dates are ISO calendar dates")
		})
	}
}
