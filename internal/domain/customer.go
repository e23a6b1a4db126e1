package domain

import "time"

// DoNotDisturbYes is the stored value of a set do-not-disturb flag.
const DoNotDisturbYes = "Yes"

// Customer is the subset of the customer document this service reads and writes.
type Customer struct {
	CustomerID            string           `json:"id" dynamodbav:"customer_id"`
	PrimaryEmail          *string          `json:"primary_email" dynamodbav:"primary_email,omitempty"`
	PrimaryPhone          *string          `json:"primary_phone" dynamodbav:"primary_phone,omitempty"`
	EmailValidationStatus ValidationStatus `json:"email_validation_status" dynamodbav:"email_validation_status"`
	PhoneValidationStatus ValidationStatus `json:"phone_validation_status" dynamodbav:"phone_validation_status"`
	DoNotDisturb          string           `json:"do_not_disturb,omitempty" dynamodbav:"do_not_disturb,omitempty"`
	CreatedAt             time.Time        `json:"created" dynamodbav:"created_at"`
	UpdatedAt             time.Time        `json:"updated" dynamodbav:"updated_at"`
}

// Identifier returns the customer's identifier on ch and whether it is set.
func (c *Customer) Identifier(ch Channel) (string, bool) {
	var v *string
	switch ch {
	case ChannelEmail:
		v = c.PrimaryEmail
	case ChannelPhone:
		v = c.PrimaryPhone
	}
	if v == nil {
		return "", false
	}
	return *v, true
}

// Normalize stores empty identifiers as absent and defaults unset statuses to unknown.
// A customer without an identifier on a channel is never eligible for validation there.
func (c *Customer) Normalize() {
	if c.PrimaryEmail != nil && *c.PrimaryEmail == "" {
		c.PrimaryEmail = nil
	}
	if c.PrimaryPhone != nil && *c.PrimaryPhone == "" {
		c.PrimaryPhone = nil
	}
	for _, ch := range Channels {
		if c.Status(ch) == "" {
			c.SetStatus(ch, StatusUnknown)
		}
	}
}

// Status returns the customer's validation status on ch.
func (c *Customer) Status(ch Channel) ValidationStatus {
	if ch == ChannelPhone {
		return c.PhoneValidationStatus
	}
	return c.EmailValidationStatus
}

// SetStatus sets the customer's validation status on ch.
func (c *Customer) SetStatus(ch Channel, s ValidationStatus) {
	if ch == ChannelPhone {
		c.PhoneValidationStatus = s
		return
	}
	c.EmailValidationStatus = s
}
