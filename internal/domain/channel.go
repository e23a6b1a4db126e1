package domain

import "fmt"

// Channel is one of the contact-verification dimensions.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// Channels lists every supported channel in a stable order.
var Channels = []Channel{ChannelEmail, ChannelPhone}

// ParseChannel converts s into a Channel.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelEmail, ChannelPhone:
		return Channel(s), nil
	}
	return "", fmt.Errorf("unknown channel %q: %w", s, ErrBadRequest)
}

func (c Channel) String() string { return string(c) }

// IdentifierAttr is the stored attribute holding the channel's primary identifier.
func (c Channel) IdentifierAttr() string {
	if c == ChannelPhone {
		return "primary_phone"
	}
	return "primary_email"
}

// StatusAttr is the stored attribute holding the channel's validation status.
func (c Channel) StatusAttr() string {
	if c == ChannelPhone {
		return "phone_validation_status"
	}
	return "email_validation_status"
}

// StatusIndex is the secondary index keyed by the channel's validation status.
func (c Channel) StatusIndex() string { return c.StatusAttr() + "-index" }

// IdentifierIndex is the secondary index keyed by the channel's identifier.
func (c Channel) IdentifierIndex() string { return c.IdentifierAttr() + "-index" }

// BulkField is the JSON field carrying a list of identifiers in verifier requests.
func (c Channel) BulkField() string {
	if c == ChannelPhone {
		return "phones"
	}
	return "emails"
}
