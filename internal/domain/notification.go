package domain

// Notification actions accepted on the engages notification channel.
const (
	ActionEmailVerify     = "emailVerify"
	ActionPhoneVerify     = "phoneVerify"
	ActionSetDoNotDisturb = "setDoNotDisturb"
)

// Notification is a decoded inbound notification. The concrete types are
// ContactVerifyNotification and SetDoNotDisturbNotification.
type Notification interface {
	Action() string
	notification()
}

// ContactVerifyNotification carries verifier results for one channel.
type ContactVerifyNotification struct {
	Channel Channel
	Results []VerificationResult
}

func (n ContactVerifyNotification) Action() string {
	if n.Channel == ChannelPhone {
		return ActionPhoneVerify
	}
	return ActionEmailVerify
}

func (ContactVerifyNotification) notification() {}

// SetDoNotDisturbNotification asks for a customer's do-not-disturb flag to be set.
type SetDoNotDisturbNotification struct {
	CustomerID string
}

func (SetDoNotDisturbNotification) Action() string { return ActionSetDoNotDisturb }

func (SetDoNotDisturbNotification) notification() {}
