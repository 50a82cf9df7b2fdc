package enums

import "fmt"

// NotificationKind labels outbound customer emails for auditing.
type NotificationKind string

const (
	NotificationKindOrderConfirmation NotificationKind = "order_confirmation"
	NotificationKindOrderStatusUpdate NotificationKind = "order_status_update"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindOrderConfirmation,
	NotificationKindOrderStatusUpdate,
}

// String implements fmt.Stringer.
func (n NotificationKind) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationKind.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// NotificationStatus records the delivery result of an outbound email.
type NotificationStatus string

const (
	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"
)

// String implements fmt.Stringer.
func (n NotificationStatus) String() string {
	return string(n)
}

// ParseNotificationKind converts raw input into a NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
