package enums

import "fmt"

// NotificationKind is the severity of a user-facing notice.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationInfo    NotificationKind = "info"
	NotificationError   NotificationKind = "error"
)

var validNotificationKinds = []NotificationKind{
	NotificationSuccess,
	NotificationInfo,
	NotificationError,
}

// IsValid checks whether the given kind matches a known severity.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
