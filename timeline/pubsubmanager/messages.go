package pubsubmanager

import (
	"fmt"
)

func msgPublisherRecorded(publisherID string) string {
	return fmt.Sprintf("Publisher %q added to manager.", publisherID)
}

func msgPublisherRemoved(publisherID string) string {
	return fmt.Sprintf("Publisher %q removed from manager.", publisherID)
}

func msgSubscriberRecorded(subscriberID string) string {
	return fmt.Sprintf("Subscriber %q added to manager.", subscriberID)
}

func msgSubscriberRemoved(subscriberID string) string {
	return fmt.Sprintf("Subscriber %q removed from manager.", subscriberID)
}

func msgPublication(publisherID, notification string) string {
	return fmt.Sprintf("%q publish %q.", publisherID, notification)
}

func msgNotificationReceived(subscriberID, notification, publisherID string) string {
	return fmt.Sprintf("%q receives notification %q from %q.", subscriberID, notification, publisherID)
}

func msgSubscriberError(subscriberID, notification, publisherID string) string {
	return fmt.Sprintf("Subscriber %q failed to process %q notification published by %q.", subscriberID, notification, publisherID)
}
