package timeline

import (
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// EntryDTO is the serializable form of an Entry.
type EntryDTO struct {
	Sequence   SequenceNumberUint `json:"sequence"    yaml:"sequence"`
	OccurredAt time.Time          `json:"occurred_at" yaml:"occurred_at"`
	Kind       Kind               `json:"kind"        yaml:"kind"`
	Subject    string             `json:"subject"     yaml:"subject"`
	Message    string             `json:"message"     yaml:"message"`
	Payload    PayloadDTO         `json:"payload"     yaml:"payload"`
}

// PayloadDTO is the serializable form of a Payload.
// Data that cannot be serialized is replaced by its fmt representation.
type PayloadDTO struct {
	PublisherID    string   `json:"publisher_id,omitempty"    yaml:"publisher_id,omitempty"`
	SubscriberID   string   `json:"subscriber_id,omitempty"   yaml:"subscriber_id,omitempty"`
	SubscriptionID string   `json:"subscription_id,omitempty" yaml:"subscription_id,omitempty"`
	Notification   string   `json:"notification,omitempty"    yaml:"notification,omitempty"`
	Data           any      `json:"data,omitempty"            yaml:"data,omitempty"`
	Error          string   `json:"error,omitempty"           yaml:"error,omitempty"`
	Trace          []string `json:"trace,omitempty"           yaml:"trace,omitempty"`
}

func ToDTO(entry Entry) EntryDTO {
	return EntryDTO{
		Sequence:   entry.Sequence,
		OccurredAt: entry.At,
		Kind:       entry.Kind,
		Subject:    entry.Subject,
		Message:    entry.Message,
		Payload:    toPayloadDTO(entry.Payload),
	}
}

func ToDTOs(entries []Entry) []EntryDTO {
	dtos := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, ToDTO(entry))
	}

	return dtos
}

func toPayloadDTO(payload Payload) PayloadDTO {
	dto := PayloadDTO{
		PublisherID:    payload.PublisherID,
		SubscriberID:   payload.SubscriberID,
		SubscriptionID: payload.SubscriptionID,
		Notification:   payload.Notification,
		Data:           serializableData(payload.Data),
	}

	if payload.Err != nil {
		dto.Error = payload.Err.Error()
	}

	if payload.Trace != nil {
		dto.Trace = payload.Trace.Lines()
	}

	return dto
}

func serializableData(data any) any {
	if data == nil {
		return nil
	}

	if _, err := jsoniter.ConfigFastest.Marshal(data); err != nil {
		return fmt.Sprintf("%v", data)
	}

	return data
}

// MarshalPayload returns the JSON document of the Payload of entry.
func MarshalPayload(entry Entry) ([]byte, error) {
	data, err := jsoniter.ConfigFastest.Marshal(toPayloadDTO(entry.Payload))
	if err != nil {
		return nil, errors.Join(ErrMarshalingEntryFailed, err)
	}

	return data, nil
}

// MarshalEntries returns the JSON array of entries.
func MarshalEntries(entries []Entry) ([]byte, error) {
	data, err := jsoniter.ConfigFastest.Marshal(ToDTOs(entries))
	if err != nil {
		return nil, errors.Join(ErrMarshalingEntryFailed, err)
	}

	return data, nil
}
