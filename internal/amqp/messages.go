package amqp

import (
	"encoding/json"
	"time"
)

// HouseholdEventMessage notifies other devices that a household's data
// changed. Consumers refetch the household state; the message carries no
// payload beyond the code and the kind of change.
type HouseholdEventMessage struct {
	HouseholdCode string    `json:"householdCode"`
	Kind          string    `json:"kind"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewHouseholdEventMessage(householdCode, kind string) *HouseholdEventMessage {
	return &HouseholdEventMessage{
		HouseholdCode: householdCode,
		Kind:          kind,
		OccurredAt:    time.Now(),
	}
}

func (m *HouseholdEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func HouseholdEventMessageFromJSON(data []byte) (*HouseholdEventMessage, error) {
	var msg HouseholdEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
