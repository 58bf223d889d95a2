package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeInstance      EntityType = "instance"
	EntityTypeFixedTemplate EntityType = "fixed_template"
	EntityTypePlan          EntityType = "installment_plan"
	EntityTypeCard          EntityType = "card"
	EntityTypePeriod        EntityType = "period"
	EntityTypeExpense       EntityType = "expense"
	EntityTypePot           EntityType = "pot"
	EntityTypeSettings      EntityType = "settings"
)

// Additional event types for specific events
const (
	EventTypeMaterialized EventType = "materialized"
	EventTypePaid         EventType = "paid"
	EventTypeUnpaid       EventType = "unpaid"
	EventTypeReordered    EventType = "reordered"
	EventTypeDeposit      EventType = "deposit"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "instance.paid"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "instance"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// InstanceCreated creates an instance.created event
func InstanceCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeInstance, payload)
}

// InstanceUpdated creates an instance.updated event
func InstanceUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeInstance, payload)
}

// InstancePaid creates an instance.paid event
func InstancePaid(payload interface{}) Event {
	return NewEvent(EventTypePaid, EntityTypeInstance, payload)
}

// InstanceUnpaid creates an instance.unpaid event
func InstanceUnpaid(payload interface{}) Event {
	return NewEvent(EventTypeUnpaid, EntityTypeInstance, payload)
}

// InstancesReordered creates an instance.reordered event
func InstancesReordered(payload interface{}) Event {
	return NewEvent(EventTypeReordered, EntityTypeInstance, payload)
}

// PeriodMaterialized creates a period.materialized event
func PeriodMaterialized(payload interface{}) Event {
	return NewEvent(EventTypeMaterialized, EntityTypePeriod, payload)
}

// FixedTemplateCreated creates a fixed_template.created event
func FixedTemplateCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeFixedTemplate, payload)
}

// FixedTemplateUpdated creates a fixed_template.updated event
func FixedTemplateUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeFixedTemplate, payload)
}

// FixedTemplateDeleted creates a fixed_template.deleted event
func FixedTemplateDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeFixedTemplate, payload)
}

// PlanCreated creates an installment_plan.created event
func PlanCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypePlan, payload)
}

// PlanUpdated creates an installment_plan.updated event
func PlanUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypePlan, payload)
}

// CardCreated creates a card.created event
func CardCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCard, payload)
}

// CardUpdated creates a card.updated event
func CardUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCard, payload)
}

// CardDeleted creates a card.deleted event
func CardDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCard, payload)
}

// ExpenseCreated creates an expense.created event
func ExpenseCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeExpense, payload)
}

// ExpenseDeleted creates an expense.deleted event
func ExpenseDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeExpense, payload)
}

// PotUpdated creates a pot.updated event
func PotUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypePot, payload)
}

// PotDeposit creates a pot.deposit event
func PotDeposit(payload interface{}) Event {
	return NewEvent(EventTypeDeposit, EntityTypePot, payload)
}

// SettingsUpdated creates a settings.updated event
func SettingsUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeSettings, payload)
}
