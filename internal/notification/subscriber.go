package notification

import (
	"context"
	"fmt"

	"github.com/frahmantamala/agency-portal/internal/core/events"
	"github.com/frahmantamala/agency-portal/internal/lead"
	"github.com/frahmantamala/agency-portal/internal/messaging"
)

// RegisterSubscribers connects the dispatcher to the domain events it cares
// about. Handlers only translate payloads into jobs; delivery happens on the
// dispatcher's own workers.
func RegisterSubscribers(bus *events.Bus, d *Dispatcher) {
	bus.Subscribe(events.EventLeadCreated, func(_ context.Context, evt events.Event) {
		payload, ok := evt.Payload.(lead.LeadCreatedPayload)
		if !ok {
			return
		}
		body := fmt.Sprintf("Name: %s\nEmail: %s\nCompany: %s\n\n%s",
			payload.Name, payload.Email, payload.Company, payload.Message)
		d.Enqueue(Job{
			Subject: "New lead: " + payload.Name,
			Body:    body,
		})
	})

	bus.Subscribe(events.EventMessageSent, func(_ context.Context, evt events.Event) {
		payload, ok := evt.Payload.(messaging.MessageSentPayload)
		if !ok {
			return
		}
		d.Enqueue(Job{
			Subject: fmt.Sprintf("New portal message from %s", payload.SenderName),
			Body:    payload.Preview,
		})
	})
}
