package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/ws"
)

type broadcaster interface {
	Broadcast(msg ws.Message) bool
}

// HubPublisher pushes events to connected dashboards. Requests awaiting a
// decision go to owners only; everything else goes to every client.
type HubPublisher struct {
	hub broadcaster
}

func NewHubPublisher(hub *ws.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := ws.Message{Payload: payload}
	if evt.Type.NeedsOwner() {
		msg.Audience = []model.Role{model.RoleOwner}
	}
	if !p.hub.Broadcast(msg) {
		return fmt.Errorf("ws hub stopped")
	}
	return nil
}
