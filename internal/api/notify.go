package api

import (
	"log"

	"safetour/internal/metrics"
	"safetour/internal/model"
)

// safetyScoreThreshold is the exclusive boundary below which a safety score
// alert is published.
const safetyScoreThreshold = 5.0

// SMSSender is the outbound side-channel used for panic alerts. Failures are
// logged, never propagated.
type SMSSender interface {
	Send(recipient, message string) error
}

// LogSMS writes the message to the process log instead of a carrier. Stands in
// for a Twilio-style integration.
type LogSMS struct{}

func (LogSMS) Send(recipient, message string) error {
	log.Printf("sms to %s: %s", recipient, message)
	return nil
}

// Notifier publishes typed alert events onto the broker channels consumed by
// the websocket bridges. Every publish is at-most-once; there is no retry.
type Notifier struct {
	Broker EventBroker
	SMS    SMSSender
}

func NewNotifier(b EventBroker, sms SMSSender) *Notifier {
	if sms == nil {
		sms = LogSMS{}
	}
	return &Notifier{Broker: b, SMS: sms}
}

func (n *Notifier) publish(channel string, evt Event) {
	n.Broker.Publish(channel, evt)
	metrics.EventsPublished.WithLabelValues(channel, evt.Type).Inc()
}

func touristSummary(t model.Tourist) map[string]any {
	out := map[string]any{"id": t.ID, "name": t.Name}
	if t.DigitalID != "" {
		out["digital_id"] = t.DigitalID
	}
	return out
}

// PanicAlert notifies police and tourism dashboards and fires the SMS side
// channel.
func (n *Notifier) PanicAlert(t model.Tourist, a model.Alert) {
	evt := Event{Type: "panic_alert", Data: map[string]any{
		"tourist": touristSummary(t),
		"alert": map[string]any{
			"id":       a.ID,
			"priority": a.Priority,
			"message":  a.Message,
			"address":  a.Address,
		},
		"timestamp": a.CreatedAt,
	}}
	n.publish("police_alerts", evt)
	n.publish("tourism_alerts", evt)
	if err := n.SMS.Send(t.PhoneNumber, "Panic alert: "+t.Name+" needs help at "+a.Address); err != nil {
		log.Printf("notify: sms send failed: %v", err)
	}
}

// GeofenceAlert notifies the tourist and police channels about a risk-zone
// entry.
func (n *Notifier) GeofenceAlert(t model.Tourist, zone map[string]any) {
	evt := Event{Type: "geofence_alert", Data: map[string]any{
		"tourist":   touristSummary(t),
		"zone":      zone,
		"timestamp": zone["timestamp"],
	}}
	n.publish("tourist_alerts", evt)
	n.publish("police_alerts", evt)
}

// SafetyScoreAlert notifies police when a tourist's score drops below the
// threshold. Scores at or above it publish nothing.
func (n *Notifier) SafetyScoreAlert(t model.Tourist, score float64) {
	if score >= safetyScoreThreshold {
		return
	}
	n.publish("police_alerts", Event{Type: "safety_score_alert", Data: map[string]any{
		"tourist":      touristSummary(t),
		"safety_score": score,
	}})
}
