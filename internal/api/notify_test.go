package api

import (
	"testing"
	"time"

	"safetour/internal/model"
)

type recordingSMS struct {
	sent []string
}

func (r *recordingSMS) Send(recipient, message string) error {
	r.sent = append(r.sent, recipient+": "+message)
	return nil
}

func recvEvent(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func assertSilent(t *testing.T, ch chan Event, channel string) {
	t.Helper()
	select {
	case evt := <-ch:
		t.Fatalf("unexpected %s event on %s", evt.Type, channel)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPanicAlertTargetsPoliceAndTourism(t *testing.T) {
	b := NewBroker()
	sms := &recordingSMS{}
	n := NewNotifier(b, sms)

	police := b.Subscribe("police_alerts")
	tourism := b.Subscribe("tourism_alerts")
	tourist := b.Subscribe("tourist_alerts")

	n.PanicAlert(
		model.Tourist{ID: "t1", Name: "John Doe", PhoneNumber: "+100"},
		model.Alert{ID: "a1", Priority: "critical", Message: "Emergency panic button activated", Address: "India Gate"},
	)

	for _, ch := range []chan Event{police, tourism} {
		evt := recvEvent(t, ch)
		if evt.Type != "panic_alert" {
			t.Fatalf("got type %s, want panic_alert", evt.Type)
		}
		alert := evt.Data["alert"].(map[string]any)
		if alert["id"] != "a1" || alert["priority"] != "critical" {
			t.Fatalf("bad alert payload: %+v", alert)
		}
	}
	assertSilent(t, tourist, "tourist_alerts")

	if len(sms.sent) != 1 {
		t.Fatalf("sms: got %d sends, want 1", len(sms.sent))
	}
}

func TestGeofenceAlertTargetsTouristAndPolice(t *testing.T) {
	b := NewBroker()
	n := NewNotifier(b, nil)

	tourist := b.Subscribe("tourist_alerts")
	police := b.Subscribe("police_alerts")
	tourism := b.Subscribe("tourism_alerts")

	n.GeofenceAlert(model.Tourist{ID: "t1", Name: "John Doe"}, map[string]any{"zone_type": "risk"})

	for _, ch := range []chan Event{tourist, police} {
		evt := recvEvent(t, ch)
		if evt.Type != "geofence_alert" {
			t.Fatalf("got type %s, want geofence_alert", evt.Type)
		}
	}
	assertSilent(t, tourism, "tourism_alerts")
}

func TestSafetyScoreAlertThreshold(t *testing.T) {
	b := NewBroker()
	n := NewNotifier(b, nil)
	police := b.Subscribe("police_alerts")
	tourist := b.Subscribe("tourist_alerts")

	n.SafetyScoreAlert(model.Tourist{ID: "t1", Name: "John Doe"}, 4.9)
	evt := recvEvent(t, police)
	if evt.Type != "safety_score_alert" {
		t.Fatalf("got type %s, want safety_score_alert", evt.Type)
	}
	if evt.Data["safety_score"].(float64) != 4.9 {
		t.Fatalf("bad score payload: %+v", evt.Data)
	}
	assertSilent(t, tourist, "tourist_alerts")

	// at the threshold nothing publishes
	n.SafetyScoreAlert(model.Tourist{ID: "t1", Name: "John Doe"}, 5.0)
	assertSilent(t, police, "police_alerts")
}
