// Package ai holds the mocked scoring and chat subsystems. Each function is a
// stand-in for a model-backed service and is deterministic enough to test.
package ai

import (
	"math"
	"strings"
	"time"
)

// SafetyScore computes a mocked 1-10 safety score for a coordinate. Night
// hours and southern latitudes (the placeholder risk area) pull it down.
func SafetyScore(lat, lng float64) float64 {
	score := 7.0
	hour := time.Now().Hour()
	if hour < 6 || hour >= 22 {
		score *= 0.85
	}
	// same placeholder rule the geofence uses
	if lat < 28.5 {
		score *= 0.7
	}
	if score < 1.0 {
		score = 1.0
	}
	if score > 10.0 {
		score = 10.0
	}
	return math.Round(score*10) / 10
}

// Anomaly describes a detected movement anomaly.
type Anomaly struct {
	Detected    bool    `json:"anomaly_detected"`
	Type        string  `json:"anomaly_type,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	Description string  `json:"description,omitempty"`
}

type Point struct {
	Lat float64
	Lng float64
}

// DetectAnomaly flags sudden large movements over the last three points.
func DetectAnomaly(history []Point) Anomaly {
	if len(history) < 3 {
		return Anomaly{}
	}
	recent := history[len(history)-3:]
	total := 0.0
	for i := 1; i < len(recent); i++ {
		total += haversineKm(recent[i-1], recent[i])
	}
	if avg := total / float64(len(recent)-1); avg > 5.0 {
		return Anomaly{Detected: true, Type: "unusual_movement", Confidence: 0.85, Description: "unusual movement pattern detected"}
	}
	return Anomaly{}
}

func haversineKm(a, b Point) float64 {
	const r = 6371
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * r * math.Asin(math.Sqrt(h))
}

var chatResponses = map[string]string{
	"emergency": "In case of emergency:\n1. Use the panic button for immediate help\n2. Call the local emergency number: 112\n3. Contact your embassy if needed\n4. Share your location with trusted contacts",
	"safety":    "Safety tips:\n1. Stay in well-lit areas\n2. Keep documents secure\n3. Inform someone about your whereabouts\n4. Trust your instincts\n5. Use official transportation",
	"help":      "I can help you with:\n- Emergency procedures\n- Safety tips\n- Local information\n- Navigation assistance\n- Contacting emergency services",
	"location":  "Your current location is tracked for safety. If you feel unsafe, use the panic button or contact local authorities at 112.",
	"police":    "To contact police:\n- Emergency: 112\n- Tourist Police: 1363\n- Use the panic button for immediate assistance",
}

// ChatbotResponse returns a canned keyword response for a tourist query.
func ChatbotResponse(message string) string {
	lower := strings.ToLower(message)
	for keyword, response := range chatResponses {
		if strings.Contains(lower, keyword) {
			return response
		}
	}
	return "For immediate assistance, please use the panic button or contact emergency services at 112. How else can I help you stay safe?"
}
