package store

import (
	"context"
	"errors"
	"testing"

	"safetour/internal/model"
)

func touristUser(t *testing.T, m *Memory) (model.User, model.Tourist) {
	t.Helper()
	ctx := context.Background()
	u, err := m.CreateUser(ctx, model.SignupRequest{
		Email: "tourist@test.com", Name: "John Doe", Role: "tourist", Password: "x",
	}, "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	tr, err := m.GetTouristByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetTouristByUserID: %v", err)
	}
	return u, tr
}

func TestCreateUserBuildsTouristProfile(t *testing.T) {
	m := NewMemory()
	u, tr := touristUser(t, m)
	if !u.IsActive || u.Role != "tourist" {
		t.Fatalf("bad user: %+v", u)
	}
	if tr.UserID != u.ID || tr.Name != u.Name {
		t.Fatalf("profile not linked: %+v", tr)
	}
	if tr.DigitalID == "" || tr.KYCStatus != "pending" || tr.SafetyScore != 8.0 {
		t.Fatalf("bad profile defaults: %+v", tr)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	m := NewMemory()
	touristUser(t, m)
	_, err := m.CreateUser(context.Background(), model.SignupRequest{
		Email: "TOURIST@test.com", Name: "Other", Role: "police", Password: "x",
	}, "hash")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
}

func TestGetUserByEmailRole(t *testing.T) {
	m := NewMemory()
	u, _ := touristUser(t, m)
	got, hash, err := m.GetUserByEmailRole(context.Background(), "tourist@test.com", "tourist")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != u.ID || hash != "hash" {
		t.Fatalf("lookup mismatch: %+v / %q", got, hash)
	}
	if _, _, err := m.GetUserByEmailRole(context.Background(), "tourist@test.com", "police"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("wrong role: got %v, want ErrNotFound", err)
	}
}

func TestTripLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, tr := touristUser(t, m)

	if _, err := m.GetActiveTrip(ctx, tr.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("before create: got %v, want ErrNotFound", err)
	}
	trip, err := m.CreateTrip(ctx, tr.ID, model.TripCreate{Destination: "Jaipur"})
	if err != nil {
		t.Fatal(err)
	}
	if trip.Status != "active" {
		t.Fatalf("new trip status: %q", trip.Status)
	}
	active, err := m.GetActiveTrip(ctx, tr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if active.ID != trip.ID {
		t.Fatalf("active trip mismatch: %+v", active)
	}
	if _, err := m.CreateTrip(ctx, "missing", model.TripCreate{Destination: "X"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("trip for unknown tourist: got %v", err)
	}
}

func TestInsertLocationUpdatesLastLocation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, tr := touristUser(t, m)

	if _, err := m.InsertLocation(ctx, tr.ID, model.LocationCreate{Lat: 28.61, Lng: 77.21}); err != nil {
		t.Fatal(err)
	}
	got, err := m.GetTourist(ctx, tr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LastLocation == nil || got.LastLocation.Lat != 28.61 {
		t.Fatalf("last location not set: %+v", got.LastLocation)
	}

	for i := 0; i < 5; i++ {
		if _, err := m.InsertLocation(ctx, tr.ID, model.LocationCreate{Lat: 28.61, Lng: 77.21}); err != nil {
			t.Fatal(err)
		}
	}
	locs, err := m.ListLocations(ctx, tr.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(locs) != 3 {
		t.Fatalf("ListLocations limit: got %d, want 3", len(locs))
	}
}

func TestAlertsNewestFirstAndStatusFilter(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, tr := touristUser(t, m)

	first, err := m.CreateAlert(ctx, model.Alert{TouristID: tr.ID, Type: "panic"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Status != "active" || first.Priority != "medium" {
		t.Fatalf("defaults not applied: %+v", first)
	}
	second, err := m.CreateAlert(ctx, model.Alert{TouristID: tr.ID, Type: "geofence", Priority: "high"})
	if err != nil {
		t.Fatal(err)
	}

	all, err := m.ListAlerts(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("not newest first: %+v", all)
	}

	if _, err := m.UpdateAlert(ctx, first.ID, model.AlertUpdate{Status: "resolved"}); err != nil {
		t.Fatal(err)
	}
	active, err := m.ListAlerts(ctx, "active", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Fatalf("status filter: %+v", active)
	}

	resolved, err := m.GetAlert(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.ResolvedAt == "" {
		t.Fatalf("resolvedAt not set: %+v", resolved)
	}

	stats, err := m.AlertStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats["active_alerts"].(int) != 1 || stats["total_alerts"].(int) != 2 {
		t.Fatalf("bad stats: %+v", stats)
	}
}

func TestUpdateSafetyScore(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, tr := touristUser(t, m)
	got, err := m.UpdateSafetyScore(ctx, tr.ID, 4.2)
	if err != nil {
		t.Fatal(err)
	}
	if got.SafetyScore != 4.2 {
		t.Fatalf("score: got %v", got.SafetyScore)
	}
	if _, err := m.UpdateSafetyScore(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown tourist: got %v", err)
	}
}
