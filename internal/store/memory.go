package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"safetour/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu        sync.Mutex
	users     map[string]model.User    // id -> user
	passwords map[string]string        // user id -> hashed password
	byEmail   map[string]string        // email|role -> user id
	tourists  map[string]model.Tourist // id -> tourist
	byUser    map[string]string        // user id -> tourist id
	police    map[string]model.Police
	tourism   map[string]model.TourismDept
	trips     map[string][]model.Trip    // tourist id -> trips
	locations map[string][]model.Location // tourist id -> locations (append order)
	alerts    []model.Alert               // newest first
	zones     map[string]model.SafetyZone
}

func NewMemory() *Memory {
	return &Memory{
		users:     map[string]model.User{},
		passwords: map[string]string{},
		byEmail:   map[string]string{},
		tourists:  map[string]model.Tourist{},
		byUser:    map[string]string{},
		police:    map[string]model.Police{},
		tourism:   map[string]model.TourismDept{},
		trips:     map[string][]model.Trip{},
		locations: map[string][]model.Location{},
		alerts:    []model.Alert{},
		zones:     map[string]model.SafetyZone{},
	}
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func emailKey(email, role string) string { return strings.ToLower(email) + "|" + role }

func shortID() string { return strings.ToUpper(uuid.New().String()[:8]) }

func (m *Memory) CreateUser(ctx context.Context, req model.SignupRequest, hashedPassword string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, req.Email) {
			return model.User{}, ErrDuplicate
		}
	}
	u := model.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Name:      req.Name,
		Role:      req.Role,
		IsActive:  true,
		CreatedAt: now(),
	}
	m.users[u.ID] = u
	m.passwords[u.ID] = hashedPassword
	m.byEmail[emailKey(u.Email, u.Role)] = u.ID
	switch req.Role {
	case "tourist":
		t := model.Tourist{
			ID:             uuid.New().String(),
			UserID:         u.ID,
			Name:           u.Name,
			DigitalID:      "DID-" + shortID(),
			KYCStatus:      "pending",
			AadhaarNumber:  req.AadhaarNumber,
			PassportNumber: req.PassportNumber,
			SafetyScore:    8.0,
		}
		m.tourists[t.ID] = t
		m.byUser[u.ID] = t.ID
	case "police":
		pid := req.PoliceID
		if pid == "" {
			pid = "POL-" + shortID()
		}
		p := model.Police{ID: uuid.New().String(), UserID: u.ID, PoliceID: pid, Station: "Central Station", Jurisdiction: "City Center"}
		m.police[p.ID] = p
	case "tourism":
		eid := req.EmployeeID
		if eid == "" {
			eid = "TOU-" + shortID()
		}
		d := model.TourismDept{ID: uuid.New().String(), UserID: u.ID, EmployeeID: eid, Department: "Tourism Board", Region: "Regional Office"}
		m.tourism[d.ID] = d
	}
	return u, nil
}

func (m *Memory) GetUserByEmailRole(ctx context.Context, email, role string) (model.User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[emailKey(email, role)]
	if !ok {
		return model.User{}, "", ErrNotFound
	}
	return m.users[id], m.passwords[id], nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) GetTouristByUserID(ctx context.Context, userID string) (model.Tourist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tid, ok := m.byUser[userID]
	if !ok {
		return model.Tourist{}, ErrNotFound
	}
	return m.tourists[tid], nil
}

func (m *Memory) GetTourist(ctx context.Context, id string) (model.Tourist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tourists[id]
	if !ok {
		return model.Tourist{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) UpdateTourist(ctx context.Context, id string, upd model.TouristUpdate) (model.Tourist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tourists[id]
	if !ok {
		return model.Tourist{}, ErrNotFound
	}
	if upd.PhoneNumber != nil {
		t.PhoneNumber = *upd.PhoneNumber
	}
	if upd.SafetyScore != nil {
		t.SafetyScore = *upd.SafetyScore
	}
	m.tourists[id] = t
	return t, nil
}

func (m *Memory) UpdateSafetyScore(ctx context.Context, touristID string, score float64) (model.Tourist, error) {
	return m.UpdateTourist(ctx, touristID, model.TouristUpdate{SafetyScore: &score})
}

func (m *Memory) ListTourists(ctx context.Context, limit int) ([]model.Tourist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	out := []model.Tourist{}
	for _, t := range m.tourists {
		out = append(out, t)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) TouristStats(ctx context.Context) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := 0
	verified := 0
	for _, t := range m.tourists {
		if t.KYCStatus == "verified" {
			verified++
		}
		if trips := m.trips[t.ID]; len(trips) > 0 {
			for _, tr := range trips {
				if tr.Status == "active" {
					active++
					break
				}
			}
		}
	}
	return map[string]any{
		"total_tourists":  len(m.tourists),
		"active_tourists": active,
		"verified_kyc":    verified,
	}, nil
}

func (m *Memory) CreateTrip(ctx context.Context, touristID string, req model.TripCreate) (model.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tourists[touristID]; !ok {
		return model.Trip{}, ErrNotFound
	}
	tr := model.Trip{
		ID:                uuid.New().String(),
		TouristID:         touristID,
		Destination:       req.Destination,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		TransportMode:     req.TransportMode,
		StayInfo:          req.StayInfo,
		HealthInfo:        req.HealthInfo,
		Status:            "active",
		EmergencyContacts: req.EmergencyContacts,
		CreatedAt:         now(),
	}
	m.trips[touristID] = append(m.trips[touristID], tr)
	return tr, nil
}

func (m *Memory) GetActiveTrip(ctx context.Context, touristID string) (model.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tr := range m.trips[touristID] {
		if tr.Status == "active" {
			return tr, nil
		}
	}
	return model.Trip{}, ErrNotFound
}

func (m *Memory) InsertLocation(ctx context.Context, touristID string, req model.LocationCreate) (model.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tourists[touristID]
	if !ok {
		return model.Location{}, ErrNotFound
	}
	loc := model.Location{
		ID:        uuid.New().String(),
		TouristID: touristID,
		Lat:       req.Lat,
		Lng:       req.Lng,
		Address:   req.Address,
		Accuracy:  req.Accuracy,
		Timestamp: now(),
	}
	m.locations[touristID] = append(m.locations[touristID], loc)
	t.LastLocation = &model.GeoPoint{Lat: req.Lat, Lng: req.Lng}
	m.tourists[touristID] = t
	return loc, nil
}

func (m *Memory) ListLocations(ctx context.Context, touristID string, limit int) ([]model.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	locs := m.locations[touristID]
	if limit > 0 && len(locs) > limit {
		locs = locs[len(locs)-limit:]
	}
	out := make([]model.Location, len(locs))
	copy(out, locs)
	return out, nil
}

func (m *Memory) CreateAlert(ctx context.Context, a model.Alert) (model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New().String()
	if a.Priority == "" {
		a.Priority = "medium"
	}
	if a.Status == "" {
		a.Status = "active"
	}
	a.CreatedAt = now()
	m.alerts = append([]model.Alert{a}, m.alerts...)
	return a, nil
}

func (m *Memory) ListAlerts(ctx context.Context, status string, limit int) ([]model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	out := []model.Alert{}
	for _, a := range m.alerts {
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) GetAlert(ctx context.Context, id string) (model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Alert{}, ErrNotFound
}

func (m *Memory) UpdateAlert(ctx context.Context, id string, upd model.AlertUpdate) (model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.alerts {
		if a.ID != id {
			continue
		}
		if upd.Status != "" {
			a.Status = upd.Status
			switch upd.Status {
			case "acknowledged":
				a.AcknowledgedAt = now()
			case "resolved":
				a.ResolvedAt = now()
			}
		}
		if upd.AssignedOfficerID != "" {
			a.AssignedOfficerID = upd.AssignedOfficerID
		}
		m.alerts[i] = a
		return a, nil
	}
	return model.Alert{}, ErrNotFound
}

func (m *Memory) AlertStats(ctx context.Context) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := 0
	resolvedToday := 0
	today := time.Now().UTC().Format("2006-01-02")
	for _, a := range m.alerts {
		if a.Status == "active" {
			active++
		}
		if a.Status == "resolved" && strings.HasPrefix(a.ResolvedAt, today) {
			resolvedToday++
		}
	}
	return map[string]any{
		"total_alerts":   len(m.alerts),
		"active_alerts":  active,
		"resolved_today": resolvedToday,
	}, nil
}

func (m *Memory) CreateSafetyZone(ctx context.Context, z model.SafetyZone) (model.SafetyZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z.ID = uuid.New().String()
	if z.SafetyScore == 0 {
		z.SafetyScore = 5.0
	}
	z.IsActive = true
	m.zones[z.ID] = z
	return z, nil
}

func (m *Memory) ListSafetyZones(ctx context.Context) ([]model.SafetyZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.SafetyZone{}
	for _, z := range m.zones {
		out = append(out, z)
	}
	return out, nil
}
