package store

import (
	"context"
	"database/sql"
	"errors"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"safetour/internal/model"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// MigrateDir applies every .sql file in dir in lexical order. Dev helper; not a
// versioned migration system.
func (p *Postgres) MigrateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, n := range names {
		b, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil {
			return err
		}
		if _, err := p.db.Exec(string(b)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, req model.SignupRequest, hashedPassword string) (model.User, error) {
	var exists string
	err := p.db.QueryRowContext(ctx, `SELECT id::text FROM users WHERE lower(email)=lower($1)`, req.Email).Scan(&exists)
	if err == nil {
		return model.User{}, ErrDuplicate
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, err
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	uid := uuid.New()
	u := model.User{ID: uid.String(), Email: req.Email, Name: req.Name, Role: req.Role, IsActive: true, CreatedAt: time.Now().UTC().Format(time.RFC3339)}
	_, err = tx.ExecContext(ctx, `INSERT INTO users (id, email, name, role, hashed_password, is_active) VALUES ($1,$2,$3,$4,$5,true)`,
		uid, req.Email, req.Name, req.Role, hashedPassword)
	if err != nil {
		return model.User{}, err
	}
	switch req.Role {
	case "tourist":
		_, err = tx.ExecContext(ctx, `INSERT INTO tourists (id, user_id, digital_id, kyc_status, aadhaar_number, passport_number, safety_score) VALUES ($1,$2,$3,'pending',$4,$5,8.0)`,
			uuid.New(), uid, "DID-"+shortID(), nullIfEmpty(req.AadhaarNumber), nullIfEmpty(req.PassportNumber))
	case "police":
		pid := req.PoliceID
		if pid == "" {
			pid = "POL-" + shortID()
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO police (id, user_id, police_id, station, jurisdiction) VALUES ($1,$2,$3,'Central Station','City Center')`,
			uuid.New(), uid, pid)
	case "tourism":
		eid := req.EmployeeID
		if eid == "" {
			eid = "TOU-" + shortID()
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO tourism_dept (id, user_id, employee_id, department, region) VALUES ($1,$2,$3,'Tourism Board','Regional Office')`,
			uuid.New(), uid, eid)
	}
	if err != nil {
		return model.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (p *Postgres) GetUserByEmailRole(ctx context.Context, email, role string) (model.User, string, error) {
	var u model.User
	var hash string
	err := p.db.QueryRowContext(ctx, `SELECT id::text, email, name, role, hashed_password, is_active FROM users WHERE lower(email)=lower($1) AND role=$2`,
		email, role).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &hash, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, "", ErrNotFound
	}
	if err != nil {
		return model.User{}, "", err
	}
	return u, hash, nil
}

func (p *Postgres) GetUser(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := p.db.QueryRowContext(ctx, `SELECT id::text, email, name, role, is_active FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

const touristCols = `t.id::text, t.user_id::text, u.name, t.digital_id, t.kyc_status,
	coalesce(t.aadhaar_number,''), coalesce(t.passport_number,''), coalesce(t.phone_number,''),
	t.safety_score, t.last_lat, t.last_lng`

func scanTourist(row interface{ Scan(...any) error }) (model.Tourist, error) {
	var t model.Tourist
	var lat, lng sql.NullFloat64
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.DigitalID, &t.KYCStatus,
		&t.AadhaarNumber, &t.PassportNumber, &t.PhoneNumber, &t.SafetyScore, &lat, &lng)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tourist{}, ErrNotFound
	}
	if err != nil {
		return model.Tourist{}, err
	}
	if lat.Valid && lng.Valid {
		t.LastLocation = &model.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	return t, nil
}

func (p *Postgres) GetTouristByUserID(ctx context.Context, userID string) (model.Tourist, error) {
	return scanTourist(p.db.QueryRowContext(ctx,
		`SELECT `+touristCols+` FROM tourists t JOIN users u ON u.id=t.user_id WHERE t.user_id=$1`, userID))
}

func (p *Postgres) GetTourist(ctx context.Context, id string) (model.Tourist, error) {
	return scanTourist(p.db.QueryRowContext(ctx,
		`SELECT `+touristCols+` FROM tourists t JOIN users u ON u.id=t.user_id WHERE t.id=$1`, id))
}

func (p *Postgres) UpdateTourist(ctx context.Context, id string, upd model.TouristUpdate) (model.Tourist, error) {
	if upd.PhoneNumber != nil {
		if _, err := p.db.ExecContext(ctx, `UPDATE tourists SET phone_number=$2 WHERE id=$1`, id, *upd.PhoneNumber); err != nil {
			return model.Tourist{}, err
		}
	}
	if upd.SafetyScore != nil {
		if _, err := p.db.ExecContext(ctx, `UPDATE tourists SET safety_score=$2 WHERE id=$1`, id, *upd.SafetyScore); err != nil {
			return model.Tourist{}, err
		}
	}
	return p.GetTourist(ctx, id)
}

func (p *Postgres) UpdateSafetyScore(ctx context.Context, touristID string, score float64) (model.Tourist, error) {
	return p.UpdateTourist(ctx, touristID, model.TouristUpdate{SafetyScore: &score})
}

func (p *Postgres) ListTourists(ctx context.Context, limit int) ([]model.Tourist, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+touristCols+` FROM tourists t JOIN users u ON u.id=t.user_id ORDER BY t.id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Tourist{}
	for rows.Next() {
		t, err := scanTourist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) TouristStats(ctx context.Context) (map[string]any, error) {
	var total, active, verified int
	if err := p.db.QueryRowContext(ctx, `SELECT count(*), count(*) FILTER (WHERE kyc_status='verified') FROM tourists`).Scan(&total, &verified); err != nil {
		return nil, err
	}
	if err := p.db.QueryRowContext(ctx, `SELECT count(DISTINCT tourist_id) FROM trips WHERE status='active'`).Scan(&active); err != nil {
		return nil, err
	}
	return map[string]any{"total_tourists": total, "active_tourists": active, "verified_kyc": verified}, nil
}

func (p *Postgres) CreateTrip(ctx context.Context, touristID string, req model.TripCreate) (model.Trip, error) {
	id := uuid.New()
	contacts, _ := json.Marshal(req.EmergencyContacts)
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO trips (id, tourist_id, destination, start_date, end_date, transport_mode, stay_info, health_info, status, emergency_contacts)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'active',$9)`,
		id, touristID, req.Destination, nullIfEmpty(req.StartDate), nullIfEmpty(req.EndDate),
		nullIfEmpty(req.TransportMode), nullIfEmpty(req.StayInfo), nullIfEmpty(req.HealthInfo), contacts)
	if err != nil {
		return model.Trip{}, err
	}
	return model.Trip{
		ID: id.String(), TouristID: touristID, Destination: req.Destination,
		StartDate: req.StartDate, EndDate: req.EndDate, TransportMode: req.TransportMode,
		StayInfo: req.StayInfo, HealthInfo: req.HealthInfo, Status: "active",
		EmergencyContacts: req.EmergencyContacts, CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (p *Postgres) GetActiveTrip(ctx context.Context, touristID string) (model.Trip, error) {
	var tr model.Trip
	var contacts []byte
	var start, end, mode, stay, health sql.NullString
	err := p.db.QueryRowContext(ctx,
		`SELECT id::text, tourist_id::text, destination, start_date::text, end_date::text, transport_mode, stay_info, health_info, status, emergency_contacts
		 FROM trips WHERE tourist_id=$1 AND status='active' ORDER BY created_at DESC LIMIT 1`, touristID).
		Scan(&tr.ID, &tr.TouristID, &tr.Destination, &start, &end, &mode, &stay, &health, &tr.Status, &contacts)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Trip{}, ErrNotFound
	}
	if err != nil {
		return model.Trip{}, err
	}
	tr.StartDate, tr.EndDate, tr.TransportMode = start.String, end.String, mode.String
	tr.StayInfo, tr.HealthInfo = stay.String, health.String
	if len(contacts) > 0 {
		_ = json.Unmarshal(contacts, &tr.EmergencyContacts)
	}
	return tr, nil
}

func (p *Postgres) InsertLocation(ctx context.Context, touristID string, req model.LocationCreate) (model.Location, error) {
	id := uuid.New()
	ts := time.Now().UTC()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO locations (id, tourist_id, lat, lng, address, accuracy, ts) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		id, touristID, req.Lat, req.Lng, nullIfEmpty(req.Address), req.Accuracy, ts)
	if err != nil {
		return model.Location{}, err
	}
	_, _ = p.db.ExecContext(ctx, `UPDATE tourists SET last_lat=$2, last_lng=$3 WHERE id=$1`, touristID, req.Lat, req.Lng)
	return model.Location{
		ID: id.String(), TouristID: touristID, Lat: req.Lat, Lng: req.Lng,
		Address: req.Address, Accuracy: req.Accuracy, Timestamp: ts.Format(time.RFC3339),
	}, nil
}

func (p *Postgres) ListLocations(ctx context.Context, touristID string, limit int) ([]model.Location, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, tourist_id::text, lat, lng, coalesce(address,''), coalesce(accuracy,0), ts::text
		 FROM locations WHERE tourist_id=$1 ORDER BY ts DESC LIMIT $2`, touristID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Location{}
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.TouristID, &l.Lat, &l.Lng, &l.Address, &l.Accuracy, &l.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateAlert(ctx context.Context, a model.Alert) (model.Alert, error) {
	id := uuid.New()
	if a.Priority == "" {
		a.Priority = "medium"
	}
	if a.Status == "" {
		a.Status = "active"
	}
	var lat, lng any
	if a.Location != nil {
		lat, lng = a.Location.Lat, a.Location.Lng
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO alerts (id, tourist_id, type, priority, status, message, lat, lng, address, metadata)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		id, a.TouristID, a.Type, a.Priority, a.Status, nullIfEmpty(a.Message), lat, lng, nullIfEmpty(a.Address), nullIfEmpty(a.Metadata))
	if err != nil {
		return model.Alert{}, err
	}
	a.ID = id.String()
	a.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return a, nil
}

const alertCols = `id::text, tourist_id::text, type, priority, status, coalesce(message,''),
	lat, lng, coalesce(address,''), coalesce(metadata,''), coalesce(assigned_officer_id::text,''),
	created_at::text, coalesce(acknowledged_at::text,''), coalesce(resolved_at::text,'')`

func scanAlert(row interface{ Scan(...any) error }) (model.Alert, error) {
	var a model.Alert
	var lat, lng sql.NullFloat64
	err := row.Scan(&a.ID, &a.TouristID, &a.Type, &a.Priority, &a.Status, &a.Message,
		&lat, &lng, &a.Address, &a.Metadata, &a.AssignedOfficerID, &a.CreatedAt, &a.AcknowledgedAt, &a.ResolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Alert{}, ErrNotFound
	}
	if err != nil {
		return model.Alert{}, err
	}
	if lat.Valid && lng.Valid {
		a.Location = &model.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	return a, nil
}

func (p *Postgres) ListAlerts(ctx context.Context, status string, limit int) ([]model.Alert, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = p.db.QueryContext(ctx, `SELECT `+alertCols+` FROM alerts WHERE status=$1 ORDER BY created_at DESC LIMIT $2`, status, limit)
	} else {
		rows, err = p.db.QueryContext(ctx, `SELECT `+alertCols+` FROM alerts ORDER BY created_at DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *Postgres) GetAlert(ctx context.Context, id string) (model.Alert, error) {
	return scanAlert(p.db.QueryRowContext(ctx, `SELECT `+alertCols+` FROM alerts WHERE id=$1`, id))
}

func (p *Postgres) UpdateAlert(ctx context.Context, id string, upd model.AlertUpdate) (model.Alert, error) {
	if upd.Status != "" {
		var stamp string
		switch upd.Status {
		case "acknowledged":
			stamp = `, acknowledged_at=now()`
		case "resolved":
			stamp = `, resolved_at=now()`
		}
		res, err := p.db.ExecContext(ctx, `UPDATE alerts SET status=$2`+stamp+` WHERE id=$1`, id, upd.Status)
		if err != nil {
			return model.Alert{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return model.Alert{}, ErrNotFound
		}
	}
	if upd.AssignedOfficerID != "" {
		if _, err := p.db.ExecContext(ctx, `UPDATE alerts SET assigned_officer_id=$2 WHERE id=$1`, id, upd.AssignedOfficerID); err != nil {
			return model.Alert{}, err
		}
	}
	return p.GetAlert(ctx, id)
}

func (p *Postgres) AlertStats(ctx context.Context) (map[string]any, error) {
	var total, active, resolvedToday int
	err := p.db.QueryRowContext(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE status='active'),
		        count(*) FILTER (WHERE status='resolved' AND resolved_at::date=current_date)
		 FROM alerts`).Scan(&total, &active, &resolvedToday)
	if err != nil {
		return nil, err
	}
	return map[string]any{"total_alerts": total, "active_alerts": active, "resolved_today": resolvedToday}, nil
}

func (p *Postgres) CreateSafetyZone(ctx context.Context, z model.SafetyZone) (model.SafetyZone, error) {
	id := uuid.New()
	if z.SafetyScore == 0 {
		z.SafetyScore = 5.0
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO safety_zones (id, name, zone_type, safety_score, description, is_active) VALUES ($1,$2,$3,$4,$5,true)`,
		id, z.Name, z.ZoneType, z.SafetyScore, nullIfEmpty(z.Description))
	if err != nil {
		return model.SafetyZone{}, err
	}
	z.ID = id.String()
	z.IsActive = true
	return z, nil
}

func (p *Postgres) ListSafetyZones(ctx context.Context) ([]model.SafetyZone, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, name, zone_type, safety_score, coalesce(description,''), is_active FROM safety_zones ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.SafetyZone{}
	for rows.Next() {
		var z model.SafetyZone
		if err := rows.Scan(&z.ID, &z.Name, &z.ZoneType, &z.SafetyScore, &z.Description, &z.IsActive); err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
