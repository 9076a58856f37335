package model

// Core domain types for the tourist safety monitor.

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"` // tourist, police, tourism
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type Tourist struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name,omitempty"`
	DigitalID      string    `json:"digitalId"`
	KYCStatus      string    `json:"kycStatus"` // pending, verified, rejected
	AadhaarNumber  string    `json:"aadhaarNumber,omitempty"`
	PassportNumber string    `json:"passportNumber,omitempty"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	SafetyScore    float64   `json:"safetyScore"`
	LastLocation   *GeoPoint `json:"lastLocation,omitempty"`
}

type Police struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	PoliceID     string `json:"policeId"`
	Station      string `json:"station,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	Rank         string `json:"rank,omitempty"`
}

type TourismDept struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	EmployeeID  string `json:"employeeId"`
	Department  string `json:"department,omitempty"`
	Region      string `json:"region,omitempty"`
	Designation string `json:"designation,omitempty"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Trip struct {
	ID                string             `json:"id"`
	TouristID         string             `json:"touristId"`
	Destination       string             `json:"destination"`
	StartDate         string             `json:"startDate,omitempty"`
	EndDate           string             `json:"endDate,omitempty"`
	TransportMode     string             `json:"transportMode,omitempty"`
	StayInfo          string             `json:"stayInfo,omitempty"`
	HealthInfo        string             `json:"healthInfo,omitempty"`
	Status            string             `json:"status"` // active, completed, cancelled
	EmergencyContacts []EmergencyContact `json:"emergencyContacts,omitempty"`
	CreatedAt         string             `json:"createdAt,omitempty"`
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	IsPrimary    bool   `json:"isPrimary,omitempty"`
}

type Location struct {
	ID        string  `json:"id"`
	TouristID string  `json:"touristId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Address   string  `json:"address,omitempty"`
	Accuracy  float64 `json:"accuracy,omitempty"`
	Timestamp string  `json:"timestamp"`
}

type Alert struct {
	ID                string    `json:"id"`
	TouristID         string    `json:"touristId"`
	Type              string    `json:"type"`     // panic, geofence, safety, health, anomaly
	Priority          string    `json:"priority"` // low, medium, high, critical
	Status            string    `json:"status"`   // active, acknowledged, resolved
	Message           string    `json:"message,omitempty"`
	Location          *GeoPoint `json:"location,omitempty"`
	Address           string    `json:"address,omitempty"`
	Metadata          string    `json:"metadata,omitempty"`
	AssignedOfficerID string    `json:"assignedOfficerId,omitempty"`
	CreatedAt         string    `json:"createdAt,omitempty"`
	AcknowledgedAt    string    `json:"acknowledgedAt,omitempty"`
	ResolvedAt        string    `json:"resolvedAt,omitempty"`
}

type SafetyZone struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ZoneType    string  `json:"zoneType"` // safe, moderate, risk
	SafetyScore float64 `json:"safetyScore"`
	Description string  `json:"description,omitempty"`
	IsActive    bool    `json:"isActive"`
}

// Request payloads.

type SignupRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	Password       string `json:"password"`
	AadhaarNumber  string `json:"aadhaarNumber,omitempty"`
	PassportNumber string `json:"passportNumber,omitempty"`
	PoliceID       string `json:"policeId,omitempty"`
	EmployeeID     string `json:"employeeId,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type TouristUpdate struct {
	PhoneNumber *string  `json:"phoneNumber,omitempty"`
	SafetyScore *float64 `json:"safetyScore,omitempty"`
}

type TripCreate struct {
	Destination       string             `json:"destination"`
	StartDate         string             `json:"startDate,omitempty"`
	EndDate           string             `json:"endDate,omitempty"`
	TransportMode     string             `json:"transportMode,omitempty"`
	StayInfo          string             `json:"stayInfo,omitempty"`
	HealthInfo        string             `json:"healthInfo,omitempty"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts,omitempty"`
}

type LocationCreate struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Address  string  `json:"address,omitempty"`
	Accuracy float64 `json:"accuracy,omitempty"`
}

type AlertUpdate struct {
	Status            string `json:"status,omitempty"`
	AssignedOfficerID string `json:"assignedOfficerId,omitempty"`
}
