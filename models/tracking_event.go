package models

type GeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l GeoLocation) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// TrackingEvent is an append-only progress note for a request.
type TrackingEvent struct {
	Base
	Status    string   `gorm:"type:varchar(100);not null" json:"status"`
	Notes     *string  `gorm:"type:text" json:"notes,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	RequestID string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_tracking_request_seq,priority:1" json:"request_id"`
	// Seq urutan append per request, pemecah seri untuk created_at yang sama.
	Seq int64 `gorm:"not null;uniqueIndex:idx_tracking_request_seq,priority:2" json:"seq"`
}

func (e *TrackingEvent) Location() *GeoLocation {
	if e.Latitude == nil || e.Longitude == nil {
		return nil
	}
	return &GeoLocation{Latitude: *e.Latitude, Longitude: *e.Longitude}
}

func (e *TrackingEvent) SetLocation(loc *GeoLocation) {
	if loc == nil {
		e.Latitude, e.Longitude = nil, nil
		return
	}
	lat, lng := loc.Latitude, loc.Longitude
	e.Latitude, e.Longitude = &lat, &lng
}
