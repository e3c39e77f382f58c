package models

// All returns every persisted entity in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Service{},
		&ServiceRequest{},
		&Payment{},
		&Review{},
		&TrackingEvent{},
	}
}
