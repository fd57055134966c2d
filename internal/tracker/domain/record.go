package domain

import "time"

// HealthRecord is a single dated measurement entry owned by one user.
// Weight is kilograms, Temperature is Celsius. BloodPressure and Note are
// free-form text. Date is fixed at creation time and carries day precision.
type HealthRecord struct {
	ID            int64
	Weight        float64
	Temperature   float64
	BloodPressure string
	Note          string
	Date          time.Time
	UserID        int64
}
