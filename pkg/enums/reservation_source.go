package enums

import "fmt"

// ReservationSource identifies the channel that placed a reservation.
type ReservationSource string

const (
	ReservationSourcePOS    ReservationSource = "pos"
	ReservationSourceSVM    ReservationSource = "svm"
	ReservationSourceMVM    ReservationSource = "mvm"
	ReservationSourceSystem ReservationSource = "system"
)

var validReservationSources = []ReservationSource{
	ReservationSourcePOS,
	ReservationSourceSVM,
	ReservationSourceMVM,
	ReservationSourceSystem,
}

// IsValid reports whether the value matches the canonical reservation source enum.
func (r ReservationSource) IsValid() bool {
	for _, candidate := range validReservationSources {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReservationSource converts the raw string to ReservationSource.
func ParseReservationSource(value string) (ReservationSource, error) {
	for _, candidate := range validReservationSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation source %q", value)
}
