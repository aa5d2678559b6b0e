package models

// Device is a sensor rig allowed to write readings.
type Device struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	SecretHash string `json:"-"` // don’t expose hash
}
