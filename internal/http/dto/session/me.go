// Package session contiene DTOs de la sesión emitida.
package session

import "time"

// MeResponse es la vista pública de la cuenta autenticada.
type MeResponse struct {
	ID              string     `json:"id"`
	Provider        string     `json:"provider"`
	DisplayName     string     `json:"display_name"`
	Email           string     `json:"email,omitempty"`
	ProfileImageURL string     `json:"profile_image_url,omitempty"`
	Gender          string     `json:"gender,omitempty"`
	BirthDate       *time.Time `json:"birth_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
