// Package userinfo normaliza el perfil crudo de cada identity provider
// al perfil canónico OAuthUserInfo.
//
// Ningún extractor hace I/O: reciben el mapa ya obtenido del endpoint
// de perfil del provider (ver internal/oauth/idp).
package userinfo

import (
	"errors"
	"fmt"
	"time"
)

// Nombres de provider conocidos (case-insensitive en el Registry).
const (
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
	ProviderNaver  = "naver"
)

// Gender es una enumeración cerrada. GenderUnspecified cubre ausencia
// y valores que el provider no permite mapear.
type Gender string

const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "MALE"
	GenderFemale      Gender = "FEMALE"
)

// OAuthUserInfo es el perfil canónico. Se produce por intento de login y
// solo se usa para resolver o crear la cuenta local; nunca se persiste tal cual.
// Los campos opcionales quedan en su zero value cuando el provider no los envía.
type OAuthUserInfo struct {
	ProviderID      string // requerido, único por provider
	DisplayName     string // requerido
	Email           string
	PhoneNumber     string // solo dígitos
	ProfileImageURL string
	Gender          Gender
	BirthDate       *time.Time // fecha civil en UTC
}

// Extractor convierte el perfil crudo de un provider en OAuthUserInfo.
type Extractor interface {
	Provider() string
	ExtractUserInfo(raw map[string]any) (*OAuthUserInfo, error)
}

var (
	// ErrUnsupportedProvider: nombre de provider desconocido (error de cliente/config).
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrProfileExtraction: el perfil del provider vino incompleto o malformado.
	ErrProfileExtraction = errors.New("profile extraction failed")

	// ErrMissingField es la causa cuando falta un campo requerido.
	ErrMissingField = errors.New("required field missing")
)

// UnsupportedProviderError lleva el nombre rechazado.
type UnsupportedProviderError struct {
	Name string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q", e.Name)
}

func (e *UnsupportedProviderError) Unwrap() error { return ErrUnsupportedProvider }

// ProfileExtractionError envuelve la causa y el campo que faltó.
type ProfileExtractionError struct {
	Provider string
	Field    string
	Err      error
}

func (e *ProfileExtractionError) Error() string {
	return fmt.Sprintf("%s: %v: %s: %v", e.Provider, ErrProfileExtraction, e.Field, e.Err)
}

func (e *ProfileExtractionError) Unwrap() []error {
	return []error{ErrProfileExtraction, e.Err}
}

func missing(provider, field string) error {
	return &ProfileExtractionError{Provider: provider, Field: field, Err: ErrMissingField}
}

// requireCore valida los dos campos que todo extractor debe producir.
func requireCore(provider string, info *OAuthUserInfo) error {
	if info.ProviderID == "" {
		return missing(provider, "providerId")
	}
	if info.DisplayName == "" {
		return missing(provider, "displayName")
	}
	return nil
}
