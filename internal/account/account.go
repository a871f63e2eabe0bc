// Package account es el Account Directory: resuelve y crea cuentas locales
// a partir de la identidad del provider. (providerType, providerID) es único.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
)

var (
	ErrNotFound      = errors.New("account: not found")
	ErrAlreadyExists = errors.New("account: already exists")
)

// ProviderType es la forma persistida del nombre de provider.
type ProviderType string

const (
	ProviderGoogle ProviderType = "GOOGLE"
	ProviderKakao  ProviderType = "KAKAO"
	ProviderNaver  ProviderType = "NAVER"
)

// ParseProviderType mapea el nombre de registro (kakao, Kakao...) al tipo.
func ParseProviderType(name string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case userinfo.ProviderGoogle:
		return ProviderGoogle, nil
	case userinfo.ProviderKakao:
		return ProviderKakao, nil
	case userinfo.ProviderNaver:
		return ProviderNaver, nil
	}
	return "", &userinfo.UnsupportedProviderError{Name: name}
}

type Account struct {
	ID              string
	ProviderType    ProviderType
	ProviderID      string
	DisplayName     string
	Email           string
	PhoneNumber     string
	ProfileImageURL string
	Gender          userinfo.Gender
	BirthDate       *time.Time
	CreatedAt       time.Time
}

// FromProfile arma la cuenta a crear. ID y CreatedAt los asigna el Directory.
func FromProfile(p *userinfo.OAuthUserInfo, pt ProviderType) Account {
	return Account{
		ProviderType:    pt,
		ProviderID:      p.ProviderID,
		DisplayName:     p.DisplayName,
		Email:           p.Email,
		PhoneNumber:     p.PhoneNumber,
		ProfileImageURL: p.ProfileImageURL,
		Gender:          p.Gender,
		BirthDate:       p.BirthDate,
	}
}

// Directory es el único punto de acceso a cuentas desde el pipeline de
// login. No hay update: un login no refresca atributos de una cuenta existente.
type Directory interface {
	// FindByProvider retorna ErrNotFound si no hay cuenta para el par.
	FindByProvider(ctx context.Context, pt ProviderType, providerID string) (*Account, error)
	// Create retorna ErrAlreadyExists si otro request creó el par antes.
	Create(ctx context.Context, profile *userinfo.OAuthUserInfo, pt ProviderType) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Ping(ctx context.Context) error
}
