package userinfo

// Google lee el perfil plano del endpoint OIDC userinfo:
// {"sub","name","email","picture"}. Acepta "id" para el endpoint v2 legacy.
type Google struct{}

func (Google) Provider() string { return ProviderGoogle }

func (Google) ExtractUserInfo(raw map[string]any) (*OAuthUserInfo, error) {
	info := &OAuthUserInfo{
		ProviderID:      firstNonEmpty(str(raw, "sub"), str(raw, "id")),
		DisplayName:     str(raw, "name"),
		Email:           str(raw, "email"),
		ProfileImageURL: str(raw, "picture"),
	}
	if err := requireCore(ProviderGoogle, info); err != nil {
		return nil, err
	}
	return info, nil
}
