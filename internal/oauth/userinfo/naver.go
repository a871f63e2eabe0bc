package userinfo

// Naver lee el perfil envuelto en "response" de /v1/nid/me:
//
//	{"resultcode":"00","message":"success","response":{"id","name","nickname",
//	 "email","mobile","profile_image","gender","birthyear","birthday"}}
type Naver struct{}

func (Naver) Provider() string { return ProviderNaver }

func (Naver) ExtractUserInfo(raw map[string]any) (*OAuthUserInfo, error) {
	resp := obj(raw, "response")
	if resp == nil {
		return nil, missing(ProviderNaver, "response")
	}
	info := &OAuthUserInfo{
		ProviderID:      str(resp, "id"),
		DisplayName:     firstNonEmpty(str(resp, "name"), str(resp, "nickname")),
		Email:           str(resp, "email"),
		PhoneNumber:     normalizePhone(firstNonEmpty(str(resp, "mobile"), str(resp, "mobile_e164"))),
		ProfileImageURL: str(resp, "profile_image"),
		Gender:          parseGender(str(resp, "gender")),
		BirthDate:       combineBirthDate(str(resp, "birthyear"), str(resp, "birthday")),
	}
	if err := requireCore(ProviderNaver, info); err != nil {
		return nil, err
	}
	return info, nil
}
