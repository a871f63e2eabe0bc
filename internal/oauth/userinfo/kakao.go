package userinfo

// Kakao lee el perfil anidado de /v2/user/me:
//
//	{"id": 12345, "kakao_account": {"profile": {"nickname", "profile_image_url"},
//	 "email", "phone_number", "birthyear", "birthday", "gender"}}
type Kakao struct{}

func (Kakao) Provider() string { return ProviderKakao }

func (Kakao) ExtractUserInfo(raw map[string]any) (*OAuthUserInfo, error) {
	account := obj(raw, "kakao_account")
	profile := obj(account, "profile")

	info := &OAuthUserInfo{
		ProviderID:      str(raw, "id"),
		DisplayName:     str(profile, "nickname"),
		Email:           str(account, "email"),
		PhoneNumber:     normalizePhone(str(account, "phone_number")),
		ProfileImageURL: str(profile, "profile_image_url"),
		Gender:          parseGender(str(account, "gender")),
		BirthDate:       combineBirthDate(str(account, "birthyear"), str(account, "birthday")),
	}
	if err := requireCore(ProviderKakao, info); err != nil {
		return nil, err
	}
	return info, nil
}
