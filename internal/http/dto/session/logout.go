package session

type LogoutResponse struct {
	Success bool `json:"success"`
}
