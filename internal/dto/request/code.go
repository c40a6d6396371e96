package request

// SendCodeRequest asks for a verification code to be delivered. Presence
// of mobile/category is checked by the service so that the configured,
// per-deployment error message is returned for each missing field.
type SendCodeRequest struct {
	Mobile       string `json:"mobile" validate:"omitempty,max=20"`
	Category     string `json:"category" validate:"omitempty,max=64"`
	CaptchaToken string `json:"captcha_token" validate:"omitempty,max=2048"`
}
