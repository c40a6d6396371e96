package request

type SignInRequest struct {
	Mobile string `json:"mobile" validate:"omitempty,max=20"`
	Code   string `json:"code" validate:"omitempty,numeric,max=10"`
}

type ResetRequest struct {
	Username string `json:"username" validate:"omitempty,max=64"`
	Code     string `json:"code" validate:"omitempty,numeric,max=10"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
}
