package response

// Sign-in outcome for the identity behind the verified mobile number.
const (
	SignInStatusOK      = "ok"      // existing provider binding reused
	SignInStatusLinked  = "linked"  // binding attached to an account with the same username
	SignInStatusCreated = "created" // brand-new identity
)

type SignInResponse struct {
	Token      string `json:"token"`
	Status     string `json:"status"`
	IdentityID string `json:"identity_id"`
	Username   string `json:"username"`
}
