package response

import "time"

// SendResult is the provider's delivery receipt surfaced to the caller.
type SendResult struct {
	RequestID string `json:"request_id"`
	BizID     string `json:"biz_id,omitempty"`
}

// CodeRecordView is one issued code as shown in the admin listing.
type CodeRecordView struct {
	ID        string    `json:"id"`
	Mobile    string    `json:"mobile"`
	Code      string    `json:"code"`
	Category  string    `json:"category"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
