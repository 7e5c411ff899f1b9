package dto

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type WebhookAckResponse struct {
	Processed bool   `json:"processed"`
	EventID   string `json:"eventId"`
}

type PaymentStatusResponse struct {
	Payment        any    `json:"payment"`
	ProviderStatus string `json:"providerStatus"`
}
