package dto

type InitiateDonationRequest struct {
	EventID   string `json:"event_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Provider  string `json:"provider"`
	Anonymous bool   `json:"anonymous"`

	// Nonce is only used by the Braintree drop-in flow.
	Nonce string `json:"nonce,omitempty"`
}

type InitiateDonationResponse struct {
	DonationID  string `json:"donation_id"`
	RedirectURL string `json:"redirect_url,omitempty"`
	// ProviderTxID is set for providers that charge synchronously.
	ProviderTxID string `json:"provider_tx_id,omitempty"`
}

type CreateCompanyRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	IBAN          string `json:"iban"`
	MFO           string `json:"mfo"`
	RecipientName string `json:"recipient_name"`
	DateOfBirth   string `json:"date_of_birth"`
}

type CreateEventRequest struct {
	CompanyID  string `json:"company_id"`
	Name       string `json:"name"`
	GoalAmount string `json:"goal_amount"`
	Currency   string `json:"currency"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type AckResponse struct {
	Received bool `json:"received"`
}
