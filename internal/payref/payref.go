// Package payref encodes business identifiers into the single free-text
// "order reference" field payment providers carry through a transaction.
//
// The wire format is positional and slash-delimited; it must stay stable
// because live provider configurations echo it back verbatim.
package payref

import (
	"fmt"
	"strconv"
	"strings"
)

const sep = "/"

// Checkout is the reference attached to a charge leg:
// eventId/companyId/userId/anonymousFlag/donationId.
type Checkout struct {
	EventID    string
	CompanyID  string
	UserID     string
	Anonymous  bool
	DonationID string
}

// Payout is the reference attached to a payout leg:
// providerTransactionId/donationId.
type Payout struct {
	ProviderTxID string
	DonationID   string
}

func (r Checkout) Encode() (string, error) {
	fields := []string{r.EventID, r.CompanyID, r.UserID, strconv.FormatBool(r.Anonymous), r.DonationID}
	for _, f := range fields {
		if strings.Contains(f, sep) {
			return "", fmt.Errorf("reference field %q contains separator %q", f, sep)
		}
	}
	if r.EventID == "" || r.DonationID == "" {
		return "", fmt.Errorf("reference requires event and donation ids")
	}
	return strings.Join(fields, sep), nil
}

func DecodeCheckout(s string) (Checkout, error) {
	parts := strings.Split(s, sep)
	if len(parts) != 5 {
		return Checkout{}, fmt.Errorf("checkout reference %q: want 5 fields, got %d", s, len(parts))
	}
	anonymous, err := strconv.ParseBool(parts[3])
	if err != nil {
		return Checkout{}, fmt.Errorf("checkout reference %q: bad anonymous flag: %w", s, err)
	}
	return Checkout{
		EventID:    parts[0],
		CompanyID:  parts[1],
		UserID:     parts[2],
		Anonymous:  anonymous,
		DonationID: parts[4],
	}, nil
}

func (r Payout) Encode() (string, error) {
	if strings.Contains(r.ProviderTxID, sep) || strings.Contains(r.DonationID, sep) {
		return "", fmt.Errorf("payout reference fields must not contain %q", sep)
	}
	if r.ProviderTxID == "" || r.DonationID == "" {
		return "", fmt.Errorf("payout reference requires transaction and donation ids")
	}
	return r.ProviderTxID + sep + r.DonationID, nil
}

func DecodePayout(s string) (Payout, error) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return Payout{}, fmt.Errorf("payout reference %q: want 2 fields, got %d", s, len(parts))
	}
	return Payout{ProviderTxID: parts[0], DonationID: parts[1]}, nil
}

// IsPayout reports whether a reference string uses the two-field payout form.
func IsPayout(s string) bool {
	return strings.Count(s, sep) == 1
}
