// Package upi builds UPI payment deep links and QR codes, and validates
// the transaction references users paste back after paying.
package upi

import (
	"fmt"
	"net/url"
	"regexp"

	qrcode "github.com/skip2/go-qrcode"
)

var utrRegex = regexp.MustCompile(`^[A-Za-z0-9]{10,20}$`)

// PayURI returns a upi://pay deep link for the given amount. The payment
// ID travels in the transaction note so transfers can be matched by hand.
func PayURI(upiID, payeeName string, amount int, paymentID int64) string {
	q := url.Values{}
	q.Set("pa", upiID)
	q.Set("pn", payeeName)
	q.Set("am", fmt.Sprintf("%d", amount))
	q.Set("tn", fmt.Sprintf("Payment ID: %d", paymentID))
	q.Set("cu", "INR")
	return "upi://pay?" + q.Encode()
}

// QRPNG renders a payment URI as a PNG image
func QRPNG(uri string) ([]byte, error) {
	png, err := qrcode.Encode(uri, qrcode.Medium, 512)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// ValidUTR reports whether a string looks like a bank transaction
// reference: 10 to 20 alphanumeric characters.
func ValidUTR(utr string) bool {
	return utrRegex.MatchString(utr)
}
