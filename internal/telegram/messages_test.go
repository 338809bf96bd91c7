package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderPurchaseSuccess(t *testing.T) {
	out := Render(MsgPurchaseSuccess, P{
		Phone:   "+911234567890",
		Country: "India",
		Price:   50,
		Balance: 150,
		Minutes: 10,
	})

	assert.Contains(t, out, "+911234567890")
	assert.Contains(t, out, "India")
	assert.Contains(t, out, "₹50")
	assert.Contains(t, out, "₹150")
	assert.Contains(t, out, "10 minutes")
}

func TestRenderMyNumbers(t *testing.T) {
	out := Render(MsgMyNumbers, P{Numbers: []NumberEntry{
		{Phone: "+911234567890", Country: "India", OTP: "482913", MinutesLeft: 7},
		{Phone: "+15551234567", Country: "United States", MinutesLeft: 3},
	}})

	assert.Contains(t, out, "+911234567890")
	assert.Contains(t, out, "482913")
	assert.Contains(t, out, "+15551234567")
	assert.Contains(t, out, "United States")
	assert.Contains(t, out, "7 min")
	assert.Contains(t, out, "3 min")

	// The OTP line only appears for numbers that have one.
	assert.Equal(t, 1, strings.Count(out, "OTP:"))
}

func TestRenderWelcomeName(t *testing.T) {
	withName := Render(MsgWelcome, P{Name: "alice"})
	assert.Contains(t, withName, "alice")

	anonymous := Render(MsgWelcome, P{})
	assert.NotContains(t, anonymous, "<b></b>")
	assert.Contains(t, anonymous, "Welcome!")
}

func TestRenderDashboard(t *testing.T) {
	out := Render(MsgDashboard, P{Stats: &Stats{
		Users:        12,
		Countries:    3,
		Accounts:     5,
		FreeAccounts: 2,
		TotalNumbers: 40,
		FreeNumbers:  17,
		Revenue:      2600,
		UPIID:        "shop@upi",
	}})

	assert.Contains(t, out, "Users: 12")
	assert.Contains(t, out, "5 (2 free)")
	assert.Contains(t, out, "40 (17 free)")
	assert.Contains(t, out, "₹2600")
	assert.Contains(t, out, "shop@upi")
}

func TestRenderAccountList(t *testing.T) {
	out := Render(MsgAccountList, P{Accounts: []AccountEntry{
		{ID: 1, Phone: "+911111111111", Status: "in use", Served: 4},
		{ID: 2, Status: "disabled", Served: 0},
	}})

	assert.Contains(t, out, "#1 <code>+911111111111</code> — in use, served 4")
	assert.Contains(t, out, "#2 (no phone) — disabled, served 0")
}

func TestRenderUnknownKind(t *testing.T) {
	assert.Empty(t, Render(MsgKind("no_such_message"), P{}))
}

func TestRenderTrimsWhitespace(t *testing.T) {
	out := Render(MsgMyNumbers, P{Numbers: []NumberEntry{
		{Phone: "+911234567890", Country: "India", MinutesLeft: 5},
	}})

	assert.Equal(t, out, strings.TrimSpace(out))
}
