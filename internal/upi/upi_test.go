package upi

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayURI(t *testing.T) {
	uri := PayURI("shop@upi", "Virtual Numbers", 250, 42)
	require.True(t, strings.HasPrefix(uri, "upi://pay?"))

	parsed, err := url.Parse(uri)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "shop@upi", q.Get("pa"))
	assert.Equal(t, "Virtual Numbers", q.Get("pn"))
	assert.Equal(t, "250", q.Get("am"))
	assert.Equal(t, "INR", q.Get("cu"))
	assert.Contains(t, q.Get("tn"), "42")
}

func TestQRPNG(t *testing.T) {
	png, err := QRPNG(PayURI("shop@upi", "Virtual Numbers", 100, 1))
	require.NoError(t, err)
	require.NotEmpty(t, png)

	// PNG magic bytes.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestValidUTR(t *testing.T) {
	tests := []struct {
		utr   string
		valid bool
	}{
		{"AXIS12345678", true},
		{"1234567890", true},
		{"abcdefghij1234567890", true},
		{"short", false},
		{"", false},
		{"has spaces in it!", false},
		{"way-too-long-to-be-a-utr-reference", false},
		{"UTR#1234567890", false},
	}

	for _, tt := range tests {
		t.Run(tt.utr, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidUTR(tt.utr))
		})
	}
}
