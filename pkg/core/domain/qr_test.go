package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeQRContent(t *testing.T) {
	tests := []struct {
		name    string
		ct      ContentType
		raw     string
		want    QRContent
		invalid bool
	}{
		{"url", ContentURL, `{"url":"https://example.com"}`, URLContent{URL: "https://example.com"}, false},
		{"vcard", ContentVCard, `{"name":"Ada","phone":"+1","organization":"ACME"}`, VCardContent{Name: "Ada", Phone: "+1", Organization: "ACME"}, false},
		{"vcard missing name", ContentVCard, `{"phone":"+1"}`, nil, true},
		{"wifi", ContentWifi, `{"ssid":"home","encryption":"nopass"}`, WifiContent{SSID: "home", Encryption: "nopass"}, false},
		{"wifi missing ssid", ContentWifi, `{"password":"x"}`, nil, true},
		{"wifi bad encryption", ContentWifi, `{"ssid":"home","encryption":"WPA3"}`, nil, true},
		{"email", ContentEmail, `{"to":"a@b.c","subject":"hi"}`, EmailContent{To: "a@b.c", Subject: "hi"}, false},
		{"email missing to", ContentEmail, `{}`, nil, true},
		{"sms", ContentSMS, `{"number":"555","message":"yo","unknown":1}`, SMSContent{Number: "555", Message: "yo"}, false},
		{"sms null payload", ContentSMS, `null`, nil, true},
		{"malformed", ContentSMS, `{"number":`, nil, true},
		{"wrong field type", ContentSMS, `{"number":5}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := DecodeQRContent(tt.ct, json.RawMessage(tt.raw))
			if err == nil {
				err = content.Validate()
			}
			if tt.invalid {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, content)
			assert.Equal(t, tt.ct, content.ContentType())
		})
	}
}

func TestDecodeQRContent_UnknownType(t *testing.T) {
	_, err := DecodeQRContent("fax", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseContentType(t *testing.T) {
	ct, err := ParseContentType("")
	require.NoError(t, err)
	assert.Equal(t, ContentURL, ct)

	for _, s := range []string{"url", "vcard", "wifi", "email", "sms"} {
		ct, err := ParseContentType(s)
		require.NoError(t, err)
		assert.Equal(t, ContentType(s), ct)
	}

	_, err = ParseContentType("URL")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestQRResults(t *testing.T) {
	failed := QRFailedResult()
	assert.Equal(t, QRFailed, failed.Status)
	assert.Nil(t, failed.URL)

	ready := QRReadyResult("https://qr.example/x.png")
	assert.Equal(t, QRReady, ready.Status)
	require.NotNil(t, ready.URL)

	assert.Equal(t, QRFailedResult(), QRReadyResult(""))
}

func TestLinkExpiredAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	before := now.Add(-time.Second)
	after := now.Add(time.Second)

	assert.False(t, (&Link{}).ExpiredAt(now))
	assert.True(t, (&Link{ExpiresAt: &before}).ExpiredAt(now))
	assert.False(t, (&Link{ExpiresAt: &now}).ExpiredAt(now))
	assert.False(t, (&Link{ExpiresAt: &after}).ExpiredAt(now))
}

func TestRetriesExhaustedError(t *testing.T) {
	err := error(&RetriesExhaustedError{Attempts: 3, Last: ErrUniqueViolation})

	assert.True(t, errors.Is(err, ErrRetriesExhausted))
	assert.True(t, errors.Is(err, ErrUniqueViolation))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "3 attempts")
}
