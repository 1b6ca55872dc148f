package domain

import (
	"bytes"
	"encoding/json"
)

// QRCustomization holds caller-supplied rendering hints. It is stored as given
// and never re-validated.
type QRCustomization struct {
	Colors          *QRColors `json:"colors,omitempty"`
	ErrorCorrection string    `json:"errorCorrection,omitempty"`
	Size            int       `json:"size,omitempty"`
}

type QRColors struct {
	Foreground string `json:"foreground,omitempty"`
	Background string `json:"background,omitempty"`
}

// DefaultQRCustomization is sent to the renderer when the caller gave none
func DefaultQRCustomization() QRCustomization {
	return QRCustomization{ErrorCorrection: "M", Size: 300}
}

// QRResult is the outcome of a render call
type QRResult struct {
	Status QRStatus
	URL    *string
}

// QRFailedResult is the outcome for any render that did not yield an image URL
func QRFailedResult() QRResult {
	return QRResult{Status: QRFailed}
}

// QRReadyResult builds a ready result, falling back to failed when url is empty.
func QRReadyResult(url string) QRResult {
	if url == "" {
		return QRFailedResult()
	}
	return QRResult{Status: QRReady, URL: &url}
}

// QRContent is the payload encoded into a QR code. Each content type has
// exactly one implementation.
type QRContent interface {
	ContentType() ContentType
	Validate() error
}

type URLContent struct {
	URL string `json:"url"`
}

func (URLContent) ContentType() ContentType { return ContentURL }

func (c URLContent) Validate() error {
	if c.URL == "" {
		return Invalidf("qr_data.url is required")
	}
	return nil
}

type VCardContent struct {
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Organization string `json:"organization,omitempty"`
}

func (VCardContent) ContentType() ContentType { return ContentVCard }

func (c VCardContent) Validate() error {
	if c.Name == "" {
		return Invalidf("qr_data.name is required for vcard")
	}
	return nil
}

type WifiContent struct {
	SSID       string `json:"ssid"`
	Password   string `json:"password,omitempty"`
	Encryption string `json:"encryption,omitempty"` // WPA, WEP or nopass
}

func (WifiContent) ContentType() ContentType { return ContentWifi }

func (c WifiContent) Validate() error {
	if c.SSID == "" {
		return Invalidf("qr_data.ssid is required for wifi")
	}
	switch c.Encryption {
	case "", "WPA", "WEP", "nopass":
		return nil
	default:
		return Invalidf("qr_data.encryption must be one of WPA, WEP, nopass")
	}
}

type EmailContent struct {
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

func (EmailContent) ContentType() ContentType { return ContentEmail }

func (c EmailContent) Validate() error {
	if c.To == "" {
		return Invalidf("qr_data.to is required for email")
	}
	return nil
}

type SMSContent struct {
	Number  string `json:"number"`
	Message string `json:"message,omitempty"`
}

func (SMSContent) ContentType() ContentType { return ContentSMS }

func (c SMSContent) Validate() error {
	if c.Number == "" {
		return Invalidf("qr_data.number is required for sms")
	}
	return nil
}

// DecodeQRContent builds the variant for ct from raw JSON. Unknown fields are
// ignored; required fields are checked by the returned value's Validate.
func DecodeQRContent(ct ContentType, raw json.RawMessage) (QRContent, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}

	var content QRContent
	var err error
	switch ct {
	case ContentURL:
		var c URLContent
		err = json.Unmarshal(raw, &c)
		content = c
	case ContentVCard:
		var c VCardContent
		err = json.Unmarshal(raw, &c)
		content = c
	case ContentWifi:
		var c WifiContent
		err = json.Unmarshal(raw, &c)
		content = c
	case ContentEmail:
		var c EmailContent
		err = json.Unmarshal(raw, &c)
		content = c
	case ContentSMS:
		var c SMSContent
		err = json.Unmarshal(raw, &c)
		content = c
	default:
		return nil, Invalidf("unsupported content_type %q", ct)
	}
	if err != nil {
		return nil, Invalidf("qr_data is malformed: %v", err)
	}
	return content, nil
}
