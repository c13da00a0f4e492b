package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyInitData = errors.New("telegram init data is empty")
	ErrMissingHash   = errors.New("telegram init data has no hash")
	ErrBadSignature  = errors.New("telegram init data signature mismatch")
)

// User is the launching Telegram account as embedded in init data.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// InitData is the parsed WebApp launch payload. Raw is forwarded verbatim to
// the storefront backend, which performs its own verification.
type InitData struct {
	Raw        string
	QueryID    string
	User       *User
	AuthDate   time.Time
	StartParam string
	Hash       string
}

// ParseInitData decodes the URL-encoded init data string.
func ParseInitData(raw string) (InitData, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return InitData{}, ErrEmptyInitData
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return InitData{}, fmt.Errorf("parse init data: %w", err)
	}

	data := InitData{
		Raw:        raw,
		QueryID:    values.Get("query_id"),
		StartParam: values.Get("start_param"),
		Hash:       values.Get("hash"),
	}
	if userJSON := values.Get("user"); userJSON != "" {
		var user User
		if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
			return InitData{}, fmt.Errorf("decode init data user: %w", err)
		}
		data.User = &user
	}
	if authDate := values.Get("auth_date"); authDate != "" {
		secs, err := strconv.ParseInt(authDate, 10, 64)
		if err != nil {
			return InitData{}, fmt.Errorf("invalid auth_date %q", authDate)
		}
		data.AuthDate = time.Unix(secs, 0).UTC()
	}
	return data, nil
}

// Validate checks the init data signature against the bot token using the
// WebApp data-check-string scheme.
func Validate(raw, botToken string) error {
	values, err := url.ParseQuery(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse init data: %w", err)
	}
	hash := values.Get("hash")
	if hash == "" {
		return ErrMissingHash
	}
	expected, err := hex.DecodeString(hash)
	if err != nil {
		return ErrBadSignature
	}
	if !hmac.Equal(sign(values, botToken), expected) {
		return ErrBadSignature
	}
	return nil
}

func sign(values url.Values, botToken string) []byte {
	keys := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+values.Get(key))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	return mac.Sum(nil)
}

// Sign sets the hash field of values for botToken and returns the encoded
// payload. Local development uses it to fake a Telegram launch.
func Sign(values url.Values, botToken string) string {
	signed := url.Values{}
	for key, vals := range values {
		if key == "hash" {
			continue
		}
		signed[key] = append([]string(nil), vals...)
	}
	signed.Set("hash", hex.EncodeToString(sign(signed, botToken)))
	return signed.Encode()
}
