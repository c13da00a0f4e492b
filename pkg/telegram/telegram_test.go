package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedInitData(t *testing.T, botToken string, values url.Values) string {
	t.Helper()
	return Sign(values, botToken)
}

func TestParseInitData(t *testing.T) {
	raw := url.Values{
		"query_id":  {"AAE"},
		"user":      {`{"id":42,"first_name":"Aziz","username":"aziz"}`},
		"auth_date": {"1767225600"},
		"hash":      {"abc"},
	}.Encode()

	data, err := ParseInitData(raw)
	require.NoError(t, err)
	require.NotNil(t, data.User)
	assert.Equal(t, int64(42), data.User.ID)
	assert.Equal(t, "aziz", data.User.Username)
	assert.Equal(t, "AAE", data.QueryID)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), data.AuthDate)
	assert.Equal(t, raw, data.Raw)
}

func TestParseInitDataErrors(t *testing.T) {
	_, err := ParseInitData("  ")
	require.ErrorIs(t, err, ErrEmptyInitData)

	_, err = ParseInitData("user=%7Bnot-json")
	require.Error(t, err)

	_, err = ParseInitData("auth_date=yesterday")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	const token = "123:bot-token"
	raw := signedInitData(t, token, url.Values{
		"user":      {`{"id":7,"first_name":"Nodira"}`},
		"auth_date": {"1767225600"},
	})

	require.NoError(t, Validate(raw, token))
	require.ErrorIs(t, Validate(raw, "other-token"), ErrBadSignature)
	require.ErrorIs(t, Validate("auth_date=1", token), ErrMissingHash)
	require.ErrorIs(t, Validate("auth_date=1&hash=zz", token), ErrBadSignature)
}

func TestSignMatchesReferenceScheme(t *testing.T) {
	values := url.Values{"b": {"2"}, "a": {"1"}, "hash": {"ignored"}}
	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte("tok"))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte("a=1\nb=2"))
	assert.Equal(t, mac.Sum(nil), sign(values, "tok"))

	encoded := Sign(values, "tok")
	parsed, err := url.ParseQuery(encoded)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), parsed.Get("hash"))
	assert.Equal(t, "ignored", values.Get("hash"), "input must not be mutated")
}

func TestHostReadiness(t *testing.T) {
	host := NewHost("")
	assert.False(t, host.IsReady())
	assert.False(t, host.IsTelegram())
	assert.Nil(t, host.User())

	host.MarkReady()
	host.MarkReady()
	select {
	case <-host.Ready():
	default:
		t.Fatal("ready channel should be closed")
	}
	assert.True(t, host.IsReady())
}

func TestHostSetInitData(t *testing.T) {
	host := NewHost("not a valid %zz payload")
	assert.False(t, host.IsTelegram())

	require.Error(t, host.SetInitData(""))
	require.NoError(t, host.SetInitData(`user={"id":5,"first_name":"A"}&hash=x`))
	assert.True(t, host.IsTelegram())
	require.NotNil(t, host.User())
	assert.Equal(t, int64(5), host.User().ID)
}
