package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
)

// InitDataUser is the `user` field of a Mini-App login payload.
type InitDataUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// VerifyInitData checks the signature of a Telegram WebApp initData payload.
// The check string is every key=value pair except hash, sorted by key and
// joined with newlines; the secret key is HMAC-SHA256("WebAppData", botToken).
func VerifyInitData(raw string, botToken string) bool {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return false
	}

	hash := values.Get("hash")
	if hash == "" {
		return false
	}
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(hash))
}

// ParseUser extracts the signed user object from initData. Call only after
// VerifyInitData has accepted the payload.
func ParseUser(raw string) (InitDataUser, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return InitDataUser{}, err
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return InitDataUser{}, errors.New("initData has no user field")
	}

	var user InitDataUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return InitDataUser{}, err
	}
	if user.ID == 0 {
		return InitDataUser{}, errors.New("initData user has no id")
	}

	return user, nil
}
