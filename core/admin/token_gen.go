package admin

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/studylog/core"
)

// Stateless day-stamped password reset tokens: an HMAC over the admin's
// mutable attributes, so resetting the password (or logging in) invalidates
// outstanding tokens without any server-side storage.

var (
	salt                      = []byte("studylog.core.admin.token_gen")
	secretKey                 []byte
	passwordResetTimeoutDelta time.Duration
	nowFunc                   = time.Now // mockable

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

func initTokenGen(conf *core.Config) {
	secretKey = []byte(conf.SecretKey)
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
}

// EncodeUID base64 encodes given Admin ID
func EncodeUID(adm Admin) string {
	return base64.RawURLEncoding.EncodeToString([]byte(adm.ID))
}

// decodeUID base64 decodes given UID
func decodeUID(uid string) (string, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(idBytes), nil
}

// makeToken generates a password reset token for a given Admin.
func makeToken(adm Admin) string {
	return makeTokenWithTimestamp(adm, numDaysSince2001(nowFunc()))
}

// verifyToken checks that a password reset token for a given Admin is valid.
func verifyToken(adm Admin, token string) error {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return errInvalidToken
	}

	tsBytes, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(parts[0])
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(tsBytes))
	if err != nil {
		return errInvalidToken
	}

	expected := makeTokenWithTimestamp(adm, ts)
	if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		return errInvalidToken
	}

	if numDaysSince2001(nowFunc())-ts > int(math.Ceil(passwordResetTimeoutDelta.Hours()/24)) {
		return errTokenExpired
	}
	return nil
}

func makeTokenWithTimestamp(adm Admin, ts int) string {
	tsB32 := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(strconv.Itoa(ts)))
	return fmt.Sprintf("%s-%s", tsB32, sign(hashValue(adm, ts)))
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

func sign(val []byte) string {
	key := sha256.Sum256(append(salt, secretKey...))
	h := hmac.New(sha256.New, key[:])
	h.Write(val)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func hashValue(adm Admin, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(adm.ID)
	val.Write(adm.PasswordHash)
	if !adm.LastLogin.IsZero() {
		val.WriteString(adm.LastLogin.String())
	}
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
