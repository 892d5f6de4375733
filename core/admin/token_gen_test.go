package admin

import (
	"testing"
	"time"
)

func TestMakeVerifyToken(t *testing.T) {
	secretKey = []byte("secret")
	passwordResetTimeoutDelta = 3 * 24 * time.Hour

	now := time.Now()
	adm := Admin{
		ID:        "f9b7e26a-4713-4a5a-9f9c-7a27b9a3b0ee",
		Name:      "T",
		Username:  "tadmin",
		Email:     "t@test.test",
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	adm.SetActive(true)
	_ = adm.SetPassword("pwd")

	validToken := makeToken(adm)

	// generate an expired token
	dayLate := passwordResetTimeoutDelta + (24 * time.Hour)
	nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := makeToken(adm)
	nowFunc = time.Now // reset

	tests := []struct {
		name    string
		adm     Admin
		token   string
		wantErr error
	}{
		{name: "no token", adm: adm, wantErr: errInvalidToken},
		{name: "invalid parts len", adm: adm, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", adm: adm, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", adm: adm, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", adm: adm, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "expired token", adm: adm, token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", adm: adm, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := verifyToken(tt.adm, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	adm := Admin{ID: "0b41d0bb-b595-4c05-a59f-9db9498eae54"}

	uid := EncodeUID(adm)
	if uid == adm.ID {
		t.Errorf("EncodeUID() did not encode: %s", uid)
	}

	id, err := decodeUID(uid)
	if err != nil {
		t.Fatalf("decodeUID() failed: %v", err)
	}
	if id != adm.ID {
		t.Errorf("decodeUID() = %s, want %s", id, adm.ID)
	}
}
