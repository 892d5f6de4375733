package tests

import (
	"encoding/json"
	"net/http"
	"reflect"
	"testing"

	. "github.com/trezcool/studylog/apps/api/echo"
	"github.com/trezcool/studylog/core/admin"
	emailsvc "github.com/trezcool/studylog/services/email"
	testutil "github.com/trezcool/studylog/tests"
)

func TestAdminAPI_login(t *testing.T) {
	app := setup(t)
	testutil.CreateAdmin(t, admRepo, "Admin", "admin1", "admin@test.test", "pwd", true)
	testutil.CreateAdmin(t, admRepo, "Gone", "gone01", "gone@test.test", "pwd", false)

	tests := []httpTest{
		{name: "empty payload", body: marchallObj(t, LoginRequest{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			})},
		{name: "unknown admin", body: marchallObj(t, LoginRequest{Username: "nope", Password: "pwd"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"})},
		{name: "wrong password", body: marchallObj(t, LoginRequest{Username: "admin1", Password: "nope"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"})},
		{name: "deactivated account", body: marchallObj(t, LoginRequest{Username: "gone01", Password: "pwd"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/admins/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("login with username", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/admins/login",
			marchallObj(t, LoginRequest{Username: "admin1", Password: "pwd"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("login code = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		var res LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling LoginResponse: %v", err)
		}
		if res.Token == "" {
			t.Error("login returned an empty token")
		}
	})

	t.Run("login with email", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/admins/login",
			marchallObj(t, LoginRequest{Username: "admin@test.test", Password: "pwd"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("login code = %d, want 200: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestAdminAPI_tokenRefresh(t *testing.T) {
	app := setup(t)
	adm := testutil.CreateAdmin(t, admRepo, "Admin", "admin1", "admin@test.test", "pwd", true)
	token := getToken(t, adm)

	req, rec := newRequest(http.MethodPost, "/v1/admins/token-refresh")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, errMissingToken),
	}, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/admins/token-refresh", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("token-refresh code = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var res LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshalling LoginResponse: %v", err)
	}
	if res.Token == "" {
		t.Error("token-refresh returned an empty token")
	}
}

func TestAdminAPI_registerAndList(t *testing.T) {
	app := setup(t)
	adm := testutil.CreateAdmin(t, admRepo, "Admin", "admin1", "admin@test.test", "pwd", true)
	token := getToken(t, adm)

	weak := marchallObj(t, admin.NewAdmin{
		Name: "Second", Username: "admin2", Email: "admin2@test.test",
		Password: "password", PasswordConfirm: "password",
	})
	strong := marchallObj(t, admin.NewAdmin{
		Name: "Second", Username: "admin2", Email: "admin2@test.test",
		Password: "g00d.Pa55word!", PasswordConfirm: "g00d.Pa55word!",
	})

	// un-authed
	req, rec := newRequest(http.MethodPost, "/v1/admins/register", strong)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, errMissingToken),
	}, rec)

	// weak password
	req, rec = newAuthRequest(http.MethodPost, "/v1/admins/register", token, weak)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{
			"password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
		}),
	}, rec)

	// ok
	req, rec = newAuthRequest(http.MethodPost, "/v1/admins/register", token, strong)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register code = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	// duplicate username
	req, rec = newAuthRequest(http.MethodPost, "/v1/admins/register", token, strong)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"username": "an admin with this username already exists"}),
	}, rec)

	// list
	req, rec = newAuthRequest(http.MethodGet, "/v1/admins", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list code = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var admins []admin.Admin
	if err := json.Unmarshal(rec.Body.Bytes(), &admins); err != nil {
		t.Fatalf("unmarshalling admins: %v", err)
	}
	if len(admins) != 2 {
		t.Errorf("admin count = %d, want 2", len(admins))
	}
}

func TestAdminAPI_destroy(t *testing.T) {
	app := setup(t)
	adm := testutil.CreateAdmin(t, admRepo, "Admin", "admin1", "admin@test.test", "pwd", true)
	other := testutil.CreateAdmin(t, admRepo, "Other", "admin2", "admin2@test.test", "pwd", true)
	token := getToken(t, adm)

	// no suicide
	req, rec := newAuthRequest(http.MethodDelete, "/v1/admins/"+adm.ID, token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusForbidden,
		wantData: marchallObj(t, httpErr{Error: "permission denied"}),
	}, rec)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/admins/"+other.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("destroy code = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodDelete, "/v1/admins/"+other.ID, token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "not found"}),
	}, rec)
}

func TestAdminAPI_passwordReset(t *testing.T) {
	app := setup(t)
	adm := testutil.CreateAdmin(t, admRepo, "Admin", "admin1", "admin@test.test", "pwd", true)

	successMsg := "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."

	// unknown emails get the same neutral answer
	req, rec := newRequest(http.MethodPost, "/v1/admins/password-reset",
		marchallObj(t, PasswordResetRequest{Email: "nobody@test.test"}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, SuccessResponse{Success: successMsg}),
	}, rec)

	sent := len(emailsvc.SentMessages)
	req, rec = newRequest(http.MethodPost, "/v1/admins/password-reset",
		marchallObj(t, PasswordResetRequest{Email: adm.Email}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, SuccessResponse{Success: successMsg}),
	}, rec)

	if len(emailsvc.SentMessages) != sent+1 {
		t.Fatalf("sent mails = %d, want %d", len(emailsvc.SentMessages), sent+1)
	}
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	tmplData := reflect.ValueOf(msg.TemplateData)
	uid := tmplData.FieldByName("UID").String()
	resetToken := tmplData.FieldByName("Token").String()
	if uid == "" || resetToken == "" {
		t.Fatal("password reset mail is missing UID or Token")
	}

	// bad token
	req, rec = newRequest(http.MethodPost, "/v1/admins/password-reset-confirm",
		marchallObj(t, admin.ResetAdminPassword{
			UID: uid, Token: "HE4TS-sigsig-sig",
			Password: "n3w.Pa55word!", PasswordConfirm: "n3w.Pa55word!",
		}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "invalid token"}),
	}, rec)

	// ok
	req, rec = newRequest(http.MethodPost, "/v1/admins/password-reset-confirm",
		marchallObj(t, admin.ResetAdminPassword{
			UID: uid, Token: resetToken,
			Password: "n3w.Pa55word!", PasswordConfirm: "n3w.Pa55word!",
		}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, SuccessResponse{Success: "Password has been reset with the new password."}),
	}, rec)

	// the new password now logs in
	req, rec = newRequest(http.MethodPost, "/v1/admins/login",
		marchallObj(t, LoginRequest{Username: adm.Username, Password: "n3w.Pa55word!"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password code = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}
