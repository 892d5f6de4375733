package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/trezcool/studylog/core/study"
	testutil "github.com/trezcool/studylog/tests"
)

func TestStudyAPI_sessionWrites_adminGated(t *testing.T) {
	app := setup(t)

	body := marchallObj(t, study.NewSession{EntryDate: "2024-01-01", Subject: "Math", Hours: 2})

	tests := []httpTest{
		{name: "add: no token", method: http.MethodPost, path: "/v1/study/sessions", body: body,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "delete: no token", method: http.MethodDelete, path: "/v1/study/sessions/some-id",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "add subject: no token", method: http.MethodPost, path: "/v1/study/subjects",
			body:     marchallObj(t, study.NewSubject{Name: "Math"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestStudyAPI_sessions(t *testing.T) {
	app := setup(t)
	adm := testutil.CreateAdmin(t, admRepo, "Admin", "admin1", "admin@test.test", "pwd", true)
	token := getToken(t, adm)

	listSessions := func(t *testing.T, path string) []study.Session {
		t.Helper()
		req, rec := newRequest(http.MethodGet, path)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s code = %d, want 200", path, rec.Code)
		}
		var sessions []study.Session
		if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
			t.Fatalf("unmarshalling sessions: %v", err)
		}
		return sessions
	}

	// empty log
	if sessions := listSessions(t, "/v1/study/sessions"); len(sessions) != 0 {
		t.Errorf("empty log returned %d sessions", len(sessions))
	}

	// invalid payload
	req, rec := newAuthRequest(http.MethodPost, "/v1/study/sessions", token, marchallObj(t, study.NewSession{}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{
			"entry_date": "this field is required",
			"subject":    "this field is required",
			"hours":      "this field is required",
		}),
	}, rec)

	// reserved subject
	req, rec = newAuthRequest(http.MethodPost, "/v1/study/sessions", token,
		marchallObj(t, study.NewSession{EntryDate: "2024-01-01", Subject: study.PlaceholderSubject, Hours: 1}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"subject": "this subject name is reserved"}),
	}, rec)

	// record two sessions two days apart
	req, rec = newAuthRequest(http.MethodPost, "/v1/study/sessions", token,
		marchallObj(t, study.NewSession{EntryDate: "2024-01-01", Subject: "Math", Hours: 2, Topic: "algebra"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add session code = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/study/sessions", token,
		marchallObj(t, study.NewSession{EntryDate: "2024-01-03", Subject: "Physics", Hours: 1.5, Topic: "optics"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add session code = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	// the gap date comes back as a placeholder, renumbered
	sessions := listSessions(t, "/v1/study/sessions")
	if len(sessions) != 3 {
		t.Fatalf("session count = %d, want 3", len(sessions))
	}
	for i, sess := range sessions {
		if sess.DayNumber != i {
			t.Errorf("sessions[%d].DayNumber = %d, want %d", i, sess.DayNumber, i)
		}
	}
	if !sessions[1].IsPlaceholder() || sessions[1].EntryDate.String() != "2024-01-02" {
		t.Errorf("sessions[1] = %+v, want a 2024-01-02 placeholder", sessions[1])
	}

	// explicit ordering
	ordered := listSessions(t, "/v1/study/sessions?ordering=-entry_date")
	if len(ordered) != 3 {
		t.Fatalf("ordered session count = %d, want 3", len(ordered))
	}
	if ordered[0].EntryDate.String() != "2024-01-03" {
		t.Errorf("ordered[0].EntryDate = %s, want 2024-01-03", ordered[0].EntryDate)
	}

	// deleting the trailing real session trims its date
	req, rec = newAuthRequest(http.MethodDelete, "/v1/study/sessions/"+sessions[2].ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete session code = %d, want 204: %s", rec.Code, rec.Body.String())
	}
	if remaining := listSessions(t, "/v1/study/sessions"); len(remaining) != 1 {
		t.Errorf("session count after delete = %d, want 1", len(remaining))
	}

	// unknown session
	req, rec = newAuthRequest(http.MethodDelete, "/v1/study/sessions/"+sessions[2].ID, token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "not found"}),
	}, rec)
}

func TestStudyAPI_summary(t *testing.T) {
	app := setup(t)

	testutil.CreateSession(t, sessRepo, "2024-01-01", "Math", 2, "algebra")
	testutil.CreateSession(t, sessRepo, "2024-01-03", "Math", 2, "calculus")
	testutil.CreateSession(t, sessRepo, "2024-01-03", "Physics", 1, "optics")

	req, rec := newRequest(http.MethodGet, "/v1/study/summary")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary code = %d, want 200", rec.Code)
	}

	var summaries []study.SubjectSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("unmarshalling summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("summary count = %d, want 2", len(summaries))
	}
	if summaries[0].Subject != "Math" || summaries[0].Hours != 4 || summaries[0].Sessions != 2 {
		t.Errorf("summaries[0] = %+v, want Math 4h over 2 sessions", summaries[0])
	}
}

func TestStudyAPI_export(t *testing.T) {
	app := setup(t)

	testutil.CreateSession(t, sessRepo, "2024-01-01", "Math", 2, "algebra")

	req, rec := newRequest(http.MethodGet, "/v1/study/export")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("export code = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("export Content-Type = %s, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "Math") {
		t.Error("export does not include the recorded session")
	}
}

func TestStudyAPI_subjects(t *testing.T) {
	app := setup(t)
	adm := testutil.CreateAdmin(t, admRepo, "Admin", "admin1", "admin@test.test", "pwd", true)
	token := getToken(t, adm)

	// create
	req, rec := newAuthRequest(http.MethodPost, "/v1/study/subjects", token,
		marchallObj(t, study.NewSubject{Name: "Math"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create subject code = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var sub study.Subject
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("unmarshalling subject: %v", err)
	}

	// duplicate name (case-insensitive)
	req, rec = newAuthRequest(http.MethodPost, "/v1/study/subjects", token,
		marchallObj(t, study.NewSubject{Name: "math"}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"name": "a subject with this name already exists"}),
	}, rec)

	// list is public
	req, rec = newRequest(http.MethodGet, "/v1/study/subjects")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, []study.Subject{sub}),
	}, rec)

	// delete
	req, rec = newAuthRequest(http.MethodDelete, "/v1/study/subjects/"+sub.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete subject code = %d, want 204: %s", rec.Code, rec.Body.String())
	}
	req, rec = newAuthRequest(http.MethodDelete, "/v1/study/subjects/"+sub.ID, token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "not found"}),
	}, rec)
}
