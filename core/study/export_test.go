package study_test

import (
	"context"
	"strings"
	"testing"

	testutil "github.com/trezcool/studylog/tests"
)

func TestExportHTML(t *testing.T) {
	svc, sessRepo, _ := setup(t)
	ctx := context.Background()

	testutil.CreateSession(t, sessRepo, "2024-01-01", "Math", 2, "algebra")
	testutil.CreateSession(t, sessRepo, "2024-01-03", "Physics", 1.5, "optics")

	doc, err := svc.ExportHTML(ctx)
	if err != nil {
		t.Fatalf("ExportHTML() failed: %v", err)
	}
	html := string(doc)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"StudyLog",
		"2024-01-01",
		"2024-01-03",
		"Math",
		"Physics",
		"No Study", // the gap row makes it into the printable doc
		"algebra",
		"optics",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("ExportHTML() missing %q", want)
		}
	}
	if strings.Contains(html, "{{") {
		t.Error("ExportHTML() left unrendered template actions")
	}
}

func TestExportHTML_emptyLog(t *testing.T) {
	svc, _, _ := setup(t)

	doc, err := svc.ExportHTML(context.Background())
	if err != nil {
		t.Fatalf("ExportHTML() failed: %v", err)
	}
	if !strings.Contains(string(doc), "<!DOCTYPE html>") {
		t.Error("ExportHTML() did not render a document for an empty log")
	}
}
