package study

import (
	"bytes"
	"context"
	"fmt"
	htmltmpl "html/template"
	"path"
	"sync"
	"time"

	"github.com/pkg/errors"

	appfs "github.com/trezcool/studylog/fs"
)

var (
	exportTmpl     *htmltmpl.Template
	exportTmplErr  error
	exportTmplInit sync.Once
)

type exportData struct {
	AppName       string
	GeneratedAt   string
	FirstDate     string
	LastDate      string
	Sessions      []Session
	Summaries     []SubjectSummary
	TotalSessions int
	TotalHours    float64
}

// ExportHTML builds a self-contained printable HTML document from the current
// session list (resynced first, like any other load). Nothing is persisted;
// the caller serves the bytes and the browser does the printing.
func (svc *service) ExportHTML(ctx context.Context) ([]byte, error) {
	exportTmplInit.Do(parseExportTemplate)
	if exportTmplErr != nil {
		return nil, errors.Wrap(exportTmplErr, "parsing export template")
	}

	sessions, err := svc.LoadSessions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading sessions")
	}
	summaries, err := svc.Summary(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "summarizing sessions")
	}

	data := exportData{
		AppName:     svc.conf.AppName,
		GeneratedAt: time.Now().UTC().Format("2006-01-02 15:04 MST"),
		Sessions:    sessions,
		Summaries:   summaries,
	}
	if len(sessions) > 0 {
		data.FirstDate = sessions[0].EntryDate.String()
		data.LastDate = sessions[len(sessions)-1].EntryDate.String()
	}
	for _, sum := range summaries {
		data.TotalSessions += sum.Sessions
		data.TotalHours += sum.Hours
	}

	var buff bytes.Buffer
	if err := exportTmpl.ExecuteTemplate(&buff, "study-log", data); err != nil {
		return nil, errors.Wrap(err, "rendering export")
	}
	return buff.Bytes(), nil
}

func parseExportTemplate() {
	exportTmpl, exportTmplErr = htmltmpl.
		New("export").
		Funcs(htmltmpl.FuncMap{
			"pct": func(share float64) string { return fmt.Sprintf("%.0f%%", share*100) },
		}).
		ParseFS(appfs.FS, path.Join("assets", "templates", "export", "study-log.gohtml"))
}
