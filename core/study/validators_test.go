package study

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studylog/core"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestNewSessionValidate(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name    string
		data    NewSession
		wantErr bool
	}{
		{name: "empty", data: NewSession{}, wantErr: true},
		{name: "bad date", data: NewSession{EntryDate: "01/02/2024", Subject: "Math", Hours: 1}, wantErr: true},
		{name: "zero hours", data: NewSession{EntryDate: "2024-01-02", Subject: "Math"}, wantErr: true},
		{name: "negative hours", data: NewSession{EntryDate: "2024-01-02", Subject: "Math", Hours: -1}, wantErr: true},
		{name: "reserved subject", data: NewSession{EntryDate: "2024-01-02", Subject: PlaceholderSubject, Hours: 1}, wantErr: true},
		{name: "valid", data: NewSession{EntryDate: "2024-01-02", Subject: "Math", Hours: 1.5, Topic: "algebra"}},
		{name: "valid without topic", data: NewSession{EntryDate: "2024-01-02", Subject: "Math", Hours: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSessionValidate_cleansInput(t *testing.T) {
	validate := newValidator()

	data := NewSession{EntryDate: " 2024-01-02 ", Subject: "  Math ", Hours: 1, Topic: " algebra  "}
	if err := data.Validate(validate); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if data.EntryDate != "2024-01-02" || data.Subject != "Math" || data.Topic != "algebra" {
		t.Errorf("Validate() did not clean input: %+v", data)
	}
}
