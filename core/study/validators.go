package study

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studylog/core"
)

var (
	reservedSubjectTag  = "reservedsubject"
	reservedSubjectText = "this subject name is reserved"
)

// InitValidators registers the study-specific validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(sessionStructValidation, NewSession{})
	validate.RegisterStructValidation(subjectStructValidation, NewSubject{})
	core.RegisterCustomTranslation(validate, translator, reservedSubjectTag, reservedSubjectText)
}

// sessionStructValidation keeps the placeholder subject reserved: real sessions
// may not be recorded under it.
func sessionStructValidation(sl validator.StructLevel) {
	ns := sl.Current().Interface().(NewSession)
	if ns.Subject == PlaceholderSubject {
		sl.ReportError(ns.Subject, "subject", "Subject", reservedSubjectTag, "")
	}
}

func subjectStructValidation(sl validator.StructLevel) {
	nsub := sl.Current().Interface().(NewSubject)
	if nsub.Name == PlaceholderSubject {
		sl.ReportError(nsub.Name, "name", "Name", reservedSubjectTag, "")
	}
}
