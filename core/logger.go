package core

// Logger is any service that can log leveled messages.
// Extra args provide context; an admin.Admin arg tags the offending account where supported.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
