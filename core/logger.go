package core

// Logger is any leveled logging service.
// Implementations may inspect args for values they know how to enrich
// reports with (eg. a teacher.Teacher to tag the affected account).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
