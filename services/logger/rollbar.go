package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/document"
)

// RollbarLogger prints to a std logger and reports to Rollbar.
// Rollbar reporting is off in debug mode.
type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(!conf.Debug && !conf.TestMode && conf.RollbarToken != "")
	return &RollbarLogger{std: std, debug: conf.Debug}
}

// Close waits for pending Rollbar reports.
func (l *RollbarLogger) Close() {
	rollbar.Close()
}

// split pulls the session user out of args.
// expected args: error, map[string]interface{}, document.User
func split(args []interface{}) (usr *document.User, rest []interface{}) {
	rest = make([]interface{}, 0, len(args))
	for _, arg := range args {
		if u, ok := arg.(document.User); ok {
			if usr == nil { // only the first user counts
				usr = &u
			}
			continue
		}
		rest = append(rest, arg)
	}
	return usr, rest
}

func (l *RollbarLogger) report(send func(...interface{}), msg string, args []interface{}) {
	usr, rest := split(args)
	if usr != nil {
		rollbar.SetPerson(usr.ID, usr.Username, "")
	} else {
		rollbar.ClearPerson()
	}
	send(append([]interface{}{msg}, rest...)...)

	// passwords are plaintext: never print the user record itself
	if usr != nil {
		l.std.Printf("%s (user=%s)\n", msg, usr.Username)
	} else {
		l.std.Println(msg)
	}
	for _, arg := range rest {
		l.std.Printf("%+v\n", arg)
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.report(rollbar.Debug, msg, args)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.report(rollbar.Info, msg, args)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.report(rollbar.Warning, msg, args)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.report(rollbar.Error, msg, args)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.Critical, msg, args)
	rollbar.Close()
	l.std.Fatal(msg)
}
