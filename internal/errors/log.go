package errors

import (
	"fmt"

	"github.com/tliron/commonlog"

	"secrecc/internal/ast"
)

// Severity mirrors the five CompileLogMessage levels of the original
// compiler's diagnostic log: Fatal, Error, Warning, Info, Debug.
type Severity int

const (
	SeverityFatal Severity = iota
	SeverityError
	SeverityWarning
	SeverityInfo
	SeverityDebug
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "FATAL"
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARN "
	case SeverityInfo:
		return "INFO "
	case SeverityDebug:
		return "DEBUG"
	default:
		return "?"
	}
}

// Message is one entry appended to a CompileLog.
type Message struct {
	Severity Severity
	Text     string
	Code     string
	Pos      ast.Position
}

// CompileLog accumulates every diagnostic produced while checking,
// instantiating, lowering, and optimizing one compilation unit. Fatal and
// Error messages stop the pipeline from producing output (spec.md section
// 7: three-valued status OK/ERROR_CONTINUE/ERROR_FATAL); Warning/Info/Debug
// never do. Info and Debug messages are additionally forwarded to a
// commonlog logger for compiler-internal tracing, while Fatal/Error/Warning
// are meant to be rendered to the user through Reporter.
type CompileLog struct {
	messages []Message
	logger   commonlog.Logger
}

// NewCompileLog creates a log that forwards Info/Debug messages to the
// named commonlog logger (commonlog.Configure must have been called once
// at process startup).
func NewCompileLog(loggerName string) *CompileLog {
	return &CompileLog{logger: commonlog.GetLogger(loggerName)}
}

func (l *CompileLog) append(sev Severity, code string, pos ast.Position, format string, args ...interface{}) {
	msg := Message{Severity: sev, Code: code, Pos: pos, Text: fmt.Sprintf(format, args...)}
	l.messages = append(l.messages, msg)
	if l.logger == nil {
		return
	}
	switch sev {
	case SeverityInfo:
		l.logger.Infof(msg.Text)
	case SeverityDebug:
		l.logger.Debugf(msg.Text)
	}
}

func (l *CompileLog) Fatal(pos ast.Position, code, format string, args ...interface{}) {
	l.append(SeverityFatal, code, pos, format, args...)
}

func (l *CompileLog) Error(pos ast.Position, code, format string, args ...interface{}) {
	l.append(SeverityError, code, pos, format, args...)
}

func (l *CompileLog) Warning(pos ast.Position, code, format string, args ...interface{}) {
	l.append(SeverityWarning, code, pos, format, args...)
}

func (l *CompileLog) Info(format string, args ...interface{}) {
	l.append(SeverityInfo, "", ast.Position{}, format, args...)
}

func (l *CompileLog) Debug(format string, args ...interface{}) {
	l.append(SeverityDebug, "", ast.Position{}, format, args...)
}

func (l *CompileLog) Messages() []Message { return l.messages }

// HasErrors reports whether any Fatal or Error message was logged —
// the signal the checker/codegen/optimizer use to decide whether to keep
// going (ERROR_CONTINUE) or stop (ERROR_FATAL), per spec.md section 7.
func (l *CompileLog) HasErrors() bool {
	for _, m := range l.messages {
		if m.Severity == SeverityFatal || m.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasFatal reports whether any Fatal message was logged.
func (l *CompileLog) HasFatal() bool {
	for _, m := range l.messages {
		if m.Severity == SeverityFatal {
			return true
		}
	}
	return false
}
