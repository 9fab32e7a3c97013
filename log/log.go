package log

import (
	"io"
	"io/ioutil"
	"log"
	"os"
)

const (
	TracePrefix   = "[trace] "
	InfoPrefix    = "[info] "
	WarningPrefix = "[warning] "
	ErrorPrefix   = "[error] "
)

var (
	Trace   *log.Logger
	Info    *log.Logger
	Warning *log.Logger
	Error   *log.Logger
)

func initLog(traceHandle io.Writer, infoHandle io.Writer, warningHandle io.Writer, errorHandle io.Writer) {
	Trace = log.New(traceHandle, TracePrefix, log.Ldate|log.Ltime|log.Lshortfile)
	Info = log.New(infoHandle, InfoPrefix, 0)
	Warning = log.New(warningHandle, WarningPrefix, log.Ldate|log.Ltime)
	Error = log.New(errorHandle, ErrorPrefix, log.Ldate|log.Ltime)
}

// InitLog sets up the leveled loggers. Trace output is discarded
// unless trace is true or SIGINSPECT_TRACE is set to 1.
func InitLog(trace bool) {
	traceHandle := ioutil.Discard
	if trace || os.Getenv("SIGINSPECT_TRACE") == "1" {
		traceHandle = os.Stdout
	}

	initLog(traceHandle, os.Stdout, os.Stdout, os.Stderr)
}

func init() {
	InitLog(false)
}
