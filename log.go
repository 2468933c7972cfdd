package docquiz

import "log"

var verboseMode bool

// SetVerbose toggles chatty progress logging for the whole package. Off by
// default; the webserver and the CLI wire it to their own flags.
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// VerboseLog is log.Printf gated on the verbose flag.
func VerboseLog(format string, v ...interface{}) {
	if verboseMode {
		log.Printf(format, v...)
	}
}
