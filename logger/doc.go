// Package logger provides structured logging for diarkit using zerolog.
//
// Diagnostics go to stderr by default so that stdout stays free for command
// output. Loggers are scoped per component and carry the run ID of the
// current invocation when one is stored in the context.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//	  components:
//	    hub: "debug"
//
// # Usage
//
//	log := logger.Get("hub")
//	log.Info("model cached", logger.Fields("model", name, "path", path))
package logger
