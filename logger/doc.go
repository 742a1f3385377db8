// Package logger provides structured logging for apiq on top of zerolog.
//
// The client library logs at debug level by default and stays silent unless
// a caller hands it a configured logger:
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "console"}, "apiq")
//	c, _ := client.New(client.Config{BaseURL: url, Logger: log})
//
// Nop returns a logger that discards everything.
package logger
