// Package logging provides file-based structured logging with rotation for
// factcheck. Logs are JSON lines written to ~/.factcheck/logs/client.log so
// that the interactive browser never writes to the terminal it draws on.
// The --debug flag lowers the level to debug and mirrors plain commands'
// logs to stderr.
package logging
