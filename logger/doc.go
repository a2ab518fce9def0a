// Package logger provides structured logging for scribe using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Job and request ids
// stored on a context are attached by WithContext.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.WithComponent("merger")
//	log.Info("chunk transcribed", logger.Fields(logger.FieldChunk, 2))
package logger
