// Package mocklogger provides an observable zap logger plugin for endure-based tests.
//
// [ZapLoggerMock] implements the endure plugin interface (Init, Serve, Stop, Provides,
// Weight) and supplies named *zap.Logger instances. [ZapTestLogger] returns the plugin
// together with the zaptest [observer.ObservedLogs] collecting every entry.
package mocklogger
