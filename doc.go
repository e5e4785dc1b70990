// Package console provides a RoadRunner-style plugin that audits the browser console
// after every test and fails the run on console warnings or errors.
//
// The [Plugin] type implements the endure plugin lifecycle (Init, Serve, Stop, Name,
// Weight, Collects). The host test runner calls [Plugin.Teardown] once per finished test;
// the plugin audits the browser log through the [consolelog] package, merges the result
// into the run report it owns and returns a snapshot of that report. Configuration is
// read from the .rr.yaml file under the "console" key.
//
// The plugin declares the following dependency-injection interfaces:
//   - [Logger] — provides a named *zap.Logger instance.
//   - [Configurer] — unmarshals configuration sections and checks their existence.
//   - [Source] — an optional plugin supplying the browser log. Without one the plugin
//     attaches to Chrome through chromedp using the "chrome" section.
//   - [Tracer] — supplies an OpenTelemetry TracerProvider for distributed tracing.
//
// Optionally each non-empty test report is published to Kafka ([kafkasink]) and the run
// report is served over HTTP at GET /report.
package console
