// Package consolelog implements the browser console auditor used by the console plugin.
//
// The [Auditor] type fetches a browser log snapshot from a [Source] once per test,
// partitions it into warnings (WARNING) and errors (SEVERE), drops entries matched by
// the configured exclude [Rule]s and returns a fresh [Report] for the test.
//
// Exclude rules are decided once at configuration time:
//   - a plain string matches by substring containment;
//   - a string written as /expr/ or /expr/flags is compiled to a regular expression
//     and matches anywhere in the message.
//
// [ChromeSource] is a [Source] backed by the Chrome DevTools Protocol (chromedp). It
// buffers console API calls, Log domain entries and uncaught exceptions and drains the
// buffer on every GetLog call.
package consolelog
