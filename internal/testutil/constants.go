// Package testutil provides shared constants and a fake WebDriver remote end for tests.
package testutil

const (
	// TestError is a generic error message for test error scenarios.
	TestError = "test error"

	// TestConnectionRefused is the network error text for refused connections.
	TestConnectionRefused = "connection refused"
)

const (
	// TestHost is the standard localhost hostname for test environments.
	TestHost = "localhost"

	// TestClosedPortURL points at a port nothing listens on; dialing it is refused.
	TestClosedPortURL = "http://127.0.0.1:1/session"

	// TestUnresolvableURL uses the reserved .invalid TLD so DNS lookups fail.
	TestUnresolvableURL = "http://webdriver.invalid:4444/session"
)

const (
	// TestPageURL is the navigation target used by url command tests.
	TestPageURL = "https://example.test/login?next=/home&lang=en"

	// TestBrowserName is the browserName capability sent when creating sessions.
	TestBrowserName = "chrome"
)
