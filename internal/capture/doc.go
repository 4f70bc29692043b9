// Package capture renders a generated document in an isolated headless
// browser and samples it into a numbered image sequence.
//
// The Engine writes the markup to <workdir>/index.html, opens it at a fixed
// viewport, waits for the network to go idle, then captures fps*duration
// screenshots named frame_%05d.<ext> so lexical order is temporal order. The
// browser is closed on every exit path. Browser access goes through the
// Launcher/Browser/Page interfaces; the go-rod implementation lives in rod.go.
package capture
