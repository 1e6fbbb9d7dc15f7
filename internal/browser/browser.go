// Package browser opens URLs in the user's default web browser.
//
// Opening is fire and forget: the browser process is started and never
// waited on, so a slow or broken browser cannot stall a scan.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Opener launches a web browser for report permalinks. Command lookup
// and process start are injectable for tests.
type Opener struct {
	goos     string
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
}

// New returns an Opener wired to the real exec package.
func New() *Opener {
	return &Opener{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Open starts the default browser for rawURL and returns without
// waiting for it to exit.
func (o *Opener) Open(rawURL string) error {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return fmt.Errorf("empty URL")
	}

	for _, cand := range o.candidates(url) {
		path, err := o.lookPath(cand.name)
		if err != nil || strings.TrimSpace(path) == "" {
			continue
		}
		return o.start(path, cand.args...)
	}
	return fmt.Errorf("no opener command found for %s", o.goos)
}

type openerCommand struct {
	name string
	args []string
}

func (o *Opener) candidates(url string) []openerCommand {
	switch o.goos {
	case "darwin":
		return []openerCommand{{"open", []string{url}}}
	case "windows":
		return []openerCommand{{"rundll32", []string{"url.dll,FileProtocolHandler", url}}}
	default:
		return []openerCommand{
			{"xdg-open", []string{url}},
			{"sensible-browser", []string{url}},
		}
	}
}

// Open launches the default browser for rawURL on the current platform.
func Open(rawURL string) error {
	return New().Open(rawURL)
}
