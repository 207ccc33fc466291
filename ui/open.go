package ui

import (
	"fmt"

	"github.com/pkg/browser"
)

var openBrowser = browser.OpenURL

// OpenURL hands url to the platform's default browser.
func OpenURL(url string) error {
	if err := openBrowser(url); err != nil {
		return fmt.Errorf("ui: open %s: %w", url, err)
	}
	return nil
}
