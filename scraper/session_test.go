package scraper

import (
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/stretchr/testify/assert"

	"github.com/use-agent/shelfscan/config"
)

func TestApplyConfig_Flags(t *testing.T) {
	cfg := config.BrowserConfig{
		Headless:   false,
		BrowserBin: "/opt/chromium/chrome",
		Flags:      []string{"no-sandbox", "--disable-gpu", "window-position=0,0", "--", ""},
	}

	l := applyConfig(launcher.New(), cfg)
	args := l.FormatArgs()

	assert.Contains(t, args, "--no-sandbox")
	assert.Contains(t, args, "--disable-gpu")
	assert.Contains(t, args, "--window-position=0,0")
	assert.False(t, l.Has(flags.Headless))
	assert.NotContains(t, args, "--")
	assert.Equal(t, "/opt/chromium/chrome", l.Get(flags.Bin))
}

func TestApplyConfig_DefaultsAreLaunchable(t *testing.T) {
	cfg := config.BrowserConfig{Headless: true, Flags: config.DefaultBrowserFlags}

	l := applyConfig(launcher.New(), cfg)
	args := l.FormatArgs()

	assert.True(t, l.Has(flags.Headless))
	for _, want := range []string{"--no-sandbox", "--disable-dev-shm-usage", "--single-process", "--ignore-certificate-errors"} {
		assert.Contains(t, args, want)
	}
}

func TestDiscardFailedLaunch_NeverStarted(t *testing.T) {
	done := make(chan struct{})
	go func() {
		discardFailedLaunch(launcher.New())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup of a launcher without a process must not block")
	}
}
