package scraper

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/shelfscan/config"
	"github.com/use-agent/shelfscan/models"
)

// RenderedPage is a snapshot of a page after it has settled.
type RenderedPage struct {
	// URL is the page's final address, after any redirects.
	URL string

	// HTML is the serialized rendered DOM.
	HTML string
}

// Session is one exclusively owned browser process with a single page.
// It is not safe for concurrent use; callers drive it sequentially.
type Session interface {
	// Configure sets the user agent used for every later navigation.
	Configure(ctx context.Context, userAgent string) error

	// Navigate loads url and waits for network quiescence, all bounded by
	// timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// Snapshot returns the current rendered DOM.
	Snapshot(ctx context.Context) (*RenderedPage, error)

	// Close tears the browser down. Only the first call does any work.
	Close() error
}

// Launcher starts fresh browser sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// RodLauncher starts a new Chromium process per session using go-rod.
// Every process gets its own temporary profile directory.
type RodLauncher struct {
	cfg        config.BrowserConfig
	idleWindow time.Duration
}

// NewRodLauncher returns a Launcher that applies cfg to every launch.
// idleWindow is the quiet period Navigate waits for before returning.
func NewRodLauncher(cfg config.BrowserConfig, idleWindow time.Duration) *RodLauncher {
	return &RodLauncher{cfg: cfg, idleWindow: idleWindow}
}

// Launch starts Chromium, connects to it and opens one blank page.
// Any partially started process is torn down before an error is returned.
func (r *RodLauncher) Launch(ctx context.Context) (Session, error) {
	l := applyConfig(launcher.New().Context(ctx), r.cfg)

	controlURL, err := l.Launch()
	if err != nil {
		discardFailedLaunch(l)
		return nil, models.NewScrapeError(models.ErrCodeLaunch, "failed to launch browser", err)
	}
	slog.Debug("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL).NoDefaultDevice()
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, models.NewScrapeError(models.ErrCodeLaunch, "failed to connect to browser", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, models.NewScrapeError(models.ErrCodeLaunch, "failed to open page", err)
	}

	return &rodSession{
		launcher:        l,
		browser:         browser,
		page:            page,
		idleWindow:      r.idleWindow,
		protocolTimeout: r.cfg.ProtocolTimeout,
	}, nil
}

// applyConfig copies the headless mode, binary and Chromium switches of
// cfg onto l. Switches may be written with or without leading dashes and
// carry a value after "=".
func applyConfig(l *launcher.Launcher, cfg config.BrowserConfig) *launcher.Launcher {
	l = l.Headless(cfg.Headless)
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	for _, f := range cfg.Flags {
		name, value, hasValue := strings.Cut(strings.TrimLeft(f, "-"), "=")
		if name == "" {
			continue
		}
		if hasValue {
			l = l.Set(flags.Flag(name), value)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}
	return l
}

// discardFailedLaunch removes what a failed Launch left behind. Cleanup
// waits for the process to exit, so it only runs when a process was
// actually started.
func discardFailedLaunch(l *launcher.Launcher) {
	if l.PID() == 0 {
		return
	}
	l.Kill()
	l.Cleanup()
}

type rodSession struct {
	launcher        *launcher.Launcher
	browser         *rod.Browser
	page            *rod.Page
	idleWindow      time.Duration
	protocolTimeout time.Duration

	closeOnce sync.Once
}

// bound derives an operation context limited by d and by the protocol
// timeout, whichever is shorter.
func (s *rodSession) bound(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 || (s.protocolTimeout > 0 && s.protocolTimeout < d) {
		d = s.protocolTimeout
	}
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (s *rodSession) Configure(ctx context.Context, userAgent string) error {
	opCtx, cancel := s.bound(ctx, 0)
	defer cancel()

	return s.page.Context(opCtx).SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: userAgent,
	})
}

// Navigate returns the raw rod or context error so that retry logic sees
// exactly what failed.
func (s *rodSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	opCtx, cancel := s.bound(ctx, timeout)
	defer cancel()

	p := s.page.Context(opCtx)

	// The idle listener must exist before Navigate or in-flight requests
	// are missed and the wait returns immediately.
	waitIdle := p.WaitRequestIdle(s.idleWindow, nil, nil, []proto.NetworkResourceType{
		proto.NetworkResourceTypeImage,
		proto.NetworkResourceTypeMedia,
		proto.NetworkResourceTypeFont,
	})

	if err := p.Navigate(url); err != nil {
		return err
	}
	waitIdle()

	return opCtx.Err()
}

func (s *rodSession) Snapshot(ctx context.Context) (*RenderedPage, error) {
	opCtx, cancel := s.bound(ctx, 0)
	defer cancel()

	p := s.page.Context(opCtx)
	rawHTML, err := p.HTML()
	if err != nil {
		return nil, err
	}

	finalURL := ""
	if info, infoErr := p.Info(); infoErr == nil {
		finalURL = info.URL
	}
	return &RenderedPage{URL: finalURL, HTML: rawHTML}, nil
}

// Close shuts the browser down and removes its profile directory. It is
// safe on a nil session and after the process has already exited.
func (s *rodSession) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				slog.Debug("browser close returned error, killing process", "error", err)
			}
		}
		if s.launcher != nil {
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
	})
	return nil
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
