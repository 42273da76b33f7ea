package driver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/spindle/config"
	"github.com/use-agent/spindle/models"
)

// RodSession drives a local Chromium instance. It is safe for
// concurrent use; pages opened from it are not.
type RodSession struct {
	cfg      config.SpiderConfig
	state    atomic.Int32
	startMu  sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodSession creates a session without starting the browser. The
// process launches lazily on the first Start or NewPage call.
func NewRodSession(cfg config.SpiderConfig) *RodSession {
	return &RodSession{cfg: cfg}
}

// Start launches the browser and connects to it. Calling Start on an
// already active session is a no-op; after Close the session is back
// to inactive and Start launches a fresh browser.
func (s *RodSession) Start(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	if State(s.state.Load()) == StateActive {
		return nil
	}
	s.state.Store(int32(StateStarting))

	l := launcher.New().
		Headless(s.cfg.Headless).
		NoSandbox(s.cfg.NoSandbox)
	if s.cfg.BrowserBin != "" {
		l = l.Bin(s.cfg.BrowserBin)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		s.state.Store(int32(StateInactive))
		return models.NewCrawlError(models.ErrCodeSession, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL, "headless", s.cfg.Headless)

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		s.state.Store(int32(StateInactive))
		return models.NewCrawlError(models.ErrCodeSession, "failed to connect to browser", err)
	}

	s.launcher = l
	s.browser = browser
	s.state.Store(int32(StateActive))
	return nil
}

// Active reports whether the session can currently open pages.
func (s *RodSession) Active() bool {
	return State(s.state.Load()) == StateActive
}

// NewPage opens a fresh tab with the configured viewport, user agent
// and stealth script installed.
func (s *RodSession) NewPage(ctx context.Context) (Page, error) {
	if !s.Active() {
		if err := s.Start(ctx); err != nil {
			return nil, err
		}
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeSession, "failed to open page", err)
	}

	if s.cfg.ViewportWidth > 0 && s.cfg.ViewportHeight > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:  s.cfg.ViewportWidth,
			Height: s.cfg.ViewportHeight,
		}); err != nil {
			slog.Warn("failed to set viewport", "error", err)
		}
	}
	if s.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: s.cfg.UserAgent,
		}); err != nil {
			slog.Warn("failed to set user agent", "error", err)
		}
	}
	if s.cfg.StealthMode {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}

	return &rodPage{page: page, cfg: s.cfg}, nil
}

// Close tears the session down: open pages first, then the browser
// connection, then the launched process. Failures at one step are
// logged and the remaining steps still run. The session ends up
// inactive, so a later Start relaunches the browser.
func (s *RodSession) Close() error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	prev := State(s.state.Swap(int32(StateClosing)))
	if prev != StateActive {
		s.state.Store(int32(StateInactive))
		return nil
	}

	if pages, err := s.browser.Pages(); err == nil {
		for _, p := range pages {
			if err := p.Close(); err != nil {
				slog.Warn("failed to close page during shutdown", "error", err)
			}
		}
	} else {
		slog.Warn("failed to enumerate pages during shutdown", "error", err)
	}

	if err := s.browser.Close(); err != nil {
		slog.Warn("failed to close browser connection", "error", err)
	}

	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	s.browser = nil
	s.launcher = nil
	s.state.Store(int32(StateInactive))
	slog.Info("browser session closed")
	return nil
}

type rodPage struct {
	page *rod.Page
	cfg  config.SpiderConfig
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	bound := p.page.Context(ctx).Timeout(p.cfg.TimeoutDuration())
	if err := bound.Navigate(url); err != nil {
		return categorizeError(err, "navigation failed")
	}
	return nil
}

func (p *rodPage) WaitReady(ctx context.Context) error {
	bound := p.page.Context(ctx).Timeout(p.cfg.TimeoutDuration())

	var err error
	switch p.cfg.WaitForLoad {
	case "load":
		err = bound.WaitLoad()
	case "networkidle":
		wait := bound.WaitRequestIdle(300*time.Millisecond, nil, nil, nil)
		wait()
	default:
		// domcontentloaded: accept the DOM once mutations settle.
		err = bound.WaitDOMStable(300*time.Millisecond, 0.1)
	}
	if err != nil {
		return categorizeError(err, "page did not reach ready state")
	}
	return nil
}

func (p *rodPage) Eval(ctx context.Context, js string, out any) error {
	bound := p.page.Context(ctx).Timeout(p.cfg.TimeoutDuration())
	res, err := bound.Eval(js)
	if err != nil {
		return categorizeError(err, "script evaluation failed")
	}
	if out == nil {
		return nil
	}
	return decodeResult(res.Value, out)
}

// decodeResult re-marshals a CDP result value into the caller's type.
func decodeResult(v gson.JSON, out any) error {
	if err := json.Unmarshal([]byte(v.JSON("", "")), out); err != nil {
		return models.NewCrawlError(models.ErrCodeExtraction, "failed to decode script result", err)
	}
	return nil
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	bound := p.page.Context(ctx).Timeout(p.cfg.TimeoutDuration())
	html, err := bound.HTML()
	if err != nil {
		return "", categorizeError(err, "failed to read page HTML")
	}
	return html, nil
}

func (p *rodPage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

// categorizeError wraps raw errors into typed CrawlErrors so the layers
// above can tell a timeout from a hard navigation failure.
func categorizeError(err error, msg string) *models.CrawlError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewCrawlError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewCrawlError(models.ErrCodeTimeout, "operation canceled", err)
	default:
		return models.NewCrawlError(models.ErrCodeNavigation, msg, err)
	}
}
