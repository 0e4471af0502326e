// File: internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formflood/internal/config"
)

// Session owns one isolated Chrome instance and tab for the lifetime of a
// single submission attempt. It is never shared or reused across attempts;
// reuse would leak page state between otherwise-independent trials.
type Session struct {
	id     string
	cfg    *config.Config
	logger *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// urlPollInterval is how often the confirmation wait samples the page URL.
const urlPollInterval = 100 * time.Millisecond

// NewSession launches a dedicated Chrome process and opens a tab. The caller
// owns the returned Session and must release it with Close on every path.
func NewSession(parent context.Context, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	sessionID := uuid.New().String()
	log := logger.Named("session").With(zap.String("session_id", sessionID))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Browser.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.NoSandbox,
	)
	opts = append(opts, extraFlags(cfg.Browser.Args)...)

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(log.Sugar().Debugf),
		chromedp.WithErrorf(log.Sugar().Errorf),
	)

	s := &Session{
		id:          sessionID,
		cfg:         cfg,
		logger:      log,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         ctx,
		cancel:      cancel,
	}

	// Force the browser process to start now so launch failures surface here
	// instead of inside the first navigation.
	startCtx, startCancel := context.WithTimeout(ctx, cfg.Network.NavigationTimeout)
	defer startCancel()
	if err := chromedp.Run(startCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	log.Debug("Browser session started")
	return s, nil
}

// ID returns the session correlation ID.
func (s *Session) ID() string {
	return s.id
}

// run executes chromedp actions against this session's tab, honoring both
// the caller's context and the given per-operation timeout.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, opCancel := combineContext(s.ctx, ctx)
	defer opCancel()
	runCtx, cancel := context.WithTimeout(opCtx, timeout)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the URL and waits for the document body to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating", zap.String("url", url))
	err := s.run(ctx, s.cfg.Network.NavigationTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// Nodes returns all elements matching the CSS selector on the full page.
// An empty result is not an error.
func (s *Session) Nodes(ctx context.Context, selector string) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, s.cfg.Network.OpTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("query %q failed: %w", selector, err)
	}
	return nodes, nil
}

// NodesFrom returns all elements matching the selector within root's subtree.
func (s *Session) NodesFrom(ctx context.Context, selector string, root *cdp.Node) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, s.cfg.Network.OpTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.FromNode(root), chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("scoped query %q failed: %w", selector, err)
	}
	return nodes, nil
}

// TextFrom reads the visible text of the first selector match under root.
// Returns "" when nothing matches.
func (s *Session) TextFrom(ctx context.Context, selector string, root *cdp.Node) (string, error) {
	var text string
	err := s.run(ctx, s.cfg.Network.OpTimeout,
		chromedp.Text(selector, &text, chromedp.ByQuery, chromedp.FromNode(root), chromedp.AtLeast(0)),
	)
	if err != nil {
		return "", fmt.Errorf("text read %q failed: %w", selector, err)
	}
	return text, nil
}

// ClickNode scrolls the node into view and clicks it. Off-screen options are
// not interactable without the scroll.
func (s *Session) ClickNode(ctx context.Context, node *cdp.Node) error {
	ids := []cdp.NodeID{node.NodeID}
	err := s.run(ctx, s.cfg.Network.OpTimeout,
		chromedp.ScrollIntoView(ids, chromedp.ByNodeID),
		chromedp.Click(ids, chromedp.ByNodeID),
	)
	if err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// FillNode scrolls to, focuses, and types the value into the node.
func (s *Session) FillNode(ctx context.Context, node *cdp.Node, value string) error {
	ids := []cdp.NodeID{node.NodeID}
	err := s.run(ctx, s.cfg.Network.OpTimeout,
		chromedp.ScrollIntoView(ids, chromedp.ByNodeID),
		chromedp.Focus(ids, chromedp.ByNodeID),
		chromedp.SendKeys(ids, value, chromedp.ByNodeID),
	)
	if err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

// WaitForURLContains polls the page location until it contains pattern or
// the timeout elapses.
func (s *Session) WaitForURLContains(ctx context.Context, pattern string, timeout time.Duration) error {
	opCtx, opCancel := combineContext(s.ctx, ctx)
	defer opCancel()
	waitCtx, cancel := context.WithTimeout(opCtx, timeout)
	defer cancel()

	ticker := time.NewTicker(urlPollInterval)
	defer ticker.Stop()

	for {
		var location string
		if err := chromedp.Run(waitCtx, chromedp.Location(&location)); err != nil {
			if waitCtx.Err() != nil {
				return fmt.Errorf("no URL matching %q within %s: %w", pattern, timeout, waitCtx.Err())
			}
			return fmt.Errorf("failed to read page location: %w", err)
		}
		if strings.Contains(location, pattern) {
			s.logger.Debug("Confirmation URL reached", zap.String("url", location))
			return nil
		}

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("no URL matching %q within %s: %w", pattern, timeout, waitCtx.Err())
		case <-ticker.C:
		}
	}
}

// Close releases the tab, the browser process, and the allocator, exactly
// once. Later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing browser session")

		// Ask the browser to shut down gracefully before cutting the
		// allocator, which kills the process.
		graceCtx, graceCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer graceCancel()
		done := make(chan error, 1)
		go func() { done <- chromedp.Cancel(s.ctx) }()
		select {
		case err := <-done:
			s.closeErr = err
		case <-graceCtx.Done():
			s.closeErr = fmt.Errorf("browser did not shut down within grace period")
		}

		s.cancel()
		s.allocCancel()
	})
	return s.closeErr
}

// extraFlags turns raw "--name" / "--name=value" argument strings into
// allocator options.
func extraFlags(args []string) []chromedp.ExecAllocatorOption {
	opts := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		trimmed := strings.TrimPrefix(arg, "--")
		if trimmed == "" {
			continue
		}
		if name, value, found := strings.Cut(trimmed, "="); found {
			opts = append(opts, chromedp.Flag(name, value))
		} else {
			opts = append(opts, chromedp.Flag(trimmed, true))
		}
	}
	return opts
}
