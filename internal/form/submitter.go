// File: internal/form/submitter.go
package form

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formflood/internal/config"
)

// Page is the browser surface a submission attempt drives. It is implemented
// by browser.Session and mocked in tests.
type Page interface {
	// Navigate loads the URL and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error
	// Nodes returns every element matching the CSS selector, possibly none.
	Nodes(ctx context.Context, selector string) ([]*cdp.Node, error)
	// NodesFrom is Nodes scoped to the subtree rooted at root.
	NodesFrom(ctx context.Context, selector string, root *cdp.Node) ([]*cdp.Node, error)
	// TextFrom reads the visible text of the first match under root; empty
	// when nothing matches.
	TextFrom(ctx context.Context, selector string, root *cdp.Node) (string, error)
	// ClickNode scrolls the node into view and clicks it.
	ClickNode(ctx context.Context, node *cdp.Node) error
	// FillNode focuses the node and types the value into it.
	FillNode(ctx context.Context, node *cdp.Node, value string) error
	// WaitForURLContains blocks until the page URL contains the pattern or
	// the timeout elapses.
	WaitForURLContains(ctx context.Context, pattern string, timeout time.Duration) error
	// Close releases the underlying browser resources. Safe to call more
	// than once.
	Close() error
}

// State tracks the progress of one submission attempt.
type State int

const (
	StateInit State = iota
	StateNavigated
	StateQuestionsFilled
	StateSubmitted
	StateConfirmed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateNavigated:
		return "navigated"
	case StateQuestionsFilled:
		return "questions_filled"
	case StateSubmitted:
		return "submitted"
	case StateConfirmed:
		return "confirmed"
	default:
		return "failed"
	}
}

// Result is the single outcome of one attempt.
type Result struct {
	Succeeded bool
	Err       error
}

// interActivationPause separates consecutive checkbox clicks so the page's
// own state updates are not raced.
const interActivationPause = 100 * time.Millisecond

// Submitter drives one owned browser page through a complete submission:
// navigate, classify and fill every question, submit, confirm. It never
// lets an error escape; every failure becomes a Result.
type Submitter struct {
	cfg    *config.Config
	logger *zap.Logger
	page   Page
	gen    *Generator
	state  State
}

// NewSubmitter wires a Submitter around an owned page. The Submitter takes
// responsibility for releasing the page when Run returns.
func NewSubmitter(cfg *config.Config, logger *zap.Logger, page Page, gen *Generator) *Submitter {
	return &Submitter{
		cfg:    cfg,
		logger: logger.Named("submitter"),
		page:   page,
		gen:    gen,
		state:  StateInit,
	}
}

// State returns the current state of the attempt.
func (s *Submitter) State() State {
	return s.state
}

// Run executes the full submission state machine and always returns a
// Result. The page is released exactly once on every exit path; a cleanup
// failure is logged but never changes the already-determined outcome.
func (s *Submitter) Run(ctx context.Context, targetURL string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			s.state = StateFailed
			result = Result{Err: fmt.Errorf("submission panicked: %v", r)}
			s.logger.Error("Submission attempt panicked", zap.Any("panic", r))
		}
		if err := s.page.Close(); err != nil {
			s.logger.Warn("Session cleanup failed", zap.Error(err))
		}
	}()

	if err := s.run(ctx, targetURL); err != nil {
		s.state = StateFailed
		s.logger.Error("Submission attempt failed",
			zap.String("url", targetURL),
			zap.Error(err))
		return Result{Err: err}
	}

	s.logger.Info("Successfully submitted form", zap.String("url", targetURL))
	return Result{Succeeded: true}
}

func (s *Submitter) run(ctx context.Context, targetURL string) error {
	// Init -> Navigated
	if err := s.page.Navigate(ctx, targetURL); err != nil {
		return fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	s.transition(StateNavigated)

	// Navigated -> QuestionsFilled
	containers, err := s.page.Nodes(ctx, s.cfg.Form.ContainerSelector)
	if err != nil {
		return fmt.Errorf("failed to enumerate question containers: %w", err)
	}
	s.logger.Debug("Enumerated question containers", zap.Int("count", len(containers)))

	for i, container := range containers {
		if err := s.fillQuestion(ctx, i, container); err != nil {
			return err
		}
		if err := pause(ctx, interActivationPause); err != nil {
			return err
		}
	}
	s.transition(StateQuestionsFilled)

	// QuestionsFilled -> Submitted
	submits, err := s.page.Nodes(ctx, s.cfg.Form.SubmitSelector)
	if err != nil {
		return fmt.Errorf("failed to locate submit control: %w", err)
	}
	if len(submits) == 0 {
		return ErrMissingSubmitControl
	}
	if err := s.page.ClickNode(ctx, submits[0]); err != nil {
		return fmt.Errorf("failed to activate submit control: %w", err)
	}
	s.transition(StateSubmitted)

	// Submitted -> Confirmed
	if err := s.page.WaitForURLContains(ctx, s.cfg.Form.ConfirmPattern, s.cfg.Network.ConfirmTimeout); err != nil {
		return fmt.Errorf("%w: %v", ErrConfirmationTimeout, err)
	}
	s.transition(StateConfirmed)
	return nil
}

// fillQuestion classifies and answers one question container. An Unknown
// classification is logged and skipped; only browser-level errors propagate.
func (s *Submitter) fillQuestion(ctx context.Context, index int, container *cdp.Node) error {
	snap, err := s.snapshot(ctx, container)
	if err != nil {
		return fmt.Errorf("failed to snapshot question %d: %w", index, err)
	}

	variant := Classify(snap)
	s.logger.Debug("Classified question",
		zap.Int("question", index),
		zap.String("variant", variant.String()))

	switch variant {
	case SingleChoice:
		return s.fillSingleChoice(ctx, snap)
	case MultiChoice:
		return s.fillMultiChoice(ctx, snap)
	case FreeText:
		return s.fillFreeText(ctx, container, snap)
	default:
		s.logger.Warn("Unknown question type in container, skipping", zap.Int("question", index))
		return nil
	}
}

// snapshot captures the classifier's view of one container.
func (s *Submitter) snapshot(ctx context.Context, container *cdp.Node) (Snapshot, error) {
	var snap Snapshot

	heading, err := s.page.TextFrom(ctx, s.cfg.Form.HeadingSelector, container)
	if err != nil {
		return snap, err
	}
	snap.Heading = strings.ToLower(heading)

	groups, err := s.page.NodesFrom(ctx, s.cfg.Form.RadioGroupSelector, container)
	if err != nil {
		return snap, err
	}
	snap.RadioGroups = len(groups)
	if len(groups) > 0 {
		radios, err := s.page.NodesFrom(ctx, s.cfg.Form.RadioOptionSelector, groups[0])
		if err != nil {
			return snap, err
		}
		snap.RadioOptions = s.toOptions(radios)
	}

	checkboxes, err := s.page.NodesFrom(ctx, s.cfg.Form.CheckboxSelector, container)
	if err != nil {
		return snap, err
	}
	snap.Checkboxes = s.toOptions(checkboxes)

	inputs, err := s.page.NodesFrom(ctx, s.cfg.Form.InputSelector, container)
	if err != nil {
		return snap, err
	}
	snap.Inputs = len(inputs)

	return snap, nil
}

// toOptions flags sentinel entries by their data-value attribute.
func (s *Submitter) toOptions(nodes []*cdp.Node) []Option {
	opts := make([]Option, len(nodes))
	for i, n := range nodes {
		opts[i] = Option{
			Node:     n,
			Sentinel: n.AttributeValue("data-value") == s.cfg.Form.SentinelValue,
		}
	}
	return opts
}

func (s *Submitter) fillSingleChoice(ctx context.Context, snap Snapshot) error {
	chosen, ok := s.gen.PickOne(snap.RadioOptions)
	if !ok {
		return nil
	}
	return s.page.ClickNode(ctx, chosen.Node)
}

func (s *Submitter) fillMultiChoice(ctx context.Context, snap Snapshot) error {
	for _, opt := range s.gen.PickSeveral(snap.Heading, snap.Checkboxes) {
		if err := s.page.ClickNode(ctx, opt.Node); err != nil {
			return err
		}
		if err := pause(ctx, interActivationPause); err != nil {
			return err
		}
	}
	return nil
}

func (s *Submitter) fillFreeText(ctx context.Context, container *cdp.Node, snap Snapshot) error {
	inputs, err := s.page.NodesFrom(ctx, s.cfg.Form.InputSelector, container)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return nil
	}
	return s.page.FillNode(ctx, inputs[0], s.gen.TextFor(snap.Heading))
}

func (s *Submitter) transition(next State) {
	s.logger.Debug("State transition",
		zap.String("from", s.state.String()),
		zap.String("to", next.String()))
	s.state = next
}

// pause sleeps for d unless the context is cancelled first.
func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
