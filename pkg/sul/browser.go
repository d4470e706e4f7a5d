/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: browser.go
Description: Browser system under learning using chromedp. One browser is kept
for the lifetime of the system; each query clears cookies and storage, loads
the start page and then replays symbols as navigations, clicks or scripts. The
output of a step is the text of the observation selector.
*/

package sul

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"github.com/sirupsen/logrus"
)

// BrowserSUL learns a web application through a headless browser
type BrowserSUL struct {
	target interfaces.BrowserTarget
	logger *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	alloc  context.CancelFunc

	errMu      sync.Mutex
	exceptions []string
}

// NewBrowserSUL creates a browser system for target; Start must be called
// before the first query
func NewBrowserSUL(target interfaces.BrowserTarget, logger *logrus.Logger) (*BrowserSUL, error) {
	if target.StartURL == "" {
		return nil, fmt.Errorf("browser target has no start url")
	}
	if target.Observe == "" {
		target.Observe = "body"
	}
	if target.Timeout <= 0 {
		target.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &BrowserSUL{target: target, logger: logger}, nil
}

// Start launches the browser
func (b *BrowserSUL) Start(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", b.target.Headless))
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	b.ctx, b.cancel, b.alloc = browserCtx, browserCancel, allocCancel

	chromedp.ListenTarget(b.ctx, func(ev interface{}) {
		if e, ok := ev.(*runtime.EventExceptionThrown); ok {
			b.errMu.Lock()
			b.exceptions = append(b.exceptions, e.ExceptionDetails.Error())
			b.errMu.Unlock()
		}
	})
	if err := chromedp.Run(b.ctx, network.Enable(), runtime.Enable()); err != nil {
		b.Stop()
		return fmt.Errorf("failed to start browser: %w", err)
	}
	return nil
}

// Stop closes the browser
func (b *BrowserSUL) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	if b.alloc != nil {
		b.alloc()
	}
}

func (b *BrowserSUL) run(actions ...chromedp.Action) error {
	if b.ctx == nil {
		return fmt.Errorf("browser not started")
	}
	ctx, cancel := context.WithTimeout(b.ctx, b.target.Timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// Pre clears browser state and loads the start page
func (b *BrowserSUL) Pre(context.Context) error {
	b.errMu.Lock()
	b.exceptions = nil
	b.errMu.Unlock()
	return b.run(
		network.ClearBrowserCookies(),
		chromedp.Navigate(b.target.StartURL),
		chromedp.Evaluate(`window.localStorage.clear(); window.sessionStorage.clear();`, nil),
	)
}

// Step performs the action mapped to input and observes the page
func (b *BrowserSUL) Step(_ context.Context, input string) (string, error) {
	action, ok := b.target.Symbols[input]
	if !ok {
		return "", fmt.Errorf("no action for symbol %q", input)
	}

	var act chromedp.Action
	switch action.Kind {
	case interfaces.ActionNavigate:
		act = chromedp.Navigate(action.Target)
	case interfaces.ActionClick:
		act = chromedp.Click(action.Target, chromedp.ByQuery)
	case interfaces.ActionEval:
		act = chromedp.Evaluate(action.Target, nil)
	default:
		return "", fmt.Errorf("unknown action kind %q", action.Kind)
	}

	var text string
	if err := b.run(act, chromedp.Text(b.target.Observe, &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("action for %q failed: %w", input, err)
	}
	out := strings.Join(strings.Fields(text), " ")
	if n := b.exceptionCount(); n > 0 {
		out += fmt.Sprintf(" !%d", n)
	}
	return out, nil
}

// Post is a no-op; the browser is reused across queries
func (b *BrowserSUL) Post(context.Context) error { return nil }

func (b *BrowserSUL) exceptionCount() int {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	return len(b.exceptions)
}
