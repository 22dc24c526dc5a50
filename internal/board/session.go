// Package board drives an authenticated portal session with a headless
// browser: federated login, shortlist navigation, and per-posting page
// collection. It hands raw HTML to internal/posting and knows nothing about
// the record format.
//
// Everything here talks to a remote session, so this is also where rate and
// ordering concerns live; the extraction core stays pure.
package board

import (
	"fmt"
	"log"

	"github.com/playwright-community/playwright-go"
)

// Element identifiers on the federated login page and the job board. Stable
// per portal version, like the posting table layout.
const (
	usernameSelector = "#userNameInput"
	passwordSelector = "#passwordInput"
	submitSelector   = "#submitButton"

	quickSearchSelector = "td.full"
	postingLinkSelector = `a[role="button"]`

	shortlistLabel = "Shortlist"
)

// usernameDomain is the Windows domain prefix the federated login expects.
const usernameDomain = `CUNET\`

// Options configures a portal session.
type Options struct {
	LoginURL string
	BoardURL string

	// Username is the bare account name; the domain prefix is added here.
	Username string
	Password string

	Headless bool

	// NavTimeoutMs bounds each navigation and selector wait, in milliseconds.
	// Zero means playwright defaults.
	NavTimeoutMs float64
}

// Session is a live, logged-in browser session on the co-op portal.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
	page    playwright.Page

	opts Options
}

// Open launches the browser and returns an unauthenticated session. Call
// Login before navigating the board.
func Open(opts Options) (*Session, error) {
	if err := playwright.Install(&playwright.RunOptions{Verbose: false}); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			log.Printf("stop playwright: %v", stopErr)
		}
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	ctx, err := browser.NewContext()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	if opts.NavTimeoutMs > 0 {
		ctx.SetDefaultTimeout(opts.NavTimeoutMs)
	}

	page, err := ctx.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("new page: %w", err)
	}

	return &Session{pw: pw, browser: browser, ctx: ctx, page: page, opts: opts}, nil
}

// Close shuts down the browser and the playwright driver.
func (s *Session) Close() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Printf("close browser: %v", err)
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			log.Printf("stop playwright: %v", err)
		}
	}
}

// Login authenticates against the federated portal.
func (s *Session) Login() error {
	if _, err := s.page.Goto(s.opts.LoginURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}

	if err := s.page.Fill(usernameSelector, FormatUsername(s.opts.Username)); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := s.page.Fill(passwordSelector, s.opts.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := s.page.Click(submitSelector); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}

	if err := s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}); err != nil {
		return fmt.Errorf("wait for login redirect: %w", err)
	}
	return nil
}

// OpenShortlist navigates to the job board and enters the Shortlist quick
// search. A board without a shortlist entry is an error: there is nothing to
// scrape.
func (s *Session) OpenShortlist() error {
	if _, err := s.page.Goto(s.opts.BoardURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return fmt.Errorf("open job board: %w", err)
	}

	cells, err := s.page.Locator(quickSearchSelector).All()
	if err != nil {
		return fmt.Errorf("find quick searches: %w", err)
	}

	for _, cell := range cells {
		text, err := cell.TextContent()
		if err != nil {
			continue
		}
		if !isShortlistCell(text) {
			continue
		}
		if err := cell.Locator("a").Click(); err != nil {
			return fmt.Errorf("open shortlist: %w", err)
		}
		if err := s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State: playwright.LoadStateNetworkidle,
		}); err != nil {
			return fmt.Errorf("wait for shortlist: %w", err)
		}
		return nil
	}

	return fmt.Errorf("no %q quick search on the job board", shortlistLabel)
}

// CollectPostings opens every posting on the shortlist in its own tab and
// returns the raw page HTML per posting, in shortlist order.
//
// A posting tab that fails to open or render is logged and skipped; one bad
// posting must not abort the batch.
func (s *Session) CollectPostings() ([]string, error) {
	links, err := s.page.Locator(postingLinkSelector).All()
	if err != nil {
		return nil, fmt.Errorf("find posting links: %w", err)
	}

	var pages []string
	for _, link := range links {
		text, err := link.TextContent()
		if err != nil || !IsPostingLink(text) {
			continue
		}

		html, err := s.openPostingTab(link)
		if err != nil {
			log.Printf("skip posting %q: %v", text, err)
			continue
		}
		pages = append(pages, html)
	}

	return pages, nil
}

// openPostingTab clicks a shortlist link, captures the tab it opens, reads
// the rendered HTML and closes the tab again.
func (s *Session) openPostingTab(link playwright.Locator) (string, error) {
	tab, err := s.ctx.ExpectPage(func() error {
		return link.Click()
	})
	if err != nil {
		return "", fmt.Errorf("open posting tab: %w", err)
	}
	defer func() {
		if err := tab.Close(); err != nil {
			log.Printf("close posting tab: %v", err)
		}
	}()

	if err := tab.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}); err != nil {
		return "", fmt.Errorf("wait for posting: %w", err)
	}

	html, err := tab.Content()
	if err != nil {
		return "", fmt.Errorf("read posting html: %w", err)
	}
	return html, nil
}
