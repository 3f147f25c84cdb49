package finder

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// RunResult reports what a browser search session found, plus enough
// step-by-step detail to debug portals that change their markup.
type RunResult struct {
	OK       bool   `json:"ok"`
	Searched string `json:"searched"`
	Links    []Link `json:"links"`
	Debug    Debug  `json:"debug"`
	Error    string `json:"error,omitempty"`
}

// Debug tracks which steps of the search flow succeeded.
type Debug struct {
	InputFound      bool   `json:"inputFound"`
	SuggestionFound bool   `json:"suggestionFound"`
	SearchClicked   bool   `json:"searchClicked"`
	ListingsFound   int    `json:"listingsFound"`
	HTMLTitle       string `json:"htmlTitle"`
	URL             string `json:"url"`
}

// Finder drives a real browser through a portal's search box and
// harvests listing links from the results. Portals render results
// client-side, so plain HTTP fetches come back empty.
type Finder struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	browser     playwright.Browser
	initialized bool
}

func NewFinder() *Finder {
	return &Finder{}
}

func (f *Finder) init() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.initialized {
		return nil
	}

	var err error
	f.pw, err = playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	f.browser, err = f.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	f.initialized = true
	return nil
}

func (f *Finder) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		f.browser.Close()
	}
	if f.pw != nil {
		f.pw.Stop()
	}
	f.initialized = false
}

var searchInputSelectors = []string{
	"input[type='search']",
	"input[placeholder*='earch']",
	"input[placeholder*='ddress']",
	"input[placeholder*='ity']",
	"input[name*='search']",
	"input[id*='search']",
	"input[aria-label*='earch']",
}

var searchButtonSelectors = []string{
	"button[type='submit']",
	"button[aria-label*='earch']",
	"button:has-text('Search')",
	"[class*='search'] button",
}

// Run opens startURL, types searchText into the portal's search box,
// accepts the first suggestion (or presses Enter), waits for results
// and returns every listing link on the page. Failures at any step are
// reported in the result rather than aborting; partial debug info is
// the whole point.
func (f *Finder) Run(ctx context.Context, startURL, searchText string) RunResult {
	res := RunResult{Searched: searchText, Debug: Debug{URL: startURL}}

	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := f.init(); err != nil {
		res.Error = err.Error()
		return res
	}

	page, err := f.browser.NewPage()
	if err != nil {
		res.Error = fmt.Sprintf("failed to create page: %v", err)
		return res
	}
	defer page.Close()

	if _, err := page.Goto(startURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(60000),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		res.Error = fmt.Sprintf("navigation failed: %v", err)
		return res
	}
	page.WaitForTimeout(2000)

	if title, err := page.Title(); err == nil {
		res.Debug.HTMLTitle = title
	}

	input := f.findSearchInput(page)
	if input == nil {
		res.Error = "no search input found on page"
		return res
	}
	res.Debug.InputFound = true

	if err := input.Fill(searchText); err != nil {
		res.Error = fmt.Sprintf("failed to type search text: %v", err)
		return res
	}
	page.WaitForTimeout(1500)

	// Prefer the autocomplete suggestion; fall back to Enter.
	suggestion := page.Locator("[class*='suggestion'], [class*='autocomplete'] li, [role='option']").First()
	if visible, _ := suggestion.IsVisible(); visible {
		if err := suggestion.Click(); err == nil {
			res.Debug.SuggestionFound = true
		}
	}
	if !res.Debug.SuggestionFound {
		input.Press("Enter")
	}
	page.WaitForTimeout(2000)

	for _, selector := range searchButtonSelectors {
		btn := page.Locator(selector).First()
		if visible, _ := btn.IsVisible(); visible {
			if err := btn.Click(); err == nil {
				res.Debug.SearchClicked = true
				log.Printf("Clicked search button: %s", selector)
			}
			break
		}
	}
	page.WaitForTimeout(3000)

	// Results pages lazy-load; scroll a few screens to force rendering.
	for i := 0; i < 4; i++ {
		page.Mouse().Wheel(0, 1200)
		page.WaitForTimeout(800)
	}

	res.Debug.URL = page.URL()

	html, err := page.Content()
	if err != nil {
		res.Error = fmt.Sprintf("failed to read page content: %v", err)
		return res
	}

	links, err := LinksFromHTML(strings.NewReader(html), page.URL())
	if err != nil {
		res.Error = fmt.Sprintf("failed to parse results: %v", err)
		return res
	}

	res.Links = links
	res.Debug.ListingsFound = len(links)
	res.OK = len(links) > 0
	if !res.OK && res.Error == "" {
		res.Error = "search completed but no listing links found"
	}
	return res
}

func (f *Finder) findSearchInput(page playwright.Page) playwright.Locator {
	for _, selector := range searchInputSelectors {
		el := page.Locator(selector).First()
		if visible, _ := el.IsVisible(); visible {
			log.Printf("Using search input: %s", selector)
			return el
		}
	}
	return nil
}
