package driver

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

// Selenium drives Chrome through the WebDriver protocol.
type Selenium struct {
	opts Options
}

// NewSelenium creates a WebDriver-based driver.
func NewSelenium(opts Options) *Selenium {
	return &Selenium{opts: withLogger(opts)}
}

// Name implements Driver.
func (s *Selenium) Name() string { return "selenium" }

// DisplayName implements Driver.
func (s *Selenium) DisplayName() string { return "Selenium" }

// Load implements Driver.
func (s *Selenium) Load(ctx context.Context, url string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	wd, stop, err := s.open()
	if err != nil {
		return err
	}
	defer closeWith(&err, "webdriver session", stop)

	if s.opts.NavigationTimeout > 0 {
		if err := wd.SetPageLoadTimeout(s.opts.NavigationTimeout); err != nil {
			return fmt.Errorf("set page load timeout: %w", err)
		}
	}

	if err := wd.Get(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}

	bodyPresent := func(wd selenium.WebDriver) (bool, error) {
		_, err := wd.FindElement(selenium.ByTagName, "body")

		return err == nil, nil
	}

	if err := wd.WaitWithTimeout(bodyPresent, s.opts.ReadyTimeout); err != nil {
		return fmt.Errorf("wait for body: %w", err)
	}

	inputs, err := wd.FindElements(selenium.ByCSSSelector, InputSelector)
	if err != nil {
		return fmt.Errorf("find inputs: %w", err)
	}

	for _, in := range firstN(inputs, MaxInputs) {
		// Hidden or read-only inputs reject keys; that is fine.
		_ = in.SendKeys(FillValue)
	}

	if _, err := wd.ExecuteScript("return "+readyStateScript, nil); err != nil {
		return fmt.Errorf("read ready state: %w", err)
	}

	return nil
}

// open starts a WebDriver session. The returned stop func quits the
// session and, when one was started, the local chromedriver.
func (s *Selenium) open() (selenium.WebDriver, func() error, error) {
	caps := selenium.Capabilities{"browserName": "chrome"}

	var args []string
	if s.opts.Headless {
		args = append(args, "--headless=new", "--disable-gpu")
	}
	caps.AddChrome(chrome.Capabilities{Args: args})

	if s.opts.WebDriverURL != "" {
		wd, err := selenium.NewRemote(caps, s.opts.WebDriverURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect webdriver %s: %w", s.opts.WebDriverURL, err)
		}

		return wd, wd.Quit, nil
	}

	port, err := freePort()
	if err != nil {
		return nil, nil, fmt.Errorf("pick chromedriver port: %w", err)
	}

	svc, err := selenium.NewChromeDriverService(s.opts.ChromeDriverPath, port)
	if err != nil {
		return nil, nil, fmt.Errorf("start chromedriver: %w", err)
	}

	s.opts.Logger.Debug("chromedriver started",
		slog.String("binary", s.opts.ChromeDriverPath),
		slog.Int("port", port),
	)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d", port))
	if err != nil {
		svc.Stop()

		return nil, nil, fmt.Errorf("open webdriver session: %w", err)
	}

	stop := func() error {
		quitErr := wd.Quit()
		if err := svc.Stop(); err != nil && quitErr == nil {
			return err
		}

		return quitErr
	}

	return wd, stop, nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}
