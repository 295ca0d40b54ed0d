package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnown(t *testing.T) {
	assert.Equal(t, []string{"chromedp", "playwright", "rod", "selenium"}, Known())
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		display string
	}{
		{"selenium", "Selenium"},
		{"playwright", "Playwright"},
		{"chromedp", "Chromedp"},
		{"rod", "Rod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.name, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
			assert.Equal(t, tt.display, d.DisplayName())
		})
	}
}

func TestNewUnknown(t *testing.T) {
	_, err := New("lynx", DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lynx")
}

func TestPlaywrightDefaultsToChromium(t *testing.T) {
	p := NewPlaywright(Options{})
	assert.Equal(t, "chromium", p.opts.Browser)
}

func TestLoadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, name := range []string{"selenium", "playwright"} {
		d, err := New(name, DefaultOptions())
		require.NoError(t, err)

		err = d.Load(ctx, "file:///nowhere.html")
		assert.ErrorIs(t, err, context.Canceled, name)
	}
}

func TestInstallRejectsUnknownBrowser(t *testing.T) {
	err := Install([]string{"chromium", "netscape"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "netscape")
}

func TestFirstN(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, firstN([]int{1, 2, 3, 4, 5}, MaxInputs))
	assert.Equal(t, []int{1}, firstN([]int{1}, MaxInputs))
	assert.Empty(t, firstN([]int(nil), MaxInputs))
}

func TestCloseWith(t *testing.T) {
	closeErr := errors.New("boom")
	loadErr := errors.New("navigation failed")

	t.Run("close error surfaces", func(t *testing.T) {
		var err error
		closeWith(&err, "browser", func() error { return closeErr })
		assert.ErrorIs(t, err, closeErr)
	})

	t.Run("earlier error wins", func(t *testing.T) {
		err := loadErr
		closeWith(&err, "browser", func() error { return closeErr })
		assert.Equal(t, loadErr, err)
	})

	t.Run("close always runs", func(t *testing.T) {
		ran := false
		err := loadErr
		closeWith(&err, "browser", func() error { ran = true; return nil })
		assert.True(t, ran)
		assert.Equal(t, loadErr, err)
	})
}
