package export

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Brief print geometry. Briefs print on A4 with wider top and bottom
// margins so the studio letterhead and page footer have room.
const (
	briefPaperWidthIn   = 8.27
	briefPaperHeightIn  = 11.69
	briefMarginTopIn    = 0.9
	briefMarginBottomIn = 0.9
	briefMarginSideIn   = 0.6

	pdfRenderTimeout = 30 * time.Second
)

const upperhex = "0123456789ABCDEF"

// percentEncodeForDataURL encodes the rendered brief for a data URL.
// url.QueryEscape is unsuitable here: it turns spaces into +, which a
// data URL reads literally.
func percentEncodeForDataURL(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9',
			b == '-', b == '_', b == '.', b == '~':
			out.WriteByte(b)
		default:
			out.WriteByte('%')
			out.WriteByte(upperhex[b>>4])
			out.WriteByte(upperhex[b&0x0f])
		}
	}
	return out.String()
}

// exportPDF prints the rendered brief HTML through headless Chromium.
func exportPDF(ctx context.Context, html, title string) (*Result, error) {
	if !chromiumAvailable() {
		return nil, fmt.Errorf("%w: chromium not installed", ErrPDFDependencyMissing)
	}

	ctx, cancel := context.WithTimeout(ctx, pdfRenderTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	dataURL := "data:text/html;charset=utf-8," + percentEncodeForDataURL(html)

	var pdfData []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfData, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(briefPaperWidthIn).
				WithPaperHeight(briefPaperHeightIn).
				WithMarginTop(briefMarginTopIn).
				WithMarginBottom(briefMarginBottomIn).
				WithMarginLeft(briefMarginSideIn).
				WithMarginRight(briefMarginSideIn).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("print brief pdf: %w", err)
	}

	return &Result{
		Data:     pdfData,
		Filename: briefFilename(title),
		MimeType: "application/pdf",
	}, nil
}

func chromiumAvailable() bool {
	for _, name := range []string{"chromium-browser", "chromium"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

// briefFilename derives a download name from the project title, lowercased
// with hyphens ("Apartment in Vilnius" becomes apartment-in-vilnius.pdf).
func briefFilename(title string) string {
	return sanitizeFilename(title) + ".pdf"
}

func sanitizeFilename(title string) string {
	var out strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			if pendingHyphen && out.Len() > 0 {
				out.WriteByte('-')
			}
			pendingHyphen = false
			out.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	result := out.String()
	if len(result) > 50 {
		result = strings.TrimRight(result[:50], "-")
	}
	if result == "" {
		result = "brief"
	}
	return result
}
