package render

import (
	"bytes"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"

	"github.com/JonMunkholm/SliceOfPie/internal/chart"
)

// PDF renders set as a PNG and embeds it in a single landscape A4 page.
func PDF(w io.Writer, set *chart.SeriesSet, opts Options) error {
	var img bytes.Buffer
	if err := PNG(&img, set, Options{Width: opts.Width, Height: opts.Height}); err != nil {
		return err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(opts.Title, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	y := top

	if opts.Title != "" {
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 10, tr(opts.Title), "", 1, "C", false, 0, "")
		y = pdf.GetY() + 4
	}

	imgOpts := fpdf.ImageOptions{ImageType: "PNG"}
	info := pdf.RegisterImageOptionsReader("chart", imgOpts, &img)
	if info == nil || pdf.Err() {
		return fmt.Errorf("embed chart image: %w", pdf.Error())
	}

	// Fit the image inside the remaining page area, keeping its aspect ratio.
	maxW := pageW - left - right
	maxH := pageH - y - bottom
	imgW, imgH := info.Extent()
	scale := min(maxW/imgW, maxH/imgH)
	drawW, drawH := imgW*scale, imgH*scale

	pdf.ImageOptions("chart", left+(maxW-drawW)/2, y, drawW, drawH, false, imgOpts, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
