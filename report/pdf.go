// Package report renders signatures to PDF for offline inspection:
// the pen trajectory is drawn to scale with stroke widths following
// recorded pressure.
package report

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/unidoc/unipdf/v3/contentstream"
	"github.com/unidoc/unipdf/v3/contentstream/draw"
	"github.com/unidoc/unipdf/v3/creator"

	"siginspect/model"
)

const pageMargin = 54.0

// Generator renders one signature per page into a PDF file.
type Generator struct {
	outputFilePath string
}

func NewGenerator(outputFilePath string) *Generator {
	return &Generator{outputFilePath: outputFilePath}
}

// Generate writes the given signatures, one page each.
func (g *Generator) Generate(signatures []*model.Signature) error {
	if len(signatures) == 0 {
		return errors.New("nothing to render")
	}

	c := creator.New()

	for _, signature := range signatures {
		page := c.NewPage()

		signerName := "unowned"
		if signature.Signer != nil {
			signerName = signature.Signer.Name
		}
		title := c.NewParagraph(fmt.Sprintf("%s — signature %s (%s, %d points)",
			signerName, signature.Name, signature.Authenticity, len(signature.DataPoints)))
		title.SetFontSize(11)
		title.SetPos(pageMargin, pageMargin/2)
		if err := c.Draw(title); err != nil {
			return err
		}

		contentCreator := contentstream.NewContentCreator()
		for _, stroke := range strokes(signature.DataPoints) {
			drawStroke(c, contentCreator, stroke, signature.DataPoints)
		}

		ops := contentCreator.Operations()
		if err := page.AppendContentStream(string(ops.Bytes())); err != nil {
			return err
		}
	}

	return c.WriteToFile(g.outputFilePath)
}

// strokes splits the point sequence on zero-pressure samples (pen-up)
// so lift-offs do not get connected. Finger input has no pressure at
// all; then the whole trajectory is one stroke.
func strokes(points []model.DataPoint) [][]model.DataPoint {
	allZero := true
	for _, p := range points {
		if p.Pressure != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return [][]model.DataPoint{points}
	}

	var result [][]model.DataPoint
	var current []model.DataPoint
	for _, p := range points {
		if p.Pressure == 0 {
			if len(current) > 1 {
				result = append(result, current)
			}
			current = nil
			continue
		}
		current = append(current, p)
	}
	if len(current) > 1 {
		result = append(result, current)
	}
	return result
}

func drawStroke(c *creator.Creator, contentCreator *contentstream.ContentCreator, stroke []model.DataPoint, all []model.DataPoint) {
	if len(stroke) < 2 {
		return
	}

	minX, maxX, minY, maxY, maxPressure := bounds(all)

	availW := c.Width() - 2*pageMargin
	availH := c.Height() - 2*pageMargin
	ratio := 1.0
	if w := maxX - minX; w > 0 && availW/w < ratio {
		ratio = availW / w
	}
	if h := maxY - minY; h > 0 && availH/h < ratio {
		ratio = availH / h
	}

	path := draw.NewPath()
	var pressureSum float64
	for _, p := range stroke {
		x := pageMargin + (p.XCoord-minX)*ratio
		y := c.Height() - (pageMargin + (p.YCoord-minY)*ratio)
		path = path.AppendPoint(draw.NewPoint(x, y))
		pressureSum += p.Pressure
	}

	width := 1.0
	if maxPressure > 0 {
		width = 0.5 + 2.5*(pressureSum/float64(len(stroke)))/maxPressure
	}

	contentCreator.Add_q()
	contentCreator.Add_w(width)
	contentCreator.Add_RG(0.1, 0.1, 0.4)
	draw.DrawPathWithCreator(path, contentCreator)
	contentCreator.Add_S()
	contentCreator.Add_Q()
}

func bounds(points []model.DataPoint) (minX, maxX, minY, maxY, maxPressure float64) {
	if len(points) == 0 {
		return
	}
	minX, maxX = points[0].XCoord, points[0].XCoord
	minY, maxY = points[0].YCoord, points[0].YCoord
	for _, p := range points {
		if p.XCoord < minX {
			minX = p.XCoord
		}
		if p.XCoord > maxX {
			maxX = p.XCoord
		}
		if p.YCoord < minY {
			minY = p.YCoord
		}
		if p.YCoord > maxY {
			maxY = p.YCoord
		}
		if p.Pressure > maxPressure {
			maxPressure = p.Pressure
		}
	}
	return
}
