// Command flowtrace replays one turn of a flow catalog against a fresh
// tracker (optionally carrying a synthetic trigger intent) and renders the
// predicted action, score, any error and the emitted events as a PNG text
// strip. It does not draw the call stack. It is a debug aid only: flowcore
// itself never renders anything.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kslamph/flowcore/flowcore"
)

const (
	rowHeight = 24
	padding   = 12
	charWidth = 7
)

func main() {
	catalogPath := flag.String("catalog", "", "path to the flow catalog YAML file")
	out := flag.String("out", "stack.png", "output PNG path")
	intent := flag.String("intent", "", "intent name of the synthetic trigger message")
	flag.Parse()

	if *catalogPath == "" {
		log.Fatal("flowtrace: -catalog is required")
	}

	catalog, err := flowcore.LoadCatalogFile(*catalogPath)
	if err != nil {
		log.Fatalf("flowtrace: %v", err)
	}

	tracker := flowcore.NewInMemoryTracker(nil)
	tracker.SetLatestActionName(flowcore.ActionListen)
	if *intent != "" {
		tracker.SetLatestMessage(&flowcore.Message{Intent: flowcore.Intent{Name: *intent}})
	}

	gate := flowcore.NewTurnGate(nil)
	action, events, score, decideErr := gate.Decide(tracker, flowcore.NewInMemoryDomain(nil, nil), catalog)

	lines := []string{fmt.Sprintf("action: %s (score %.2f)", action, score)}
	if decideErr != nil {
		lines = append(lines, fmt.Sprintf("error: %v", decideErr))
	}
	for _, e := range events {
		lines = append(lines, fmt.Sprintf("event: %s = %v", e.Name, e.Value))
	}

	if err := renderLines(lines, *out); err != nil {
		log.Fatalf("flowtrace: %v", err)
	}
}

// renderLines draws each line of text top to bottom into a PNG using
// golang.org/x/image's basicfont 7x13 fixed-width face, which renders
// debug text without pulling in a TrueType rasterizer.
func renderLines(lines []string, path string) error {
	width := padding * 2
	for _, l := range lines {
		if w := len(l)*charWidth + padding*2; w > width {
			width = w
		}
	}
	height := padding*2 + rowHeight*len(lines)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	for i, line := range lines {
		y := padding + (i+1)*rowHeight - rowHeight/3
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(padding),
			Y: fixed.I(y),
		}
		drawer.DrawString(line)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
