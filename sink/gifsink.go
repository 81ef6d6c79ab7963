package sink

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"golang.org/x/image/draw"

	"github.com/brodie-hale/gpusim/internal/table"
)

// GIFSink is a minimal reference rasterizer/encoder: each captured step
// becomes one paletted frame, with every row plotted as a single pixel at
// (gis_x_attr_name, gis_y_attr_name), colored by gis_color_attr (a "#RRGGBB"
// hex string) if present. gis_name_attr is read but only stored, never
// rendered; entity labels are treated as metadata, not visuals.
type GIFSink struct {
	w, h        int
	xAttr       string
	yAttr       string
	colorAttr   string
	nameAttr    string
	delay       int // hundredths of a second per frame, from the configured FPS
	frames      []*image.Paletted
	delays      []int
	labels      [][]string // per-frame, per-row gis_name_attr values: stored but never rendered
	out         io.WriteCloser
	closeWriter bool
}

// GIFSinkConfig names the columns GIFSink reads and the canvas it draws on.
type GIFSinkConfig struct {
	Width, Height int
	XAttr, YAttr  string
	ColorAttr     string
	NameAttr      string
	FPS           int
}

// NewGIFSink opens path for writing and returns a GIFSink that will
// encode every captured frame to it on Close.
func NewGIFSink(path string, cfg GIFSinkConfig) (*GIFSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sink: creating GIF output %q: %w", path, err)
	}
	return newGIFSink(f, true, cfg), nil
}

func newGIFSink(w io.WriteCloser, closeWriter bool, cfg GIFSinkConfig) *GIFSink {
	fps := cfg.FPS
	if fps <= 0 {
		fps = 10
	}
	return &GIFSink{
		w:           cfg.Width,
		h:           cfg.Height,
		xAttr:       cfg.XAttr,
		yAttr:       cfg.YAttr,
		colorAttr:   cfg.ColorAttr,
		nameAttr:    cfg.NameAttr,
		delay:       100 / fps,
		out:         w,
		closeWriter: closeWriter,
	}
}

var defaultPalette = color.Palette{
	color.White,
	color.Black,
	color.RGBA{R: 255, A: 255},
	color.RGBA{G: 255, A: 255},
	color.RGBA{B: 255, A: 255},
	color.RGBA{R: 255, G: 255, A: 255},
	color.RGBA{R: 255, B: 255, A: 255},
	color.RGBA{G: 255, B: 255, A: 255},
}

// Capture rasterizes rows into one paletted frame: every row is plotted
// as a single pixel at its (xAttr, yAttr) column values, colored by
// colorAttr if present and parseable. Points outside the canvas are
// skipped.
func (s *GIFSink) Capture(step int, rows *table.RowTable) error {
	img := image.NewPaletted(image.Rect(0, 0, s.w, s.h), defaultPalette)
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	var labels []string
	if s.nameAttr != "" {
		labels = make([]string, rows.Len())
	}

	for i := 0; i < rows.Len(); i++ {
		if labels != nil {
			if v, ok := rows.Get(i, s.nameAttr); ok {
				labels[i] = v.Text()
			}
		}
		x, xok := rows.Get(i, s.xAttr)
		y, yok := rows.Get(i, s.yAttr)
		if !xok || !yok {
			continue
		}
		px, py := int(x.Float()), int(y.Float())
		if x.Kind() == table.KindInteger {
			px = int(x.Int())
		}
		if y.Kind() == table.KindInteger {
			py = int(y.Int())
		}
		if px < 0 || px >= s.w || py < 0 || py >= s.h {
			continue
		}

		c := color.Color(color.Black)
		if s.colorAttr != "" {
			if v, ok := rows.Get(i, s.colorAttr); ok {
				if parsed, ok := parseHexColor(v.Text()); ok {
					c = parsed
				}
			}
		}
		img.Set(px, py, c)
	}

	s.frames = append(s.frames, img)
	s.delays = append(s.delays, s.delay)
	s.labels = append(s.labels, labels)
	return nil
}

// Labels returns the gis_name_attr value captured for each row of each
// frame, in capture order. It exists for introspection and testing; the
// encoded GIF file never carries these values.
func (s *GIFSink) Labels() [][]string {
	return s.labels
}

// Close encodes every captured frame into a single animated GIF and
// releases the underlying writer.
func (s *GIFSink) Close() error {
	defer func() {
		if s.closeWriter {
			s.out.Close()
		}
	}()
	if len(s.frames) == 0 {
		return nil
	}
	return gif.EncodeAll(s.out, &gif.GIF{Image: s.frames, Delay: s.delays})
}

func parseHexColor(s string) (color.Color, bool) {
	if len(s) != 7 || s[0] != '#' {
		return nil, false
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return nil, false
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, true
}
