//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image"

	"wakeos/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunWindow starts a desktop window that displays the framebuffer. Each frame
// raises one tick interrupt; SPACE drives the button. It blocks until the
// window closes or the application returns.
func RunWindow(ctx context.Context, newApp func(HAL) (Runner, error), cfg HostConfig) error {
	cfg.ButtonPeriod = 0
	h := newHost(cfg)
	app, err := newApp(h)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- app.Run(runCtx) }()

	g := &hostGame{h: h, done: done}
	ebiten.SetWindowTitle("wakeos (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetTPS(h.t.TickHz())
	err = ebiten.RunGame(g)
	cancel()
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	if err != nil {
		return err
	}
	if g.appErr != nil {
		return g.appErr
	}
	if appErr := <-done; appErr != nil && !errors.Is(appErr, context.Canceled) {
		return appErr
	}
	return nil
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	seen    uint64

	done   chan error
	appErr error
}

func (g *hostGame) Update() error {
	select {
	case err := <-g.done:
		g.appErr = err
		g.done <- err
		return ebiten.Termination
	default:
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.h.btn.press(true)
	}
	if inpututil.IsKeyJustReleased(ebiten.KeySpace) {
		g.h.btn.press(false)
	}
	g.h.t.step(1)
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
		g.seen = 0
	}

	if n := fb.snapshotRGB565(g.scratch); n != g.seen {
		g.seen = n
		src := g.scratch
		dst := g.img.Pix
		for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
			r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
			j := (i / 2) * 4
			dst[j+0] = r
			dst[j+1] = gg
			dst[j+2] = b
			dst[j+3] = 0xFF
		}
		g.fbImg.WritePixels(g.img.Pix)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
