// Command glstagedemo renders one off-screen pass through a render stage and
// writes the result as a PNG.
package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/urfave/cli/v2"
	"golang.org/x/image/colornames"

	"github.com/gogpu/glstate"
	"github.com/gogpu/glstate/config"
	"github.com/gogpu/glstate/fbo"
	"github.com/gogpu/glstate/glctx"
	"github.com/gogpu/glstate/stage"
	"github.com/gogpu/glstate/state"
	"github.com/gogpu/glstate/window"
)

func init() {
	// glfw calls must come from the main thread.
	runtime.LockOSThread()
}

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "TOML configuration file",
		Value:   "glstate.toml",
		EnvVars: []string{"GLSTATE_CONFIG"},
	}
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "log debug diagnostics to stderr",
	}
	widthFlag = &cli.IntFlag{
		Name:  "width",
		Usage: "image width",
		Value: 256,
	}
	heightFlag = &cli.IntFlag{
		Name:  "height",
		Usage: "image height",
		Value: 256,
	}
	samplesFlag = &cli.IntFlag{
		Name:  "samples",
		Usage: "multisample count, 0 uses the configured default",
	}
	targetFlag = &cli.StringFlag{
		Name:  "target",
		Usage: "requested render target: fbo, pbuffer, window or framebuffer",
		Value: "fbo",
	}
	clearFlag = &cli.StringFlag{
		Name:  "clear",
		Usage: "clear color, an SVG color name",
		Value: "steelblue",
	}
	outFlag = &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "output PNG file",
		Value:   "stage.png",
	}
)

func main() {
	app := &cli.App{
		Name:  "glstagedemo",
		Usage: "render an off-screen pass with glstate",
		Flags: []cli.Flag{configFlag, verboseFlag},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool(verboseFlag.Name) {
				glstate.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "render",
				Usage:  "clear a render target and save it as a PNG",
				Flags:  []cli.Flag{widthFlag, heightFlag, samplesFlag, targetFlag, clearFlag, outFlag},
				Action: render,
			},
			{
				Name:   "caps",
				Usage:  "print the capabilities of an OpenGL context",
				Action: caps,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg, err := config.Load(ctx.String(configFlag.Name))
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// openContext initializes glfw and creates the hidden context every command
// draws on.
func openContext(cfg config.Config, w, h int) (*window.Context, func(), error) {
	if err := window.Init(); err != nil {
		return nil, nil, err
	}
	reg := glctx.NewRegistry()
	reg.Reserve(cfg.MaxContexts)
	c, err := window.New(stage.Traits{Width: w, Height: h, Registry: reg}, window.Options{
		Title:  "glstagedemo",
		Config: &cfg,
	})
	if err != nil {
		window.Terminate()
		return nil, nil, err
	}
	return c, func() {
		c.Close()
		window.Terminate()
	}, nil
}

func render(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	w, h := ctx.Int(widthFlag.Name), ctx.Int(heightFlag.Name)
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid size %dx%d", w, h)
	}
	target, err := stage.ParseStrategy(ctx.String(targetFlag.Name))
	if err != nil {
		return err
	}
	name := strings.ToLower(ctx.String(clearFlag.Name))
	bg, ok := colornames.Map[name]
	if !ok {
		return fmt.Errorf("unknown color %q", name)
	}

	c, done, err := openContext(cfg, w, h)
	if err != nil {
		return err
	}
	defer done()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	cam := stage.NewCamera()
	cam.Name = "demo"
	cam.RenderTarget = target
	cam.ClearColor = gputypes.Color{
		R: float64(bg.R) / 255,
		G: float64(bg.G) / 255,
		B: float64(bg.B) / 255,
		A: 1,
	}
	cam.Attach(fbo.ColorBuffer0, &stage.Attachment{Image: img, Samples: ctx.Int(samplesFlag.Name)})

	rs := stage.New(cam, stage.WithConfig(cfg), stage.WithContextFactory(window.Factory))
	err = c.Run(func(st *state.State) {
		info := stage.NewRenderInfo(st, c)
		rs.Sort()
		rs.Draw(info)
		rs.Release()
		st.FlushDeletedObjects()
	})
	if err != nil {
		return err
	}
	fmt.Println(rs.Stats())

	out := ctx.String(outFlag.Name)
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%dx%d)\n", out, w, h)
	return nil
}

func caps(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	c, done, err := openContext(cfg, 1, 1)
	if err != nil {
		return err
	}
	defer done()
	if c.State() == nil {
		return errors.New("no state for context")
	}
	fmt.Println(c.State().Capabilities())
	return nil
}
