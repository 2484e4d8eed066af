package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/stewi1014/glmandel/config"
)

func init() {
	// GLFW, GL and GTK all require the main thread.
	runtime.LockOSThread()
}

type Flags struct {
	Config     string
	Debug      bool
	Width      int
	Height     int
	MaxIters   int
	Scale      float32
	Mode       string
	Kernel     string
	ColorFunc  string
	NoTools    bool
	Screenshot string
}

func main() {
	var flags Flags

	rootCmd := &cobra.Command{
		Use:   "glmandel [flags]",
		Short: "GPU Mandelbrot explorer",
		Long: `glmandel renders the Mandelbrot set on the GPU in double precision.
Drag to pan, scroll to zoom. A tools window switches color functions and tunes their parameters.`,
		Example: `  # Explore with the settings in ./glmandel.toml
  glmandel

  # Supersample at twice the window resolution
  glmandel --scale 2 --mode supersampled

  # Render one image and exit
  glmandel --screenshot seahorse.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), flags.Debug)
			slog.SetDefault(log)
			return run(cmd.Context(), log, cfg, flags)
		},
	}

	rootCmd.Flags().StringVarP(&flags.Config, "config", "c", "", "Path to a config file (default ./"+config.FileName+" if present)")
	rootCmd.Flags().BoolVarP(&flags.Debug, "debug", "d", false, "Enable debug logging and GL debug output")
	rootCmd.Flags().IntVar(&flags.Width, "width", 0, "Window width in pixels")
	rootCmd.Flags().IntVar(&flags.Height, "height", 0, "Window height in pixels")
	rootCmd.Flags().IntVarP(&flags.MaxIters, "iters", "i", 0, "Maximum iterations per pixel")
	rootCmd.Flags().Float32VarP(&flags.Scale, "scale", "s", 0, "Render resolution relative to the window")
	rootCmd.Flags().StringVarP(&flags.Mode, "mode", "m", "", "Render mode: progressive or supersampled")
	rootCmd.Flags().StringVar(&flags.Kernel, "kernel", "", "Path to an iteration kernel fragment shader")
	rootCmd.Flags().StringVar(&flags.ColorFunc, "color", "", "Initial color function")
	rootCmd.Flags().BoolVar(&flags.NoTools, "no-tools", false, "Don't open the tools window")
	rootCmd.Flags().StringVar(&flags.Screenshot, "screenshot", "", "Write a screenshot to this path and exit")

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}

// loadConfig reads the config file, then applies any flags that were set.
func loadConfig(cmd *cobra.Command, flags Flags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.Config != "" {
		cfg, err = config.Load(flags.Config)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("width") {
		cfg.Width = flags.Width
	}
	if changed("height") {
		cfg.Height = flags.Height
	}
	if changed("iters") {
		cfg.MaxIters = flags.MaxIters
	}
	if changed("scale") {
		cfg.ResolutionScale = flags.Scale
	}
	if changed("mode") {
		cfg.Mode = flags.Mode
	}
	if changed("kernel") {
		cfg.Kernel = flags.Kernel
	}
	if changed("color") {
		cfg.ColorFunction = flags.ColorFunc
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
