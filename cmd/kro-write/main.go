package main

import (
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	_ "golang.org/x/image/webp"

	"github.com/provide-io/kro/go/kro/internal/version"
	"github.com/provide-io/kro/go/kro/pkg/kro"
	"github.com/provide-io/kro/go/kro/pkg/kro/imageio"
	"github.com/provide-io/kro/go/kro/pkg/logging"
	"github.com/provide-io/kro/go/kro/pkg/utils/permissions"
)

const toolName = "kro-write"

var (
	outputPath  string
	fromPath    string
	depth       uint32
	components  uint32
	sizeSpec    string
	resizeSpec  string
	reverseRows bool
	modeSpec    string
	logLevel    string
	versionFlag bool
	rootCmd     *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   toolName,
		Short: "Write a KRO image",
		Long: `Write a KRO image. Without --from, writes a test gradient
(red rises left to right, green top to bottom, blue zero, alpha opaque).
With --from, converts an existing PNG, JPEG, GIF, BMP, TIFF or WebP image.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          writeImage,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "output.kro", "Output KRO file")
	rootCmd.Flags().StringVarP(&fromPath, "from", "f", "", "Source image to convert")
	rootCmd.Flags().Uint32Var(&depth, "depth", kro.Depth16, "Bits per sample (8, 16, 32)")
	rootCmd.Flags().Uint32Var(&components, "components", kro.ComponentsRGBA, "Components per pixel (3=RGB, 4=RGBA)")
	rootCmd.Flags().StringVar(&sizeSpec, "size", "256x256", "Gradient size as WxH")
	rootCmd.Flags().StringVar(&resizeSpec, "resize", "", "Resize the source image to WxH (Lanczos); 0 keeps aspect ratio")
	rootCmd.Flags().BoolVar(&reverseRows, "reverse-rows", false, "Write gradient rows bottom-up")
	rootCmd.Flags().StringVar(&modeSpec, "mode", "0644", "Output file permissions (octal)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func writeImage(cmd *cobra.Command, args []string) error {
	if versionFlag {
		version.Print(cmd.OutOrStdout(), toolName)
		return nil
	}

	level, source := logging.ResolveLevel(logLevel, "KRO_WRITE_LOG_LEVEL")
	logger, flush := logging.NewFlushableLogger(toolName, level, cmd.ErrOrStderr())
	defer flush()
	logger.Debug("🔧 Log level resolved", "level", level, "source", source)

	mode, err := permissions.ParseFileMode(modeSpec)
	if err != nil {
		return err
	}
	if fromPath == "" && resizeSpec != "" {
		return fmt.Errorf("--resize needs --from; use --size for the gradient")
	}
	if fromPath != "" && reverseRows {
		return fmt.Errorf("--reverse-rows applies to the gradient only")
	}

	var write func(f *os.File) (kro.Header, error)
	if fromPath == "" {
		w, h, err := parseSize(sizeSpec)
		if err != nil {
			return fmt.Errorf("invalid --size: %w", err)
		}
		hdr := kro.Header{Width: uint32(w), Height: uint32(h), Depth: depth, Components: components}
		write = func(f *os.File) (kro.Header, error) {
			c, err := kro.NewWriteCodecWithLogger(f, logger.Named("codec"))
			if err != nil {
				return hdr, err
			}
			defer c.Close()
			return hdr, writeGradient(c, hdr, reverseRows, logger)
		}
	} else {
		img, err := loadSource(fromPath, resizeSpec, logger)
		if err != nil {
			return err
		}
		write = func(f *os.File) (kro.Header, error) {
			b := img.Bounds()
			hdr := kro.Header{Width: uint32(b.Dx()), Height: uint32(b.Dy()), Depth: depth, Components: components}
			opts := &imageio.Options{Depth: depth, Components: components, Logger: logger.Named("codec")}
			return hdr, imageio.Encode(f, img, opts)
		}
	}

	f, err := os.OpenFile(outputPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	hdr, err := write(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close output: %w", cerr)
	}
	if err != nil {
		if rmErr := os.Remove(outputPath); rmErr != nil {
			logger.Debug("Failed to remove partial output", "error", rmErr)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s written (%d-bit %s, %dx%d, mode %s)\n",
		outputPath, hdr.Depth, hdr.ColorType(), hdr.Width, hdr.Height, permissions.FormatOctal(mode))
	return nil
}

// loadSource decodes a source image and optionally resizes it.
func loadSource(path, resize string, logger hclog.Logger) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open source image: %w", err)
	}
	logger.Info("📥 Source image loaded", "path", path, "bounds", img.Bounds().String())

	if resize == "" {
		return img, nil
	}
	w, h, err := parseSize(resize)
	if err != nil {
		return nil, fmt.Errorf("invalid --resize: %w", err)
	}
	resized := imaging.Resize(img, w, h, imaging.Lanczos)
	logger.Info("📐 Source image resized", "bounds", resized.Bounds().String())
	return resized, nil
}

// parseSize parses "WxH". Zero is allowed in one dimension for resizing.
func parseSize(spec string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(spec), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%q is not WxH", spec)
	}
	w, err := strconv.ParseUint(ws, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("width %q: %w", ws, err)
	}
	h, err := strconv.ParseUint(hs, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("height %q: %w", hs, err)
	}
	if w == 0 && h == 0 {
		return 0, 0, fmt.Errorf("%q has no size", spec)
	}
	return int(w), int(h), nil
}
