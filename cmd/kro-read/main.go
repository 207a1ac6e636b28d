package main

import (
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"
	"github.com/nfnt/resize"
	"github.com/spf13/cobra"

	"github.com/provide-io/kro/go/kro/internal/inspect"
	"github.com/provide-io/kro/go/kro/internal/version"
	"github.com/provide-io/kro/go/kro/pkg"
	"github.com/provide-io/kro/go/kro/pkg/kro/imageio"
	"github.com/provide-io/kro/go/kro/pkg/logging"
)

const toolName = "kro-read"

var (
	reportFormat string
	checksumAlgo string
	expectSum    string
	exportPath   string
	thumbSpec    string
	verifyFlag   bool
	logLevel     string
	versionFlag  bool
	rootCmd      *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   toolName + " <input.kro>",
		Short: "Read a KRO image and print its header and sample pixels",
		Long: `Read a KRO image and print its header, sample pixels and pixel
checksum. Optionally verify every row, compare the checksum with an expected
value, or export the image as PNG, JPEG, GIF, BMP or TIFF.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if versionFlag {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          readImage,
	}

	rootCmd.Flags().StringVar(&reportFormat, "format", string(inspect.FormatText), "Report format (text, json, cbor, msgpack)")
	rootCmd.Flags().StringVar(&checksumAlgo, "checksum", "sha256", "Pixel checksum algorithm (sha256, sha512, adler32)")
	rootCmd.Flags().StringVar(&expectSum, "expect", "", "Fail unless the pixel checksum matches (algorithm:hex)")
	rootCmd.Flags().StringVarP(&exportPath, "export", "e", "", "Export the image; format follows the extension")
	rootCmd.Flags().StringVar(&thumbSpec, "thumbnail", "", "Shrink the exported image to fit within WxH")
	rootCmd.Flags().BoolVar(&verifyFlag, "verify", false, "Verify that every row decodes")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func readImage(cmd *cobra.Command, args []string) error {
	if versionFlag {
		version.Print(cmd.OutOrStdout(), toolName)
		return nil
	}
	path := args[0]

	level, source := logging.ResolveLevel(logLevel, "KRO_READ_LOG_LEVEL")
	logger, flush := logging.NewFlushableLogger(toolName, level, cmd.ErrOrStderr())
	defer flush()
	logger.Debug("🔧 Log level resolved", "level", level, "source", source)

	format, err := inspect.ParseFormat(reportFormat)
	if err != nil {
		return err
	}
	algo, err := inspect.ParseAlgorithm(checksumAlgo)
	if err != nil {
		return err
	}
	// an algorithm-prefixed --expect decides the algorithm unless --checksum was given
	if expectSum != "" && !cmd.Flags().Changed("checksum") {
		if expectAlgo, _, err := inspect.ParseChecksum(expectSum); err == nil {
			algo = expectAlgo
		}
	}

	report, err := inspect.InspectFile(path, inspect.Options{Checksum: algo, Logger: logger.Named("inspect")})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.Encode(out, format); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if verifyFlag {
		if err := pkg.VerifyFileWithLogger(path, logger.Named("verify")); err != nil {
			return err
		}
	}
	if expectSum != "" {
		ok, err := inspect.MatchChecksum(report.Checksum, expectSum)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("pixel checksum mismatch: got %s, expected %s", report.Checksum, expectSum)
		}
		logger.Info("✓ Pixel checksum matches", "checksum", report.Checksum)
	}
	if !report.Complete {
		return fmt.Errorf("image data incomplete: %d of %d bytes", report.FileSize, report.ExpectedSize)
	}
	if exportPath == "" && thumbSpec != "" {
		return fmt.Errorf("--thumbnail needs --export")
	}
	if exportPath != "" {
		if err := exportImage(path, exportPath, thumbSpec, logger); err != nil {
			return err
		}
	}

	if format == inspect.FormatText {
		fmt.Fprintln(out, "\nSuccessfully read KRO file.")
	}
	return nil
}

// exportImage decodes the KRO file and saves it in the format named by the
// destination's extension, optionally shrunk to fit within thumb.
func exportImage(src, dst, thumb string, logger hclog.Logger) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer f.Close()

	img, err := imageio.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", src, err)
	}
	if thumb != "" {
		var maxW, maxH uint
		if _, err := fmt.Sscanf(thumb, "%dx%d", &maxW, &maxH); err != nil || maxW == 0 || maxH == 0 {
			return fmt.Errorf("invalid --thumbnail %q: want WxH", thumb)
		}
		img = resize.Thumbnail(maxW, maxH, img, resize.Lanczos3)
		logger.Debug("Thumbnail scaled", "bounds", img.Bounds().String())
	}
	if err := imaging.Save(img, dst); err != nil {
		return fmt.Errorf("failed to export %s: %w", dst, err)
	}
	logger.Info("📤 Image exported", "path", dst)
	return nil
}
