package pkg

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/kro/go/kro/pkg/kro"
	"github.com/provide-io/kro/go/kro/pkg/logging"
)

// VerifyFileWithLogger checks that path holds a well-formed, complete KRO
// image whose rows all decode. Every failure found is returned, joined
// under ErrVerificationFailed.
func VerifyFileWithLogger(path string, logger hclog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		logger.Error("Failed to open image", "path", path, "error", err)
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Debug("Failed to close image", "error", err)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	logger.Info("Verifying image integrity", "path", path)

	c, err := kro.NewReadCodecWithLogger(f, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.ReadInfo(); err != nil {
		logger.Error("Header verification failed", "error", err)
		return fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	h, err := c.Header()
	if err != nil {
		return err
	}
	logger.Info("✓ Header valid", "header", h.String())

	var errs []error

	if info.Size() != h.FileSize() {
		err := fmt.Errorf("file size %d, expected %d", info.Size(), h.FileSize())
		errs = append(errs, err)
		logger.Error("Size verification failed", "error", err)
	} else {
		logger.Info("✓ File size matches header", "size", info.Size())
	}

	if h.BytesPerRow() > info.Size()-kro.DataOffset {
		err := fmt.Errorf("row length %d exceeds pixel data", h.BytesPerRow())
		errs = append(errs, err)
		logger.Error("Row verification skipped", "error", err)
	} else if err := verifyRows(c, h, logger); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		logger.Info("✓ Image verification passed")
		return nil
	}

	logger.Error("✗ Image verification failed", "error_count", len(errs))
	for _, err := range errs {
		logger.Error("  Verification error", "details", err)
	}
	return fmt.Errorf("%w: %w", ErrVerificationFailed, errors.Join(errs...))
}

// verifyRows reads every row and stops at the first that fails, since the
// rows after a truncation all fail the same way.
func verifyRows(c *kro.Codec, h kro.Header, logger hclog.Logger) error {
	row := make([]byte, h.BytesPerRow())
	for y := uint32(0); y < h.Height; y++ {
		if err := c.ReadRow(row, y); err != nil {
			logger.Error("Row verification failed", "row", y, "error", err)
			return fmt.Errorf("row %d: %w", y, err)
		}
	}
	logger.Info("✓ All rows readable", "rows", h.Height)
	return nil
}

// VerifyFile verifies an image using default logger settings.
func VerifyFile(path string) error {
	logger := logging.NewLogger("kro-verify", logging.GetLogLevel(), nil)
	return VerifyFileWithLogger(path, logger)
}
