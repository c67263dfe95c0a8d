package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/attache-dl/attache/internal/logctx"
)

// TempSuffix is appended to the destination name while a transfer is in
// flight. The suffixed file becomes the destination only through the final
// rename.
const TempSuffix = ".part"

const copyBufferSize = 64 * 1024

// ErrCancelled is reported when the receiver side of the watch channel was
// closed while the transfer was still running.
var ErrCancelled = errors.New("download cancelled")

// Source opens a byte stream for a remote content locator. The returned
// length is <= 0 when the remote does not declare one.
type Source interface {
	OpenDownloadStream(ctx context.Context, locator string) (io.ReadCloser, int64, error)
}

// Run performs one best-effort streaming download of locator into
// destPath, reporting through tx. The terminal event is Finished after the
// destination has been renamed into place, or Error; the sender is closed
// afterwards. On failure the temp file is left on disk for inspection.
func Run(ctx context.Context, src Source, locator, destPath string, tx *Sender) {
	defer tx.Close()

	logger := logctx.LoggerFromContext(ctx)
	logger.Debug("transfer starting", "dest", destPath)

	start := time.Now()
	written, err := transfer(ctx, src, locator, destPath, tx)
	if err != nil {
		logger.Error("transfer failed", "dest", destPath, "err", err)
		tx.Send(Failure(err.Error()))
		return
	}

	elapsed := time.Since(start)
	speed := float64(written) / max(elapsed.Seconds(), 0.001)
	logger.Info("transfer complete",
		"dest", destPath,
		"bytes", written,
		"elapsed", elapsed.Round(time.Millisecond),
		"speed", humanize.Bytes(uint64(speed))+"/s",
	)
	tx.Send(Finished())
}

func transfer(ctx context.Context, src Source, locator, destPath string, tx *Sender) (int64, error) {
	tmpFile, tmpPath, err := createTempFile(destPath)
	if err != nil {
		return 0, err
	}
	// Failures below intentionally leave tmpPath behind; the suffix loop in
	// createTempFile keeps later transfers from picking it up.

	body, total, err := src.OpenDownloadStream(ctx, locator)
	if err != nil {
		_ = tmpFile.Close()
		return 0, err
	}
	defer func() { _ = body.Close() }()

	var downloaded int64
	buf := make([]byte, copyBufferSize)

	for {
		select {
		case <-tx.Cancelled():
			_ = tmpFile.Close()
			return downloaded, ErrCancelled
		case <-ctx.Done():
			_ = tmpFile.Close()
			return downloaded, ctx.Err()
		default:
		}

		nr, readErr := body.Read(buf)
		if nr > 0 {
			nw, writeErr := tmpFile.Write(buf[:nr])
			if nw > 0 {
				downloaded += int64(nw)
				tx.Send(Progress(downloaded, total))
			}
			if writeErr != nil {
				_ = tmpFile.Close()
				return downloaded, fmt.Errorf("write %s: %w", tmpPath, writeErr)
			}
			if nr != nw {
				_ = tmpFile.Close()
				return downloaded, io.ErrShortWrite
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			_ = tmpFile.Close()
			return downloaded, fmt.Errorf("read: %w", readErr)
		}
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return downloaded, fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return downloaded, fmt.Errorf("close %s: %w", tmpPath, err)
	}

	// The destination name must not exist until the file is complete.
	if err := os.Rename(tmpPath, destPath); err != nil {
		return downloaded, fmt.Errorf("finalize %s: %w", destPath, err)
	}

	return downloaded, nil
}

// createTempFile creates destPath+".part", appending further ".part"
// suffixes until an unused name is found. Leftover temp files from earlier
// runs are never reused or overwritten.
func createTempFile(destPath string) (*os.File, string, error) {
	tmpPath := destPath
	for {
		tmpPath += TempSuffix
		f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, tmpPath, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create %s: %w", tmpPath, err)
		}
	}
}
