package out

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	renderout "shotwatch/internal/modules/render/port/out"
	apperrors "shotwatch/internal/platform/errors"
)

// FFmpegEncoder pipes PNG frames into an ffmpeg child process that writes an
// H.264 mp4.
type FFmpegEncoder struct {
	binary string
}

// LookFFmpeg resolves the ffmpeg binary on PATH.
func LookFFmpeg() (string, error) {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrEncoderUnavailable, err)
	}
	return path, nil
}

func NewFFmpegEncoder(binary string) renderout.Encoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegEncoder{binary: binary}
}

func (e *FFmpegEncoder) Ext() string { return "mp4" }

func (e *FFmpegEncoder) Open(ctx context.Context, path string, fps int) (renderout.FrameWriter, error) {
	cmd := exec.CommandContext(ctx, e.binary,
		"-y", "-loglevel", "error",
		"-f", "image2pipe", "-framerate", strconv.Itoa(fps), "-c:v", "png", "-i", "-",
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-movflags", "+faststart",
		path,
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %v", apperrors.ErrEncoderUnavailable, err)
	}
	log.Debugf("ffmpeg started for %s at %d fps", path, fps)
	return &ffmpegWriter{cmd: cmd, stdin: stdin, stderr: stderr, path: path}, nil
}

type ffmpegWriter struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	path   string
	size   image.Point
}

func (w *ffmpegWriter) WriteFrame(img image.Image) error {
	if w.size == (image.Point{}) {
		w.size = evenSize(img.Bounds().Size())
	}
	if err := png.Encode(w.stdin, conform(img, w.size)); err != nil {
		return fmt.Errorf("pipe frame to ffmpeg: %w%s", err, w.diagnostics())
	}
	return nil
}

func (w *ffmpegWriter) Close() error {
	if err := w.stdin.Close(); err != nil {
		w.Abort()
		return fmt.Errorf("close ffmpeg stdin: %w", err)
	}
	if err := w.cmd.Wait(); err != nil {
		os.Remove(w.path)
		return fmt.Errorf("ffmpeg: %w%s", err, w.diagnostics())
	}
	return nil
}

func (w *ffmpegWriter) Abort() {
	w.stdin.Close()
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
	_ = w.cmd.Wait()
	os.Remove(w.path)
}

func (w *ffmpegWriter) diagnostics() string {
	msg := strings.TrimSpace(w.stderr.String())
	if msg == "" {
		return ""
	}
	return ": " + msg
}
