package encoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"graphion/internal/capture"
	"graphion/internal/cmdrun"
	"graphion/internal/config"
	"graphion/internal/fileutil"
	"graphion/internal/logging"
	"graphion/internal/services"
)

// PublicPrefix is the URL path videos are served under.
const PublicPrefix = "/videos/"

// Profile is the ffmpeg output profile.
type Profile struct {
	Binary      string
	Codec       string
	CRF         int
	Preset      string
	PixelFormat string
}

// ProfileFromApp derives the encoding profile from application config.
func ProfileFromApp(cfg *config.Config) Profile {
	return Profile{
		Binary:      cfg.Encoding.FFmpegBinary,
		Codec:       cfg.Encoding.Codec,
		CRF:         cfg.Encoding.CRF,
		Preset:      cfg.Encoding.Preset,
		PixelFormat: cfg.Encoding.PixelFormat,
	}
}

// Artifact is a published video.
type Artifact struct {
	Path       string
	PublicPath string
	SizeBytes  int64
}

// Assembler turns frame sets into MP4 files under a videos directory.
type Assembler struct {
	profile   Profile
	videosDir string
	runner    cmdrun.Runner
	logger    *slog.Logger
}

// NewAssembler builds an assembler. A nil runner uses cmdrun.Exec.
func NewAssembler(profile Profile, videosDir string, runner cmdrun.Runner, logger *slog.Logger) *Assembler {
	if runner == nil {
		runner = cmdrun.Exec{}
	}
	if strings.TrimSpace(profile.Binary) == "" {
		profile.Binary = "ffmpeg"
	}
	return &Assembler{
		profile:   profile,
		videosDir: videosDir,
		runner:    runner,
		logger:    logging.NewComponentLogger(logger, "encoding"),
	}
}

// OutputName is the artifact file name for a session.
func OutputName(sessionID string) string {
	return "video_" + sessionID + ".mp4"
}

// Assemble encodes frames into <videosDir>/video_<sessionID>.mp4.
func (a *Assembler) Assemble(ctx context.Context, frames capture.FrameSet, expected int, sessionID string) (Artifact, error) {
	logger := logging.WithContext(ctx, a.logger)

	found, err := capture.CountFrames(frames.Dir, frames.Extension)
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrEncodingFailed, "encoding", "count frames", "", err)
	}
	if found != expected || found == 0 {
		return Artifact{}, services.Wrap(services.ErrEncodingFailed, "encoding", "verify frames",
			fmt.Sprintf("found %d frames, expected %d", found, expected), nil)
	}

	if err := os.MkdirAll(a.videosDir, 0o755); err != nil {
		return Artifact{}, services.Wrap(services.ErrEncodingFailed, "encoding", "create videos dir", "", err)
	}
	name := OutputName(sessionID)
	dest := filepath.Join(a.videosDir, name)
	partial := strings.TrimSuffix(dest, ".mp4") + ".partial.mp4"
	defer func() { _ = os.Remove(partial) }()

	args := a.Args(frames, partial)
	logger.Info("launching ffmpeg",
		logging.String(logging.FieldEventType, "encode_started"),
		logging.String("command", a.profile.Binary+" "+strings.Join(args, " ")),
		logging.Int("frames", found),
	)
	res, err := a.runner.Run(ctx, a.profile.Binary, args...)
	if err != nil {
		var exitErr *cmdrun.ExitError
		if errors.As(err, &exitErr) {
			logging.WarnWithContext(logger, "ffmpeg failed", "encode_failed",
				logging.Int("exit_code", exitErr.ExitCode),
				logging.String("stderr", exitErr.Stderr),
				logging.String(logging.FieldErrorHint, "inspect ffmpeg stderr"),
				logging.String(logging.FieldImpact, "no video produced"),
			)
		}
		return Artifact{}, services.Wrap(services.ErrEncodingFailed, "encoding", "ffmpeg", "", err)
	}

	info, err := os.Stat(partial)
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrEncodingFailed, "encoding", "stat output", "ffmpeg produced no file", err)
	}
	if info.Size() == 0 {
		return Artifact{}, services.Wrap(services.ErrEncodingFailed, "encoding", "stat output", "ffmpeg produced an empty file", nil)
	}
	if err := fileutil.PublishFile(partial, dest); err != nil {
		return Artifact{}, services.Wrap(services.ErrEncodingFailed, "encoding", "publish", "", err)
	}

	artifact := Artifact{
		Path:       dest,
		PublicPath: path.Join(PublicPrefix, name),
		SizeBytes:  info.Size(),
	}
	logger.Info("encode complete",
		logging.String(logging.FieldEventType, "encode_complete"),
		logging.String("output", dest),
		logging.Int64("size_bytes", artifact.SizeBytes),
		logging.Duration("elapsed", res.Duration),
	)
	return artifact, nil
}

// Args returns the ffmpeg arguments that encode frames into dest.
func (a *Assembler) Args(frames capture.FrameSet, dest string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-framerate", strconv.Itoa(frames.FPS),
		"-i", frames.Pattern(),
		"-c:v", a.profile.Codec,
		"-preset", a.profile.Preset,
		"-crf", strconv.Itoa(a.profile.CRF),
		"-pix_fmt", a.profile.PixelFormat,
		"-movflags", "+faststart",
		dest,
	}
}
