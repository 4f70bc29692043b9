// Package encoding assembles captured frame sequences into H.264 MP4 files.
//
// The assembler verifies the frame set on disk before invoking ffmpeg through
// internal/cmdrun, writes to a partial file beside the destination, and renames
// it into the public videos directory only after ffmpeg exits cleanly. Encoder
// diagnostics are carried on the returned error so the pipeline log explains
// the failure without re-running the command.
package encoding
