package system

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// MediaInfo is what ffprobe reports about a source video.
type MediaInfo struct {
	DurationMs int64
	Width      int
	Height     int
	FPS        float64
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeMedia runs ffprobe on path.
func ProbeMedia(ctx context.Context, path string) (MediaInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_type,width,height,avg_frame_rate,r_frame_rate:format=duration",
		"-of", "json", path)
	out, err := cmd.Output()
	if err != nil {
		return MediaInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return ParseProbe(out)
}

// ParseProbe decodes ffprobe JSON output.
func ParseProbe(data []byte) (MediaInfo, error) {
	var raw ffprobeOutput
	if err := jsoniter.Unmarshal(data, &raw); err != nil {
		return MediaInfo{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	var info MediaInfo
	if d, err := strconv.ParseFloat(strings.TrimSpace(raw.Format.Duration), 64); err == nil {
		info.DurationMs = int64(math.Round(d * 1000))
	}
	for _, s := range raw.Streams {
		if s.CodecType != "" && s.CodecType != "video" {
			continue
		}
		info.Width, info.Height = s.Width, s.Height
		info.FPS = parseRate(s.AvgFrameRate)
		if info.FPS == 0 {
			info.FPS = parseRate(s.RFrameRate)
		}
		break
	}
	if info.Width == 0 || info.Height == 0 {
		return info, fmt.Errorf("%w: video stream", ErrNotFound)
	}
	return info, nil
}

// parseRate reads an ffprobe rational like "30000/1001".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
