package renderer

import "testing"

func TestRecorderArgs(t *testing.T) {
	tests := []struct {
		name  string
		cfg   RecorderConfig
		goos  string
		codec string
		tag   bool
	}{
		{"linux h264", RecorderConfig{Codec: "h264", OutputFile: "out.mp4"}, "linux", "libx264", false},
		{"linux hevc mp4", RecorderConfig{Codec: "hevc", OutputFile: "out.mp4"}, "linux", "libx265", true},
		{"darwin hevc mkv", RecorderConfig{Codec: "hevc", OutputFile: "out.mkv"}, "darwin", "hevc_videotoolbox", false},
		{"darwin h264", RecorderConfig{Codec: "h264", OutputFile: "out.mov"}, "darwin", "h264_videotoolbox", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Width, tt.cfg.Height, tt.cfg.FPS = 640, 360, 30
			in, out := recorderArgs(tt.cfg, tt.goos)
			if in["s"] != "640x360" || in["pix_fmt"] != "rgba" || in["r"] != 30 {
				t.Errorf("input args = %v", in)
			}
			if out["c:v"] != tt.codec {
				t.Errorf("codec = %v, want %s", out["c:v"], tt.codec)
			}
			if _, ok := out["tag:v"]; ok != tt.tag {
				t.Errorf("hvc1 tag present = %v, want %v", ok, tt.tag)
			}
			if out["vf"] != "vflip" {
				t.Errorf("frames are not flipped: %v", out["vf"])
			}
		})
	}
}

func TestNewRecorderRejectsBadConfig(t *testing.T) {
	for _, cfg := range []RecorderConfig{
		{Width: 64, Height: 64, FPS: 30},
		{Width: 0, Height: 64, FPS: 30, OutputFile: "x.mp4"},
		{Width: 64, Height: 64, FPS: 0, OutputFile: "x.mp4"},
	} {
		if _, err := NewRecorder(cfg); err == nil {
			t.Errorf("NewRecorder(%+v) succeeded", cfg)
		}
	}
}
