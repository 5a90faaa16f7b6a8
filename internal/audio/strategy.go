package audio

// Strategy is one way of invoking ffmpeg to produce a 16kHz mono waveform.
// The output path is always the last argument.
type Strategy interface {
	Name() string
	Args(input, output, format string) []string
}

type ffmpegStrategy struct {
	name  string
	build func(input, output, format string) []string
}

func (s ffmpegStrategy) Name() string { return s.name }

func (s ffmpegStrategy) Args(input, output, format string) []string {
	return s.build(input, output, format)
}

// demuxers maps declared formats to ffmpeg input format names
var demuxers = map[string]string{
	"wav":  "wav",
	"ogg":  "ogg",
	"webm": "matroska",
	"mp3":  "mp3",
	"m4a":  "mov",
	"amr":  "amr",
	"flac": "flac",
}

// DefaultStrategies returns the generic strategy list in priority order:
// explicit demuxer and codec flags, then codec flags with a probed input,
// then a container-only conversion that lets the decoder infer everything.
func DefaultStrategies() []Strategy {
	return []Strategy{
		ffmpegStrategy{
			name: "explicit",
			build: func(input, output, format string) []string {
				args := []string{"-y", "-hide_banner", "-loglevel", "error"}
				if demuxer, ok := demuxers[format]; ok {
					args = append(args, "-f", demuxer)
				}
				return append(args, "-i", input,
					"-acodec", "pcm_s16le", "-ac", "1", "-ar", "16000", "-f", "wav", output)
			},
		},
		ffmpegStrategy{
			name: "probed",
			build: func(input, output, _ string) []string {
				return []string{"-y", "-hide_banner", "-loglevel", "error", "-i", input,
					"-ac", "1", "-ar", "16000", "-f", "wav", output}
			},
		},
		ffmpegStrategy{
			name: "passthrough",
			build: func(input, output, _ string) []string {
				return []string{"-y", "-hide_banner", "-loglevel", "error", "-i", input, output}
			},
		},
	}
}

// WhatsAppRemuxStrategies returns the remux attempts tried on WhatsApp voice
// notes (opus in ogg) before the generic list.
func WhatsAppRemuxStrategies() []Strategy {
	return []Strategy{
		ffmpegStrategy{
			name: "remux-acodec",
			build: func(input, output, _ string) []string {
				return []string{"-y", "-i", input, "-acodec", "pcm_s16le", "-ac", "1", "-ar", "16000", "-f", "wav", output}
			},
		},
		ffmpegStrategy{
			name: "remux-codec",
			build: func(input, output, _ string) []string {
				return []string{"-y", "-i", input, "-c:a", "pcm_s16le", "-ac", "1", "-ar", "16000", output}
			},
		},
		ffmpegStrategy{
			name: "remux-plain",
			build: func(input, output, _ string) []string {
				return []string{"-y", "-i", input, output}
			},
		},
	}
}
