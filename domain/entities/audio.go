package entities

import "fmt"

const (
	CanonicalSampleRate = 16000
	CanonicalChannels   = 1
	WAVMIMEType         = "audio/wav"
)

// AudioClip is an encoded audio payload together with its MIME type
type AudioClip struct {
	Data     []byte
	MIMEType string
}

// CanonicalAudio is the mono 16kHz 16-bit PCM waveform exchanged between
// pipeline components. Data holds a complete RIFF/WAVE file. It lives only for
// the duration of one request.
type CanonicalAudio struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// IsCanonical reports whether the waveform has the canonical rate and channel count
func (a *CanonicalAudio) IsCanonical() bool {
	return a.SampleRate == CanonicalSampleRate && a.Channels == CanonicalChannels
}

// Clip returns the waveform as an inline audio part
func (a *CanonicalAudio) Clip() AudioClip {
	return AudioClip{Data: a.Data, MIMEType: WAVMIMEType}
}

func (a *CanonicalAudio) String() string {
	return fmt.Sprintf("%d bytes, %dHz, %dch", len(a.Data), a.SampleRate, a.Channels)
}

// MIMETypeForFormat maps a container/format name to the MIME type backends expect
func MIMETypeForFormat(format string) string {
	switch format {
	case "wav", "wave":
		return WAVMIMEType
	case "ogg", "opus", "oga":
		return "audio/ogg"
	case "webm":
		return "audio/webm"
	case "mp3", "mpeg":
		return "audio/mpeg"
	case "m4a", "mp4", "aac":
		return "audio/mp4"
	case "amr":
		return "audio/amr"
	case "flac":
		return "audio/flac"
	default:
		return "application/octet-stream"
	}
}

// FormatForMIMEType is the inverse of MIMETypeForFormat; parameters such as
// "; codecs=opus" are ignored.
func FormatForMIMEType(mimeType string) string {
	base := mimeType
	for i, r := range mimeType {
		if r == ';' {
			base = mimeType[:i]
			break
		}
	}
	switch base {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "wav"
	case "audio/ogg", "audio/opus":
		return "ogg"
	case "audio/webm":
		return "webm"
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a", "audio/aac":
		return "m4a"
	case "audio/amr":
		return "amr"
	case "audio/flac", "audio/x-flac":
		return "flac"
	default:
		return ""
	}
}
