package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// WAVInfo describes the format chunk of a RIFF/WAVE file
type WAVInfo struct {
	AudioFormat   int
	Channels      int
	SampleRate    int
	BitsPerSample int
}

// InspectWAV reads the fmt chunk of a RIFF/WAVE file
func InspectWAV(data []byte) (WAVInfo, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return WAVInfo{}, errors.New("not a RIFF/WAVE file")
	}

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if id == "fmt " {
			if size < 16 || body+16 > len(data) {
				return WAVInfo{}, errors.New("truncated fmt chunk")
			}
			return WAVInfo{
				AudioFormat:   int(binary.LittleEndian.Uint16(data[body : body+2])),
				Channels:      int(binary.LittleEndian.Uint16(data[body+2 : body+4])),
				SampleRate:    int(binary.LittleEndian.Uint32(data[body+4 : body+8])),
				BitsPerSample: int(binary.LittleEndian.Uint16(data[body+14 : body+16])),
			}, nil
		}
		// chunks are word aligned
		offset = body + size + size%2
	}
	return WAVInfo{}, errors.New("fmt chunk not found")
}

// EncodeWAV wraps 16-bit little-endian PCM samples in a RIFF/WAVE header
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	var buf bytes.Buffer
	blockAlign := channels * 2
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

func (i WAVInfo) String() string {
	return fmt.Sprintf("format=%d %dHz %dch %dbit", i.AudioFormat, i.SampleRate, i.Channels, i.BitsPerSample)
}
