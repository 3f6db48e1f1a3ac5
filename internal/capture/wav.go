package capture

import (
	"bytes"
	"encoding/binary"
)

// EncodeWAV wraps mono 16-bit PCM samples in a RIFF/WAVE container.
func EncodeWAV(samples []int16, sampleRate int) []byte {
	var buf bytes.Buffer

	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, int32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, int32(16))
	_ = binary.Write(&buf, binary.LittleEndian, int16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, int16(1)) // mono
	_ = binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, int32(sampleRate*2)) // byte rate
	_ = binary.Write(&buf, binary.LittleEndian, int16(2))            // block align
	_ = binary.Write(&buf, binary.LittleEndian, int16(16))           // bits per sample

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	_ = binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}
