package audio

import (
	"encoding/binary"
	"math"

	"github.com/jinjor/desktop-oscilloscope/src/device"
)

func supportedFormat(f device.Format) bool {
	switch f {
	case device.FormatFloat32, device.FormatInt16, device.FormatUint16:
		return true
	}
	return false
}

// putSample encodes v in [-1, 1] at the start of buf.
func putSample(buf []byte, f device.Format, v float64) {
	switch f {
	case device.FormatFloat32:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
	case device.FormatInt16:
		const max = 32767
		binary.LittleEndian.PutUint16(buf, uint16(int16(clampSample(v)*max)))
	case device.FormatUint16:
		const max = 32767
		binary.LittleEndian.PutUint16(buf, uint16(int32(clampSample(v)*max)+32768))
	}
}

func clampSample(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// writeSilence fills buf with the equilibrium value of f.
func writeSilence(buf []byte, f device.Format) {
	switch f {
	case device.FormatUint16:
		for i := 0; i+1 < len(buf); i += 2 {
			binary.LittleEndian.PutUint16(buf[i:], 32768)
		}
	default:
		for i := range buf {
			buf[i] = 0
		}
	}
}
