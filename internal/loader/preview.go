package loader

import "github.com/petems/waverec/internal/audio"

// DefaultPreviewPoints is the display resolution the preview targets.
const DefaultPreviewPoints = 2000

// Preview decimates buf for low-cost waveform display: it strides through
// frames at a fixed step collecting at most targetPoints samples, averages
// channels per selected frame to mono, and normalizes by the maximum
// absolute value (1.0 when silent). Never written back to a file.
func Preview(buf audio.Buffer, targetPoints int) []float32 {
	if targetPoints <= 0 {
		targetPoints = DefaultPreviewPoints
	}
	frames := buf.Frames()
	if frames == 0 {
		return nil
	}

	step := frames / targetPoints
	if step < 1 {
		step = 1
	}

	points := make([]float32, 0, targetPoints)
	for f := 0; f < frames && len(points) < targetPoints; f += step {
		var sum float32
		for c := 0; c < buf.Channels; c++ {
			sum += buf.Data[f*buf.Channels+c]
		}
		points = append(points, sum/float32(buf.Channels))
	}

	var peak float32 = 0
	for _, p := range points {
		if p < 0 {
			p = -p
		}
		if p > peak {
			peak = p
		}
	}
	if peak == 0 {
		peak = 1
	}
	for i := range points {
		points[i] /= peak
	}
	return points
}
