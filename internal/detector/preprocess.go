package detector

import (
	"fmt"
	"image"
	"runtime"
	"sync"
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return make([]float32, InputWidth*InputHeight*3)
	},
}

// prepareInput fills dst with the CHW float32 normalization of pic.
// Rows are partitioned across workers; each writes a disjoint slice of
// the pooled buffer.
func prepareInput(pic image.Image, dst []float32) error {
	channelSize := InputWidth * InputHeight
	if len(dst) < channelSize*3 {
		return fmt.Errorf("input tensor too small: %d", len(dst))
	}

	buffer := bufferPool.Get().([]float32)
	defer bufferPool.Put(buffer)

	numWorkers := runtime.NumCPU()
	if numWorkers > InputHeight {
		numWorkers = InputHeight
	}
	rowsPerWorker := InputHeight / numWorkers
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		startY := w * rowsPerWorker
		endY := startY + rowsPerWorker
		if w == numWorkers-1 {
			endY = InputHeight
		}

		go func(startY, endY int) {
			defer wg.Done()
			for y := startY; y < endY; y++ {
				offset := y * InputWidth
				for x := 0; x < InputWidth; x++ {
					i := offset + x
					r, g, b, _ := pic.At(x, y).RGBA()
					buffer[i] = float32(r>>8) / 255.0
					buffer[channelSize+i] = float32(g>>8) / 255.0
					buffer[channelSize*2+i] = float32(b>>8) / 255.0
				}
			}
		}(startY, endY)
	}

	wg.Wait()

	copy(dst, buffer)
	return nil
}
