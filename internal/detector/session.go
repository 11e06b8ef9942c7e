package detector

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"
)

// InitRuntime initializes the ONNX runtime environment. libPath may be
// empty, in which case the library is looked up by its platform
// default name.
func InitRuntime(libPath string) error {
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnx environment: %w", err)
	}
	return nil
}

func DestroyRuntime() {
	ort.DestroyEnvironment()
}

// Handle is one loaded detector: a session with its fixed-shape input
// and output tensors. Input is [1,3,640,640]; output is
// [1, 4+numClasses, 8400] in YOLO layout.
type Handle struct {
	session    *ort.AdvancedSession
	input      *ort.Tensor[float32]
	output     *ort.Tensor[float32]
	numClasses int
}

func NewHandle(modelPath string, numClasses int) (*Handle, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("error creating session options: %w", err)
	}
	defer options.Destroy()

	options.SetIntraOpNumThreads(runtime.NumCPU())
	options.SetInterOpNumThreads(runtime.NumCPU())

	inputShape := ort.NewShape(1, 3, InputWidth, InputHeight)
	outputShape := ort.NewShape(1, int64(4+numClasses), NumAnchors)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	return &Handle{
		session:    session,
		input:      inputTensor,
		output:     outputTensor,
		numClasses: numClasses,
	}, nil
}

func (h *Handle) Destroy() {
	if h.session != nil {
		h.session.Destroy()
	}
	if h.input != nil {
		h.input.Destroy()
	}
	if h.output != nil {
		h.output.Destroy()
	}
}

// Detect runs the model over the image and returns post-processed
// boxes in original image space, sorted by confidence and filtered by
// per-class non-maximum suppression at iouThreshold.
func (h *Handle) Detect(ctx context.Context, img image.Image, confThreshold, iouThreshold float32) ([]RawDetection, error) {
	var lastErr error

	for attempt := 1; attempt <= RetryAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			detections, err := h.detectOnce(img, confThreshold, iouThreshold)
			if err == nil {
				return detections, nil
			}
			lastErr = err

			if attempt < RetryAttempts {
				time.Sleep(time.Duration(attempt) * RetryDelayMs * time.Millisecond)
				continue
			}
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("unknown error")
}

func (h *Handle) detectOnce(img image.Image, confThreshold, iouThreshold float32) ([]RawDetection, error) {
	resized := imaging.Resize(img, InputWidth, InputHeight, imaging.Lanczos)

	if err := prepareInput(resized, h.input.GetData()); err != nil {
		return nil, fmt.Errorf("prepare input buffer: %w", err)
	}

	if err := h.session.Run(); err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}

	detections, err := decodePredictions(h.output.GetData(), h.numClasses,
		img.Bounds().Dx(), img.Bounds().Dy(), confThreshold)
	if err != nil {
		return nil, fmt.Errorf("process predictions: %w", err)
	}

	return suppressOverlaps(detections, iouThreshold), nil
}
