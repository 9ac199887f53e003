package text

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNX Runtime is initialized once per process.
var runtime struct {
	once sync.Once
	err  error
}

func initRuntime(libPath string) error {
	runtime.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		runtime.err = ort.InitializeEnvironment()
	})
	return runtime.err
}

var encoderInputs = []string{"input_ids", "attention_mask", "token_type_ids"}

// encoder wraps one ONNX session of a BERT-style encoder producing
// [batch, seq, dim] hidden states.
type encoder struct {
	session *ort.DynamicAdvancedSession
	output  string
	dim     int64
}

func newEncoder(modelPath string) (*encoder, error) {
	lib := filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	if err := initRuntime(lib); err != nil {
		return nil, fmt.Errorf("onnx: initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: read model info: %w", err)
	}
	have := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		have[in.Name] = true
	}
	for _, name := range encoderInputs {
		if !have[name] {
			return nil, fmt.Errorf("onnx: model missing input %q", name)
		}
	}
	if len(outputs) == 0 {
		return nil, errors.New("onnx: model has no outputs")
	}
	if dims := outputs[0].Dimensions; len(dims) != 3 {
		return nil, fmt.Errorf("onnx: expected 3D output, got %v", dims)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(2)
	opts.SetInterOpNumThreads(1)

	sess, err := ort.NewDynamicAdvancedSession(modelPath, encoderInputs, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: create session: %w", err)
	}
	return &encoder{session: sess, output: outputs[0].Name, dim: outputs[0].Dimensions[2]}, nil
}

// hidden runs the encoder on one sequence and returns [seqLen * dim] floats.
func (e *encoder) hidden(enc encoding) ([]float32, error) {
	shape := ort.NewShape(1, enc.seqLen())

	var inputs []ort.Value
	defer func() {
		for _, v := range inputs {
			v.Destroy()
		}
	}()
	for _, data := range [][]int64{enc.inputIDs, enc.attentionMask, enc.tokenTypeIDs} {
		t, err := ort.NewTensor(shape, data)
		if err != nil {
			return nil, fmt.Errorf("onnx: input tensor: %w", err)
		}
		inputs = append(inputs, t)
	}

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, enc.seqLen(), e.dim))
	if err != nil {
		return nil, fmt.Errorf("onnx: output tensor: %w", err)
	}
	defer out.Destroy()

	if err := e.session.Run(inputs, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("onnx: inference: %w", err)
	}
	return append([]float32(nil), out.GetData()...), nil
}

func (e *encoder) close() error {
	return e.session.Destroy()
}

// encoderPool hands out encoders to concurrent callers. Each encoder is used
// by one goroutine at a time.
type encoderPool struct {
	free chan *encoder
	all  []*encoder
}

func newEncoderPool(modelPath string, size int) (*encoderPool, error) {
	if size < 1 {
		size = 1
	}
	p := &encoderPool{free: make(chan *encoder, size)}
	for range size {
		e, err := newEncoder(modelPath)
		if err != nil {
			p.close()
			return nil, err
		}
		p.all = append(p.all, e)
		p.free <- e
	}
	return p, nil
}

func (p *encoderPool) acquire(ctx context.Context) (*encoder, error) {
	select {
	case e := <-p.free:
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *encoderPool) release(e *encoder) { p.free <- e }

func (p *encoderPool) close() error {
	var errs []error
	for _, e := range p.all {
		if err := e.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
