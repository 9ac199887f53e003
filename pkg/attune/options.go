package attune

import "context"

// FaceClassifier turns a face signal into an estimate in attune's label set
// (happy, sad, angry, stressed, neutral). Return a zero-confidence neutral
// estimate when there is no usable face.
type FaceClassifier interface {
	ClassifyFace(ctx context.Context, f Face) (Estimate, error)
}

type options struct {
	modelDir     string
	poolSize     int
	staticText   bool
	faceBackend  string
	faceEndpoint string
	faceToken    string
	face         FaceClassifier
}

// Option configures an Attune instance.
type Option func(*options)

// WithModelDir sets the directory holding the text model files:
// model_quantized.onnx, vocab.txt, classifier.safetensors and labels.txt.
// Default: "models/text".
func WithModelDir(dir string) Option {
	return func(o *options) { o.modelDir = dir }
}

// WithPoolSize sets how many ONNX sessions serve concurrent calls. Default: 2.
func WithPoolSize(n int) Option {
	return func(o *options) { o.poolSize = n }
}

// WithStaticText uses the built-in keyword lexicon instead of the ONNX text
// model. No model files are needed.
func WithStaticText() Option {
	return func(o *options) { o.staticText = true }
}

// WithFaceCues interprets Face.Cues instead of Face.Dominant/Scores.
func WithFaceCues() Option {
	return func(o *options) { o.faceBackend = "cues" }
}

// WithRemoteFace sends faces to an external analysis service at endpoint.
func WithRemoteFace(endpoint, token string) Option {
	return func(o *options) {
		o.faceBackend = "remote"
		o.faceEndpoint = endpoint
		o.faceToken = token
	}
}

// WithFaceClassifier replaces the built-in face interpretation.
func WithFaceClassifier(fc FaceClassifier) Option {
	return func(o *options) { o.face = fc }
}

func defaultOptions() options {
	return options{
		modelDir:    "models/text",
		poolSize:    2,
		faceBackend: "score",
	}
}
