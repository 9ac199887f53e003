// Package text estimates emotion from free text.
package text

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/crimson-sun/attune/internal/engine/taxonomy"
	"github.com/crimson-sun/attune/internal/model"
)

// Classifier estimates the emotion expressed in a piece of text.
// Empty text yields model.NoSignal.
type Classifier interface {
	Classify(ctx context.Context, text string) (model.Estimate, error)
	Close() error
}

// Model file names expected inside a model directory.
const (
	ModelFile  = "model_quantized.onnx"
	VocabFile  = "vocab.txt"
	HeadFile   = "classifier.safetensors"
	LabelsFile = "labels.txt"
)

// Paths locates the files of an ONNX text model.
type Paths struct {
	Model  string
	Vocab  string
	Head   string
	Labels string
}

// PathsIn returns the default file layout under dir.
func PathsIn(dir string) Paths {
	return Paths{
		Model:  filepath.Join(dir, ModelFile),
		Vocab:  filepath.Join(dir, VocabFile),
		Head:   filepath.Join(dir, HeadFile),
		Labels: filepath.Join(dir, LabelsFile),
	}
}

// ONNXClassifier runs a BERT-style encoder, mean-pools its output and feeds
// it through a linear head. The winning native label is mapped into the
// final taxonomy; its softmax probability is the confidence.
type ONNXClassifier struct {
	pool    *encoderPool
	tok     *wordpiece
	head    *head
	labels  []string
	mapping taxonomy.Mapping
}

// NewONNX loads the model files in p. poolSize encoder sessions are created
// so that up to poolSize requests run inference concurrently.
func NewONNX(p Paths, poolSize int) (*ONNXClassifier, error) {
	v, err := loadVocab(p.Vocab)
	if err != nil {
		return nil, fmt.Errorf("text classifier: %w", err)
	}
	h, err := loadHead(p.Head)
	if err != nil {
		return nil, fmt.Errorf("text classifier: %w", err)
	}
	labels, err := loadLabels(p.Labels)
	if err != nil {
		return nil, fmt.Errorf("text classifier: %w", err)
	}
	if len(labels) != h.classes {
		return nil, fmt.Errorf("text classifier: %d labels but head has %d classes", len(labels), h.classes)
	}

	pool, err := newEncoderPool(p.Model, poolSize)
	if err != nil {
		return nil, fmt.Errorf("text classifier: %w", err)
	}
	if dim := int(pool.all[0].dim); dim != h.dim {
		pool.close()
		return nil, fmt.Errorf("text classifier: encoder dim %d != head input dim %d", dim, h.dim)
	}

	for _, l := range labels {
		if _, ok := taxonomy.TextToFinal.Lookup(l); !ok {
			slog.Warn("text label has no mapping, will report neutral", "label", l)
		}
	}

	return &ONNXClassifier{
		pool:    pool,
		tok:     &wordpiece{vocab: v},
		head:    h,
		labels:  labels,
		mapping: taxonomy.TextToFinal,
	}, nil
}

// Classify implements Classifier.
func (c *ONNXClassifier) Classify(ctx context.Context, text string) (model.Estimate, error) {
	if strings.TrimSpace(text) == "" {
		return model.NoSignal, nil
	}

	enc := c.tok.encode(text)

	e, err := c.pool.acquire(ctx)
	if err != nil {
		return model.NoSignal, err
	}
	hidden, err := e.hidden(enc)
	c.pool.release(e)
	if err != nil {
		return model.NoSignal, fmt.Errorf("text classifier: %w", err)
	}

	probs := c.head.probabilities(meanPool(hidden, enc.attentionMask, c.head.dim))
	best := argmax(probs)
	native := c.labels[best]

	slog.Debug("text classified", "native", native, "probability", probs[best])
	return model.Estimate{
		Label:      taxonomy.MapToFinal(native, c.mapping),
		Confidence: model.ClampConfidence(probs[best]),
	}, nil
}

// Close releases the ONNX sessions.
func (c *ONNXClassifier) Close() error {
	return c.pool.close()
}
