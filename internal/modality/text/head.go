package text

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

const (
	weightTensor = "classifier.weight"
	biasTensor   = "classifier.bias"
)

// head is the linear classification layer on top of the pooled encoder
// output: logits = W·x + b, followed by softmax.
type head struct {
	weights []float32 // row-major [classes, dim]
	bias    []float32 // [classes], zeros when the file has no bias
	classes int
	dim     int
}

type tensorMeta struct {
	Dtype       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets [2]int `json:"data_offsets"`
}

func loadHead(path string) (*head, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	return parseHead(data)
}

// parseHead decodes a safetensors blob: an 8-byte little-endian header
// length, a JSON header, then raw tensor bytes.
func parseHead(data []byte) (*head, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("head: file too small: %d bytes", len(data))
	}
	hlen := binary.LittleEndian.Uint64(data[:8])
	if hlen > uint64(len(data)-8) {
		return nil, fmt.Errorf("head: header length %d exceeds file size", hlen)
	}
	body := data[8+hlen:]

	var header map[string]json.RawMessage
	if err := json.Unmarshal(data[8:8+hlen], &header); err != nil {
		return nil, fmt.Errorf("head: parse header: %w", err)
	}

	w, wShape, err := readTensor(header, body, weightTensor)
	if err != nil {
		return nil, err
	}
	if len(wShape) != 2 {
		return nil, fmt.Errorf("head: %s: expected 2D tensor, got shape %v", weightTensor, wShape)
	}
	h := &head{weights: w, classes: wShape[0], dim: wShape[1]}

	if _, ok := header[biasTensor]; ok {
		b, bShape, err := readTensor(header, body, biasTensor)
		if err != nil {
			return nil, err
		}
		if len(bShape) != 1 || bShape[0] != h.classes {
			return nil, fmt.Errorf("head: %s: shape %v does not match %d classes", biasTensor, bShape, h.classes)
		}
		h.bias = b
	} else {
		h.bias = make([]float32, h.classes)
	}
	return h, nil
}

func readTensor(header map[string]json.RawMessage, body []byte, name string) ([]float32, []int, error) {
	raw, ok := header[name]
	if !ok {
		return nil, nil, fmt.Errorf("head: tensor %q not found", name)
	}
	var meta tensorMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, nil, fmt.Errorf("head: %s metadata: %w", name, err)
	}
	if meta.Dtype != "F32" {
		return nil, nil, fmt.Errorf("head: %s: expected dtype F32, got %s", name, meta.Dtype)
	}

	n := 1
	for _, d := range meta.Shape {
		n *= d
	}
	start, end := meta.DataOffsets[0], meta.DataOffsets[1]
	if start < 0 || end > len(body) || end-start != n*4 {
		return nil, nil, fmt.Errorf("head: %s: data range [%d:%d] invalid for shape %v", name, start, end, meta.Shape)
	}

	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[start+i*4:]))
	}
	return out, meta.Shape, nil
}

// probabilities returns softmax(W·x + b).
func (h *head) probabilities(x []float32) []float64 {
	logits := make([]float64, h.classes)
	top := math.Inf(-1)
	for i := range logits {
		row := h.weights[i*h.dim : (i+1)*h.dim]
		sum := float64(h.bias[i])
		for j, w := range row {
			sum += float64(w) * float64(x[j])
		}
		logits[i] = sum
		top = max(top, sum)
	}

	var total float64
	for i, l := range logits {
		logits[i] = math.Exp(l - top)
		total += logits[i]
	}
	for i := range logits {
		logits[i] /= total
	}
	return logits
}

// argmax returns the index of the largest value. Ties keep the first index.
func argmax(p []float64) int {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i] > p[best] {
			best = i
		}
	}
	return best
}

// meanPool averages hidden states over positions where mask is 1.
// hidden is [seqLen * dim].
func meanPool(hidden []float32, mask []int64, dim int) []float32 {
	out := make([]float32, dim)
	var count float32
	for s, m := range mask {
		if m != 1 {
			continue
		}
		count++
		tok := hidden[s*dim : (s+1)*dim]
		for d, v := range tok {
			out[d] += v
		}
	}
	if count == 0 {
		return out
	}
	for d := range out {
		out[d] /= count
	}
	return out
}
