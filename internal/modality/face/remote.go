package face

import (
	"context"
	"fmt"
	"strings"

	"github.com/crimson-sun/attune/internal/engine/taxonomy"
	"github.com/crimson-sun/attune/internal/httpclient"
	"github.com/crimson-sun/attune/internal/model"
)

const healthPath = "/health"

// RemoteClassifier sends frames to an external face analysis service and
// interprets its dominant-emotion response.
type RemoteClassifier struct {
	client  *httpclient.Client
	path    string
	mapping taxonomy.Mapping
}

// NewRemote creates a RemoteClassifier that POSTs to endpoint. The endpoint
// is split into base URL and path so the client can be shared.
func NewRemote(endpoint, token string, opts ...httpclient.Option) *RemoteClassifier {
	base, path := splitEndpoint(endpoint)
	return &RemoteClassifier{
		client:  httpclient.New(base, token, opts...),
		path:    path,
		mapping: taxonomy.FaceToFinal,
	}
}

type remoteResponse struct {
	Dominant string             `json:"dominant_emotion"`
	Scores   map[string]float64 `json:"emotion"`
	Face     *bool              `json:"face_detected,omitempty"`
}

// Classify implements Classifier. A response reporting no face is NoSignal.
func (r *RemoteClassifier) Classify(ctx context.Context, f *model.Frame) (model.Estimate, error) {
	if f == nil {
		return model.NoSignal, nil
	}
	var resp remoteResponse
	if err := r.client.PostJSON(ctx, r.path, f, &resp); err != nil {
		return model.NoSignal, fmt.Errorf("remote face: %w", err)
	}
	if (resp.Face != nil && !*resp.Face) || resp.Dominant == "" {
		return model.NoSignal, nil
	}
	return fromScores(resp.Dominant, resp.Scores, r.mapping), nil
}

// Ping checks that the service answers GET /health on the endpoint's host.
func (r *RemoteClassifier) Ping(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	if err := r.client.GetJSON(ctx, healthPath, nil, &status); err != nil {
		return fmt.Errorf("remote face: health: %w", err)
	}
	return nil
}

func splitEndpoint(endpoint string) (base, path string) {
	endpoint = strings.TrimRight(endpoint, "/")
	scheme := strings.Index(endpoint, "://")
	start := 0
	if scheme >= 0 {
		start = scheme + 3
	}
	if i := strings.Index(endpoint[start:], "/"); i >= 0 {
		return endpoint[:start+i], endpoint[start+i:]
	}
	return endpoint, "/analyze"
}
