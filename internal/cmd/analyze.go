package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/attune/internal/config"
	"github.com/crimson-sun/attune/internal/model"
	"github.com/crimson-sun/attune/internal/output"
	"github.com/crimson-sun/attune/internal/pipeline"
)

type analyzeFlags struct {
	text      string
	faceLabel string
	faceScore float64
	stdin     bool
	record    bool
	pretty    bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Analyze one request, or NDJSON requests from stdin",
		Long: `Analyze text and an optional face result and print the analysis as JSON.

With --stdin, each input line is a request object
{"text": "...", "use_face": true, "face": {"dominant_emotion": "happy", "emotion": {"happy": 91}}}
and one analysis is printed per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			overrideString(cmd, "text-backend", &cfg.Text.Backend)
			overrideString(cmd, "face-backend", &cfg.Face.Backend)
			if f.text == "" && len(args) > 0 {
				f.text = strings.Join(args, " ")
			}
			return runAnalyze(cmd.Context(), cfg, f, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&f.text, "text", "t", "", "text to analyze")
	cmd.Flags().StringVar(&f.faceLabel, "face-label", "", "dominant face emotion from an upstream face model")
	cmd.Flags().Float64Var(&f.faceScore, "face-score", 0, "score of the dominant face emotion, 0-100")
	cmd.Flags().BoolVar(&f.stdin, "stdin", false, "read NDJSON requests from stdin")
	cmd.Flags().BoolVar(&f.record, "record", false, "also write analyses to the configured non-stdout outputs")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "indent JSON output")
	cmd.Flags().String("text-backend", "", "onnx or static (overrides ATTUNE_TEXT_BACKEND)")
	cmd.Flags().String("face-backend", "", "score, cues or remote (overrides ATTUNE_FACE_BACKEND)")
	return cmd
}

func runAnalyze(ctx context.Context, cfg config.Config, f analyzeFlags, in io.Reader, w io.Writer) (err error) {
	if !f.record {
		cfg.Output.Targets = nil
	} else {
		cfg.Output.Targets = slices.DeleteFunc(slices.Clone(cfg.Output.Targets), func(t string) bool { return t == "stdout" })
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	eng, tc, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer tc.Close()

	var out output.Output
	if len(cfg.Output.Targets) > 0 {
		if out, _, err = buildOutputs(cfg.Output); err != nil {
			return err
		}
	}
	p := pipeline.New(eng, out)
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(w)
	if f.pretty {
		enc.SetIndent("", "  ")
	}

	if !f.stdin {
		a, err := p.Process(ctx, f.request())
		if err != nil {
			return err
		}
		return enc.Encode(a)
	}
	return streamRequests(ctx, p, in, enc)
}

func (f analyzeFlags) request() model.Request {
	req := model.Request{Text: f.text}
	if f.faceLabel != "" {
		req.UseFace = true
		req.Face = &model.Frame{
			Dominant: f.faceLabel,
			Scores:   map[string]float64{f.faceLabel: f.faceScore},
		}
	}
	return req
}

// streamRequests decodes NDJSON requests from in, runs them through p and
// encodes each analysis as it completes.
func streamRequests(ctx context.Context, p *pipeline.Pipeline, in io.Reader, enc *json.Encoder) error {
	reqs := make(chan model.Request)
	results := make(chan model.Analysis)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(reqs)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 64*1024), 8<<20)
		line := 0
		for sc.Scan() {
			line++
			raw := strings.TrimSpace(sc.Text())
			if raw == "" {
				continue
			}
			var req model.Request
			if err := json.Unmarshal([]byte(raw), &req); err != nil {
				return fmt.Errorf("stdin line %d: %w", line, err)
			}
			select {
			case reqs <- req:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return sc.Err()
	})
	g.Go(func() error {
		defer close(results)
		return p.Stream(gctx, reqs, results)
	})
	g.Go(func() error {
		for a := range results {
			if err := enc.Encode(a); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}
