package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/attune/internal/engine/fusion"
	"github.com/crimson-sun/attune/internal/engine/recommend"
	"github.com/crimson-sun/attune/internal/engine/taxonomy"
	"github.com/crimson-sun/attune/internal/model"
)

type fuseResult struct {
	Final          model.Estimate        `json:"final"`
	Rule           fusion.Rule           `json:"fusion_rule"`
	Recommendation *model.Recommendation `json:"recommendation,omitempty"`
}

func newFuseCmd(_ *app) *cobra.Command {
	var (
		text, face         model.Estimate
		textLabel, faceLbl string
		textMap, faceMap   string
		withRec            bool
	)
	cmd := &cobra.Command{
		Use:   "fuse",
		Short: "Fuse a text and a face estimate",
		Example: `  attune fuse --text-label sad --text-conf 0.5 --face-label stressed --face-conf 0.6
  attune fuse --text-label happy --text-conf 0.9 --recommend
  attune fuse --text-mapping text --text-label nervousness --text-conf 0.7 \
    --face-mapping face --face-label happy --face-conf 0.8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tm, ok := taxonomy.ByName(textMap)
			if !ok {
				return fmt.Errorf("unknown text mapping %q", textMap)
			}
			fm, ok := taxonomy.ByName(faceMap)
			if !ok {
				return fmt.Errorf("unknown face mapping %q", faceMap)
			}
			text.Label = taxonomy.MapToFinal(textLabel, tm)
			face.Label = taxonomy.MapToFinal(faceLbl, fm)
			slog.Debug("fusing", "text_mapping", tm.Name(), "text", text.Label, "face_mapping", fm.Name(), "face", face.Label)
			text.Confidence = model.ClampConfidence(text.Confidence)
			face.Confidence = model.ClampConfidence(face.Confidence)

			final, rule := fusion.FuseExplain(text, face)
			res := fuseResult{Final: final, Rule: rule}
			if withRec {
				rec := recommend.Recommend(final.Label, final.Confidence)
				res.Recommendation = &rec
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
		},
	}
	cmd.Flags().StringVar(&textLabel, "text-label", "neutral", "text emotion label")
	cmd.Flags().Float64Var(&text.Confidence, "text-conf", 0, "text confidence in [0, 1]")
	cmd.Flags().StringVar(&faceLbl, "face-label", "neutral", "face emotion label")
	cmd.Flags().Float64Var(&face.Confidence, "face-conf", 0, "face confidence in [0, 1]")
	cmd.Flags().StringVar(&textMap, "text-mapping", "identity", "vocabulary of --text-label: identity, text or face")
	cmd.Flags().StringVar(&faceMap, "face-mapping", "identity", "vocabulary of --face-label: identity, text or face")
	cmd.Flags().BoolVar(&withRec, "recommend", false, "include the recommendation for the fused result")
	return cmd
}
