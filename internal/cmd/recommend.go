package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/attune/internal/engine/recommend"
	"github.com/crimson-sun/attune/internal/model"
)

func newRecommendCmd(_ *app) *cobra.Command {
	var (
		emotion    string
		confidence float64
	)
	cmd := &cobra.Command{
		Use:     "recommend",
		Short:   "Print the task recommendation for an emotion and confidence",
		Example: "  attune recommend --emotion stressed --confidence 0.5",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec := recommend.Recommend(model.ParseEmotion(emotion), model.ClampConfidence(confidence))
			return json.NewEncoder(cmd.OutOrStdout()).Encode(rec)
		},
	}
	cmd.Flags().StringVarP(&emotion, "emotion", "e", "neutral", "emotion label")
	cmd.Flags().Float64VarP(&confidence, "confidence", "c", 0, "confidence in [0, 1]")
	return cmd
}
