package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"edgellm/internal/catalog"
	"edgellm/internal/generation"
	"edgellm/internal/prompt"
)

// readInput loads prompt data from a YAML or JSON file.
func readInput(path string) (prompt.Input, error) {
	var in prompt.Input
	b, err := os.ReadFile(path)
	if err != nil {
		return in, err
	}
	if err := yaml.Unmarshal(b, &in); err != nil {
		return in, fmt.Errorf("parse %s: %w", path, err)
	}
	return in, nil
}

func newPromptCmd(o *Options) *cobra.Command {
	var category, perspective, data string
	cmd := &cobra.Command{
		Use:     "prompt",
		Short:   "Render the prompt for structured activity data",
		Example: "  edgellm prompt --category wellness --perspective other --data today.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.ParseCategory(category)
			if err != nil {
				return err
			}
			p, err := catalog.ParsePerspective(perspective)
			if err != nil {
				return err
			}
			in, err := readInput(data)
			if err != nil {
				return err
			}
			text, err := prompt.Build(c, p, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&category, "category", "", "health|wellness")
	f.StringVar(&perspective, "perspective", "", "self|other|other_short")
	f.StringVar(&data, "data", "", "YAML or JSON file with activity data")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("perspective")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newGenerateCmd(o *Options) *cobra.Command {
	var target, text, data string
	var stream bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Load a model and run one generation",
		Example: "  edgellm generate --model health/self --data today.yaml\n" +
			"  edgellm --engine scripted --script reply.txt generate --model health-other-q4_k_m.gguf --prompt hi --stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" && data == "" {
				return errors.New("--prompt or --data is required")
			}
			mgr, err := o.newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()
			if err := requestLoad(cmd, mgr, target); err != nil {
				return err
			}
			d, ok := mgr.CurrentResident()
			if !ok {
				return generation.ErrNoModelResident
			}
			if text == "" {
				in, err := readInput(data)
				if err != nil {
					return err
				}
				if text, err = prompt.Build(d.Category, d.Perspective, in); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			var final generation.Event
			for ev := range mgr.Generate(cmd.Context(), text, d.Perspective) {
				if stream {
					if err := enc.Encode(ev); err != nil {
						return err
					}
				}
				if ev.Terminal() {
					final = ev
				}
			}
			if final.Kind == generation.KindError {
				if final.Err != nil {
					return final.Err
				}
				return errors.New(final.Message)
			}
			if !stream {
				fmt.Fprintln(out, final.Text)
			}
			logger.Debug().Str("model", d.Filename).Str("stop", string(final.StopReason)).Int("fragments", final.TokenCount).Msg("generation done")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&target, "model", "", "Model file or category/perspective")
	f.StringVar(&text, "prompt", "", "Raw prompt text")
	f.StringVar(&data, "data", "", "YAML or JSON activity data used to build the prompt")
	f.BoolVar(&stream, "stream", false, "Print every pipeline event as NDJSON")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
