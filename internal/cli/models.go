package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"edgellm/internal/catalog"
	"edgellm/internal/manager"
)

func newModelsCmd(o *Options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List catalog models and whether their files are present",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := o.newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"models": mgr.ListModels(), "sanity": mgr.SanityCheck()})
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILENAME\tCATEGORY\tPERSPECTIVE\tPRIORITY\tPRESENT\tNAME")
			for _, m := range mgr.ListModels() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%v\t%s\n", m.Filename, m.Category, m.Perspective, m.Priority, m.Present, m.DisplayName)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if r := mgr.SanityCheck(); !r.OK() {
				fmt.Fprintf(out, "\nwarning: engine=%s llama_built=%v models_dir=%s %s\n", r.Engine, r.LlamaBuilt, r.ModelsDir, r.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

// requestLoad loads target, given as a model filename or "category/perspective".
func requestLoad(cmd *cobra.Command, mgr *manager.Manager, target string) error {
	if c, p, ok := splitPair(target); ok {
		return mgr.RequestLoadFor(cmd.Context(), c, p)
	}
	return mgr.RequestLoadByName(cmd.Context(), target)
}

func splitPair(s string) (catalog.Category, catalog.Perspective, bool) {
	cs, ps, ok := strings.Cut(s, "/")
	if !ok {
		return "", "", false
	}
	c, err := catalog.ParseCategory(cs)
	if err != nil {
		return "", "", false
	}
	p, err := catalog.ParsePerspective(ps)
	if err != nil {
		return "", "", false
	}
	return c, p, true
}

func newLoadCmd(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "load <model.gguf|category/perspective>",
		Short:   "Make a model resident and report the slot status",
		Example: "  edgellm load health-self-q4_k_m.gguf\n  edgellm load wellness/other_short",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := o.newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()
			if err := requestLoad(cmd, mgr, args[0]); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(mgr.Status())
		},
	}
}
