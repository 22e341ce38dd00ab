package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"edgellm/internal/config"
	"edgellm/internal/httpapi"
)

func newServeCmd(o *Options) *cobra.Command {
	var (
		cors        bool
		corsOrigins string
		corsMethods string
		corsHeaders string
		genTimeout  int64
		maxBody     int64
		preload     string
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the local HTTP API",
		Example: "  edgellm serve --addr 127.0.0.1:8080 --models-dir ~/models/edgellm",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := o.Cfg
			mgr, err := o.newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if r := mgr.SanityCheck(); !r.OK() {
				logger.Warn().Str("engine", r.Engine).Bool("llama_built", r.LlamaBuilt).Str("models_dir", r.ModelsDir).
					Str("error", r.Error).Msg("preflight check failed; loads will fail until fixed")
			} else if len(r.MissingModels) > 0 {
				logger.Warn().Strs("missing", r.MissingModels).Msg("catalog models missing from models dir")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if preload != "" {
				if err := mgr.RequestLoadByName(ctx, preload); err != nil {
					return err
				}
			}

			httpapi.SetLogger(logger)
			httpapi.SetBaseContext(ctx)
			httpapi.SetGenerateTimeoutSeconds(genTimeout)
			httpapi.SetMaxBodyBytes(maxBody)
			if cmd.Flags().Changed("cors") || cfg.CORSEnabled {
				origins, methods, headers := cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders
				if corsOrigins != "" {
					origins = splitCSV(corsOrigins)
				}
				if corsMethods != "" {
					methods = splitCSV(corsMethods)
				}
				if corsHeaders != "" {
					headers = splitCSV(corsHeaders)
				}
				httpapi.SetCORSOptions(cors || cfg.CORSEnabled, origins, methods, headers)
			}

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           httpapi.NewMux(mgr),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Str("engine", cfg.Engine).Msg("edgellm listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("graceful shutdown")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "HTTP listen address (defaults EDGELLM_ADDR or "+config.DefaultAddr+")")
	f.BoolVar(&cors, "cors", false, "Enable CORS")
	f.StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed origins")
	f.StringVar(&corsMethods, "cors-methods", "", "Comma-separated allowed methods")
	f.StringVar(&corsHeaders, "cors-headers", "", "Comma-separated allowed headers")
	f.Int64Var(&genTimeout, "generate-timeout", 0, "Seconds before a /generate stream is cut (0 = none)")
	f.Int64Var(&maxBody, "max-body-bytes", 1<<20, "Maximum JSON request body size")
	f.StringVar(&preload, "preload", "", "Model file to make resident at startup")
	return cmd
}
