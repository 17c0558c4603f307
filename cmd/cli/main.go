package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jonas-jun/inv-secretary/internal/app"
	"github.com/jonas-jun/inv-secretary/internal/config"
	"github.com/jonas-jun/inv-secretary/internal/handler"
	"github.com/jonas-jun/inv-secretary/internal/model"
	"github.com/jonas-jun/inv-secretary/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "invsec",
		Short:        "Fetch and summarize stock news from the command line",
		SilenceUsage: true,
	}
	root.AddCommand(newDigestCmd(), newInvalidateCmd())
	return root
}

func newDigestCmd() *cobra.Command {
	var lang string
	var limit int

	cmd := &cobra.Command{
		Use:   "digest SYMBOL",
		Short: "Print the digest for a symbol, or MARKET for the market pulse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			language, ok := model.ParseLanguage(lang)
			if !ok {
				return fmt.Errorf("invalid --lang %q (valid: ko, en)", lang)
			}
			if limit < 1 || limit > pipeline.MaxLimit {
				return fmt.Errorf("--limit must be between 1 and %d", pipeline.MaxLimit)
			}

			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				res, err := a.Pipeline.GetDigest(ctx, pipeline.Request{
					Symbol:   strings.ToUpper(args[0]),
					Language: language,
					Limit:    limit,
				})
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(handler.NewNewsResponse(res))
			})
		},
	}
	cmd.Flags().StringVar(&lang, "lang", string(model.LanguageKorean), "digest language (ko, en)")
	cmd.Flags().IntVar(&limit, "limit", pipeline.DefaultLimit, "number of articles to summarize")
	return cmd
}

func newInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate SYMBOL",
		Short: "Drop cached digests for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				n, err := a.Pipeline.Invalidate(ctx, strings.ToUpper(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "invalidated %d digest(s)\n", n)
				return nil
			})
		},
	}
}

func withApp(parent context.Context, fn func(context.Context, *app.App) error) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app.SetupLogging(cfg)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
