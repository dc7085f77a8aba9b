package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"socialbench/biz/bench"
	"socialbench/biz/model/benchmark"
	"socialbench/internal/bootstrap"
)

var (
	cfgFile string

	flagTestType   string
	flagMaxLevel   int
	flagIterations int
	flagProductID  string
	flagUserID     string
	flagNoStore    bool
)

var rootCmd = &cobra.Command{
	Use:   "socialbench",
	Short: "PostgreSQL vs Neo4j benchmark for a social-commerce dataset",
	Long: `socialbench runs equivalent analytical workloads against a relational
store (PostgreSQL) and a graph store (Neo4j), measures latency distributions
and renders a comparative summary.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark and print the comparative summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := bootstrap.Init(ctx, cfgFile)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		opts := bench.Options{
			TestType:   benchmark.TestType(flagTestType),
			MaxLevel:   flagMaxLevel,
			Iterations: flagIterations,
			ProductID:  flagProductID,
			UserID:     flagUserID,
			SampleSize: app.Config.Benchmark.SampleSize,
		}
		if opts.MaxLevel == 0 {
			opts.MaxLevel = app.Config.Benchmark.DefaultMaxLevel
		}
		if opts.Iterations == 0 {
			opts.Iterations = app.Config.Benchmark.DefaultIterations
		}

		report, err := app.Orchestrator.Run(ctx, opts)
		if err != nil {
			return err
		}

		fmt.Print(bench.FormatSummary(report))
		fmt.Printf("run id: %s\n", report.RunID)

		if !flagNoStore {
			ttl := time.Duration(app.Config.Benchmark.ReportTTLSeconds) * time.Second
			if err := app.Store.Save(context.Background(), report, ttl); err != nil {
				// 存储失败不影响已经打印的结果
				app.Logger.Warn("保存报告失败", zap.String("run_id", report.RunID), zap.Error(err))
			}
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Render a previously stored benchmark report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := bootstrap.Init(ctx, cfgFile)
		if err != nil {
			return err
		}
		defer app.Close(ctx)

		report, err := app.Store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Print(bench.FormatSummary(report))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file path")

	runCmd.Flags().StringVar(&flagTestType, "test-type", "all", "scenarios to run: all|basic|recommendation_queries|product_virality|user_influence|viral_products")
	runCmd.Flags().IntVar(&flagMaxLevel, "max-level", 0, "traversal depth bound [1,5] (0 = config default)")
	runCmd.Flags().IntVar(&flagIterations, "iterations", 0, "iterations per scenario (0 = config default)")
	runCmd.Flags().StringVar(&flagProductID, "product-id", "", "fixed product id for product scenarios")
	runCmd.Flags().StringVar(&flagUserID, "user-id", "", "fixed user id for user scenarios")
	runCmd.Flags().BoolVar(&flagNoStore, "no-store", false, "do not persist the report")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
