package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"golang-stock-analysis/internal/dto"
	"golang-stock-analysis/internal/service"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a one-shot analysis and print the report",
	RunE:  runAnalyze,
}

var (
	analyzeTicker       string
	analyzeCompany      string
	analyzePriceRef     string
	analyzeFundamentals string
	analyzeNewsRef      string
	analyzeMarketRef    string
	analyzeFormat       string
	analyzeSavePath     string
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeTicker, "ticker", "", "stock ticker to analyze")
	analyzeCmd.Flags().StringVar(&analyzeCompany, "company", "", "company name")
	analyzeCmd.Flags().StringVar(&analyzePriceRef, "price", "", "file path or URL with raw price data")
	analyzeCmd.Flags().StringVar(&analyzeFundamentals, "fundamentals", "", "file path or URL with raw fundamentals data")
	analyzeCmd.Flags().StringVar(&analyzeNewsRef, "news", "", "file path or URL with raw news data")
	analyzeCmd.Flags().StringVar(&analyzeMarketRef, "market", "", "file path or URL with raw market benchmark data")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "markdown", "output format, markdown or json")
	analyzeCmd.Flags().StringVar(&analyzeSavePath, "save", "", "write the output to this file instead of stdout")
	analyzeCmd.MarkFlagRequired("ticker")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return fmt.Errorf("failed to create app dependency: %w", err)
	}
	defer appDep.Close()

	req := dto.AnalyzeRequest{
		Ticker:      analyzeTicker,
		CompanyName: analyzeCompany,
	}
	if req.PriceData, err = resolveInput(ctx, appDep, analyzePriceRef); err != nil {
		return err
	}
	if req.FundamentalsData, err = resolveInput(ctx, appDep, analyzeFundamentals); err != nil {
		return err
	}
	if req.NewsData, err = resolveInput(ctx, appDep, analyzeNewsRef); err != nil {
		return err
	}
	if req.MarketData, err = resolveInput(ctx, appDep, analyzeMarketRef); err != nil {
		return err
	}

	services := service.NewService(appDep.cfg, appDep.log, appDep.cache)

	var output string
	switch analyzeFormat {
	case "json":
		result, err := services.AnalysisService.Analyze(ctx, req)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		output = string(data)
	case "markdown":
		report, err := services.AnalysisService.RenderReport(ctx, req)
		if err != nil {
			return err
		}
		output = report
	default:
		return fmt.Errorf("unknown format %q, want markdown or json", analyzeFormat)
	}

	if analyzeSavePath != "" {
		if err := os.WriteFile(analyzeSavePath, []byte(output), 0o644); err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		fmt.Printf("Report saved to %s\n", analyzeSavePath)
		return nil
	}

	fmt.Println(output)
	return nil
}

// resolveInput loads an analysis input. URLs are fetched, anything else is
// read from disk, an empty ref stays empty.
func resolveInput(ctx context.Context, appDep *AppDependency, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return appDep.fetcher.GetText(ctx, ref)
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("failed to read input %s: %w", ref, err)
	}
	return string(data), nil
}
