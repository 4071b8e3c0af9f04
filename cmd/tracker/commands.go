package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-tracker/internal/service"
)

// --- Market ---

var quoteCmd = &cobra.Command{
	Use:   "quote [symbol...]",
	Short: "Show the latest price of one or more symbols",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var b strings.Builder
		b.WriteString("# Quotes\n\n| Symbol | Price | As of |\n|---|---:|---|\n")
		for _, symbol := range args {
			quote, err := services.Market.GetQuote(cmd.Context(), symbol)
			if err != nil {
				return err
			}
			b.WriteString(quoteRow(quote))
		}
		return render(cmd, b.String())
	},
}

var infoCmd = &cobra.Command{
	Use:   "info [symbol]",
	Short: "Show company profile and valuation data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := services.Market.GetCompanyInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd, companyMarkdown(info))
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics [symbol]",
	Short: "Show return, volatility and drawdown over a period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		m, err := services.Market.GetMetrics(cmd.Context(), args[0], period)
		if err != nil {
			return err
		}
		return render(cmd, metricsMarkdown(m))
	},
}

func init() {
	metricsCmd.Flags().String("period", "1y", "chart range (1mo, 3mo, 6mo, 1y, 2y, 5y, ...)")
}

// --- News ---

var newsCmd = &cobra.Command{
	Use:   "news [symbol]",
	Short: "Score recent news about a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		company, _ := cmd.Flags().GetString("company")
		if company == "" {
			company = services.Market.CompanyName(cmd.Context(), args[0])
		}
		summary, err := services.News.Summary(cmd.Context(), args[0], company)
		if err != nil {
			return err
		}
		return render(cmd, newsSummaryMarkdown(summary))
	},
}

func init() {
	newsCmd.Flags().String("company", "", "company name to include in the search")
}

var compareCmd = &cobra.Command{
	Use:   "compare [symbol[:company]...]",
	Short: "Compare news sentiment across symbols",
	Example: `  tracker compare AAPL:Apple MSFT:Microsoft
  tracker compare AAPL,MSFT,GOOGL`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, err := service.ParseNewsTargets(strings.Join(args, ","))
		if err != nil {
			return err
		}
		rows, err := services.News.Compare(cmd.Context(), targets)
		if err != nil {
			return err
		}
		return render(cmd, comparisonMarkdown(rows))
	},
}

// --- Analysis ---

var sentimentCmd = &cobra.Command{
	Use:   "sentiment [text]",
	Short: "Score text with the keyword lexicon or the hosted model",
	Long:  "Score text given as arguments, or read from stdin when no arguments are given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := inputText(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		if useModel, _ := cmd.Flags().GetBool("model"); useModel {
			labels, err := services.Analysis.ClassifyText(cmd.Context(), text)
			if err != nil {
				return err
			}
			return render(cmd, classificationMarkdown(labels))
		}

		result, err := services.Analysis.ScoreText(text)
		if err != nil {
			return err
		}
		return render(cmd, sentimentMarkdown(result))
	},
}

func init() {
	sentimentCmd.Flags().Bool("model", false, "use the hosted sentiment model")
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [text]",
	Short: "Summarize text with the configured summarizer",
	Long:  "Summarize text given as arguments, from --file, or from stdin.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			text = string(data)
		} else {
			var err error
			if text, err = inputText(cmd.InOrStdin(), args); err != nil {
				return err
			}
		}

		summary, err := services.Analysis.SummarizeText(cmd.Context(), text)
		if err != nil {
			return err
		}
		return render(cmd, fmt.Sprintf("# Summary\n\n%s\n\n_%s_\n", summary.Summary, summary.Backend))
	},
}

func init() {
	summarizeCmd.Flags().String("file", "", "read the text from a file")
}

// --- Portfolio ---

var valueCmd = &cobra.Command{
	Use:   "value [portfolio-id]",
	Short: "Value a portfolio at current prices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		valuation, err := services.Portfolio.GetValuation(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd, valuationMarkdown(valuation))
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Store today's closing prices and portfolio snapshots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		result, err := services.Scheduler.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, refreshMarkdown(result))
	},
}

// inputText joins args, or reads all of r when there are none.
func inputText(r io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
