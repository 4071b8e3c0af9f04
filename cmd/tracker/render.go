package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-tracker/internal/calc"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// render writes md to the command output, styled for the terminal unless
// --plain is set.
func render(cmd *cobra.Command, md string) error {
	out := cmd.OutOrStdout()
	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		_, err := fmt.Fprint(out, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	styled, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}
	_, err = fmt.Fprint(out, styled)
	return err
}

func quoteRow(q model.Quote) string {
	return fmt.Sprintf("| %s | %s | %s |\n", q.Symbol, calc.FormatCurrency(q.Price, q.Currency), q.AsOf.Format("2006-01-02 15:04"))
}

func companyMarkdown(info model.CompanyInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", info.Name, info.Symbol)
	fmt.Fprintf(&b, "- **Sector:** %s\n", orDash(info.Sector))
	fmt.Fprintf(&b, "- **Industry:** %s\n", orDash(info.Industry))
	fmt.Fprintf(&b, "- **Exchange:** %s\n", orDash(info.Exchange))
	if info.CurrentPrice != nil {
		fmt.Fprintf(&b, "- **Price:** %s\n", calc.FormatCurrency(*info.CurrentPrice, info.Currency))
	}
	if info.FiftyTwoWeekLow != nil && info.FiftyTwoWeekHigh != nil {
		fmt.Fprintf(&b, "- **52 week range:** %s to %s\n",
			calc.FormatCurrency(*info.FiftyTwoWeekLow, info.Currency),
			calc.FormatCurrency(*info.FiftyTwoWeekHigh, info.Currency))
	}
	if info.MarketCap != nil {
		fmt.Fprintf(&b, "- **Market cap:** %d\n", *info.MarketCap)
	}
	if info.TrailingPE != nil {
		fmt.Fprintf(&b, "- **P/E:** %.2f\n", *info.TrailingPE)
	}
	if info.DividendYield != nil {
		fmt.Fprintf(&b, "- **Dividend yield:** %.2f%%\n", *info.DividendYield*100)
	}
	if info.Beta != nil {
		fmt.Fprintf(&b, "- **Beta:** %.2f\n", *info.Beta)
	}
	return b.String()
}

func metricsMarkdown(m model.StockMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s metrics (%s)\n\n", m.Symbol, m.Period)
	fmt.Fprintf(&b, "%s to %s, %d trading days\n\n", m.PeriodStart.Format("2006-01-02"), m.PeriodEnd.Format("2006-01-02"), m.TradingDays)
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Price | %s |\n", m.CurrentPrice.StringFixed(2))
	fmt.Fprintf(&b, "| Total return | %.2f%% |\n", m.TotalReturnPct)
	fmt.Fprintf(&b, "| Annualized volatility | %.2f%% |\n", m.AnnualizedVolatility)
	fmt.Fprintf(&b, "| Sharpe ratio | %.2f |\n", m.SharpeRatio)
	fmt.Fprintf(&b, "| Max drawdown | %.2f%% |\n", m.MaxDrawdownPct)
	return b.String()
}

func newsSummaryMarkdown(s model.NewsSummary) string {
	var b strings.Builder
	title := s.Symbol
	if s.CompanyName != "" {
		title = fmt.Sprintf("%s (%s)", s.CompanyName, s.Symbol)
	}
	fmt.Fprintf(&b, "# News sentiment: %s\n\n", title)
	fmt.Fprintf(&b, "**Overall:** %s, average score %.3f over %d articles\n\n", s.OverallSentiment, s.AverageScore, s.TotalArticles)
	fmt.Fprintf(&b, "Positive %d, negative %d, neutral %d\n\n", s.Distribution.Positive, s.Distribution.Negative, s.Distribution.Neutral)

	if len(s.RecentHeadlines) > 0 {
		b.WriteString("## Recent headlines\n\n")
		for _, h := range s.RecentHeadlines {
			fmt.Fprintf(&b, "- [%s](%s) _%s, %s_\n", escapeMarkdown(h.Title), h.URL, h.Source, h.Sentiment)
		}
	}
	return b.String()
}

func comparisonMarkdown(rows []model.SentimentComparison) string {
	if len(rows) == 0 {
		return "# Sentiment comparison\n\nNo news found for any symbol.\n"
	}

	var b strings.Builder
	b.WriteString("# Sentiment comparison\n\n")
	b.WriteString("| Symbol | Overall | Avg score | Articles | + | - | = |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %.3f | %d | %d | %d | %d |\n",
			r.Symbol, r.OverallSentiment, r.AverageScore, r.TotalArticles, r.Positive, r.Negative, r.Neutral)
	}
	return b.String()
}

func sentimentMarkdown(r model.SentimentResult) string {
	return fmt.Sprintf("# Sentiment: %s\n\nScore %.3f (%d positive, %d negative keywords)\n",
		r.Label, r.Score, r.PositiveHits, r.NegativeHits)
}

func classificationMarkdown(labels []model.Classification) string {
	var b strings.Builder
	b.WriteString("# Model sentiment\n\n| Label | Score |\n|---|---:|\n")
	for _, l := range labels {
		fmt.Fprintf(&b, "| %s | %.3f |\n", l.Label, l.Score)
	}
	return b.String()
}

func valuationMarkdown(v model.Valuation) string {
	currency := ""
	if len(v.Positions) > 0 {
		currency = v.Positions[0].Currency
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio %s\n\n", v.PortfolioID)
	fmt.Fprintf(&b, "**Value:** %s  \n**Invested:** %s  \n**Gain/loss:** %s\n\n",
		calc.FormatCurrency(v.CurrentValue, currency),
		calc.FormatCurrency(v.InvestedValue, currency),
		calc.FormatCurrency(v.GainLoss, currency))

	if len(v.Positions) == 0 {
		b.WriteString("No positions.\n")
		return b.String()
	}

	b.WriteString("| Symbol | Shares | Price | Value | Gain/loss | Return |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, p := range v.Positions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s%% |\n",
			p.Symbol,
			p.Shares.String(),
			calc.FormatCurrency(p.Price, p.Currency),
			calc.FormatCurrency(p.CurrentValue, p.Currency),
			calc.FormatCurrency(p.GainLoss, p.Currency),
			p.ReturnPct.StringFixed(2))
	}
	return b.String()
}

func refreshMarkdown(r model.PriceRefreshResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Price refresh\n\n%d updated, %d failed, %d snapshots written\n\n", r.TotalUpdated, r.TotalErrors, r.SnapshotsWritten)
	for _, u := range r.UpdatedSymbols {
		fmt.Fprintf(&b, "- %s: %s on %s\n", u.Symbol, u.Price, u.Date)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "- **%s failed:** %s\n", e.Symbol, e.Error)
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// escapeMarkdown keeps headline text from breaking link syntax.
func escapeMarkdown(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`, "|", `\|`).Replace(s)
}
