// Package report renders a TokenAnalysis for a terminal or for other programs.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/adamstosho/RugRadar/internal/estimate"
	"github.com/adamstosho/RugRadar/internal/evm"
	"github.com/adamstosho/RugRadar/internal/models"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"

	notAvailable = "N/A"
)

var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts text, json, yaml and yml in any case. Empty means text.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w %q, use one of text, json, yaml", ErrUnknownFormat, s)
}

// Render writes a in the given format.
func Render(w io.Writer, a *models.TokenAnalysis, format string) error {
	if a == nil {
		return errors.New("nothing to render")
	}
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}

	switch f {
	case FormatJSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(a)
	case FormatYAML:
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(a); err != nil {
			return err
		}
		return e.Close()
	}
	return renderText(w, a)
}

func renderText(w io.Writer, a *models.TokenAnalysis) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	m := a.Metadata
	explorer := evm.ExplorerURL(a.Chain)

	// 概览
	fmt.Fprintf(tw, "%s (%s)\n", orDash(m.Name), orDash(m.Symbol))
	fmt.Fprintf(tw, "Contract\t%s on %s\n", evm.Checksum(m.Address), a.Chain)
	if a.Price != nil && a.Price.USDPrice > 0 {
		fmt.Fprintf(tw, "Price\t%s\t%s\n", price(a.Price.USDPrice), a.Price.Source)
	} else {
		fmt.Fprintf(tw, "Price\t%s\n", notAvailable)
	}
	fmt.Fprintf(tw, "24h change\t%s\n", change(a.Stats.PriceChange24h))
	if m.PossibleSpam {
		fmt.Fprintf(tw, "Spam\tflagged by the data provider\n")
	}
	fmt.Fprintf(tw, "Explorer\t%s/token/%s\n", explorer, m.Address)

	// 风险卡片
	verdict := "High Risk"
	if a.Assessment.LooksSafe {
		verdict = "Looks Safe"
	}
	fmt.Fprintf(tw, "\nRisk score\t%d/100\t%s\n", a.Assessment.Score, verdict)
	list(tw, "Risk factors", a.Assessment.RiskFactors)
	list(tw, "Recommendations", a.Assessment.Recommendations)

	fmt.Fprintf(tw, "\nStats\t(~ estimated)\n")
	fmt.Fprintf(tw, "  Transfers\t%s\n", countMetric(a.Stats.TotalTransfers))
	fmt.Fprintf(tw, "  Holders\t%s\n", countMetric(a.Stats.TotalHolders))
	fmt.Fprintf(tw, "  24h volume\t%s\t%d transfers in sample\n", usdMetric(a.Stats.Volume24h), a.Stats.Transfers24h)
	fmt.Fprintf(tw, "  Liquidity\t%s\n", usdMetric(a.Stats.Liquidity))

	// 持有者
	fmt.Fprintf(tw, "\nTop holders\t(share of sampled balances)\n")
	if len(a.Holders) == 0 {
		fmt.Fprintf(tw, "  none found in the sample\n")
	} else {
		fmt.Fprintf(tw, "  #\tADDRESS\tBALANCE\tSHARE\tLAST ACTIVE\n")
		for i, h := range a.Holders {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%.2f%%\t%s\n",
				i+1, short(h.Address), amount(h.Balance, 2), h.Share, ago(h.LastActivity, a.AnalyzedAt))
		}
	}

	// 最近转账
	if len(a.Transfers) > 0 {
		fmt.Fprintf(tw, "\nRecent transfers\n")
		fmt.Fprintf(tw, "  FROM\tTO\tVALUE\tWHEN\tTX\n")
		for _, t := range a.Transfers {
			v, ok := estimate.ParseValue(t.Value, m.Decimals)
			value := notAvailable
			if ok {
				value = amount(v.String(), 4)
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s/tx/%s\n",
				short(t.From), short(t.To), value, ago(t.Timestamp, a.AnalyzedAt), explorer, t.TxHash)
		}
	}

	list(tw, "\nWarnings", a.Warnings)
	if a.Summary != "" {
		fmt.Fprintf(tw, "\nSummary\n  %s\n", a.Summary)
	}

	return tw.Flush()
}

func list(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// short renders 0x1234...abcd.
func short(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func price(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 6)
}

func change(m models.Metric) string {
	if !m.Available() {
		return notAvailable
	}
	return tilde(m) + fmt.Sprintf("%+.2f%%", m.Value)
}

func countMetric(m models.Metric) string {
	if !m.Available() {
		return notAvailable
	}
	return tilde(m) + humanize.Comma(int64(m.Value))
}

func usdMetric(m models.Metric) string {
	if !m.Available() || m.Value <= 0 {
		return notAvailable
	}
	return tilde(m) + "$" + humanize.CommafWithDigits(m.Value, 2)
}

func tilde(m models.Metric) string {
	if m.Estimated() {
		return "~"
	}
	return ""
}

// amount formats a decimal string with thousands separators.
func amount(s string, digits int) string {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return humanize.CommafWithDigits(d.Round(int32(digits)).InexactFloat64(), digits)
}

func ago(t, now time.Time) string {
	if t.IsZero() {
		return notAvailable
	}
	if now.IsZero() {
		now = time.Now()
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
