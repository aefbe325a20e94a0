package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const currencyColumns = 6

var numbers = message.NewPrinter(language.English)

// formatAmount prints v with thousands separators and the given number of decimals.
func formatAmount(v float64, decimals int) string {
	return numbers.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

func formatAge(age time.Duration) string {
	now := time.Now()
	return humanize.RelTime(now.Add(-age), now, "ago", "from now")
}

func printCurrencies(w io.Writer, codes []string) {
	for i := 0; i < len(codes); i += currencyColumns {
		end := min(i+currencyColumns, len(codes))
		cells := make([]string, 0, end-i)
		for _, c := range codes[i:end] {
			cells = append(cells, fmt.Sprintf("%-5s", c))
		}
		fmt.Fprintln(w, strings.Join(cells, "  "))
	}
}
