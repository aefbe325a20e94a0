package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fxconvert/internal/domain"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// RateService is what the shell needs from the rate manager.
type RateService interface {
	RefreshAll(ctx context.Context) error
	EnsureFresh(ctx context.Context) (bool, error)
	ListAvailableCurrencies() ([]string, error)
	Convert(amount float64, from, to string) (float64, error)
	Rate(from, to string) (float64, error)
	Age() (time.Duration, error)
}

type palette struct {
	title   *color.Color
	ok      *color.Color
	warn    *color.Color
	fail    *color.Color
	subtle  *color.Color
	heading *color.Color
}

func newPalette(colored bool) palette {
	p := palette{
		title:   color.New(color.FgCyan, color.Bold),
		ok:      color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
		subtle:  color.New(color.Faint),
		heading: color.New(color.Bold),
	}
	if !colored {
		for _, c := range []*color.Color{p.title, p.ok, p.warn, p.fail, p.subtle, p.heading} {
			c.DisableColor()
		}
	}
	return p
}

type line struct {
	text string
	err  error
}

// Shell is the interactive menu loop.
type Shell struct {
	svc   RateService
	in    io.Reader
	lines chan line
	// done is closed when Run returns; readerDone when the input goroutine exits.
	done       chan struct{}
	readerDone chan struct{}
	out        io.Writer
	c          palette
}

func NewShell(svc RateService, in io.Reader, out io.Writer, colored bool) *Shell {
	return &Shell{svc: svc, in: in, out: out, c: newPalette(colored)}
}

// Run shows the menu until the user exits, input ends or ctx is canceled.
// Errors from menu actions are printed and never end the loop.
func (s *Shell) Run(ctx context.Context) error {
	s.startReader()
	defer close(s.done)
	s.loadOnStartup(ctx)

	for {
		s.printMenu()
		choice, err := s.prompt(ctx, "Choose an action: ")
		if err != nil {
			return s.finish(err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = s.convert(ctx)
		case "2":
			err = s.listCurrencies(ctx)
		case "3":
			err = s.refresh(ctx)
		case "4":
			err = s.showRate(ctx)
		case "0":
			s.c.title.Fprintln(s.out, "\nGoodbye!")
			return nil
		default:
			s.c.warn.Fprintln(s.out, "\nInvalid choice. Please try again.")
			continue
		}
		if err != nil {
			return s.finish(err)
		}
	}
}

func (s *Shell) finish(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		s.c.title.Fprintln(s.out, "\nGoodbye!")
		return nil
	}
	return err
}

func (s *Shell) startReader() {
	s.lines = make(chan line)
	s.done = make(chan struct{})
	s.readerDone = make(chan struct{})
	go func() {
		defer close(s.readerDone)
		defer close(s.lines)
		r := bufio.NewReader(s.in)
		for {
			text, err := r.ReadString('\n')
			if text != "" && !s.send(line{text: strings.TrimRight(text, "\r\n")}) {
				return
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					s.send(line{err: err})
				}
				return
			}
		}
	}()
}

// send hands l to the prompt unless Run has already returned.
func (s *Shell) send(l line) bool {
	select {
	case s.lines <- l:
		return true
	case <-s.done:
		return false
	}
}

// prompt prints label and waits for one line of input.
func (s *Shell) prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(s.out, label)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

func (s *Shell) waitForEnter(ctx context.Context) error {
	_, err := s.prompt(ctx, "\nPress Enter to continue...")
	return err
}

func (s *Shell) loadOnStartup(ctx context.Context) {
	codes, err := s.svc.ListAvailableCurrencies()
	if errors.Is(err, domain.ErrCacheMissing) {
		s.c.warn.Fprintln(s.out, "⚠️ Rates file not found. Downloading fresh data...")
		if err = s.svc.RefreshAll(ctx); err == nil {
			codes, err = s.svc.ListAvailableCurrencies()
		}
	}
	if err != nil {
		logrus.WithError(err).Warn("Startup load failed")
		s.c.fail.Fprintf(s.out, "❌ %s\n", FormatError(err))
		return
	}

	s.c.ok.Fprintf(s.out, "✅ Loaded %d currencies from file", len(codes))
	if age, ageErr := s.svc.Age(); ageErr == nil {
		s.c.subtle.Fprintf(s.out, " (updated %s)", formatAge(age))
	}
	fmt.Fprintln(s.out)
}

func (s *Shell) printMenu() {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(s.out, "\n"+rule)
	s.c.title.Fprintln(s.out, "       💱 CURRENCY CONVERTER")
	fmt.Fprintln(s.out, rule)
	fmt.Fprintln(s.out, "\n1. Convert currency")
	fmt.Fprintln(s.out, "2. List available currencies")
	fmt.Fprintln(s.out, "3. Refresh rates (API request)")
	fmt.Fprintln(s.out, "4. Show exchange rate")
	fmt.Fprintln(s.out, "0. Exit")
	fmt.Fprintln(s.out, strings.Repeat("-", 50))
}

// ensureFresh refreshes stale rates and reports whether the action can go on.
func (s *Shell) ensureFresh(ctx context.Context) bool {
	refreshed, err := s.svc.EnsureFresh(ctx)
	if err != nil {
		s.c.fail.Fprintf(s.out, "\n❌ %s\n", FormatError(err))
		return false
	}
	if refreshed {
		s.c.ok.Fprintln(s.out, "✅ Stale rates were refreshed")
	}
	return true
}

func (s *Shell) convert(ctx context.Context) error {
	if s.ensureFresh(ctx) {
		if err := s.doConvert(ctx); err != nil {
			if isInputEnd(err) {
				return err
			}
			s.c.fail.Fprintf(s.out, "\n❌ %s\n", FormatError(err))
		}
	}
	return s.waitForEnter(ctx)
}

func (s *Shell) doConvert(ctx context.Context) error {
	rawAmount, err := s.prompt(ctx, "Amount to convert: ")
	if err != nil {
		return err
	}
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return err
	}
	from, err := s.promptCode(ctx, "From currency (e.g. USD): ")
	if err != nil {
		return err
	}
	to, err := s.promptCode(ctx, "To currency (e.g. RUB): ")
	if err != nil {
		return err
	}

	result, err := s.svc.Convert(amount, from, to)
	if err != nil {
		return err
	}
	s.c.ok.Fprintf(s.out, "\n✅ %s %s = %s %s\n", formatAmount(amount, 2), from, formatAmount(result, 4), to)
	return nil
}

func (s *Shell) showRate(ctx context.Context) error {
	if s.ensureFresh(ctx) {
		if err := s.doShowRate(ctx); err != nil {
			if isInputEnd(err) {
				return err
			}
			s.c.fail.Fprintf(s.out, "\n❌ %s\n", FormatError(err))
		}
	}
	return s.waitForEnter(ctx)
}

func (s *Shell) doShowRate(ctx context.Context) error {
	from, err := s.promptCode(ctx, "Base currency (e.g. USD): ")
	if err != nil {
		return err
	}
	to, err := s.promptCode(ctx, "Target currency (e.g. RUB): ")
	if err != nil {
		return err
	}
	rate, err := s.svc.Rate(from, to)
	if err != nil {
		return err
	}
	s.c.ok.Fprintf(s.out, "\n📊 1 %s = %.4f %s\n", from, rate, to)
	return nil
}

func (s *Shell) listCurrencies(ctx context.Context) error {
	codes, err := s.svc.ListAvailableCurrencies()
	if err != nil {
		s.c.fail.Fprintf(s.out, "\n❌ %s\n", FormatError(err))
	} else {
		s.c.heading.Fprintf(s.out, "\n📋 Available currencies (%d):\n\n", len(codes))
		printCurrencies(s.out, codes)
	}
	return s.waitForEnter(ctx)
}

func (s *Shell) refresh(ctx context.Context) error {
	fmt.Fprintln(s.out, "\n⏳ Refreshing exchange rates...")
	if err := s.svc.RefreshAll(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		s.c.fail.Fprintf(s.out, "❌ %s\n", FormatError(err))
	} else if codes, err := s.svc.ListAvailableCurrencies(); err != nil {
		s.c.fail.Fprintf(s.out, "❌ %s\n", FormatError(err))
	} else {
		s.c.ok.Fprintf(s.out, "✅ Exchange rates updated (%d currencies)\n", len(codes))
	}
	return s.waitForEnter(ctx)
}

func (s *Shell) promptCode(ctx context.Context, label string) (string, error) {
	raw, err := s.prompt(ctx, label)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(raw)), nil
}

// parseAmount accepts decimal numbers with optional digit-separating underscores ("1_000.5").
// Hex floats are rejected even though strconv would take them.
func parseAmount(raw string) (float64, error) {
	text := strings.TrimSpace(raw)
	invalid := &domain.ValidationError{Msg: fmt.Sprintf("invalid amount %q", text), Err: domain.ErrInvalidAmount}

	unsigned := strings.TrimLeft(text, "+-")
	if len(unsigned) > 1 && unsigned[0] == '0' && (unsigned[1] == 'x' || unsigned[1] == 'X') {
		return 0, invalid
	}
	if strings.Contains(text, "_") {
		if !digitSeparated(text) {
			return 0, invalid
		}
		text = strings.ReplaceAll(text, "_", "")
	}

	amount, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, invalid
	}
	return amount, nil
}

// digitSeparated reports whether every underscore in s sits between two digits.
func digitSeparated(s string) bool {
	isDigit := func(b byte) bool { return b >= '0' && b <= '9' }
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return false
		}
	}
	return true
}

func isInputEnd(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled)
}
