package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fxconvert/internal/domain"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct{ mock.Mock }

func (m *MockService) RefreshAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockService) EnsureFresh(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) ListAvailableCurrencies() ([]string, error) {
	args := m.Called()
	codes, _ := args.Get(0).([]string)
	return codes, args.Error(1)
}

func (m *MockService) Convert(amount float64, from, to string) (float64, error) {
	args := m.Called(amount, from, to)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockService) Rate(from, to string) (float64, error) {
	args := m.Called(from, to)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockService) Age() (time.Duration, error) {
	args := m.Called()
	d, _ := args.Get(0).(time.Duration)
	return d, args.Error(1)
}

func runShell(t *testing.T, svc *MockService, input string) string {
	t.Helper()
	var out bytes.Buffer
	sh := NewShell(svc, strings.NewReader(input), &out, false)
	require.NoError(t, sh.Run(context.Background()))
	return out.String()
}

func withStartup(svc *MockService, codes []string) {
	svc.On("ListAvailableCurrencies").Return(codes, nil).Once()
	svc.On("Age").Return(2*time.Hour, nil).Once()
}

func TestShell_ExitImmediately(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"EUR", "USD"})

	out := runShell(t, svc, "0\n")

	require.Contains(t, out, "Loaded 2 currencies from file")
	require.Contains(t, out, "2 hours ago")
	require.Contains(t, out, "1. Convert currency")
	require.Contains(t, out, "Goodbye!")
	svc.AssertExpectations(t)
}

func TestShell_StartupDownloadsWhenCacheMissing(t *testing.T) {
	svc := new(MockService)
	svc.On("ListAvailableCurrencies").Return(nil, domain.ErrCacheMissing).Once()
	svc.On("RefreshAll", mock.Anything).Return(nil).Once()
	withStartup(svc, []string{"EUR", "RUB", "USD"})

	out := runShell(t, svc, "0\n")

	require.Contains(t, out, "Rates file not found")
	require.Contains(t, out, "Loaded 3 currencies")
	svc.AssertExpectations(t)
}

func TestShell_StartupFailureKeepsMenu(t *testing.T) {
	svc := new(MockService)
	svc.On("ListAvailableCurrencies").Return(nil, domain.ErrCacheMissing).Once()
	svc.On("RefreshAll", mock.Anything).Return(&domain.StatusError{StatusCode: 503}).Once()

	out := runShell(t, svc, "0\n")

	require.Contains(t, out, "Service temporarily unavailable")
	require.Contains(t, out, "Goodbye!")
	svc.AssertExpectations(t)
}

func TestShell_Convert(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"RUB", "USD"})
	svc.On("EnsureFresh", mock.Anything).Return(false, nil).Once()
	svc.On("Convert", 1500.0, "USD", "RUB").Return(135000.0, nil).Once()

	out := runShell(t, svc, "1\n1500\n usd\nrub \n\n0\n")

	require.Contains(t, out, "1,500.00 USD = 135,000.0000 RUB")
	svc.AssertExpectations(t)
}

func TestShell_Convert_RefreshesStaleRates(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"RUB", "USD"})
	svc.On("EnsureFresh", mock.Anything).Return(true, nil).Once()
	svc.On("Convert", 10.0, "USD", "RUB").Return(900.0, nil).Once()

	out := runShell(t, svc, "1\n10\nUSD\nRUB\n\n0\n")

	require.Contains(t, out, "Stale rates were refreshed")
	require.Contains(t, out, "10.00 USD = 900.0000 RUB")
	svc.AssertExpectations(t)
}

func TestShell_Convert_InvalidAmount(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"USD"})
	svc.On("EnsureFresh", mock.Anything).Return(false, nil).Once()

	out := runShell(t, svc, "1\nten\n\n0\n")

	require.Contains(t, out, `Error: invalid amount "ten"`)
	svc.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything)
}

func TestShell_Convert_UnknownCurrency(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"USD"})
	svc.On("EnsureFresh", mock.Anything).Return(false, nil).Once()
	svc.On("Convert", 10.0, "USD", "JPY").Return(0.0, &domain.ValidationError{Msg: "currency JPY not found", Err: domain.ErrQuoteNotFound}).Once()

	out := runShell(t, svc, "1\n10\nusd\njpy\n\n0\n")

	require.Contains(t, out, "Error: currency JPY not found")
	require.Contains(t, out, "Goodbye!")
	svc.AssertExpectations(t)
}

func TestShell_Convert_StaleRefreshFails(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"USD"})
	svc.On("EnsureFresh", mock.Anything).Return(false, &domain.StatusError{StatusCode: 500}).Once()

	out := runShell(t, svc, "1\n\n0\n")

	require.Contains(t, out, "API server error")
	svc.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything)
}

func TestShell_ListCurrencies(t *testing.T) {
	codes := []string{"AED", "AUD", "CHF", "EUR", "GBP", "JPY", "RUB", "USD"}
	svc := new(MockService)
	withStartup(svc, codes)
	svc.On("ListAvailableCurrencies").Return(codes, nil).Once()

	out := runShell(t, svc, "2\n\n0\n")

	require.Contains(t, out, "Available currencies (8)")
	require.Contains(t, out, "AED    AUD    CHF    EUR    GBP    JPY  \n")
	require.Contains(t, out, "RUB    USD  \n")
	svc.AssertExpectations(t)
}

func TestShell_Refresh(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"USD"})
	svc.On("RefreshAll", mock.Anything).Return(nil).Once()
	svc.On("ListAvailableCurrencies").Return([]string{"EUR", "USD"}, nil).Once()

	out := runShell(t, svc, "3\n\n0\n")

	require.Contains(t, out, "Exchange rates updated (2 currencies)")
	svc.AssertExpectations(t)
}

func TestShell_Refresh_Failure(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"USD"})
	svc.On("RefreshAll", mock.Anything).Return(&domain.ConnectivityError{URL: "x", Err: errors.New("timeout")}).Once()

	out := runShell(t, svc, "3\n\n0\n")

	require.Contains(t, out, "Cannot reach the exchange rate API")
	require.Contains(t, out, "Goodbye!")
	svc.AssertExpectations(t)
}

func TestShell_ShowRate(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"EUR", "USD"})
	svc.On("EnsureFresh", mock.Anything).Return(false, nil).Once()
	svc.On("Rate", "USD", "EUR").Return(0.92, nil).Once()

	out := runShell(t, svc, "4\nusd\neur\n\n0\n")

	require.Contains(t, out, "1 USD = 0.9200 EUR")
	svc.AssertExpectations(t)
}

func TestShell_InvalidChoice(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"USD"})

	out := runShell(t, svc, "9\n0\n")

	require.Contains(t, out, "Invalid choice")
}

func TestShell_EOFExitsCleanly(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"USD"})
	svc.On("EnsureFresh", mock.Anything).Return(false, nil).Once()

	out := runShell(t, svc, "1\n12")

	require.Contains(t, out, "Goodbye!")
	svc.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything)
}

func TestShell_ContextCanceled(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"USD"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	pr, closeInput := newBlockingInput()
	sh := NewShell(svc, pr, &out, false)
	require.NoError(t, sh.Run(ctx))
	require.Contains(t, out.String(), "Goodbye!")

	closeInput()
	select {
	case <-sh.readerDone:
	case <-time.After(time.Second):
		t.Fatal("input reader did not stop after Run returned")
	}
}

func TestShell_ReaderStopsWithUnreadInput(t *testing.T) {
	svc := new(MockService)
	withStartup(svc, []string{"USD"})

	var out bytes.Buffer
	sh := NewShell(svc, strings.NewReader("0\n2\n3\n4\n"), &out, false)
	require.NoError(t, sh.Run(context.Background()))

	select {
	case <-sh.readerDone:
	case <-time.After(time.Second):
		t.Fatal("input reader blocked on lines nobody reads")
	}
}

func TestParseAmount(t *testing.T) {
	valid := map[string]float64{
		"10":      10,
		" 2.5 ":   2.5,
		"-4":      -4,
		"1_000":   1000,
		"1_000.5": 1000.5,
		"1e3":     1000,
		"+0.25":   0.25,
	}
	for in, want := range valid {
		got, err := parseAmount(in)
		require.NoError(t, err, in)
		require.InDelta(t, want, got, 1e-9, in)
	}

	for _, in := range []string{"", "ten", "0x1p4", "-0X10", "_1", "1_", "1__0", "1._5", "1,5"} {
		_, err := parseAmount(in)
		require.ErrorIs(t, err, domain.ErrInvalidAmount, in)
	}
}

// newBlockingInput returns a reader that never yields data until closed.
func newBlockingInput() (*blockingReader, func()) {
	r := &blockingReader{done: make(chan struct{})}
	return r, func() { close(r.done) }
}

type blockingReader struct{ done chan struct{} }

func (r *blockingReader) Read(p []byte) (int, error) {
	<-r.done
	return 0, errors.New("closed")
}
