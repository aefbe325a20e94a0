package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fxconvert/internal/adapters/cache"
	"fxconvert/internal/adapters/filestore"
	"fxconvert/internal/adapters/httpclient"
	"fxconvert/internal/config"
	"fxconvert/internal/console"
	fxhttp "fxconvert/internal/platform/http"
	"fxconvert/internal/rate"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Run wires the application components and blocks in the interactive shell until the user exits.
func Run(opts config.Options) error {
	appCfg, err := config.Init(opts)
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stderr)
	if parsedLvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals, cancels in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	transport := fxhttp.NewClient(&http.Client{Timeout: httpTimeout})
	rateClient := httpclient.NewExchangeRateClient(transport, appCfg.ExchangeRateAPI.BaseURL)

	// Storage
	rateFile := filestore.NewRateFile(appCfg.Cache.Path)
	store, err := cache.NewCachedStore(rateFile, rateFile.Path(), appCfg.Cache.MaxItems)
	if err != nil {
		logrus.WithError(err).Error("Failed to create rates memory cache")
		return err
	}
	defer store.Close()

	manager := rate.NewManager(rateClient, store, rate.Options{
		Bases:  appCfg.Rates.Bases,
		MaxAge: time.Duration(appCfg.Cache.MaxAgeHours * float64(time.Hour)),
	})
	logrus.WithFields(logrus.Fields{
		"bases": appCfg.Rates.Bases,
		"path":  appCfg.Cache.Path,
	}).Info("✅ Rate manager ready")

	shell := console.NewShell(manager, os.Stdin, color.Output, !color.NoColor)
	return shell.Run(ctx)
}
