package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"shop-catalog/internal/catalog"
	"shop-catalog/internal/client"
	"shop-catalog/internal/config"
	"shop-catalog/internal/model"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// catalogAPI is the client surface catalogctl uses.
type catalogAPI interface {
	catalog.API
	CreateProducts(ctx context.Context, inputs []model.ProductInput) ([]model.Product, error)
}

// clientFactory builds the API client from configuration.
type clientFactory func(cfg *config.ClientConfig, logger zerolog.Logger) (catalogAPI, error)

func newClient(cfg *config.ClientConfig, logger zerolog.Logger) (catalogAPI, error) {
	c, err := client.New(cfg.API.URL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// errReported signals a failure already shown to the user by the notifier.
var errReported = cli.Exit("", 1)

// app holds what every command shares.
type app struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	connect clientFactory
	cfg     *config.ClientConfig
	logger  zerolog.Logger
	api     catalogAPI
}

func newApp(stdin io.Reader, stdout, stderr io.Writer, connect clientFactory) *cli.App {
	a := &app{
		in:      bufio.NewReader(stdin),
		out:     stdout,
		errOut:  stderr,
		connect: connect,
		logger:  zerolog.Nop(),
	}

	return &cli.App{
		Name:      "catalogctl",
		Usage:     "browse and edit the product catalog",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "catalog API base URL (default from CATALOG_API_URL)"},
			&cli.DurationFlag{Name: "timeout", Usage: "per-request timeout (default from CATALOG_API_TIMEOUT)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			a.listCommand(),
			a.categoriesCommand(),
			a.createCommand(),
			a.editCommand(),
			a.deleteCommand(),
			a.importCommand(),
			a.shellCommand(),
		},
		// main decides how to exit; Run must not call os.Exit itself.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// setup loads configuration, applies flag overrides and connects the client.
func (a *app) setup(c *cli.Context) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	if c.IsSet("url") {
		cfg.API.URL = c.String("url")
	}
	if c.IsSet("timeout") {
		cfg.API.Timeout = c.Duration("timeout")
	}
	switch {
	case c.IsSet("log-level"):
		cfg.Logger.Level = c.String("log-level")
	case os.Getenv("LOG_LEVEL") == "":
		// quiet unless asked otherwise
		cfg.Logger.Level = "warn"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = config.NewLoggerTo(a.errOut, cfg.Logger)

	api, err := a.connect(cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}
	a.api = api

	return nil
}

// newStore creates a synchronizer that reports notices on the terminal.
func (a *app) newStore() *catalog.Store {
	return catalog.New(a.api,
		catalog.WithLogger(a.logger),
		catalog.WithNotifier(a.notifier()),
		catalog.WithTimeout(a.cfg.API.Timeout),
	)
}

func (a *app) notifier() catalog.Notifier {
	return catalog.NotifierFunc(func(n catalog.Notice) {
		if n.Level == catalog.LevelError {
			fmt.Fprintf(a.errOut, "error: %s\n", n.Message)
			return
		}
		fmt.Fprintln(a.errOut, n.Message)
	})
}

// confirmer asks on the terminal. With assumeYes every deletion is approved.
func (a *app) confirmer(assumeYes bool) catalog.Confirmer {
	return catalog.ConfirmFunc(func(ctx context.Context, p model.Product) (bool, error) {
		if assumeYes {
			return true, nil
		}

		label := fmt.Sprintf("#%d", p.ID)
		if p.Name != "" {
			label = fmt.Sprintf("%q (#%d)", p.Name, p.ID)
		}
		fmt.Fprintf(a.out, "Delete product %s? [y/N]: ", label)

		answer, err := a.readLine()
		if err != nil && err != io.EOF {
			return false, err
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes", nil
	})
}

// readLine reads one line without its terminator. io.EOF is returned only
// when nothing was read.
func (a *app) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

// timeout bounds commands that call the API directly.
func (a *app) timeout() time.Duration {
	if a.cfg == nil {
		return catalog.DefaultTimeout
	}
	return a.cfg.API.Timeout
}
