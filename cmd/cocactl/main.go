// Command cocactl оформляет заказы и получает отчёты через REST API Coca Premium.
//
//	cocactl order --package pkg3 --flavors flv2,flv5 --sweetness MEDIO --crush LIGERO --name Ana --proof pago.jpg
//	cocactl lookup CC-20261015-1234565
//	cocactl report --login admin --date 2026-10-15
//	cocactl hash-password
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agamariel/cocapremium/internal/apperr"
	flag "github.com/spf13/pflag"
)

const (
	defaultAPI     = "http://localhost:5000"
	defaultTimeout = 30 * time.Second
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if err != errUsage && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, describe(err))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return errUsage
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "order":
		return runOrder(ctx, args, stdout)
	case "lookup":
		return runLookup(ctx, args, stdout)
	case "report":
		return runReport(ctx, args, stdout)
	case "hash-password":
		return runHashPassword(args, stdin, stdout)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	}

	usage(stdout)
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `cocactl - cliente de pedidos Coca Premium

Comandos:
  order          recorre el asistente de pedido y lo envía
  lookup         busca un pedido por número
  report         ventas diarias (requiere administrador)
  hash-password  genera el hash bcrypt para ADMIN_PASSWORD_HASH

Use "cocactl <comando> --help" para ver las opciones.`)
}

// apiFlags добавляет общие флаги адреса API.
func apiFlags(fs *flag.FlagSet) (api *string, timeout *time.Duration) {
	api = fs.String("api", envOr("COCA_API", defaultAPI), "dirección del API")
	timeout = fs.Duration("timeout", defaultTimeout, "tiempo máximo por solicitud")
	return api, timeout
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// describe превращает ошибку в сообщение для пользователя.
func describe(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Field != "" {
			return fmt.Sprintf("error (%s, %s): %s", appErr.Kind, appErr.Field, appErr.Message)
		}
		return fmt.Sprintf("error (%s): %s", appErr.Kind, appErr.Message)
	}
	return "error: " + err.Error()
}
