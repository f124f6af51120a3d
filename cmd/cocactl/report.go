package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/agamariel/cocapremium/internal/apiclient"
	"github.com/agamariel/cocapremium/internal/auth"
	"github.com/agamariel/cocapremium/internal/models"
	flag "github.com/spf13/pflag"
)

func runLookup(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(out)
	api, timeout := apiFlags(fs)
	login := fs.String("login", envOr("COCA_ADMIN_LOGIN", "admin"), "usuario administrador")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: cocactl lookup <número>", errUsage)
	}

	client, err := apiclient.New(*api, *timeout)
	if err != nil {
		return err
	}
	// без входа API отдаёт только номер, пакет, сумму и дату
	if password := os.Getenv("COCA_ADMIN_PASSWORD"); password != "" {
		if _, err := client.Login(ctx, *login, password); err != nil {
			return err
		}
	}
	order, err := client.GetOrder(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	printOrder(out, order)
	return nil
}

func runReport(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(out)
	api, timeout := apiFlags(fs)
	login := fs.String("login", envOr("COCA_ADMIN_LOGIN", "admin"), "usuario administrador")
	date := fs.String("date", time.Now().Format("2006-01-02"), "fecha YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password := os.Getenv("COCA_ADMIN_PASSWORD")
	if password == "" {
		return errors.New("defina COCA_ADMIN_PASSWORD con la contraseña del administrador")
	}

	client, err := apiclient.New(*api, *timeout)
	if err != nil {
		return err
	}
	if _, err := client.Login(ctx, *login, password); err != nil {
		return err
	}

	report, err := client.DailySales(ctx, *date)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Ventas del %s: %d pedidos, total %s Bs\n", report.Date, report.Count, report.Total.String())
	for _, o := range report.Orders {
		fmt.Fprintf(out, "  %s  %-20s %8s Bs  %s\n", o.Number, o.CustomerName, o.Amount.String(), o.PackageDescription)
	}
	return nil
}

// runHashPassword печатает bcrypt-хеш пароля из аргумента или первой строки stdin.
func runHashPassword(args []string, stdin io.Reader, out io.Writer) error {
	var password string
	if len(args) > 0 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return fmt.Errorf("%w: la contraseña está vacía", errUsage)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	fmt.Fprintln(out, hash)
	return nil
}

// printOrder печатает заказ; поля, скрытые от анонимного запроса, пропускаются.
func printOrder(out io.Writer, o *models.Order) {
	fmt.Fprintf(out, "Pedido %s\n", o.Number)
	if o.CustomerName != "" {
		fmt.Fprintf(out, "  Cliente:   %s\n", o.CustomerName)
	}
	fmt.Fprintf(out, "  Paquete:   %s\n", o.PackageDescription)
	if len(o.Flavors) > 0 {
		fmt.Fprintf(out, "  Sabores:   %s\n", strings.Join(o.Flavors, ", "))
		fmt.Fprintf(out, "  Dulzura:   %s\n", o.Sweetness)
		fmt.Fprintf(out, "  Triturado: %s\n", o.CrushType)
	}
	fmt.Fprintf(out, "  Total:     %s Bs\n", o.Amount.String())
	fmt.Fprintf(out, "  Fecha:     %s\n", o.CreatedAt.Format(time.RFC3339))
	if o.PaymentProofURL != "" {
		fmt.Fprintf(out, "  Comprobante: %s\n", o.PaymentProofURL)
	}
}
