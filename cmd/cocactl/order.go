package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/agamariel/cocapremium/internal/apiclient"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/wizard"
	flag "github.com/spf13/pflag"
)

// orderOptions - выбор пользователя для каждого шага мастера.
type orderOptions struct {
	Package   string
	Flavors   []string
	Sweetness string
	Crush     string
	Name      string
	ProofPath string
}

func runOrder(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	fs.SetOutput(out)
	api, timeout := apiFlags(fs)

	var opts orderOptions
	var flavors string
	list := fs.Bool("list", false, "mostrar el catálogo y salir")
	fs.StringVar(&opts.Package, "package", "", "id del paquete")
	fs.StringVar(&flavors, "flavors", "", "ids de sabores separados por coma (1 a 4)")
	fs.StringVar(&opts.Sweetness, "sweetness", "", "dulzura: FUERTE, MEDIO o SUAVE")
	fs.StringVar(&opts.Crush, "crush", "", "tipo de triturado (id o nombre, p. ej. LIGERO)")
	fs.StringVar(&opts.Name, "name", "", "nombre del cliente")
	fs.StringVar(&opts.ProofPath, "proof", "", "imagen del comprobante de pago")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts.Flavors = splitList(flavors)

	client, err := apiclient.New(*api, *timeout)
	if err != nil {
		return err
	}

	w, err := wizard.Load(ctx, client)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if *list {
		printCatalog(out, w.Catalog())
		return nil
	}

	if err := fillDraft(w, opts); err != nil {
		return err
	}
	printSummary(out, w.Summary())

	proof, err := readProof(opts.ProofPath)
	if err != nil {
		return err
	}

	p := wizard.NewPipeline(w, client)
	if _, err := p.UploadProof(ctx, proof); err != nil {
		return err
	}
	fmt.Fprintln(out, "Comprobante subido.")

	order, err := p.SubmitOrder(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Pedido creado: %s\nTotal: %s Bs\n", order.Number, order.Amount.String())
	return nil
}

// fillDraft проходит шаги 1..6 мастера и сообщает, на каком шаге выбор не принят.
func fillDraft(w *wizard.Wizard, opts orderOptions) error {
	if !w.SelectPackage(opts.Package) || !w.Advance() {
		return fmt.Errorf("paquete no válido: %q", opts.Package)
	}

	for _, id := range opts.Flavors {
		if !w.AddFlavor(id) {
			return fmt.Errorf("sabor no válido, repetido o más de %d: %q", models.MaxFlavors, id)
		}
	}
	if !w.Advance() {
		return fmt.Errorf("seleccione al menos un sabor")
	}

	sweetness, ok := models.ParseSweetness(opts.Sweetness)
	if !ok || !w.SelectSweetness(sweetness) || !w.Advance() {
		return fmt.Errorf("dulzura no válida: %q", opts.Sweetness)
	}

	if !w.SelectCrushType(opts.Crush) || !w.Advance() {
		return fmt.Errorf("tipo de triturado no válido: %q", opts.Crush)
	}

	// сводка
	if !w.Advance() {
		return fmt.Errorf("no se pudo pasar al pago")
	}

	w.SetCustomerName(opts.Name)
	return nil
}

// readProof читает файл чека и определяет его тип.
func readProof(path string) (wizard.ProofFile, error) {
	if path == "" {
		return wizard.ProofFile{}, fmt.Errorf("indique el comprobante con --proof")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return wizard.ProofFile{}, fmt.Errorf("read proof: %w", err)
	}
	return wizard.ProofFile{
		Name:        filepath.Base(path),
		ContentType: detectContentType(path, data),
		Data:        data,
	}, nil
}

// detectContentType берёт тип из расширения, а без него - по содержимому.
func detectContentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func printCatalog(out io.Writer, s *wizard.Snapshot) {
	fmt.Fprintln(out, "Paquetes:")
	for _, p := range s.Packages {
		fmt.Fprintf(out, "  %-8s %s\n", p.ID, p.Description())
	}
	fmt.Fprintln(out, "Sabores:")
	for _, c := range s.Categories {
		fmt.Fprintf(out, "  %s\n", c.Name)
		for _, f := range s.FlavorsInCategory(c.ID) {
			fmt.Fprintf(out, "    %-8s %s\n", f.ID, f.Name)
		}
	}
	fmt.Fprintln(out, "Dulzura:")
	for _, sw := range models.Sweetnesses {
		fmt.Fprintf(out, "  %s\n", sw)
	}
	fmt.Fprintln(out, "Triturado:")
	for _, c := range s.CrushTypes {
		fmt.Fprintf(out, "  %-8s %s\n", c.ID, c.Name)
	}
	fmt.Fprintln(out, "Pago QR:")
	for _, q := range s.QRCodes {
		fmt.Fprintf(out, "  %s %s\n", q.Name, q.ImageURL)
	}
}

func printSummary(out io.Writer, s wizard.Summary) {
	fmt.Fprintln(out, "Resumen del pedido:")
	fmt.Fprintf(out, "  Paquete:   %s\n", s.PackageDescription)
	fmt.Fprintf(out, "  Sabores:   %s\n", strings.Join(s.Flavors, ", "))
	fmt.Fprintf(out, "  Dulzura:   %s\n", s.Sweetness)
	fmt.Fprintf(out, "  Triturado: %s\n", s.CrushType)
	fmt.Fprintf(out, "  Total:     %s Bs\n", s.Total.String())
}
