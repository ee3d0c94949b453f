// Command shop is a terminal storefront for the partify API: browse parts,
// buy through the checkout flow and print receipts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gosuri/uitable"
	"github.com/joho/godotenv"

	"github.com/Skotchmaster/partify/internal/client"
	"github.com/Skotchmaster/partify/internal/config"
	"github.com/Skotchmaster/partify/internal/logging"
	"github.com/Skotchmaster/partify/internal/models"
	"github.com/Skotchmaster/partify/internal/storefront/cart"
	"github.com/Skotchmaster/partify/internal/storefront/checkout"
	"github.com/Skotchmaster/partify/internal/storefront/history"
	"github.com/Skotchmaster/partify/internal/storefront/receipt"
	"github.com/Skotchmaster/partify/internal/transport"
)

const usage = `usage: shop <command> [flags]

commands:
  products   list catalog parts
  buy        check out one part with cash on delivery
  orders     list your orders
  receipt    print the receipt of one order
`

func main() {
	_ = godotenv.Load()
	slog.SetDefault(logging.NewWithWriter(os.Stderr, config.EnvDefault("LOG_LEVEL", "warn")))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "shop:", err)
		os.Exit(1)
	}
}

type session struct {
	api         *client.Client
	email       string
	password    string
	historyPath string
}

func (s *session) flags(fs *flag.FlagSet) {
	fs.StringVar(&s.email, "email", os.Getenv("PARTIFY_EMAIL"), "account email")
	fs.StringVar(&s.password, "password", os.Getenv("PARTIFY_PASSWORD"), "account password")
}

// login signs in unless a token was supplied through PARTIFY_TOKEN.
func (s *session) login(ctx context.Context) (*transport.AuthResponse, error) {
	if s.email == "" || s.password == "" {
		if s.api.Token() != "" {
			return nil, nil
		}
		return nil, errors.New("-email and -password are required")
	}
	return s.api.Login(ctx, s.email, s.password)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	var opts []client.Option
	if tok := os.Getenv("PARTIFY_TOKEN"); tok != "" {
		opts = append(opts, client.WithToken(tok))
	}
	s := &session{
		api:         client.New(config.EnvDefault("PARTIFY_URL", "http://localhost:8080"), opts...),
		historyPath: defaultHistoryPath(),
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch args[0] {
	case "products":
		return s.products(ctx, args[1:], out)
	case "buy":
		return s.buy(ctx, args[1:], out)
	case "orders":
		return s.orders(ctx, args[1:], out)
	case "receipt":
		return s.receipt(ctx, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}
	fmt.Fprint(out, usage)
	return fmt.Errorf("unknown command %q", args[0])
}

func (s *session) products(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	var q transport.ProductQuery
	fs.StringVar(&q.Category, "category", "", "category filter")
	fs.StringVar(&q.Search, "search", "", "name/part number/description search")
	fs.StringVar(&q.Make, "make", "", "vehicle make")
	fs.StringVar(&q.Year, "year", "", "vehicle year")
	fs.IntVar(&q.Page, "page", 1, "page number")
	recent := fs.Bool("recent", false, "show previously purchased parts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *recent {
		q.IDs = strings.Join(s.loadHistory().IDs(), ",")
		if q.IDs == "" {
			fmt.Fprintln(out, "No past purchases yet.")
			return nil
		}
	}

	page, err := s.api.ListProducts(ctx, q)
	if err != nil {
		return err
	}

	table := uitable.New()
	table.MaxColWidth = 40
	table.RightAlign(3)
	table.RightAlign(4)
	table.AddRow("ID", "PART #", "NAME", "PRICE", "STOCK")
	for _, p := range page.Products {
		table.AddRow(p.ID, p.PartNumber, p.Name, receipt.Money(p.Price), p.Stock)
	}
	fmt.Fprintln(out, table)
	fmt.Fprintf(out, "page %d of %d (%d parts)\n", page.Page, page.Pages, page.Total)
	return nil
}

func (s *session) buy(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("buy", flag.ContinueOnError)
	s.flags(fs)
	productID := fs.String("product", "", "product id")
	qty := fs.Int("qty", 1, "quantity")
	var form checkout.AddressForm
	fs.StringVar(&form.FullName, "name", "", "recipient name (defaults to account name)")
	fs.StringVar(&form.Phone, "phone", "", "phone")
	fs.StringVar(&form.Street, "street", "", "street")
	fs.StringVar(&form.City, "city", "", "city")
	fs.StringVar(&form.State, "state", "", "state")
	fs.StringVar(&form.Zip, "zip", "", "zip")
	fs.StringVar(&form.Country, "country", checkout.DefaultCountry, "country")
	mapAddress := fs.String("map-address", "", "delivery address picked on a map")
	lat := fs.Float64("lat", 0, "map latitude")
	lng := fs.Float64("lng", 0, "map longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *productID == "" {
		return errors.New("-product is required")
	}

	me, err := s.login(ctx)
	if err != nil {
		return err
	}
	if me == nil {
		return errors.New("buy needs -email and -password")
	}

	p, err := s.api.GetProduct(ctx, *productID)
	if err != nil {
		return err
	}

	hist := s.loadHistory()
	flow, err := checkout.Start(
		&checkout.Identity{UserID: me.ID, Name: me.Name, Email: me.Email},
		cart.New().Add(*p, *qty),
		s.api,
		hist,
	)
	if err != nil {
		return err
	}

	if form.FullName == "" {
		form.FullName = flow.Form().FullName
	}
	if err := flow.SubmitAddress(form); err != nil {
		return err
	}
	if *mapAddress != "" {
		if err := flow.PickLocation(*mapAddress, *lat, *lng); err != nil {
			return err
		}
	}
	if err := flow.ConfirmLocation(); err != nil {
		return err
	}

	order, err := flow.Place(ctx)
	if err != nil {
		return err
	}
	if err := s.saveHistory(hist); err != nil {
		slog.Warn("history_save_failed", "path", s.historyPath, "error", err)
	}

	_, err = receipt.New(*order, &models.Customer{ID: me.ID, Name: me.Name, Email: me.Email}).WriteTo(out)
	return err
}

func (s *session) orders(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	s.flags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := s.login(ctx); err != nil {
		return err
	}

	list, err := s.api.MyOrders(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No orders yet.")
		return nil
	}

	table := uitable.New()
	table.RightAlign(3)
	table.AddRow("ORDER", "DATE", "STATUS", "TOTAL")
	for _, o := range list {
		table.AddRow(receipt.Number(o.ID), o.CreatedAt.Format(receipt.DateLayout), o.Status, receipt.Money(o.TotalPrice))
	}
	fmt.Fprintln(out, table)
	return nil
}

func (s *session) receipt(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("receipt", flag.ContinueOnError)
	s.flags(fs)
	orderID := fs.String("order", "", "order id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *orderID == "" {
		return errors.New("-order is required")
	}
	if _, err := s.login(ctx); err != nil {
		return err
	}

	o, err := s.api.GetOrder(ctx, *orderID)
	if err != nil {
		return err
	}
	_, err = receipt.New(*o, nil).WriteTo(out)
	return err
}

func defaultHistoryPath() string {
	if p := os.Getenv("PARTIFY_HISTORY"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "partify", history.CookieName)
}

func (s *session) loadHistory() *history.History {
	if s.historyPath == "" {
		return history.Parse("")
	}
	raw, err := os.ReadFile(s.historyPath)
	if err != nil {
		return history.Parse("")
	}
	return history.Parse(strings.TrimSpace(string(raw)))
}

func (s *session) saveHistory(h *history.History) error {
	if s.historyPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.historyPath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.historyPath, []byte(h.String()+"\n"), 0o600)
}
