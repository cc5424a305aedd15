// Command basket edits the locally stored basket and checks it out from
// the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/niksmo/farmstore/internal/adapter/catalog"
	"github.com/niksmo/farmstore/internal/adapter/launcher"
	"github.com/niksmo/farmstore/internal/adapter/storage"
	"github.com/niksmo/farmstore/internal/app"
	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/ordermsg"
	"github.com/niksmo/farmstore/internal/core/port"
	"github.com/niksmo/farmstore/internal/core/service"
	"github.com/niksmo/farmstore/pkg/phone"
	"github.com/niksmo/farmstore/pkg/sigctx"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

const usage = `usage: basket [flags] <command> [args]

commands:
  products              list the catalog
  show                  show the basket
  add <product-id>      put a product into the basket
  remove <product-id>   take a product out of the basket
  qty <product-id> <n>  change the quantity by n, never below 1;
                        put -- before the command when n is negative
  clear                 empty the basket
  checkout              send the basket to the farmer

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := sigctx.NotifyContext(context.Background())
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, deps{
		fs:     afero.NewOsFs(),
		opener: launcher.NewBrowser(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "basket:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type deps struct {
	fs     afero.Fs
	opener port.LinkOpener
}

type flags struct {
	dir      string
	key      string
	apiURL   string
	idField  string
	destID   string
	region   string
	store    string
	currency string
	logLevel string

	category string
	search   string
	sort     string

	name  string
	phone string
	notes string
	print bool
}

func parseFlags(args []string, out io.Writer) (flags, []string, error) {
	var f flags
	fs := pflag.NewFlagSet("basket", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&f.dir, "dir", defaultDir(), "directory the basket file is kept in")
	fs.StringVar(&f.key, "key", storage.DefaultKey, "basket file name without extension")
	fs.StringVar(&f.apiURL, "api-url", "https://satesma-back.onrender.com/api", "product API base URL")
	fs.StringVar(&f.idField, "id-field", catalog.DefaultIDField, "product id key in API records")
	fs.StringVar(&f.destID, "to", "2348056623864", "farmer phone number")
	fs.StringVar(&f.region, "region", phone.DefaultRegion, "region for national phone numbers")
	fs.StringVar(&f.store, "store-name", ordermsg.DefaultStoreName, "store name in the order message")
	fs.StringVar(&f.currency, "currency", ordermsg.DefaultCurrencySymbol, "currency symbol")
	fs.StringVar(&f.logLevel, "log-level", "warn", "log level")

	fs.StringVar(&f.category, "category", domain.CategoryAll, "products: category filter")
	fs.StringVar(&f.search, "search", "", "products: name search")
	fs.StringVar(&f.sort, "sort", "", "products: name, price-low or price-high")

	fs.StringVar(&f.name, "name", "", "checkout: your name")
	fs.StringVar(&f.phone, "phone", "", "checkout: your phone number")
	fs.StringVar(&f.notes, "notes", "", "checkout: delivery notes")
	fs.BoolVar(&f.print, "print", false, "checkout: print the link instead of opening it")

	if err := fs.Parse(args); err != nil {
		return flags{}, nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flags{}, nil, fmt.Errorf("%w: no command", errUsage)
	}
	return f, fs.Args(), nil
}

func defaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "farmstore")
}

func run(ctx context.Context, args []string, out io.Writer, d deps) error {
	f, cmd, err := parseFlags(args, out)
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return fmt.Errorf("%w: --log-level: %w", errUsage, err)
	}
	app.InitLogger(level)

	cart := service.NewCart(ctx, storage.NewFileStore(d.fs, f.dir, f.key))

	switch cmd[0] {
	case "show":
		printBasket(out, cart.Basket())
		return nil
	case "remove":
		id, err := arg(cmd, 1)
		if err != nil {
			return err
		}
		printBasket(out, cart.RemoveItem(ctx, id))
		return nil
	case "qty":
		id, err := arg(cmd, 1)
		if err != nil {
			return err
		}
		n, err := arg(cmd, 2)
		if err != nil {
			return err
		}
		delta, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("%w: quantity delta: %w", errUsage, err)
		}
		printBasket(out, cart.UpdateQuantity(ctx, id, delta))
		return nil
	case "clear":
		printBasket(out, cart.Clear(ctx))
		return nil
	case "checkout":
		return checkout(ctx, out, f, cart, d.opener)
	case "products", "add":
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd[0])
	}

	cat, err := loadCatalog(ctx, f)
	if err != nil {
		return err
	}

	if cmd[0] == "products" {
		printProducts(out, cat.Query(domain.ProductQuery{
			Category: f.category,
			Search:   f.search,
			Sort:     domain.ParseSortOrder(f.sort),
		}))
		return nil
	}

	id, err := arg(cmd, 1)
	if err != nil {
		return err
	}
	p, ok := cat.Product(id)
	if !ok {
		return fmt.Errorf("product %q not found", id)
	}
	printBasket(out, cart.AddItem(ctx, p))
	return nil
}

func arg(cmd []string, i int) (string, error) {
	if len(cmd) <= i {
		return "", fmt.Errorf("%w: %s: missing argument", errUsage, cmd[0])
	}
	return cmd[i], nil
}

func loadCatalog(ctx context.Context, f flags) (*service.Catalog, error) {
	client, err := catalog.NewClient(f.apiURL, catalog.IDFieldOpt(f.idField))
	if err != nil {
		return nil, err
	}
	cat := service.NewCatalog(client, client)
	if err := cat.Refresh(ctx); err != nil {
		return nil, err
	}
	return cat, nil
}

func checkout(
	ctx context.Context,
	out io.Writer,
	f flags,
	cart *service.Cart,
	opener port.LinkOpener,
) error {
	destID, err := phone.DestinationID(f.destID, f.region)
	if err != nil {
		return fmt.Errorf("%w: --to: %w", errUsage, err)
	}
	if f.print {
		opener = printer{out}
	}

	c := service.NewCheckout(cart, service.CheckoutConfig{
		DestinationID: destID,
		Formatter:     ordermsg.New(f.store, f.currency),
		Opener:        opener,
	})
	r, err := c.Dispatch(ctx, domain.CustomerDetails{
		Name:  f.name,
		Phone: f.phone,
		Notes: f.notes,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "order %s sent, total %s%s\n",
		r.OrderID, f.currency, ordermsg.Amount(r.Subtotal))
	return nil
}

// printer writes the link out for the user to open.
type printer struct {
	w io.Writer
}

func (p printer) Open(_ context.Context, link string) error {
	_, err := fmt.Fprintln(p.w, link)
	return err
}

func printBasket(out io.Writer, b domain.Basket) {
	if b.IsEmpty() {
		fmt.Fprintln(out, "basket is empty")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tTOTAL")
	for _, li := range b.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			li.ID, li.Name, li.Quantity,
			ordermsg.Amount(li.Price), ordermsg.Amount(li.LineTotal()))
	}
	fmt.Fprintf(tw, "\t\t%d\t\t%s\n", b.ItemCount(), ordermsg.Amount(b.Subtotal()))
	_ = tw.Flush()
}

func printProducts(out io.Writer, ps []domain.Product) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tUNIT")
	for _, p := range ps {
		top := ""
		if p.IsTopProduct {
			top = " *"
		}
		fmt.Fprintf(tw, "%s\t%s%s\t%s\t%s\t%s\n",
			p.ID, p.Name, top, p.Category, ordermsg.Amount(p.Price), p.Unit)
	}
	_ = tw.Flush()
}
