// Package cli provides the Cobra-based CLI for the storefront client.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storefront_cli/api"
	"storefront_cli/domain"
	"storefront_cli/session"
	"storefront_cli/store"
)

// Backend is the slice of the remote API the commands consume.
// api.Client implements it; tests inject fakes.
type Backend interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
	FetchCart(ctx context.Context) ([]domain.CartEntry, error)
	UpsertCartItem(ctx context.Context, productID string, qty int) ([]domain.CartEntry, error)
	Login(ctx context.Context, username, password string) (api.LoginResult, error)
	Register(ctx context.Context, username, password string) error
	Checkout(ctx context.Context, addressID string) error
	SetToken(token string)
}

var (
	rootCmd = &cobra.Command{
		Use:   "storefront",
		Short: "A terminal client for the storefront API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// IMPORTANT: allow tests to inject backend and store
			if backend != nil {
				if credStore == nil {
					credStore = store.NewInMemoryStore()
				}
				if cart == nil {
					cart = session.NewCart(backend)
				}
				return nil
			}

			if cfg := viper.GetString("config"); cfg != "" {
				viper.SetConfigFile(cfg)
				if err := viper.ReadInConfig(); err != nil {
					return err
				}
			}

			lvlStr := strings.ToLower(viper.GetString("log-level"))
			lvl := slog.LevelInfo
			switch lvlStr {
			case "debug":
				lvl = slog.LevelDebug
			case "warn", "warning":
				lvl = slog.LevelWarn
			case "error":
				lvl = slog.LevelError
			}
			slog.SetDefault(slog.New(
				slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}),
			))

			var err error
			credStore, err = store.NewStore(
				viper.GetString("store"),
				viper.GetString("store-file"),
			)
			if err != nil {
				return err
			}

			client := api.NewClient(viper.GetString("endpoint"))
			creds, err := credStore.Load(cmd.Context())
			if err != nil {
				return err
			}
			client.SetToken(creds.Token)
			backend = client
			cart = session.NewCart(backend)
			return nil
		},
	}

	backend   Backend
	credStore domain.CredentialStore
	cart      *session.Cart
)

func init() {
	// shell
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := bufio.NewReader(os.Stdin)
			for {
				fmt.Print("storefront> ")
				line, err := r.ReadString('\n')
				if err != nil {
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}
				rootCmd.SetArgs(strings.Fields(line))
				if err := rootCmd.Execute(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
				rootCmd.SetArgs(nil)
			}
		},
	}
	rootCmd.AddCommand(shellCmd)

	rootCmd.PersistentFlags().String("endpoint", "http://localhost:8082/api/v1", "backend base URL")
	rootCmd.PersistentFlags().String("store", "file", "credential store backend: memory|file")
	rootCmd.PersistentFlags().String("store-file", "data/credentials.json", "credential file path")
	rootCmd.PersistentFlags().String("config", "", "config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level")
	rootCmd.PersistentFlags().Int("debounce-ms", 500, "search debounce interval in milliseconds")

	viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("store-file", rootCmd.PersistentFlags().Lookup("store-file"))
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("debounce-ms", rootCmd.PersistentFlags().Lookup("debounce-ms"))
	viper.SetEnvPrefix("STOREFRONT")
	viper.AutomaticEnv()

	// login
	var loginUser, loginPass string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if loginUser == "" || loginPass == "" {
				return errors.New("--username and --password required")
			}
			start := time.Now()
			res, err := backend.Login(cmd.Context(), loginUser, loginPass)
			if err != nil {
				slog.Error("login failed", "username", loginUser, "error", err)
				return err
			}
			backend.SetToken(res.Token)
			creds := domain.Credentials{Token: res.Token, Username: res.Username}
			if err := credStore.Save(cmd.Context(), creds); err != nil {
				return err
			}
			slog.Info("logged in", "username", res.Username, "duration_ms", time.Since(start).Milliseconds())
			fmt.Printf("Logged in as %s\n", res.Username)
			return nil
		},
	}
	loginCmd.Flags().StringVar(&loginUser, "username", "", "username")
	loginCmd.Flags().StringVar(&loginPass, "password", "", "password")
	rootCmd.AddCommand(loginCmd)

	// register
	var regUser, regPass string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if regUser == "" || regPass == "" {
				return errors.New("--username and --password required")
			}
			if err := backend.Register(cmd.Context(), regUser, regPass); err != nil {
				return err
			}
			fmt.Println("Registered. You can now login.")
			return nil
		},
	}
	registerCmd.Flags().StringVar(&regUser, "username", "", "username")
	registerCmd.Flags().StringVar(&regPass, "password", "", "password")
	rootCmd.AddCommand(registerCmd)

	// logout
	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credStore.Clear(cmd.Context()); err != nil {
				return err
			}
			backend.SetToken("")
			cart.Reset()
			fmt.Println("Logged out")
			return nil
		},
	}
	rootCmd.AddCommand(logoutCmd)

	// products
	productsCmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the product catalog",
	}
	rootCmd.AddCommand(productsCmd)

	var listOutput string
	productsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List all products",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := backend.ListProducts(cmd.Context())
			if err != nil {
				return err
			}
			printProducts(out, listOutput)
			return nil
		},
	}
	productsListCmd.Flags().StringVar(&listOutput, "output", "", "output format")
	productsCmd.AddCommand(productsListCmd)

	var searchOutput string
	var searchInteractive bool
	productsSearchCmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search products by name or category",
		RunE: func(cmd *cobra.Command, args []string) error {
			if searchInteractive {
				return interactiveSearch(cmd.Context(), searchOutput)
			}
			if len(args) == 0 {
				return errors.New("search text required")
			}
			out, err := backend.SearchProducts(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				if domain.IsNoProductsError(err) {
					fmt.Println("No products found")
					return nil
				}
				return err
			}
			printProducts(out, searchOutput)
			return nil
		},
	}
	productsSearchCmd.Flags().StringVar(&searchOutput, "output", "", "output format")
	productsSearchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "debounced search prompt")
	productsCmd.AddCommand(productsSearchCmd)

	// cart
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "View and change the cart",
	}
	rootCmd.AddCommand(cartCmd)

	var showOutput string
	cartShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show cart line items and order total",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := credStore.Load(cmd.Context())
			if err != nil {
				return err
			}
			items, err := materializedCart(cmd.Context(), creds.Token)
			if err != nil {
				if domain.IsAuthRequiredError(err) {
					fmt.Fprintln(os.Stderr, "Login to view your cart")
					return nil
				}
				return err
			}
			printCart(items, showOutput)
			return nil
		},
	}
	cartShowCmd.Flags().StringVar(&showOutput, "output", "", "output format")
	cartCmd.AddCommand(cartShowCmd)

	var addQty int
	cartAddCmd := &cobra.Command{
		Use:   "add <productId>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeCart(cmd.Context(), args[0], addQty, true)
		},
	}
	cartAddCmd.Flags().IntVar(&addQty, "qty", 1, "quantity")
	cartCmd.AddCommand(cartAddCmd)

	cartUpdateCmd := &cobra.Command{
		Use:   "update <productId> <qty>",
		Short: "Set the quantity of a product already in the cart",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			// qty is forwarded as-is; the backend owns zero/negative semantics
			return changeCart(cmd.Context(), args[0], qty, false)
		},
	}
	cartCmd.AddCommand(cartUpdateCmd)

	// checkout
	var addressID string
	checkoutCmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := credStore.Load(cmd.Context())
			if err != nil {
				return err
			}
			if !creds.LoggedIn() {
				fmt.Fprintln(os.Stderr, "Login to checkout")
				return nil
			}

			items, err := materializedCart(cmd.Context(), creds.Token)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(os.Stderr, "Cart is empty. Add more items to the cart to checkout.")
				return nil
			}

			start := time.Now()
			if err := backend.Checkout(cmd.Context(), addressID); err != nil {
				slog.Error("checkout failed", "error", err)
				return err
			}
			slog.Info("order placed", "items", len(items), "duration_ms", time.Since(start).Milliseconds())
			cart.Reset()

			total := domain.OrderTotal(items)
			fmt.Println("Order placed")
			fmt.Printf("Products: %d\n", len(items))
			fmt.Printf("Subtotal: $%s\n", total)
			fmt.Println("Shipping: $0")
			fmt.Printf("Total: $%s\n", total)
			return nil
		},
	}
	checkoutCmd.Flags().StringVar(&addressID, "address", "", "delivery address id")
	rootCmd.AddCommand(checkoutCmd)
}

// materializedCart refreshes the cart cache, fetches the catalog and
// joins them. Tolerates either collection being empty: the result is
// simply an empty line-item list.
func materializedCart(ctx context.Context, token string) ([]domain.CartLineItem, error) {
	entries, err := cart.Refresh(ctx, token)
	if err != nil {
		return nil, err
	}
	catalog, err := backend.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return domain.MaterializeCart(entries, catalog), nil
}

// changeCart runs the add/update policy and surfaces local rejections
// as warnings rather than hard failures.
func changeCart(ctx context.Context, productID string, qty int, initialAdd bool) error {
	creds, err := credStore.Load(ctx)
	if err != nil {
		return err
	}

	if creds.LoggedIn() {
		// the duplicate gate needs the current entries
		if _, err := cart.Refresh(ctx, creds.Token); err != nil {
			return err
		}
	}

	entries, err := cart.ApplyChange(ctx, creds.Token, productID, qty, initialAdd)
	if err != nil {
		if domain.IsAuthRequiredError(err) {
			fmt.Fprintln(os.Stderr, "Login to add items to the cart")
			return nil
		}
		if domain.IsDuplicateItemError(err) {
			fmt.Fprintln(os.Stderr, "Item already in cart. Use the cart view to adjust quantity.")
			return nil
		}
		return err
	}
	fmt.Printf("Cart has %d item(s)\n", len(entries))
	return nil
}

// interactiveSearch reads lines from stdin and fires a debounced search
// for each pause in typing. Responses carry a sequence number; a stale
// response arriving after a newer query is dropped, never printed.
func interactiveSearch(ctx context.Context, output string) error {
	deb := session.NewDebouncer(time.Duration(viper.GetInt("debounce-ms")) * time.Millisecond)
	defer deb.Stop()
	seqr := session.NewSequencer()

	fmt.Println("Type to search; empty line or Ctrl-D to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("search> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			return nil
		}
		deb.Trigger(func() {
			seq := seqr.Next("search")
			out, err := backend.SearchProducts(ctx, text)
			if !seqr.Current("search", seq) {
				// superseded by a newer query
				return
			}
			if err != nil {
				if domain.IsNoProductsError(err) {
					fmt.Println("\nNo products found")
					return
				}
				fmt.Fprintln(os.Stderr, err)
				return
			}
			fmt.Println()
			printProducts(out, output)
		})
	}
}

func printProducts(products []domain.Product, output string) {
	if output == "json" {
		b, _ := json.MarshalIndent(products, "", "  ")
		fmt.Println(string(b))
		return
	}
	for _, p := range products {
		fmt.Printf("%s | %s | %s | $%s | %d/5\n",
			p.ID, p.Name, p.Category, p.Cost, p.Rating)
	}
}

func printCart(items []domain.CartLineItem, output string) {
	if output == "json" {
		b, _ := json.MarshalIndent(items, "", "  ")
		fmt.Println(string(b))
		return
	}
	if len(items) == 0 {
		fmt.Println("Cart is empty. Add more items to the cart to checkout.")
		return
	}
	for _, it := range items {
		fmt.Printf("%s | %s | qty %d | $%s\n", it.ID, it.Name, it.Qty, it.Cost)
	}
	fmt.Printf("Order total: $%s\n", domain.OrderTotal(items))
}

func Execute() error {
	return rootCmd.Execute()
}
