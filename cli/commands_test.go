package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"storefront_cli/api"
	"storefront_cli/domain"
	"storefront_cli/store"
)

// capture stdout during cobra execution
func captureOutput(f func() error) (string, error) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), err
}

// reset cobra + global state between tests
func resetCLI() {
	rootCmd.SetArgs(nil)
	backend = nil
	credStore = nil
	cart = nil
}

// fakeBackend implements Backend with canned responses and call counts.
type fakeBackend struct {
	products     []domain.Product
	searchErr    error
	cartEntries  []domain.CartEntry
	fetchErr     error
	upsertResult []domain.CartEntry
	upsertErr    error
	loginResult  api.LoginResult
	loginErr     error
	checkoutErr  error

	token        string
	fetchCalls   int
	upsertCalls  int
	lastProduct  string
	lastQty      int
	lastSearch   string
	checkoutHits int
}

func (f *fakeBackend) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return f.products, nil
}

func (f *fakeBackend) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	f.lastSearch = query
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []domain.Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, domain.NewNoProductsError(query)
	}
	return out, nil
}

func (f *fakeBackend) FetchCart(ctx context.Context) ([]domain.CartEntry, error) {
	f.fetchCalls++
	return f.cartEntries, f.fetchErr
}

func (f *fakeBackend) UpsertCartItem(ctx context.Context, productID string, qty int) ([]domain.CartEntry, error) {
	f.upsertCalls++
	f.lastProduct = productID
	f.lastQty = qty
	return f.upsertResult, f.upsertErr
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (api.LoginResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeBackend) Register(ctx context.Context, username, password string) error {
	return nil
}

func (f *fakeBackend) Checkout(ctx context.Context, addressID string) error {
	f.checkoutHits++
	return f.checkoutErr
}

func (f *fakeBackend) SetToken(token string) { f.token = token }

func testCatalog() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "iPhone XR", Category: "Phones", Cost: decimal.NewFromInt(100), Rating: 4},
		{ID: "p2", Name: "Basketball", Category: "Sports", Cost: decimal.NewFromInt(50), Rating: 5},
		{ID: "p3", Name: "Sneakers", Category: "Fashion", Cost: decimal.NewFromInt(10), Rating: 3},
	}
}

func loggedInStore(t *testing.T) domain.CredentialStore {
	t.Helper()
	s := store.NewInMemoryStore()
	if err := s.Save(context.Background(), domain.Credentials{Token: "tok", Username: "alice"}); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestProductsListAndSearch(t *testing.T) {
	defer resetCLI()
	backend = &fakeBackend{products: testCatalog()}

	out, err := captureOutput(func() error {
		rootCmd.SetArgs([]string{"products", "list", "--output", "json"})
		return rootCmd.Execute()
	})
	if err != nil {
		t.Fatalf("products list failed: %v", err)
	}
	var listed []domain.Product
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("invalid list output: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 products, got %d", len(listed))
	}

	out, err = captureOutput(func() error {
		rootCmd.SetArgs([]string{"products", "search", "basketball"})
		return rootCmd.Execute()
	})
	if err != nil {
		t.Fatalf("products search failed: %v", err)
	}
	if !strings.Contains(out, "Basketball") {
		t.Errorf("search output should mention Basketball, got %q", out)
	}

	out, err = captureOutput(func() error {
		rootCmd.SetArgs([]string{"products", "search", "xylophone"})
		return rootCmd.Execute()
	})
	if err != nil {
		t.Fatalf("empty search should not be an error: %v", err)
	}
	if !strings.Contains(out, "No products found") {
		t.Errorf("expected not-found message, got %q", out)
	}
}

func TestLoginPersistsCredentials(t *testing.T) {
	defer resetCLI()
	fake := &fakeBackend{loginResult: api.LoginResult{Success: true, Token: "tok-abc", Username: "alice"}}
	backend = fake
	credStore = store.NewInMemoryStore()

	out, err := captureOutput(func() error {
		rootCmd.SetArgs([]string{"login", "--username", "alice", "--password", "pw"})
		return rootCmd.Execute()
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !strings.Contains(out, "Logged in as alice") {
		t.Errorf("unexpected login output: %q", out)
	}
	if fake.token != "tok-abc" {
		t.Errorf("backend token not set, got %q", fake.token)
	}
	creds, err := credStore.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.Token != "tok-abc" || creds.Username != "alice" {
		t.Errorf("credentials not persisted: %+v", creds)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	defer resetCLI()
	fake := &fakeBackend{token: "tok"}
	backend = fake
	credStore = loggedInStore(t)

	out, err := captureOutput(func() error {
		rootCmd.SetArgs([]string{"logout"})
		return rootCmd.Execute()
	})
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if !strings.Contains(out, "Logged out") {
		t.Errorf("unexpected logout output: %q", out)
	}
	if fake.token != "" {
		t.Error("backend token should be cleared")
	}
	creds, _ := credStore.Load(context.Background())
	if creds.LoggedIn() {
		t.Error("credentials should be cleared")
	}
}

func TestCartUpdateQuantity(t *testing.T) {
	defer resetCLI()
	fake := &fakeBackend{
		products:     testCatalog(),
		cartEntries:  []domain.CartEntry{{ProductID: "p1", Qty: 1}},
		upsertResult: []domain.CartEntry{{ProductID: "p1", Qty: 2}},
	}
	backend = fake
	credStore = loggedInStore(t)

	out, err := captureOutput(func() error {
		rootCmd.SetArgs([]string{"cart", "update", "p1", "2"})
		return rootCmd.Execute()
	})
	if err != nil {
		t.Fatalf("cart update failed: %v", err)
	}
	if fake.upsertCalls != 1 || fake.lastProduct != "p1" || fake.lastQty != 2 {
		t.Errorf("unexpected upsert: calls=%d product=%s qty=%d",
			fake.upsertCalls, fake.lastProduct, fake.lastQty)
	}
	if !strings.Contains(out, "Cart has 1 item(s)") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestCartAddNewProduct(t *testing.T) {
	defer resetCLI()
	fake := &fakeBackend{
		products:     testCatalog(),
		cartEntries:  []domain.CartEntry{{ProductID: "p1", Qty: 1}},
		upsertResult: []domain.CartEntry{{ProductID: "p1", Qty: 1}, {ProductID: "p2", Qty: 1}},
	}
	backend = fake
	credStore = loggedInStore(t)

	out, err := captureOutput(func() error {
		rootCmd.SetArgs([]string{"cart", "add", "p2"})
		return rootCmd.Execute()
	})
	if err != nil {
		t.Fatalf("cart add failed: %v", err)
	}
	if fake.upsertCalls != 1 || fake.lastProduct != "p2" || fake.lastQty != 1 {
		t.Errorf("unexpected upsert: calls=%d product=%s qty=%d",
			fake.upsertCalls, fake.lastProduct, fake.lastQty)
	}
	if !strings.Contains(out, "Cart has 2 item(s)") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestCartShowTotals(t *testing.T) {
	defer resetCLI()
	backend = &fakeBackend{
		products:    testCatalog(),
		cartEntries: []domain.CartEntry{{ProductID: "p1", Qty: 2}, {ProductID: "p2", Qty: 1}},
	}
	credStore = loggedInStore(t)

	out, err := captureOutput(func() error {
		rootCmd.SetArgs([]string{"cart", "show"})
		return rootCmd.Execute()
	})
	if err != nil {
		t.Fatalf("cart show failed: %v", err)
	}
	if !strings.Contains(out, "iPhone XR") || !strings.Contains(out, "Basketball") {
		t.Errorf("line items missing from output: %q", out)
	}
	if strings.Contains(out, "Sneakers") {
		t.Errorf("products outside the cart must not appear: %q", out)
	}
	if !strings.Contains(out, "Order total: $250") {
		t.Errorf("expected order total 250, got %q", out)
	}
}

func TestCartShowEmpty(t *testing.T) {
	defer resetCLI()
	backend = &fakeBackend{products: testCatalog()}
	credStore = loggedInStore(t)

	out, err := captureOutput(func() error {
		rootCmd.SetArgs([]string{"cart", "show"})
		return rootCmd.Execute()
	})
	if err != nil {
		t.Fatalf("cart show failed: %v", err)
	}
	if !strings.Contains(out, "Cart is empty") {
		t.Errorf("expected empty-cart message, got %q", out)
	}
}

func TestCheckout(t *testing.T) {
	defer resetCLI()
	fake := &fakeBackend{
		products:    testCatalog(),
		cartEntries: []domain.CartEntry{{ProductID: "p1", Qty: 2}, {ProductID: "p2", Qty: 1}},
	}
	backend = fake
	credStore = loggedInStore(t)

	out, err := captureOutput(func() error {
		rootCmd.SetArgs([]string{"checkout", "--address", "addr-1"})
		return rootCmd.Execute()
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if fake.checkoutHits != 1 {
		t.Errorf("expected 1 checkout call, got %d", fake.checkoutHits)
	}
	if !strings.Contains(out, "Order placed") {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "Total: $250") {
		t.Errorf("expected order total 250, got %q", out)
	}
	if len(cart.Entries()) != 0 {
		t.Error("cart cache should be reset after checkout")
	}
}
