// ABOUTME: In-memory storefront API server for tests
// ABOUTME: Implements auth, cart, payment and catalog endpoints over httptest

package shoptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/markalston/storefront-cli/internal/client"
)

// Default account accepted by a new Server
const (
	Email    = "ada@example.com"
	Password = "correct-horse"
	FullName = "Ada Lovelace"
	Token    = "tok-ada-1"
)

type account struct {
	fullName string
	password string
	token    string
}

// Server is a fake storefront backend. The zero cart is absent (GET /cart
// returns 404) until something is added.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	accounts   map[string]account
	tokens     map[string]string
	products   map[int64]client.Product
	categories []client.Category
	cartID     int64
	lines      []client.CartItem
	hasCart    bool
	sessions   int
	completed  map[string]*client.PaymentSummary
	hits       map[string]int
}

// New starts a server seeded with one account, three products and two
// categories.
func New() *Server {
	s := &Server{
		accounts:  map[string]account{Email: {fullName: FullName, password: Password, token: Token}},
		tokens:    map[string]string{Token: Email},
		products:  make(map[int64]client.Product),
		cartID:    3,
		completed: make(map[string]*client.PaymentSummary),
		hits:      make(map[string]int),
		categories: []client.Category{
			{ID: 1, Name: "Lighting"},
			{ID: 2, Name: "Furniture"},
		},
	}
	for _, p := range []client.Product{
		{ID: 7, Name: "Brass Lamp", Brand: "Lumen", Price: decimal.NewFromInt(500), CategoryID: 1, Type: "indoor", Images: []string{"uploads/lamp.jpg"}},
		{ID: 8, Name: "Oak Desk", Brand: "Grain", Price: decimal.NewFromInt(1200), CategoryID: 2, Type: "indoor"},
		{ID: 9, Name: "Folding Chair", Brand: "Grain", Price: decimal.RequireFromString("120.50"), CategoryID: 2, Type: "outdoor"},
	} {
		s.products[p.ID] = p
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", s.login)
	mux.HandleFunc("POST /api/v1/auth/signup", s.signup)
	mux.HandleFunc("GET /api/v1/cart", s.protected(s.getCart))
	mux.HandleFunc("POST /api/v1/cart", s.protected(s.setItem))
	mux.HandleFunc("DELETE /api/v1/cart", s.protected(s.clearCart))
	mux.HandleFunc("DELETE /api/v1/cart/{productId}", s.protected(s.removeItem))
	mux.HandleFunc("POST /api/v1/payment/checkout/{cartId}", s.protected(s.checkout))
	mux.HandleFunc("POST /api/v1/payment/complete/{token}", s.protected(s.complete))
	mux.HandleFunc("GET /api/v1/products/list", s.listProducts)
	mux.HandleFunc("GET /api/v1/products/{id}", s.getProduct)
	mux.HandleFunc("GET /api/v1/category/list", s.listCategories)

	s.Server = httptest.NewServer(s.count(mux))
	return s
}

// Hits returns how many requests matched "METHOD /path"
func (s *Server) Hits(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

// SeedCart replaces the cart with quantities of known products
func (s *Server) SeedCart(quantities map[int64]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	for _, id := range sortedIDs(quantities) {
		s.upsertLocked(id, quantities[id])
	}
	s.hasCart = true
}

// Cart returns the server's cart, nil when absent
func (s *Server) Cart() *client.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked()
}

// RevokeTokens makes every issued token invalid, as if sessions expired
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized", "statusCode": 401})
			return
		}
		next(w, r)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in client.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[in.Email]
	if !ok || acct.password != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	s.tokens[acct.token] = in.Email
	writeJSON(w, http.StatusOK, client.AuthResponse{Token: acct.token, FullName: acct.fullName})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var in client.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[in.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
		return
	}
	if len(in.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"message": {"password must be longer than or equal to 6 characters"}})
		return
	}
	token := fmt.Sprintf("tok-%s", in.Email)
	s.accounts[in.Email] = account{fullName: in.FullName, password: in.Password, token: token}
	s.tokens[token] = in.Email
	writeJSON(w, http.StatusCreated, client.AuthResponse{Token: token})
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cart := s.cartLocked()
	s.mu.Unlock()
	if cart == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Cart not found"})
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) setItem(w http.ResponseWriter, r *http.Request) {
	var in client.SetItemRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Quantity < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "quantity must be at least 1"})
		return
	}
	if _, ok := s.products[in.ProductID]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	s.upsertLocked(in.ProductID, in.Quantity)
	s.hasCart = true
	writeJSON(w, http.StatusOK, s.cartLocked())
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("productId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid product id"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.lines[:0]
	for _, it := range s.lines {
		if it.ProductID != id {
			kept = append(kept, it)
		}
	}
	s.lines = kept
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed"})
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.hasCart = false
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.PathValue("cartId") != strconv.FormatInt(s.cartID, 10) || len(s.lines) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Cart is empty"})
		return
	}
	s.sessions++
	writeJSON(w, http.StatusCreated, map[string]string{
		"stripeSessionUrl": fmt.Sprintf("%s/pay/cs_test_%d", s.URL, s.sessions),
	})
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	s.mu.Lock()
	defer s.mu.Unlock()

	if summary, ok := s.completed[token]; ok {
		writeJSON(w, http.StatusOK, summary)
		return
	}
	if !strings.HasPrefix(token, "cs_test_") || len(s.lines) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Unknown payment session"})
		return
	}

	summary := &client.PaymentSummary{ID: int64(len(s.completed) + 1), Status: "paid", TotalAmount: decimal.Zero}
	for _, it := range s.lines {
		summary.PurchasedItems = append(summary.PurchasedItems, client.PurchasedItem{
			ProductID:       it.ProductID,
			Name:            it.Product.Name,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtAdd,
		})
		summary.TotalAmount = summary.TotalAmount.Add(it.LineTotal())
	}
	s.completed[token] = summary
	s.lines = nil
	s.hasCart = false
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category, _ := strconv.ParseInt(q.Get("category"), 10, 64)
	typ := q.Get("type")

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []client.Product
	for _, id := range sortedIDs(s.products) {
		p := s.products[id]
		if category != 0 && p.CategoryID != category {
			continue
		}
		if typ != "" && p.Type != typ {
			continue
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, client.ProductPage{Data: out, TotalPages: 1})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	s.mu.Lock()
	p, ok := s.products[id]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": s.categories})
}

func (s *Server) upsertLocked(productID int64, quantity int) {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			return
		}
	}
	p := s.products[productID]
	s.lines = append(s.lines, client.CartItem{
		ID:         int64(len(s.lines) + 1),
		CartID:     s.cartID,
		ProductID:  productID,
		Quantity:   quantity,
		PriceAtAdd: p.Price,
		Product:    client.CartProduct{ID: p.ID, Name: p.Name, Brand: p.Brand, Price: p.Price, Images: p.Images},
	})
}

func (s *Server) cartLocked() *client.Cart {
	if !s.hasCart {
		return nil
	}
	cart := &client.Cart{ID: s.cartID, UserID: 1, TotalAmount: decimal.Zero, Items: []client.CartItem{}}
	for _, it := range s.lines {
		cart.Items = append(cart.Items, it)
		cart.TotalQuantity += it.Quantity
		cart.TotalAmount = cart.TotalAmount.Add(it.LineTotal())
	}
	return cart
}

func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
