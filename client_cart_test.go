package mallclient

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

func cartBackend(t *testing.T, failIDs map[int64]bool) (*mux.Router, *map[int64]bool) {
	t.Helper()

	var mu sync.Mutex
	updated := map[int64]bool{}

	r := mux.NewRouter()
	r.HandleFunc("/cart-service/cart", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, 200, "", []map[string]any{
			{"productId": 1, "productName": "tea", "price": 12.5, "quantity": 2, "selected": false},
			{"productId": 2, "productName": "cups", "price": 30, "quantity": 1, "selected": false},
			{"productId": 3, "productName": "tray", "price": 55, "quantity": 1, "selected": true},
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/cart-service/cart/select/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
		if failIDs[id] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		selected := req.URL.Query().Get("selected") == "true"
		mu.Lock()
		updated[id] = selected
		mu.Unlock()
		writeEnvelope(w, 200, "", nil)
	}).Methods(http.MethodPut)

	return r, &updated
}

func TestCartItems(t *testing.T) {
	r, _ := cartBackend(t, nil)
	client := newTestClient(t, r)
	seedShopper(t, client)

	items, err := client.CartItems(context.Background())
	if err != nil {
		t.Fatalf("CartItems failed: %v", err)
	}
	if len(items) != 3 || items[0].ProductID != 1 || items[2].Selected != true {
		t.Fatalf("items = %+v", items)
	}
}

func TestUpdateCartSelected(t *testing.T) {
	r, updated := cartBackend(t, nil)
	client := newTestClient(t, r)
	seedShopper(t, client)

	if err := client.UpdateCartSelected(context.Background(), 2, true); err != nil {
		t.Fatalf("UpdateCartSelected failed: %v", err)
	}
	if sel, ok := (*updated)[2]; !ok || !sel {
		t.Fatalf("server saw %v", *updated)
	}
}

func TestSelectAllCartItems(t *testing.T) {
	r, updated := cartBackend(t, nil)
	client := newTestClient(t, r)
	seedShopper(t, client)

	result, err := client.SelectAllCartItems(context.Background(), true)
	if err != nil {
		t.Fatalf("SelectAllCartItems failed: %v", err)
	}
	if !result.AllSucceeded() || result.Total != 3 || result.Succeeded != 3 {
		t.Fatalf("result = %+v", result)
	}
	if len(*updated) != 3 {
		t.Fatalf("server saw %d updates", len(*updated))
	}
}

func TestSelectAllCartItemsPartialFailure(t *testing.T) {
	r, updated := cartBackend(t, map[int64]bool{2: true})
	client := newTestClient(t, r)
	seedShopper(t, client)

	result, err := client.SelectAllCartItems(context.Background(), true)
	if err != nil {
		t.Fatalf("listing should not fail: %v", err)
	}

	if result.Total != 3 || result.Succeeded != 2 || len(result.Failures) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if result.Failures[0].ProductID != 2 || result.Failures[0].Err == nil {
		t.Fatalf("failure = %+v", result.Failures[0])
	}
	if result.AllSucceeded() {
		t.Fatal("partial failure reported as full success")
	}
	// The survivors still landed.
	if len(*updated) != 2 {
		t.Fatalf("server saw %d updates, want 2", len(*updated))
	}
}

func TestSelectAllCartItemsListingFailure(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/cart-service/cart", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, 500, "cart unavailable", nil)
	}).Methods(http.MethodGet)

	client := newTestClient(t, r)
	seedShopper(t, client)

	if _, err := client.SelectAllCartItems(context.Background(), true); err == nil {
		t.Fatal("expected listing error")
	}
}
