package mallclient

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestUploadFile(t *testing.T) {
	var seen struct {
		filename string
		content  string
		category string
	}
	r := mux.NewRouter()
	r.HandleFunc("/upload", func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not multipart: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, header, err := req.FormFile("file")
		if err != nil {
			t.Errorf("file field missing: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		raw, _ := io.ReadAll(file)
		seen.filename = header.Filename
		seen.content = string(raw)
		seen.category = req.FormValue("category")

		writeEnvelope(w, 200, "", map[string]any{
			"url":      "/static/uploads/logo.png",
			"filename": header.Filename,
		})
	}).Methods(http.MethodPost)

	client := newTestClient(t, r)
	seedShopper(t, client)

	result, err := client.UploadFile(context.Background(), "logo.png",
		strings.NewReader("png bytes"), map[string]string{"category": "shop-logo"})
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}

	if seen.filename != "logo.png" || seen.content != "png bytes" || seen.category != "shop-logo" {
		t.Fatalf("server saw %+v", seen)
	}
	if result.URL != "/static/uploads/logo.png" {
		t.Fatalf("result = %+v", result)
	}
}

func TestUploadFileRejection(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/upload", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, 500, "file too large", nil)
	}).Methods(http.MethodPost)

	client := newTestClient(t, r)
	seedShopper(t, client)

	if _, err := client.UploadFile(context.Background(), "big.bin",
		strings.NewReader("x"), nil); err == nil {
		t.Fatal("expected rejection error")
	}
}
