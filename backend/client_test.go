package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/weddingcard/card_admin/models"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   string
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization"), body: string(body)})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClientWithHTTP(srv.URL+"/", srv.Client()), &calls
}

func TestLoginDecodesBareReply(t *testing.T) {
	client, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"jwt-1","user":{"email":"a@example.com","role":"ADMIN"}}`))
	})

	info, err := client.Login(context.Background(), models.LoginInput{Email: "a@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if info.Token != "jwt-1" || !info.User.IsAdmin() {
		t.Fatalf("unexpected login info %+v", info)
	}
	got := (*calls)[0]
	if got.method != http.MethodPost || got.path != PathLogin || got.auth != "" {
		t.Fatalf("unexpected request %+v", got)
	}
	var sent models.LoginInput
	if err := json.Unmarshal([]byte(got.body), &sent); err != nil || sent.Email != "a@example.com" {
		t.Fatalf("unexpected login body %q", got.body)
	}
}

func TestListUnwrapsDataEnvelope(t *testing.T) {
	client, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathAllCategories:
			w.Write([]byte(`{"data":[{"_id":"c1","name":"Diwali","parentCategory":"p1"}]}`))
		case PathOrders:
			w.Write([]byte(`[{"_id":"o1","price":"250.00","status":"placed"}]`))
		}
	})
	client = client.WithToken("upstream")

	categories, err := client.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != "c1" || categories[0].ParentCategory == nil || categories[0].ParentCategory.ID != "p1" {
		t.Fatalf("unexpected categories %+v", categories)
	}

	orders, err := client.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].Price.StringFixed(2) != "250.00" {
		t.Fatalf("unexpected orders %+v", orders)
	}
	for _, c := range *calls {
		if c.auth != "Bearer upstream" {
			t.Fatalf("expected bearer token on %s, got %q", c.path, c.auth)
		}
	}
}

func TestErrorsCarryBackendMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Cannot delete category with existing sub categories"}`, "Cannot delete category with existing sub categories"},
		{"error field", http.StatusConflict, `{"error":"duplicate name"}`, "duplicate name"},
		{"plain text", http.StatusInternalServerError, `boom`, "boom"},
		{"html page", http.StatusBadGateway, `<html>bad gateway</html>`, "backend returned 502 Bad Gateway"},
		{"unauthorized", http.StatusUnauthorized, `{"message":"jwt expired"}`, "jwt expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			err := client.Delete(context.Background(), "/api/parent-category/p1/category/c1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T %v", err, err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.message {
				t.Fatalf("expected %d %q, got %d %q", tt.status, tt.message, apiErr.Status, apiErr.Message)
			}
			if IsUnauthorized(err) != (tt.status == http.StatusUnauthorized) {
				t.Fatalf("IsUnauthorized mismatch for %d", tt.status)
			}
		})
	}
}

func TestSubmitTemplateMethod(t *testing.T) {
	client, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"_id":"t1","name":"Royal"}}`))
	})

	if _, err := client.SubmitTemplate(context.Background(), "", "multipart/form-data; boundary=x", []byte("--x--")); err != nil {
		t.Fatalf("create: %v", err)
	}
	tpl, err := client.SubmitTemplate(context.Background(), "t1", "multipart/form-data; boundary=x", []byte("--x--"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if tpl.ID != "t1" {
		t.Fatalf("unexpected template %+v", tpl)
	}
	if (*calls)[0].method != http.MethodPost || (*calls)[0].path != PathTemplates {
		t.Fatalf("create should POST the collection, got %+v", (*calls)[0])
	}
	if (*calls)[1].method != http.MethodPut || (*calls)[1].path != PathTemplates+"/t1" {
		t.Fatalf("update should PUT the item, got %+v", (*calls)[1])
	}
}
