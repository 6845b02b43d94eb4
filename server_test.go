package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/weddingcard/card_admin/backend"
	"github.com/weddingcard/card_admin/editorhandoff"
	"github.com/weddingcard/card_admin/session"
	"github.com/weddingcard/card_admin/templateform"
)

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// fakeBackend is the REST backend as the gateway sees it. Every request is
// recorded as "METHOD /path".
type fakeBackend struct {
	mu       sync.Mutex
	requests []string
	reject   bool
	saved    map[string]any
}

func (f *fakeBackend) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
}

func (f *fakeBackend) mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		if !strings.HasPrefix(r, http.MethodGet+" ") {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeBackend) setReject(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reject = v
}

func (f *fakeBackend) rejecting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reject
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == backend.PathLogin {
		exp := time.Now().Add(time.Hour).Unix()
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{ExpiresAt: exp}).SignedString([]byte("test"))
		json.NewEncoder(w).Encode(map[string]any{
			"token": tok,
			"user":  map[string]any{"email": "admin@example.com", "role": "ADMIN"},
		})
		return
	}
	if f.rejecting() {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"jwt expired"}`)
		return
	}

	switch r.Method + " " + r.URL.Path {
	case "GET /api/all/parent-category":
		io.WriteString(w, `{"data":[{"_id":"p1","name":"Wedding"}]}`)
	case "GET /api/all/category":
		io.WriteString(w, `{"data":[{"_id":"c1","name":"Hindu","parentCategory":"p1"},{"_id":"c2","name":"Orphan","parentCategory":"gone"}]}`)
	case "GET /api/all/sub-category":
		io.WriteString(w, `{"data":[{"_id":"s1","name":"Haldi","category":"c1"}]}`)
	case "GET /api/all/type":
		io.WriteString(w, `{"data":[]}`)
	case "GET /api/template/t1":
		io.WriteString(w, `{"data":{"_id":"t1","name":"Marigold","desc":"Haldi invite","type":"ty1","colors":[
			{"color":"red","hex":"#FF0000","templateImages":["https://cdn.example.com/red.png"],"initialDetail":{"v":1}},
			{"color":"gold","hex":"#FFD700","templateImages":"https://cdn.example.com/gold.png"}]}}`)
	case "GET /api/inquiry":
		io.WriteString(w, `{"data":[{"_id":"i1","name":"Asha"},{"_id":"i2","name":"Ravi"}]}`)
	case "DELETE /api/inquiry/i1":
		w.WriteHeader(http.StatusNoContent)
	case "GET /api/product":
		io.WriteString(w, `{"data":[
			{"_id":"pr1","title":"Silk Saree","category":{"_id":"c1","name":"Hindu"},"price":{"orignal_price":"2,000","discounted_price":1500},"stock":"7",
			 "color_options":[{"color":"red","hex":"#FF0000","product_images":["https://cdn.example.com/saree.png"],
			   "size_options":[{"size":"M","stock":"3"}],"price":{"original_price":1800,"discounted_price":1200}}]},
			{"_id":"pr2","title":"Sherwani","category":"c2","price":{"original_price":5000,"discounted_price":4500},"stock":2,"color_options":[]}]}`)
	case "GET /api/product/pr1":
		io.WriteString(w, `{"data":{"_id":"pr1","title":"Silk Saree","instruction":["Dry clean only"],"other_info":[{"title":"Fabric","description":"Silk"}]}}`)
	case "POST /api/product":
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.saved = body
		f.mu.Unlock()
		body["_id"] = "pr9"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"data": body})
	case "DELETE /api/product/pr1":
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"not found"}`)
	}
}

type testApp struct {
	router  *gin.Engine
	server  *server
	backend *fakeBackend
}

func newTestApp(t *testing.T, attach bool) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := &fakeBackend{}
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s := newServer(backend.NewClientWithHTTP(ts.URL, ts.Client()), logger)
	if attach {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
		s.attach(session.NewManager(rdb, 24*time.Hour), editorhandoff.NewMemoryStore(), templateform.NewMemoryPreviewStore(), nil)
	}
	return &testApp{router: newRouter(s, nil), server: s, backend: fake}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "admin@example.com", "password": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	decode(t, w, &resp)
	if resp.Token == "" || resp.Role != "ADMIN" {
		t.Fatalf("unexpected login reply %s", w.Body.String())
	}
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

type formReply struct {
	Form struct {
		TemplateID string `json:"templateId"`
		Colors     []struct {
			Color         string          `json:"color"`
			InitialDetail json.RawMessage `json:"initialDetail"`
		} `json:"colors"`
	} `json:"form"`
	Images [][]string          `json:"images"`
	Phase  editorhandoff.Phase `json:"phase"`
}

func TestReadinessGate(t *testing.T) {
	app := newTestApp(t, false)

	if w := app.do(t, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusNoContent {
		t.Fatalf("healthz: expected 204, got %d", w.Code)
	}
	if w := app.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "admin@example.com", "password": "secret"}); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before attach, got %d", w.Code)
	}
	if len(app.backend.requests) != 0 {
		t.Fatalf("backend was called before the gateway was ready: %v", app.backend.requests)
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	app := newTestApp(t, true)

	w := app.do(t, http.MethodGet, "/api/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["login"] != "/login" {
		t.Fatalf("401 should point at the login screen, got %v", resp)
	}

	token := app.login(t)
	w = app.do(t, http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "admin@example.com") {
		t.Fatalf("me: got %d %s", w.Code, w.Body.String())
	}

	if w := app.do(t, http.MethodPost, "/api/logout", token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", w.Code)
	}
	if w := app.do(t, http.MethodGet, "/api/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("token should be dead after logout, got %d", w.Code)
	}
}

func TestBrokenChainIsRejectedBeforeAnyWrite(t *testing.T) {
	app := newTestApp(t, true)
	token := app.login(t)

	w := app.do(t, http.MethodPost, "/api/subcategories", token, map[string]string{"categoryId": "c2", "name": "Mehendi"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["level"] != "parent category" {
		t.Fatalf("expected the parent category to be reported missing, got %v", resp)
	}
	for _, m := range app.backend.mutations() {
		if m != "POST "+backend.PathLogin {
			t.Fatalf("unexpected backend write %q", m)
		}
	}

	w = app.do(t, http.MethodGet, "/api/taxonomy/resolve?level=subcategory&id=s1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("resolve: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resolved struct {
		IDs []string `json:"ids"`
		URL string   `json:"url"`
	}
	decode(t, w, &resolved)
	if strings.Join(resolved.IDs, "/") != "p1/c1/s1" {
		t.Fatalf("unexpected chain %v", resolved.IDs)
	}
	if resolved.URL != "/api/parent-category/p1/category/c1/sub-category/s1" {
		t.Fatalf("unexpected url %q", resolved.URL)
	}
}

func TestEditorRoundTrip(t *testing.T) {
	app := newTestApp(t, true)
	token := app.login(t)

	w := app.do(t, http.MethodPost, "/api/template-form/load/t1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("load: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var loaded formReply
	decode(t, w, &loaded)
	if loaded.Form.TemplateID != "t1" || len(loaded.Form.Colors) != 2 {
		t.Fatalf("unexpected form %s", w.Body.String())
	}

	w = app.do(t, http.MethodPost, "/api/template-form/colors/0/edit", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("begin: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var begun struct {
		Token         editorhandoff.EditToken `json:"token"`
		EditorData    json.RawMessage         `json:"editorData"`
		TemplateImage string                  `json:"templateImage"`
	}
	decode(t, w, &begun)
	if string(begun.EditorData) != `{"v":1}` || begun.TemplateImage != "https://cdn.example.com/red.png" {
		t.Fatalf("unexpected bundle %s", w.Body.String())
	}

	w = app.do(t, http.MethodPost, "/api/editor/enter", token, map[string]any{"token": begun.Token})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"design":{"v":1}`) {
		t.Fatalf("enter: got %d %s", w.Code, w.Body.String())
	}

	w = app.do(t, http.MethodPost, "/api/editor/save", token, map[string]any{
		"token":    begun.Token,
		"document": json.RawMessage(`{"v":2}`),
		"image":    pixel,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = app.do(t, http.MethodPost, "/api/editor/return", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("return: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var returned formReply
	decode(t, w, &returned)
	if returned.Phase != editorhandoff.PhaseIdle {
		t.Fatalf("expected idle after return, got %q", returned.Phase)
	}
	if string(returned.Form.Colors[0].InitialDetail) != `{"v":2}` || returned.Images[0][0] != pixel {
		t.Fatalf("design was not written back into color 0: %s", w.Body.String())
	}
	if returned.Form.Colors[1].Color != "gold" || len(returned.Form.Colors[1].InitialDetail) != 0 {
		t.Fatalf("color 1 changed: %s", w.Body.String())
	}
}

func TestStaleEditTokenIsRejected(t *testing.T) {
	app := newTestApp(t, true)
	token := app.login(t)

	if w := app.do(t, http.MethodPost, "/api/template-form/load/t1", token, nil); w.Code != http.StatusOK {
		t.Fatalf("load: got %d", w.Code)
	}
	var first, second struct {
		Token editorhandoff.EditToken `json:"token"`
	}
	decode(t, app.do(t, http.MethodPost, "/api/template-form/colors/0/edit", token, nil), &first)
	decode(t, app.do(t, http.MethodPost, "/api/template-form/colors/1/edit", token, nil), &second)

	w := app.do(t, http.MethodPost, "/api/editor/save", token, map[string]any{
		"token":    first.Token,
		"document": json.RawMessage(`{"v":9}`),
		"image":    pixel,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a superseded token, got %d: %s", w.Code, w.Body.String())
	}

	var form struct {
		Data formReply `json:"data"`
	}
	decode(t, app.do(t, http.MethodGet, "/api/template-form", token, nil), &form)
	if string(form.Data.Form.Colors[0].InitialDetail) != `{"v":1}` {
		t.Fatalf("stale save must not touch the form: %+v", form.Data.Form.Colors[0])
	}
}

func TestUpstreamUnauthorizedEndsSession(t *testing.T) {
	app := newTestApp(t, true)
	token := app.login(t)

	app.backend.setReject(true)
	w := app.do(t, http.MethodGet, "/api/inquiries", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["error"] != "jwt expired" || resp["login"] != "/login" {
		t.Fatalf("unexpected reply %v", resp)
	}

	app.backend.setReject(false)
	if w := app.do(t, http.MethodGet, "/api/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("session should be gone after the backend rejected it, got %d", w.Code)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	app := newTestApp(t, true)
	token := app.login(t)

	w := app.do(t, http.MethodDelete, "/api/inquiries/i1", token, nil)
	if w.Code != http.StatusPreconditionRequired {
		t.Fatalf("expected 428, got %d", w.Code)
	}
	for _, m := range app.backend.mutations() {
		if strings.HasPrefix(m, http.MethodDelete) {
			t.Fatalf("unconfirmed delete reached the backend: %q", m)
		}
	}

	w = app.do(t, http.MethodDelete, "/api/inquiries/i1?confirm=true", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("confirmed delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data []struct {
			ID string `json:"_id"`
		} `json:"data"`
	}
	decode(t, w, &resp)
	if len(resp.Data) != 1 || resp.Data[0].ID != "i2" {
		t.Fatalf("deleted inquiry still listed: %s", w.Body.String())
	}
}

func TestProductList(t *testing.T) {
	app := newTestApp(t, true)
	token := app.login(t)

	w := app.do(t, http.MethodGet, "/api/products?q=saree", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data []struct {
			ID        string `json:"_id"`
			Cover     string `json:"cover"`
			ListPrice float64 `json:"listPrice"`
			ListStock int     `json:"listStock"`
			Price     struct {
				Original float64 `json:"orignal_price"`
			} `json:"price"`
		} `json:"data"`
	}
	decode(t, w, &resp)
	if len(resp.Data) != 1 || resp.Data[0].ID != "pr1" {
		t.Fatalf("search did not filter by title: %s", w.Body.String())
	}
	row := resp.Data[0]
	if row.Cover != "https://cdn.example.com/saree.png" || row.ListPrice != 1200 || row.ListStock != 3 || row.Price.Original != 2000 {
		t.Fatalf("unexpected row %+v", row)
	}

	w = app.do(t, http.MethodGet, "/api/products?category=Hindu", token, nil)
	decode(t, w, &resp)
	if len(resp.Data) != 1 || resp.Data[0].ID != "pr1" {
		t.Fatalf("category filter: %s", w.Body.String())
	}

	w = app.do(t, http.MethodGet, "/api/products/pr1", token, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Dry clean only") {
		t.Fatalf("get product: %d %s", w.Code, w.Body.String())
	}
}

func TestProductSave(t *testing.T) {
	app := newTestApp(t, true)
	token := app.login(t)

	input := map[string]any{
		"title":       " Lehenga ",
		"description": "Bridal lehenga",
		"category":    "c1",
		"gender":      "female",
		"price":       map[string]any{"orignal_price": "₹3,000", "discounted_price": "2500"},
		"color_options": []map[string]any{
			{"color": "gold", "product_images": []string{"https://cdn.example.com/l.png"}},
			{"hex": "#000080", "product_images": []string{}},
		},
		"size_options": []map[string]any{{"size": "S", "stock": "4"}},
		"other_info":   []map[string]any{{"title": "Fabric", "description": "Net"}},
		"instruction":  []string{"Hand wash", "  "},
		"stock":        "10",
	}
	w := app.do(t, http.MethodPost, "/api/products", token, input)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	app.backend.mu.Lock()
	saved := app.backend.saved
	app.backend.mu.Unlock()
	if saved["title"] != "Lehenga" {
		t.Fatalf("title not trimmed: %v", saved["title"])
	}
	colors := saved["color_options"].([]any)
	gold := colors[0].(map[string]any)
	navy := colors[1].(map[string]any)
	if gold["hex"] != "#FFD700" || navy["color"] != "navy" {
		t.Fatalf("colors not completed from the dictionary: %v", colors)
	}
	price := saved["price"].(map[string]any)
	if price["orignal_price"] != 3000.0 || price["discounted_price"] != 2500.0 {
		t.Fatalf("unexpected price %v", price)
	}
	if inst := saved["instruction"].([]any); len(inst) != 1 || saved["stock"] != 10.0 {
		t.Fatalf("unexpected payload %v", saved)
	}

	cases := []struct {
		name  string
		patch map[string]any
		code  int
	}{
		{"missing title", map[string]any{"title": ""}, http.StatusUnprocessableEntity},
		{"local image", map[string]any{"color_options": []map[string]any{{"color": "red", "product_images": []string{"blob:http://localhost/abc"}}}}, http.StatusUnprocessableEntity},
		{"discount above original", map[string]any{"price": map[string]any{"orignal_price": 100, "discounted_price": 200}}, http.StatusBadRequest},
		{"unknown gender", map[string]any{"gender": "other"}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		body := map[string]any{}
		for k, v := range input {
			body[k] = v
		}
		for k, v := range tc.patch {
			body[k] = v
		}
		if w := app.do(t, http.MethodPost, "/api/products", token, body); w.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.code, w.Code, w.Body.String())
		}
	}
}

func TestProductDeleteRequiresConfirmation(t *testing.T) {
	app := newTestApp(t, true)
	token := app.login(t)

	if w := app.do(t, http.MethodDelete, "/api/products/pr1", token, nil); w.Code != http.StatusPreconditionRequired {
		t.Fatalf("expected 428, got %d", w.Code)
	}
	for _, m := range app.backend.mutations() {
		if strings.HasPrefix(m, http.MethodDelete) {
			t.Fatalf("unconfirmed delete reached the backend: %q", m)
		}
	}
	if w := app.do(t, http.MethodDelete, "/api/products/pr1?confirm=true", token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
}
