package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/ansuz/internal/candidates"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/nodeservice"
	"github.com/starford/ansuz/internal/testutil"
)

func testServer(t *testing.T, authEnabled bool, token string) *httptest.Server {
	t.Helper()
	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)

	tmpls := map[string]candidates.Template{
		"titles": {Fields: []candidates.Field{{Name: "title", Width: 15}}},
	}
	svc := nodeservice.NewService(store, db, tmpls, "mtime")
	srv := httptest.NewServer(NewRouter(svc, authEnabled, token, nil))
	t.Cleanup(srv.Close)
	return srv
}

func createNote(t *testing.T, srv *httptest.Server, path, content string) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"path": path, "content": content})
	resp, err := http.Post(srv.URL+"/notes", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create %s: status %d", path, resp.StatusCode)
	}
}

const alphaNote = "---\nid: node-alpha\ntitle: Alpha\naliases: [The First]\ntags: [project]\n---\n\nBody.\n"
const betaNote = "---\nid: node-beta\ntitle: Beta\n---\n\nBody.\n"

func TestAuth(t *testing.T) {
	srv := testServer(t, true, "secret")

	resp, err := http.Get(srv.URL + "/candidates")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/candidates", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token: status %d", resp.StatusCode)
	}

	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("good token: status %d", resp.StatusCode)
	}
}

func TestListCandidates(t *testing.T) {
	srv := testServer(t, false, "")
	createNote(t, srv, "alpha.md", alphaNote)
	createNote(t, srv, "beta.md", betaNote)

	resp, err := http.Get(srv.URL + "/candidates")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var out struct {
		Candidates []models.Candidate `json:"candidates"`
		Total      int                `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	// alpha expands into two title variants, beta into one.
	if out.Total != 3 {
		t.Fatalf("total = %d, candidates = %+v", out.Total, out.Candidates)
	}
	seen := map[string]bool{}
	for _, c := range out.Candidates {
		seen[c.Node.Title] = true
		if len(c.Spans) == 0 {
			t.Errorf("candidate %q has no spans", c.Label)
		}
	}
	for _, want := range []string{"Alpha", "The First", "Beta"} {
		if !seen[want] {
			t.Errorf("missing title variant %q", want)
		}
	}
}

func TestListCandidates_TagFilter(t *testing.T) {
	srv := testServer(t, false, "")
	createNote(t, srv, "alpha.md", alphaNote)
	createNote(t, srv, "beta.md", betaNote)

	resp, err := http.Get(srv.URL + "/candidates?tag=project&template=titles")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out struct {
		Candidates []models.Candidate `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	for _, c := range out.Candidates {
		if c.Node.ID != "node-alpha" {
			t.Errorf("unexpected candidate %+v", c.Node)
		}
		if len(c.Label) != 15 {
			t.Errorf("label %q not padded to template width", c.Label)
		}
	}
	if len(out.Candidates) != 2 {
		t.Errorf("expected 2 variants of alpha, got %d", len(out.Candidates))
	}
}

func TestListCandidates_UnknownTemplate(t *testing.T) {
	srv := testServer(t, false, "")
	resp, err := http.Get(srv.URL + "/candidates?template=nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d", resp.StatusCode)
	}
}

func TestGetNode(t *testing.T) {
	srv := testServer(t, false, "")
	createNote(t, srv, "alpha.md", alphaNote)

	resp, err := http.Get(srv.URL + "/nodes/node-alpha")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var n models.Node
	if err := json.NewDecoder(resp.Body).Decode(&n); err != nil {
		t.Fatal(err)
	}
	if n.ID != "node-alpha" || n.File != "alpha.md" {
		t.Errorf("node = %+v", n)
	}

	resp, err = http.Get(srv.URL + "/nodes/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing node: status %d", resp.StatusCode)
	}
}

func TestTemplates(t *testing.T) {
	srv := testServer(t, false, "")
	resp, err := http.Get(srv.URL + "/templates")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out struct {
		Templates []string `json:"templates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Templates) != 2 || out.Templates[0] != "default" {
		t.Errorf("templates = %v", out.Templates)
	}
}

func TestNoteCRUD(t *testing.T) {
	srv := testServer(t, false, "")
	createNote(t, srv, "crud.md", alphaNote)

	// Duplicate create conflicts.
	body, _ := json.Marshal(map[string]string{"path": "crud.md", "content": alphaNote})
	resp, err := http.Post(srv.URL+"/notes", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate create: status %d", resp.StatusCode)
	}

	// Read it back.
	resp, err = http.Get(srv.URL + "/notes/crud.md")
	if err != nil {
		t.Fatal(err)
	}
	var detail nodeservice.NoteDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if detail.Content != alphaNote {
		t.Error("content mismatch")
	}

	// Update with a stale checksum conflicts.
	upd, _ := json.Marshal(map[string]string{"content": betaNote})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/notes/crud.md", bytes.NewReader(upd))
	req.Header.Set("If-Match", `"stale"`)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("stale update: status %d", resp.StatusCode)
	}

	// Update with the current checksum succeeds.
	req, _ = http.NewRequest(http.MethodPut, srv.URL+"/notes/crud.md", bytes.NewReader(upd))
	req.Header.Set("If-Match", detail.Checksum)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("update: status %d", resp.StatusCode)
	}

	// Delete, then confirm gone.
	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/notes/crud.md", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: status %d", resp.StatusCode)
	}
	resp, err = http.Get(srv.URL + "/notes/crud.md")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: status %d", resp.StatusCode)
	}
}

func TestSearch_RequiresQuery(t *testing.T) {
	srv := testServer(t, false, "")
	resp, err := http.Get(srv.URL + "/search")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d", resp.StatusCode)
	}
}

func TestSearch_FindsNodes(t *testing.T) {
	srv := testServer(t, false, "")
	createNote(t, srv, "alpha.md", alphaNote)

	resp, err := http.Get(srv.URL + "/search?q=Alpha")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Results) != 1 || out.Results[0].ID != "node-alpha" {
		t.Errorf("results = %+v", out.Results)
	}
}
