package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mdrcore/internal/db/memory"
	"github.com/kailas-cloud/mdrcore/internal/domain/codelist"
	"github.com/kailas-cloud/mdrcore/internal/domain/ctterm"
	"github.com/kailas-cloud/mdrcore/internal/domain/epoch"
	"github.com/kailas-cloud/mdrcore/internal/domain/naming"
	counterrepo "github.com/kailas-cloud/mdrcore/internal/repository/counter"
	libraryrepo "github.com/kailas-cloud/mdrcore/internal/repository/library"
	healthuc "github.com/kailas-cloud/mdrcore/internal/usecase/health"
	libraryuc "github.com/kailas-cloud/mdrcore/internal/usecase/library"
)

const testPrefix = "test:"

// tickClock advances one minute per call so snapshots never share a start date.
type tickClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

// mockHealth returns a fixed report.
type mockHealth struct {
	report healthuc.Report
}

func (m mockHealth) Check(context.Context) healthuc.Report { return m.report }

func newTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()

	store := memory.NewStore()
	t.Cleanup(store.Close)
	clock := &tickClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	counters := counterrepo.New(store, testPrefix)

	terms := libraryuc.New[ctterm.Term](ctterm.Kind, "term_uid",
		libraryrepo.New[ctterm.Term](store, libraryrepo.TermCodec{}, ctterm.Kind, testPrefix),
		naming.NewSequence(counters, ctterm.UIDPrefix)).WithClock(clock.now)
	codelists := libraryuc.New[codelist.Codelist](codelist.Kind, "codelist_uid",
		libraryrepo.New[codelist.Codelist](store, libraryrepo.CodelistCodec{}, codelist.Kind, testPrefix),
		naming.NewSequence(counters, codelist.UIDPrefix)).WithClock(clock.now)
	epochs := libraryuc.New[epoch.Epoch](epoch.Kind, "uid",
		libraryrepo.New[epoch.Epoch](store, libraryrepo.EpochCodec{}, epoch.Kind, testPrefix),
		naming.NewSequence(counters, epoch.UIDPrefix)).WithClock(clock.now)

	return NewRouter(zap.NewNop(), healthuc.New(time.Second).WithCheck("storage", store), opts,
		Resource[ctterm.Term]("/ct/terms", terms, TermKind()),
		Resource[codelist.Codelist]("/ct/codelists", codelists, CodelistKind(clock.now)),
		Resource[epoch.Epoch]("/studies/{study_uid}/study-epochs", epochs, EpochKind()),
	)
}

// call performs one request and returns the recorder.
func call(t *testing.T, h http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rr.Code, want, rr.Body.String())
	}
}

func withQuery(path string, kv ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	return path + "?" + q.Encode()
}

func codelistBody(name, submission string) map[string]any {
	return map[string]any{
		"catalogue_name":   "SDTM CT",
		"name":             name,
		"submission_value": submission,
		"library_name":     "CDISC",
		"synonyms":         []string{name},
	}
}

func createCodelist(t *testing.T, h http.Handler, name, submission string) string {
	t.Helper()
	rr := call(t, h, http.MethodPost, "/ct/codelists", codelistBody(name, submission), AuthorHeader, "alice")
	expectStatus(t, rr, http.StatusCreated)
	uid, _ := decode[map[string]any](t, rr)["codelist_uid"].(string)
	return uid
}
