package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mdrcore/internal/domain/history"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/fields"
	"github.com/kailas-cloud/mdrcore/internal/export"
	"github.com/kailas-cloud/mdrcore/internal/logger"
	libraryuc "github.com/kailas-cloud/mdrcore/internal/usecase/library"
)

// maxBodyBytes bounds create and patch payloads.
const maxBodyBytes = 1 << 20

// Kind describes how one item type is read from requests.
type Kind[T any] struct {
	// Decode builds a new item from a create payload.
	Decode func(r *http.Request, body []byte) (T, error)
	// Patch applies a partial update payload to the current item.
	Patch func(cur T, body []byte) (T, error)
	// Scope restricts every route to a subset of items; nil serves all.
	Scope func(r *http.Request) libraryuc.Scope[T]
}

// Mount attaches routes to a router.
type Mount func(r chi.Router, log *zap.Logger)

// Resource serves the items of svc under pattern.
func Resource[T libraryuc.Entity[T]](pattern string, svc ItemService[T], kind Kind[T]) Mount {
	return func(r chi.Router, log *zap.Logger) {
		res := &resource[T]{svc: svc, kind: kind, log: log}
		r.Route(pattern, res.routes)
	}
}

type resource[T libraryuc.Entity[T]] struct {
	svc  ItemService[T]
	kind Kind[T]
	log  *zap.Logger
}

// changeNote is the part of every write payload that describes the change.
type changeNote struct {
	ChangeDescription string `json:"change_description"`
}

// pageResponse is the JSON form of one result page.
type pageResponse struct {
	Items []map[string]any `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

func (res *resource[T]) routes(r chi.Router) {
	r.Get("/", res.list)
	r.Post("/", res.create)
	r.Get("/headers", res.headers)
	r.Get("/audit-trail", res.auditTrail)
	r.Get("/export", res.export)
	r.Route("/{uid}", func(r chi.Router) {
		r.Get("/", res.get)
		r.Patch("/", res.patch)
		r.Delete("/", res.delete)
		r.Get("/versions", res.versions)
		r.Post("/versions", res.newVersion)
		r.Post("/approvals", res.approve)
		r.Post("/activations", res.reactivate)
		r.Delete("/activations", res.inactivate)
	})
}

func (res *resource[T]) scope(r *http.Request) libraryuc.Scope[T] {
	if res.kind.Scope == nil {
		return nil
	}
	return res.kind.Scope(r)
}

// context tags the request logger with the item kind and uid.
func (res *resource[T]) context(r *http.Request) context.Context {
	ctx := logger.With(r.Context(), zap.String("kind", res.svc.Kind()))
	if uid := chi.URLParam(r, "uid"); uid != "" {
		ctx = logger.With(ctx, zap.String("uid", uid))
	}
	return libraryuc.ExpectVersion(ctx, expectedVersion(r))
}

func (res *resource[T]) fail(w http.ResponseWriter, r *http.Request, err error) {
	handleDomainError(logger.FromContext(res.context(r)), w, err)
}

// list handles GET /.
func (res *resource[T]) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, err := listRequest(q, res.svc.DefaultPageSize())
	if err != nil {
		res.fail(w, r, err)
		return
	}
	p, err := res.svc.List(res.context(r), req, res.scope(r))
	if err != nil {
		res.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Items: fields.ApplyAll(p.Items, fieldsParam(q)),
		Total: p.Total,
		Page:  p.Number,
		Size:  p.Size,
	})
}

// create handles POST /.
func (res *resource[T]) create(w http.ResponseWriter, r *http.Request) {
	body, note, ok := res.readBody(w, r)
	if !ok {
		return
	}
	item, err := res.kind.Decode(r, body)
	if err != nil {
		res.fail(w, r, err)
		return
	}
	created, err := res.svc.Create(res.context(r), item, authorFrom(r), note.ChangeDescription)
	if err != nil {
		res.fail(w, r, err)
		return
	}
	res.writeItem(w, r, http.StatusCreated, created)
}

// headers handles GET /headers.
func (res *resource[T]) headers(w http.ResponseWriter, r *http.Request) {
	req, err := headerRequest(r.URL.Query())
	if err != nil {
		res.fail(w, r, err)
		return
	}
	vals, err := res.svc.Headers(res.context(r), req, res.scope(r))
	if err != nil {
		res.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vals)
}

// auditTrail handles GET /audit-trail.
func (res *resource[T]) auditTrail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, err := listRequest(q, res.svc.DefaultPageSize())
	if err != nil {
		res.fail(w, r, err)
		return
	}
	p, err := res.svc.AuditTrail(res.context(r), req, res.scope(r))
	if err != nil {
		res.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Items: fields.ApplyAll(p.Items, fieldsParam(q)),
		Total: p.Total,
		Page:  p.Number,
		Size:  p.Size,
	})
}

// export handles GET /export. Without page_size every matching item is exported.
func (res *resource[T]) export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		res.fail(w, r, err)
		return
	}
	req, err := listRequest(q, 0)
	if err != nil {
		res.fail(w, r, err)
		return
	}
	p, err := res.svc.List(res.context(r), req, res.scope(r))
	if err != nil {
		res.fail(w, r, err)
		return
	}

	kind := res.svc.Kind()
	table := export.NewTable(kind, p.Items, export.Columns(p.Items, fieldsParam(q)))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, kind, format.Extension()))
	if err := export.Write(w, format, table); err != nil {
		// Headers are already sent; the client sees a truncated file.
		logger.FromContext(res.context(r)).Error("export failed", zap.Error(err))
	}
}

// get handles GET /{uid}.
func (res *resource[T]) get(w http.ResponseWriter, r *http.Request) {
	item, err := res.svc.Get(res.context(r), chi.URLParam(r, "uid"), res.scope(r))
	if err != nil {
		res.fail(w, r, err)
		return
	}
	res.writeItem(w, r, http.StatusOK, item)
}

// patch handles PATCH /{uid}. An If-Match header guards against lost updates.
func (res *resource[T]) patch(w http.ResponseWriter, r *http.Request) {
	body, note, ok := res.readBody(w, r)
	if !ok {
		return
	}
	item, err := res.svc.Edit(res.context(r), chi.URLParam(r, "uid"), res.scope(r),
		authorFrom(r), note.ChangeDescription,
		func(cur T) (T, error) { return res.kind.Patch(cur, body) })
	if err != nil {
		res.fail(w, r, err)
		return
	}
	res.writeItem(w, r, http.StatusOK, item)
}

// delete handles DELETE /{uid}.
func (res *resource[T]) delete(w http.ResponseWriter, r *http.Request) {
	if err := res.svc.Delete(res.context(r), chi.URLParam(r, "uid"), res.scope(r)); err != nil {
		res.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// versions handles GET /{uid}/versions.
func (res *resource[T]) versions(w http.ResponseWriter, r *http.Request) {
	recs, err := res.svc.Versions(res.context(r), chi.URLParam(r, "uid"), res.scope(r))
	if err != nil {
		res.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fields.ApplyAll[history.VersionRecord[T]](recs, fieldsParam(r.URL.Query())))
}

// newVersion handles POST /{uid}/versions.
func (res *resource[T]) newVersion(w http.ResponseWriter, r *http.Request) {
	_, note, ok := res.readBody(w, r)
	if !ok {
		return
	}
	res.respond(w, r)(res.svc.NewVersion(res.context(r), chi.URLParam(r, "uid"), res.scope(r),
		authorFrom(r), note.ChangeDescription))
}

// approve handles POST /{uid}/approvals.
func (res *resource[T]) approve(w http.ResponseWriter, r *http.Request) {
	res.respond(w, r)(res.svc.Approve(res.context(r), chi.URLParam(r, "uid"), res.scope(r), authorFrom(r)))
}

// reactivate handles POST /{uid}/activations.
func (res *resource[T]) reactivate(w http.ResponseWriter, r *http.Request) {
	res.respond(w, r)(res.svc.Reactivate(res.context(r), chi.URLParam(r, "uid"), res.scope(r), authorFrom(r)))
}

// inactivate handles DELETE /{uid}/activations.
func (res *resource[T]) inactivate(w http.ResponseWriter, r *http.Request) {
	res.respond(w, r)(res.svc.Inactivate(res.context(r), chi.URLParam(r, "uid"), res.scope(r), authorFrom(r)))
}

// respond writes the outcome of a lifecycle action.
func (res *resource[T]) respond(w http.ResponseWriter, r *http.Request) func(T, error) {
	return func(item T, err error) {
		if err != nil {
			res.fail(w, r, err)
			return
		}
		res.writeItem(w, r, http.StatusOK, item)
	}
}

func (res *resource[T]) writeItem(w http.ResponseWriter, r *http.Request, status int, item T) {
	w.Header().Set("ETag", `"`+item.Meta().Version.String()+`"`)
	writeJSON(w, status, fields.Apply(item, fieldsParam(r.URL.Query())))
}

// readBody reads a write payload. An empty body is an empty object.
func (res *resource[T]) readBody(w http.ResponseWriter, r *http.Request) ([]byte, changeNote, bool) {
	var note changeNote
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body: "+err.Error())
		return nil, note, false
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, &note); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body: "+err.Error())
		return nil, note, false
	}
	return body, note, true
}
