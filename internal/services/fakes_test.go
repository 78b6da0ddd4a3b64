package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/polarisid/smartos-sub000/internal/docfill"
	"github.com/polarisid/smartos-sub000/internal/models"
	"github.com/polarisid/smartos-sub000/internal/repositories"
)

// memRoutes stores routes as JSON so callers never share memory with the store
type memRoutes struct {
	mu     sync.Mutex
	nextID int
	rows   map[int][]byte
	now    time.Time
}

func newMemRoutes() *memRoutes {
	return &memRoutes{rows: map[int][]byte{}, now: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)}
}

func (m *memRoutes) put(r *models.Route) {
	data, _ := json.Marshal(r)
	m.rows[r.ID] = data
}

func (m *memRoutes) load(id int) (*models.Route, bool) {
	data, ok := m.rows[id]
	if !ok {
		return nil, false
	}
	var r models.Route
	_ = json.Unmarshal(data, &r)
	return &r, true
}

func (m *memRoutes) Create(_ context.Context, r *models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt, r.UpdatedAt = m.now, m.now
	m.put(r)
	return nil
}

func (m *memRoutes) Get(_ context.Context, id int) (*models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.load(id)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r, nil
}

func (m *memRoutes) List(_ context.Context, active *bool) ([]*models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Route
	for id := 1; id <= m.nextID; id++ {
		if r, ok := m.load(id); ok && (active == nil || r.Active == *active) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRoutes) Update(_ context.Context, r *models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[r.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.UpdatedAt = m.now.Add(time.Hour)
	m.put(r)
	return nil
}

func (m *memRoutes) SetActive(_ context.Context, id int, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.load(id)
	if !ok {
		return repositories.ErrNotFound
	}
	r.Active = active
	m.put(r)
	return nil
}

func (m *memRoutes) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memOrders struct {
	orders []models.ServiceOrder
}

func (m *memOrders) ListByOrderIDs(_ context.Context, ids []string) ([]models.ServiceOrder, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []models.ServiceOrder
	for _, o := range m.orders {
		if want[o.OrderID] {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) LatestSince(_ context.Context, orderID string, since time.Time) (*models.ServiceOrder, error) {
	var latest *models.ServiceOrder
	for i := range m.orders {
		o := m.orders[i]
		if o.OrderID == orderID && o.CompletedAt.After(since) && (latest == nil || o.CompletedAt.After(latest.CompletedAt)) {
			latest = &o
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	return latest, nil
}

// heldLocker reports every route as locked
type heldLocker struct{}

func (heldLocker) Acquire(context.Context, int) (func(), error) {
	return nil, errLockedForTest
}

type memTemplates struct {
	templates map[int]*models.DocumentTemplate
	fields    map[int][]models.FieldDefinition
}

func newMemTemplates() *memTemplates {
	return &memTemplates{templates: map[int]*models.DocumentTemplate{}, fields: map[int][]models.FieldDefinition{}}
}

func (m *memTemplates) Create(_ context.Context, t *models.DocumentTemplate) error {
	t.ID = len(m.templates) + 1
	m.templates[t.ID] = t
	return nil
}

func (m *memTemplates) Get(_ context.Context, id int) (*models.DocumentTemplate, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return t, nil
}

func (m *memTemplates) List(context.Context) ([]*models.DocumentTemplate, error) {
	var out []*models.DocumentTemplate
	for _, t := range m.templates {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTemplates) ListFields(_ context.Context, id int) ([]models.FieldDefinition, error) {
	return m.fields[id], nil
}

func (m *memTemplates) ReplaceFields(_ context.Context, id int, fields []models.FieldDefinition) error {
	m.fields[id] = fields
	return nil
}

type memObjects struct {
	objects map[string][]byte
}

func (m *memObjects) Put(_ context.Context, key, _ string, data []byte) error {
	m.objects[key] = data
	return nil
}

type recordingRenderer struct {
	fill   docfill.FillContext
	fields []models.FieldDefinition
	report docfill.PlacementReport
	err    error
}

func (r *recordingRenderer) Render(_ context.Context, _ models.DocumentTemplate, fields []models.FieldDefinition, fill docfill.FillContext) ([]byte, docfill.PlacementReport, error) {
	r.fields, r.fill = fields, fill
	if r.err != nil {
		return nil, docfill.PlacementReport{}, r.err
	}
	return []byte("%PDF-filled"), r.report, nil
}

type pagesDoc struct{ pages int }

func (d pagesDoc) PageCount() int                         { return d.pages }
func (d pagesDoc) PageHeight(int) float64                 { return 842 }
func (d pagesDoc) DrawText(int, float64, float64, string) {}
func (d pagesDoc) DrawCheck(int, float64, float64)        {}
func (d pagesDoc) Bytes() ([]byte, error)                 { return nil, nil }
