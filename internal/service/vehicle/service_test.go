package vehicle

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"flota-service/internal/domain/history"
	"flota-service/internal/domain/notification"
	"flota-service/internal/domain/unit"
	"flota-service/internal/domain/user"
	"flota-service/internal/domain/vehicle"
	xerrors "flota-service/internal/pkg/errors"
	"flota-service/internal/service/access"
	historysvc "flota-service/internal/service/history"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errBoom = errors.New("storage exploded")

// memStore models committed vs staged state so transaction semantics are
// observable: staged writes only become visible on commit and vanish on
// rollback.
type memStore struct {
	nextVehicleID int64
	nextEntryID   int64

	vehicles map[int64]vehicle.Vehicle
	entries  []history.Entry

	stagedVehicles []vehicle.Vehicle
	stagedUpdates  []vehicle.Vehicle
	stagedDeletes  []int64
	stagedEntries  []history.Entry

	// failAppendAt makes the Nth staged history append fail (1-based).
	failAppendAt int
	appendCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		nextVehicleID: 1,
		nextEntryID:   1,
		vehicles:      make(map[int64]vehicle.Vehicle),
	}
}

func (m *memStore) commitStaged() {
	for _, v := range m.stagedVehicles {
		m.vehicles[v.ID] = v
	}
	for _, v := range m.stagedUpdates {
		m.vehicles[v.ID] = v
	}
	for _, id := range m.stagedDeletes {
		delete(m.vehicles, id)
		kept := m.entries[:0]
		for _, e := range m.entries {
			if e.VehiculoID != id {
				kept = append(kept, e)
			}
		}
		m.entries = kept
	}
	m.entries = append(m.entries, m.stagedEntries...)
	m.discardStaged()
}

func (m *memStore) discardStaged() {
	m.stagedVehicles = nil
	m.stagedUpdates = nil
	m.stagedDeletes = nil
	m.stagedEntries = nil
}

func (m *memStore) seedVehicle(dominio, title string) int64 {
	id := m.nextVehicleID
	m.nextVehicleID++
	m.vehicles[id] = vehicle.Vehicle{ID: id, Dominio: dominio, Title: title, Marca: "Ford", Modelo: "Ranger", Anio: 2020}
	return id
}

func (m *memStore) seedEntry(id int64, kind history.Kind, valor string) {
	e := history.Entry{ID: m.nextEntryID, VehiculoID: id, Kind: kind, Fecha: time.Now()}
	m.nextEntryID++
	e.Valor = &valor
	m.entries = append(m.entries, e)
}

func (m *memStore) docFor(v vehicle.Vehicle) vehicle.Doc {
	doc := vehicle.Doc{Vehicle: v, Imagenes: []string{}}
	for _, e := range m.entries {
		if e.VehiculoID == v.ID && e.Kind == history.KindImagen && e.Valor != nil {
			doc.Imagenes = append(doc.Imagenes, *e.Valor)
		}
	}
	return doc
}

// --- fake pgx transaction ---

type fakeTx struct {
	store      *memStore
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	t.store.commitStaged()
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	t.store.discardStaged()
	return nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(ctx context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(ctx context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(ctx context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(ctx context.Context, _ string, _ ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(ctx context.Context, _ string, _ ...any) pgx.Row       { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                                { return nil }

type fakeDB struct {
	store  *memStore
	lastTx *fakeTx
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	d.lastTx = &fakeTx{store: d.store}
	return d.lastTx, nil
}

// --- fake repositories over the store ---

type fakeVehicleRepo struct{ store *memStore }

func (r *fakeVehicleRepo) CreateTx(ctx context.Context, tx pgx.Tx, v *vehicle.Vehicle) error {
	for _, existing := range r.store.vehicles {
		if existing.Dominio == v.Dominio {
			return xerrors.Wrap(xerrors.ErrConflict, "dominio already registered")
		}
	}
	v.ID = r.store.nextVehicleID
	r.store.nextVehicleID++
	r.store.stagedVehicles = append(r.store.stagedVehicles, *v)
	return nil
}

func (r *fakeVehicleRepo) UpdateTx(ctx context.Context, tx pgx.Tx, v *vehicle.Vehicle) error {
	r.store.stagedUpdates = append(r.store.stagedUpdates, *v)
	return nil
}

func (r *fakeVehicleRepo) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	r.store.stagedDeletes = append(r.store.stagedDeletes, id)
	return nil
}

func (r *fakeVehicleRepo) FindByID(ctx context.Context, id int64) (*vehicle.Doc, error) {
	v, ok := r.store.vehicles[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	doc := r.store.docFor(v)
	return &doc, nil
}

func (r *fakeVehicleRepo) FindByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*vehicle.Vehicle, error) {
	v, ok := r.store.vehicles[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &v, nil
}

func (r *fakeVehicleRepo) List(ctx context.Context, filters *vehicle.ListFilters) ([]vehicle.Doc, int64, error) {
	var matched []vehicle.Vehicle
	for _, v := range r.store.vehicles {
		if filters.Unidad != "" && v.Title != filters.Unidad {
			continue
		}
		if filters.Dominio != "" && !strings.Contains(strings.ToLower(v.Dominio), strings.ToLower(filters.Dominio)) {
			continue
		}
		matched = append(matched, v)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Dominio < matched[j].Dominio })

	total := int64(len(matched))
	offset := (filters.Page - 1) * filters.Limit
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + filters.Limit
	if end > len(matched) {
		end = len(matched)
	}

	docs := []vehicle.Doc{}
	for _, v := range matched[offset:end] {
		docs = append(docs, r.store.docFor(v))
	}
	return docs, total, nil
}

func (r *fakeVehicleRepo) CountByUnit(ctx context.Context) ([]vehicle.UnitCount, error) {
	counts := map[string]int64{}
	for _, v := range r.store.vehicles {
		counts[v.Title]++
	}
	var out []vehicle.UnitCount
	for u, n := range counts {
		out = append(out, vehicle.UnitCount{Unidad: u, Total: n})
	}
	return out, nil
}

type fakeHistoryRepo struct{ store *memStore }

func (r *fakeHistoryRepo) stage(e *history.Entry) error {
	r.store.appendCalls++
	if r.store.failAppendAt != 0 && r.store.appendCalls == r.store.failAppendAt {
		return errBoom
	}
	e.ID = r.store.nextEntryID
	r.store.nextEntryID++
	if e.Fecha.IsZero() {
		e.Fecha = time.Now()
	}
	r.store.stagedEntries = append(r.store.stagedEntries, *e)
	return nil
}

func (r *fakeHistoryRepo) AppendTx(ctx context.Context, tx pgx.Tx, e *history.Entry) error {
	return r.stage(e)
}

func (r *fakeHistoryRepo) AppendBulkTx(ctx context.Context, tx pgx.Tx, kind history.Kind, vehiculoID int64, valores []string) error {
	for i := range valores {
		if err := r.stage(&history.Entry{VehiculoID: vehiculoID, Kind: kind, Valor: &valores[i]}); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeHistoryRepo) Append(ctx context.Context, e *history.Entry) error {
	if err := r.stage(e); err != nil {
		return err
	}
	r.store.commitStaged()
	return nil
}

func (r *fakeHistoryRepo) FindLast(ctx context.Context, kind history.Kind, vehiculoID int64) (*history.Entry, error) {
	entries, _ := r.List(ctx, kind, vehiculoID)
	if len(entries) == 0 {
		return nil, xerrors.ErrNotFound
	}
	return &entries[0], nil
}

func (r *fakeHistoryRepo) DeleteLast(ctx context.Context, kind history.Kind, vehiculoID int64) (*history.Entry, error) {
	last, err := r.FindLast(ctx, kind, vehiculoID)
	if err != nil {
		return nil, err
	}
	return r.DeleteOne(ctx, kind, vehiculoID, last.ID)
}

func (r *fakeHistoryRepo) DeleteOne(ctx context.Context, kind history.Kind, vehiculoID, entryID int64) (*history.Entry, error) {
	for i, e := range r.store.entries {
		if e.Kind == kind && e.ID == entryID && e.VehiculoID == vehiculoID {
			r.store.entries = append(r.store.entries[:i], r.store.entries[i+1:]...)
			return &e, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *fakeHistoryRepo) DeleteAll(ctx context.Context, kind history.Kind, vehiculoID int64) (int64, error) {
	kept := r.store.entries[:0]
	var removed int64
	for _, e := range r.store.entries {
		if e.Kind == kind && e.VehiculoID == vehiculoID {
			removed++
		} else {
			kept = append(kept, e)
		}
	}
	r.store.entries = kept
	return removed, nil
}

func (r *fakeHistoryRepo) List(ctx context.Context, kind history.Kind, vehiculoID int64) ([]history.Entry, error) {
	var out []history.Entry
	for _, e := range r.store.entries {
		if e.Kind == kind && e.VehiculoID == vehiculoID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeNotifier struct{ events chan notification.Type }

func (f *fakeNotifier) NotifyAdmins(ctx context.Context, t notification.Type, title, message string) {
	f.events <- t
}

// --- harness ---

type harness struct {
	svc   *Service
	store *memStore
	db    *fakeDB
}

func newHarness(t *testing.T, notifier Notifier) *harness {
	t.Helper()
	store := newMemStore()
	db := &fakeDB{store: store}
	ledger := historysvc.NewLedger(&fakeHistoryRepo{store: store}, zap.NewNop())
	svc := NewService(&fakeVehicleRepo{store: store}, ledger, access.NewPolicy(nil), db, notifier, zap.NewNop())
	return &harness{svc: svc, store: store, db: db}
}

var (
	adminDG = user.Principal{ID: 1, Admin: true, Unidad: unit.DG}
	userUP1 = user.Principal{ID: 2, Unidad: unit.UP1}
)

func createReq(title string) *vehicle.CreateRequest {
	return &vehicle.CreateRequest{
		Dominio: "AB123CD",
		Marca:   "Ford",
		Modelo:  "Ranger",
		Anio:    2020,
		Chasis:  "CH-1",
		Motor:   "MO-1",
		Title:   title,
	}
}

func TestCreateAtomicityOnChildFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.store.failAppendAt = 2

	req := createReq("UP1")
	req.Kilometros = "1000"
	req.Service = "primer service"
	req.Destino = "Montevideo"

	_, err := h.svc.Create(context.Background(), req, userUP1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom, "the originating failure must surface unswallowed")

	assert.Empty(t, h.store.vehicles, "parent row must be rolled back")
	assert.Empty(t, h.store.entries, "sibling child rows must be rolled back")
	require.NotNil(t, h.db.lastTx)
	assert.True(t, h.db.lastTx.rolledBack)
	assert.False(t, h.db.lastTx.committed)
}

func TestCreatePermissionDeniedBeforeAnyWrite(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.svc.Create(context.Background(), createReq("UP2"), userUP1)
	assert.ErrorIs(t, err, xerrors.ErrPermissionDenied)
	assert.Empty(t, h.store.vehicles)
	assert.True(t, h.db.lastTx.rolledBack, "rollback still runs on the permission exit path")
}

func TestCreateDuplicateDominioConflict(t *testing.T) {
	h := newHarness(t, nil)
	h.store.seedVehicle("AB123CD", "UP1")

	_, err := h.svc.Create(context.Background(), createReq("UP1"), userUP1)
	assert.ErrorIs(t, err, xerrors.ErrConflict)
}

func TestCreateImageRoundTrip(t *testing.T) {
	h := newHarness(t, nil)

	req := createReq("UP1")
	req.Imagenes = []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}

	doc, err := h.svc.Create(context.Background(), req, userUP1)
	require.NoError(t, err)

	back, err := h.svc.GetByID(context.Background(), doc.ID, userUP1)
	require.NoError(t, err)
	assert.ElementsMatch(t, req.Imagenes, back.Imagenes)
}

func TestListUnitScoping(t *testing.T) {
	h := newHarness(t, nil)
	h.store.seedVehicle("AA111AA", "UP1")
	h.store.seedVehicle("BB222BB", "UP2")
	h.store.seedVehicle("CC333CC", "UP1")

	page, err := h.svc.List(context.Background(), &vehicle.ListFilters{}, userUP1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalDocs)
	for _, d := range page.Docs {
		assert.Equal(t, "UP1", d.Title)
	}

	page, err = h.svc.List(context.Background(), &vehicle.ListFilters{}, adminDG)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalDocs, "admin with no filter sees every unit")
}

func TestListNonAdminWithoutUnitSeesNothing(t *testing.T) {
	h := newHarness(t, nil)
	h.store.seedVehicle("AA111AA", "UP1")
	h.store.seedVehicle("BB222BB", "UP2")

	page, err := h.svc.List(context.Background(), &vehicle.ListFilters{}, user.Principal{ID: 9})
	require.NoError(t, err)
	assert.Zero(t, page.TotalDocs, "no unit assignment must not mean no scoping")
	assert.Empty(t, page.Docs)

	// an explicit filter still works for such a principal
	page, err = h.svc.List(context.Background(), &vehicle.ListFilters{Unidad: "UP1"}, user.Principal{ID: 9})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalDocs)
}

func TestListExplicitFilterWinsOverOwnUnit(t *testing.T) {
	h := newHarness(t, nil)
	h.store.seedVehicle("AA111AA", "UP1")
	h.store.seedVehicle("BB222BB", "UP2")

	page, err := h.svc.List(context.Background(), &vehicle.ListFilters{Unidad: "up2"}, userUP1)
	require.NoError(t, err)
	require.Equal(t, int64(1), page.TotalDocs)
	assert.Equal(t, "UP2", page.Docs[0].Title)
}

func TestListOrderedByDominio(t *testing.T) {
	h := newHarness(t, nil)
	h.store.seedVehicle("ZZ999ZZ", "UP1")
	h.store.seedVehicle("AA111AA", "UP1")

	page, err := h.svc.List(context.Background(), &vehicle.ListFilters{}, userUP1)
	require.NoError(t, err)
	require.Len(t, page.Docs, 2)
	assert.Equal(t, "AA111AA", page.Docs[0].Dominio)
	assert.Equal(t, "ZZ999ZZ", page.Docs[1].Dominio)
}

func TestGetByIDFoldsPermissionIntoNotFound(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.seedVehicle("BB222BB", "UP2")

	_, err := h.svc.GetByID(context.Background(), id, userUP1)
	assert.ErrorIs(t, err, xerrors.ErrNotFound, "existence of another unit's vehicle must not leak")
	assert.NotErrorIs(t, err, xerrors.ErrPermissionDenied)
}

func TestUpdateScalarVsHistoryClassification(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.seedVehicle("AA111AA", "UP1")

	// existing odometer reading that must survive untouched
	_, err := h.svc.AppendHistory(context.Background(), id, history.KindKilometraje, "100", userUP1)
	require.NoError(t, err)

	doc, err := h.svc.Update(context.Background(), id, &vehicle.UpdateRequest{Modelo: "X", Kilometros: "500"}, userUP1)
	require.NoError(t, err)
	assert.Equal(t, "X", doc.Modelo, "scalar key updates the parent in place")

	entries, err := h.svc.ListHistory(context.Background(), id, history.KindKilometraje, userUP1)
	require.NoError(t, err)
	require.Len(t, entries, 2, "history key appends, never overwrites")
	require.NotNil(t, entries[0].Kilometraje)
	assert.Equal(t, int64(500), *entries[0].Kilometraje)
	require.NotNil(t, entries[1].Kilometraje)
	assert.Equal(t, int64(100), *entries[1].Kilometraje)
}

func TestUpdateEmptyStringsSkipped(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.seedVehicle("AA111AA", "UP1")

	doc, err := h.svc.Update(context.Background(), id, &vehicle.UpdateRequest{Chofer: "Pérez"}, userUP1)
	require.NoError(t, err)
	assert.Equal(t, "Pérez", doc.Chofer)
	assert.Equal(t, "Ford", doc.Marca, "unsupplied fields keep their value")
	assert.Equal(t, "Ranger", doc.Modelo)
}

func TestUpdateInvalidOdometerRollsBackScalars(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.seedVehicle("AA111AA", "UP1")

	_, err := h.svc.Update(context.Background(), id, &vehicle.UpdateRequest{Modelo: "X", Kilometros: "not-a-number"}, userUP1)
	assert.ErrorIs(t, err, xerrors.ErrValidation)

	doc, err := h.svc.GetByID(context.Background(), id, userUP1)
	require.NoError(t, err)
	assert.Equal(t, "Ranger", doc.Modelo, "no partial application of a multi-field update")
}

func TestUpdateOtherUnitReportsNotFound(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.seedVehicle("BB222BB", "UP2")

	_, err := h.svc.Update(context.Background(), id, &vehicle.UpdateRequest{Modelo: "X"}, userUP1)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestDeleteOutsideUnitDenied(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.seedVehicle("BB222BB", "UP2")

	err := h.svc.Delete(context.Background(), id, userUP1)
	assert.ErrorIs(t, err, xerrors.ErrPermissionDenied)
	assert.Len(t, h.store.vehicles, 1)
}

func TestDeleteCascadesHistory(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.seedVehicle("AA111AA", "UP1")
	h.store.seedEntry(id, history.KindService, "service viejo")

	require.NoError(t, h.svc.Delete(context.Background(), id, adminDG))
	assert.Empty(t, h.store.vehicles)
	assert.Empty(t, h.store.entries, "children go with the parent")
}

func TestCreateNotifiesAdminsBestEffort(t *testing.T) {
	notifier := &fakeNotifier{events: make(chan notification.Type, 1)}
	h := newHarness(t, notifier)

	_, err := h.svc.Create(context.Background(), createReq("UP1"), userUP1)
	require.NoError(t, err)

	select {
	case evt := <-notifier.events:
		assert.Equal(t, notification.TypeVehicleCreated, evt)
	case <-time.After(time.Second):
		t.Fatal("expected an admin notification")
	}
}
