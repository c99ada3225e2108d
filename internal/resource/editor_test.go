package resource

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
)

type fakeTarget[T farm.Record] struct {
	rows    map[farm.ID]T
	created []T
	updated []T
	err     error
}

func (f *fakeTarget[T]) Create(_ context.Context, record T) error {
	f.created = append(f.created, record)
	return f.err
}

func (f *fakeTarget[T]) Update(_ context.Context, record T) error {
	f.updated = append(f.updated, record)
	return f.err
}

func (f *fakeTarget[T]) Find(id farm.ID) (T, bool) {
	row, ok := f.rows[id]
	return row, ok
}

type recorderStub struct {
	transfers []Transfer
}

func (r *recorderStub) RecordTransfer(_ context.Context, t Transfer) error {
	r.transfers = append(r.transfers, t)
	return nil
}

var harvestOwner = Ownership[farm.Harvest]{
	Entity: "hasil_panen",
	Get:    HarvestSupervisor,
	Set:    func(h *farm.Harvest, id farm.ID) { h.SupervisorID = id },
}

func TestSubmitRoutesByKey(t *testing.T) {
	target := &fakeTarget[farm.Plant]{}
	editor := NewEditor[farm.Plant](target, nil)

	require.NoError(t, editor.Submit(context.Background(), farm.Plant{ID: 5, Name: "Padi"}))
	assert.Len(t, target.updated, 1)
	assert.Empty(t, target.created)
	assert.False(t, editor.IsOpen())

	require.NoError(t, editor.Submit(context.Background(), farm.Plant{Name: "Jagung"}))
	assert.Len(t, target.updated, 1)
	assert.Len(t, target.created, 1)
}

func TestSubmitFailureKeepsFormOpen(t *testing.T) {
	target := &fakeTarget[farm.User]{err: &backend.APIError{Status: http.StatusConflict, Message: "Username sudah digunakan"}}
	editor := NewEditor[farm.User](target, nil, WithFieldHints[farm.User](map[string]string{"username": "username"}))

	input := farm.User{Username: "budi", Name: "Budi"}
	err := editor.Submit(context.Background(), input)
	require.Error(t, err)
	assert.True(t, editor.IsOpen())
	assert.Equal(t, input, editor.Form())
	assert.Equal(t, "Username sudah digunakan", editor.FieldErrors()["username"])
}

func TestValidationBlocksRequest(t *testing.T) {
	target := &fakeTarget[farm.Plant]{}
	editor := NewEditor[farm.Plant](target, nil, WithValidation(func(p farm.Plant) map[string]string {
		if p.Name == "" {
			return map[string]string{"nama_tanaman": "Nama tanaman wajib diisi"}
		}
		return nil
	}))
	err := editor.Submit(context.Background(), farm.Plant{})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Empty(t, target.created)
	assert.Contains(t, editor.FieldErrors(), "nama_tanaman")
}

func TestOpenCreateStampsOwner(t *testing.T) {
	actor := &farm.User{ID: 4, Username: "sari", Role: farm.RoleManager}
	editor := NewEditor[farm.Harvest](&fakeTarget[farm.Harvest]{}, func() farm.Harvest {
		return farm.Harvest{Grade: farm.GradeA, Status: farm.HarvestPending}
	}, WithOwnership(harvestOwner, PolicyPreserve, actor, nil))

	form := editor.OpenCreate()
	assert.True(t, editor.IsOpen())
	assert.Equal(t, farm.ID(4), form.SupervisorID)
	assert.Equal(t, farm.GradeA, form.Grade)
}

func TestPreservePolicyKeepsOriginalOwner(t *testing.T) {
	target := &fakeTarget[farm.Harvest]{rows: map[farm.ID]farm.Harvest{9: {ID: 9, SupervisorID: 2}}}
	recorder := &recorderStub{}
	actor := &farm.User{ID: 1, Role: farm.RoleAdmin}
	editor := NewEditor[farm.Harvest](target, nil, WithOwnership(harvestOwner, PolicyPreserve, actor, recorder))

	assert.Equal(t, farm.ID(2), editor.OpenEdit(target.rows[9]).SupervisorID)
	require.NoError(t, editor.Submit(context.Background(), farm.Harvest{ID: 9, SupervisorID: 1, Quantity: 10}))
	require.Len(t, target.updated, 1)
	assert.Equal(t, farm.ID(2), target.updated[0].SupervisorID)
	assert.Empty(t, recorder.transfers)
}

func TestClaimPolicyRecordsTransfer(t *testing.T) {
	target := &fakeTarget[farm.Harvest]{rows: map[farm.ID]farm.Harvest{9: {ID: 9, SupervisorID: 2}}}
	recorder := &recorderStub{}
	actor := &farm.User{ID: 1, Username: "admin", Role: farm.RoleAdmin}
	now := time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC)
	editor := NewEditor[farm.Harvest](target, nil,
		WithOwnership(harvestOwner, PolicyClaim, actor, recorder),
		WithEditorClock[farm.Harvest](func() time.Time { return now }))

	assert.Equal(t, farm.ID(1), editor.OpenEdit(target.rows[9]).SupervisorID)
	require.NoError(t, editor.Submit(context.Background(), farm.Harvest{ID: 9}))
	assert.Equal(t, farm.ID(1), target.updated[0].SupervisorID)
	require.Len(t, recorder.transfers, 1)
	transfer := recorder.transfers[0]
	assert.Equal(t, farm.ID(2), transfer.From)
	assert.Equal(t, farm.ID(1), transfer.To)
	assert.Equal(t, "hasil_panen", transfer.Entity)
	assert.Equal(t, now, transfer.At)
	assert.NotEmpty(t, transfer.ID)
}

func TestClaimPolicyFailedUpdateRecordsNothing(t *testing.T) {
	target := &fakeTarget[farm.Harvest]{
		rows: map[farm.ID]farm.Harvest{9: {ID: 9, SupervisorID: 2}},
		err:  errors.New("boom"),
	}
	recorder := &recorderStub{}
	editor := NewEditor[farm.Harvest](target, nil, WithOwnership(harvestOwner, PolicyClaim, &farm.User{ID: 1}, recorder))
	require.Error(t, editor.Submit(context.Background(), farm.Harvest{ID: 9}))
	assert.Empty(t, recorder.transfers)
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicyClaim, ParsePolicy(" Claim "))
	assert.Equal(t, PolicyPreserve, ParsePolicy(""))
	assert.Equal(t, PolicyPreserve, ParsePolicy("other"))
}

func TestToggleHarvest(t *testing.T) {
	target := &fakeTarget[farm.Harvest]{rows: map[farm.ID]farm.Harvest{
		1: {ID: 1, Status: farm.HarvestReady},
		2: {ID: 2, Status: farm.HarvestSold},
	}}

	_, err := ToggleHarvest(context.Background(), target, 1, false)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Empty(t, target.updated)

	status, err := ToggleHarvest(context.Background(), target, 1, true)
	require.NoError(t, err)
	assert.Equal(t, farm.HarvestPending, status)
	require.Len(t, target.updated, 1)
	assert.Equal(t, farm.HarvestPending, target.updated[0].Status)

	status, err = ToggleHarvest(context.Background(), target, 2, true)
	require.NoError(t, err)
	assert.Equal(t, farm.HarvestSold, status)
	assert.Len(t, target.updated, 1)

	_, err = ToggleHarvest(context.Background(), target, 42, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

// flakyHarvests serves harvest 9 owned by supervisor 2 on the first list call
// and fails every list call after it.
func flakyHarvests(t *testing.T, writes *int32) *Controller[farm.Harvest] {
	t.Helper()
	var lists int32
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			atomic.AddInt32(writes, 1)
			_, _ = w.Write([]byte(`{"message":"ok"}`))
			return
		}
		if atomic.AddInt32(&lists, 1) > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id_hasil":9,"id_pengawas":2,"status":"pending"}]}`))
	})
	ctrl := New[farm.Harvest](client, backend.PathHarvests)
	require.NoError(t, ctrl.Load(context.Background()))
	return ctrl
}

func TestClaimTransferRecordedWhenReloadFails(t *testing.T) {
	var puts int32
	ctrl := flakyHarvests(t, &puts)
	recorder := &recorderStub{}
	actor := &farm.User{ID: 5, Username: "sari", Role: farm.RoleManager}
	editor := NewEditor[farm.Harvest](ctrl, nil, WithOwnership(harvestOwner, PolicyClaim, actor, recorder))

	editor.OpenEdit(farm.Harvest{ID: 9, SupervisorID: 2})
	require.NoError(t, editor.Submit(context.Background(), farm.Harvest{ID: 9, SupervisorID: 2}))
	assert.Equal(t, int32(1), atomic.LoadInt32(&puts))
	assert.False(t, editor.IsOpen())
	require.Len(t, recorder.transfers, 1)
	assert.Equal(t, farm.ID(2), recorder.transfers[0].From)
	assert.Equal(t, farm.ID(5), recorder.transfers[0].To)
	assert.Error(t, ctrl.Err())
}

func TestCreateClosesFormWhenReloadFails(t *testing.T) {
	var posts int32
	ctrl := flakyHarvests(t, &posts)
	editor := NewEditor[farm.Harvest](ctrl, nil)

	editor.OpenCreate()
	require.NoError(t, editor.Submit(context.Background(), farm.Harvest{Quantity: 10}))
	assert.Equal(t, int32(1), atomic.LoadInt32(&posts))
	assert.False(t, editor.IsOpen())
	assert.NoError(t, editor.Err())
}
