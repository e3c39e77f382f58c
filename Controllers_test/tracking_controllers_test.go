package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/fieldservice-app/models"
)

func TestTrackingTimeline(t *testing.T) {
	env := setupEnv(t)
	r := env.createRequest()
	env.assign(r)
	path := "/api/tracking/request/" + r.ID

	w, resp := env.do(env.customer, http.MethodGet, path+"/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TRACKING_NOT_FOUND", resp.Code)

	w, resp = env.do(env.customer, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []models.TrackingEvent
	decodeData(t, resp, &history)
	assert.Empty(t, history)

	w, _ = env.do(env.customer, http.MethodPost, path, map[string]interface{}{"status": "On the way"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = env.do(env.spare, http.MethodPost, path, map[string]interface{}{"status": "On the way"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = env.do(env.technician, http.MethodPost, path, map[string]interface{}{"status": "Lost", "latitude": 95.0, "longitude": 10.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TRACKING_EVENT", resp.Code)

	w, _ = env.do(env.technician, http.MethodPost, path, map[string]interface{}{"status": "On the way", "latitude": 40.7128, "longitude": -74.006})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, resp = env.do(env.technician, http.MethodPost, path, map[string]interface{}{"status": "Arrived", "notes": "Parked out front"})
	require.Equal(t, http.StatusCreated, w.Code)
	var arrived models.TrackingEvent
	decodeData(t, resp, &arrived)

	w, resp = env.do(env.customer, http.MethodGet, path+"/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var latest models.TrackingEvent
	decodeData(t, resp, &latest)
	assert.Equal(t, arrived.ID, latest.ID)

	w, resp = env.do(env.admin, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, resp, &history)
	require.Len(t, history, 2)
	assert.Equal(t, "Arrived", history[0].Status)
	require.NotNil(t, history[1].Latitude)
	assert.InDelta(t, 40.7128, *history[1].Latitude, 1e-9)

	// teknisi lain dan customer lain tidak boleh membaca jejak request ini
	for _, u := range []models.User{env.spare, env.other} {
		w, resp = env.do(u, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", resp.Code)
		w, _ = env.do(u, http.MethodGet, path+"/latest", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	}
	w, resp = env.do(env.technician, http.MethodGet, path+"/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = env.do(env.admin, http.MethodPost, "/api/tracking/request/missing", map[string]interface{}{"status": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REQUEST_NOT_FOUND", resp.Code)
}
