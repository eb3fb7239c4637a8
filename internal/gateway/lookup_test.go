package gateway_test

import (
	"context"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/recruiting-board/internal/gateway"
)

func TestLooksLikeDNI(t *testing.T) {
	for _, s := range []string{"12345678", "1234567890", " 12345678 "} {
		assert.True(t, gateway.LooksLikeDNI(s), s)
	}
	for _, s := range []string{"", "1234567", "12345678901", "1234567a", "juan perez"} {
		assert.False(t, gateway.LooksLikeDNI(s), s)
	}
}

func TestCheckAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run(`found candidate without attendance needs check-in`, func(t *testing.T) {
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "12345678", r.URL.Query().Get("dni"))
			writeJSON(w, http.StatusOK, `{"candidato_encontrado":true,"asistencia_registrada":false,"proceso_id":15,"dni":"12345678"}`)
		})
		a, err := c.CheckAttendance(ctx, "12345678")
		require.NoError(t, err)
		assert.True(t, a.Found)
		assert.Equal(t, gateway.ID("15"), a.ProcessID)
		assert.True(t, a.NeedsCheckIn())
	})

	t.Run(`null process id does not need check-in`, func(t *testing.T) {
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"candidato_encontrado":true,"asistencia_registrada":false,"proceso_id":null}`)
		})
		a, err := c.CheckAttendance(ctx, "12345678")
		require.NoError(t, err)
		assert.Equal(t, "12345678", a.DNI)
		assert.False(t, a.NeedsCheckIn())
	})

	t.Run(`blank dni makes no request`, func(t *testing.T) {
		c, hits := newClient(t, func(w http.ResponseWriter, r *http.Request) {})
		_, err := c.CheckAttendance(ctx, "")
		require.Error(t, err)
		assert.EqualValues(t, 0, atomic.LoadInt32(hits))
	})
}

func TestRegisterAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run(`posts process and phase and returns the message`, func(t *testing.T) {
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/candidatos/api/asistencia/registrar/", r.URL.Path)
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, url.Values{
				"proceso_id":  {"7"},
				"fase_actual": {"CONVOCADO"},
			}, r.PostForm)
			writeJSON(w, http.StatusOK, `{"success":true,"message":"ENTRADA registrada."}`)
		})
		res, err := c.RegisterAttendance(ctx, "7", "CONVOCADO")
		require.NoError(t, err)
		assert.Equal(t, "ENTRADA registrada.", res.Message)
		assert.True(t, res.Reload)
	})

	t.Run(`conflict with a json body is an application error`, func(t *testing.T) {
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, `{"success":false,"message":"Ciclo completo para hoy."}`)
		})
		_, err := c.RegisterAttendance(ctx, "7", "CONVOCADO")
		var ae *gateway.ApplicationError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, http.StatusConflict, ae.Status)
		assert.Equal(t, "Ciclo completo para hoy.", ae.Msg)
	})

	t.Run(`html error page is a status failure`, func(t *testing.T) {
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := c.RegisterAttendance(ctx, "7", "CONVOCADO")
		var te *gateway.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, http.StatusInternalServerError, te.Status)
	})

	t.Run(`missing phase makes no request`, func(t *testing.T) {
		c, hits := newClient(t, func(w http.ResponseWriter, r *http.Request) {})
		_, err := c.RegisterAttendance(ctx, "7", "")
		require.Error(t, err)
		assert.EqualValues(t, 0, atomic.LoadInt32(hits))
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	t.Run(`dni is substituted into the path`, func(t *testing.T) {
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/candidatos/api/history/12345678/", r.URL.Path)
			writeJSON(w, http.StatusOK, `{
				"status":"success",
				"candidato_info":{"dni":"12345678","nombre":"Ana Torres","estado_maestro":"Convocado"},
				"procesos":[
					{"proceso_id":9,"fecha_inicio":"01/03/2025","estado_proceso":"Convocado","empresa_proceso":"Acme",
					 "sede_proceso":"Lima","supervisor_nombre":"Pendiente","resultado_final":"En Curso","es_activo":true,
					 "ultima_momento":"Sin registro","documentacion":"0 documentos subidos","num_comentarios":2,"num_tests":1},
					{"proceso_id":3,"fecha_inicio":"01/01/2024","estado_proceso":"Abandono/Deserción","empresa_proceso":"Acme",
					 "sede_proceso":"Lima","supervisor_nombre":"Luis","resultado_final":"Abandono/Deserción","es_activo":false}
				]}`)
		})
		h, err := c.History(ctx, "12345678")
		require.NoError(t, err)
		assert.Equal(t, "Ana Torres", h.Candidate.Name)
		require.Len(t, h.Processes, 2)
		active, ok := h.Active()
		require.True(t, ok)
		assert.Equal(t, gateway.ID("9"), active.ID)
		assert.Equal(t, 2, active.Comments)
	})

	t.Run(`unknown candidate is an application error`, func(t *testing.T) {
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, `{"status":"error","message":"Candidato con DNI 1 no encontrado."}`)
		})
		_, err := c.History(ctx, "1")
		var ae *gateway.ApplicationError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, "Candidato con DNI 1 no encontrado.", ae.Msg)
	})
}
